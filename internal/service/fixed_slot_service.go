package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mlsaran/tt-scheduler-api/internal/models"
	appErrors "github.com/mlsaran/tt-scheduler-api/pkg/errors"
)

type fixedSlotRepository interface {
	ListByClass(ctx context.Context, classID string) ([]models.FixedSlot, error)
	Create(ctx context.Context, slot *models.FixedSlot) error
	Delete(ctx context.Context, id string) error
}

// CreateFixedSlotRequest pins a class to a day/period ahead of solving,
// per scheduler.Days/scheduler.PeriodsPerDay bounds.
type CreateFixedSlotRequest struct {
	ClassID string  `json:"class_id" validate:"required"`
	Day     int     `json:"day" validate:"min=0,max=5"`
	Period  int     `json:"period" validate:"required,min=1,max=8"`
	RoomID  *string `json:"room_id"`
}

// FixedSlotService handles fixed slot workflows.
type FixedSlotService struct {
	repo      fixedSlotRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFixedSlotService creates a new fixed slot service.
func NewFixedSlotService(repo fixedSlotRepository, validate *validator.Validate, logger *zap.Logger) *FixedSlotService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FixedSlotService{repo: repo, validator: validate, logger: logger}
}

// ListByClass returns fixed slots pinned for a class.
func (s *FixedSlotService) ListByClass(ctx context.Context, classID string) ([]models.FixedSlot, error) {
	slots, err := s.repo.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list fixed slots")
	}
	return slots, nil
}

// Create pins a new fixed slot.
func (s *FixedSlotService) Create(ctx context.Context, req CreateFixedSlotRequest) (*models.FixedSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid fixed slot payload")
	}

	slot := &models.FixedSlot{
		ClassID: req.ClassID,
		Day:     req.Day,
		Period:  req.Period,
		RoomID:  req.RoomID,
	}
	if err := s.repo.Create(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create fixed slot")
	}
	return slot, nil
}

// Delete removes a fixed slot.
func (s *FixedSlotService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete fixed slot")
	}
	return nil
}
