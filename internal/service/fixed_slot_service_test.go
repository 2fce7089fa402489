package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlsaran/tt-scheduler-api/internal/models"
	appErrors "github.com/mlsaran/tt-scheduler-api/pkg/errors"
)

type fixedSlotRepoStub struct {
	byClass map[string][]models.FixedSlot
	deleted []string
}

func (s *fixedSlotRepoStub) ListByClass(ctx context.Context, classID string) ([]models.FixedSlot, error) {
	return s.byClass[classID], nil
}

func (s *fixedSlotRepoStub) Create(ctx context.Context, slot *models.FixedSlot) error {
	slot.ID = "slot-1"
	if s.byClass == nil {
		s.byClass = map[string][]models.FixedSlot{}
	}
	s.byClass[slot.ClassID] = append(s.byClass[slot.ClassID], *slot)
	return nil
}

func (s *fixedSlotRepoStub) Delete(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func TestFixedSlotServiceCreate(t *testing.T) {
	repo := &fixedSlotRepoStub{}
	svc := NewFixedSlotService(repo, nil, nil)

	slot, err := svc.Create(context.Background(), CreateFixedSlotRequest{ClassID: "class-1", Day: 0, Period: 1})
	require.NoError(t, err)
	assert.Equal(t, "class-1", slot.ClassID)
}

func TestFixedSlotServiceCreateValidation(t *testing.T) {
	repo := &fixedSlotRepoStub{}
	svc := NewFixedSlotService(repo, nil, nil)

	_, err := svc.Create(context.Background(), CreateFixedSlotRequest{ClassID: "", Day: 0, Period: 1})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestFixedSlotServiceCreateRejectsPeriodOutOfRange(t *testing.T) {
	repo := &fixedSlotRepoStub{}
	svc := NewFixedSlotService(repo, nil, nil)

	_, err := svc.Create(context.Background(), CreateFixedSlotRequest{ClassID: "class-1", Day: 0, Period: 9})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestFixedSlotServiceListByClass(t *testing.T) {
	repo := &fixedSlotRepoStub{byClass: map[string][]models.FixedSlot{
		"class-1": {{ID: "slot-1", ClassID: "class-1", Day: 0, Period: 1}},
	}}
	svc := NewFixedSlotService(repo, nil, nil)

	slots, err := svc.ListByClass(context.Background(), "class-1")
	require.NoError(t, err)
	assert.Len(t, slots, 1)
}

func TestFixedSlotServiceDelete(t *testing.T) {
	repo := &fixedSlotRepoStub{}
	svc := NewFixedSlotService(repo, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), "slot-1"))
	assert.Equal(t, []string{"slot-1"}, repo.deleted)
}
