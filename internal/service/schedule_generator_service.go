package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/mlsaran/tt-scheduler-api/internal/dto"
	"github.com/mlsaran/tt-scheduler-api/internal/models"
	"github.com/mlsaran/tt-scheduler-api/internal/scheduler"
	appErrors "github.com/mlsaran/tt-scheduler-api/pkg/errors"
)

type semesterScheduleRepository interface {
	CreateVersioned(ctx context.Context, exec sqlx.ExtContext, schedule *models.SemesterSchedule) error
	ListByTermClass(ctx context.Context, termID, classID string) ([]models.SemesterSchedule, error)
	FindByID(ctx context.Context, id string) (*models.SemesterSchedule, error)
	Delete(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.SemesterScheduleStatus, meta types.JSONText) error
}

type semesterScheduleSlotRepository interface {
	UpsertBatch(ctx context.Context, exec sqlx.ExtContext, slots []models.SemesterScheduleSlot) error
	ListBySchedule(ctx context.Context, scheduleID string) ([]models.SemesterScheduleSlot, error)
}

type schedulerClassReader interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
}

type schedulerTermReader interface {
	FindByID(ctx context.Context, id string) (*models.Term, error)
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type solveMetricsRecorder interface {
	ObserveSchedulerSolve(duration time.Duration, solutionsFound int, infeasible bool)
}

// ScheduleGeneratorService drives the constraint solver over the full
// catalog and persists the chosen variant as a versioned Timetable.
type ScheduleGeneratorService struct {
	generator *scheduler.Generator
	terms     schedulerTermReader
	classes   schedulerClassReader
	semesters semesterScheduleRepository
	slots     semesterScheduleSlotRepository
	tx        txProvider
	metrics   solveMetricsRecorder
	validator *validator.Validate
	logger    *zap.Logger
	store     *proposalStore
}

// ScheduleGeneratorConfig governs generator behaviour.
type ScheduleGeneratorConfig struct {
	ProposalTTL             time.Duration
	EnforceQualifiedFaculty bool
	EnforceSemesterMatch    bool
}

// NewScheduleGeneratorService wires scheduler dependencies.
func NewScheduleGeneratorService(
	catalog scheduler.Catalog,
	terms schedulerTermReader,
	classes schedulerClassReader,
	semesters semesterScheduleRepository,
	slots semesterScheduleSlotRepository,
	tx txProvider,
	metrics solveMetricsRecorder,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg ScheduleGeneratorConfig,
) *ScheduleGeneratorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ProposalTTL <= 0 {
		cfg.ProposalTTL = 30 * time.Minute
	}

	generator := scheduler.NewGenerator(catalog)
	generator.EnforceQualifiedFaculty = cfg.EnforceQualifiedFaculty
	generator.EnforceSemesterMatch = cfg.EnforceSemesterMatch

	return &ScheduleGeneratorService{
		generator: generator,
		terms:     terms,
		classes:   classes,
		semesters: semesters,
		slots:     slots,
		tx:        tx,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		store:     newProposalStore(cfg.ProposalTTL),
	}
}

// Generate solves the full catalog and caches the resulting variant set
// for a subsequent Save call.
func (s *ScheduleGeneratorService) Generate(ctx context.Context, req dto.GenerateVariantsRequest) (*dto.GenerateVariantsResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generate payload")
	}

	started := time.Now()
	result, err := s.generator.GenerateVariants(ctx, req.NumVariants)
	elapsed := time.Since(started)
	if err != nil {
		if errors.Is(err, scheduler.ErrInvalidInput) {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid catalog snapshot")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "scheduler failed")
	}

	if s.metrics != nil {
		s.metrics.ObserveSchedulerSolve(elapsed, len(result.Solutions), result.Diagnostic != nil)
	}

	if result.Diagnostic != nil {
		suggestions := make([]dto.SuggestionView, 0, len(result.Diagnostic.Suggestions))
		for _, sug := range result.Diagnostic.Suggestions {
			suggestions = append(suggestions, dto.SuggestionView{Type: sug.Type, Message: sug.Message, Solution: sug.Solution})
		}
		return &dto.GenerateVariantsResponse{
			Diagnostic: &dto.DiagnosticView{Error: result.Diagnostic.Error, Suggestions: suggestions},
		}, nil
	}

	s.store.Save(latestResult{Result: result, GeneratedAt: time.Now().UTC()})

	views := make([]dto.SolutionView, 0, len(result.Solutions))
	for _, sol := range result.Solutions {
		periods := make([]dto.PeriodView, 0, len(sol.Periods))
		for _, p := range sol.Periods {
			periods = append(periods, dto.PeriodView{
				Day: p.Day, PeriodNo: p.PeriodNo, RoomID: p.RoomID,
				BatchID: p.BatchID, SubjectID: p.SubjectID, FacultyID: p.FacultyID,
			})
		}
		views = append(views, dto.SolutionView{Periods: periods})
	}
	return &dto.GenerateVariantsResponse{Solutions: views}, nil
}

// Save persists one batch's slice of the cached variant set as a new
// Timetable version for the given term/class pair.
func (s *ScheduleGeneratorService) Save(ctx context.Context, termID, classID string, req dto.SaveTimetableRequest) (string, error) {
	if err := s.validator.Struct(req); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid save payload")
	}
	if err := s.ensureTermAndClass(ctx, termID, classID); err != nil {
		return "", err
	}

	cached, ok := s.store.Get()
	if !ok {
		return "", appErrors.Clone(appErrors.ErrNotFound, "no recently generated solution to save")
	}
	if req.VariantIndex >= len(cached.Result.Solutions) {
		return "", appErrors.Clone(appErrors.ErrValidation, "variantIndex out of range")
	}
	solution := cached.Result.Solutions[req.VariantIndex]

	batchPeriods := make([]scheduler.Period, 0)
	for _, p := range solution.Periods {
		if p.BatchID == classID {
			batchPeriods = append(batchPeriods, p)
		}
	}
	if len(batchPeriods) == 0 {
		return "", appErrors.Clone(appErrors.ErrNotFound, "no periods scheduled for this class in the cached solution")
	}

	if s.tx == nil {
		return "", appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	metaBytes, marshalErr := json.Marshal(map[string]any{
		"generatedAt":  cached.GeneratedAt,
		"variantIndex": req.VariantIndex,
		"algorithm":    "cpsolver_v1",
	})
	if marshalErr != nil {
		err = appErrors.Wrap(marshalErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode timetable metadata")
		return "", err
	}

	record := &models.SemesterSchedule{
		TermID:  termID,
		ClassID: classID,
		Status:  models.SemesterScheduleStatusDraft,
		Meta:    types.JSONText(metaBytes),
	}
	if err = s.semesters.CreateVersioned(ctx, tx, record); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create timetable version")
		return "", err
	}

	slotModels := make([]models.SemesterScheduleSlot, 0, len(batchPeriods))
	for _, p := range batchPeriods {
		roomID := p.RoomID
		slotModels = append(slotModels, models.SemesterScheduleSlot{
			SemesterScheduleID: record.ID,
			DayOfWeek:          p.Day,
			TimeSlot:           p.PeriodNo,
			SubjectID:          p.SubjectID,
			TeacherID:          p.FacultyID,
			Room:               &roomID,
		})
	}
	if err = s.slots.UpsertBatch(ctx, tx, slotModels); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist timetable slots")
		return "", err
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit timetable transaction")
		return "", err
	}
	return record.ID, nil
}

// List returns stored timetable versions for a term/class pair.
func (s *ScheduleGeneratorService) List(ctx context.Context, query dto.TimetableQuery) ([]models.SemesterSchedule, error) {
	if query.TermID == "" || query.ClassID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "termId and classId are required")
	}
	list, err := s.semesters.ListByTermClass(ctx, query.TermID, query.ClassID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetables")
	}
	return list, nil
}

// GetSlots returns slot detail for a stored timetable.
func (s *ScheduleGeneratorService) GetSlots(ctx context.Context, id string) ([]models.SemesterScheduleSlot, error) {
	if _, err := s.semesters.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	slots, err := s.slots.ListBySchedule(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable slots")
	}
	return slots, nil
}

// Delete removes a draft timetable version.
func (s *ScheduleGeneratorService) Delete(ctx context.Context, id string) error {
	record, err := s.semesters.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	if record.Status != models.SemesterScheduleStatusDraft {
		return appErrors.Clone(appErrors.ErrConflict, "only draft timetables can be deleted")
	}
	if err := s.semesters.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete timetable")
	}
	return nil
}

func (s *ScheduleGeneratorService) ensureTermAndClass(ctx context.Context, termID, classID string) error {
	if s.terms != nil {
		if _, err := s.terms.FindByID(ctx, termID); err != nil {
			if err == sql.ErrNoRows {
				return appErrors.Clone(appErrors.ErrNotFound, "term not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term")
		}
	}
	if s.classes != nil {
		if _, err := s.classes.FindByID(ctx, classID); err != nil {
			if err == sql.ErrNoRows {
				return appErrors.Clone(appErrors.ErrNotFound, "class not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
		}
	}
	return nil
}

// --- Proposal cache ---
//
// The solver's catalog-wide GenerateVariants call has no (termID, classID)
// of its own, so the cache holds a single latest result rather than one
// per key; Save slices out the periods belonging to the requested class.

type latestResult struct {
	Result      scheduler.Result
	GeneratedAt time.Time
}

type proposalStore struct {
	ttl     time.Duration
	mu      sync.RWMutex
	current *latestResult
}

func newProposalStore(ttl time.Duration) *proposalStore {
	return &proposalStore{ttl: ttl}
}

func (s *proposalStore) Save(r latestResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = &r
}

func (s *proposalStore) Get() (latestResult, bool) {
	s.mu.RLock()
	current := s.current
	s.mu.RUnlock()
	if current == nil {
		return latestResult{}, false
	}
	if time.Since(current.GeneratedAt) > s.ttl {
		s.mu.Lock()
		s.current = nil
		s.mu.Unlock()
		return latestResult{}, false
	}
	return *current, true
}
