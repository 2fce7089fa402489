package service

import (
	"context"
	"database/sql"
	"strconv"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mlsaran/tt-scheduler-api/internal/dto"
	"github.com/mlsaran/tt-scheduler-api/internal/models"
	"github.com/mlsaran/tt-scheduler-api/internal/scheduler"
	appErrors "github.com/mlsaran/tt-scheduler-api/pkg/errors"
)

func TestScheduleGeneratorServiceGenerateSuccess(t *testing.T) {
	service := newSchedulerServiceFixture(t, schedulerFixtureConfig{})

	resp, err := service.Generate(context.Background(), dto.GenerateVariantsRequest{NumVariants: 1})
	require.NoError(t, err)
	require.Nil(t, resp.Diagnostic)
	require.Len(t, resp.Solutions, 1)
	assert.NotEmpty(t, resp.Solutions[0].Periods)
}

func TestScheduleGeneratorServiceGenerateRejectsOutOfRange(t *testing.T) {
	service := newSchedulerServiceFixture(t, schedulerFixtureConfig{})

	_, err := service.Generate(context.Background(), dto.GenerateVariantsRequest{NumVariants: 0})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestScheduleGeneratorServiceGenerateInfeasibleReturnsDiagnostic(t *testing.T) {
	service := newSchedulerServiceFixture(t, schedulerFixtureConfig{noRooms: true})

	resp, err := service.Generate(context.Background(), dto.GenerateVariantsRequest{NumVariants: 1})
	require.NoError(t, err)
	require.Empty(t, resp.Solutions)
	require.NotNil(t, resp.Diagnostic)
}

func TestScheduleGeneratorServiceSave(t *testing.T) {
	txProvider, mock := newTxProviderMock(t)
	service := newSchedulerServiceFixture(t, schedulerFixtureConfig{tx: txProvider})

	_, err := service.Generate(context.Background(), dto.GenerateVariantsRequest{NumVariants: 1})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectCommit()

	id, err := service.Save(context.Background(), "term-1", "class-1", dto.SaveTimetableRequest{VariantIndex: 0})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleGeneratorServiceSaveWithoutPriorGenerate(t *testing.T) {
	txProvider, _ := newTxProviderMock(t)
	service := newSchedulerServiceFixture(t, schedulerFixtureConfig{tx: txProvider})

	_, err := service.Save(context.Background(), "term-1", "class-1", dto.SaveTimetableRequest{VariantIndex: 0})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestScheduleGeneratorServiceSaveVariantIndexOutOfRange(t *testing.T) {
	txProvider, _ := newTxProviderMock(t)
	service := newSchedulerServiceFixture(t, schedulerFixtureConfig{tx: txProvider})

	_, err := service.Generate(context.Background(), dto.GenerateVariantsRequest{NumVariants: 1})
	require.NoError(t, err)

	_, err = service.Save(context.Background(), "term-1", "class-1", dto.SaveTimetableRequest{VariantIndex: 5})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestScheduleGeneratorServiceDeleteRejectsPublished(t *testing.T) {
	semesters := &semesterScheduleRepoStub{items: []models.SemesterSchedule{
		{ID: "sched-1", Status: models.SemesterScheduleStatusPublished},
	}}
	service := NewScheduleGeneratorService(
		fakeCatalogFixture(false),
		termLookupStub{},
		classLookupStub{},
		semesters,
		&semesterScheduleSlotRepoStub{},
		noopTxProvider{},
		nil,
		validator.New(),
		zap.NewNop(),
		ScheduleGeneratorConfig{ProposalTTL: time.Hour},
	)

	err := service.Delete(context.Background(), "sched-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

// --- Fixtures ---

type schedulerFixtureConfig struct {
	tx      txProvider
	noRooms bool
}

func fakeCatalogFixture(noRooms bool) *fakeSchedulerCatalog {
	rooms := []scheduler.Room{{ID: "room-1", Name: "101", Type: "LECTURE", Capacity: 40}}
	if noRooms {
		rooms = nil
	}
	return &fakeSchedulerCatalog{
		rooms: rooms,
		faculty: []scheduler.Faculty{
			{ID: "teacher-1", Name: "Teacher One", MaxDay: 4, MaxWeek: 20, SubjectIDs: []string{"math"}},
		},
		batches: []scheduler.Batch{
			{ID: "class-1", Name: "10A", Size: 30, Programme: "Science", Semester: 1},
		},
		subjects: []scheduler.Subject{
			{ID: "math", Code: "MTH101", Name: "Mathematics", HoursWeek: 2, Type: "LECTURE", Semester: 1},
		},
	}
}

func newSchedulerServiceFixture(t *testing.T, cfg schedulerFixtureConfig) *ScheduleGeneratorService {
	t.Helper()
	semesters := &semesterScheduleRepoStub{}
	slots := &semesterScheduleSlotRepoStub{}
	tx := cfg.tx
	if tx == nil {
		tx = noopTxProvider{}
	}

	return NewScheduleGeneratorService(
		fakeCatalogFixture(cfg.noRooms),
		termLookupStub{},
		classLookupStub{},
		semesters,
		slots,
		tx,
		nil,
		validator.New(),
		zap.NewNop(),
		ScheduleGeneratorConfig{ProposalTTL: time.Hour},
	)
}

type fakeSchedulerCatalog struct {
	rooms      []scheduler.Room
	faculty    []scheduler.Faculty
	batches    []scheduler.Batch
	subjects   []scheduler.Subject
	fixedSlots []scheduler.FixedSlot
}

func (c *fakeSchedulerCatalog) Rooms(ctx context.Context) ([]scheduler.Room, error)      { return c.rooms, nil }
func (c *fakeSchedulerCatalog) Faculty(ctx context.Context) ([]scheduler.Faculty, error) { return c.faculty, nil }
func (c *fakeSchedulerCatalog) Batches(ctx context.Context) ([]scheduler.Batch, error)    { return c.batches, nil }
func (c *fakeSchedulerCatalog) Subjects(ctx context.Context) ([]scheduler.Subject, error) {
	return c.subjects, nil
}
func (c *fakeSchedulerCatalog) FixedSlots(ctx context.Context) ([]scheduler.FixedSlot, error) {
	return c.fixedSlots, nil
}

type termLookupStub struct{}

func (termLookupStub) FindByID(ctx context.Context, id string) (*models.Term, error) {
	return &models.Term{ID: id}, nil
}

type classLookupStub struct{}

func (classLookupStub) FindByID(ctx context.Context, id string) (*models.Class, error) {
	return &models.Class{ID: id}, nil
}

type semesterScheduleRepoStub struct {
	items []models.SemesterSchedule
}

func (s *semesterScheduleRepoStub) CreateVersioned(ctx context.Context, exec sqlx.ExtContext, schedule *models.SemesterSchedule) error {
	schedule.ID = uuidString(len(s.items) + 1)
	schedule.Version = len(s.items) + 1
	s.items = append(s.items, *schedule)
	return nil
}

func (s *semesterScheduleRepoStub) ListByTermClass(ctx context.Context, termID, classID string) ([]models.SemesterSchedule, error) {
	return s.items, nil
}

func (s *semesterScheduleRepoStub) FindByID(ctx context.Context, id string) (*models.SemesterSchedule, error) {
	for _, item := range s.items {
		if item.ID == id {
			return &item, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *semesterScheduleRepoStub) Delete(ctx context.Context, id string) error {
	for idx, item := range s.items {
		if item.ID == id {
			s.items = append(s.items[:idx], s.items[idx+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *semesterScheduleRepoStub) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.SemesterScheduleStatus, meta types.JSONText) error {
	for idx := range s.items {
		if s.items[idx].ID == id {
			s.items[idx].Status = status
			return nil
		}
	}
	return sql.ErrNoRows
}

type semesterScheduleSlotRepoStub struct {
	items map[string][]models.SemesterScheduleSlot
}

func (s *semesterScheduleSlotRepoStub) UpsertBatch(ctx context.Context, exec sqlx.ExtContext, slots []models.SemesterScheduleSlot) error {
	if s.items == nil {
		s.items = make(map[string][]models.SemesterScheduleSlot)
	}
	for _, slot := range slots {
		s.items[slot.SemesterScheduleID] = append(s.items[slot.SemesterScheduleID], slot)
	}
	return nil
}

func (s *semesterScheduleSlotRepoStub) ListBySchedule(ctx context.Context, scheduleID string) ([]models.SemesterScheduleSlot, error) {
	return s.items[scheduleID], nil
}

type noopTxProvider struct{}

func (noopTxProvider) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider unavailable")
}

func newTxProviderMock(t *testing.T) (txProvider, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { db.Close() })
	return &txProviderMock{db: sqlxdb}, mock
}

type txProviderMock struct {
	db *sqlx.DB
}

func (t *txProviderMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return t.db.BeginTxx(ctx, opts)
}

func uuidString(v int) string {
	return "sched-" + strconv.Itoa(v)
}
