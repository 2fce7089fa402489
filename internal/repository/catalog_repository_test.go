package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func newCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return NewCatalogRepository(
		NewRoomRepository(db),
		NewTeacherRepository(db),
		NewClassRepository(db),
		NewSubjectRepository(db),
		NewFixedSlotRepository(db),
	)
}

func TestCatalogRepositoryRooms(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()
	repo := newCatalogRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "type", "capacity", "available_slots", "created_at", "updated_at"}).
		AddRow("room-1", "101", "lecture", 40, nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, type, capacity, available_slots, created_at, updated_at FROM rooms ORDER BY name ASC")).
		WillReturnRows(rows)

	out, err := repo.Rooms(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "101", out[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepositoryFaculty(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()
	repo := newCatalogRepository(db)

	teacherRows := sqlmock.NewRows([]string{"id", "nip", "email", "full_name", "phone", "expertise", "active", "max_day", "max_week", "leave_avg", "created_at", "updated_at"}).
		AddRow("teacher-1", "nip-1", "t1@example.com", "Teacher One", "", "", true, 4, 20, 0.0, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, nip, email, full_name, phone, expertise, active, max_day, max_week, leave_avg, created_at, updated_at FROM teachers WHERE active = TRUE ORDER BY full_name ASC")).
		WillReturnRows(teacherRows)

	qualRows := sqlmock.NewRows([]string{"teacher_id", "subject_id"}).
		AddRow("teacher-1", "math")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT teacher_id, subject_id FROM teacher_subjects")).
		WillReturnRows(qualRows)

	out, err := repo.Faculty(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Teacher One", out[0].Name)
	assert.Equal(t, []string{"math"}, out[0].SubjectIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepositoryBatches(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()
	repo := newCatalogRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "grade", "track", "homeroom_teacher_id", "size", "programme", "semester", "created_at", "updated_at"}).
		AddRow("class-1", "10A", 10, "science", nil, 30, "Science", 1, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, grade, track, homeroom_teacher_id, size, programme, semester, created_at, updated_at FROM classes ORDER BY name ASC")).
		WillReturnRows(rows)

	out, err := repo.Batches(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "10A", out[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepositorySubjects(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()
	repo := newCatalogRepository(db)

	rows := sqlmock.NewRows([]string{"id", "code", "name", "track", "subject_group", "hours_week", "semester", "created_at", "updated_at"}).
		AddRow("math", "MTH101", "Mathematics", "science", "core", 4, 1, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, code, name, track, subject_group, hours_week, semester, created_at, updated_at FROM subjects ORDER BY code ASC")).
		WillReturnRows(rows)

	out, err := repo.Subjects(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "MTH101", out[0].Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepositoryFixedSlots(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()
	repo := newCatalogRepository(db)

	rows := sqlmock.NewRows([]string{"id", "class_id", "day", "period", "room_id", "created_at"}).
		AddRow("slot-1", "class-1", 0, 1, nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, class_id, day, period, room_id, created_at FROM fixed_slots ORDER BY class_id ASC, day ASC, period ASC")).
		WillReturnRows(rows)

	out, err := repo.FixedSlots(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "class-1", out[0].BatchID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
