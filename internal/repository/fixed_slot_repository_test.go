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

	"github.com/mlsaran/tt-scheduler-api/internal/models"
)

func newFixedSlotRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestFixedSlotRepositoryListByClass(t *testing.T) {
	db, mock, cleanup := newFixedSlotRepoMock(t)
	defer cleanup()
	repo := NewFixedSlotRepository(db)

	rows := sqlmock.NewRows([]string{"id", "class_id", "day", "period", "room_id", "created_at"}).
		AddRow("slot-1", "class-1", 0, 1, nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, class_id, day, period, room_id, created_at FROM fixed_slots WHERE class_id = $1 ORDER BY day ASC, period ASC")).
		WithArgs("class-1").
		WillReturnRows(rows)

	slots, err := repo.ListByClass(context.Background(), "class-1")
	require.NoError(t, err)
	assert.Len(t, slots, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFixedSlotRepositoryListAll(t *testing.T) {
	db, mock, cleanup := newFixedSlotRepoMock(t)
	defer cleanup()
	repo := NewFixedSlotRepository(db)

	rows := sqlmock.NewRows([]string{"id", "class_id", "day", "period", "room_id", "created_at"}).
		AddRow("slot-1", "class-1", 0, 1, nil, time.Now()).
		AddRow("slot-2", "class-2", 1, 2, nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, class_id, day, period, room_id, created_at FROM fixed_slots ORDER BY class_id ASC, day ASC, period ASC")).
		WillReturnRows(rows)

	slots, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, slots, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFixedSlotRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newFixedSlotRepoMock(t)
	defer cleanup()
	repo := NewFixedSlotRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO fixed_slots")).
		WithArgs(sqlmock.AnyArg(), "class-1", 0, 1, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	slot := &models.FixedSlot{ClassID: "class-1", Day: 0, Period: 1}
	err := repo.Create(context.Background(), slot)
	require.NoError(t, err)
	assert.NotEmpty(t, slot.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFixedSlotRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newFixedSlotRepoMock(t)
	defer cleanup()
	repo := NewFixedSlotRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM fixed_slots WHERE id = $1")).
		WithArgs("slot-1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Delete(context.Background(), "slot-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
