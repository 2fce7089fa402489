package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlsaran/tt-scheduler-api/internal/models"
	appErrors "github.com/mlsaran/tt-scheduler-api/pkg/errors"
)

type roomRepoStub struct {
	rooms     map[string]*models.Room
	names     map[string]string
	createErr error
}

func newRoomRepoStub() *roomRepoStub {
	return &roomRepoStub{rooms: map[string]*models.Room{}, names: map[string]string{}}
}

func (s *roomRepoStub) List(ctx context.Context, filter models.RoomFilter) ([]models.Room, int, error) {
	out := make([]models.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		out = append(out, *r)
	}
	return out, len(out), nil
}

func (s *roomRepoStub) FindByID(ctx context.Context, id string) (*models.Room, error) {
	if r, ok := s.rooms[id]; ok {
		return r, nil
	}
	return nil, sql.ErrNoRows
}

func (s *roomRepoStub) ExistsByName(ctx context.Context, name string, excludeID string) (bool, error) {
	id, ok := s.names[name]
	return ok && id != excludeID, nil
}

func (s *roomRepoStub) Create(ctx context.Context, room *models.Room) error {
	if s.createErr != nil {
		return s.createErr
	}
	room.ID = "room-" + room.Name
	s.rooms[room.ID] = room
	s.names[room.Name] = room.ID
	return nil
}

func (s *roomRepoStub) Update(ctx context.Context, room *models.Room) error {
	s.rooms[room.ID] = room
	s.names[room.Name] = room.ID
	return nil
}

func (s *roomRepoStub) Delete(ctx context.Context, id string) error {
	delete(s.rooms, id)
	return nil
}

func TestRoomServiceCreate(t *testing.T) {
	repo := newRoomRepoStub()
	svc := NewRoomService(repo, nil, nil)

	room, err := svc.Create(context.Background(), CreateRoomRequest{Name: "101", Type: "lecture", Capacity: 40})
	require.NoError(t, err)
	assert.Equal(t, "101", room.Name)
}

func TestRoomServiceCreateDuplicateName(t *testing.T) {
	repo := newRoomRepoStub()
	svc := NewRoomService(repo, nil, nil)

	_, err := svc.Create(context.Background(), CreateRoomRequest{Name: "101", Type: "lecture", Capacity: 40})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateRoomRequest{Name: "101", Type: "lab", Capacity: 20})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestRoomServiceCreateValidation(t *testing.T) {
	repo := newRoomRepoStub()
	svc := NewRoomService(repo, nil, nil)

	_, err := svc.Create(context.Background(), CreateRoomRequest{Name: "", Type: "lecture", Capacity: 40})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestRoomServiceGetNotFound(t *testing.T) {
	repo := newRoomRepoStub()
	svc := NewRoomService(repo, nil, nil)

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestRoomServiceDelete(t *testing.T) {
	repo := newRoomRepoStub()
	svc := NewRoomService(repo, nil, nil)

	room, err := svc.Create(context.Background(), CreateRoomRequest{Name: "101", Type: "lecture", Capacity: 40})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), room.ID))
	_, err = svc.Get(context.Background(), room.ID)
	require.Error(t, err)
}
