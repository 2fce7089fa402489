package handler

import (
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlsaran/tt-scheduler-api/internal/models"
	"github.com/mlsaran/tt-scheduler-api/internal/service"
)

type roomRepoFake struct {
	rooms map[string]*models.Room
}

func newRoomHandlerFixture() *RoomHandler {
	repo := &roomRepoFake{rooms: map[string]*models.Room{}}
	return NewRoomHandler(service.NewRoomService(repo, nil, nil))
}

func (r *roomRepoFake) List(ctx context.Context, filter models.RoomFilter) ([]models.Room, int, error) {
	out := make([]models.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		out = append(out, *room)
	}
	return out, len(out), nil
}

func (r *roomRepoFake) FindByID(ctx context.Context, id string) (*models.Room, error) {
	if room, ok := r.rooms[id]; ok {
		return room, nil
	}
	return nil, sql.ErrNoRows
}

func (r *roomRepoFake) ExistsByName(ctx context.Context, name string, excludeID string) (bool, error) {
	for _, room := range r.rooms {
		if room.Name == name && room.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *roomRepoFake) Create(ctx context.Context, room *models.Room) error {
	room.ID = "room-" + room.Name
	r.rooms[room.ID] = room
	return nil
}

func (r *roomRepoFake) Update(ctx context.Context, room *models.Room) error {
	r.rooms[room.ID] = room
	return nil
}

func (r *roomRepoFake) Delete(ctx context.Context, id string) error {
	delete(r.rooms, id)
	return nil
}

func TestRoomHandlerCreateAndGet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newRoomHandlerFixture()

	payload := []byte(`{"name":"101","type":"lecture","capacity":40}`)
	req, _ := http.NewRequest(http.MethodPost, "/rooms", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "101")
}

func TestRoomHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newRoomHandlerFixture()

	req, _ := http.NewRequest(http.MethodGet, "/rooms/missing", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Get(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestRoomHandlerDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newRoomHandlerFixture()
	handler.service = service.NewRoomService(&roomRepoFake{rooms: map[string]*models.Room{
		"room-1": {ID: "room-1", Name: "101"},
	}}, nil, nil)

	req, _ := http.NewRequest(http.MethodDelete, "/rooms/room-1", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "room-1"}}

	handler.Delete(c)

	require.Equal(t, http.StatusNoContent, w.Code)
}
