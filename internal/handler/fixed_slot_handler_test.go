package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlsaran/tt-scheduler-api/internal/models"
	"github.com/mlsaran/tt-scheduler-api/internal/service"
)

type fixedSlotRepoFake struct {
	byClass map[string][]models.FixedSlot
}

func newFixedSlotHandlerFixture() *FixedSlotHandler {
	repo := &fixedSlotRepoFake{byClass: map[string][]models.FixedSlot{}}
	return NewFixedSlotHandler(service.NewFixedSlotService(repo, nil, nil))
}

func (r *fixedSlotRepoFake) ListByClass(ctx context.Context, classID string) ([]models.FixedSlot, error) {
	return r.byClass[classID], nil
}

func (r *fixedSlotRepoFake) Create(ctx context.Context, slot *models.FixedSlot) error {
	slot.ID = "slot-1"
	r.byClass[slot.ClassID] = append(r.byClass[slot.ClassID], *slot)
	return nil
}

func (r *fixedSlotRepoFake) Delete(ctx context.Context, id string) error {
	return nil
}

func TestFixedSlotHandlerListRequiresClassID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newFixedSlotHandlerFixture()

	req, _ := http.NewRequest(http.MethodGet, "/fixed-slots", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.List(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFixedSlotHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newFixedSlotHandlerFixture()

	payload := []byte(`{"class_id":"class-1","day":0,"period":1}`)
	req, _ := http.NewRequest(http.MethodPost, "/fixed-slots", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "class-1")
}

func TestFixedSlotHandlerDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newFixedSlotHandlerFixture()

	req, _ := http.NewRequest(http.MethodDelete, "/fixed-slots/slot-1", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "slot-1"}}

	handler.Delete(c)

	require.Equal(t, http.StatusNoContent, w.Code)
}
