package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mlsaran/tt-scheduler-api/internal/service"
	appErrors "github.com/mlsaran/tt-scheduler-api/pkg/errors"
	"github.com/mlsaran/tt-scheduler-api/pkg/response"
)

// FixedSlotHandler handles fixed slot endpoints.
type FixedSlotHandler struct {
	service *service.FixedSlotService
}

// NewFixedSlotHandler constructs a fixed slot handler.
func NewFixedSlotHandler(svc *service.FixedSlotService) *FixedSlotHandler {
	return &FixedSlotHandler{service: svc}
}

// List godoc
// @Summary List fixed slots for a class
// @Tags FixedSlots
// @Produce json
// @Param classId query string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /fixed-slots [get]
func (h *FixedSlotHandler) List(c *gin.Context) {
	classID := c.Query("classId")
	if classID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "classId is required"))
		return
	}
	slots, err := h.service.ListByClass(c.Request.Context(), classID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// Create godoc
// @Summary Pin a fixed slot
// @Tags FixedSlots
// @Accept json
// @Produce json
// @Param payload body service.CreateFixedSlotRequest true "Fixed slot payload"
// @Success 201 {object} response.Envelope
// @Router /fixed-slots [post]
func (h *FixedSlotHandler) Create(c *gin.Context) {
	var req service.CreateFixedSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	slot, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, slot)
}

// Delete godoc
// @Summary Remove a fixed slot
// @Tags FixedSlots
// @Produce json
// @Param id path string true "Fixed slot ID"
// @Success 204
// @Router /fixed-slots/{id} [delete]
func (h *FixedSlotHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
