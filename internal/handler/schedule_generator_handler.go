package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mlsaran/tt-scheduler-api/internal/dto"
	"github.com/mlsaran/tt-scheduler-api/internal/models"
	"github.com/mlsaran/tt-scheduler-api/internal/service"
	appErrors "github.com/mlsaran/tt-scheduler-api/pkg/errors"
	"github.com/mlsaran/tt-scheduler-api/pkg/export"
	"github.com/mlsaran/tt-scheduler-api/pkg/response"
)

type scheduleGenerator interface {
	Generate(ctx context.Context, req dto.GenerateVariantsRequest) (*dto.GenerateVariantsResponse, error)
	Save(ctx context.Context, termID, classID string, req dto.SaveTimetableRequest) (string, error)
	List(ctx context.Context, query dto.TimetableQuery) ([]models.SemesterSchedule, error)
	GetSlots(ctx context.Context, id string) ([]models.SemesterScheduleSlot, error)
	Delete(ctx context.Context, id string) error
}

// ScheduleGeneratorHandler exposes constraint-solver scheduling endpoints.
type ScheduleGeneratorHandler struct {
	service   scheduleGenerator
	csvExport *export.CSVExporter
	pdfExport *export.PDFExporter
}

// NewScheduleGeneratorHandler constructs the handler.
func NewScheduleGeneratorHandler(svc *service.ScheduleGeneratorService) *ScheduleGeneratorHandler {
	return &ScheduleGeneratorHandler{
		service:   svc,
		csvExport: export.NewCSVExporter(),
		pdfExport: export.NewPDFExporter(),
	}
}

// Generate godoc
// @Summary Generate timetable variants for the full catalog
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param payload body dto.GenerateVariantsRequest true "Generate payload"
// @Success 200 {object} response.Envelope
// @Router /schedules/generate [post]
func (h *ScheduleGeneratorHandler) Generate(c *gin.Context) {
	var req dto.GenerateVariantsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}
	result, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Save godoc
// @Summary Save a generated variant as a new timetable version
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param termId path string true "Term ID"
// @Param classId path string true "Class ID"
// @Param payload body dto.SaveTimetableRequest true "Save payload"
// @Success 201 {object} response.Envelope
// @Router /schedules/{termId}/{classId}/save [post]
func (h *ScheduleGeneratorHandler) Save(c *gin.Context) {
	var req dto.SaveTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid save payload"))
		return
	}
	id, err := h.service.Save(c.Request.Context(), c.Param("termId"), c.Param("classId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"timetableId": id})
}

// List godoc
// @Summary List stored timetable versions for a term/class pair
// @Tags Scheduler
// @Produce json
// @Param termId path string true "Term ID"
// @Param classId path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/{termId}/{classId} [get]
func (h *ScheduleGeneratorHandler) List(c *gin.Context) {
	query := dto.TimetableQuery{
		TermID:  c.Param("termId"),
		ClassID: c.Param("classId"),
	}
	result, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Slots godoc
// @Summary Get slots for a stored timetable version
// @Tags Scheduler
// @Produce json
// @Param id path string true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id}/slots [get]
func (h *ScheduleGeneratorHandler) Slots(c *gin.Context) {
	slots, err := h.service.GetSlots(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// Delete godoc
// @Summary Delete a draft timetable version
// @Tags Scheduler
// @Param id path string true "Timetable ID"
// @Success 204
// @Router /timetables/{id} [delete]
func (h *ScheduleGeneratorHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ExportCSV godoc
// @Summary Export a timetable version as CSV
// @Tags Scheduler
// @Produce text/csv
// @Param id path string true "Timetable ID"
// @Success 200 {file} file
// @Router /timetables/{id}/export.csv [get]
func (h *ScheduleGeneratorHandler) ExportCSV(c *gin.Context) {
	slots, err := h.service.GetSlots(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	data, err := h.csvExport.Render(slotDataset(slots))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv"))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=timetable-%s.csv", c.Param("id")))
	c.Data(http.StatusOK, "text/csv", data)
}

// ExportPDF godoc
// @Summary Export a timetable version as PDF
// @Tags Scheduler
// @Produce application/pdf
// @Param id path string true "Timetable ID"
// @Success 200 {file} file
// @Router /timetables/{id}/export.pdf [get]
func (h *ScheduleGeneratorHandler) ExportPDF(c *gin.Context) {
	slots, err := h.service.GetSlots(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	data, err := h.pdfExport.Render(slotDataset(slots), "Timetable")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf"))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=timetable-%s.pdf", c.Param("id")))
	c.Data(http.StatusOK, "application/pdf", data)
}

// slotDataset renders stored slots as a day/period grid, one row per
// day-of-week and one column per period number.
func slotDataset(slots []models.SemesterScheduleSlot) export.Dataset {
	maxPeriod := 0
	for _, s := range slots {
		if s.TimeSlot > maxPeriod {
			maxPeriod = s.TimeSlot
		}
	}
	headers := make([]string, 0, maxPeriod+1)
	headers = append(headers, "Day")
	for p := 1; p <= maxPeriod; p++ {
		headers = append(headers, fmt.Sprintf("Period %d", p))
	}

	byDay := make(map[int]map[int]string)
	for _, s := range slots {
		if byDay[s.DayOfWeek] == nil {
			byDay[s.DayOfWeek] = make(map[int]string)
		}
		cell := s.SubjectID
		if s.TeacherID != "" {
			cell = fmt.Sprintf("%s (%s)", s.SubjectID, s.TeacherID)
		}
		if s.Room != nil {
			cell = fmt.Sprintf("%s @%s", cell, *s.Room)
		}
		byDay[s.DayOfWeek][s.TimeSlot] = cell
	}

	rows := make([]map[string]string, 0, len(byDay))
	for day := 0; day <= 6; day++ {
		periods, ok := byDay[day]
		if !ok {
			continue
		}
		row := map[string]string{"Day": strconv.Itoa(day)}
		for p := 1; p <= maxPeriod; p++ {
			row[fmt.Sprintf("Period %d", p)] = periods[p]
		}
		rows = append(rows, row)
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
