package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/mlsaran/tt-scheduler-api/internal/dto"
	"github.com/mlsaran/tt-scheduler-api/internal/models"
)

type scheduleGeneratorMock struct {
	captured dto.GenerateVariantsRequest
	saveErr  error
	savedID  string
}

func (m *scheduleGeneratorMock) Generate(ctx context.Context, req dto.GenerateVariantsRequest) (*dto.GenerateVariantsResponse, error) {
	m.captured = req
	return &dto.GenerateVariantsResponse{
		Solutions: []dto.SolutionView{{Periods: []dto.PeriodView{{Day: 0, PeriodNo: 1, RoomID: "r1", BatchID: "10A", SubjectID: "math", FacultyID: "t1"}}}},
	}, nil
}

func (m *scheduleGeneratorMock) Save(ctx context.Context, termID, classID string, req dto.SaveTimetableRequest) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	if m.savedID != "" {
		return m.savedID, nil
	}
	return "timetable-1", nil
}

func (m *scheduleGeneratorMock) List(ctx context.Context, query dto.TimetableQuery) ([]models.SemesterSchedule, error) {
	return nil, nil
}

func (m *scheduleGeneratorMock) GetSlots(ctx context.Context, id string) ([]models.SemesterScheduleSlot, error) {
	room := "r1"
	return []models.SemesterScheduleSlot{
		{ID: "slot-1", SemesterScheduleID: id, DayOfWeek: 0, TimeSlot: 1, SubjectID: "math", TeacherID: "t1", Room: &room},
	}, nil
}

func (m *scheduleGeneratorMock) Delete(ctx context.Context, id string) error {
	return nil
}

func TestScheduleGeneratorHandler_GenerateSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &scheduleGeneratorMock{}
	handler := &ScheduleGeneratorHandler{service: mockSvc}
	payload := []byte(`{"numVariants":2}`)
	req, _ := http.NewRequest(http.MethodPost, "/schedules/generate", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Generate(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 2, mockSvc.captured.NumVariants)
	require.Contains(t, w.Body.String(), `"solutions"`)
}

func TestScheduleGeneratorHandler_GenerateValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &ScheduleGeneratorHandler{service: &scheduleGeneratorMock{}}
	req, _ := http.NewRequest(http.MethodPost, "/schedules/generate", bytes.NewReader([]byte(`{"numVariants":`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Generate(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleGeneratorHandler_SaveSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &scheduleGeneratorMock{savedID: "timetable-42"}
	handler := &ScheduleGeneratorHandler{service: mockSvc}
	payload := []byte(`{"variantIndex":0}`)
	req, _ := http.NewRequest(http.MethodPost, "/schedules/2025/10A/save", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "termId", Value: "2025"}, {Key: "classId", Value: "10A"}}

	handler.Save(c)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Contains(t, w.Body.String(), "timetable-42")
}

func TestScheduleGeneratorHandler_Slots(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &ScheduleGeneratorHandler{service: &scheduleGeneratorMock{}}
	req, _ := http.NewRequest(http.MethodGet, "/timetables/tt-1/slots", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "tt-1"}}

	handler.Slots(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "math")
}

func TestScheduleGeneratorHandler_Delete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &ScheduleGeneratorHandler{service: &scheduleGeneratorMock{}}
	req, _ := http.NewRequest(http.MethodDelete, "/timetables/tt-1", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "tt-1"}}

	handler.Delete(c)

	require.Equal(t, http.StatusNoContent, w.Code)
}
