package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mlsaran/tt-scheduler-api/internal/dto"
	internalmiddleware "github.com/mlsaran/tt-scheduler-api/internal/middleware"
	"github.com/mlsaran/tt-scheduler-api/internal/models"
	"github.com/mlsaran/tt-scheduler-api/internal/service"
	appErrors "github.com/mlsaran/tt-scheduler-api/pkg/errors"
)

func TestAliasRoutesIntegration(t *testing.T) {
	router := buildAliasRouter()

	t.Run("calendar success", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/calendar?term_id=2024_1", nil)
		req.Header.Set("X-Test-Role", string(models.RoleAdmin))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), `"events"`)
	})

	t.Run("calendar unauthorized", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/calendar?term_id=2024_1", nil)
		resp := performRequest(router, req)
		require.Equal(t, http.StatusUnauthorized, resp.Code)
	})

	t.Run("schedule preferences get success", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/schedules/preferences?teacher_id=123", nil)
		req.Header.Set("X-Test-Role", string(models.RoleAdmin))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
	})

	t.Run("schedule preferences get forbidden", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/schedules/preferences?teacher_id=123", nil)
		req.Header.Set("X-Test-Role", string(models.RoleTeacher))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("schedule preferences post success", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/schedules/preferences?teacher_id=teacher-1", bytes.NewBufferString(`{"max_load_per_day":4}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-Role", string(models.RoleSuperAdmin))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
	})
}

func buildAliasRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if role := c.GetHeader("X-Test-Role"); role != "" {
			c.Set(internalmiddleware.ContextUserKey, &models.JWTClaims{
				UserID: "test-user",
				Role:   models.UserRole(role),
			})
		}
		c.Next()
	})

	calendarHandler := NewCalendarAliasHandler(&calendarAliasServiceIntegrationMock{}, zap.NewNop())
	preferenceHandler := NewSchedulePreferenceHandler(&schedulePreferenceIntegrationMock{})

	secured := router.Group("")
	secured.GET("/calendar", internalmiddleware.RBAC(string(models.RoleTeacher), string(models.RoleAdmin), string(models.RoleSuperAdmin)), calendarHandler.List)
	secured.GET("/schedules/preferences", internalmiddleware.RBAC(string(models.RoleAdmin), string(models.RoleSuperAdmin)), preferenceHandler.Get)
	secured.POST("/schedules/preferences", internalmiddleware.RBAC(string(models.RoleAdmin), string(models.RoleSuperAdmin)), preferenceHandler.Upsert)

	return router
}

func performRequest(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type calendarAliasServiceIntegrationMock struct{}

func (calendarAliasServiceIntegrationMock) List(ctx context.Context, req dto.CalendarAliasRequest, claims *models.JWTClaims) (*dto.CalendarAliasResponse, error) {
	return &dto.CalendarAliasResponse{
		Range: dto.CalendarAliasRange{
			StartDate: "2024-01-01",
			EndDate:   "2024-01-31",
		},
		Events: []dto.CalendarAliasEvent{
			{ID: "evt-1", Title: "Exam", Type: "EXAM", StartDate: "2024-01-10", EndDate: "2024-01-10", Audience: "ALL"},
		},
	}, nil
}

type schedulePreferenceIntegrationMock struct{}

func (schedulePreferenceIntegrationMock) Get(ctx context.Context, teacherID string) (*models.TeacherPreference, error) {
	if teacherID == "missing" {
		return nil, appErrors.ErrNotFound
	}
	return &models.TeacherPreference{TeacherID: teacherID}, nil
}

func (schedulePreferenceIntegrationMock) Upsert(ctx context.Context, teacherID string, req service.UpsertTeacherPreferenceRequest) (*models.TeacherPreference, error) {
	return &models.TeacherPreference{TeacherID: teacherID, MaxLoadPerDay: req.MaxLoadPerDay}, nil
}
