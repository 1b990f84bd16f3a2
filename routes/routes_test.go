package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/yohan-cs/yohan-event-planner-sub011/config"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/auditlog"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/calendarfeed"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/event"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/logger"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/recurringevent"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/user"
)

func engine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	Setup(r, &config.Config{
		JWTAccessSecret: "s3cret",
		CORSOrigins:     []string{"http://localhost:5173"},
	}, logger.NewNop(), Handlers{
		Events:          &event.Handler{},
		RecurringEvents: &recurringevent.Handler{},
		Users:           &user.Handler{},
		AuditLogs:       &auditlog.Handler{},
		Calendar:        &calendarfeed.Handler{},
	}, nil)
	return r
}

func TestHealthz(t *testing.T) {
	w := httptest.NewRecorder()
	engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPIRequiresToken(t *testing.T) {
	r := engine()
	for _, path := range []string{
		"/api/v1/events",
		"/api/v1/recurring-events",
		"/api/v1/me",
		"/api/v1/audit-logs",
		"/api/v1/calendar.ics",
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/events", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	w := httptest.NewRecorder()
	engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}
