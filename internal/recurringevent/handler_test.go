package recurringevent

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yohan-cs/yohan-event-planner-sub011/internal/logger"
	"github.com/yohan-cs/yohan-event-planner-sub011/middleware"
)

func router(f *fixture) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(f.svc, logger.NewNop())

	r := gin.New()
	g := r.Group("/recurring-events", func(c *gin.Context) {
		middleware.SetUserID(c, owner)
		c.Next()
	})
	g.POST("", h.CreateRecurringEvent)
	g.GET("", h.ListRecurringEvents)
	g.POST("/check", h.CheckRecurringEvent)
	g.GET("/:id", h.GetRecurringEventByID)
	g.POST("/:id/skip-days", h.AddSkipDays)
	g.DELETE("/:id/skip-days", h.RemoveSkipDays)
	g.GET("/:id/occurrences", h.ListOccurrences)
	return r
}

func do(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_CreateReturnsCivilDates(t *testing.T) {
	r := router(newFixture())

	w := do(r, http.MethodPost, "/recurring-events", map[string]interface{}{
		"name": "choir", "start_date": "2025-07-07", "start_time": "19:00", "end_time": "21:00",
		"recurrence_pattern": "FREQ=WEEKLY;BYDAY=TH",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "2025-07-07", body["start_date"])
	assert.Nil(t, body["end_date"])
	assert.Equal(t, []interface{}{}, body["skip_days"])
	assert.Equal(t, false, body["confirmed"])
}

func TestHandler_CreateConflictReturns409(t *testing.T) {
	existing := series(t, "FREQ=WEEKLY;BYDAY=TH", "2025-07-03", "", "19:00", "20:00")
	r := router(newFixture(existing))

	w := do(r, http.MethodPost, "/recurring-events", map[string]interface{}{
		"name": "choir", "start_date": "2025-07-07", "start_time": "19:30", "end_time": "21:00",
		"recurrence_pattern": "WEEKLY:THURSDAY", "confirmed": true,
	})
	require.Equal(t, http.StatusConflict, w.Code)

	var body struct {
		ConflictingIDs []uuid.UUID `json:"conflicting_ids"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []uuid.UUID{existing.ID}, body.ConflictingIDs)
}

func TestHandler_BadRequests(t *testing.T) {
	re := series(t, "FREQ=WEEKLY;BYDAY=MO", "2025-07-07", "", "09:00", "10:00")
	r := router(newFixture(re))
	base := "/recurring-events/" + re.ID.String()

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
	}{
		{"missing fields", http.MethodPost, "/recurring-events", map[string]string{"name": "x"}},
		{"bad pattern", http.MethodPost, "/recurring-events", map[string]string{
			"name": "x", "start_date": "2025-07-07", "start_time": "09:00", "end_time": "10:00", "recurrence_pattern": "FREQ=MONTHLY",
		}},
		{"bad id", http.MethodGet, "/recurring-events/nope", nil},
		{"empty skip list", http.MethodPost, base + "/skip-days", map[string][]string{"dates": {}}},
		{"occurrences without from", http.MethodGet, base + "/occurrences", nil},
		{"bad confirmed flag", http.MethodGet, "/recurring-events?confirmed=maybe", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestHandler_RemoveSkipDayConflictReturns409(t *testing.T) {
	weekly := series(t, "FREQ=WEEKLY;BYDAY=MO", "2025-07-07", "", "09:00", "10:00", "2025-07-14")
	oneOff := series(t, "FREQ=WEEKLY;BYDAY=MO", "2025-07-14", "2025-07-14", "09:30", "10:30")
	r := router(newFixture(weekly, oneOff))

	w := do(r, http.MethodDelete, "/recurring-events/"+weekly.ID.String()+"/skip-days",
		map[string][]string{"dates": {"2025-07-14"}})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHandler_Occurrences(t *testing.T) {
	re := series(t, "FREQ=WEEKLY;BYDAY=MO", "2025-07-07", "", "09:00", "10:00", "2025-07-14")
	r := router(newFixture(re))

	w := do(r, http.MethodGet, "/recurring-events/"+re.ID.String()+"/occurrences?from=2025-07-01&to=2025-07-21", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var out []Occurrence
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, "2025-07-07", out[0].Date)
	assert.Equal(t, "2025-07-21", out[1].Date)
}

func TestHandler_GetUnknownIs404(t *testing.T) {
	r := router(newFixture())
	w := do(r, http.MethodGet, "/recurring-events/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
