package event

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
	g := r.Group("/events", func(c *gin.Context) {
		middleware.SetUserID(c, owner)
		c.Next()
	})
	g.POST("", h.CreateEvent)
	g.GET("", h.ListEvents)
	g.POST("/check", h.CheckEvent)
	g.GET("/:id", h.GetEventByID)
	g.DELETE("/:id", h.DeleteEvent)
	g.POST("/:id/confirm", h.ConfirmEvent)
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

func TestHandler_CreateConflictReturns409(t *testing.T) {
	existing := confirmed(14, 9, 10)
	r := router(newFixture(nil, existing))

	w := do(r, http.MethodPost, "/events", map[string]interface{}{
		"name": "clash", "start_time": at(14, 9), "end_time": at(14, 11), "confirmed": true,
	})
	require.Equal(t, http.StatusConflict, w.Code)

	var body struct {
		Error          string      `json:"error"`
		ConflictingIDs []uuid.UUID `json:"conflicting_ids"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []uuid.UUID{existing.ID}, body.ConflictingIDs)
}

func TestHandler_Create(t *testing.T) {
	r := router(newFixture(nil))

	w := do(r, http.MethodPost, "/events", map[string]interface{}{
		"name": "focus", "start_time": at(14, 9), "end_time": at(14, 11), "confirmed": true,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var ev Event
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ev))
	assert.True(t, ev.Confirmed)
	assert.Equal(t, owner, ev.CreatorID)
}

func TestHandler_BadRequests(t *testing.T) {
	r := router(newFixture(nil))

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
	}{
		{"missing name", http.MethodPost, "/events", map[string]interface{}{"start_time": at(14, 9), "end_time": at(14, 10)}, http.StatusBadRequest},
		{"inverted times", http.MethodPost, "/events", map[string]interface{}{"name": "x", "start_time": at(14, 10), "end_time": at(14, 9)}, http.StatusBadRequest},
		{"malformed id", http.MethodGet, "/events/42", nil, http.StatusBadRequest},
		{"unknown id", http.MethodGet, "/events/" + uuid.NewString(), nil, http.StatusNotFound},
		{"bad from", http.MethodGet, "/events?from=yesterday", nil, http.StatusBadRequest},
		{"bad confirmed flag", http.MethodGet, "/events?confirmed=maybe", nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, do(r, tt.method, tt.path, tt.body).Code)
		})
	}
}

func TestHandler_Check(t *testing.T) {
	existing := confirmed(14, 9, 10)
	r := router(newFixture(nil, existing))

	w := do(r, http.MethodPost, "/events/check", map[string]interface{}{
		"start_time": at(14, 9), "end_time": at(14, 10),
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp CheckResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Conflicts)
	assert.Equal(t, []uuid.UUID{existing.ID}, resp.ConflictingIDs)
}
