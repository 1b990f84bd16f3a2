package event

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yohan-cs/yohan-event-planner-sub011/internal/apierror"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/logger"
	"github.com/yohan-cs/yohan-event-planner-sub011/middleware"
)

type Handler struct {
	Service *Service
	log     logger.Logger
}

func NewHandler(s *Service, log logger.Logger) *Handler {
	return &Handler{Service: s, log: log}
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event ID"})
		return uuid.Nil, false
	}
	return id, true
}

// ===========================
// 🎯 Create Event - POST /events
// @Summary Create an event
// @Description Confirmed events are rejected with 409 when they overlap the caller's schedule.
// @Tags Events
// @Accept json
// @Produce json
// @Param body body CreateEventRequest true "Event"
// @Success 201 {object} Event
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]interface{}
// @Security BearerAuth
// @Router /api/v1/events [post]
func (h *Handler) CreateEvent(c *gin.Context) {
	userID, ok := middleware.MustUserID(c)
	if !ok {
		return
	}

	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	ev, err := h.Service.Create(c.Request.Context(), userID, &req, middleware.GetIPFromContext(c))
	if err != nil {
		apierror.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, ev)
}

// ===========================
// 🔍 Get Event - GET /events/:id
// @Summary Get an event
// @Tags Events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} Event
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/events/{id} [get]
func (h *Handler) GetEventByID(c *gin.Context) {
	userID, ok := middleware.MustUserID(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	ev, err := h.Service.Get(c.Request.Context(), userID, id)
	if err != nil {
		apierror.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

// ===========================
// 📄 List Events - GET /events?from=&to=&confirmed=&limit=&offset=
// @Summary List the caller's events
// @Tags Events
// @Produce json
// @Param from query string false "RFC 3339 lower bound (exclusive of events ending at it)"
// @Param to query string false "RFC 3339 upper bound (exclusive)"
// @Param confirmed query bool false "Only confirmed or only drafts"
// @Param limit query int false "Page size (default 50, max 200)"
// @Param offset query int false "Offset"
// @Success 200 {array} Event
// @Security BearerAuth
// @Router /api/v1/events [get]
func (h *Handler) ListEvents(c *gin.Context) {
	userID, ok := middleware.MustUserID(c)
	if !ok {
		return
	}

	var f ListFilter
	for _, p := range []struct {
		name string
		dst  **time.Time
	}{{"from", &f.From}, {"to", &f.To}} {
		if s := c.Query(p.name); s != "" {
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + p.name + ", use RFC 3339"})
				return
			}
			*p.dst = &t
		}
	}
	if s := c.Query("confirmed"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid confirmed flag"})
			return
		}
		f.Confirmed = &b
	}
	f.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	f.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	events, err := h.Service.List(c.Request.Context(), userID, f)
	if err != nil {
		apierror.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// ===========================
// 🛠 Update Event - PUT /events/:id
// @Summary Update an event
// @Tags Events
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param body body UpdateEventRequest true "Fields to change"
// @Success 200 {object} Event
// @Failure 409 {object} map[string]interface{}
// @Security BearerAuth
// @Router /api/v1/events/{id} [put]
func (h *Handler) UpdateEvent(c *gin.Context) {
	userID, ok := middleware.MustUserID(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	ev, err := h.Service.Update(c.Request.Context(), userID, id, &req, middleware.GetIPFromContext(c))
	if err != nil {
		apierror.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

// ===========================
// ✅ Confirm Event - POST /events/:id/confirm
// @Summary Confirm a draft event
// @Tags Events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} Event
// @Failure 409 {object} map[string]interface{}
// @Security BearerAuth
// @Router /api/v1/events/{id}/confirm [post]
func (h *Handler) ConfirmEvent(c *gin.Context) {
	userID, ok := middleware.MustUserID(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	ev, err := h.Service.Confirm(c.Request.Context(), userID, id, middleware.GetIPFromContext(c))
	if err != nil {
		apierror.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

// ===========================
// ❌ Delete Event - DELETE /events/:id
// @Summary Delete an event
// @Tags Events
// @Param id path string true "Event ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/events/{id} [delete]
func (h *Handler) DeleteEvent(c *gin.Context) {
	userID, ok := middleware.MustUserID(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.Service.Delete(c.Request.Context(), userID, id, middleware.GetIPFromContext(c)); err != nil {
		apierror.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "event deleted successfully"})
}

// ===========================
// 🔎 Check Event - POST /events/check
// @Summary Dry-run conflict check for an event
// @Tags Events
// @Accept json
// @Produce json
// @Param body body CheckEventRequest true "Candidate times"
// @Success 200 {object} CheckResponse
// @Security BearerAuth
// @Router /api/v1/events/check [post]
func (h *Handler) CheckEvent(c *gin.Context) {
	userID, ok := middleware.MustUserID(c)
	if !ok {
		return
	}

	var req CheckEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	ids, err := h.Service.Check(c.Request.Context(), userID, &req)
	if err != nil {
		apierror.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, CheckResponse{Conflicts: len(ids) > 0, ConflictingIDs: ids})
}
