package recurringevent

import (
	"context"
	"net/http"
	"strconv"

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
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recurring event ID"})
		return uuid.Nil, false
	}
	return id, true
}

// ===========================
// 🎯 Create Recurring Event - POST /recurring-events
// @Summary Create a recurring event
// @Description Confirmed series are rejected with 409 when any occurrence collides with the caller's schedule.
// @Tags RecurringEvents
// @Accept json
// @Produce json
// @Param body body CreateRecurringEventRequest true "Recurring event"
// @Success 201 {object} RecurringEventResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]interface{}
// @Security BearerAuth
// @Router /api/v1/recurring-events [post]
func (h *Handler) CreateRecurringEvent(c *gin.Context) {
	userID, ok := middleware.MustUserID(c)
	if !ok {
		return
	}

	var req CreateRecurringEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	re, err := h.Service.Create(c.Request.Context(), userID, &req, middleware.GetIPFromContext(c))
	if err != nil {
		apierror.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, re.Response())
}

// ===========================
// 🔍 Get Recurring Event - GET /recurring-events/:id
// @Summary Get a recurring event
// @Tags RecurringEvents
// @Produce json
// @Param id path string true "Recurring event ID"
// @Success 200 {object} RecurringEventResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/recurring-events/{id} [get]
func (h *Handler) GetRecurringEventByID(c *gin.Context) {
	userID, ok := middleware.MustUserID(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	re, err := h.Service.Get(c.Request.Context(), userID, id)
	if err != nil {
		apierror.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, re.Response())
}

// ===========================
// 📄 List Recurring Events - GET /recurring-events?confirmed=&limit=&offset=
// @Summary List the caller's recurring events
// @Tags RecurringEvents
// @Produce json
// @Param confirmed query bool false "Only confirmed or only drafts"
// @Param limit query int false "Page size (default 50, max 200)"
// @Param offset query int false "Offset"
// @Success 200 {array} RecurringEventResponse
// @Security BearerAuth
// @Router /api/v1/recurring-events [get]
func (h *Handler) ListRecurringEvents(c *gin.Context) {
	userID, ok := middleware.MustUserID(c)
	if !ok {
		return
	}

	var confirmed *bool
	if s := c.Query("confirmed"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid confirmed flag"})
			return
		}
		confirmed = &b
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	list, err := h.Service.List(c.Request.Context(), userID, confirmed, limit, offset)
	if err != nil {
		apierror.Respond(c, h.log, err)
		return
	}
	out := make([]RecurringEventResponse, 0, len(list))
	for i := range list {
		out = append(out, list[i].Response())
	}
	c.JSON(http.StatusOK, out)
}

// ===========================
// 🛠 Update Recurring Event - PUT /recurring-events/:id
// @Summary Update a recurring event
// @Tags RecurringEvents
// @Accept json
// @Produce json
// @Param id path string true "Recurring event ID"
// @Param body body UpdateRecurringEventRequest true "Fields to change"
// @Success 200 {object} RecurringEventResponse
// @Failure 409 {object} map[string]interface{}
// @Security BearerAuth
// @Router /api/v1/recurring-events/{id} [put]
func (h *Handler) UpdateRecurringEvent(c *gin.Context) {
	userID, ok := middleware.MustUserID(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req UpdateRecurringEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	re, err := h.Service.Update(c.Request.Context(), userID, id, &req, middleware.GetIPFromContext(c))
	if err != nil {
		apierror.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, re.Response())
}

// ===========================
// ✅ Confirm Recurring Event - POST /recurring-events/:id/confirm
// @Summary Confirm a draft recurring event
// @Tags RecurringEvents
// @Produce json
// @Param id path string true "Recurring event ID"
// @Success 200 {object} RecurringEventResponse
// @Failure 409 {object} map[string]interface{}
// @Security BearerAuth
// @Router /api/v1/recurring-events/{id}/confirm [post]
func (h *Handler) ConfirmRecurringEvent(c *gin.Context) {
	userID, ok := middleware.MustUserID(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	re, err := h.Service.Confirm(c.Request.Context(), userID, id, middleware.GetIPFromContext(c))
	if err != nil {
		apierror.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, re.Response())
}

// ===========================
// ❌ Delete Recurring Event - DELETE /recurring-events/:id
// @Summary Delete a recurring event
// @Tags RecurringEvents
// @Param id path string true "Recurring event ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/recurring-events/{id} [delete]
func (h *Handler) DeleteRecurringEvent(c *gin.Context) {
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
	c.JSON(http.StatusOK, gin.H{"message": "recurring event deleted successfully"})
}

// ===========================
// ⏭ Add Skip Days - POST /recurring-events/:id/skip-days
// @Summary Skip occurrences on the given dates
// @Tags RecurringEvents
// @Accept json
// @Produce json
// @Param id path string true "Recurring event ID"
// @Param body body SkipDaysRequest true "Dates (YYYY-MM-DD)"
// @Success 200 {object} RecurringEventResponse
// @Security BearerAuth
// @Router /api/v1/recurring-events/{id}/skip-days [post]
func (h *Handler) AddSkipDays(c *gin.Context) {
	h.changeSkipDays(c, h.Service.AddSkipDays)
}

// ===========================
// ↩️ Remove Skip Days - DELETE /recurring-events/:id/skip-days
// @Summary Restore skipped occurrences
// @Description Restoring a date on a confirmed series is rejected with 409 when it collides with another confirmed series.
// @Tags RecurringEvents
// @Accept json
// @Produce json
// @Param id path string true "Recurring event ID"
// @Param body body SkipDaysRequest true "Dates (YYYY-MM-DD)"
// @Success 200 {object} RecurringEventResponse
// @Failure 409 {object} map[string]interface{}
// @Security BearerAuth
// @Router /api/v1/recurring-events/{id}/skip-days [delete]
func (h *Handler) RemoveSkipDays(c *gin.Context) {
	h.changeSkipDays(c, h.Service.RemoveSkipDays)
}

type skipDaysFunc func(ctx context.Context, creatorID, id uuid.UUID, dates []string, ip string) (*RecurringEvent, error)

func (h *Handler) changeSkipDays(c *gin.Context, change skipDaysFunc) {
	userID, ok := middleware.MustUserID(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req SkipDaysRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	re, err := change(c.Request.Context(), userID, id, req.Dates, middleware.GetIPFromContext(c))
	if err != nil {
		apierror.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, re.Response())
}

// ===========================
// 📆 Occurrences - GET /recurring-events/:id/occurrences?from=&to=
// @Summary List occurrences in a date window
// @Description Skipped dates are left out. Times are placed in the caller's timezone.
// @Tags RecurringEvents
// @Produce json
// @Param id path string true "Recurring event ID"
// @Param from query string true "First date (YYYY-MM-DD)"
// @Param to query string false "Last date (YYYY-MM-DD), defaults to 30 days after from"
// @Success 200 {array} Occurrence
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/recurring-events/{id}/occurrences [get]
func (h *Handler) ListOccurrences(c *gin.Context) {
	userID, ok := middleware.MustUserID(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	if c.Query("from") == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from is required"})
		return
	}

	out, err := h.Service.Occurrences(c.Request.Context(), userID, id, c.Query("from"), c.Query("to"))
	if err != nil {
		apierror.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// ===========================
// 🔎 Check Recurring Event - POST /recurring-events/check
// @Summary Dry-run conflict check for a recurring event
// @Tags RecurringEvents
// @Accept json
// @Produce json
// @Param body body CheckRecurringEventRequest true "Candidate series"
// @Success 200 {object} CheckResponse
// @Security BearerAuth
// @Router /api/v1/recurring-events/check [post]
func (h *Handler) CheckRecurringEvent(c *gin.Context) {
	userID, ok := middleware.MustUserID(c)
	if !ok {
		return
	}

	var req CheckRecurringEventRequest
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
