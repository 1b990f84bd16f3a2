package calendarfeed

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yohan-cs/yohan-event-planner-sub011/internal/apierror"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/logger"
	"github.com/yohan-cs/yohan-event-planner-sub011/middleware"
)

type Handler struct {
	Feed *Feed
	log  logger.Logger
}

func NewHandler(f *Feed, log logger.Logger) *Handler {
	return &Handler{Feed: f, log: log}
}

// ===========================
// 📅 Calendar Feed - GET /calendar.ics
// @Summary Confirmed schedule as iCalendar
// @Tags Calendar
// @Produce text/calendar
// @Success 200 {string} string
// @Security BearerAuth
// @Router /api/v1/calendar.ics [get]
func (h *Handler) GetCalendar(c *gin.Context) {
	userID, ok := middleware.MustUserID(c)
	if !ok {
		return
	}

	body, err := h.Feed.Render(c.Request.Context(), userID)
	if err != nil {
		apierror.Respond(c, h.log, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="calendar.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(body))
}
