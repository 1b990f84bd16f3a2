package auditlog

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yohan-cs/yohan-event-planner-sub011/internal/apierror"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/logger"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/recurrence"
	"github.com/yohan-cs/yohan-event-planner-sub011/middleware"
)

type Handler struct {
	service Service
	log     logger.Logger
}

func NewHandler(service Service, log logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// GetAuditLogs handles GET /audit-logs
// @Summary List the caller's audit trail
// @Tags AuditLog
// @Produce json
// @Param action query string false "Filter by action (partial match)"
// @Param status query string false "Filter by status"
// @Param from_date query string false "From date (YYYY-MM-DD), inclusive"
// @Param to_date query string false "To date (YYYY-MM-DD), inclusive"
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Records per page (default: 20, max: 100)"
// @Success 200 {object} PaginatedAuditLogs
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/audit-logs [get]
func (h *Handler) GetAuditLogs(c *gin.Context) {
	userID, ok := middleware.MustUserID(c)
	if !ok {
		return
	}

	filter := Filter{
		UserID: userID,
		Action: c.Query("action"),
		Status: c.Query("status"),
	}

	if s := c.Query("from_date"); s != "" {
		from, err := recurrence.ParseDate(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from_date format, use YYYY-MM-DD"})
			return
		}
		filter.FromDate = &from
	}
	if s := c.Query("to_date"); s != "" {
		to, err := recurrence.ParseDate(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to_date format, use YYYY-MM-DD"})
			return
		}
		next := recurrence.AddDays(to, 1)
		filter.ToDate = &next
	}

	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))

	result, err := h.service.GetAuditLogs(c.Request.Context(), filter)
	if err != nil {
		apierror.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
