package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

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

// ===========================
// 👤 Get Profile - GET /me
// @Summary Get the caller's profile and timezone
// @Tags User
// @Produce json
// @Success 200 {object} User
// @Security BearerAuth
// @Router /api/v1/me [get]
func (h *Handler) GetMe(c *gin.Context) {
	userID, ok := middleware.MustUserID(c)
	if !ok {
		return
	}
	u, err := h.Service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		apierror.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// ===========================
// 🌍 Update Timezone - PUT /me/timezone
// @Summary Set the zone recurring times are interpreted in
// @Tags User
// @Accept json
// @Produce json
// @Param body body UpdateTimezoneRequest true "IANA zone name"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/me/timezone [put]
func (h *Handler) UpdateTimezone(c *gin.Context) {
	userID, ok := middleware.MustUserID(c)
	if !ok {
		return
	}
	var req UpdateTimezoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}
	if err := h.Service.UpdateTimezone(c.Request.Context(), userID, req.Timezone, middleware.GetIPFromContext(c)); err != nil {
		apierror.Respond(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "timezone updated successfully"})
}
