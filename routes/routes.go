package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/yohan-cs/yohan-event-planner-sub011/config"
	_ "github.com/yohan-cs/yohan-event-planner-sub011/docs"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/auditlog"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/calendarfeed"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/event"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/logger"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/recurringevent"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/user"
	"github.com/yohan-cs/yohan-event-planner-sub011/middleware"
)

// Handlers groups the HTTP handlers mounted under /api/v1.
type Handlers struct {
	Events          *event.Handler
	RecurringEvents *recurringevent.Handler
	Users           *user.Handler
	AuditLogs       *auditlog.Handler
	Calendar        *calendarfeed.Handler
}

// Setup mounts every route. limiter runs after authentication so it can key on the user.
func Setup(r *gin.Engine, cfg *config.Config, log logger.Logger, h Handlers, limiter gin.HandlerFunc) {
	r.Use(logger.GinMiddleware(log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	api.Use(middleware.AuditMiddleware())

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(cfg.JWTAccessSecret))
	if limiter != nil {
		protected.Use(limiter)
	}

	// ========== Events ==========
	events := protected.Group("/events")
	{
		events.POST("", h.Events.CreateEvent)
		events.GET("", h.Events.ListEvents)
		events.POST("/check", h.Events.CheckEvent)
		events.GET("/:id", h.Events.GetEventByID)
		events.PUT("/:id", h.Events.UpdateEvent)
		events.DELETE("/:id", h.Events.DeleteEvent)
		events.POST("/:id/confirm", h.Events.ConfirmEvent)
	}

	// ========== Recurring Events ==========
	series := protected.Group("/recurring-events")
	{
		series.POST("", h.RecurringEvents.CreateRecurringEvent)
		series.GET("", h.RecurringEvents.ListRecurringEvents)
		series.POST("/check", h.RecurringEvents.CheckRecurringEvent)
		series.GET("/:id", h.RecurringEvents.GetRecurringEventByID)
		series.PUT("/:id", h.RecurringEvents.UpdateRecurringEvent)
		series.DELETE("/:id", h.RecurringEvents.DeleteRecurringEvent)
		series.POST("/:id/confirm", h.RecurringEvents.ConfirmRecurringEvent)
		series.POST("/:id/skip-days", h.RecurringEvents.AddSkipDays)
		series.DELETE("/:id/skip-days", h.RecurringEvents.RemoveSkipDays)
		series.GET("/:id/occurrences", h.RecurringEvents.ListOccurrences)
	}

	// ========== Profile ==========
	protected.GET("/me", h.Users.GetMe)
	protected.PUT("/me/timezone", h.Users.UpdateTimezone)

	// ========== Audit Logs ==========
	protected.GET("/audit-logs", h.AuditLogs.GetAuditLogs)

	// ========== Calendar Feed ==========
	protected.GET("/calendar.ics", h.Calendar.GetCalendar)
}
