package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yohan-cs/yohan-event-planner-sub011/config"
	"github.com/yohan-cs/yohan-event-planner-sub011/database"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/auditlog"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/calendarfeed"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/cleanup"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/conflict"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/event"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/logger"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/notification"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/recurringevent"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/user"
	"github.com/yohan-cs/yohan-event-planner-sub011/middleware"
	"github.com/yohan-cs/yohan-event-planner-sub011/routes"
)

// @title Event Planner API
// @version 1.0
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}

	log.Info("🔄 Running database migrations...")
	if err := db.AutoMigrate(
		&user.User{},
		&auditlog.AuditLog{},
		&event.Event{},
		&recurringevent.RecurringEvent{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	// Redis is optional: without it zones are read from Postgres every time
	// and rate-limit counters stay in process memory.
	var rdb *redis.Client
	zoneCache := user.ZoneCache(nil)
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		zoneCache = user.NewRedisZoneCache(rdb, cfg.TimezoneCacheTTL)
		defer rdb.Close()
	}

	var pub notification.Publisher = notification.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		pub = notification.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	} else {
		log.Warn("KAFKA_BROKERS not set, domain events are not published")
	}
	defer pub.Close()
	notifier := notification.NewNotifier(pub, log)

	// ========== Services ==========
	auditSvc := auditlog.NewService(auditlog.NewRepository(db))
	userRepo := user.NewRepository(db)
	zones := user.NewTimezoneResolver(userRepo, zoneCache, log)
	userSvc := user.NewService(userRepo, zones, auditSvc)

	detectorCfg := conflict.Config{MaxWindowDays: cfg.ConflictWindowDays}
	eventTx := event.NewGormTransactor(db, func(tx *gorm.DB) conflict.TemplateStore {
		return recurringevent.NewRepository(tx)
	}, zones, detectorCfg, log)
	seriesTx := recurringevent.NewGormTransactor(db, func(tx *gorm.DB) conflict.EventStore {
		return event.NewRepository(tx)
	}, zones, detectorCfg, log)

	eventSvc := event.NewService(eventTx, auditSvc, notifier, log)
	seriesSvc := recurringevent.NewService(seriesTx, zones, auditSvc, notifier, log, cfg.MaxOccurrenceDays)
	feed := calendarfeed.NewFeed(event.NewRepository(db), recurringevent.NewRepository(db), zones)

	// ========== Draft cleanup ==========
	sweeper, err := cleanup.NewScheduler(cfg.CleanupCron, cfg.DraftTTL, map[string]cleanup.DraftPurger{
		"events":           event.NewRepository(db),
		"recurring_events": recurringevent.NewRepository(db),
	}, log)
	if err != nil {
		return err
	}
	sweeper.Start()

	// ========== HTTP ==========
	limiter, err := middleware.RateLimiter(cfg.RateLimitPerMinute, rdb)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	routes.Setup(router, cfg, log, routes.Handlers{
		Events:          event.NewHandler(eventSvc, log),
		RecurringEvents: recurringevent.NewHandler(seriesSvc, log),
		Users:           user.NewHandler(userSvc, log),
		AuditLogs:       auditlog.NewHandler(auditSvc, log),
		Calendar:        calendarfeed.NewHandler(feed, log),
	}, limiter)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("🚀 Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-stop:
		log.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	sweeper.Stop(ctx)
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
