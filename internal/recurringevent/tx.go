package recurringevent

import (
	"context"

	"gorm.io/gorm"

	"github.com/yohan-cs/yohan-event-planner-sub011/internal/conflict"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/logger"
)

// Transactor runs fn with a store and detector bound to one transaction.
type Transactor interface {
	InTx(ctx context.Context, fn func(store Store, detector *conflict.Detector) error) error
}

// EventStoreFunc binds the standalone-event store to a transaction handle.
type EventStoreFunc func(tx *gorm.DB) conflict.EventStore

type gormTransactor struct {
	db     *gorm.DB
	events EventStoreFunc
	zones  conflict.TimezoneResolver
	cfg    conflict.Config
	log    logger.Logger
}

func NewGormTransactor(db *gorm.DB, events EventStoreFunc, zones conflict.TimezoneResolver, cfg conflict.Config, log logger.Logger) Transactor {
	return &gormTransactor{db: db, events: events, zones: zones, cfg: cfg, log: log}
}

func (t *gormTransactor) InTx(ctx context.Context, fn func(store Store, detector *conflict.Detector) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		return fn(repo, conflict.NewDetector(t.events(tx), repo, t.zones, t.cfg, t.log))
	})
}
