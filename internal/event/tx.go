package event

import (
	"context"

	"gorm.io/gorm"

	"github.com/yohan-cs/yohan-event-planner-sub011/internal/conflict"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/logger"
)

// Transactor runs fn with a store and detector bound to one transaction, so the
// conflict check reads the snapshot the write commits against.
type Transactor interface {
	InTx(ctx context.Context, fn func(store Store, detector *conflict.Detector) error) error
}

// TemplateStoreFunc binds the recurring-event store to a transaction handle.
type TemplateStoreFunc func(tx *gorm.DB) conflict.TemplateStore

type gormTransactor struct {
	db        *gorm.DB
	templates TemplateStoreFunc
	zones     conflict.TimezoneResolver
	cfg       conflict.Config
	log       logger.Logger
}

func NewGormTransactor(db *gorm.DB, templates TemplateStoreFunc, zones conflict.TimezoneResolver, cfg conflict.Config, log logger.Logger) Transactor {
	return &gormTransactor{db: db, templates: templates, zones: zones, cfg: cfg, log: log}
}

func (t *gormTransactor) InTx(ctx context.Context, fn func(store Store, detector *conflict.Detector) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		return fn(repo, conflict.NewDetector(repo, t.templates(tx), t.zones, t.cfg, t.log))
	})
}
