package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yohan-cs/yohan-event-planner-sub011/internal/apierror"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/logger"
)

// TimezoneResolver maps a user to the zone their wall-clock times are in.
// Unknown users and unloadable zone names resolve to UTC. Cache failures are
// logged and fall through to the repository.
type TimezoneResolver struct {
	repo  Repository
	cache ZoneCache
	log   logger.Logger
}

func NewTimezoneResolver(repo Repository, cache ZoneCache, log logger.Logger) *TimezoneResolver {
	if cache == nil {
		cache = noCache{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &TimezoneResolver{repo: repo, cache: cache, log: log}
}

func (r *TimezoneResolver) ResolveZone(ctx context.Context, userID uuid.UUID) (*time.Location, error) {
	name, err := r.cache.Get(ctx, userID)
	if err == nil {
		return loadOrUTC(name), nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		r.log.WithContext(ctx).Warn("zone cache read failed", "user_id", userID, "error", err)
	}

	u, err := r.repo.GetByID(ctx, userID)
	switch {
	case errors.Is(err, apierror.ErrNotFound):
		name = "UTC"
	case err != nil:
		return nil, fmt.Errorf("load user %s: %w", userID, err)
	default:
		name = u.Timezone
	}

	if err := r.cache.Set(ctx, userID, name); err != nil {
		r.log.WithContext(ctx).Warn("zone cache write failed", "user_id", userID, "error", err)
	}
	return loadOrUTC(name), nil
}

// Forget drops the cached zone after it changes.
func (r *TimezoneResolver) Forget(ctx context.Context, userID uuid.UUID) {
	if err := r.cache.Delete(ctx, userID); err != nil {
		r.log.WithContext(ctx).Warn("zone cache delete failed", "user_id", userID, "error", err)
	}
}

func loadOrUTC(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
