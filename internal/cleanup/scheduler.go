package cleanup

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/yohan-cs/yohan-event-planner-sub011/internal/logger"
)

// DraftPurger deletes unconfirmed rows last touched before cutoff.
type DraftPurger interface {
	DeleteStaleDrafts(ctx context.Context, cutoff time.Time) (int64, error)
}

// Scheduler periodically purges abandoned drafts. Confirmed rows are never touched.
type Scheduler struct {
	cron    *cron.Cron
	purgers map[string]DraftPurger
	ttl     time.Duration
	log     logger.Logger
	now     func() time.Time

	mu      sync.Mutex
	running bool
}

// NewScheduler registers the purge job on spec, a standard five-field cron expression in UTC.
func NewScheduler(spec string, ttl time.Duration, purgers map[string]DraftPurger, log logger.Logger) (*Scheduler, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("draft ttl must be positive, got %s", ttl)
	}
	if log == nil {
		log = logger.NewNop()
	}
	s := &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		purgers: purgers,
		ttl:     ttl,
		log:     log,
		now:     time.Now,
	}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("invalid cleanup schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.cron.Start()
	s.running = true
	s.log.Info("draft cleanup scheduled", "ttl", s.ttl.String())
}

// Stop waits for a running purge to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
	s.running = false
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if _, err := s.PurgeStaleDrafts(ctx); err != nil {
		s.log.Error("draft cleanup failed", "error", err)
	}
}

// PurgeStaleDrafts runs every purger once and returns the deleted count per kind.
// A failing purger does not stop the others.
func (s *Scheduler) PurgeStaleDrafts(ctx context.Context) (map[string]int64, error) {
	cutoff := s.now().UTC().Add(-s.ttl)

	kinds := make([]string, 0, len(s.purgers))
	for k := range s.purgers {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	deleted := make(map[string]int64, len(kinds))
	var firstErr error
	for _, kind := range kinds {
		n, err := s.purgers[kind].DeleteStaleDrafts(ctx, cutoff)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("purge %s drafts: %w", kind, err)
			}
			continue
		}
		deleted[kind] = n
		if n > 0 {
			s.log.Info("stale drafts purged", "kind", kind, "count", n, "cutoff", cutoff.Format(time.RFC3339))
		}
	}
	return deleted, firstErr
}
