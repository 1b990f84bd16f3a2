package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yohan-cs/yohan-event-planner-sub011/internal/apierror"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/auditlog"
)

type Service struct {
	repo     Repository
	resolver *TimezoneResolver
	audit    auditlog.Service
}

func NewService(repo Repository, resolver *TimezoneResolver, audit auditlog.Service) *Service {
	return &Service{repo: repo, resolver: resolver, audit: audit}
}

// GetProfile returns the stored row, or a UTC placeholder for users never seen before.
func (s *Service) GetProfile(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, apierror.ErrNotFound) {
		return &User{ID: id, Timezone: "UTC"}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return u, nil
}

// UpdateTimezone stores an IANA zone name for the user.
func (s *Service) UpdateTimezone(ctx context.Context, id uuid.UUID, zone, ip string) error {
	if _, err := time.LoadLocation(zone); err != nil || zone == "" || zone == "Local" {
		return fmt.Errorf("%w: unknown timezone %q", apierror.ErrInvalidInput, zone)
	}
	if err := s.repo.UpsertTimezone(ctx, id, zone); err != nil {
		_ = s.audit.LogAction(ctx, id, nil, "TIMEZONE_UPDATE_FAILED", map[string]interface{}{"timezone": zone}, ip, auditlog.StatusFailure)
		return fmt.Errorf("update timezone: %w", err)
	}
	s.resolver.Forget(ctx, id)
	_ = s.audit.LogAction(ctx, id, nil, "TIMEZONE_UPDATED", map[string]interface{}{"timezone": zone}, ip, auditlog.StatusSuccess)
	return nil
}
