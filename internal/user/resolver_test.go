package user

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yohan-cs/yohan-event-planner-sub011/internal/apierror"
	"github.com/yohan-cs/yohan-event-planner-sub011/internal/auditlog"
)

type fakeRepo struct {
	users   map[uuid.UUID]*User
	err     error
	lookups int
}

func (r *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	r.lookups++
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, apierror.ErrNotFound
	}
	return u, nil
}

func (r *fakeRepo) UpsertTimezone(ctx context.Context, id uuid.UUID, zone string) error {
	if r.err != nil {
		return r.err
	}
	if r.users == nil {
		r.users = map[uuid.UUID]*User{}
	}
	r.users[id] = &User{ID: id, Timezone: zone}
	return nil
}

type mapCache struct {
	zones  map[uuid.UUID]string
	getErr error
}

func newMapCache() *mapCache { return &mapCache{zones: map[uuid.UUID]string{}} }

func (c *mapCache) Get(ctx context.Context, id uuid.UUID) (string, error) {
	if c.getErr != nil {
		return "", c.getErr
	}
	z, ok := c.zones[id]
	if !ok {
		return "", ErrCacheMiss
	}
	return z, nil
}

func (c *mapCache) Set(ctx context.Context, id uuid.UUID, zone string) error {
	c.zones[id] = zone
	return nil
}

func (c *mapCache) Delete(ctx context.Context, id uuid.UUID) error {
	delete(c.zones, id)
	return nil
}

type nopAudit struct{ actions []string }

func (a *nopAudit) LogAction(ctx context.Context, userID uuid.UUID, targetID *uuid.UUID, action string, details map[string]interface{}, ip, status string) error {
	a.actions = append(a.actions, action)
	return nil
}

func (a *nopAudit) GetAuditLogs(ctx context.Context, filter auditlog.Filter) (*auditlog.PaginatedAuditLogs, error) {
	return &auditlog.PaginatedAuditLogs{}, nil
}

func TestResolveZone(t *testing.T) {
	known, bogus := uuid.New(), uuid.New()
	repo := &fakeRepo{users: map[uuid.UUID]*User{
		known: {ID: known, Timezone: "Asia/Tokyo"},
		bogus: {ID: bogus, Timezone: "Mars/Olympus_Mons"},
	}}
	r := NewTimezoneResolver(repo, newMapCache(), nil)

	tests := []struct {
		name string
		id   uuid.UUID
		want string
	}{
		{"stored zone", known, "Asia/Tokyo"},
		{"unknown zone name", bogus, "UTC"},
		{"unknown user", uuid.New(), "UTC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := r.ResolveZone(context.Background(), tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, loc.String())
		})
	}
}

func TestResolveZone_UsesCache(t *testing.T) {
	id := uuid.New()
	repo := &fakeRepo{users: map[uuid.UUID]*User{id: {ID: id, Timezone: "Europe/Paris"}}}
	r := NewTimezoneResolver(repo, newMapCache(), nil)

	for i := 0; i < 3; i++ {
		loc, err := r.ResolveZone(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "Europe/Paris", loc.String())
	}
	assert.Equal(t, 1, repo.lookups)
}

func TestResolveZone_CacheFailureFallsThrough(t *testing.T) {
	id := uuid.New()
	repo := &fakeRepo{users: map[uuid.UUID]*User{id: {ID: id, Timezone: "Europe/Paris"}}}
	cache := newMapCache()
	cache.getErr = errors.New("redis: connection refused")
	r := NewTimezoneResolver(repo, cache, nil)

	loc, err := r.ResolveZone(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Europe/Paris", loc.String())
}

func TestResolveZone_RepositoryError(t *testing.T) {
	boom := errors.New("db down")
	r := NewTimezoneResolver(&fakeRepo{err: boom}, nil, nil)

	_, err := r.ResolveZone(context.Background(), uuid.New())
	assert.ErrorIs(t, err, boom)
}

func TestUpdateTimezone(t *testing.T) {
	id := uuid.New()
	repo := &fakeRepo{users: map[uuid.UUID]*User{id: {ID: id, Timezone: "UTC"}}}
	cache := newMapCache()
	audit := &nopAudit{}
	r := NewTimezoneResolver(repo, cache, nil)
	svc := NewService(repo, r, audit)

	_, err := r.ResolveZone(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, "UTC", cache.zones[id])

	require.NoError(t, svc.UpdateTimezone(context.Background(), id, "America/Chicago", "127.0.0.1"))
	_, cached := cache.zones[id]
	assert.False(t, cached, "update must drop the cached zone")

	loc, err := r.ResolveZone(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "America/Chicago", loc.String())
	assert.Equal(t, []string{"TIMEZONE_UPDATED"}, audit.actions)
}

func TestUpdateTimezone_RejectsUnknownZone(t *testing.T) {
	svc := NewService(&fakeRepo{}, NewTimezoneResolver(&fakeRepo{}, nil, nil), &nopAudit{})

	for _, zone := range []string{"", "Local", "Not/AZone"} {
		err := svc.UpdateTimezone(context.Background(), uuid.New(), zone, "")
		assert.ErrorIs(t, err, apierror.ErrInvalidInput, zone)
	}
}

func TestGetProfile_UnknownUserDefaultsToUTC(t *testing.T) {
	svc := NewService(&fakeRepo{}, NewTimezoneResolver(&fakeRepo{}, nil, nil), &nopAudit{})
	id := uuid.New()

	u, err := svc.GetProfile(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, "UTC", u.Timezone)
}
