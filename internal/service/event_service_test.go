package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/weiawesome/wes-events/internal/cache"
	"github.com/weiawesome/wes-events/internal/domain"
	"github.com/weiawesome/wes-events/internal/repository"
)

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]*cache.EventCacheResult
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]*cache.EventCacheResult)}
}

func (m *memoryCache) Get(_ context.Context, key string) (*cache.EventCacheResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.entries[key]; ok {
		return r, nil
	}
	return nil, cache.ErrCacheMiss
}

func (m *memoryCache) Set(_ context.Context, key string, result *cache.EventCacheResult, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = result
	return nil
}

func (m *memoryCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}

func (m *memoryCache) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	return ok
}

func (m *memoryCache) BuildKeyByID(eventID string) string { return "id:" + eventID }

func (m *memoryCache) BuildListKey(includeRestricted bool) string {
	if includeRestricted {
		return "list:all"
	}
	return "list:public"
}

func (m *memoryCache) Close() error { return nil }

type eventFixture struct {
	db         *gorm.DB
	svc        EventService
	cache      *memoryCache
	attendance *repository.GormAttendanceRepository
}

func newEventFixture(t *testing.T) *eventFixture {
	t.Helper()
	db := newTestDB(t)
	c := newMemoryCache()
	attendance := repository.NewGormAttendanceRepository(db)
	return &eventFixture{
		db:         db,
		svc:        NewEventService(repository.NewGormEventRepository(db), attendance, c, time.Minute),
		cache:      c,
		attendance: attendance,
	}
}

func (f *eventFixture) create(t *testing.T, title string, restricted bool) *domain.Event {
	t.Helper()
	ev, err := f.svc.CreateEvent(context.Background(), member, &domain.CreateEventRequest{
		Title:             title,
		Date:              time.Now().Add(24 * time.Hour),
		IsForLoggedInOnly: restricted,
	})
	require.NoError(t, err)
	return ev
}

func TestEventService_CreateRequiresMember(t *testing.T) {
	f := newEventFixture(t)

	_, err := f.svc.CreateEvent(context.Background(), domain.Identity{Name: "Guest", IsGuest: true}, &domain.CreateEventRequest{Title: "x"})
	assert.ErrorIs(t, err, ErrLoginRequired)

	ev := f.create(t, "  Launch  ", false)
	assert.Equal(t, "Launch", ev.Title)
	assert.Equal(t, "u1", ev.UserID)
	assert.Equal(t, "Alice", ev.CreatorName)

	assert.Eventually(t, func() bool { return f.cache.has("id:" + ev.ID) }, time.Second, 10*time.Millisecond)
}

func TestEventService_ListVisibility(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()
	f.create(t, "Public", false)
	f.create(t, "Members", true)

	anon, err := f.svc.ListEvents(ctx, domain.Identity{})
	require.NoError(t, err)
	require.Equal(t, 1, anon.Total)
	assert.Equal(t, "Public", anon.Events[0].Title)

	guest, err := f.svc.ListEvents(ctx, domain.Identity{Name: "Guest", IsGuest: true})
	require.NoError(t, err)
	assert.Equal(t, 1, guest.Total)

	all, err := f.svc.ListEvents(ctx, member)
	require.NoError(t, err)
	assert.Equal(t, 2, all.Total)
}

func TestEventService_ListInvalidatedOnCreate(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()

	empty, err := f.svc.ListEvents(ctx, member)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Total)
	assert.NotNil(t, empty.Events)
	assert.Eventually(t, func() bool { return f.cache.has("list:all") }, time.Second, 10*time.Millisecond)

	f.create(t, "Fresh", false)
	assert.False(t, f.cache.has("list:all"))

	after, err := f.svc.ListEvents(ctx, member)
	require.NoError(t, err)
	assert.Equal(t, 1, after.Total)
}

func TestEventService_GetEvent(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()
	public := f.create(t, "Public", false)
	private := f.create(t, "Members", true)

	_, err := f.attendance.Insert(ctx, public.ID, "u1")
	require.NoError(t, err)
	_, err = f.attendance.Insert(ctx, public.ID, "u2")
	require.NoError(t, err)

	detail, err := f.svc.GetEvent(ctx, member, public.ID)
	require.NoError(t, err)
	assert.Equal(t, "Public", detail.Event.Title)
	assert.EqualValues(t, 2, detail.AttendeeCount)
	assert.True(t, detail.HasJoined)

	anon, err := f.svc.GetEvent(ctx, domain.Identity{}, public.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, anon.AttendeeCount)
	assert.False(t, anon.HasJoined)

	_, err = f.svc.GetEvent(ctx, domain.Identity{Name: "Guest", IsGuest: true}, private.ID)
	assert.ErrorIs(t, err, ErrLoginRequired)

	_, err = f.svc.GetEvent(ctx, member, "missing")
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestEventService_GetEventCountIsNeverCached(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()
	ev := f.create(t, "Live", false)

	first, err := f.svc.GetEvent(ctx, member, ev.ID)
	require.NoError(t, err)
	assert.Zero(t, first.AttendeeCount)

	_, err = f.attendance.Insert(ctx, ev.ID, "u9")
	require.NoError(t, err)

	second, err := f.svc.GetEvent(ctx, member, ev.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, second.AttendeeCount)
}

func TestEventService_ReadsThroughCache(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()
	cached := &domain.Event{ID: "cached-only", Title: "From cache"}
	require.NoError(t, f.cache.Set(ctx, "id:cached-only", &cache.EventCacheResult{Event: cached}, time.Minute))

	detail, err := f.svc.GetEvent(ctx, member, "cached-only")
	require.NoError(t, err)
	assert.Equal(t, "From cache", detail.Event.Title)

	ok, err := f.svc.EventExists(ctx, "cached-only")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEventService_CountsAttendeesExists(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()
	ev := f.create(t, "Meetup", false)

	require.NoError(t, f.db.Create(&domain.UserModel{ID: "u1", Name: "Alice", Email: "a@example.com", PasswordHash: "x"}).Error)
	_, err := f.attendance.Insert(ctx, ev.ID, "u1")
	require.NoError(t, err)

	counts, err := f.svc.AttendeeCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{ev.ID: 1}, counts)

	list, err := f.svc.ListAttendees(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, ev.ID, list.EventID)
	assert.Equal(t, []domain.Attendee{{UserID: "u1", UserName: "Alice"}}, list.Attendees)

	ok, err := f.svc.EventExists(ctx, ev.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.svc.EventExists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewEventService_NilCache(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(repository.NewGormEventRepository(db), repository.NewGormAttendanceRepository(db), nil, time.Minute)

	_, err := svc.GetEvent(context.Background(), member, "missing")
	assert.ErrorIs(t, err, ErrEventNotFound)
}
