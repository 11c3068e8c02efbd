package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/weiawesome/wes-events/internal/audit"
	"github.com/weiawesome/wes-events/internal/cache"
	"github.com/weiawesome/wes-events/internal/domain"
	"github.com/weiawesome/wes-events/internal/repository"
	"github.com/weiawesome/wes-events/pkg/log"
)

// eventServiceImpl implements EventService interface.
type eventServiceImpl struct {
	events     repository.EventRepository
	attendance repository.AttendanceRepository
	cache      cache.EventCache
	cacheTTL   time.Duration
	sf         singleflight.Group
}

// NewEventService creates a new event service.
func NewEventService(
	events repository.EventRepository,
	attendance repository.AttendanceRepository,
	eventCache cache.EventCache,
	cacheTTL time.Duration,
) EventService {
	if eventCache == nil {
		eventCache = cache.NewNoopEventCache()
	}
	return &eventServiceImpl{
		events:     events,
		attendance: attendance,
		cache:      eventCache,
		cacheTTL:   cacheTTL,
	}
}

// CreateEvent creates an event owned by a member.
func (s *eventServiceImpl) CreateEvent(ctx context.Context, owner domain.Identity, req *domain.CreateEventRequest) (*domain.Event, error) {
	if !owner.IsMember() {
		return nil, ErrLoginRequired
	}

	event := &domain.Event{
		Title:             strings.TrimSpace(req.Title),
		Description:       req.Description,
		Date:              req.Date.UTC(),
		Time:              req.Time,
		Location:          req.Location,
		Category:          req.Category,
		ImageURL:          req.ImageURL,
		IsForLoggedInOnly: req.IsForLoggedInOnly,
		UserID:            owner.UserID,
		CreatorName:       owner.Name,
	}

	if err := s.events.Create(ctx, event); err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("failed to create event")
		return nil, err
	}

	s.invalidateLists(ctx)
	s.asyncCacheSet(s.cache.BuildKeyByID(event.ID), &cache.EventCacheResult{Event: event})

	audit.LogTarget(ctx, audit.ActionCreateEvent, owner.UserID, event.ID, "event created")

	return event, nil
}

// ListEvents lists the events visible to the viewer.
func (s *eventServiceImpl) ListEvents(ctx context.Context, viewer domain.Identity) (*domain.ListEventsResponse, error) {
	includeRestricted := viewer.IsMember()
	cacheKey := s.cache.BuildListKey(includeRestricted)

	result, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		if cached, ok := s.cacheGet(ctx, cacheKey); ok {
			return cached.Events, nil
		}

		events, err := s.events.List(ctx, includeRestricted)
		if err != nil {
			return nil, err
		}

		s.asyncCacheSet(cacheKey, &cache.EventCacheResult{Events: events})
		return events, nil
	})
	if err != nil {
		return nil, err
	}

	events := result.([]domain.Event)
	if events == nil {
		events = []domain.Event{}
	}
	return &domain.ListEventsResponse{
		Events: events,
		Total:  len(events),
	}, nil
}

// GetEvent returns one event with its live attendee count.
func (s *eventServiceImpl) GetEvent(ctx context.Context, viewer domain.Identity, eventID string) (*domain.EventDetail, error) {
	event, err := s.getEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if !event.CanView(viewer) {
		return nil, ErrLoginRequired
	}

	detail := &domain.EventDetail{Event: *event}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		detail.AttendeeCount, err = s.attendance.CountFor(gCtx, eventID)
		return err
	})

	if viewer.IsMember() {
		g.Go(func() error {
			var err error
			detail.HasJoined, err = s.attendance.Exists(gCtx, eventID, viewer.UserID)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return detail, nil
}

// AttendeeCounts returns attendee counts for every event that has any.
func (s *eventServiceImpl) AttendeeCounts(ctx context.Context) (map[string]int64, error) {
	return s.attendance.CountsByEvent(ctx)
}

// ListAttendees lists the attendees of an event.
func (s *eventServiceImpl) ListAttendees(ctx context.Context, eventID string) (*domain.AttendeesResponse, error) {
	attendees, err := s.attendance.ListAttendees(ctx, eventID)
	if err != nil {
		return nil, err
	}

	return &domain.AttendeesResponse{
		EventID:   eventID,
		Attendees: attendees,
	}, nil
}

// EventExists reports whether an event exists.
func (s *eventServiceImpl) EventExists(ctx context.Context, eventID string) (bool, error) {
	if _, ok := s.cacheGet(ctx, s.cache.BuildKeyByID(eventID)); ok {
		return true, nil
	}
	return s.events.Exists(ctx, eventID)
}

func (s *eventServiceImpl) getEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	cacheKey := s.cache.BuildKeyByID(eventID)

	result, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		if cached, ok := s.cacheGet(ctx, cacheKey); ok && cached.Event != nil {
			return cached.Event, nil
		}

		event, err := s.events.GetByID(ctx, eventID)
		if err != nil {
			if errors.Is(err, repository.ErrEventNotFound) {
				return nil, ErrEventNotFound
			}
			return nil, err
		}

		s.asyncCacheSet(cacheKey, &cache.EventCacheResult{Event: event})
		return event, nil
	})
	if err != nil {
		return nil, err
	}

	event := *result.(*domain.Event)
	return &event, nil
}

func (s *eventServiceImpl) cacheGet(ctx context.Context, key string) (*cache.EventCacheResult, bool) {
	cached, err := s.cache.Get(ctx, key)
	if err == nil {
		return cached, true
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str("key", key).Msg("cache get error")
	}
	return nil, false
}

func (s *eventServiceImpl) invalidateLists(ctx context.Context) {
	keys := []string{s.cache.BuildListKey(true), s.cache.BuildListKey(false)}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Msg("cache delete error")
	}
}

func (s *eventServiceImpl) asyncCacheSet(key string, result *cache.EventCacheResult) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := s.cache.Set(ctx, key, result, s.cacheTTL); err != nil {
			l := log.L()
			l.Warn().Err(err).Str("key", key).Msg("cache set error")
		}
	}()
}
