package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/weiawesome/wes-events/internal/audit"
	"github.com/weiawesome/wes-events/internal/domain"
	"github.com/weiawesome/wes-events/internal/repository"
	"github.com/weiawesome/wes-events/pkg/log"
)

// AttendanceStore is the part of the attendance repository a join needs.
type AttendanceStore interface {
	Exists(ctx context.Context, eventID, userID string) (bool, error)
	Insert(ctx context.Context, eventID, userID string) (*domain.AttendanceRecord, error)
	CountFor(ctx context.Context, eventID string) (int64, error)
}

// CountNotifier announces a new attendee count to live viewers.
type CountNotifier interface {
	NotifyAttendeeCount(eventID string, count int64)
}

// JoinCoordinator records joins and triggers the count broadcast. The caller
// must have authenticated a non-guest user and checked the event exists.
type JoinCoordinator struct {
	store    AttendanceStore
	notifier CountNotifier
}

// NewJoinCoordinator creates a new join coordinator.
func NewJoinCoordinator(store AttendanceStore, notifier CountNotifier) *JoinCoordinator {
	return &JoinCoordinator{
		store:    store,
		notifier: notifier,
	}
}

// JoinEvent records that userID attends eventID and broadcasts the fresh
// count. Once the record is stored the join succeeds regardless of delivery.
func (j *JoinCoordinator) JoinEvent(ctx context.Context, eventID, userID string) (*domain.JoinResult, error) {
	l := log.Ctx(ctx).With().
		Str(log.FieldEventID, eventID).
		Str(log.FieldUserID, userID).
		Logger()

	// Fast path only; the unique index on (event_id, user_id) is authoritative.
	exists, err := j.store.Exists(ctx, eventID, userID)
	if err != nil {
		l.Error().Err(err).Msg("failed to check attendance")
		return nil, fmt.Errorf("%w: check attendance: %w", ErrPersistence, err)
	}
	if exists {
		return nil, ErrDuplicateJoin
	}

	if _, err := j.store.Insert(ctx, eventID, userID); err != nil {
		if errors.Is(err, repository.ErrDuplicateAttendance) {
			return nil, ErrDuplicateJoin
		}
		l.Error().Err(err).Msg("failed to insert attendance")
		return nil, fmt.Errorf("%w: insert attendance: %w", ErrPersistence, err)
	}

	count, err := j.store.CountFor(ctx, eventID)
	if err != nil {
		l.Error().Err(err).Msg("attendance stored but recount failed")
		return nil, fmt.Errorf("%w: count attendance: %w", ErrPersistence, err)
	}

	j.notifier.NotifyAttendeeCount(eventID, count)

	audit.LogTarget(ctx, audit.ActionJoinEvent, userID, eventID, "event joined")

	return &domain.JoinResult{
		EventID:       eventID,
		AttendeeCount: count,
	}, nil
}
