package repository

import (
	"context"
	"errors"

	"github.com/weiawesome/wes-events/internal/domain"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailExists         = errors.New("email already exists")
	ErrEventNotFound       = errors.New("event not found")
	ErrDuplicateAttendance = errors.New("attendance already recorded")
)

// UserRepository defines the interface for user data persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// EventRepository defines the interface for event data persistence.
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	// List returns events ordered by date. Login-only events are included
	// only when includeRestricted is set.
	List(ctx context.Context, includeRestricted bool) ([]domain.Event, error)
	Exists(ctx context.Context, id string) (bool, error)
}

// AttendanceRepository defines the interface for attendance persistence.
type AttendanceRepository interface {
	Exists(ctx context.Context, eventID, userID string) (bool, error)
	// Insert records a join. A record for the same pair already stored
	// yields ErrDuplicateAttendance.
	Insert(ctx context.Context, eventID, userID string) (*domain.AttendanceRecord, error)
	CountFor(ctx context.Context, eventID string) (int64, error)
	CountsByEvent(ctx context.Context) (map[string]int64, error)
	ListAttendees(ctx context.Context, eventID string) ([]domain.Attendee, error)
}
