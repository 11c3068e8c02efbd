package service

import (
	"context"

	"github.com/weiawesome/wes-events/internal/domain"
)

// UserService defines the interface for account and session logic.
type UserService interface {
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.UserResponse, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error)
	Me(ctx context.Context, identity domain.Identity) (*domain.Identity, error)
}

// EventService defines the interface for event business logic.
type EventService interface {
	CreateEvent(ctx context.Context, owner domain.Identity, req *domain.CreateEventRequest) (*domain.Event, error)
	ListEvents(ctx context.Context, viewer domain.Identity) (*domain.ListEventsResponse, error)
	GetEvent(ctx context.Context, viewer domain.Identity, eventID string) (*domain.EventDetail, error)
	AttendeeCounts(ctx context.Context) (map[string]int64, error)
	ListAttendees(ctx context.Context, eventID string) (*domain.AttendeesResponse, error)
	EventExists(ctx context.Context, eventID string) (bool, error)
}

// JoinService records joins and announces the new attendee count.
type JoinService interface {
	JoinEvent(ctx context.Context, eventID, userID string) (*domain.JoinResult, error)
}
