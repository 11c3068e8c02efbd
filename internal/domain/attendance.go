package domain

import "time"

// AttendanceRecord is durable evidence that a user joined an event.
// At most one record exists per (EventID, UserID).
type AttendanceRecord struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Attendee is an attendance record joined with the user's display name.
type Attendee struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
}

// JoinEventRequest represents a join event request.
type JoinEventRequest struct {
	EventID string `json:"event_id" binding:"required"`
}

// JoinResult is returned by a successful join.
type JoinResult struct {
	EventID       string `json:"event_id"`
	AttendeeCount int64  `json:"attendee_count"`
}

// AttendeesResponse lists the attendees of one event.
type AttendeesResponse struct {
	EventID   string     `json:"event_id"`
	Attendees []Attendee `json:"attendees"`
}
