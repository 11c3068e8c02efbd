package domain

import "time"

// Event represents a listed event.
type Event struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description,omitempty"`
	Date              time.Time `json:"date"`
	Time              string    `json:"time,omitempty"`
	Location          string    `json:"location,omitempty"`
	Category          string    `json:"category,omitempty"`
	ImageURL          string    `json:"image_url,omitempty"`
	IsForLoggedInOnly bool      `json:"is_for_logged_in_only"`
	UserID            string    `json:"user_id"`
	CreatorName       string    `json:"creator_name"`
	CreatedAt         time.Time `json:"created_at"`
}

// CreateEventRequest represents a create event request.
type CreateEventRequest struct {
	Title             string    `json:"title" binding:"required,min=1,max=200"`
	Description       string    `json:"description"`
	Date              time.Time `json:"date"`
	Time              string    `json:"time" binding:"max=20"`
	Location          string    `json:"location" binding:"max=200"`
	Category          string    `json:"category" binding:"max=50"`
	ImageURL          string    `json:"image_url" binding:"omitempty,url"`
	IsForLoggedInOnly bool      `json:"is_for_logged_in_only"`
}

// EventDetail is the single-event view with live attendance data.
type EventDetail struct {
	Event         Event `json:"event"`
	AttendeeCount int64 `json:"attendee_count"`
	HasJoined     bool  `json:"has_joined"`
}

// ListEventsResponse wraps the visible events.
type ListEventsResponse struct {
	Events []Event `json:"events"`
	Total  int     `json:"total"`
}

// CanView reports whether the identity may see the event.
func (e *Event) CanView(viewer Identity) bool {
	return !e.IsForLoggedInOnly || viewer.IsMember()
}
