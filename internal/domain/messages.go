package domain

// Live-update message kinds sent to clients.
const (
	MsgKindAttendeeCountUpdate = "attendeeCountUpdate"
	MsgKindPong                = "pong"
	MsgKindError               = "error"
)

// Message kinds accepted from clients.
const (
	MsgKindPing = "ping"
)

// BaseMessage is the common envelope of every live-update message.
type BaseMessage struct {
	Kind string `json:"kind"`
}

// AttendeeCountUpdate is broadcast verbatim to every open connection after a
// successful join. Clients filter by EventID.
type AttendeeCountUpdate struct {
	Kind    string `json:"kind"`
	EventID string `json:"eventId"`
	Count   int64  `json:"count"`
}

// NewAttendeeCountUpdate builds the broadcast message for an event.
func NewAttendeeCountUpdate(eventID string, count int64) *AttendeeCountUpdate {
	return &AttendeeCountUpdate{
		Kind:    MsgKindAttendeeCountUpdate,
		EventID: eventID,
		Count:   count,
	}
}

// ErrorMessage is sent to a single connection when its input is rejected.
type ErrorMessage struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// NewErrorMessage creates a new error message.
func NewErrorMessage(message string) *ErrorMessage {
	return &ErrorMessage{
		Kind:    MsgKindError,
		Message: message,
	}
}
