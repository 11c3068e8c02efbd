package notifier

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/weiawesome/wes-events/internal/domain"
	"github.com/weiawesome/wes-events/pkg/log"
)

// Broadcaster delivers one message to every open connection.
type Broadcaster interface {
	BroadcastAll(message []byte) int
}

// Notifier turns attendance changes into live-update messages.
type Notifier struct {
	registry Broadcaster
	logger   zerolog.Logger
}

func New(registry Broadcaster) *Notifier {
	return &Notifier{
		registry: registry,
		logger:   log.L(),
	}
}

// NotifyAttendeeCount broadcasts the current count for an event. It never
// fails; problems are logged.
func (n *Notifier) NotifyAttendeeCount(eventID string, count int64) {
	data, err := json.Marshal(domain.NewAttendeeCountUpdate(eventID, count))
	if err != nil {
		n.logger.Error().Err(err).Str(log.FieldEventID, eventID).Msg("failed to encode attendee count update")
		return
	}

	delivered := n.registry.BroadcastAll(data)
	n.logger.Debug().
		Str(log.FieldEventID, eventID).
		Int64(log.FieldCount, count).
		Int("delivered", delivered).
		Msg("attendee count broadcast")
}
