package cache

import (
	"context"
	"time"

	"github.com/weiawesome/wes-events/internal/domain"
)

// EventCacheResult is the cached payload. Exactly one of Event or Events is
// set depending on the key.
type EventCacheResult struct {
	Event  *domain.Event  `json:"event,omitempty"`
	Events []domain.Event `json:"events,omitempty"`
}

// EventCache caches event metadata. Attendee counts are never cached.
type EventCache interface {
	Get(ctx context.Context, key string) (*EventCacheResult, error)
	Set(ctx context.Context, key string, result *EventCacheResult, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	BuildKeyByID(eventID string) string
	BuildListKey(includeRestricted bool) string
	Close() error
}
