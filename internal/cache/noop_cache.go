package cache

import (
	"context"
	"time"
)

// NoopEventCache is used when no Redis address is configured. Every read
// misses.
type NoopEventCache struct{}

func NewNoopEventCache() *NoopEventCache {
	return &NoopEventCache{}
}

func (NoopEventCache) Get(context.Context, string) (*EventCacheResult, error) {
	return nil, ErrCacheMiss
}

func (NoopEventCache) Set(context.Context, string, *EventCacheResult, time.Duration) error {
	return nil
}

func (NoopEventCache) Delete(context.Context, ...string) error { return nil }

func (NoopEventCache) BuildKeyByID(eventID string) string { return "noop:id:" + eventID }

func (NoopEventCache) BuildListKey(bool) string { return "noop:list" }

func (NoopEventCache) Close() error { return nil }
