package cache

import (
	"context"
	"time"
)

// Entry is one stored result together with the tag versions that were
// current when its load started.
type Entry struct {
	Value     []byte         `json:"value"`
	ExpiresAt time.Time      `json:"expires_at"`
	Tags      map[Tag]uint64 `json:"tags"`
}

// Live reports whether the entry may be served: it has not expired and none
// of its tags has been bumped since it was recorded.
func (e Entry) Live(now time.Time, current map[Tag]uint64) bool {
	if !now.Before(e.ExpiresAt) {
		return false
	}
	if len(e.Tags) != len(current) {
		return false
	}
	for tag, version := range e.Tags {
		if cur, ok := current[tag]; !ok || cur != version {
			return false
		}
	}
	return true
}

// Backend stores entries and tag versions. A tag that was never bumped has
// version 0. Implementations must make Bump monotonic.
type Backend interface {
	Name() string
	TagVersions(ctx context.Context, tags []Tag) (map[Tag]uint64, error)
	Load(ctx context.Context, key string) (Entry, bool, error)
	Store(ctx context.Context, key string, entry Entry) error
	Bump(ctx context.Context, tag Tag) error
	Ping(ctx context.Context) error
}
