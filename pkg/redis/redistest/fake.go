// Package redistest provides an in-memory stand-in for Redis so cache and
// client tests never dial a server.
package redistest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	skredis "github.com/angelmondragon/stashkeeper-backend/pkg/redis"
)

// NewFake returns a client backed by a process-local map that speaks the
// commands the client uses, plus a handle to inspect or break it.
func NewFake(namespace string) (*skredis.Client, *Fake) {
	fake := newFake()
	return skredis.NewWithCommands(fake, namespace), fake
}

// Fake is the in-memory command store behind NewFake.
type Fake struct {
	mu      sync.Mutex
	data    map[string]string
	expires map[string]time.Duration
	fail    error
}

func newFake() *Fake {
	return &Fake{
		data:    make(map[string]string),
		expires: make(map[string]time.Duration),
	}
}

// SetFailure makes every subsequent command return err; nil restores service.
func (m *Fake) SetFailure(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = err
}

// TTL returns the last expiry recorded for key.
func (m *Fake) TTL(key string) (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ttl, ok := m.expires[key]
	return ttl, ok
}

// Lapse drops key as if its TTL had run out.
func (m *Fake) Lapse(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	delete(m.expires, key)
}

func (m *Fake) Ping(context.Context) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return redis.NewStatusResult("", m.fail)
	}
	return redis.NewStatusResult("PONG", nil)
}

func (m *Fake) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return redis.NewStatusResult("", m.fail)
	}
	m.data[key] = toString(value)
	delete(m.expires, key)
	if ttl > 0 {
		m.expires[key] = ttl
	}
	return redis.NewStatusResult("OK", nil)
}

func (m *Fake) Get(_ context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return redis.NewStringResult("", m.fail)
	}
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *Fake) MGet(_ context.Context, keys ...string) *redis.SliceCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return redis.NewSliceResult(nil, m.fail)
	}
	out := make([]any, len(keys))
	for i, key := range keys {
		if v, ok := m.data[key]; ok {
			out[i] = v
		}
	}
	return redis.NewSliceResult(out, nil)
}

func (m *Fake) Incr(_ context.Context, key string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return redis.NewIntResult(0, m.fail)
	}
	var current int64
	if v, ok := m.data[key]; ok {
		if _, err := fmt.Sscan(v, &current); err != nil {
			return redis.NewIntResult(0, fmt.Errorf("value is not an integer"))
		}
	}
	current++
	m.data[key] = fmt.Sprint(current)
	return redis.NewIntResult(current, nil)
}

func (m *Fake) Del(_ context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return redis.NewIntResult(0, m.fail)
	}
	var removed int64
	for _, key := range keys {
		if _, ok := m.data[key]; ok {
			removed++
		}
		delete(m.data, key)
		delete(m.expires, key)
	}
	return redis.NewIntResult(removed, nil)
}

func toString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

var _ skredis.Commands = (*Fake)(nil)
