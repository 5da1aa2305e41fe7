package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/angelmondragon/stashkeeper-backend/pkg/redis"
)

const (
	entryPrefix = "entry"
	tagPrefix   = "tag"
	epochKey    = "epoch"
)

// RedisBackend shares entries and tag versions between API instances.
type RedisBackend struct {
	client *redis.Client
	tagTTL time.Duration
	now    func() time.Time
}

// NewRedisBackend stores entries under the client's namespace. Tag keys
// expire tagTTL after their last bump. Their values come from one
// non-expiring epoch counter, so a tag key that lapses and is bumped again
// never repeats a version an older entry may have recorded.
func NewRedisBackend(client *redis.Client, tagTTL time.Duration) *RedisBackend {
	return &RedisBackend{client: client, tagTTL: tagTTL, now: time.Now}
}

func (r *RedisBackend) Name() string { return "redis" }

func (r *RedisBackend) entryKey(key string) string {
	return r.client.Key("cache", entryPrefix, key)
}

func (r *RedisBackend) tagKey(tag Tag) string {
	return r.client.Key("cache", tagPrefix, string(tag))
}

func (r *RedisBackend) TagVersions(ctx context.Context, tags []Tag) (map[Tag]uint64, error) {
	out := make(map[Tag]uint64, len(tags))
	if len(tags) == 0 {
		return out, nil
	}
	keys := make([]string, len(tags))
	for i, tag := range tags {
		keys[i] = r.tagKey(tag)
	}
	values, err := r.client.MGet(ctx, keys...)
	if err != nil {
		return nil, fmt.Errorf("read tag versions: %w", err)
	}
	for i, tag := range tags {
		var raw any
		if i < len(values) {
			raw = values[i]
		}
		version, err := parseVersion(raw)
		if err != nil {
			return nil, fmt.Errorf("tag %s: %w", tag, err)
		}
		out[tag] = version
	}
	return out, nil
}

func parseVersion(raw any) (uint64, error) {
	switch v := raw.(type) {
	case nil:
		return 0, nil
	case string:
		return strconv.ParseUint(v, 10, 64)
	case int64:
		return uint64(v), nil
	default:
		return 0, fmt.Errorf("unexpected tag version type %T", raw)
	}
}

func (r *RedisBackend) Load(ctx context.Context, key string) (Entry, bool, error) {
	raw, err := r.client.Get(ctx, r.entryKey(key))
	if redis.IsNil(err) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("load entry: %w", err)
	}
	var entry Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return Entry{}, false, fmt.Errorf("decode entry: %w", err)
	}
	return entry, true, nil
}

func (r *RedisBackend) Store(ctx context.Context, key string, entry Entry) error {
	ttl := entry.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	if err := r.client.Set(ctx, r.entryKey(key), payload, ttl); err != nil {
		return fmt.Errorf("store entry: %w", err)
	}
	return nil
}

// Bump sets tag to the next epoch value. Versions across all tags are
// strictly increasing, which keeps them monotonic even after expiry.
func (r *RedisBackend) Bump(ctx context.Context, tag Tag) error {
	version, err := r.client.Incr(ctx, r.client.Key("cache", epochKey))
	if err != nil {
		return fmt.Errorf("bump tag %s: next epoch: %w", tag, err)
	}
	if err := r.client.Set(ctx, r.tagKey(tag), version, r.tagTTL); err != nil {
		return fmt.Errorf("bump tag %s: %w", tag, err)
	}
	return nil
}

func (r *RedisBackend) Ping(ctx context.Context) error {
	return r.client.Ping(ctx)
}
