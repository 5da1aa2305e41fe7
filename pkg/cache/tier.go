package cache

import (
	"time"

	"github.com/angelmondragon/stashkeeper-backend/pkg/config"
)

// Tier groups reads by how long a cached result may be served.
type Tier string

const (
	TierDetail Tier = "detail"
	TierList   Tier = "list"
	TierLog    Tier = "log"
)

// Tiers holds the TTL of each tier.
type Tiers struct {
	Detail time.Duration
	List   time.Duration
	Log    time.Duration
}

// DefaultTiers returns detail 5m, list 2m and log 1m.
func DefaultTiers() Tiers {
	return Tiers{
		Detail: 5 * time.Minute,
		List:   2 * time.Minute,
		Log:    time.Minute,
	}
}

// TiersFromConfig falls back to the defaults for unset durations.
func TiersFromConfig(cfg config.CacheConfig) Tiers {
	tiers := DefaultTiers()
	if cfg.DetailTTL > 0 {
		tiers.Detail = cfg.DetailTTL
	}
	if cfg.ListTTL > 0 {
		tiers.List = cfg.ListTTL
	}
	if cfg.LogTTL > 0 {
		tiers.Log = cfg.LogTTL
	}
	return tiers
}

// TTL returns how long an entry of tier stays fresh.
func (t Tiers) TTL(tier Tier) time.Duration {
	switch tier {
	case TierList:
		return t.List
	case TierLog:
		return t.Log
	default:
		return t.Detail
	}
}
