package service

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"

	trackingout "scormtrack/internal/modules/tracking/port/out"
)

// tieredStore spreads state over a tab-scoped tier and an origin-scoped tier.
// Storage failures are logged and otherwise ignored so tracking keeps working
// from memory.
type tieredStore struct {
	tabTier    trackingout.KeyValueStore
	originTier trackingout.KeyValueStore
	log        zerolog.Logger
}

func newTieredStore(tab, origin trackingout.KeyValueStore, log zerolog.Logger) *tieredStore {
	return &tieredStore{tabTier: tab, originTier: origin, log: log}
}

func (s *tieredStore) tiers() []trackingout.KeyValueStore {
	out := make([]trackingout.KeyValueStore, 0, 2)
	if s.tabTier != nil {
		out = append(out, s.tabTier)
	}
	if s.originTier != nil {
		out = append(out, s.originTier)
	}
	return out
}

func (s *tieredStore) get(ctx context.Context, tier trackingout.KeyValueStore, key string) (string, bool) {
	if tier == nil {
		return "", false
	}
	value, ok, err := tier.Get(ctx, key)
	if err != nil {
		s.log.Debug().Err(err).Str("key", key).Msg("storage read failed")
		return "", false
	}
	return value, ok
}

func (s *tieredStore) set(ctx context.Context, tier trackingout.KeyValueStore, key, value string) bool {
	if tier == nil {
		return false
	}
	if err := tier.Set(ctx, key, value); err != nil {
		s.log.Debug().Err(err).Str("key", key).Msg("storage write failed")
		return false
	}
	return true
}

func (s *tieredStore) remove(ctx context.Context, tier trackingout.KeyValueStore, key string) {
	if tier == nil {
		return
	}
	if err := tier.Remove(ctx, key); err != nil {
		s.log.Debug().Err(err).Str("key", key).Msg("storage remove failed")
	}
}

// first returns the value from the tab tier, falling back to the origin tier.
func (s *tieredStore) first(ctx context.Context, key string) (string, bool) {
	for _, tier := range s.tiers() {
		if value, ok := s.get(ctx, tier, key); ok && value != "" {
			return value, true
		}
	}
	return "", false
}

func (s *tieredStore) loadInt(ctx context.Context, key string) int {
	raw, ok := s.first(ctx, key)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// saveMax writes value to every tier whose stored value is lower. Stored
// values never decrease.
func (s *tieredStore) saveMax(ctx context.Context, key string, value int) {
	for _, tier := range s.tiers() {
		if raw, ok := s.get(ctx, tier, key); ok {
			if cur, err := strconv.Atoi(raw); err == nil && cur >= value {
				continue
			}
		}
		s.set(ctx, tier, key, strconv.Itoa(value))
	}
}

// setAll writes to every tier and reports whether any write landed.
func (s *tieredStore) setAll(ctx context.Context, key, value string) bool {
	stored := false
	for _, tier := range s.tiers() {
		if s.set(ctx, tier, key, value) {
			stored = true
		}
	}
	return stored
}

func (s *tieredStore) removeAll(ctx context.Context, key string) {
	for _, tier := range s.tiers() {
		s.remove(ctx, tier, key)
	}
}

func (s *tieredStore) origin(ctx context.Context, key string) (string, bool) {
	return s.get(ctx, s.originTier, key)
}

func (s *tieredStore) setOrigin(ctx context.Context, key, value string) {
	s.set(ctx, s.originTier, key, value)
}

func (s *tieredStore) removeOrigin(ctx context.Context, key string) {
	s.remove(ctx, s.originTier, key)
}
