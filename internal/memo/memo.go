// Package memo memoizes pure stage outputs by input fingerprint.
// L1 is an in-process LRU, L2 the optional Redis cache shared by processes.
package memo

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Miche5967/movie-analyse-recommendation/internal/contracts"
	"github.com/Miche5967/movie-analyse-recommendation/pkg/logger"
	"github.com/Miche5967/movie-analyse-recommendation/pkg/metrics"
	"github.com/Miche5967/movie-analyse-recommendation/pkg/redis"
)

// Memo is a two-level stage cache. A nil *Memo disables memoization.
// Cached values are shared: callers must not mutate them.
type Memo struct {
	l1     *lru.Cache[string, any]
	l2     *redis.Cache
	ttl    time.Duration
	logger *logger.Logger
}

// New creates a memo. size <= 0 disables L1; a nil l2 disables L2.
func New(size int, l2 *redis.Cache, ttl time.Duration, log *logger.Logger) (*Memo, error) {
	m := &Memo{
		l2:     l2,
		ttl:    ttl,
		logger: log.WithField("module", "memo"),
	}
	if size > 0 {
		c, err := lru.New[string, any](size)
		if err != nil {
			return nil, fmt.Errorf("create lru: %w", err)
		}
		m.l1 = c
	}
	return m, nil
}

// Purge drops every L1 entry
func (m *Memo) Purge() {
	if m != nil && m.l1 != nil {
		m.l1.Purge()
	}
}

// Len returns the number of L1 entries
func (m *Memo) Len() int {
	if m == nil || m.l1 == nil {
		return 0
	}
	return m.l1.Len()
}

// Fingerprint hashes the canonical JSON of parts
func Fingerprint(parts ...any) (string, error) {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for _, p := range parts {
		if err := enc.Encode(p); err != nil {
			return "", fmt.Errorf("fingerprint: %w", err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Do returns the memoized output of stage for fingerprint, computing and
// storing it with fn on a miss. memoized reports a hit at either level.
// Errors are never cached; an L2 failure degrades to computing.
func Do[T any](ctx context.Context, m *Memo, stage contracts.Stage, fingerprint string, fn func() (T, error)) (value T, memoized bool, err error) {
	if m == nil {
		value, err = fn()
		return value, false, err
	}

	key := redis.StageKey(stage.String(), fingerprint)

	if m.l1 != nil {
		if v, ok := m.l1.Get(key); ok {
			if typed, ok := v.(T); ok {
				metrics.MemoLookups.WithLabelValues("lru", "hit").Inc()
				return typed, true, nil
			}
		}
		metrics.MemoLookups.WithLabelValues("lru", "miss").Inc()
	}

	if m.l2 != nil {
		var cached T
		found, gerr := m.l2.Get(ctx, key, &cached)
		switch {
		case gerr != nil:
			metrics.MemoLookups.WithLabelValues("redis", "error").Inc()
			m.logger.WithError(gerr).WithStage(stage.String()).Warn("Memo read failed, recomputing")
		case found:
			metrics.MemoLookups.WithLabelValues("redis", "hit").Inc()
			if m.l1 != nil {
				m.l1.Add(key, cached)
			}
			return cached, true, nil
		default:
			metrics.MemoLookups.WithLabelValues("redis", "miss").Inc()
		}
	}

	value, err = fn()
	if err != nil {
		return value, false, err
	}

	if m.l1 != nil {
		m.l1.Add(key, value)
	}
	if m.l2 != nil {
		if serr := m.l2.Set(ctx, key, value, m.ttl); serr != nil {
			metrics.MemoLookups.WithLabelValues("redis", "error").Inc()
			m.logger.WithError(serr).WithStage(stage.String()).Warn("Memo write failed")
		}
	}

	return value, false, nil
}
