// Package loader provides the competency loading primitives shared by the
// scoring workers: a resilient by-id loader with a Redis fallback cache and
// a batch loader that collects competency references from raw answers.
package loader

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"assessment-workers/internal/common/logger"
	"assessment-workers/internal/common/metrics"
	"assessment-workers/internal/models"
)

const competencyCachePrefix = "competency:"

// Breaker states reported through the Prometheus gauge.
const (
	breakerClosed   = 0
	breakerOpen     = 1
	breakerHalfOpen = 2
)

// CompetencySource is the primary (database) competency lookup.
type CompetencySource interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Competency, error)
}

// ResilientLoader loads competencies by id set from the primary source and
// falls back to the Redis cache when the database is failing. After
// FailureThreshold consecutive failures the primary is skipped entirely for
// Cooldown, then probed again with a single request.
//
// Database slowness and partial cache contents are expected steady-state
// conditions; LoadByIDs returns whatever subset is available and never
// surfaces a database error to its callers.
type ResilientLoader struct {
	source   CompetencySource
	redis    *redis.Client
	cacheTTL time.Duration
	logger   logger.Logger

	failureThreshold int
	cooldown         time.Duration

	mu       sync.Mutex
	failures int
	openedAt time.Time
	probing  bool
}

type ResilientLoaderOptions struct {
	CacheTTL         time.Duration
	FailureThreshold int
	Cooldown         time.Duration
}

func NewResilientLoader(source CompetencySource, rdb *redis.Client, opts ResilientLoaderOptions, log logger.Logger) *ResilientLoader {
	if opts.CacheTTL == 0 {
		opts.CacheTTL = 15 * time.Minute
	}
	if opts.FailureThreshold == 0 {
		opts.FailureThreshold = 3
	}
	if opts.Cooldown == 0 {
		opts.Cooldown = 30 * time.Second
	}
	return &ResilientLoader{
		source:           source,
		redis:            rdb,
		cacheTTL:         opts.CacheTTL,
		logger:           log.WithFields(map[string]interface{}{"component": "resilient-loader"}),
		failureThreshold: opts.FailureThreshold,
		cooldown:         opts.Cooldown,
	}
}

// LoadByIDs returns a mapping id -> competency for whatever subset of ids is
// currently available. The result may be sparse; callers must tolerate
// missing entries.
func (l *ResilientLoader) LoadByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Competency, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]*models.Competency{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if l.allowPrimary() {
		competencies, err := l.source.FindByIDs(ctx, ids)
		if err == nil {
			l.recordSuccess()
			out := make(map[uuid.UUID]*models.Competency, len(competencies))
			for _, c := range competencies {
				out[c.ID] = c
			}
			l.refreshCache(ctx, out)
			return out, nil
		}

		l.recordFailure()
		l.logger.Warn("primary competency load failed, serving from cache", map[string]interface{}{
			"idCount": len(ids),
			"error":   err.Error(),
		})
	} else {
		l.logger.Debug("circuit open, skipping primary competency load", map[string]interface{}{
			"idCount": len(ids),
		})
	}

	return l.loadFromCache(ctx, ids), nil
}

func (l *ResilientLoader) allowPrimary() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.failures < l.failureThreshold {
		metrics.CompetencyLoaderState.Set(breakerClosed)
		return true
	}
	if !l.probing && time.Since(l.openedAt) >= l.cooldown {
		// Half-open: exactly one probe goes through; recordSuccess or
		// recordFailure settles the state.
		l.probing = true
		metrics.CompetencyLoaderState.Set(breakerHalfOpen)
		return true
	}
	metrics.CompetencyLoaderState.Set(breakerOpen)
	return false
}

func (l *ResilientLoader) recordSuccess() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failures = 0
	l.probing = false
	metrics.CompetencyLoaderState.Set(breakerClosed)
}

func (l *ResilientLoader) recordFailure() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failures++
	l.probing = false
	if l.failures >= l.failureThreshold {
		l.openedAt = time.Now()
		metrics.CompetencyLoaderState.Set(breakerOpen)
	}
}

func (l *ResilientLoader) refreshCache(ctx context.Context, competencies map[uuid.UUID]*models.Competency) {
	for id, c := range competencies {
		data, err := json.Marshal(c)
		if err != nil {
			continue
		}
		if err := l.redis.Set(ctx, competencyCachePrefix+id.String(), data, l.cacheTTL).Err(); err != nil {
			l.logger.Debug("competency cache refresh failed", map[string]interface{}{
				"competencyId": id.String(),
				"error":        err.Error(),
			})
			return
		}
	}
}

func (l *ResilientLoader) loadFromCache(ctx context.Context, ids []uuid.UUID) map[uuid.UUID]*models.Competency {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, competencyCachePrefix+id.String())
	}

	out := make(map[uuid.UUID]*models.Competency)
	values, err := l.redis.MGet(ctx, keys...).Result()
	if err != nil {
		l.logger.Error("competency cache read failed", map[string]interface{}{
			"idCount": len(ids),
			"error":   err.Error(),
		})
		return out
	}

	for i, raw := range values {
		if raw == nil {
			metrics.CompetencyCacheHits.WithLabelValues("miss").Inc()
			continue
		}
		s, ok := raw.(string)
		if !ok {
			metrics.CompetencyCacheHits.WithLabelValues("miss").Inc()
			continue
		}
		var c models.Competency
		if err := json.Unmarshal([]byte(s), &c); err != nil {
			metrics.CompetencyCacheHits.WithLabelValues("corrupt").Inc()
			l.logger.Warn("corrupt competency cache entry", map[string]interface{}{
				"competencyId": ids[i].String(),
			})
			continue
		}
		metrics.CompetencyCacheHits.WithLabelValues("hit").Inc()
		out[c.ID] = &c
	}
	return out
}
