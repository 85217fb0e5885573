package collection

import (
	"context"
	"log/slog"
	"sync"

	"github.com/medirec/collection-sync/internal/record"
	"golang.org/x/sync/errgroup"
)

// hydrateConcurrency bounds the number of per-key secondary fetches
// running at once during fallback hydration.
const hydrateConcurrency = 4

// Bootstrap seeds the cache for every well-known collection key. The
// primary's bootstrap endpoint seeds defaults and returns all
// snapshots; when the primary is down, each key is hydrated from the
// secondary store best-effort, and keys without a table fall back to
// whatever the cache already holds.
func (s *Store) Bootstrap(ctx context.Context) (map[string]record.Value, error) {
	snapshots, err := s.primary.Bootstrap(ctx)
	if err == nil {
		out := make(map[string]record.Value, len(snapshots))

		for key, raw := range snapshots {
			value := record.ParseValue(raw)
			s.cacheNow(key, value)
			out[key] = value
		}

		return out, nil
	}

	s.logger.Info("primary bootstrap failed, hydrating from secondary",
		slog.String("error", err.Error()),
	)

	var (
		mu  sync.Mutex
		out = make(map[string]record.Value)
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(hydrateConcurrency)

	for _, key := range s.registry.Keys() {
		g.Go(func() error {
			version := s.cache.Next(key)

			value, ok := s.fetchSecondary(gctx, key, version)
			if !ok {
				value = s.cachedValue(key)
			}

			mu.Lock()
			out[key] = value
			mu.Unlock()

			return nil
		})
	}

	// Hydration is best-effort; per-key failures already degraded to
	// the cached value.
	_ = g.Wait()

	return out, nil
}

// Watch subscribes to the secondary store's change stream for key and
// refreshes the cache whenever something changes there. The returned
// function tears the subscription down. Local cache subscribers (see
// LocalCache.Subscribe) fire on every refresh that applies.
func (s *Store) Watch(ctx context.Context, key string) func() {
	if s.notifier == nil {
		return func() {}
	}

	return s.notifier.Subscribe(ctx, key, func() {
		s.refreshFromSecondary(ctx, key)
	})
}
