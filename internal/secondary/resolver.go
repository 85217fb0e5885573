package secondary

import (
	"context"
	"log/slog"
	"sync"
)

// Prober answers table-existence checks. *Client satisfies this; tests
// substitute a mock to assert probe counts.
type Prober interface {
	Probe(ctx context.Context, table string) bool
}

// Resolver maps a logical collection key to the first physical table
// name that exists in the secondary store, absorbing naming-convention
// drift (camelCase vs snake_case pluralization) via a ranked candidate
// list per key.
//
// Results, including "no table", are memoized for the process lifetime.
// A table created after first resolution is only discovered on restart;
// re-probing on a timer would cost a round trip per key per expiry to
// cover a case that in practice only happens during schema migrations.
type Resolver struct {
	prober     Prober
	candidates func(key string) []string
	logger     *slog.Logger

	mu    sync.Mutex
	cache map[string]string
}

// NewResolver creates a resolver. candidates returns the ranked
// physical names to try for a key; when it returns nothing the key
// itself is the only candidate.
func NewResolver(prober Prober, candidates func(key string) []string, logger *slog.Logger) *Resolver {
	return &Resolver{
		prober:     prober,
		candidates: candidates,
		logger:     logger,
		cache:      make(map[string]string),
	}
}

// Resolve returns the physical table name for key. ok is false when no
// candidate exists in the store; all secondary operations for the key
// are then no-ops. Probe errors count as "does not exist" for that
// candidate and are never propagated.
//
// Safe for concurrent use: two goroutines racing on an unresolved key
// may probe redundantly but converge to the same cached answer.
func (r *Resolver) Resolve(ctx context.Context, key string) (string, bool) {
	r.mu.Lock()
	table, done := r.cache[key]
	r.mu.Unlock()

	if done {
		return table, table != ""
	}

	table = r.probeCandidates(ctx, key)

	r.mu.Lock()
	r.cache[key] = table
	r.mu.Unlock()

	return table, table != ""
}

func (r *Resolver) probeCandidates(ctx context.Context, key string) string {
	names := r.candidates(key)
	if len(names) == 0 {
		names = []string{key}
	}

	for _, name := range names {
		if r.prober.Probe(ctx, name) {
			r.logger.Debug("resolved collection table",
				slog.String("key", key),
				slog.String("table", name),
			)

			return name
		}
	}

	r.logger.Debug("no table for collection", slog.String("key", key))

	return ""
}
