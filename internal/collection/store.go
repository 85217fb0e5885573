// Package collection is the public surface of the synchronization
// core. A Store sequences every operation through the primary backend
// first, degrades to the secondary cloud store when the primary is
// unreachable, and always leaves the local cache holding the value the
// caller observed.
package collection

//go:generate mockgen -source=store.go -destination=mock_stores_test.go -package=collection

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	syncerrors "github.com/medirec/collection-sync/internal/errors"
	"github.com/medirec/collection-sync/internal/record"
)

// PrimaryStore is the authoritative backend API, tried first for every
// operation. internal/primary.Client satisfies this.
type PrimaryStore interface {
	FetchDocument(ctx context.Context, key string) (json.RawMessage, error)
	PutDocument(ctx context.Context, key string, value json.RawMessage) (json.RawMessage, error)
	FetchItem(ctx context.Context, key, id string) (json.RawMessage, error)
	PostItem(ctx context.Context, key string, item any) (json.RawMessage, error)
	PutItem(ctx context.Context, key, id string, item any) (json.RawMessage, error)
	DeleteItem(ctx context.Context, key, id string) error
	Bootstrap(ctx context.Context) (map[string]json.RawMessage, error)
}

// SecondaryStore is the fallback cloud store, addressed by resolved
// table name. internal/secondary.Client satisfies this.
type SecondaryStore interface {
	FetchAll(ctx context.Context, table string) ([]record.Record, error)
	Upsert(ctx context.Context, table string, records []record.Record, conflictKey string) bool
	DeleteByIDs(ctx context.Context, table string, ids []string) bool
}

// TableResolver maps collection keys to secondary store table names.
// internal/secondary.Resolver satisfies this.
type TableResolver interface {
	Resolve(ctx context.Context, key string) (table string, ok bool)
}

// ChangeNotifier streams change events for a key's table.
// internal/secondary.Notifier satisfies this.
type ChangeNotifier interface {
	Subscribe(ctx context.Context, key string, onChange func()) func()
}

// LocalCache is the durable last-known-good snapshot per key.
// internal/cache.Cache satisfies this.
type LocalCache interface {
	Read(key string) ([]byte, bool)
	Next(key string) uint64
	Write(key string, raw []byte, version uint64) error
	WriteIfCurrent(key string, raw []byte, version uint64) (bool, error)
	Subscribe(key string, fn func()) func()
}

// Store is the collection façade.
type Store struct {
	primary   PrimaryStore
	secondary SecondaryStore
	resolver  TableResolver
	notifier  ChangeNotifier
	cache     LocalCache
	registry  *Registry
	logger    *slog.Logger

	// wg tracks background propagation goroutines so shutdown (and
	// tests) can wait for in-flight secondary writes to finish.
	wg sync.WaitGroup
}

// NewStore wires the façade. notifier may be nil when no realtime
// endpoint is configured; Watch then returns a no-op unsubscribe.
func NewStore(primary PrimaryStore, secondary SecondaryStore, resolver TableResolver, notifier ChangeNotifier, localCache LocalCache, registry *Registry, logger *slog.Logger) *Store {
	return &Store{
		primary:   primary,
		secondary: secondary,
		resolver:  resolver,
		notifier:  notifier,
		cache:     localCache,
		registry:  registry,
		logger:    logger,
	}
}

// Wait blocks until all background secondary propagation has finished.
func (s *Store) Wait() {
	s.wg.Wait()
}

// Get returns the current value of a collection: from the primary when
// reachable, from the secondary otherwise, and from the local cache
// when neither store answers. Never errors on store unavailability.
func (s *Store) Get(ctx context.Context, key string) (record.Value, error) {
	// The version is issued before the network call so that a local
	// write landing while the fetch is in flight wins the cache.
	version := s.cache.Next(key)

	raw, err := s.primary.FetchDocument(ctx, key)
	if err == nil {
		value := record.ParseValue(raw)
		s.applyRoundTrip(key, value, version)

		return value, nil
	}

	s.logger.Debug("primary fetch failed, falling back",
		slog.String("key", key),
		slog.String("error", err.Error()),
	)

	if value, ok := s.fetchSecondary(ctx, key, version); ok {
		return value, nil
	}

	return s.cachedValue(key), nil
}

// Set replaces a collection's whole value. On the primary path the
// server's canonical form (it may normalize or dedupe) is cached and
// returned. On the fallback path the write commits to the local cache
// immediately and the secondary store is reconciled in the background;
// the optimistic value is returned regardless of whether that push
// lands. Best-effort, at-least-once.
func (s *Store) Set(ctx context.Context, key string, value record.Value) (record.Value, error) {
	raw, err := value.Marshal()
	if err != nil {
		return record.Value{}, err
	}

	canonical, err := s.primary.PutDocument(ctx, key, raw)
	if err == nil {
		serverValue := record.ParseValue(canonical)
		s.cacheNow(key, serverValue)

		return serverValue, nil
	}

	s.logger.Debug("primary put failed, falling back",
		slog.String("key", key),
		slog.String("error", err.Error()),
	)

	// Snapshot the previous cached value before the optimistic write;
	// it is the diff base for secondary reconciliation.
	prev := s.cachedValue(key)

	if value.Kind == record.KindArray {
		value.Records = record.Dedupe(value.Records)
	}

	version := s.cache.Next(key)

	optimistic, err := value.Marshal()
	if err != nil {
		return record.Value{}, err
	}

	if err := s.cache.Write(key, optimistic, version); err != nil {
		return record.Value{}, err
	}

	if value.Kind == record.KindArray {
		diff := record.Compute(prev.Records, value.Records, s.registry.Identity(key))
		s.propagate(ctx, key, diff, version)
	}

	return value, nil
}

// propagate pushes a diff to the secondary store on its own goroutine:
// the local commit already happened and the caller is not kept waiting.
// After the push, the secondary's canonical rows are re-read and applied
// to the cache only if no newer write for the key was issued meanwhile.
func (s *Store) propagate(ctx context.Context, key string, diff record.Diff, version uint64) {
	if diff.Empty() {
		return
	}

	table, ok := s.resolver.Resolve(ctx, key)
	if !ok {
		return
	}

	// The caller going away must not abort an in-flight push; the
	// version guard protects the cache, not the network write.
	ctx = context.WithoutCancel(ctx)

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		if !s.secondary.Upsert(ctx, table, diff.Upserts, s.registry.ConflictKey(key)) {
			s.logger.Warn("secondary upsert did not land",
				slog.String("key", key),
				slog.Int("upserts", len(diff.Upserts)),
			)
		}

		if !s.secondary.DeleteByIDs(ctx, table, diff.DeletedIDs) {
			s.logger.Warn("secondary delete did not land",
				slog.String("key", key),
				slog.Int("deletes", len(diff.DeletedIDs)),
			)
		}

		rows, err := s.secondary.FetchAll(ctx, table)
		if err != nil {
			return
		}

		s.applyRoundTrip(key, record.ArrayValue(record.Dedupe(rows)), version)
	}()
}

// fetchSecondary reads a key's rows from the secondary store and
// applies them to the cache under the given read version. ok is false
// when the key has no table, the key is opaque (the tabular store holds
// no opaque documents), or the fetch fails.
func (s *Store) fetchSecondary(ctx context.Context, key string, version uint64) (record.Value, bool) {
	if !s.registry.IsArray(key) {
		return record.Value{}, false
	}

	table, ok := s.resolver.Resolve(ctx, key)
	if !ok {
		return record.Value{}, false
	}

	rows, err := s.secondary.FetchAll(ctx, table)
	if err != nil {
		s.logger.Debug("secondary fetch failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)

		return record.Value{}, false
	}

	value := record.ArrayValue(record.Dedupe(rows))
	s.applyRoundTrip(key, value, version)

	return value, true
}

// refreshFromSecondary re-reads a key's table after a change event and
// applies it to the cache, guarded against clobbering newer local
// writes.
func (s *Store) refreshFromSecondary(ctx context.Context, key string) {
	version := s.cache.Next(key)
	s.fetchSecondary(ctx, key, version)
}

// refreshFromPrimary re-reads the primary's canonical document after an
// item-level write and applies it to the cache, version-guarded.
func (s *Store) refreshFromPrimary(ctx context.Context, key string) {
	version := s.cache.Next(key)

	raw, err := s.primary.FetchDocument(ctx, key)
	if err != nil {
		s.logger.Debug("refreshing from primary",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)

		return
	}

	s.applyRoundTrip(key, record.ParseValue(raw), version)
}

// cacheNow writes a value as the newest state of the key, bumping the
// version so any in-flight round trip for the key is discarded.
func (s *Store) cacheNow(key string, value record.Value) {
	raw, err := value.Marshal()
	if err != nil {
		s.logger.Warn("caching value", slog.String("key", key), slog.String("error", err.Error()))
		return
	}

	if err := s.cache.Write(key, raw, s.cache.Next(key)); err != nil {
		s.logger.Warn("caching value", slog.String("key", key), slog.String("error", err.Error()))
	}
}

// applyRoundTrip applies a value derived from a network round trip,
// refusing it when a newer local write was issued while it was in
// flight.
func (s *Store) applyRoundTrip(key string, value record.Value, version uint64) {
	raw, err := value.Marshal()
	if err != nil {
		return
	}

	s.applyRoundTripRaw(key, raw, version)
}

func (s *Store) applyRoundTripRaw(key string, raw []byte, version uint64) {
	applied, err := s.cache.WriteIfCurrent(key, raw, version)
	if err != nil {
		s.logger.Warn("applying round trip", slog.String("key", key), slog.String("error", err.Error()))
		return
	}

	if !applied {
		s.logger.Debug("stale round trip discarded", slog.String("key", key))
	}
}

// cachedValue parses the local cache for key, defaulting to an empty
// array collection on absence or parse failure.
func (s *Store) cachedValue(key string) record.Value {
	raw, ok := s.cache.Read(key)
	if !ok {
		if s.registry.IsArray(key) {
			return record.ArrayValue(nil)
		}

		return record.OpaqueValue(nil)
	}

	return record.ParseValue(raw)
}

// cachedRecords returns the cached array records for key, erroring when
// the cached value is opaque.
func (s *Store) cachedRecords(key string) ([]record.Record, error) {
	value := s.cachedValue(key)
	if value.Kind != record.KindArray {
		return nil, syncerrors.ErrNotArray
	}

	return value.Records, nil
}
