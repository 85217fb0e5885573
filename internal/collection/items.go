package collection

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	syncerrors "github.com/medirec/collection-sync/internal/errors"
	"github.com/medirec/collection-sync/internal/record"
)

// GetItem returns a single record of an array collection by id through
// the primary-secondary-cache cascade. A missing id anywhere on the
// active path is ErrNotFound.
func (s *Store) GetItem(ctx context.Context, key, id string) (record.Record, error) {
	if !s.registry.IsArray(key) {
		return nil, fmt.Errorf("getting item from %s: %w", key, syncerrors.ErrNotArray)
	}

	raw, err := s.primary.FetchItem(ctx, key, id)
	if err == nil {
		var r record.Record
		if uerr := json.Unmarshal(raw, &r); uerr == nil && r != nil {
			return r, nil
		}

		// A success response that does not decode is a primary fault,
		// not a definitive absence; degrade like any other outage.
		err = &syncerrors.UnavailableError{Err: fmt.Errorf("decoding item %s/%s", key, id)}
	}

	if !syncerrors.IsUnavailable(err) {
		return nil, err
	}

	version := s.cache.Next(key)
	if value, ok := s.fetchSecondary(ctx, key, version); ok {
		return findRecord(value.Records, id)
	}

	records, err := s.cachedRecords(key)
	if err != nil {
		return nil, err
	}

	return findRecord(records, id)
}

// CreateItem adds a record to an array collection, assigning a
// generated id when the caller supplied none. The stores never mint
// identities for pass-through writes; identity assignment happens here.
// A duplicate id is a conflict, never a silent merge.
func (s *Store) CreateItem(ctx context.Context, key string, item record.Record) (record.Record, error) {
	if !s.registry.IsArray(key) {
		return nil, fmt.Errorf("creating item in %s: %w", key, syncerrors.ErrNotArray)
	}

	id := record.AssignID(item)

	created, err := s.primary.PostItem(ctx, key, item)
	if err == nil {
		s.refreshFromPrimary(ctx, key)

		var r record.Record
		if uerr := json.Unmarshal(created, &r); uerr == nil && r != nil {
			return r, nil
		}

		return item, nil
	}

	if !syncerrors.IsUnavailable(err) {
		return nil, err
	}

	s.logger.Debug("primary create failed, falling back",
		slog.String("key", key),
		slog.String("id", id),
		slog.String("error", err.Error()),
	)

	records, cerr := s.cachedRecords(key)
	if cerr != nil {
		return nil, cerr
	}

	if _, ferr := findRecord(records, id); ferr == nil {
		return nil, fmt.Errorf("creating item %s/%s: %w", key, id, syncerrors.ErrConflict)
	}

	if table, ok := s.resolver.Resolve(ctx, key); ok {
		if s.createOnSecondary(ctx, key, table, item, records) {
			return item, nil
		}
	}

	// Cache-only degradation: append and carry on.
	version := s.cache.Next(key)
	s.writeRecords(key, append(records, item), version)

	return item, nil
}

// createOnSecondary performs a direct create against the secondary
// store and refreshes the cache from its canonical rows. Returns false
// when the create did not land, letting the caller degrade to a
// cache-only append.
func (s *Store) createOnSecondary(ctx context.Context, key, table string, item record.Record, cached []record.Record) bool {
	version := s.cache.Next(key)

	if !s.secondary.Upsert(ctx, table, []record.Record{item}, s.registry.ConflictKey(key)) {
		return false
	}

	rows, err := s.secondary.FetchAll(ctx, table)
	if err != nil {
		// The create landed but the refresh did not; keep the cache
		// coherent with what the caller observed.
		s.writeRecordsIfCurrent(key, append(cached, item), version)
		return true
	}

	s.applyRoundTrip(key, record.ArrayValue(record.Dedupe(rows)), version)

	return true
}

// UpdateItem replaces fields of a single record by id (shallow patch).
func (s *Store) UpdateItem(ctx context.Context, key, id string, patch record.Record) (record.Record, error) {
	if !s.registry.IsArray(key) {
		return nil, fmt.Errorf("updating item in %s: %w", key, syncerrors.ErrNotArray)
	}

	updated, err := s.primary.PutItem(ctx, key, id, patch)
	if err == nil {
		s.refreshFromPrimary(ctx, key)

		var r record.Record
		if uerr := json.Unmarshal(updated, &r); uerr == nil && r != nil {
			return r, nil
		}

		merged := patch.Clone()
		merged[record.IDField] = id

		return merged, nil
	}

	if !syncerrors.IsUnavailable(err) {
		return nil, err
	}

	if table, ok := s.resolver.Resolve(ctx, key); ok {
		if merged, done, uerr := s.updateOnSecondary(ctx, key, table, id, patch); done {
			return merged, uerr
		}
	}

	records, cerr := s.cachedRecords(key)
	if cerr != nil {
		return nil, cerr
	}

	existing, ferr := findRecord(records, id)
	if ferr != nil {
		return nil, ferr
	}

	merged := mergePatch(existing, patch, id)

	version := s.cache.Next(key)
	s.writeRecords(key, replaceRecord(records, id, merged), version)

	return merged, nil
}

// updateOnSecondary applies a patch through the secondary store. done
// is false when the secondary was unreachable and the caller should
// degrade to the cache-only path.
func (s *Store) updateOnSecondary(ctx context.Context, key, table, id string, patch record.Record) (record.Record, bool, error) {
	rows, err := s.secondary.FetchAll(ctx, table)
	if err != nil {
		return nil, false, nil
	}

	rows = record.Dedupe(rows)

	existing, ferr := findRecord(rows, id)
	if ferr != nil {
		return nil, true, ferr
	}

	merged := mergePatch(existing, patch, id)

	version := s.cache.Next(key)

	if !s.secondary.Upsert(ctx, table, []record.Record{merged}, s.registry.ConflictKey(key)) {
		s.logger.Warn("secondary update did not land",
			slog.String("key", key),
			slog.String("id", id),
		)
	}

	s.writeRecordsIfCurrent(key, replaceRecord(rows, id, merged), version)

	return merged, true, nil
}

// DeleteItem removes a single record by id.
func (s *Store) DeleteItem(ctx context.Context, key, id string) error {
	if !s.registry.IsArray(key) {
		return fmt.Errorf("deleting item in %s: %w", key, syncerrors.ErrNotArray)
	}

	err := s.primary.DeleteItem(ctx, key, id)
	if err == nil {
		s.refreshFromPrimary(ctx, key)
		return nil
	}

	if !syncerrors.IsUnavailable(err) {
		return err
	}

	if table, ok := s.resolver.Resolve(ctx, key); ok {
		if done, derr := s.deleteOnSecondary(ctx, key, table, id); done {
			return derr
		}
	}

	records, cerr := s.cachedRecords(key)
	if cerr != nil {
		return cerr
	}

	if _, ferr := findRecord(records, id); ferr != nil {
		return ferr
	}

	version := s.cache.Next(key)
	s.writeRecords(key, removeRecord(records, id), version)

	return nil
}

// deleteOnSecondary removes a record through the secondary store. done
// is false when the secondary was unreachable.
func (s *Store) deleteOnSecondary(ctx context.Context, key, table, id string) (bool, error) {
	rows, err := s.secondary.FetchAll(ctx, table)
	if err != nil {
		return false, nil
	}

	rows = record.Dedupe(rows)

	if _, ferr := findRecord(rows, id); ferr != nil {
		return true, ferr
	}

	version := s.cache.Next(key)

	if !s.secondary.DeleteByIDs(ctx, table, []string{id}) {
		s.logger.Warn("secondary delete did not land",
			slog.String("key", key),
			slog.String("id", id),
		)
	}

	s.writeRecordsIfCurrent(key, removeRecord(rows, id), version)

	return true, nil
}

// writeRecords commits an array snapshot to the cache unconditionally.
func (s *Store) writeRecords(key string, records []record.Record, version uint64) {
	raw, err := record.ArrayValue(records).Marshal()
	if err != nil {
		s.logger.Warn("caching records", slog.String("key", key), slog.String("error", err.Error()))
		return
	}

	if err := s.cache.Write(key, raw, version); err != nil {
		s.logger.Warn("caching records", slog.String("key", key), slog.String("error", err.Error()))
	}
}

// writeRecordsIfCurrent commits an array snapshot only when version is
// still the latest issued for the key.
func (s *Store) writeRecordsIfCurrent(key string, records []record.Record, version uint64) {
	raw, err := record.ArrayValue(records).Marshal()
	if err != nil {
		return
	}

	s.applyRoundTripRaw(key, raw, version)
}

func findRecord(records []record.Record, id string) (record.Record, error) {
	for _, r := range records {
		if r.ID() == id {
			return r, nil
		}
	}

	return nil, fmt.Errorf("id %s: %w", id, syncerrors.ErrNotFound)
}

// mergePatch shallow-merges patch fields onto a clone of existing,
// pinning the id so a patch can never reassign identity.
func mergePatch(existing, patch record.Record, id string) record.Record {
	merged := existing.Clone()

	for k, v := range patch {
		merged[k] = v
	}

	merged[record.IDField] = id

	return merged
}

func replaceRecord(records []record.Record, id string, updated record.Record) []record.Record {
	out := make([]record.Record, len(records))

	for i, r := range records {
		if r.ID() == id {
			out[i] = updated
		} else {
			out[i] = r
		}
	}

	return out
}

func removeRecord(records []record.Record, id string) []record.Record {
	out := make([]record.Record, 0, len(records))

	for _, r := range records {
		if r.ID() != id {
			out = append(out, r)
		}
	}

	return out
}
