package record

// Diff is the minimal change set that brings the secondary store in
// line with a next snapshot. It is derived and ephemeral: recomputed on
// every write that takes the fallback path, never persisted.
type Diff struct {
	Upserts    []Record
	DeletedIDs []string
}

// Empty reports whether applying the diff would be a no-op.
func (d Diff) Empty() bool {
	return len(d.Upserts) == 0 && len(d.DeletedIDs) == 0
}

// Compute compares two snapshots of a collection keyed by identity.
// This is a pure function with no I/O.
//
// Records for which idFn returns "" are excluded entirely: they reach
// the local cache but are never pushed, an accepted at-least-once gap.
// DeletedIDs are identities present in prev but absent from next, in
// prev order. Upserts are next records that are new or structurally
// different from their prev counterpart, in next order. When a snapshot
// holds duplicate identities the later occurrence wins.
func Compute(prev, next []Record, idFn IdentityFunc) Diff {
	if idFn == nil {
		idFn = NaturalIdentity
	}

	prevByID := indexByID(prev, idFn)
	nextByID := indexByID(next, idFn)

	var diff Diff

	seen := make(map[string]struct{}, len(prev))

	for _, r := range prev {
		id := idFn(r)
		if id == "" {
			continue
		}

		if _, dup := seen[id]; dup {
			continue
		}

		seen[id] = struct{}{}

		if _, ok := nextByID[id]; !ok {
			diff.DeletedIDs = append(diff.DeletedIDs, id)
		}
	}

	emitted := make(map[string]struct{}, len(next))

	for _, r := range next {
		id := idFn(r)
		if id == "" {
			continue
		}

		if _, dup := emitted[id]; dup {
			continue
		}

		emitted[id] = struct{}{}

		winner := nextByID[id]
		if old, ok := prevByID[id]; ok && Equal(old, winner) {
			continue
		}

		diff.Upserts = append(diff.Upserts, winner)
	}

	return diff
}

// indexByID maps identity to record, later occurrence winning.
func indexByID(records []Record, idFn IdentityFunc) map[string]Record {
	out := make(map[string]Record, len(records))

	for _, r := range records {
		id := idFn(r)
		if id == "" {
			continue
		}

		out[id] = r
	}

	return out
}
