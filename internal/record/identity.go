package record

import "strings"

// IdentityFunc derives the reconciliation key for a record, or "" when
// the record has no usable identity. Records without an identity are
// written to the local cache but never propagated to the secondary
// store; there is no stable key to upsert against.
type IdentityFunc func(Record) string

// NaturalIdentity is the default rule: the record's id field.
func NaturalIdentity(r Record) string {
	return r.ID()
}

// CompositeIdentity builds a synthetic identity by joining the named
// string fields. It returns "" unless every part is a non-empty string,
// so a partially-populated record is excluded from reconciliation
// rather than keyed inconsistently between snapshots.
func CompositeIdentity(fields ...string) IdentityFunc {
	return func(r Record) string {
		parts := make([]string, 0, len(fields))

		for _, f := range fields {
			v, ok := r[f].(string)
			if !ok || v == "" {
				return ""
			}

			parts = append(parts, v)
		}

		return strings.Join(parts, ":")
	}
}
