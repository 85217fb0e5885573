// Package record models the values held in a collection: either an
// array of id-keyed records or an opaque JSON value. It owns identity
// assignment, deduplication, and the structural diff used to reconcile
// the secondary store.
package record

import (
	"encoding/json"
	"reflect"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// IDField is the field name carrying item identity in every array
// collection.
const IDField = "id"

// Record is a single item of an array collection: arbitrary JSON fields
// keyed by name. A persisted record always carries a non-empty id.
type Record map[string]any

// ID returns the record's id field as a string, or "" when the record
// has no usable identity.
func (r Record) ID() string {
	v, ok := r[IDField]
	if !ok {
		return ""
	}

	s, ok := v.(string)
	if !ok {
		return ""
	}

	return s
}

// Clone returns a deep copy of the record, round-tripped through JSON
// so later mutations of the copy cannot alias the original.
func (r Record) Clone() Record {
	data, err := json.Marshal(r)
	if err != nil {
		return nil
	}

	var out Record
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}

	return out
}

// AssignID sets a generated UUID on the record when it has no id yet.
// Returns the record's id either way. The façade calls this before any
// write so the backing stores never have to mint identities.
func AssignID(r Record) string {
	if id := r.ID(); id != "" {
		return id
	}

	id := uuid.NewString()
	r[IDField] = id

	return id
}

// Kind distinguishes the two physical shapes a collection can hold.
type Kind int

const (
	// KindArray is a list of id-keyed records supporting item-level
	// operations.
	KindArray Kind = iota

	// KindOpaque is an arbitrary JSON value supporting only whole-value
	// get/set.
	KindOpaque
)

// Value is the tagged union held per collection key. Exactly one of
// Records (KindArray) or Raw (KindOpaque) is meaningful.
type Value struct {
	Kind    Kind
	Records []Record
	Raw     json.RawMessage
}

// ArrayValue wraps records as an array-shaped Value.
func ArrayValue(records []Record) Value {
	return Value{Kind: KindArray, Records: records}
}

// OpaqueValue wraps raw JSON as an opaque Value.
func OpaqueValue(raw json.RawMessage) Value {
	return Value{Kind: KindOpaque, Raw: raw}
}

// ParseValue decodes raw JSON into a Value. A top-level array becomes
// KindArray; anything else is opaque. Elements of an array that are not
// JSON objects force the whole value to opaque rather than dropping
// them silently.
func ParseValue(raw json.RawMessage) Value {
	if len(raw) == 0 {
		return ArrayValue(nil)
	}

	if !gjson.ValidBytes(raw) {
		return ArrayValue(nil)
	}

	if !gjson.ParseBytes(raw).IsArray() {
		return OpaqueValue(raw)
	}

	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return OpaqueValue(raw)
	}

	return ArrayValue(records)
}

// Marshal serializes the value back to JSON. Array values marshal as a
// JSON array (never null), opaque values pass Raw through.
func (v Value) Marshal() (json.RawMessage, error) {
	if v.Kind == KindOpaque {
		return v.Raw, nil
	}

	records := v.Records
	if records == nil {
		records = []Record{}
	}

	return json.Marshal(records)
}

// Dedupe removes duplicate ids from records: the later occurrence of a
// given id wins, placed at the position of its first appearance.
// Records without an id are preserved positionally and never deduped.
func Dedupe(records []Record) []Record {
	out := make([]Record, 0, len(records))
	slot := make(map[string]int)

	for _, r := range records {
		id := r.ID()
		if id == "" {
			out = append(out, r)
			continue
		}

		if i, seen := slot[id]; seen {
			out[i] = r
			continue
		}

		slot[id] = len(out)
		out = append(out, r)
	}

	return out
}

// Equal reports structural equality of two records: field order and
// numeric encoding differences do not count as changes. A record that
// round-trips to the same shape is equal.
func Equal(a, b Record) bool {
	return reflect.DeepEqual(canonical(a), canonical(b))
}

// canonical round-trips a record through JSON so that all values share
// the encoding/json type vocabulary before comparison.
func canonical(r Record) any {
	data, err := json.Marshal(r)
	if err != nil {
		return r
	}

	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return r
	}

	return out
}
