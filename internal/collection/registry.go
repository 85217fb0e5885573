package collection

import (
	_ "embed"
	"fmt"
	"strings"
	"unicode"

	"github.com/medirec/collection-sync/internal/record"
	"gopkg.in/yaml.v3"
)

//go:embed collections.yaml
var collectionsYAML []byte

// entry is one collection declaration from collections.yaml.
type entry struct {
	Key      string   `yaml:"key"`
	Tables   []string `yaml:"tables"`
	Shape    string   `yaml:"shape"`
	Identity []string `yaml:"identity"`
}

type registryFile struct {
	Collections []entry `yaml:"collections"`
}

// Registry declares the well-known collection keys: their ranked
// candidate table names, their shape, and any synthetic identity rule.
// Unknown keys are treated as array collections whose only candidate
// table is the key itself plus its snake_case drift.
type Registry struct {
	entries map[string]entry
	order   []string
}

// LoadRegistry parses the embedded collection declarations.
func LoadRegistry() (*Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(collectionsYAML, &file); err != nil {
		return nil, fmt.Errorf("parsing collection registry: %w", err)
	}

	r := &Registry{entries: make(map[string]entry, len(file.Collections))}

	for _, e := range file.Collections {
		if e.Key == "" {
			return nil, fmt.Errorf("collection registry entry without a key")
		}

		if _, dup := r.entries[e.Key]; dup {
			return nil, fmt.Errorf("duplicate collection key %q", e.Key)
		}

		switch e.Shape {
		case "", "array", "opaque":
		default:
			return nil, fmt.Errorf("collection %q: unknown shape %q", e.Key, e.Shape)
		}

		r.entries[e.Key] = e
		r.order = append(r.order, e.Key)
	}

	return r, nil
}

// Keys returns the well-known collection keys in declaration order.
func (r *Registry) Keys() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)

	return out
}

// Candidates returns the ranked physical table names to probe for key.
func (r *Registry) Candidates(key string) []string {
	if e, ok := r.entries[key]; ok && len(e.Tables) > 0 {
		out := make([]string, len(e.Tables))
		copy(out, e.Tables)

		return out
	}

	if snake := snakeCase(key); snake != key {
		return []string{key, snake}
	}

	return []string{key}
}

// IsArray reports whether key holds an array collection. Unknown keys
// default to array.
func (r *Registry) IsArray(key string) bool {
	e, ok := r.entries[key]
	if !ok {
		return true
	}

	return e.Shape != "opaque"
}

// Identity returns the reconciliation identity function for key:
// the declared composite rule when one exists, the natural id field
// otherwise.
func (r *Registry) Identity(key string) record.IdentityFunc {
	if e, ok := r.entries[key]; ok && len(e.Identity) > 0 {
		return record.CompositeIdentity(e.Identity...)
	}

	return record.NaturalIdentity
}

// ConflictKey returns the column list secondary upserts are keyed on:
// the declared composite identity columns when the key has them, the
// natural id column otherwise.
func (r *Registry) ConflictKey(key string) string {
	if e, ok := r.entries[key]; ok && len(e.Identity) > 0 {
		return strings.Join(e.Identity, ",")
	}

	return record.IDField
}

// snakeCase converts a camelCase key to its snake_case table drift
// (labTests -> lab_tests).
func snakeCase(key string) string {
	var b strings.Builder

	for i, r := range key {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}

			b.WriteRune(unicode.ToLower(r))

			continue
		}

		b.WriteRune(r)
	}

	return b.String()
}
