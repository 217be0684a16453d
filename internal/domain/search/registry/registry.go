// Package registry holds the static sets the orchestrator consults per request:
// which indexes may be searched and which fields are analyzed text.
package registry

// Indexes is the set of searchable index names. Built once at startup, read-only afterwards.
type Indexes struct {
	names []string
	set   map[string]struct{}
}

// NewIndexes creates an index registry. Empty and duplicate names are dropped.
func NewIndexes(names ...string) Indexes {
	r := Indexes{set: make(map[string]struct{}, len(names))}
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, ok := r.set[n]; ok {
			continue
		}
		r.set[n] = struct{}{}
		r.names = append(r.names, n)
	}
	return r
}

// Contains reports whether name is registered.
func (r Indexes) Contains(name string) bool {
	_, ok := r.set[name]
	return ok
}

// Names returns the registered names in registration order.
func (r Indexes) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of registered indexes.
func (r Indexes) Len() int { return len(r.names) }

// Filter keeps the requested names that are registered, in request order, without duplicates.
func (r Indexes) Filter(requested []string) []string {
	out := make([]string, 0, len(requested))
	seen := make(map[string]struct{}, len(requested))
	for _, n := range requested {
		if !r.Contains(n) {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// TextFields is the set of analyzed text fields that carry an exact-value twin
// (the field name plus the engine's suffix) usable for sorting.
type TextFields struct {
	suffix string
	set    map[string]struct{}
}

// NewTextFields creates a text-field registry whose exact twins use suffix.
func NewTextFields(suffix string, fields ...string) TextFields {
	t := TextFields{suffix: suffix, set: make(map[string]struct{}, len(fields))}
	for _, f := range fields {
		if f != "" {
			t.set[f] = struct{}{}
		}
	}
	return t
}

// Contains reports whether field is a text field.
func (t TextFields) Contains(field string) bool {
	_, ok := t.set[field]
	return ok
}

// Suffix returns the exact-twin suffix.
func (t TextFields) Suffix() string { return t.suffix }

// SortField returns the exact twin of field when field is a text field.
func (t TextFields) SortField(field string) (string, bool) {
	if !t.Contains(field) || t.suffix == "" {
		return "", false
	}
	return field + t.suffix, true
}

// WithSuffix returns a copy using a different exact-twin suffix.
func (t TextFields) WithSuffix(suffix string) TextFields {
	return TextFields{suffix: suffix, set: t.set}
}
