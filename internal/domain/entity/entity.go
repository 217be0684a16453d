// Package entity declares the searchable shape of the lab entities that feed the search indexes.
package entity

import (
	"github.com/kailas-cloud/labsearch/internal/domain/search/registry"
)

// NameField is the display-name field every index may carry.
const NameField = "name"

// AttributesField is the field carrying free-form key/value attributes.
const AttributesField = "attributes"

// Entity describes one indexed entity type.
type Entity struct {
	// Index is the engine index the entity is written to.
	Index string
	// Searchable lists the fields copied into the index document.
	Searchable []string
	// Default marks indexes searched by the default configuration.
	Default bool
}

var catalog = []Entity{
	{Index: "projects", Searchable: []string{"project_id", "name"}, Default: true},
	{Index: "samples", Searchable: []string{"sample_id", "project_id"}, Default: true},
	{Index: "illumina_runs", Searchable: []string{"barcode", "experiment_name"}, Default: true},
	{Index: "files", Searchable: []string{"filename", "description", "file_id", "destination_uri"}},
	{Index: "users", Searchable: []string{"email", "username", "full_name"}},
	{Index: "qcmetrics", Searchable: []string{"project_id"}},
}

// All returns every known entity.
func All() []Entity {
	out := make([]Entity, len(catalog))
	for i, e := range catalog {
		e.Searchable = append([]string(nil), e.Searchable...)
		out[i] = e
	}
	return out
}

// Lookup returns the entity written to index.
func Lookup(index string) (Entity, bool) {
	for _, e := range catalog {
		if e.Index == index {
			e.Searchable = append([]string(nil), e.Searchable...)
			return e, true
		}
	}
	return Entity{}, false
}

// DefaultIndexes returns the index names searched when no configuration overrides them.
func DefaultIndexes() []string {
	var out []string
	for _, e := range catalog {
		if e.Default {
			out = append(out, e.Index)
		}
	}
	return out
}

// Indexes builds the index registry from names, or from DefaultIndexes when names is empty.
func Indexes(names ...string) registry.Indexes {
	if len(names) == 0 {
		names = DefaultIndexes()
	}
	return registry.NewIndexes(names...)
}

// TextFieldNames returns the union of all searchable fields plus NameField, deduplicated.
func TextFieldNames() []string {
	seen := map[string]struct{}{NameField: {}}
	out := []string{NameField}
	for _, e := range catalog {
		for _, f := range e.Searchable {
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			out = append(out, f)
		}
	}
	return out
}

// TextFields builds the text-field registry. extra fields are added to the catalog's own.
func TextFields(suffix string, extra ...string) registry.TextFields {
	return registry.NewTextFields(suffix, append(TextFieldNames(), extra...)...)
}

// Allowed reports whether field may be stored in index documents of e.
func (e Entity) Allowed(field string) bool {
	if field == NameField || field == AttributesField {
		return true
	}
	for _, f := range e.Searchable {
		if f == field {
			return true
		}
	}
	return false
}
