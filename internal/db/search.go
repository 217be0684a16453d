package db

import "github.com/kailas-cloud/labsearch/internal/domain/search/query"

// Query is the input for a single-index search.
type Query struct {
	Index string
	Query query.Compiled
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
// Fields holds scalar source fields as strings; Attributes holds the declared
// key/value attribute list when the document carries one.
type SearchEntry struct {
	Key        string
	Fields     map[string]string
	Attributes []Attribute
}

// Attribute is one free-form key/value pair stored with a document.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Document is the input for PutDocument.
type Document struct {
	Fields     map[string]string
	Attributes []Attribute
}
