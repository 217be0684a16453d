package db

import (
	"context"
	"time"
)

// Engine is the search-engine facade combining all sub-interfaces.
// Drivers live in sub-packages (opensearch, redis).
type Engine interface {
	Pinger
	IndexManager
	Searcher
	DocumentWriter
	// ExactSuffix returns the suffix naming the exact-value (sortable) twin of a text field.
	ExactSuffix() string
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks engine connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// IndexManager provides index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher runs one paginated, optionally sorted query against one index.
type Searcher interface {
	Search(ctx context.Context, q *Query) (*SearchResult, error)
}

// DocumentWriter stores documents into an index.
type DocumentWriter interface {
	PutDocument(ctx context.Context, index, id string, doc Document) error
}
