package search

import (
	"context"

	"github.com/kailas-cloud/labsearch/internal/domain/search/hit"
	"github.com/kailas-cloud/labsearch/internal/domain/search/query"
)

// Repository defines the engine contract for single-index search.
type Repository interface {
	IndexExists(ctx context.Context, index string) (bool, error)
	Search(ctx context.Context, index string, q query.Compiled) ([]hit.Hit, int, error)
}
