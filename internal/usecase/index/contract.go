package index

import (
	"context"

	"github.com/kailas-cloud/labsearch/internal/domain/search/hit"
)

// Repository provides index bootstrap and document writes.
type Repository interface {
	Exists(ctx context.Context, index string) (bool, error)
	Create(ctx context.Context, index string, textFields []string) (bool, error)
	Put(ctx context.Context, index, id string, fields map[string]string, attrs []hit.Attribute) error
}
