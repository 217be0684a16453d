package opensearch

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/opensearch-project/opensearch-go/v4/opensearchapi"

	"github.com/kailas-cloud/labsearch/internal/db"
)

// CreateIndex creates an empty index; dynamic mapping derives text and keyword
// sub-fields from the first documents, so def.Fields is not sent.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if def == nil || def.Name == "" {
		return errors.New("index name is required")
	}
	resp, err := s.client.Indices.Create(ctx, opensearchapi.IndicesCreateReq{
		Index: def.Name,
		Body:  strings.NewReader("{}"),
	})
	if err != nil {
		var status int
		if resp != nil {
			status = statusOf(resp.Inspect().Response)
		}
		return wrapErr(ctx, db.OpCreateIndex, status, err)
	}
	return nil
}

// IndexExists probes the index with HEAD /{index}.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	resp, err := s.client.Indices.Exists(ctx, opensearchapi.IndicesExistsReq{Indices: []string{name}})
	if statusOf(resp) == http.StatusNotFound {
		return false, nil
	}
	if err != nil {
		return false, wrapErr(ctx, db.OpIndexInfo, statusOf(resp), err)
	}
	return true, nil
}
