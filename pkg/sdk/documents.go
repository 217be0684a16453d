package labsearch

import (
	"context"
	"fmt"

	indexuc "github.com/kailas-cloud/labsearch/internal/usecase/index"
)

// Index stores doc in index under id and returns the id used.
// An empty id gets a generated UUID. Fields the index's entity does not declare
// searchable are dropped.
func (c *Client) Index(ctx context.Context, index, id string, doc Document) (_ string, err error) {
	done := c.obs.begin("index")
	defer func() { done(err) }()

	id, err = c.indexSvc.Index(ctx, index, id, indexuc.Document{
		Fields:     doc.Fields,
		Attributes: attributesToDomain(doc.Attributes),
	})
	if err != nil {
		return "", fmt.Errorf("index %s: %w", index, err)
	}
	return id, nil
}

// EnsureIndexes creates registered indexes the engine does not have yet and
// returns their names.
func (c *Client) EnsureIndexes(ctx context.Context) (created []string, err error) {
	done := c.obs.begin("ensure_indexes")
	defer func() { done(err) }()

	created, err = c.indexSvc.EnsureIndexes(ctx)
	if err != nil {
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}
	return created, nil
}
