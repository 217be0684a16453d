package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/opensearch-project/opensearch-go/v4/opensearchapi"

	"github.com/kailas-cloud/labsearch/internal/db"
)

// PutDocument indexes doc under id and refreshes so the document is searchable on return.
func (s *Store) PutDocument(ctx context.Context, index, id string, doc db.Document) error {
	if id == "" {
		return errors.New("document id is required")
	}

	source := make(map[string]any, len(doc.Fields)+1)
	for k, v := range doc.Fields {
		source[k] = v
	}
	if len(doc.Attributes) > 0 {
		source[attributesField] = doc.Attributes
	}
	if len(source) == 0 {
		return errors.New("document has no fields")
	}

	raw, err := json.Marshal(source)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	resp, err := s.client.Index(ctx, opensearchapi.IndexReq{
		Index:      index,
		DocumentID: id,
		Body:       bytes.NewReader(raw),
		Params:     opensearchapi.IndexParams{Refresh: "true"},
	})
	if err != nil {
		var status int
		if resp != nil {
			status = statusOf(resp.Inspect().Response)
		}
		return wrapErr(ctx, db.OpPut, status, err)
	}
	return nil
}
