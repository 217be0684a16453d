package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/kailas-cloud/labsearch/internal/db"
)

// attributesField is the hash field holding the JSON-encoded attribute list.
const attributesField = "attributes"

// PutDocument stores doc as a hash. Every field gets a sortable exact twin; attributes
// are stored as one JSON string so they stay searchable as text.
func (s *Store) PutDocument(ctx context.Context, index, id string, doc db.Document) error {
	if id == "" {
		return errors.New("document id is required")
	}
	if len(doc.Fields) == 0 && len(doc.Attributes) == 0 {
		return errors.New("document has no fields")
	}

	names := make([]string, 0, len(doc.Fields))
	for k := range doc.Fields {
		names = append(names, k)
	}
	sort.Strings(names)

	cmd := s.b().Hset().Key(s.docPrefix(index) + id).FieldValue()
	for _, k := range names {
		v := doc.Fields[k]
		cmd = cmd.FieldValue(k, v).FieldValue(k+ExactSuffix, v)
	}
	if len(doc.Attributes) > 0 {
		raw, err := json.Marshal(doc.Attributes)
		if err != nil {
			return fmt.Errorf("encode attributes: %w", err)
		}
		cmd = cmd.FieldValue(attributesField, string(raw))
	}

	if err := s.do(ctx, cmd.Build()).Error(); err != nil {
		return wrapErr(db.OpPut, err)
	}
	return nil
}
