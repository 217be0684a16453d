package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/opensearch-project/opensearch-go/v4/opensearchapi"

	"github.com/kailas-cloud/labsearch/internal/db"
	"github.com/kailas-cloud/labsearch/internal/domain/search/query"
)

// attributesField holds the declared key/value attribute list in _source.
const attributesField = "attributes"

// Search runs a paginated query_string search against one index.
func (s *Store) Search(ctx context.Context, q *db.Query) (*db.SearchResult, error) {
	if q.Index == "" {
		return nil, fmt.Errorf("index name is required")
	}

	raw, err := json.Marshal(buildBody(q.Query))
	if err != nil {
		return nil, fmt.Errorf("encode search body: %w", err)
	}

	resp, err := s.client.Search(ctx, &opensearchapi.SearchReq{
		Indices: []string{q.Index},
		Body:    bytes.NewReader(raw),
	})
	if err != nil {
		var status int
		if resp != nil {
			status = statusOf(resp.Inspect().Response)
		}
		return nil, wrapErr(ctx, db.OpSearch, status, err)
	}

	return toResult(resp), nil
}

// buildBody renders the request body: query_string over all fields with every term
// wrapped in wildcards, or match_all for "*".
func buildBody(c query.Compiled) map[string]any {
	body := map[string]any{
		"from":             c.Offset(),
		"size":             c.Size(),
		"track_total_hits": true,
	}

	if c.MatchAll() {
		body["query"] = map[string]any{"match_all": map[string]any{}}
	} else {
		body["query"] = map[string]any{
			"query_string": map[string]any{
				"query":   c.Expression(),
				"fields":  []string{"*"},
				"lenient": true,
			},
		}
	}

	if srt, ok := c.Sort(); ok {
		body["sort"] = []map[string]any{
			{srt.Field: map[string]any{"order": string(srt.Order)}},
		}
	}
	return body
}

func toResult(resp *opensearchapi.SearchResp) *db.SearchResult {
	entries := make([]db.SearchEntry, 0, len(resp.Hits.Hits))
	for _, h := range resp.Hits.Hits {
		var source map[string]json.RawMessage
		if len(h.Source) > 0 {
			// A non-object _source yields an entry without fields.
			_ = json.Unmarshal(h.Source, &source)
		}
		entries = append(entries, toEntry(h.ID, source))
	}
	return &db.SearchResult{Total: resp.Hits.Total.Value, Entries: entries}
}

func toEntry(id string, source map[string]json.RawMessage) db.SearchEntry {
	entry := db.SearchEntry{Key: id, Fields: make(map[string]string, len(source))}
	for k, v := range source {
		if k == attributesField {
			var attrs []db.Attribute
			if err := json.Unmarshal(v, &attrs); err == nil {
				entry.Attributes = attrs
				continue
			}
		}
		if s, ok := flatten(v); ok {
			entry.Fields[k] = s
		}
	}
	return entry
}

// flatten renders a JSON value as a display string; null is dropped.
func flatten(v json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(v)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", false
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s, true
		}
	}
	return strings.TrimSpace(string(trimmed)), true
}
