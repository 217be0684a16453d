package labsearch

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/labsearch/internal/domain/search/hit"
	"github.com/kailas-cloud/labsearch/internal/domain/search/result"
)

// SortOrder is a sort direction.
type SortOrder string

// Sort directions.
const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// SearchRequest is one multi-index search.
// Zero Page and PerPage default to 1 and 20. Sorting applies only when both
// SortBy and SortOrder are set. Zero timeouts use the client defaults.
type SearchRequest struct {
	Indexes   []string
	Query     string
	Page      int
	PerPage   int
	SortBy    string
	SortOrder SortOrder

	PerIndexTimeout time.Duration
	OverallTimeout  time.Duration
}

// Attribute is one key/value pair of a hit.
type Attribute struct {
	Key   string
	Value string
}

// Hit is one matching document.
type Hit struct {
	ID         string
	Name       string
	Index      string
	Attributes []Attribute
}

// ErrorKind classifies a per-index failure.
type ErrorKind string

// Failure kinds.
const (
	ErrorIndexNotFound ErrorKind = ErrorKind(result.KindIndexNotFound)
	ErrorConnection    ErrorKind = ErrorKind(result.KindConnection)
	ErrorQuery         ErrorKind = ErrorKind(result.KindQuery)
	ErrorPermission    ErrorKind = ErrorKind(result.KindPermission)
	ErrorTimeout       ErrorKind = ErrorKind(result.KindTimeout)
	ErrorUnknown       ErrorKind = ErrorKind(result.KindUnknown)
)

// SearchError describes why one index failed.
type SearchError struct {
	Index     string
	Kind      ErrorKind
	Message   string
	Timestamp time.Time
}

// IndexResult is the outcome for one index. Error is nil on success; Items is
// empty on failure.
type IndexResult struct {
	Index   string
	Success bool
	Items   []Hit
	Total   int
	Page    int
	PerPage int
	HasNext bool
	HasPrev bool
	Error   *SearchError
}

// MultiResult aggregates a multi-index search.
type MultiResult struct {
	Results            map[string]IndexResult
	Query              string
	Page               int
	PerPage            int
	TotalAcrossIndexes int
	IndexesSearched    []string // request order, deduplicated
	PartialFailure     bool
}

// Failed returns the failed index results in IndexesSearched order.
func (m MultiResult) Failed() []IndexResult {
	var out []IndexResult
	for _, name := range m.IndexesSearched {
		if r, ok := m.Results[name]; ok && !r.Success {
			out = append(out, r)
		}
	}
	return out
}

// Document is a record to be indexed.
// Fields holds searchable scalar fields; name is the display name.
type Document struct {
	Fields     map[string]string
	Attributes []Attribute
}

// --- converters ---

func multiFromDomain(m result.Multi) MultiResult {
	out := MultiResult{
		Results:            make(map[string]IndexResult, len(m.IndexesSearched())),
		Query:              m.Query(),
		Page:               m.Page(),
		PerPage:            m.PerPage(),
		TotalAcrossIndexes: m.TotalAcrossIndexes(),
		IndexesSearched:    m.IndexesSearched(),
		PartialFailure:     m.PartialFailure(),
	}
	for _, r := range m.Ordered() {
		out.Results[r.IndexName()] = indexFromDomain(r)
	}
	return out
}

func indexFromDomain(r result.Index) IndexResult {
	out := IndexResult{
		Index:   r.IndexName(),
		Success: r.Success(),
		Total:   r.Total(),
		Page:    r.Page(),
		PerPage: r.PerPage(),
		HasNext: r.HasNext(),
		HasPrev: r.HasPrev(),
	}
	items := r.Items()
	out.Items = make([]Hit, len(items))
	for i, h := range items {
		out.Items[i] = hitFromDomain(h)
	}
	if e, failed := r.Err(); failed {
		out.Error = &SearchError{
			Index:     e.IndexName(),
			Kind:      ErrorKind(e.Kind()),
			Message:   e.Message(),
			Timestamp: e.Timestamp(),
		}
	}
	return out
}

func hitFromDomain(h hit.Hit) Hit {
	out := Hit{ID: h.ID, Name: h.Name, Index: h.Index}
	if len(h.Attributes) > 0 {
		out.Attributes = make([]Attribute, len(h.Attributes))
		for i, a := range h.Attributes {
			out.Attributes[i] = Attribute{Key: a.Key, Value: a.Value}
		}
	}
	return out
}

func attributesToDomain(in []Attribute) []hit.Attribute {
	if len(in) == 0 {
		return nil
	}
	out := make([]hit.Attribute, len(in))
	for i, a := range in {
		out[i] = hit.Attribute{Key: a.Key, Value: a.Value}
	}
	return out
}

// Error implements error.
func (e *SearchError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Index, e.Kind, e.Message)
}

// Unwrap maps the failure kind onto the matching sentinel, when there is one.
func (e *SearchError) Unwrap() error {
	switch e.Kind {
	case ErrorIndexNotFound:
		return ErrIndexNotFound
	case ErrorConnection:
		return ErrEngineUnreachable
	case ErrorPermission:
		return ErrPermissionDenied
	default:
		return nil
	}
}
