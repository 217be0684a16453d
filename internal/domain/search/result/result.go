// Package result holds per-index and aggregated multi-index search outcomes.
// Values are immutable after construction; failures are data, never panics or errors.
package result

import (
	"time"

	"github.com/kailas-cloud/labsearch/internal/domain/search/hit"
)

// Kind classifies why a per-index search failed.
type Kind string

// Failure kinds.
const (
	KindIndexNotFound Kind = "INDEX_NOT_FOUND"
	KindConnection    Kind = "CONNECTION_ERROR"
	KindQuery         Kind = "QUERY_ERROR"
	KindPermission    Kind = "PERMISSION_ERROR"
	KindTimeout       Kind = "TIMEOUT_ERROR"
	KindUnknown       Kind = "UNKNOWN_ERROR"
)

// Error describes a failed per-index search.
type Error struct {
	index     string
	kind      Kind
	message   string
	timestamp time.Time
}

// NewError creates a search error payload.
func NewError(index string, kind Kind, message string, at time.Time) Error {
	return Error{index: index, kind: kind, message: message, timestamp: at}
}

// IndexName returns the index the failure belongs to.
func (e Error) IndexName() string { return e.index }

// Kind returns the failure class.
func (e Error) Kind() Kind { return e.kind }

// Message returns the human-readable failure description.
func (e Error) Message() string { return e.message }

// Timestamp returns when the failure was recorded.
func (e Error) Timestamp() time.Time { return e.timestamp }

func (e Error) Error() string {
	return e.index + ": " + string(e.kind) + ": " + e.message
}

// Index is the outcome of searching a single index.
// Invariant: Success() == (Err() absent), and Items() is empty on failure.
type Index struct {
	index   string
	items   []hit.Hit
	total   int
	page    int
	perPage int
	hasNext bool
	hasPrev bool
	err     *Error
}

// NewSuccess creates a successful result and derives the pagination flags.
func NewSuccess(index string, items []hit.Hit, total, page, perPage int) Index {
	if items == nil {
		items = []hit.Hit{}
	}
	return Index{
		index:   index,
		items:   items,
		total:   total,
		page:    page,
		perPage: perPage,
		hasNext: page*perPage < total,
		hasPrev: page > 1,
	}
}

// NewFailure creates a failed result carrying e.
func NewFailure(index string, page, perPage int, e Error) Index {
	return Index{
		index:   index,
		items:   []hit.Hit{},
		page:    page,
		perPage: perPage,
		err:     &e,
	}
}

// IndexName returns the searched index.
func (r Index) IndexName() string { return r.index }

// Items returns a copy of the hits on this page.
func (r Index) Items() []hit.Hit {
	out := make([]hit.Hit, len(r.items))
	copy(out, r.items)
	return out
}

// Total returns the number of matching documents across all pages.
func (r Index) Total() int { return r.total }

// Page returns the requested page.
func (r Index) Page() int { return r.page }

// PerPage returns the requested page size.
func (r Index) PerPage() int { return r.perPage }

// HasNext reports whether page*per_page < total.
func (r Index) HasNext() bool { return r.hasNext }

// HasPrev reports whether page > 1.
func (r Index) HasPrev() bool { return r.hasPrev }

// Success reports whether the search succeeded.
func (r Index) Success() bool { return r.err == nil }

// Err returns the failure payload, if any.
func (r Index) Err() (Error, bool) {
	if r.err == nil {
		return Error{}, false
	}
	return *r.err, true
}

// Multi is the aggregated outcome of a multi-index search.
type Multi struct {
	results map[string]Index
	order   []string
	query   string
	page    int
	perPage int
	total   int
	partial bool
}

// NewMulti aggregates per-index results, given in dispatch order.
// TotalAcrossIndexes sums successful totals only; PartialFailure is true when any
// result failed or nothing was dispatched.
func NewMulti(queryText string, page, perPage int, dispatched []Index) Multi {
	m := Multi{
		results: make(map[string]Index, len(dispatched)),
		order:   make([]string, 0, len(dispatched)),
		query:   queryText,
		page:    page,
		perPage: perPage,
		partial: len(dispatched) == 0,
	}
	for _, r := range dispatched {
		if _, dup := m.results[r.index]; dup {
			continue
		}
		m.results[r.index] = r
		m.order = append(m.order, r.index)
		if r.Success() {
			m.total += r.total
		} else {
			m.partial = true
		}
	}
	return m
}

// Results returns a copy of the index → result map.
func (m Multi) Results() map[string]Index {
	out := make(map[string]Index, len(m.results))
	for k, v := range m.results {
		out[k] = v
	}
	return out
}

// Result returns the result for one index.
func (m Multi) Result(index string) (Index, bool) {
	r, ok := m.results[index]
	return r, ok
}

// Ordered returns results in IndexesSearched order.
func (m Multi) Ordered() []Index {
	out := make([]Index, len(m.order))
	for i, name := range m.order {
		out[i] = m.results[name]
	}
	return out
}

// Query returns the free-text query.
func (m Multi) Query() string { return m.query }

// Page returns the requested page.
func (m Multi) Page() int { return m.page }

// PerPage returns the requested page size.
func (m Multi) PerPage() int { return m.perPage }

// TotalAcrossIndexes returns the sum of totals over successful results.
func (m Multi) TotalAcrossIndexes() int { return m.total }

// IndexesSearched returns the dispatched index names in request order.
func (m Multi) IndexesSearched() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// PartialFailure reports whether any index failed or none was dispatched.
func (m Multi) PartialFailure() bool { return m.partial }
