package labsearch

import (
	"context"
	"fmt"
	"reflect"
	"time"
)

// TypedIndex is a schema-first handle on one index backed by a labsearch Client.
// The document shape is inferred from T's struct tags at construction time.
type TypedIndex[T any] struct {
	name   string
	client *Client
	meta   *schemaMeta
}

// NewIndex creates a typed index handle for the given index name.
// T must be a struct with labsearch tags. Schema is parsed once and cached.
func NewIndex[T any](client *Client, name string) (*TypedIndex[T], error) {
	meta, err := parseSchema[T]()
	if err != nil {
		return nil, fmt.Errorf("new index %q: %w", name, err)
	}
	return &TypedIndex[T]{name: name, client: client, meta: meta}, nil
}

// Name returns the index name.
func (idx *TypedIndex[T]) Name() string { return idx.name }

// Put indexes item and returns its id (generated when the id field is empty).
func (idx *TypedIndex[T]) Put(ctx context.Context, item T) (string, error) {
	id, doc := idx.meta.toDocument(reflect.ValueOf(item))
	return idx.client.Index(ctx, idx.name, id, doc)
}

// PutBatch indexes items in order and stops at the first failure.
// It returns the ids stored so far.
func (idx *TypedIndex[T]) PutBatch(ctx context.Context, items []T) ([]string, error) {
	ids := make([]string, 0, len(items))
	for i, item := range items {
		id, err := idx.Put(ctx, item)
		if err != nil {
			return ids, fmt.Errorf("item %d: %w", i, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Search returns a fluent search builder for text on this index.
func (idx *TypedIndex[T]) Search(text string) *SearchBuilder[T] {
	return &SearchBuilder[T]{idx: idx, query: text}
}

// Page is one page of typed search results.
type Page[T any] struct {
	Items   []T
	Total   int
	Page    int
	PerPage int
	HasNext bool
	HasPrev bool
}

// SearchBuilder is a fluent builder for single-index typed searches.
type SearchBuilder[T any] struct {
	idx     *TypedIndex[T]
	query   string
	page    int
	perPage int
	sortBy  string
	order   SortOrder
	timeout time.Duration
}

// Page selects a 1-based page and its size.
func (b *SearchBuilder[T]) Page(page, perPage int) *SearchBuilder[T] {
	b.page = page
	b.perPage = perPage
	return b
}

// Sort orders results by field. Unsortable fields fall back to engine order.
func (b *SearchBuilder[T]) Sort(field string, order SortOrder) *SearchBuilder[T] {
	b.sortBy = field
	b.order = order
	return b
}

// Timeout bounds the engine call.
func (b *SearchBuilder[T]) Timeout(d time.Duration) *SearchBuilder[T] {
	b.timeout = d
	return b
}

// Do executes the search. A failed index is returned as a *SearchError.
func (b *SearchBuilder[T]) Do(ctx context.Context) (Page[T], error) {
	res, err := b.idx.client.MultiSearch(ctx, SearchRequest{
		Indexes:         []string{b.idx.name},
		Query:           b.query,
		Page:            b.page,
		PerPage:         b.perPage,
		SortBy:          b.sortBy,
		SortOrder:       b.order,
		PerIndexTimeout: b.timeout,
	})
	if err != nil {
		return Page[T]{}, fmt.Errorf("search %s: %w", b.idx.name, err)
	}

	r, ok := res.Results[b.idx.name]
	if !ok {
		return Page[T]{}, fmt.Errorf("search %s: %w", b.idx.name, ErrNoValidIndexes)
	}
	if r.Error != nil {
		return Page[T]{}, r.Error
	}

	page := Page[T]{
		Items:   make([]T, len(r.Items)),
		Total:   r.Total,
		Page:    r.Page,
		PerPage: r.PerPage,
		HasNext: r.HasNext,
		HasPrev: r.HasPrev,
	}
	for i, h := range r.Items {
		page.Items[i] = b.idx.decode(h)
	}
	return page, nil
}

func (idx *TypedIndex[T]) decode(h Hit) T {
	var item T
	v := reflect.ValueOf(&item).Elem()
	if v.Kind() == reflect.Pointer {
		v.Set(reflect.New(idx.meta.typ))
		v = v.Elem()
	}
	idx.meta.fromHit(h, v)
	return item
}
