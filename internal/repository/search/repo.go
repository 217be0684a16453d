package search

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/kailas-cloud/labsearch/internal/db"
	"github.com/kailas-cloud/labsearch/internal/domain"
	"github.com/kailas-cloud/labsearch/internal/domain/entity"
	"github.com/kailas-cloud/labsearch/internal/domain/search/hit"
	"github.com/kailas-cloud/labsearch/internal/domain/search/query"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	IndexExists(ctx context.Context, name string) (bool, error)
	Search(ctx context.Context, q *db.Query) (*db.SearchResult, error)
}

// Repo implements usecase/search.Repository.
type Repo struct {
	store store
}

// New creates a search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// IndexExists reports whether the engine has index.
func (r *Repo) IndexExists(ctx context.Context, index string) (bool, error) {
	ok, err := r.store.IndexExists(ctx, index)
	if err != nil {
		return false, translate(err)
	}
	return ok, nil
}

// Search runs q against index and returns the page of hits and the total match count.
func (r *Repo) Search(ctx context.Context, index string, q query.Compiled) ([]hit.Hit, int, error) {
	sr, err := r.store.Search(ctx, &db.Query{Index: index, Query: q})
	if err != nil {
		return nil, 0, translate(err)
	}
	if sr == nil {
		return []hit.Hit{}, 0, nil
	}

	hits := make([]hit.Hit, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		hits = append(hits, toHit(index, e))
	}
	return hits, sr.Total, nil
}

// translate maps db sentinels onto domain sentinels, keeping the original chain.
func translate(err error) error {
	var sentinel error
	switch {
	case errors.Is(err, db.ErrIndexNotFound):
		sentinel = domain.ErrIndexNotFound
	case errors.Is(err, db.ErrSortUnsupported):
		sentinel = domain.ErrSortUnsupported
	case errors.Is(err, db.ErrForbidden):
		sentinel = domain.ErrPermissionDenied
	case errors.Is(err, db.ErrBadQuery):
		sentinel = domain.ErrMalformedQuery
	case errors.Is(err, db.ErrUnavailable):
		sentinel = domain.ErrEngineUnreachable
	default:
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}

// toHit projects an engine row onto a hit: declared attributes first, then the
// remaining scalar fields in key order. The name field becomes Hit.Name.
func toHit(index string, e db.SearchEntry) hit.Hit {
	h := hit.Hit{
		ID:         e.Key,
		Name:       e.Fields[entity.NameField],
		Index:      index,
		Attributes: make([]hit.Attribute, 0, len(e.Attributes)+len(e.Fields)),
	}
	for _, a := range e.Attributes {
		h.Attributes = append(h.Attributes, hit.Attribute{Key: a.Key, Value: a.Value})
	}

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		if k == entity.NameField {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.Attributes = append(h.Attributes, hit.Attribute{Key: k, Value: e.Fields[k]})
	}
	return h
}
