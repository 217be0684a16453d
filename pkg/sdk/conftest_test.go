package labsearch

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kailas-cloud/labsearch/internal/db"
	"github.com/kailas-cloud/labsearch/internal/domain/search/query"
)

// --- Mocks ---

// memEngine is an in-memory db.Engine with substring AND matching.
// Only fields ending in the exact suffix are sortable.
type memEngine struct {
	mu      sync.Mutex
	indexes map[string][]memDoc
	created []string
	pingErr error
	closed  bool

	searchFn func(ctx context.Context, q *db.Query) (*db.SearchResult, error)
}

type memDoc struct {
	id  string
	doc db.Document
}

func newMemEngine(indexes ...string) *memEngine {
	e := &memEngine{indexes: map[string][]memDoc{}}
	for _, name := range indexes {
		e.indexes[name] = nil
	}
	return e
}

func (e *memEngine) Ping(context.Context) error { return e.pingErr }

func (e *memEngine) WaitForReady(context.Context, time.Duration) error { return e.pingErr }

func (e *memEngine) ExactSuffix() string { return "_exact" }

func (e *memEngine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
}

func (e *memEngine) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.indexes[def.Name]; ok {
		return db.ErrIndexExists
	}
	e.indexes[def.Name] = nil
	e.created = append(e.created, def.Name)
	return nil
}

func (e *memEngine) IndexExists(_ context.Context, name string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.indexes[name]
	return ok, nil
}

func (e *memEngine) PutDocument(_ context.Context, index, id string, doc db.Document) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	docs, ok := e.indexes[index]
	if !ok {
		return fmt.Errorf("%w: %s", db.ErrIndexNotFound, index)
	}
	for i := range docs {
		if docs[i].id == id {
			docs[i].doc = doc
			return nil
		}
	}
	e.indexes[index] = append(docs, memDoc{id: id, doc: doc})
	return nil
}

func (e *memEngine) Search(ctx context.Context, q *db.Query) (*db.SearchResult, error) {
	if e.searchFn != nil {
		return e.searchFn(ctx, q)
	}

	e.mu.Lock()
	docs, ok := e.indexes[q.Index]
	matched := make([]memDoc, 0, len(docs))
	for _, d := range docs {
		if q.Query.MatchAll() || matches(d.doc, q.Query.Terms()) {
			matched = append(matched, d)
		}
	}
	e.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", db.ErrIndexNotFound, q.Index)
	}

	if s, sorted := q.Query.Sort(); sorted {
		field, exact := strings.CutSuffix(s.Field, "_exact")
		if !exact {
			return nil, fmt.Errorf("%w: %s", db.ErrSortUnsupported, s.Field)
		}
		sort.SliceStable(matched, func(i, j int) bool {
			a, b := matched[i].doc.Fields[field], matched[j].doc.Fields[field]
			if s.Order == query.Desc {
				return a > b
			}
			return a < b
		})
	}

	total := len(matched)
	from := min(q.Query.Offset(), total)
	to := min(from+q.Query.Size(), total)
	res := &db.SearchResult{Total: total}
	for _, d := range matched[from:to] {
		res.Entries = append(res.Entries, db.SearchEntry{
			Key:        d.id,
			Fields:     d.doc.Fields,
			Attributes: d.doc.Attributes,
		})
	}
	return res, nil
}

func matches(d db.Document, terms []string) bool {
	var sb strings.Builder
	for _, v := range d.Fields {
		sb.WriteString(v)
		sb.WriteByte(' ')
	}
	for _, a := range d.Attributes {
		sb.WriteString(a.Value)
		sb.WriteByte(' ')
	}
	text := sb.String()
	for _, t := range terms {
		if !strings.Contains(text, t) {
			return false
		}
	}
	return true
}

func (e *memEngine) seed(index string, names ...string) {
	for i, n := range names {
		_ = e.PutDocument(context.Background(), index, fmt.Sprintf("%s-%d", index, i+1),
			db.Document{Fields: map[string]string{"name": n}})
	}
}
