package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/kailas-cloud/labsearch/internal/domain"
	"github.com/kailas-cloud/labsearch/internal/domain/search/hit"
	"github.com/kailas-cloud/labsearch/internal/domain/search/query"
	"github.com/kailas-cloud/labsearch/internal/domain/search/registry"
)

// --- Mocks ---

// mockRepo records every Search call; behavior is scripted through the Fn fields.
type mockRepo struct {
	mu            sync.Mutex
	calls         []query.Compiled
	indexExistsFn func(ctx context.Context, index string) (bool, error)
	searchFn      func(ctx context.Context, index string, q query.Compiled) ([]hit.Hit, int, error)
}

func (m *mockRepo) IndexExists(ctx context.Context, index string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, index)
	}
	return true, nil
}

func (m *mockRepo) Search(ctx context.Context, index string, q query.Compiled) ([]hit.Hit, int, error) {
	m.mu.Lock()
	m.calls = append(m.calls, q)
	m.mu.Unlock()
	if m.searchFn != nil {
		return m.searchFn(ctx, index, q)
	}
	return nil, 0, nil
}

// sortFields returns the sort field of every recorded call ("" for unsorted).
func (m *mockRepo) sortFields() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	for i, c := range m.calls {
		if s, ok := c.Sort(); ok {
			out[i] = s.Field
		}
	}
	return out
}

func sortRejected(field string) error {
	return fmt.Errorf("%w: no mapping found for [%s] in order to sort on", domain.ErrSortUnsupported, field)
}

// memoryEngine is an in-memory Repository with substring AND semantics.
type memoryEngine struct {
	docs map[string][]hit.Hit // index -> documents
}

func (e *memoryEngine) IndexExists(_ context.Context, index string) (bool, error) {
	_, ok := e.docs[index]
	return ok, nil
}

func (e *memoryEngine) Search(_ context.Context, index string, q query.Compiled) ([]hit.Hit, int, error) {
	var matched []hit.Hit
	for _, d := range e.docs[index] {
		if q.MatchAll() || matchesAll(d, q.Terms()) {
			matched = append(matched, d)
		}
	}
	if s, ok := q.Sort(); ok && s.Field == "name.keyword" {
		sort.SliceStable(matched, func(i, j int) bool {
			if s.Order == query.Desc {
				return matched[i].Name > matched[j].Name
			}
			return matched[i].Name < matched[j].Name
		})
	}

	total := len(matched)
	from := min(q.Offset(), total)
	to := min(from+q.Size(), total)
	return matched[from:to], total, nil
}

func matchesAll(d hit.Hit, terms []string) bool {
	var sb strings.Builder
	sb.WriteString(d.Name)
	for _, a := range d.Attributes {
		sb.WriteByte(' ')
		sb.WriteString(a.Value)
	}
	text := sb.String()
	for _, t := range terms {
		if !strings.Contains(text, t) {
			return false
		}
	}
	return true
}

func testTextFields() registry.TextFields {
	return registry.NewTextFields(".keyword", "name", "barcode")
}

func testIndexes() registry.Indexes {
	return registry.NewIndexes("projects", "samples", "illumina_runs")
}

func docs(index string, names ...string) []hit.Hit {
	out := make([]hit.Hit, len(names))
	for i, n := range names {
		out[i] = hit.Hit{ID: fmt.Sprintf("%s-%d", index, i+1), Name: n, Index: index}
	}
	return out
}

func newTestExecutor(t *testing.T) (*Executor, *mockRepo) {
	t.Helper()
	repo := &mockRepo{}
	return NewExecutor(repo, testTextFields(), nil), repo
}
