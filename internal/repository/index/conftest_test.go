package index

import (
	"context"
	"testing"

	"github.com/kailas-cloud/labsearch/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	suffix        string
	indexExistsFn func(ctx context.Context, name string) (bool, error)
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	putDocumentFn func(ctx context.Context, index, id string, doc db.Document) error
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return true, nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) PutDocument(ctx context.Context, index, id string, doc db.Document) error {
	if m.putDocumentFn != nil {
		return m.putDocumentFn(ctx, index, id, doc)
	}
	return nil
}

func (m *mockStore) ExactSuffix() string { return m.suffix }

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{suffix: "_exact"}
	return New(ms), ms
}
