package index

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/kailas-cloud/labsearch/internal/domain"
	"github.com/kailas-cloud/labsearch/internal/domain/entity"
	"github.com/kailas-cloud/labsearch/internal/domain/search/hit"
)

// --- Mocks ---

type put struct {
	index, id string
	fields    map[string]string
	attrs     []hit.Attribute
}

type mockRepo struct {
	existing map[string]bool
	created  []string
	puts     []put
	existsFn func(ctx context.Context, index string) (bool, error)
	createFn func(ctx context.Context, index string, textFields []string) (bool, error)
	putErr   error
}

func (m *mockRepo) Exists(ctx context.Context, index string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, index)
	}
	return m.existing[index], nil
}

func (m *mockRepo) Create(ctx context.Context, index string, textFields []string) (bool, error) {
	if m.createFn != nil {
		return m.createFn(ctx, index, textFields)
	}
	m.created = append(m.created, index)
	return true, nil
}

func (m *mockRepo) Put(_ context.Context, index, id string, fields map[string]string, attrs []hit.Attribute) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.puts = append(m.puts, put{index, id, fields, attrs})
	return nil
}

func newTestService(repo *mockRepo, names ...string) *Service {
	return New(repo, entity.Indexes(names...), entity.TextFieldNames(), nil)
}

// --- Tests ---

func TestEnsureIndexes_CreatesMissing(t *testing.T) {
	repo := &mockRepo{existing: map[string]bool{"samples": true}}
	svc := newTestService(repo, "projects", "samples", "illumina_runs")

	created, err := svc.EnsureIndexes(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"projects", "illumina_runs"}
	if !reflect.DeepEqual(created, want) || !reflect.DeepEqual(repo.created, want) {
		t.Errorf("created = %v, repo = %v", created, repo.created)
	}
}

func TestEnsureIndexes_RaceLostIsNotCreated(t *testing.T) {
	repo := &mockRepo{
		createFn: func(context.Context, string, []string) (bool, error) { return false, nil },
	}
	svc := newTestService(repo, "projects")

	created, err := svc.EnsureIndexes(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(created) != 0 {
		t.Errorf("created = %v", created)
	}
}

func TestEnsureIndexes_StopsOnError(t *testing.T) {
	repo := &mockRepo{
		existsFn: func(context.Context, string) (bool, error) {
			return false, fmt.Errorf("%w: refused", domain.ErrEngineUnreachable)
		},
	}
	svc := newTestService(repo, "projects", "samples")

	_, err := svc.EnsureIndexes(context.Background())
	if !errors.Is(err, domain.ErrEngineUnreachable) {
		t.Fatalf("expected ErrEngineUnreachable, got %v", err)
	}
	if len(repo.created) != 0 {
		t.Errorf("created after failure: %v", repo.created)
	}
}

func TestEnsureIndexes_PassesTextFields(t *testing.T) {
	var got []string
	repo := &mockRepo{
		createFn: func(_ context.Context, _ string, tf []string) (bool, error) {
			got = tf
			return true, nil
		},
	}
	svc := newTestService(repo, "projects")
	if _, err := svc.EnsureIndexes(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, entity.TextFieldNames()) {
		t.Errorf("text fields = %v", got)
	}
}

func TestIndex_FiltersUndeclaredFields(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, "projects")

	id, err := svc.Index(context.Background(), "projects", "p-1", Document{
		Fields: map[string]string{
			"name":       "AI Study",
			"project_id": "P-1",
			"budget":     "secret",
			"attributes": "ignored",
		},
		Attributes: []hit.Attribute{{Key: "pi", Value: "Smith"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "p-1" {
		t.Errorf("id = %q", id)
	}
	if len(repo.puts) != 1 {
		t.Fatalf("puts = %d", len(repo.puts))
	}
	want := map[string]string{"name": "AI Study", "project_id": "P-1"}
	if !reflect.DeepEqual(repo.puts[0].fields, want) {
		t.Errorf("fields = %v", repo.puts[0].fields)
	}
	if len(repo.puts[0].attrs) != 1 {
		t.Errorf("attrs = %v", repo.puts[0].attrs)
	}
}

func TestIndex_GeneratesID(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, "samples")

	id, err := svc.Index(context.Background(), "samples", "", Document{
		Fields: map[string]string{"sample_id": "S-9"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("id %q is not a UUID: %v", id, err)
	}
	if repo.puts[0].id != id {
		t.Errorf("stored id %q, returned %q", repo.puts[0].id, id)
	}
}

func TestIndex_UnknownIndex(t *testing.T) {
	svc := newTestService(&mockRepo{}, "projects")

	_, err := svc.Index(context.Background(), "files", "f-1", Document{
		Fields: map[string]string{"filename": "a"},
	})
	if !errors.Is(err, domain.ErrUnknownIndex) {
		t.Errorf("expected ErrUnknownIndex, got %v", err)
	}
}

func TestIndex_NothingIndexable(t *testing.T) {
	svc := newTestService(&mockRepo{}, "projects")

	_, err := svc.Index(context.Background(), "projects", "", Document{
		Fields: map[string]string{"budget": "1"},
	})
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestIndex_EmptyAttributeKey(t *testing.T) {
	svc := newTestService(&mockRepo{}, "projects")

	_, err := svc.Index(context.Background(), "projects", "", Document{
		Fields:     map[string]string{"name": "x"},
		Attributes: []hit.Attribute{{Value: "orphan"}},
	})
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestIndex_UncataloguedIndexUsesTextFields(t *testing.T) {
	repo := &mockRepo{}
	svc := New(repo, entity.Indexes("sequencers"), []string{"name", "serial"}, nil)

	_, err := svc.Index(context.Background(), "sequencers", "s-1", Document{
		Fields: map[string]string{"name": "NovaSeq", "serial": "A1", "room": "B2"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]string{"name": "NovaSeq", "serial": "A1"}
	if !reflect.DeepEqual(repo.puts[0].fields, want) {
		t.Errorf("fields = %v", repo.puts[0].fields)
	}
}

func TestIndex_RepoError(t *testing.T) {
	repo := &mockRepo{putErr: fmt.Errorf("%w: down", domain.ErrEngineUnreachable)}
	svc := newTestService(repo, "projects")

	_, err := svc.Index(context.Background(), "projects", "p", Document{Fields: map[string]string{"name": "x"}})
	if !errors.Is(err, domain.ErrEngineUnreachable) {
		t.Errorf("expected ErrEngineUnreachable, got %v", err)
	}
}
