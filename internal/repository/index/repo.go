package index

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/labsearch/internal/db"
	"github.com/kailas-cloud/labsearch/internal/domain"
	"github.com/kailas-cloud/labsearch/internal/domain/entity"
	"github.com/kailas-cloud/labsearch/internal/domain/search/hit"
)

// store is the consumer interface for index bootstrap and document writes (ISP).
type store interface {
	IndexExists(ctx context.Context, name string) (bool, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	PutDocument(ctx context.Context, index, id string, doc db.Document) error
	ExactSuffix() string
}

// Repo implements usecase/index.Repository.
type Repo struct {
	store store
}

// New creates an index repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Exists reports whether the engine has index.
func (r *Repo) Exists(ctx context.Context, index string) (bool, error) {
	ok, err := r.store.IndexExists(ctx, index)
	if err != nil {
		return false, translate(err)
	}
	return ok, nil
}

// Create creates index with a text field and an exact twin per text field.
// It reports false when the index already existed.
func (r *Repo) Create(ctx context.Context, index string, textFields []string) (bool, error) {
	def, err := buildIndex(index, textFields, r.store.ExactSuffix())
	if err != nil {
		return false, fmt.Errorf("build index: %w", err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return false, nil
		}
		return false, translate(err)
	}
	return true, nil
}

// Put stores one document under id.
func (r *Repo) Put(ctx context.Context, index, id string, fields map[string]string, attrs []hit.Attribute) error {
	doc := db.Document{Fields: fields}
	for _, a := range attrs {
		doc.Attributes = append(doc.Attributes, db.Attribute{Key: a.Key, Value: a.Value})
	}
	if err := r.store.PutDocument(ctx, index, id, doc); err != nil {
		return translate(err)
	}
	return nil
}

func buildIndex(index string, textFields []string, suffix string) (*db.IndexDefinition, error) {
	b := db.NewIndex(index)
	seen := make(map[string]bool, len(textFields))
	for _, f := range textFields {
		if f == entity.AttributesField || seen[f] {
			continue
		}
		seen[f] = true
		if suffix == "" {
			b.Text(f)
			continue
		}
		b.TextWithExact(f, suffix)
	}
	return b.Text(entity.AttributesField).Build()
}

func translate(err error) error {
	var sentinel error
	switch {
	case errors.Is(err, db.ErrIndexNotFound):
		sentinel = domain.ErrIndexNotFound
	case errors.Is(err, db.ErrForbidden):
		sentinel = domain.ErrPermissionDenied
	case errors.Is(err, db.ErrUnavailable):
		sentinel = domain.ErrEngineUnreachable
	default:
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}
