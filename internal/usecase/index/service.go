package index

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/labsearch/internal/domain"
	"github.com/kailas-cloud/labsearch/internal/domain/entity"
	"github.com/kailas-cloud/labsearch/internal/domain/search/hit"
	"github.com/kailas-cloud/labsearch/internal/domain/search/registry"
)

// Document is a record to be made searchable.
type Document struct {
	Fields     map[string]string
	Attributes []hit.Attribute
}

// Service creates missing indexes and writes documents into them.
type Service struct {
	repo       Repository
	indexes    registry.Indexes
	textFields []string
	logger     *zap.Logger
}

// New creates an index service. textFields is the schema every created index carries.
func New(repo Repository, indexes registry.Indexes, textFields []string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, indexes: indexes, textFields: textFields, logger: logger}
}

// EnsureIndexes creates every registered index the engine does not have yet and
// returns the names it created.
func (s *Service) EnsureIndexes(ctx context.Context) ([]string, error) {
	var created []string
	for _, name := range s.indexes.Names() {
		exists, err := s.repo.Exists(ctx, name)
		if err != nil {
			return created, fmt.Errorf("check index %q: %w", name, err)
		}
		if exists {
			continue
		}

		ok, err := s.repo.Create(ctx, name, s.textFields)
		if err != nil {
			return created, fmt.Errorf("create index %q: %w", name, err)
		}
		if ok {
			s.logger.Info("Index created", zap.String("index", name))
			created = append(created, name)
		}
	}
	return created, nil
}

// Index stores doc in index under id, generating an id when empty. Fields the
// entity does not declare are dropped. It returns the document id.
func (s *Service) Index(ctx context.Context, index, id string, doc Document) (string, error) {
	if !s.indexes.Contains(index) {
		return "", fmt.Errorf("index %q: %w", index, domain.ErrUnknownIndex)
	}

	fields := s.allowedFields(index, doc.Fields)
	if len(fields) == 0 && len(doc.Attributes) == 0 {
		return "", fmt.Errorf("%w: document has no indexable fields", domain.ErrInvalidRequest)
	}
	for _, a := range doc.Attributes {
		if a.Key == "" {
			return "", fmt.Errorf("%w: attribute key is required", domain.ErrInvalidRequest)
		}
	}

	if id == "" {
		id = uuid.NewString()
	}
	if err := s.repo.Put(ctx, index, id, fields, doc.Attributes); err != nil {
		return "", fmt.Errorf("index document: %w", err)
	}
	return id, nil
}

// allowedFields keeps the entity's declared fields. Indexes outside the entity
// catalog accept the name field and any registered text field.
func (s *Service) allowedFields(index string, in map[string]string) map[string]string {
	allowed := func(f string) bool {
		if f == entity.AttributesField {
			return false
		}
		if e, ok := entity.Lookup(index); ok {
			return e.Allowed(f)
		}
		if f == entity.NameField {
			return true
		}
		for _, t := range s.textFields {
			if t == f {
				return true
			}
		}
		return false
	}

	out := make(map[string]string, len(in))
	for k, v := range in {
		if !allowed(k) {
			s.logger.Debug("Dropping undeclared field", zap.String("index", index), zap.String("field", k))
			continue
		}
		out[k] = v
	}
	return out
}
