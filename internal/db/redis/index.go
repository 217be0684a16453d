package redis

import (
	"context"
	"errors"
	"strconv"

	"github.com/kailas-cloud/labsearch/internal/db"
)

// CreateIndex creates an FT index over the hashes of a logical index.
// Without explicit prefixes the index covers the store's document prefix for def.Name.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	args, err := s.buildCreateArgs(def)
	if err != nil {
		return err
	}

	cmd := s.b().Arbitrary("FT.CREATE").Args(args...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return wrapErr(db.OpCreateIndex, err)
	}
	return nil
}

// IndexExists probes index existence via FT.INFO; "unknown index name" means absent.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(s.ftName(name)).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		wrapped := wrapErr(db.OpIndexInfo, err)
		if errors.Is(wrapped, db.ErrIndexNotFound) {
			return false, nil
		}
		return false, wrapped
	}
	return true, nil
}

func (s *Store) buildCreateArgs(idx *db.IndexDefinition) ([]string, error) {
	if idx.Name == "" {
		return nil, errors.New("index name is required")
	}
	if len(idx.Fields) == 0 {
		return nil, errors.New("at least one field is required")
	}

	prefixes := idx.Prefixes
	if len(prefixes) == 0 {
		prefixes = []string{s.docPrefix(idx.Name)}
	}

	args := []string{s.ftName(idx.Name), "ON", "HASH", "PREFIX", strconv.Itoa(len(prefixes))}
	args = append(args, prefixes...)
	args = append(args, "SCHEMA")

	for i := range idx.Fields {
		fieldArgs, err := buildFieldArgs(&idx.Fields[i])
		if err != nil {
			return nil, err
		}
		args = append(args, fieldArgs...)
	}

	return args, nil
}

func buildFieldArgs(f *db.IndexField) ([]string, error) {
	if f.Name == "" {
		return nil, errors.New("field name is required")
	}

	args := []string{f.Name}

	switch f.Type {
	case db.IndexFieldText:
		args = append(args, "TEXT")
	case db.IndexFieldTag:
		args = append(args, "TAG")
	case db.IndexFieldNumeric:
		args = append(args, "NUMERIC")
	default:
		return nil, errors.New("unknown field type")
	}

	if f.Sortable {
		args = append(args, "SORTABLE")
	}

	return args, nil
}
