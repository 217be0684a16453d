package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/labsearch/internal/domain"
	"github.com/kailas-cloud/labsearch/internal/domain/search/hit"
	"github.com/kailas-cloud/labsearch/internal/domain/search/query"
	"github.com/kailas-cloud/labsearch/internal/domain/search/registry"
	"github.com/kailas-cloud/labsearch/internal/domain/search/result"
	"github.com/kailas-cloud/labsearch/internal/metrics"
)

// Sort fallback steps, used as metric labels.
const (
	stepExact    = "exact"
	stepOriginal = "original"
)

// Executor runs one compiled query against one index and turns every outcome,
// including panics, into a result.Index.
type Executor struct {
	repo   Repository
	text   registry.TextFields
	logger *zap.Logger
}

// NewExecutor creates a single-index executor.
func NewExecutor(repo Repository, text registry.TextFields, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{repo: repo, text: text, logger: logger}
}

// Execute searches index. It never panics and never returns an error: failures are
// carried inside the result.
func (e *Executor) Execute(ctx context.Context, index string, q query.Compiled) (res result.Index) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Index search panicked",
				zap.String("index", index),
				zap.Any("panic", r),
			)
			res = failure(index, q, result.KindUnknown, fmt.Sprintf("internal error: %v", r))
		}
		observe(index, res, time.Since(start))
	}()

	exists, err := e.repo.IndexExists(ctx, index)
	if err != nil {
		return e.fail(index, q, fmt.Errorf("check index: %w", err))
	}
	if !exists {
		return failure(index, q, result.KindIndexNotFound, fmt.Sprintf("index %q does not exist", index))
	}

	hits, total, err := e.search(ctx, index, q)
	if err != nil {
		return e.fail(index, q, err)
	}
	return result.NewSuccess(index, hits, total, q.Page(), q.PerPage())
}

type sortAttempt struct {
	step  string
	query query.Compiled
}

// search walks the sort degrade chain: exact twin (text fields only), original
// field, unsorted. Only a sort rejection advances the chain.
func (e *Executor) search(ctx context.Context, index string, q query.Compiled) ([]hit.Hit, int, error) {
	srt, ok := q.Sort()
	if !ok {
		return e.repo.Search(ctx, index, q)
	}

	attempts := make([]sortAttempt, 0, 2)
	if exact, isText := e.text.SortField(srt.Field); isText {
		attempts = append(attempts, sortAttempt{step: stepExact, query: q.WithSortField(exact)})
	}
	attempts = append(attempts, sortAttempt{step: stepOriginal, query: q})

	for _, a := range attempts {
		hits, total, err := e.repo.Search(ctx, index, a.query)
		if err == nil {
			return hits, total, nil
		}
		if !errors.Is(err, domain.ErrSortUnsupported) {
			return nil, 0, err
		}

		field, _ := a.query.Sort()
		metrics.SortFallbackTotal.WithLabelValues(index, a.step).Inc()
		e.logger.Warn("Sort rejected by engine, degrading",
			zap.String("index", index),
			zap.String("sort_field", field.Field),
			zap.String("step", a.step),
			zap.Error(err),
		)
	}

	e.logger.Warn("Sorting dropped, searching unsorted",
		zap.String("index", index),
		zap.String("sort_by", srt.Field),
	)
	return e.repo.Search(ctx, index, q.WithoutSort())
}

func (e *Executor) fail(index string, q query.Compiled, err error) result.Index {
	kind := classify(err)
	e.logger.Warn("Index search failed",
		zap.String("index", index),
		zap.String("kind", string(kind)),
		zap.Error(err),
	)
	return failure(index, q, kind, err.Error())
}

func failure(index string, q query.Compiled, kind result.Kind, msg string) result.Index {
	return result.NewFailure(index, q.Page(), q.PerPage(), result.NewError(index, kind, msg, time.Now()))
}

func observe(index string, res result.Index, d time.Duration) {
	outcome := "ok"
	if e, failed := res.Err(); failed {
		outcome = string(e.Kind())
	}
	metrics.IndexSearchDuration.WithLabelValues(index).Observe(d.Seconds())
	metrics.IndexSearchTotal.WithLabelValues(index, outcome).Inc()
}
