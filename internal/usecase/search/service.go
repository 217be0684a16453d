package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/labsearch/internal/domain/search/query"
	"github.com/kailas-cloud/labsearch/internal/domain/search/registry"
	"github.com/kailas-cloud/labsearch/internal/domain/search/result"
	"github.com/kailas-cloud/labsearch/internal/metrics"
)

// DefaultOverallTimeout bounds a whole multi-index search when the caller sets none.
const DefaultOverallTimeout = 30 * time.Second

// Request is one multi-index search.
type Request struct {
	Indexes   []string
	Query     string
	Page      int
	PerPage   int
	SortBy    string
	SortOrder query.Order

	// Zero values fall back to the service defaults.
	PerIndexTimeout time.Duration
	OverallTimeout  time.Duration
}

// Config tunes the orchestrator.
type Config struct {
	PerIndexTimeout time.Duration
	OverallTimeout  time.Duration
	MaxWorkers      int
}

// indexRunner is a bounded single-index search.
type indexRunner interface {
	Run(ctx context.Context, index string, q query.Compiled, timeout time.Duration) result.Index
}

// Service fans a search out over several indexes and aggregates the outcomes.
type Service struct {
	runner   indexRunner
	indexes  registry.Indexes
	perIndex time.Duration
	overall  time.Duration
	logger   *zap.Logger
}

// New creates a search service. A nil repo means no engine is configured: every
// MultiSearch then returns an empty, partially failed result.
func New(
	repo Repository, indexes registry.Indexes, text registry.TextFields,
	cfg Config, logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		indexes:  indexes,
		perIndex: cfg.PerIndexTimeout,
		overall:  cfg.OverallTimeout,
		logger:   logger,
	}
	if s.perIndex <= 0 {
		s.perIndex = DefaultPerIndexTimeout
	}
	if s.overall <= 0 {
		s.overall = DefaultOverallTimeout
	}
	if repo != nil {
		s.runner = NewBounded(NewExecutor(repo, text, logger), cfg.MaxWorkers, s.perIndex, logger)
	}
	return s
}

// EngineAvailable reports whether searches can be dispatched at all.
func (s *Service) EngineAvailable() bool { return s.runner != nil }

// Indexes returns the registered index names.
func (s *Service) Indexes() []string { return s.indexes.Names() }

// ValidIndexes filters requested down to registered names, in request order.
func (s *Service) ValidIndexes(requested []string) []string {
	return s.indexes.Filter(requested)
}

// MultiSearch searches every valid requested index concurrently. It is total: it
// always returns within the overall timeout and reports failures as data.
func (s *Service) MultiSearch(ctx context.Context, req Request) result.Multi {
	start := time.Now()

	if s.runner == nil {
		s.logger.Warn("Search engine unavailable, nothing dispatched")
		return s.finish(req, nil, start)
	}

	valid := s.indexes.Filter(req.Indexes)
	if len(valid) == 0 {
		return s.finish(req, nil, start)
	}

	q := query.Compile(req.Query, req.Page, req.PerPage, req.SortBy, req.SortOrder)
	perIndex := positiveOr(req.PerIndexTimeout, s.perIndex)
	overall := positiveOr(req.OverallTimeout, s.overall)

	ctx, cancel := context.WithTimeout(ctx, overall)
	defer cancel()

	type outcome struct {
		pos int
		res result.Index
	}
	ch := make(chan outcome, len(valid))
	for i, name := range valid {
		go func() {
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("Index task panicked", zap.String("index", name), zap.Any("panic", r))
					ch <- outcome{i, failure(name, q, result.KindUnknown, fmt.Sprintf("internal error: %v", r))}
				}
			}()
			ch <- outcome{i, s.runner.Run(ctx, name, q, perIndex)}
		}()
	}

	collected := make([]*result.Index, len(valid))
	pending := len(valid)
join:
	for pending > 0 {
		select {
		case o := <-ch:
			collected[o.pos] = &o.res
			pending--
		case <-ctx.Done():
			break join
		}
	}
	// Results that landed together with the deadline still count.
drain:
	for pending > 0 {
		select {
		case o := <-ch:
			collected[o.pos] = &o.res
			pending--
		default:
			break drain
		}
	}

	ordered := make([]result.Index, len(valid))
	for i, name := range valid {
		if collected[i] != nil {
			ordered[i] = *collected[i]
			continue
		}
		ordered[i] = failure(name, q, result.KindTimeout,
			fmt.Sprintf("overall search timeout of %s exceeded", overall))
	}
	return s.finish(req, ordered, start)
}

func (s *Service) finish(req Request, ordered []result.Index, start time.Time) result.Multi {
	m := result.NewMulti(req.Query, req.Page, req.PerPage, ordered)
	if m.PartialFailure() {
		metrics.MultiSearchPartialTotal.Inc()
	}
	s.logger.Debug("Multi-index search finished",
		zap.Strings("requested", req.Indexes),
		zap.Strings("searched", m.IndexesSearched()),
		zap.Int("total", m.TotalAcrossIndexes()),
		zap.Bool("partial_failure", m.PartialFailure()),
		zap.Duration("took", time.Since(start)),
	)
	return m
}

func positiveOr(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}
