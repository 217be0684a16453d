package labsearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/labsearch/internal/db"
	"github.com/kailas-cloud/labsearch/internal/db/engine"
	"github.com/kailas-cloud/labsearch/internal/domain/entity"
	"github.com/kailas-cloud/labsearch/internal/domain/search/result"
	indexrepo "github.com/kailas-cloud/labsearch/internal/repository/index"
	searchrepo "github.com/kailas-cloud/labsearch/internal/repository/search"
	healthuc "github.com/kailas-cloud/labsearch/internal/usecase/health"
	indexuc "github.com/kailas-cloud/labsearch/internal/usecase/index"
	searchuc "github.com/kailas-cloud/labsearch/internal/usecase/search"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultPerPage          = 20
	defaultMaxPerPage       = 100
)

// Internal interfaces, substituted in tests.
type searchUseCase interface {
	MultiSearch(ctx context.Context, req searchuc.Request) result.Multi
	ValidIndexes(requested []string) []string
	Indexes() []string
}

type indexUseCase interface {
	EnsureIndexes(ctx context.Context) ([]string, error)
	Index(ctx context.Context, index, id string, doc indexuc.Document) (string, error)
}

// Client is the labsearch SDK entry point.
type Client struct {
	engine     db.Engine
	searchSvc  searchUseCase
	indexSvc   indexUseCase
	healthSvc  healthUseCase
	maxPerPage int
	obs        *observer
}

// New creates a Client and connects to the search engine.
// The provided context is used for the readiness check and index bootstrap.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{readinessTimeout: defaultReadinessTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}

	eng := cfg.engine
	if eng == nil {
		var err error
		if eng, err = openEngine(ctx, cfg); err != nil {
			return nil, err
		}
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		eng.Close()
		return nil, err
	}

	c := wireClient(eng, cfg, obs)
	if cfg.ensureIndexes {
		if _, err := c.EnsureIndexes(ctx); err != nil {
			c.Close()
			return nil, err
		}
	}
	return c, nil
}

func openEngine(ctx context.Context, cfg *clientConfig) (db.Engine, error) {
	if len(cfg.addrs) == 0 {
		return nil, errors.New("labsearch: engine address required (use WithOpenSearch or WithRedis)")
	}

	eng, err := engine.Open(engine.Config{
		Driver:    cfg.driver,
		Addrs:     cfg.addrs,
		Username:  cfg.username,
		Password:  cfg.password,
		KeyPrefix: cfg.keyPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("labsearch: %w", err)
	}

	if err := eng.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
		eng.Close()
		return nil, fmt.Errorf("labsearch: engine not ready: %w", err)
	}
	return eng, nil
}

func wireClient(eng db.Engine, cfg *clientConfig, obs *observer) *Client {
	indexes := entity.Indexes(cfg.indexes...)
	textFields := entity.TextFields(eng.ExactSuffix(), cfg.textFields...)

	// The SDK logs through slog in observe; internal services stay quiet.
	nop := zap.NewNop()

	searchSvc := searchuc.New(searchrepo.New(eng), indexes, textFields, searchuc.Config{
		PerIndexTimeout: cfg.perIndexTimeout,
		OverallTimeout:  cfg.overallTimeout,
		MaxWorkers:      cfg.maxWorkers,
	}, nop)
	indexSvc := indexuc.New(indexrepo.New(eng), indexes,
		append(entity.TextFieldNames(), cfg.textFields...), nop)

	maxPerPage := cfg.maxPerPage
	if maxPerPage <= 0 {
		maxPerPage = defaultMaxPerPage
	}

	return &Client{
		engine:     eng,
		searchSvc:  searchSvc,
		indexSvc:   indexSvc,
		healthSvc:  healthuc.New(eng),
		maxPerPage: maxPerPage,
		obs:        obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.engine != nil {
		c.engine.Close()
	}
}

// Ping checks engine connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	done := c.obs.begin("ping")
	defer func() { done(err) }()

	if err = c.engine.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Indexes returns the registered index names in registration order.
func (c *Client) Indexes() []string {
	return c.searchSvc.Indexes()
}
