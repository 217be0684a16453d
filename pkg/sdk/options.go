package labsearch

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/labsearch/internal/db"
	"github.com/kailas-cloud/labsearch/internal/db/engine"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver    string // "opensearch" or "redis"
	addrs     []string
	username  string
	password  string
	keyPrefix string

	indexes    []string
	textFields []string

	perIndexTimeout  time.Duration
	overallTimeout   time.Duration
	readinessTimeout time.Duration
	maxWorkers       int
	maxPerPage       int
	ensureIndexes    bool

	logger     *slog.Logger
	metricsReg prometheus.Registerer

	engine db.Engine // preconfigured engine, tests only
}

// WithOpenSearch configures the client to connect to an OpenSearch cluster.
func WithOpenSearch(addrs ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = engine.OpenSearch
		c.addrs = addrs
	})
}

// WithRedis configures the client to connect to a Redis 8+ instance with the search module.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = engine.Redis
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithBasicAuth sets engine credentials.
func WithBasicAuth(username, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.username = username
		c.password = password
	})
}

// WithKeyPrefix sets the Redis document key prefix. Default: "labsearch:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithIndexes sets the index registry. Defaults to projects, samples and illumina_runs.
func WithIndexes(names ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.indexes = append(c.indexes, names...)
	})
}

// WithTextFields registers extra text fields on top of the built-in entity fields.
// Sorting by a text field goes through its exact-value twin.
func WithTextFields(fields ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.textFields = append(c.textFields, fields...)
	})
}

// WithTimeouts sets the default per-index and overall search timeouts.
// Zero keeps the default (10s and 30s).
func WithTimeouts(perIndex, overall time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.perIndexTimeout = perIndex
		c.overallTimeout = overall
	})
}

// WithReadinessTimeout bounds how long New waits for the engine. Default: 10s.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readinessTimeout = d
	})
}

// WithMaxWorkers caps concurrent engine calls across all searches. 0 = unbounded.
func WithMaxWorkers(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxWorkers = n
	})
}

// WithMaxPerPage sets the largest accepted page size. Default: 100.
func WithMaxPerPage(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxPerPage = n
	})
}

// WithEnsureIndexes makes New create registered indexes the engine is missing.
func WithEnsureIndexes() Option {
	return optionFunc(func(c *clientConfig) {
		c.ensureIndexes = true
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}

func withEngine(e db.Engine) Option {
	return optionFunc(func(c *clientConfig) {
		c.engine = e
	})
}
