package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/labsearch/internal/db"
)

// Compile-time check: Store implements db.Engine.
var _ db.Engine = (*Store)(nil)

const (
	// DefaultKeyPrefix namespaces every key and FT index the store touches.
	DefaultKeyPrefix = "labsearch:"
	// ExactSuffix names the sortable TAG twin of a TEXT field.
	ExactSuffix = "_exact"
)

// Config holds connection parameters for a Redis store.
type Config struct {
	Addrs     []string
	Username  string
	Password  string
	DB        int
	KeyPrefix string
}

// Store implements db.Engine via rueidis on Redis 8+ (RediSearch FT.* commands).
type Store struct {
	client rueidis.Client
	prefix string
}

// NewStore creates a Redis store via rueidis.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
		AlwaysRESP2:  true, // FT.SEARCH result parsing expects RESP2 array format
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Store{client: client, prefix: keyPrefix(cfg.KeyPrefix)}, nil
}

func keyPrefix(p string) string {
	if p == "" {
		return DefaultKeyPrefix
	}
	return p
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	cmd := s.client.B().Ping().Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return wrapErr(db.OpPing, err)
	}
	return nil
}

// ExactSuffix returns the suffix of sortable TAG twins.
func (s *Store) ExactSuffix() string { return ExactSuffix }

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for redis: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}

// ftName is the FT index name backing a logical index.
func (s *Store) ftName(index string) string {
	return s.prefix + index
}

// docPrefix is the hash key prefix of documents in a logical index.
func (s *Store) docPrefix(index string) string {
	return s.prefix + index + ":"
}

// wrapErr maps a rueidis error onto the db sentinels, keeping the raw error in the chain.
func wrapErr(op string, err error) error {
	var sentinel error
	switch {
	case isRedisErr(err, "unknown index name"), isRedisErr(err, "no such index"):
		sentinel = db.ErrIndexNotFound
	case isRedisErr(err, "index already exists"):
		sentinel = db.ErrIndexExists
	case isRedisErr(err, "not loaded nor in schema"), isRedisErr(err, "not sortable"),
		isRedisErr(err, "sortby"):
		sentinel = db.ErrSortUnsupported
	case isRedisErr(err, "noperm"), isRedisErr(err, "noauth"), isRedisErr(err, "wrongpass"):
		sentinel = db.ErrForbidden
	case isRedisErr(err, "syntax error"):
		sentinel = db.ErrBadQuery
	case isRedisErr(err, ""):
		return &db.Error{Op: op, Err: err}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return &db.Error{Op: op, Err: err}
	default:
		sentinel = db.ErrUnavailable
	}
	return &db.Error{Op: op, Err: fmt.Errorf("%w: %w", sentinel, err)}
}

// isRedisErr checks if err is a Redis server error containing substr (case-insensitive).
func isRedisErr(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return containsIgnoreCase(re.Error(), substr)
}

func containsIgnoreCase(s, substr string) bool {
	ls := len(s)
	lsub := len(substr)
	if lsub > ls {
		return false
	}
	for i := 0; i <= ls-lsub; i++ {
		match := true
		for j := 0; j < lsub; j++ {
			sc := s[i+j]
			tc := substr[j]
			if sc >= 'A' && sc <= 'Z' {
				sc += 'a' - 'A'
			}
			if tc >= 'A' && tc <= 'Z' {
				tc += 'a' - 'A'
			}
			if sc != tc {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
