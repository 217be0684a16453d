// Package engine opens the configured search-engine driver.
package engine

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/labsearch/internal/db"
	"github.com/kailas-cloud/labsearch/internal/db/opensearch"
	dbRedis "github.com/kailas-cloud/labsearch/internal/db/redis"
)

// Drivers.
const (
	OpenSearch = "opensearch"
	Redis      = "redis"
)

// Config selects and configures a driver.
type Config struct {
	Driver         string
	Addrs          []string
	Username       string
	Password       string
	KeyPrefix      string        // redis only
	RequestTimeout time.Duration // opensearch only
}

// Open creates the driver named by cfg.Driver. It does not wait for readiness.
func Open(cfg Config) (db.Engine, error) {
	switch cfg.Driver {
	case OpenSearch, "":
		s, err := opensearch.NewStore(opensearch.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
			Timeout:  cfg.RequestTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("create opensearch store: %w", err)
		}
		return s, nil
	case Redis:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:     cfg.Addrs,
			Username:  cfg.Username,
			Password:  cfg.Password,
			KeyPrefix: cfg.KeyPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("create redis store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown engine driver %q", cfg.Driver)
	}
}
