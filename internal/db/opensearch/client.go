// Package opensearch implements db.Engine on the opensearch-go client.
package opensearch

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/opensearch-project/opensearch-go/v4"
	"github.com/opensearch-project/opensearch-go/v4/opensearchapi"

	"github.com/kailas-cloud/labsearch/internal/db"
)

// Compile-time check: Store implements db.Engine.
var _ db.Engine = (*Store)(nil)

// ExactSuffix names the keyword sub-field dynamic mapping adds to every text field.
const ExactSuffix = ".keyword"

// Config holds OpenSearch connection parameters.
type Config struct {
	// Addrs are node URLs, e.g. http://localhost:9200. A missing scheme means http.
	Addrs    []string
	Username string
	Password string
	// Timeout bounds the wait for response headers of a single request.
	Timeout time.Duration
	// MaxRetries for 502/503/504 and connection failures. 0 keeps the client
	// default, negative disables retries.
	MaxRetries int
	// Transport overrides the HTTP transport (tests, custom TLS).
	Transport http.RoundTripper
}

// Store implements db.Engine via opensearchapi.Client.
type Store struct {
	client    *opensearchapi.Client
	addrs     []string
	transport *http.Transport // owned transport, nil when Config.Transport was set
}

// NewStore creates an OpenSearch store. It does not contact the cluster.
func NewStore(cfg Config) (*Store, error) {
	addrs := normalizeAddrs(cfg.Addrs)
	if len(addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	s := &Store{addrs: addrs}
	rt := cfg.Transport
	if rt == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		s.transport = http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert // stdlib default
		s.transport.ResponseHeaderTimeout = timeout
		rt = s.transport
	}

	client, err := opensearchapi.NewClient(opensearchapi.Config{
		Client: opensearch.Config{
			Addresses:     addrs,
			Username:      cfg.Username,
			Password:      cfg.Password,
			Transport:     rt,
			MaxRetries:    max(cfg.MaxRetries, 0),
			DisableRetry:  cfg.MaxRetries < 0,
			RetryOnStatus: []int{http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create opensearch client: %w", err)
	}
	s.client = client
	return s, nil
}

func normalizeAddrs(in []string) []string {
	out := make([]string, 0, len(in))
	for _, a := range in {
		a = strings.TrimSuffix(strings.TrimSpace(a), "/")
		if a == "" {
			continue
		}
		if !strings.HasPrefix(a, "http://") && !strings.HasPrefix(a, "https://") {
			a = "http://" + a
		}
		out = append(out, a)
	}
	return out
}

// Ping checks that the cluster answers its root endpoint.
func (s *Store) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, nil)
	if err != nil {
		return wrapErr(ctx, db.OpPing, statusOf(resp), err)
	}
	return nil
}

// ExactSuffix returns the keyword sub-field suffix.
func (s *Store) ExactSuffix() string { return ExactSuffix }

// Close releases idle connections of the owned transport.
func (s *Store) Close() {
	if s.transport != nil {
		s.transport.CloseIdleConnections()
	}
}

// WaitForReady polls Ping until the cluster responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for opensearch: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

func statusOf(resp *opensearch.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}
