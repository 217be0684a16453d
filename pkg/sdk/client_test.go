package labsearch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/labsearch/internal/db"
)

func newTestClient(t *testing.T, eng *memEngine, opts ...Option) *Client {
	t.Helper()
	c, err := New(context.Background(), append([]Option{withEngine(eng)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestNew_NoAddress(t *testing.T) {
	_, err := New(context.Background())
	require.Error(t, err)
}

func TestNew_UnknownDriver(t *testing.T) {
	cfg := &clientConfig{driver: "valkey", addrs: []string{"localhost:6379"}}
	_, err := openEngine(context.Background(), cfg)
	require.Error(t, err)
}

func TestNew_EnsureIndexes(t *testing.T) {
	eng := newMemEngine("projects")
	newTestClient(t, eng, WithIndexes("projects", "samples", "files"), WithEnsureIndexes())

	assert.Equal(t, []string{"samples", "files"}, eng.created)
}

func TestNew_DefaultIndexes(t *testing.T) {
	c := newTestClient(t, newMemEngine())
	assert.Equal(t, []string{"projects", "samples", "illumina_runs"}, c.Indexes())
}

func TestClose_ClosesEngine(t *testing.T) {
	eng := newMemEngine()
	c, err := New(context.Background(), withEngine(eng))
	require.NoError(t, err)

	c.Close()
	assert.True(t, eng.closed)
}

func TestPing(t *testing.T) {
	eng := newMemEngine()
	c := newTestClient(t, eng)
	require.NoError(t, c.Ping(context.Background()))

	eng.pingErr = errors.New("connection refused")
	require.Error(t, c.Ping(context.Background()))
}

func TestHealth(t *testing.T) {
	eng := newMemEngine()
	c := newTestClient(t, eng)

	h := c.Health(context.Background())
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, "ok", h.Checks["search_engine"])

	eng.pingErr = errors.New("down")
	h = c.Health(context.Background())
	assert.Equal(t, "degraded", h.Status)
	assert.Equal(t, "error", h.Checks["search_engine"])
}

func TestMultiSearch_AcrossIndexes(t *testing.T) {
	eng := newMemEngine("projects", "samples", "illumina_runs")
	eng.seed("projects", "RNA Seq pilot", "Exome", "bulk RNA Seq")
	eng.seed("samples", "S-2 RNA Seq")
	c := newTestClient(t, eng)

	res, err := c.MultiSearch(context.Background(), SearchRequest{
		Indexes: []string{"projects", "bogus", "samples", "illumina_runs"},
		Query:   "RNA Seq",
	})
	require.NoError(t, err)

	assert.False(t, res.PartialFailure)
	assert.Equal(t, []string{"projects", "samples", "illumina_runs"}, res.IndexesSearched)
	assert.Equal(t, 3, res.TotalAcrossIndexes)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 20, res.PerPage)

	projects := res.Results["projects"]
	assert.True(t, projects.Success)
	assert.Nil(t, projects.Error)
	assert.Len(t, projects.Items, 2)
	assert.Equal(t, "projects", projects.Items[0].Index)
	assert.Empty(t, res.Failed())
}

func TestMultiSearch_PartialFailure(t *testing.T) {
	eng := newMemEngine("projects")
	eng.seed("projects", "AI genomics")
	reg := prometheus.NewRegistry()
	c := newTestClient(t, eng, WithPrometheus(reg), WithLogger(slog.New(slog.DiscardHandler)))

	res, err := c.MultiSearch(context.Background(), SearchRequest{
		Indexes: []string{"projects", "samples"},
		Query:   "AI",
	})
	require.NoError(t, err)

	require.True(t, res.PartialFailure)
	assert.Equal(t, 1, res.TotalAcrossIndexes)
	failed := res.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "samples", failed[0].Index)
	assert.False(t, failed[0].HasNext)
	assert.False(t, failed[0].HasPrev)
	assert.Empty(t, failed[0].Items)
	require.NotNil(t, failed[0].Error)
	assert.Equal(t, ErrorIndexNotFound, failed[0].Error.Kind)
	assert.ErrorIs(t, failed[0].Error, ErrIndexNotFound)

	m, err := newSDKMetrics(reg)
	require.NoError(t, err)
	assert.InDelta(t, 1, testutil.ToFloat64(m.failures.WithLabelValues("samples", "INDEX_NOT_FOUND")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.operations.WithLabelValues("multi_search", "ok")), 0)
}

func TestMultiSearch_SortUsesExactTwin(t *testing.T) {
	eng := newMemEngine("projects")
	eng.seed("projects", "beta", "alpha", "gamma")
	c := newTestClient(t, eng)

	res, err := c.MultiSearch(context.Background(), SearchRequest{
		Indexes:   []string{"projects"},
		Query:     "*",
		SortBy:    "name",
		SortOrder: "DESC",
	})
	require.NoError(t, err)

	items := res.Results["projects"].Items
	require.Len(t, items, 3)
	assert.Equal(t, []string{"gamma", "beta", "alpha"}, []string{items[0].Name, items[1].Name, items[2].Name})
}

func TestMultiSearch_UnsortableFieldFallsBack(t *testing.T) {
	eng := newMemEngine("projects")
	eng.seed("projects", "beta", "alpha")
	c := newTestClient(t, eng)

	res, err := c.MultiSearch(context.Background(), SearchRequest{
		Indexes:   []string{"projects"},
		Query:     "*",
		SortBy:    "created_at",
		SortOrder: Asc,
	})
	require.NoError(t, err)

	r := res.Results["projects"]
	require.True(t, r.Success)
	assert.Equal(t, 2, r.Total)
}

func TestMultiSearch_Validation(t *testing.T) {
	c := newTestClient(t, newMemEngine("projects"), WithMaxPerPage(50))

	tests := []struct {
		name string
		req  SearchRequest
		want error
	}{
		{"empty query", SearchRequest{Indexes: []string{"projects"}, Query: "  "}, ErrInvalidRequest},
		{"negative page", SearchRequest{Indexes: []string{"projects"}, Query: "x", Page: -1}, ErrInvalidRequest},
		{"page past the cap", SearchRequest{Indexes: []string{"projects"}, Query: "x", Page: math.MaxInt}, ErrInvalidRequest},
		{"per page over max", SearchRequest{Indexes: []string{"projects"}, Query: "x", PerPage: 51}, ErrInvalidRequest},
		{"bad sort order", SearchRequest{Indexes: []string{"projects"}, Query: "x", SortBy: "name", SortOrder: "up"}, ErrInvalidRequest},
		{"only unknown indexes", SearchRequest{Indexes: []string{"bogus_index"}, Query: "x"}, ErrNoValidIndexes},
		{"no indexes", SearchRequest{Query: "x"}, ErrNoValidIndexes},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.MultiSearch(context.Background(), tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestMultiSearch_OverallTimeout(t *testing.T) {
	eng := newMemEngine("projects", "samples")
	release := make(chan struct{})
	defer close(release)
	eng.searchFn = func(_ context.Context, q *db.Query) (*db.SearchResult, error) {
		if q.Index == "samples" {
			<-release
		}
		return &db.SearchResult{Total: 1, Entries: []db.SearchEntry{{Key: "p1"}}}, nil
	}
	c := newTestClient(t, eng)

	start := time.Now()
	res, err := c.MultiSearch(context.Background(), SearchRequest{
		Indexes:        []string{"projects", "samples"},
		Query:          "x",
		OverallTimeout: 30 * time.Millisecond,
	})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)

	assert.True(t, res.PartialFailure)
	assert.Equal(t, 1, res.TotalAcrossIndexes)
	samples := res.Results["samples"]
	require.NotNil(t, samples.Error)
	assert.Equal(t, ErrorTimeout, samples.Error.Kind)
}

func TestMultiSearch_EngineErrorClassified(t *testing.T) {
	eng := newMemEngine("projects")
	eng.searchFn = func(context.Context, *db.Query) (*db.SearchResult, error) {
		return nil, fmt.Errorf("%w: security_exception", db.ErrForbidden)
	}
	c := newTestClient(t, eng)

	res, err := c.MultiSearch(context.Background(), SearchRequest{Indexes: []string{"projects"}, Query: "x"})
	require.NoError(t, err)

	r := res.Results["projects"]
	require.NotNil(t, r.Error)
	assert.Equal(t, ErrorPermission, r.Error.Kind)
	assert.ErrorIs(t, r.Error, ErrPermissionDenied)
}

func TestIndex(t *testing.T) {
	eng := newMemEngine("projects")
	c := newTestClient(t, eng)

	id, err := c.Index(context.Background(), "projects", "", Document{
		Fields:     map[string]string{"name": "Exome pilot", "project_id": "P-7", "secret": "x"},
		Attributes: []Attribute{{Key: "pi", Value: "Dr. Rao"}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	stored := eng.indexes["projects"][0]
	assert.Equal(t, id, stored.id)
	assert.Equal(t, map[string]string{"name": "Exome pilot", "project_id": "P-7"}, stored.doc.Fields)
	assert.Equal(t, []db.Attribute{{Key: "pi", Value: "Dr. Rao"}}, stored.doc.Attributes)
}

func TestIndex_UnknownIndex(t *testing.T) {
	c := newTestClient(t, newMemEngine())
	_, err := c.Index(context.Background(), "nope", "1", Document{Fields: map[string]string{"name": "x"}})
	assert.ErrorIs(t, err, ErrUnknownIndex)
}

func TestObserver_RegisterTwiceReuses(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := newObserver(nil, reg)
	require.NoError(t, err)
	_, err = newObserver(nil, reg)
	require.NoError(t, err)
}

func TestObserver_NilSafe(t *testing.T) {
	var o *observer
	o.begin("ping")(nil)
	o.partial(MultiResult{})
}

func TestObserver_Outcomes(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, outcomeOK},
		{fmt.Errorf("%w: page", ErrInvalidRequest), outcomeInvalid},
		{ErrNoValidIndexes, outcomeInvalid},
		{ErrUnknownIndex, outcomeInvalid},
		{fmt.Errorf("ping: %w", ErrEngineUnreachable), outcomeUnavailable},
		{errors.New("boom"), outcomeError},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, outcomeOf(tc.err), "err=%v", tc.err)
	}

	reg := prometheus.NewRegistry()
	o, err := newObserver(nil, reg)
	require.NoError(t, err)
	o.begin("index")(ErrUnknownIndex)
	assert.InDelta(t, 1, testutil.ToFloat64(o.metrics.operations.WithLabelValues("index", outcomeInvalid)), 0)
}
