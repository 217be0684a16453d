package labsearch

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/labsearch/internal/domain/search/query"
	searchuc "github.com/kailas-cloud/labsearch/internal/usecase/search"
)

// MultiSearch searches every requested index concurrently.
//
// The returned error covers only the request itself (ErrInvalidRequest,
// ErrNoValidIndexes). Per-index failures are reported in MultiResult with
// PartialFailure set. Unknown index names are dropped.
func (c *Client) MultiSearch(ctx context.Context, req SearchRequest) (res MultiResult, err error) {
	done := c.obs.begin("multi_search")
	defer func() { done(err) }()

	ucReq, err := c.searchRequest(req)
	if err != nil {
		return MultiResult{}, err
	}
	if len(c.searchSvc.ValidIndexes(ucReq.Indexes)) == 0 {
		return MultiResult{}, fmt.Errorf("%w: %s", ErrNoValidIndexes, strings.Join(req.Indexes, ", "))
	}

	m := c.searchSvc.MultiSearch(ctx, ucReq)
	res = multiFromDomain(m)
	if res.PartialFailure {
		c.obs.partial(res)
	}
	return res, nil
}

func (c *Client) searchRequest(req SearchRequest) (searchuc.Request, error) {
	text := strings.TrimSpace(req.Query)
	if text == "" {
		return searchuc.Request{}, fmt.Errorf("%w: query is required", ErrInvalidRequest)
	}

	page := req.Page
	if page == 0 {
		page = 1
	}
	if page < 1 || page > query.MaxPage {
		return searchuc.Request{}, fmt.Errorf("%w: page must be between 1 and %d", ErrInvalidRequest, query.MaxPage)
	}

	perPage := req.PerPage
	if perPage == 0 {
		perPage = min(defaultPerPage, c.maxPerPage)
	}
	if perPage < 1 || perPage > c.maxPerPage {
		return searchuc.Request{}, fmt.Errorf("%w: per_page must be between 1 and %d",
			ErrInvalidRequest, c.maxPerPage)
	}

	order := query.Order(strings.ToLower(string(req.SortOrder)))
	if order != "" && !order.IsValid() {
		return searchuc.Request{}, fmt.Errorf("%w: sort order must be %q or %q",
			ErrInvalidRequest, Asc, Desc)
	}

	return searchuc.Request{
		Indexes:         req.Indexes,
		Query:           text,
		Page:            page,
		PerPage:         perPage,
		SortBy:          strings.TrimSpace(req.SortBy),
		SortOrder:       order,
		PerIndexTimeout: req.PerIndexTimeout,
		OverallTimeout:  req.OverallTimeout,
	}, nil
}
