package chi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// SearchParams are the GET /search query parameters described in api/openapi.yaml.
type SearchParams struct {
	Index     *[]string
	Query     *string
	Page      *int
	PerPage   *int
	SortBy    *string
	SortOrder *string
}

// bindSearchParams binds the form-style (explode=true) query parameters.
// Absent parameters stay nil.
func bindSearchParams(r *http.Request) (SearchParams, error) {
	var p SearchParams
	q := r.URL.Query()

	for _, b := range []struct {
		name string
		dest any
	}{
		{"index", &p.Index},
		{"query", &p.Query},
		{"page", &p.Page},
		{"per_page", &p.PerPage},
		{"sort_by", &p.SortBy},
		{"sort_order", &p.SortOrder},
	} {
		if err := runtime.BindQueryParameter("form", true, false, b.name, q, b.dest); err != nil {
			return SearchParams{}, fmt.Errorf("invalid format for parameter %s: %w", b.name, err)
		}
	}
	return p, nil
}

// toRequest flattens the bound parameters into the shared search DTO.
func (p SearchParams) toRequest() SearchRequest {
	req := SearchRequest{Page: p.Page, PerPage: p.PerPage}
	if p.Index != nil {
		req.Indexes = splitIndexes(*p.Index)
	}
	if p.Query != nil {
		req.Query = *p.Query
	}
	if p.SortBy != nil {
		req.SortBy = *p.SortBy
	}
	if p.SortOrder != nil {
		req.SortOrder = *p.SortOrder
	}
	return req
}

// pathParam binds a required simple-style path parameter.
func pathParam(r *http.Request, name string) (string, error) {
	var v string
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &v,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return "", fmt.Errorf("invalid format for parameter %s: %w", name, err)
	}
	return v, nil
}
