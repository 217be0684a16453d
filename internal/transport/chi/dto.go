package chi

import (
	"time"

	"github.com/kailas-cloud/labsearch/internal/domain/search/hit"
	"github.com/kailas-cloud/labsearch/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/labsearch/internal/usecase/health"
	"github.com/kailas-cloud/labsearch/internal/version"
)

// ErrorCode is a machine-readable error code in ErrorResponse.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest        ErrorCode = "bad_request"
	ErrorCodeUnauthorized      ErrorCode = "unauthorized"
	ErrorCodeValidationFailed  ErrorCode = "validation_failed"
	ErrorCodeNoValidIndexes    ErrorCode = "no_valid_indexes"
	ErrorCodeUnknownIndex      ErrorCode = "unknown_index"
	ErrorCodeIndexNotFound     ErrorCode = "index_not_found"
	ErrorCodeEngineUnavailable ErrorCode = "engine_unavailable"
	ErrorCodeEngineError       ErrorCode = "engine_error"
	ErrorCodeInternalError     ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SearchRequest is the POST /search body.
type SearchRequest struct {
	Indexes   []string `json:"indexes"`
	Query     string   `json:"query"`
	Page      *int     `json:"page,omitempty"`
	PerPage   *int     `json:"per_page,omitempty"`
	SortBy    string   `json:"sort_by,omitempty"`
	SortOrder string   `json:"sort_order,omitempty"`
}

// AttributeDTO is one key/value attribute.
type AttributeDTO struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// HitDTO is one search hit.
type HitDTO struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Index      string         `json:"index"`
	Attributes []AttributeDTO `json:"attributes"`
}

// SearchErrorDTO describes why one index failed.
type SearchErrorDTO struct {
	IndexName string    `json:"index_name"`
	ErrorType string    `json:"error_type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// IndexResultDTO is the outcome for one index.
type IndexResultDTO struct {
	IndexName string          `json:"index_name"`
	Items     []HitDTO        `json:"items"`
	Total     int             `json:"total"`
	Page      int             `json:"page"`
	PerPage   int             `json:"per_page"`
	HasNext   bool            `json:"has_next"`
	HasPrev   bool            `json:"has_prev"`
	Success   bool            `json:"success"`
	Error     *SearchErrorDTO `json:"error,omitempty"`
}

// SearchResponse is the multi-index search response.
type SearchResponse struct {
	Results            map[string]IndexResultDTO `json:"results"`
	Query              string                    `json:"query"`
	Page               int                       `json:"page"`
	PerPage            int                       `json:"per_page"`
	TotalAcrossIndexes int                       `json:"total_across_indexes"`
	IndexesSearched    []string                  `json:"indexes_searched"`
	PartialFailure     bool                      `json:"partial_failure"`
}

// IndexListResponse is the GET /indexes response.
type IndexListResponse struct {
	Indexes []string `json:"indexes"`
}

// DocumentRequest is the body for document indexing.
type DocumentRequest struct {
	Name       string            `json:"name,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`
	Attributes []AttributeDTO    `json:"attributes,omitempty"`
}

// DocumentResponse acknowledges an indexed document.
type DocumentResponse struct {
	ID    string `json:"id"`
	Index string `json:"index"`
}

// HealthResponse is the GET /health response.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
	Build  version.Info      `json:"build"`
}

func searchResponseFromDomain(m result.Multi) SearchResponse {
	results := make(map[string]IndexResultDTO, len(m.IndexesSearched()))
	for name, r := range m.Results() {
		results[name] = indexResultFromDomain(r)
	}
	return SearchResponse{
		Results:            results,
		Query:              m.Query(),
		Page:               m.Page(),
		PerPage:            m.PerPage(),
		TotalAcrossIndexes: m.TotalAcrossIndexes(),
		IndexesSearched:    m.IndexesSearched(),
		PartialFailure:     m.PartialFailure(),
	}
}

func indexResultFromDomain(r result.Index) IndexResultDTO {
	items := make([]HitDTO, 0, len(r.Items()))
	for _, h := range r.Items() {
		items = append(items, hitFromDomain(h))
	}
	dto := IndexResultDTO{
		IndexName: r.IndexName(),
		Items:     items,
		Total:     r.Total(),
		Page:      r.Page(),
		PerPage:   r.PerPage(),
		HasNext:   r.HasNext(),
		HasPrev:   r.HasPrev(),
		Success:   r.Success(),
	}
	if e, failed := r.Err(); failed {
		dto.Error = &SearchErrorDTO{
			IndexName: e.IndexName(),
			ErrorType: string(e.Kind()),
			Message:   e.Message(),
			Timestamp: e.Timestamp().UTC(),
		}
	}
	return dto
}

func hitFromDomain(h hit.Hit) HitDTO {
	attrs := make([]AttributeDTO, len(h.Attributes))
	for i, a := range h.Attributes {
		attrs[i] = AttributeDTO{Key: a.Key, Value: a.Value}
	}
	return HitDTO{ID: h.ID, Name: h.Name, Index: h.Index, Attributes: attrs}
}

func attributesToDomain(in []AttributeDTO) []hit.Attribute {
	if len(in) == 0 {
		return nil
	}
	out := make([]hit.Attribute, len(in))
	for i, a := range in {
		out[i] = hit.Attribute{Key: a.Key, Value: a.Value}
	}
	return out
}

func healthFromDomain(r healthuc.Report) HealthResponse {
	checks := make(map[string]string, len(r.Checks))
	for k, v := range r.Checks {
		checks[k] = string(v)
	}
	return HealthResponse{Status: string(r.Status), Checks: checks, Build: version.Get()}
}
