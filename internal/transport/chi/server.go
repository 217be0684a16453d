package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/labsearch/internal/domain"
	"github.com/kailas-cloud/labsearch/internal/domain/entity"
	"github.com/kailas-cloud/labsearch/internal/domain/search/query"
	logpkg "github.com/kailas-cloud/labsearch/internal/logger"
	healthuc "github.com/kailas-cloud/labsearch/internal/usecase/health"
	indexuc "github.com/kailas-cloud/labsearch/internal/usecase/index"
	searchuc "github.com/kailas-cloud/labsearch/internal/usecase/search"
)

// Pagination limits applied to search requests.
type Pagination struct {
	DefaultPerPage int
	MaxPerPage     int
}

// DefaultPagination is used when NewServer gets zero limits.
var DefaultPagination = Pagination{DefaultPerPage: 20, MaxPerPage: 100}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the labsearch HTTP API.
type Server struct {
	search        *searchuc.Service
	indexer       *indexuc.Service
	health        *healthuc.Service
	paging        Pagination
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. indexer is nil when no engine is configured.
func NewServer(
	search *searchuc.Service,
	indexer *indexuc.Service,
	health *healthuc.Service,
	paging Pagination,
	logger *zap.Logger,
) *Server {
	if paging.MaxPerPage <= 0 {
		paging.MaxPerPage = DefaultPagination.MaxPerPage
	}
	if paging.DefaultPerPage <= 0 {
		paging.DefaultPerPage = min(DefaultPagination.DefaultPerPage, paging.MaxPerPage)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		search:  search,
		indexer: indexer,
		health:  health,
		paging:  paging,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrNoValidIndexes, http.StatusBadRequest, ErrorCodeNoValidIndexes),
		sentinelHandler(domain.ErrUnknownIndex, http.StatusNotFound, ErrorCodeUnknownIndex),
		sentinelHandler(domain.ErrIndexNotFound, http.StatusNotFound, ErrorCodeIndexNotFound),
		sentinelHandler(domain.ErrEngineUnavailable, http.StatusServiceUnavailable, ErrorCodeEngineUnavailable),
		sentinelHandler(domain.ErrEngineUnreachable, http.StatusBadGateway, ErrorCodeEngineError),
		sentinelHandler(domain.ErrPermissionDenied, http.StatusBadGateway, ErrorCodeEngineError),
	}
	return s
}

// Routes registers the API routes on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/search", s.SearchGet)
	r.Post("/search", s.SearchPost)
	r.Get("/indexes", s.ListIndexes)
	r.Post("/indexes/{index}/documents", s.CreateDocument)
	r.Put("/indexes/{index}/documents/{id}", s.PutDocument)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// SearchGet handles GET /search?index=a&index=b&query=...
func (s *Server) SearchGet(w http.ResponseWriter, r *http.Request) {
	params, err := bindSearchParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}
	s.multiSearch(w, r, params.toRequest())
}

// SearchPost handles POST /search.
func (s *Server) SearchPost(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	req.Indexes = splitIndexes(req.Indexes)

	s.multiSearch(w, r, req)
}

func (s *Server) multiSearch(w http.ResponseWriter, r *http.Request, req SearchRequest) {
	searchReq, err := s.searchRequestFromDTO(req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	if len(s.search.ValidIndexes(searchReq.Indexes)) == 0 {
		s.handleDomainError(w, fmt.Errorf("%w: %s", domain.ErrNoValidIndexes, strings.Join(searchReq.Indexes, ",")))
		return
	}
	if !s.search.EngineAvailable() {
		s.handleDomainError(w, domain.ErrEngineUnavailable)
		return
	}

	ctx := logpkg.WithFields(r.Context(), zap.Strings("indexes", searchReq.Indexes))
	m := s.search.MultiSearch(ctx, searchReq)
	if m.PartialFailure() {
		reqLogger := logpkg.FromContext(ctx)
		for _, res := range m.Ordered() {
			if e, failed := res.Err(); failed {
				reqLogger.Warn("Index search failed",
					zap.String("index", e.IndexName()),
					zap.String("kind", string(e.Kind())),
					zap.String("message", e.Message()),
				)
			}
		}
	}
	writeJSON(w, http.StatusOK, searchResponseFromDomain(m))
}

// ListIndexes handles GET /indexes.
func (s *Server) ListIndexes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, IndexListResponse{Indexes: s.search.Indexes()})
}

// CreateDocument handles POST /indexes/{index}/documents.
func (s *Server) CreateDocument(w http.ResponseWriter, r *http.Request) {
	index, err := pathParam(r, "index")
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}
	s.indexDocument(w, r, index, "", http.StatusCreated)
}

// PutDocument handles PUT /indexes/{index}/documents/{id}.
func (s *Server) PutDocument(w http.ResponseWriter, r *http.Request) {
	index, err := pathParam(r, "index")
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}
	id, err := pathParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}
	s.indexDocument(w, r, index, id, http.StatusOK)
}

func (s *Server) indexDocument(w http.ResponseWriter, r *http.Request, index, id string, status int) {
	if s.indexer == nil {
		s.handleDomainError(w, domain.ErrEngineUnavailable)
		return
	}

	var req DocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	fields := make(map[string]string, len(req.Fields)+1)
	for k, v := range req.Fields {
		fields[k] = v
	}
	if req.Name != "" {
		fields[entity.NameField] = req.Name
	}

	docID, err := s.indexer.Index(r.Context(), index, id, indexuc.Document{
		Fields:     fields,
		Attributes: attributesToDomain(req.Attributes),
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	if status == http.StatusCreated {
		w.Header().Set("Location", fmt.Sprintf("/indexes/%s/documents/%s", index, docID))
	}
	writeJSON(w, status, DocumentResponse{ID: docID, Index: index})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, healthFromDomain(report))
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// searchRequestFromDTO validates caller input and applies pagination defaults.
func (s *Server) searchRequestFromDTO(req SearchRequest) (searchuc.Request, error) {
	text := strings.TrimSpace(req.Query)
	if text == "" {
		return searchuc.Request{}, fmt.Errorf("%w: query is required", domain.ErrInvalidRequest)
	}

	page := 1
	if req.Page != nil {
		page = *req.Page
	}
	if page < 1 || page > query.MaxPage {
		return searchuc.Request{}, fmt.Errorf("%w: page must be between 1 and %d",
			domain.ErrInvalidRequest, query.MaxPage)
	}

	perPage := s.paging.DefaultPerPage
	if req.PerPage != nil {
		perPage = *req.PerPage
	}
	if perPage < 1 || perPage > s.paging.MaxPerPage {
		return searchuc.Request{}, fmt.Errorf("%w: per_page must be between 1 and %d",
			domain.ErrInvalidRequest, s.paging.MaxPerPage)
	}

	order := query.Order(strings.ToLower(strings.TrimSpace(req.SortOrder)))
	if order != "" && !order.IsValid() {
		return searchuc.Request{}, fmt.Errorf("%w: sort_order must be %q or %q",
			domain.ErrInvalidRequest, query.Asc, query.Desc)
	}

	return searchuc.Request{
		Indexes:   req.Indexes,
		Query:     text,
		Page:      page,
		PerPage:   perPage,
		SortBy:    strings.TrimSpace(req.SortBy),
		SortOrder: order,
	}, nil
}

// splitIndexes accepts both repeated and comma-separated index names.
func splitIndexes(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				out = append(out, name)
			}
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client-safe message: the full text for caller
// mistakes, only the sentinel text for engine-side failures.
func safeDomainMessage(err error) string {
	for _, s := range []error{domain.ErrInvalidRequest, domain.ErrNoValidIndexes, domain.ErrUnknownIndex} {
		if errors.Is(err, s) {
			return err.Error()
		}
	}
	sentinels := []error{
		domain.ErrIndexNotFound,
		domain.ErrEngineUnavailable,
		domain.ErrEngineUnreachable,
		domain.ErrPermissionDenied,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
