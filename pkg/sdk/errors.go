package labsearch

import "github.com/kailas-cloud/labsearch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidRequest    = domain.ErrInvalidRequest
	ErrNoValidIndexes    = domain.ErrNoValidIndexes
	ErrUnknownIndex      = domain.ErrUnknownIndex
	ErrIndexNotFound     = domain.ErrIndexNotFound
	ErrEngineUnreachable = domain.ErrEngineUnreachable
	ErrPermissionDenied  = domain.ErrPermissionDenied
)
