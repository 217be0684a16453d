package domain

import "errors"

var (
	// ErrInvalidRequest signals a malformed caller request (bad page, per_page, sort order).
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNoValidIndexes signals that none of the requested indexes is registered.
	ErrNoValidIndexes = errors.New("no valid indexes requested")
	// ErrUnknownIndex signals an index name outside the registry.
	ErrUnknownIndex = errors.New("unknown index")
	// ErrEngineUnavailable signals that no search engine is configured.
	ErrEngineUnavailable = errors.New("search engine unavailable")

	// ErrIndexNotFound signals that the engine has no such index.
	ErrIndexNotFound = errors.New("index not found")
	// ErrEngineUnreachable signals a transport-level failure talking to the engine.
	ErrEngineUnreachable = errors.New("search engine unreachable")
	// ErrPermissionDenied signals that the engine rejected the call for authorization reasons.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrMalformedQuery signals that the engine rejected the query structure.
	ErrMalformedQuery = errors.New("malformed query")
	// ErrSortUnsupported signals that the engine cannot sort on the requested field.
	ErrSortUnsupported = errors.New("sort field not sortable")
)
