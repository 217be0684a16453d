package db

import "errors"

// Sentinel errors for engine operations. Drivers wrap them together with the raw
// engine error so both remain reachable through errors.Is / errors.As.
var (
	ErrIndexNotFound   = errors.New("db: index not found")
	ErrIndexExists     = errors.New("db: index already exists")
	ErrSortUnsupported = errors.New("db: field cannot be sorted on")
	ErrForbidden       = errors.New("db: permission denied")
	ErrBadQuery        = errors.New("db: malformed query")
	ErrUnavailable     = errors.New("db: engine unavailable")
)

// Op names used for error context.
const (
	OpPing        = "PING"
	OpCreateIndex = "CREATE_INDEX"
	OpIndexInfo   = "INDEX_INFO"
	OpSearch      = "SEARCH"
	OpPut         = "PUT_DOCUMENT"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
