package opensearch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/opensearch-project/opensearch-go/v4"

	"github.com/kailas-cloud/labsearch/internal/db"
)

// ResponseError is a non-2xx OpenSearch reply. Err is the client's parsed error.
type ResponseError struct {
	Status int
	Type   string
	Reason string
	Err    error
}

func (e *ResponseError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("opensearch: status %d: %s", e.Status, e.Reason)
	}
	return fmt.Sprintf("opensearch: status %d: %s: %s", e.Status, e.Type, e.Reason)
}

func (e *ResponseError) Unwrap() error { return e.Err }

// wrapErr turns a client error into *db.Error. Context errors stay context
// errors, failures without a response are ErrUnavailable, and replies are
// mapped by statusError.
func wrapErr(ctx context.Context, op string, status int, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
		return &db.Error{Op: op, Err: fmt.Errorf("%w: %w", ctxErr, err)}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &db.Error{Op: op, Err: err}
	}
	if status == 0 {
		return &db.Error{Op: op, Err: fmt.Errorf("%w: %w", db.ErrUnavailable, err)}
	}
	return &db.Error{Op: op, Err: statusError(status, err)}
}

// statusError wraps a reply error with the matching db sentinel. Exception
// types decide first; reasons are only read for sort failures, since OpenSearch
// echoes the user's query text into them.
func statusError(status int, err error) error {
	re := &ResponseError{Status: status, Err: err}
	types, reasons := describe(err, re)

	var sentinel error
	switch {
	case strings.Contains(types, "index_not_found_exception"):
		sentinel = db.ErrIndexNotFound
	case strings.Contains(types, "resource_already_exists_exception"):
		sentinel = db.ErrIndexExists
	case status == http.StatusUnauthorized, status == http.StatusForbidden,
		strings.Contains(types, "security_exception"):
		sentinel = db.ErrForbidden
	case isSortFailure(reasons):
		sentinel = db.ErrSortUnsupported
	case status == http.StatusNotFound:
		sentinel = db.ErrIndexNotFound
	case status == http.StatusBadRequest:
		sentinel = db.ErrBadQuery
	case status == http.StatusServiceUnavailable, status == http.StatusBadGateway,
		status == http.StatusGatewayTimeout:
		sentinel = db.ErrUnavailable
	default:
		return re
	}
	return fmt.Errorf("%w: %w", sentinel, re)
}

// describe fills re from the client's structured error and returns lower-cased
// blobs of every exception type and every reason in the cause list.
func describe(err error, re *ResponseError) (types, reasons string) {
	var structErr *opensearch.StructError
	var stringErr *opensearch.StringError
	switch {
	case errors.As(err, &structErr):
		re.Type = structErr.Err.Type
		re.Reason = structErr.Err.Reason

		var tb, rb strings.Builder
		tb.WriteString(structErr.Err.Type)
		rb.WriteString(structErr.Err.Reason)
		for _, rc := range structErr.Err.RootCause {
			tb.WriteString(" " + rc.Type)
			rb.WriteString(" " + rc.Reason)
		}
		return strings.ToLower(tb.String()), strings.ToLower(rb.String())
	case errors.As(err, &stringErr):
		re.Reason = stringErr.Err
	default:
		re.Reason = err.Error()
	}
	// Unstructured bodies carry no separate type field.
	msg := strings.ToLower(re.Reason)
	return msg, msg
}

func isSortFailure(reasons string) bool {
	return strings.Contains(reasons, "fielddata is disabled") ||
		(strings.Contains(reasons, "no mapping found for") && strings.Contains(reasons, "sort")) ||
		strings.Contains(reasons, "not optimised for operations that require per-document field data")
}
