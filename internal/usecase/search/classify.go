package search

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/kailas-cloud/labsearch/internal/domain"
	"github.com/kailas-cloud/labsearch/internal/domain/search/result"
)

// permissionWords mark an otherwise unclassified engine failure as an
// authorization rejection.
var permissionWords = []string{
	"security_exception", "unauthorized", "forbidden", "noperm", "authentication required",
}

// classify maps a repository error onto the failure taxonomy. Sentinels win
// over everything; wording is consulted only for errors nothing else matched.
func classify(err error) result.Kind {
	var netErr net.Error
	switch {
	case errors.Is(err, domain.ErrIndexNotFound):
		return result.KindIndexNotFound
	case errors.Is(err, domain.ErrPermissionDenied):
		return result.KindPermission
	case errors.Is(err, domain.ErrEngineUnreachable):
		return result.KindConnection
	case errors.Is(err, domain.ErrMalformedQuery), errors.Is(err, domain.ErrSortUnsupported):
		return result.KindQuery
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return result.KindTimeout
	case errors.As(err, &netErr):
		if netErr.Timeout() {
			return result.KindTimeout
		}
		return result.KindConnection
	case mentionsPermission(err):
		return result.KindPermission
	default:
		return result.KindUnknown
	}
}

func mentionsPermission(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, w := range permissionWords {
		if strings.Contains(msg, w) {
			return true
		}
	}
	return false
}
