package chi

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"
)

// APIKeyHeader is accepted as an alternative to the Authorization header.
const APIKeyHeader = "X-API-Key"

// publicPaths are served without an API key.
var publicPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// apiKeySet holds key digests so lookups compare in constant time.
type apiKeySet [][sha256.Size]byte

func newAPIKeySet(keys []string) apiKeySet {
	set := make(apiKeySet, 0, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			set = append(set, sha256.Sum256([]byte(k)))
		}
	}
	return set
}

func (s apiKeySet) contains(key string) bool {
	sum := sha256.Sum256([]byte(key))
	found := 0
	for i := range s {
		found |= subtle.ConstantTimeCompare(s[i][:], sum[:])
	}
	return found == 1
}

// credential extracts the presented key. Authorization wins over X-API-Key.
func credential(r *http.Request) (key string, errMsg string) {
	if auth := r.Header.Get("Authorization"); auth != "" {
		scheme, token, ok := strings.Cut(auth, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return "", "authorization header must use Bearer scheme"
		}
		if token = strings.TrimSpace(token); token == "" {
			return "", "empty bearer token"
		}
		return token, ""
	}
	if key := r.Header.Get(APIKeyHeader); key != "" {
		return key, ""
	}
	return "", "missing api key"
}

// APIKeyMiddleware rejects requests without a configured API key.
// With no keys configured authentication is off.
func APIKeyMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	keys := newAPIKeySet(apiKeys)

	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := publicPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			key, msg := credential(r)
			if msg != "" {
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, msg)
				return
			}
			if !keys.contains(key) {
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, "invalid api key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
