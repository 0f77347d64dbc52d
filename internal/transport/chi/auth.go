package chi

import (
	"net/http"
	"strings"
)

// exemptPaths bypass authentication.
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// queryPathSuffixes are POST routes that only read.
var queryPathSuffixes = []string{"/facets/select", "/listing"}

// APIKeys are the accepted bearer tokens by access level.
type APIKeys struct {
	Full     []string
	ReadOnly []string
}

type access int

const (
	accessNone access = iota
	accessRead
	accessFull
)

// BearerAuthMiddleware validates Bearer tokens. Read-only keys may call
// GET and HEAD routes and the facet and listing queries.
// Without any key, authentication is disabled.
func BearerAuthMiddleware(keys APIKeys) func(http.Handler) http.Handler {
	levels := make(map[string]access, len(keys.Full)+len(keys.ReadOnly))
	for _, k := range keys.ReadOnly {
		if k != "" {
			levels[k] = accessRead
		}
	}
	for _, k := range keys.Full {
		if k != "" {
			levels[k] = accessFull
		}
	}

	return func(next http.Handler) http.Handler {
		if len(levels) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized,
					ErrorCodeUnauthorized, "authorization header must use Bearer scheme")
				return
			}

			switch levels[token] {
			case accessFull:
				next.ServeHTTP(w, r)
			case accessRead:
				if !isRead(r) {
					writeError(w, http.StatusForbidden, ErrorCodeForbidden, "api key is read-only")
					return
				}
				next.ServeHTTP(w, r)
			default:
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, "invalid api key")
			}
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, prefix) {
		return "", false
	}
	return strings.TrimSpace(h[len(prefix):]), true
}

func isRead(r *http.Request) bool {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		return true
	case http.MethodPost:
		for _, suffix := range queryPathSuffixes {
			if strings.HasSuffix(r.URL.Path, suffix) {
				return true
			}
		}
	}
	return false
}
