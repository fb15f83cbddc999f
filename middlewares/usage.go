package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const usageRecordTimeout = 2 * time.Second

type UsageRecorder interface {
	Record(ctx context.Context, method, path string) error
}

// RouteMatcher resolves the registered pattern a request would be served by.
// *http.ServeMux implements it.
type RouteMatcher interface {
	Handler(r *http.Request) (h http.Handler, pattern string)
}

// UsageCounter counts requests that match a registered route under prefix.
// Requests nothing is registered for are not counted, and routes with path
// wildcards are keyed by their pattern ("/api/v1/update/{id}") so the number
// of rows stays bounded by the route table. Counting is best-effort: a
// storage failure is logged and the request proceeds.
func UsageCounter(recorder UsageRecorder, routes RouteMatcher, prefix string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodOptions {
				if endpoint, ok := routeEndpoint(routes, r, prefix); ok {
					ctx, cancel := context.WithTimeout(r.Context(), usageRecordTimeout)
					if err := recorder.Record(ctx, r.Method, endpoint); err != nil {
						slog.ErrorContext(r.Context(), "failed to record usage",
							"method", r.Method,
							"path", endpoint,
							"error", err,
						)
					}
					cancel()
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func routeEndpoint(routes RouteMatcher, r *http.Request, prefix string) (string, bool) {
	if !strings.HasPrefix(r.URL.Path, prefix) {
		return "", false
	}

	_, pattern := routes.Handler(r)
	// patterns look like "GET /api/v1/checkUser" or "/api/v1/..."
	if _, path, found := strings.Cut(pattern, " "); found {
		pattern = path
	}
	if !strings.HasPrefix(pattern, prefix) {
		return "", false
	}

	if strings.Contains(pattern, "{") {
		return pattern, true
	}
	return r.URL.Path, true
}
