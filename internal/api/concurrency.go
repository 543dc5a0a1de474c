package api

import "net/http"

// QueryLimit restricts the number of concurrent /query requests. Each
// query walks the full store snapshot, so unbounded concurrency would
// multiply peak memory by the number of in-flight requests.
func QueryLimit(limit int) func(http.Handler) http.Handler {
	sem := make(chan struct{}, limit)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
				next.ServeHTTP(w, r)
			default:
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"error":"server busy, try again"}`))
			}
		})
	}
}
