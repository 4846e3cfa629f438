package middleware

import (
	"net/http"
	"time"
)

// RequestObserver receives one observation per served request
type RequestObserver interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}

// Metrics reports each request to observer, labelled with the mux pattern
// that matched it. Anything between it and the ServeMux must pass the
// request through unchanged, since the mux sets r.Pattern in place.
func Metrics(observer RequestObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			observer.ObserveRequest(r.Method, r.Pattern, status, time.Since(start))
		})
	}
}
