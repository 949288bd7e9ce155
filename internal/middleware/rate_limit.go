package middleware

import (
	"net/http"
	"time"

	pkghttp "github.com/BradenHooton/shopflow/pkg/http"
	"github.com/go-chi/httprate"
)

// DefaultRequestsPerMinute applies when no limit is configured
const DefaultRequestsPerMinute = 5

// RateLimitByIP limits each client IP to requestsPerMinute on the wrapped routes
func RateLimitByIP(requestsPerMinute int) func(next http.Handler) http.Handler {
	if requestsPerMinute <= 0 {
		requestsPerMinute = DefaultRequestsPerMinute
	}

	return httprate.Limit(
		requestsPerMinute,
		time.Minute,
		httprate.WithKeyByRealIP(),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			pkghttp.WriteTooManyRequests(w, "Too many requests. Please try again later.")
		}),
	)
}
