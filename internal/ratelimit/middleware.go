package ratelimit

import (
	"net/http"

	"github.com/kendinapp/kendin-backend/internal/clientip"
	"github.com/kendinapp/kendin-backend/internal/logger"
)

// Middleware rejects requests whose client key is over its limit by calling
// rejected instead of next. The key comes from clientip.FromRequest.
func Middleware(limiter Limiter, rejected http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info := clientip.FromRequest(r)
			if !limiter.Allow(r.Context(), info.Key) {
				logger.Ctx(r.Context()).Warn("rate limit exceeded", "client_ip", info.Primary)
				rejected(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
