package auth

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/logger"
	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/models"
	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/utils"
)

// GatewayConfig drives the CORS and rate limiting behavior of the
// request middleware.
type GatewayConfig struct {
	AllowedOrigins []string
	RPS            float64
	Burst          int
}

type ctxUserKey struct{}

// Middleware handles CORS, rate limiting and identity resolution for
// every request. The resolved user lands in the request context.
func (s *Service) Middleware(cfg GatewayConfig) func(http.Handler) http.Handler {
	// rate limiters keyed by caller email or remote ip
	limiters := &limiterPool{cfg: cfg}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// log request (redacts sensitive headers)
			logger.LogRequest(r)

			// cors preflight
			origin := r.Header.Get("Origin")
			if origin != "" && originAllowed(origin, cfg.AllowedOrigins) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,PATCH,OPTIONS")
				w.Header().Set("Access-Control-Max-Age", "600")
				w.Header().Set("Access-Control-Allow-Headers", "Authorization,Content-Type,X-User-Email")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			// unauthenticated probe endpoints
			if (r.URL.Path == "/healthz" || r.URL.Path == "/readyz") && r.Method == http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			// rate limiting keyed by identity, falling back to client ip
			key := strings.ToLower(strings.TrimSpace(r.Header.Get(IdentityHeader)))
			if key == "" {
				key = clientIP(r)
			}
			if !limiters.Allow(key) {
				utils.JSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
				logger.Log.Warn("rate_limited", "key", key, "path", r.URL.Path)
				return
			}

			user := s.CurrentUser(r)
			logger.Log.Debug("request_identity", "user", user.ID, "path", r.URL.Path)
			ctx := context.WithValue(r.Context(), ctxUserKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the user resolved by the middleware, or false
// when the request bypassed it.
func UserFromContext(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(ctxUserKey{}).(models.User)
	return u, ok
}

func originAllowed(origin string, allowed []string) bool {
	if len(allowed) == 0 {
		return false
	}
	for _, a := range allowed {
		if a == "*" || strings.EqualFold(a, origin) {
			return true
		}
	}
	return false
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
