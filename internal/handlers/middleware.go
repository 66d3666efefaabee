package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"bably/internal/metrics"
	"bably/internal/security"
	"bably/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const ClaimsContextKey ContextKey = "claims"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	responder
	tokens  *security.TokenManager
	demo    security.DemoPolicy
	limiter *security.RateLimiter
	metrics *metrics.Metrics
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(
	tokens *security.TokenManager,
	demo security.DemoPolicy,
	limiter *security.RateLimiter,
	m *metrics.Metrics,
	log *zap.SugaredLogger,
) *Middleware {
	return &Middleware{
		responder: responder{log: log},
		tokens:    tokens,
		demo:      demo,
		limiter:   limiter,
		metrics:   m,
	}
}

// DecodeToken puts verified bearer claims in the request context. Requests
// without a valid token carry on anonymously and the route guards decide.
func (m *Middleware) DecodeToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims := m.bearerClaims(r); claims != nil {
			r = r.WithContext(context.WithValue(r.Context(), ClaimsContextKey, claims))
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) bearerClaims(r *http.Request) *security.Claims {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		return nil
	}
	claims, err := m.tokens.Parse(token)
	if err != nil {
		m.log.Debugw("ignoring invalid bearer token", "path", r.URL.Path)
		return nil
	}
	return claims
}

// GetClaimsFromContext retrieves the caller's claims, or nil when anonymous
func GetClaimsFromContext(ctx context.Context) *security.Claims {
	claims, ok := ctx.Value(ClaimsContextKey).(*security.Claims)
	if !ok {
		return nil
	}
	return claims
}

func identityFrom(r *http.Request) service.Identity {
	claims := GetClaimsFromContext(r.Context())
	if claims == nil {
		return service.Identity{}
	}
	return service.Identity{UserID: claims.ID, Email: claims.Email}
}

// RequireAuth requires a signed-in caller. The demo account passes.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if GetClaimsFromContext(r.Context()) == nil {
			m.respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}
		next(w, r)
	}
}

// RequireAccount requires a signed-in caller other than the demo account.
func (m *Middleware) RequireAccount(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		if m.demo.IsReadOnlyDemoIdentity(GetClaimsFromContext(r.Context()).Email) {
			m.respondWithError(w, http.StatusUnauthorized, service.ErrDemoReadOnly.Error(), "", nil)
			return
		}
		next(w, r)
	})
}

// RequireSelf requires the {email} path variable to be the caller's own.
func (m *Middleware) RequireSelf(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		claims := GetClaimsFromContext(r.Context())
		if !strings.EqualFold(mux.Vars(r)[varEmail], claims.Email) {
			m.respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}
		next(w, r)
	})
}

// RateLimit throttles a route per client IP.
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !m.limiter.Allow(security.GetClientIP(r)) {
			m.respondWithError(w, http.StatusTooManyRequests, ErrTooManyRequests, "", nil)
			return
		}
		next(w, r)
	}
}

type responseWriterWithStatus struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriterWithStatus) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}

// Logging logs every request and records it in the request metrics,
// labelled by route template so ids do not explode cardinality.
func (m *Middleware) Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)
		rw := &responseWriterWithStatus{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		elapsed := time.Since(start)
		route := "unmatched"
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		m.metrics.ObserveRequest(r.Method, route, rw.status, elapsed)
		m.log.Infow("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.status,
			"duration", elapsed,
			"request_id", requestID)
	})
}

// SecurityHeaders sets the headers every JSON response carries
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}
