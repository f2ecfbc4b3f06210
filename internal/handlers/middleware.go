package handlers

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"steam4all/internal/logger"
	"steam4all/internal/security"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const LearnerContextKey ContextKey = "learner"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	tokens  *security.LearnerTokens
	csrf    *security.CSRFGenerator
	limiter *security.RateLimiter
	log     *logger.Logger
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(tokens *security.LearnerTokens, csrf *security.CSRFGenerator, limiter *security.RateLimiter, log *logger.Logger) *Middleware {
	return &Middleware{
		tokens:  tokens,
		csrf:    csrf,
		limiter: limiter,
		log:     log,
	}
}

// Learner identifies the browser. A valid learner cookie is reused; a
// missing or invalid one is replaced by a freshly minted learner id.
func (m *Middleware) Learner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var learnerID string
		if cookie, err := r.Cookie(security.LearnerCookie); err == nil {
			if id, err := m.tokens.Verify(cookie.Value); err == nil {
				learnerID = id
			} else {
				m.log.Debug("discarding learner cookie", "error", err)
			}
		}

		if learnerID == "" {
			learnerID = security.NewLearnerID()
			token, expires, err := m.tokens.Issue(learnerID)
			if err != nil {
				respondWithError(w, m.log, http.StatusInternalServerError, ErrInternalServerError, "failed to issue learner token", err)
				return
			}
			http.SetCookie(w, security.CreateSessionCookie(r, security.LearnerCookie, token, expires))
		}

		ctx := context.WithValue(r.Context(), LearnerContextKey, learnerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CSRFProtect rejects state-changing requests without the learner's token.
// The token is read from the form field or the X-CSRF-Token header.
func (m *Middleware) CSRFProtect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			next(w, r)
			return
		}
		token := r.Header.Get(security.CSRFHeader)
		if token == "" {
			r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
			token = r.FormValue(security.CSRFFormField)
		}
		if !m.csrf.ValidateToken(LearnerIDFromContext(r.Context()), token) {
			respondWithError(w, m.log, http.StatusForbidden, ErrInvalidCSRF, "", nil)
			return
		}
		next(w, r)
	}
}

// RateLimit throttles the expensive remote-backed actions per learner
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := LearnerIDFromContext(r.Context())
		if key == "" {
			key = security.GetClientIP(r)
		}
		if ok, retry := m.limiter.Allow(key); !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retry.Seconds()))))
			respondWithError(w, m.log, http.StatusTooManyRequests, ErrTooManyRequests, "", nil)
			return
		}
		next(w, r)
	}
}

// CSRFToken returns the token to embed in pages for the current learner
func (m *Middleware) CSRFToken(r *http.Request) string {
	token, _ := m.csrf.GenerateToken(LearnerIDFromContext(r.Context()))
	return token
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Logging middleware logs HTTP requests
func Logging(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start),
			)
		})
	}
}

// LearnerIDFromContext retrieves the learner id set by the Learner middleware
func LearnerIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(LearnerContextKey).(string)
	return id
}
