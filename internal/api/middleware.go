package api

import (
	"context"
	"net/http"
	"strings"

	"nutrigenie/internal/session"

	"golang.org/x/time/rate"
)

type contextKey string

const sessionContextKey contextKey = "session"

const msgRateLimited = "Too many requests. Please wait a moment and try again."

// RequireSession accepts requests carrying a valid bearer token and stores
// its session id in the request context.
func RequireSession(signer *session.TokenSigner) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || tokenString == "" {
				writeError(w, session.ErrNotLoggedIn)
				return
			}

			sessionID, err := signer.Parse(tokenString)
			if err != nil {
				writeError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionID returns the session id stored by RequireSession.
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionContextKey).(string)
	return id
}

// RateLimit shares one token bucket across every request it wraps. A
// non-positive perMinute disables it.
func RateLimit(perMinute, burst int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if burst <= 0 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": msgRateLimited})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
