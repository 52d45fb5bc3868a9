package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

type ctxKey struct{}

// Route identifies a request that bypasses authentication.
type Route struct {
	Method string
	Path   string
}

// WithUsername returns a copy of ctx carrying the authenticated username.
func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, ctxKey{}, username)
}

// UsernameFromContext returns the authenticated username, if any.
func UsernameFromContext(ctx context.Context) (string, bool) {
	u, ok := ctx.Value(ctxKey{}).(string)
	return u, ok && u != ""
}

// Filter rejects every request without a valid bearer token with 401, except
// the public routes. It wraps the whole router so unknown paths are rejected
// too.
func Filter(tokens *TokenIssuer, public ...Route) func(http.Handler) http.Handler {
	open := make(map[Route]struct{}, len(public))
	for _, r := range public {
		open[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := open[Route{Method: r.Method, Path: r.URL.Path}]; ok {
				next.ServeHTTP(w, r)
				return
			}
			header := r.Header.Get(HeaderName)
			if !strings.HasPrefix(header, TokenPrefix) {
				unauthorized(w, r, "missing bearer token")
				return
			}
			username, err := tokens.Verify(strings.TrimPrefix(header, TokenPrefix))
			if err != nil {
				unauthorized(w, r, "invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUsername(r.Context(), username)))
		})
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request, reason string) {
	zerolog.Ctx(r.Context()).Warn().
		Str("path", r.URL.Path).
		Str("reason", reason).
		Msg("rejected unauthenticated request")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
}
