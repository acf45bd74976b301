package middleware

import (
	"context"
	"strings"

	"connectrpc.com/connect"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// TokenKey is the context key for the bearer token presented by the caller.
const TokenKey contextKey = "session_token"

// GetToken extracts the session token from the context.
// Returns empty string if none was presented.
func GetToken(ctx context.Context) string {
	token, _ := ctx.Value(TokenKey).(string)
	return token
}

// WithToken returns a copy of ctx carrying token.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, TokenKey, token)
}

// BearerToken returns an interceptor that copies the token from the
// "Authorization: Bearer <token>" header into the context. It never rejects a
// request: each operation validates the token itself, so public procedures
// (Register, Login) work without one and protected ones fail Unauthenticated.
func BearerToken() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if token := parseBearer(req.Header().Get("Authorization")); token != "" {
				ctx = WithToken(ctx, token)
			}
			return next(ctx, req)
		}
	}
}

func parseBearer(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
