package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/skillstage/server/internal/api/respond"
	"github.com/skillstage/server/internal/auth"
)

type contextKeyAuth string

const claimsKey contextKeyAuth = "claims"

// Authenticate verifies the bearer token and attaches the resolved identity
// to the request context. The role is taken from the token's embedded claim,
// not re-fetched from the store: role changes take effect on re-login.
func Authenticate(manager *auth.JWTManager, env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if manager == nil {
				respond.Error(w, r, http.StatusUnauthorized, "Unauthorized", nil, env)
				return
			}

			token, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
			if err != nil {
				respond.Error(w, r, http.StatusUnauthorized, "Token not provided", err, env)
				return
			}

			claims, err := manager.Verify(token)
			if err != nil {
				respond.Error(w, r, http.StatusUnauthorized, "Invalid or expired token", err, env)
				return
			}

			ctx := ContextWithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects authenticated requests whose role is outside the
// allowed set, naming the allowed roles in the message.
func RequireRole(env string, allowed ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := Claims(r)
			if claims == nil {
				respond.Error(w, r, http.StatusUnauthorized, "Token not provided", nil, env)
				return
			}

			if !auth.HasRole(claims.Role, allowed...) {
				message := fmt.Sprintf("You do not have access to this resource. Required roles: %s", auth.RoleList(allowed...))
				respond.Error(w, r, http.StatusForbidden, message, nil, env)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ContextWithClaims attaches an identity the way Authenticate does. Handlers
// under test use it to simulate an authenticated request.
func ContextWithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// Claims returns the identity attached by Authenticate, or nil.
func Claims(r *http.Request) *auth.Claims {
	if r == nil {
		return nil
	}
	if claims, ok := r.Context().Value(claimsKey).(*auth.Claims); ok {
		return claims
	}
	return nil
}
