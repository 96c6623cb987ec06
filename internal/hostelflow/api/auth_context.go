package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/Sanjay-nithin/campuscore-server/internal/auth"
	domainerrors "github.com/Sanjay-nithin/campuscore-server/internal/errors"
	"github.com/Sanjay-nithin/campuscore-server/internal/hostelflow/domain"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

// claimsKey is the context key for the verified access token claims.
const claimsKey ctxKey = "claims"

// GetClaims returns the verified token claims from context.
// Returns 401 error if the request carried no valid token.
func GetClaims(ctx context.Context) (*auth.AccessClaims, error) {
	claims, ok := ctx.Value(claimsKey).(*auth.AccessClaims)
	if !ok || claims == nil {
		return nil, domainerrors.Unauthorized("Authentication required")
	}
	return claims, nil
}

// setClaims stores the verified claims in context.
func setClaims(ctx context.Context, claims *auth.AccessClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// authMiddleware validates Bearer tokens and stores the claims in context.
// If no token is present or it fails verification, the request continues
// without claims; handlers use GetClaims to reject where auth is required.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := s.tokens.VerifyAccessToken(authHeader[7:])
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(setClaims(r.Context(), claims)))
	})
}

// RequireUser returns the authenticated user, fetched fresh from the store
// so deactivated or deleted accounts lose access as soon as they change.
func (s *Server) RequireUser(ctx context.Context) (*domain.User, error) {
	claims, err := GetClaims(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.store.GetUser(ctx, claims.UserID)
	if err != nil {
		return nil, domainerrors.Unauthorized("User not found")
	}
	if !user.IsActive {
		return nil, domainerrors.Unauthorized("User account is disabled")
	}

	return user, nil
}

// RequireProvider validates the user is authenticated and holds the
// service provider role.
func (s *Server) RequireProvider(ctx context.Context) (*domain.User, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	if !user.IsProvider {
		return nil, domainerrors.Forbidden("User is not a service provider")
	}

	return user, nil
}

// RequireAdmin validates the user is authenticated and has the admin role.
func (s *Server) RequireAdmin(ctx context.Context) (*domain.User, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	if !user.IsAdmin {
		return nil, domainerrors.Forbidden("Admin access required")
	}

	return user, nil
}
