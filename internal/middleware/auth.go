package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"fable-server/internal/models"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// TokenVerifier verifies a token string and returns its claims.
// Errors may be models.ErrTokenInvalid, models.ErrTokenExpired,
// models.ErrTokenMalformed.
type TokenVerifier func(ctx context.Context, tokenString string) (*models.Claims, error)

// Echo context keys for the authenticated user.
const (
	UserIDKey = "user_id"
	RolesKey  = "user_roles"
)

// Auth creates an Echo middleware that verifies the JWT and, when
// requiredRoles is non-empty, checks that the user holds at least one of
// them. UserID and roles are stored both in the Echo context and in the
// request context.
func Auth(verifier TokenVerifier, logger *zap.Logger, requiredRoles ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.With(zap.String("path", c.Request().URL.Path))

			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				log.Warn("Authorization header missing")
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized: Missing token")
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				log.Warn("Malformed Authorization header")
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized: Malformed token header")
			}
			tokenString := parts[1]

			claims, err := verifier(c.Request().Context(), tokenString)
			if err != nil {
				status := http.StatusUnauthorized
				msg := "Unauthorized: Invalid token"
				if errors.Is(err, models.ErrTokenExpired) {
					msg = "Unauthorized: Token expired"
				} else if errors.Is(err, models.ErrTokenMalformed) || errors.Is(err, models.ErrTokenInvalid) {
					// Same message for malformed and invalid tokens.
				} else {
					log.Error("Unexpected token verification error", zap.Error(err))
					status = http.StatusInternalServerError
					msg = "Internal server error during token verification"
				}
				log.Warn("Token verification failed", zap.Error(err))
				return echo.NewHTTPError(status, msg)
			}

			if !models.HasAnyRole(claims.Roles, requiredRoles...) {
				log.Warn("User does not have required role",
					zap.Stringer("userID", claims.UserID),
					zap.Strings("userRoles", claims.Roles),
				)
				return echo.NewHTTPError(http.StatusForbidden, "Forbidden: Insufficient permissions")
			}

			c.Set(UserIDKey, claims.UserID)
			c.Set(RolesKey, claims.Roles)

			ctx := context.WithValue(c.Request().Context(), models.UserContextKey, claims.UserID)
			ctx = context.WithValue(ctx, models.RolesContextKey, claims.Roles)
			c.SetRequest(c.Request().WithContext(ctx))

			log.Debug("User authorized", zap.Stringer("userID", claims.UserID), zap.Strings("roles", claims.Roles))
			return next(c)
		}
	}
}
