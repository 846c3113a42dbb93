package middleware

import (
	"log/slog"
	"strings"

	"github.com/labstack/echo/v4"

	deliverycontext "memantra/internal/delivery/context"
	"memantra/internal/delivery/http/response"
	"memantra/internal/domain/service"
)

// AuthMiddleware guards routes behind bearer-token authentication.
type AuthMiddleware struct {
	tokenSvc service.TokenService
	logger   *slog.Logger
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc, logger: logger}
}

// Authenticate validates the access token and stores the caller's identity
// on the context. Verification never takes the whole process down: a panic
// inside the token library is converted to a 401.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				m.logger.Error("Panic during token verification", slog.Any("panic", r))
				err = response.Unauthorized(c, "Authentication failed")
			}
		}()

		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			return response.Unauthorized(c, "Authentication required")
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader || strings.TrimSpace(tokenString) == "" {
			return response.Unauthorized(c, "Authentication required")
		}

		claims, err := m.tokenSvc.Verify(tokenString)
		if err != nil {
			return response.Unauthorized(c, "Invalid or expired token")
		}

		deliverycontext.SetIdentity(c, claims.UserID, claims.Email)

		return next(c)
	}
}
