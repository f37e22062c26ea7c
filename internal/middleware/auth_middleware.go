package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"mailpilot/internal/handler"
)

// AuthMiddleware rejects requests without an authenticated session and puts
// the owner id on the request context for handlers downstream.
func AuthMiddleware(authHandler *handler.AuthHandler) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ownerID, err := authHandler.CurrentOwner(c)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			}
			c.Set("owner_id", ownerID)
			return next(c)
		}
	}
}
