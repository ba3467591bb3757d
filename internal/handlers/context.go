package handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/threadline/backend/internal/models"
)

// getUserIDFromContext returns the authenticated user's ID, or "" when the
// request is anonymous.
func getUserIDFromContext(c echo.Context) string {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok || claims == nil {
		return ""
	}
	return claims.UserID
}
