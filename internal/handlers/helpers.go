package handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/nayonf/inkline/backend/internal/models"
)

// getUserClaims returns the verified claims stored by the JWT middleware, or
// nil for unauthenticated requests.
func getUserClaims(c echo.Context) *models.JwtCustomClaims {
	claims, _ := c.Get("user").(*models.JwtCustomClaims)
	return claims
}

func getUserIDFromContext(c echo.Context) uint {
	if claims := getUserClaims(c); claims != nil {
		return claims.UserID
	}
	return 0
}
