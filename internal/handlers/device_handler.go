package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/nayonf/inkline/backend/internal/models"
	"github.com/nayonf/inkline/backend/internal/repositories"
)

// DeviceHandler registers FCM device tokens for offline push delivery
type DeviceHandler struct {
	deviceTokenRepository repositories.DeviceTokenRepository
}

// NewDeviceHandler creates a new DeviceHandler
func NewDeviceHandler(deviceRepo repositories.DeviceTokenRepository) *DeviceHandler {
	return &DeviceHandler{deviceTokenRepository: deviceRepo}
}

// RegisterDeviceRoutes registers device token routes
func (h *DeviceHandler) RegisterDeviceRoutes(g *echo.Group) {
	g.POST("/devices", h.RegisterDevice)
}

// RegisterDevice stores the caller's FCM token; re-registering is a no-op.
func (h *DeviceHandler) RegisterDevice(c echo.Context) error {
	claims := getUserClaims(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.RegisterDeviceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token := &models.DeviceToken{UserID: claims.UserID, Token: req.Token}
	if err := h.deviceTokenRepository.RegisterToken(c.Request().Context(), token); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true})
}
