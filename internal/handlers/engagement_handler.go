package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/nayonf/inkline/backend/internal/common"
	"github.com/nayonf/inkline/backend/internal/engagement"
	"github.com/nayonf/inkline/backend/internal/models"
	"github.com/nayonf/inkline/backend/internal/notifications"
)

// EngagementHandler handles view counting and like toggling for articles
type EngagementHandler struct {
	engagementService *engagement.Service
	dispatcher        *notifications.Dispatcher
}

// NewEngagementHandler creates a new EngagementHandler
func NewEngagementHandler(engagementService *engagement.Service, dispatcher *notifications.Dispatcher) *EngagementHandler {
	return &EngagementHandler{
		engagementService: engagementService,
		dispatcher:        dispatcher,
	}
}

// RegisterPublicRoutes registers routes that do not require authentication
func (h *EngagementHandler) RegisterPublicRoutes(g *echo.Group) {
	g.POST("/articles/:article_id/view", h.RegisterView)
}

// RegisterProtectedRoutes registers routes behind the JWT middleware
func (h *EngagementHandler) RegisterProtectedRoutes(g *echo.Group) {
	g.PUT("/articles/:article_id/like", h.SetLikeStatus)
	g.GET("/articles/:article_id/like/status", h.GetLikeStatus)
}

// RegisterView counts a view for the article, keyed by the requester's
// network address so repeated requests within the dedup window count once.
func (h *EngagementHandler) RegisterView(c echo.Context) error {
	articleID := c.Param("article_id")
	clientID := c.RealIP()

	article, err := h.engagementService.RegisterView(c.Request().Context(), articleID, clientID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Article not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, article)
}

// SetLikeStatus moves the authenticated user's like for the article to the
// requested state. Idempotent: repeating the same desired state changes nothing.
func (h *EngagementHandler) SetLikeStatus(c echo.Context) error {
	claims := getUserClaims(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	articleID := c.Param("article_id")

	var req models.SetLikeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	article, changed, err := h.engagementService.SetLikeStatus(c.Request().Context(), articleID, claims.UserID, *req.Liked)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Article not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Alert the author on a fresh like of someone else's article. Repeated
	// likes of the same article stay silent.
	if changed && *req.Liked && article.AuthorID != claims.UserID {
		_, notifyErr := h.dispatcher.Notify(c.Request().Context(), notifications.NotifyInput{
			Kind:        models.NotificationLike,
			RecipientID: article.AuthorID,
			ActorID:     claims.UserID,
			Title:       "New like",
			Message:     claims.Name + " liked your article \"" + article.Title + "\"",
			Link:        fmt.Sprintf("/articles/%s", articleID),
			SourceID:    articleID,
		})
		if notifyErr != nil {
			// The like itself succeeded; don't fail the request over the alert.
			c.Logger().Warnf("like notification failed: %v", notifyErr)
		}
	}

	return c.JSON(http.StatusOK, article)
}

// GetLikeStatus reports whether the authenticated user currently likes the article
func (h *EngagementHandler) GetLikeStatus(c echo.Context) error {
	claims := getUserClaims(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	articleID := c.Param("article_id")

	liked, err := h.engagementService.HasUserLiked(c.Request().Context(), articleID, claims.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"article_id": articleID, "user_id": claims.UserID, "liked": liked})
}
