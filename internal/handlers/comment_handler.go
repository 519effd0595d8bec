package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/nayonf/inkline/backend/internal/common"
	"github.com/nayonf/inkline/backend/internal/models"
	"github.com/nayonf/inkline/backend/internal/notifications"
	"github.com/nayonf/inkline/backend/internal/repositories"
)

// CommentHandler handles HTTP requests related to comments. Creating a comment
// is the canonical workflow that alerts other users through the dispatcher.
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	articleRepository repositories.ArticleRepository
	dispatcher        *notifications.Dispatcher
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, articleRepo repositories.ArticleRepository, dispatcher *notifications.Dispatcher) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		articleRepository: articleRepo,
		dispatcher:        dispatcher,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/articles/:article_id/comments", h.CreateComment)
	g.GET("/articles/:article_id/comments", h.GetCommentsByArticleID)
}

// CreateComment creates a new comment on an article and notifies the article's
// author (and, for replies, the parent comment's author). Nobody is ever
// notified of their own action.
func (h *CommentHandler) CreateComment(c echo.Context) error {
	claims := getUserClaims(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	articleID := c.Param("article_id")

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	article, err := h.articleRepository.GetArticleByID(c.Request().Context(), articleID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Article not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var parent *models.Comment
	if req.ParentID != nil {
		parent, err = h.commentRepository.GetCommentByID(c.Request().Context(), *req.ParentID)
		if err != nil || parent.ArticleID != articleID {
			return echo.NewHTTPError(http.StatusNotFound, "Parent comment not found")
		}
	}

	comment := &models.Comment{
		ArticleID: articleID,
		UserID:    claims.UserID,
		ParentID:  req.ParentID,
		Content:   req.Content,
	}

	if err := h.commentRepository.CreateComment(c.Request().Context(), comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Increment comments count in the article
	go h.articleRepository.IncrementCommentsCount(context.Background(), articleID)

	h.notifyForComment(c, article, comment, parent, claims)

	return c.JSON(http.StatusCreated, comment)
}

// notifyForComment fires the comment/reply notifications. Failures are logged
// and never fail the comment creation: the comment row is already durable.
func (h *CommentHandler) notifyForComment(c echo.Context, article *models.Article, comment *models.Comment, parent *models.Comment, claims *models.JwtCustomClaims) {
	link := fmt.Sprintf("/articles/%s#comment-%d", comment.ArticleID, comment.ID)
	sourceID := strconv.FormatUint(uint64(comment.ID), 10)

	if article.AuthorID != claims.UserID {
		_, err := h.dispatcher.Notify(c.Request().Context(), notifications.NotifyInput{
			Kind:        models.NotificationComment,
			RecipientID: article.AuthorID,
			ActorID:     claims.UserID,
			Title:       "New comment",
			Message:     claims.Name + " commented on your article \"" + article.Title + "\"",
			Link:        link,
			SourceID:    sourceID,
		})
		if err != nil {
			c.Logger().Warnf("comment notification failed: %v", err)
		}
	}

	if parent != nil && parent.UserID != claims.UserID && parent.UserID != article.AuthorID {
		_, err := h.dispatcher.Notify(c.Request().Context(), notifications.NotifyInput{
			Kind:        models.NotificationReply,
			RecipientID: parent.UserID,
			ActorID:     claims.UserID,
			Title:       "New reply",
			Message:     claims.Name + " replied to your comment",
			Link:        link,
			SourceID:    sourceID,
		})
		if err != nil {
			c.Logger().Warnf("reply notification failed: %v", err)
		}
	}
}

// GetCommentsByArticleID retrieves all comments for a specific article
func (h *CommentHandler) GetCommentsByArticleID(c echo.Context) error {
	articleID := c.Param("article_id")

	if _, err := h.articleRepository.GetArticleByID(c.Request().Context(), articleID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Article not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	comments, err := h.commentRepository.GetCommentsByArticleID(c.Request().Context(), articleID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, comments)
}
