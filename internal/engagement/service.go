package engagement

import (
	"context"
	"log"
	"time"

	"github.com/nayonf/inkline/backend/internal/models"
	"github.com/nayonf/inkline/backend/internal/repositories"
)

// Service exposes the two engagement operations called by the article request
// handlers: a dedup-gated view increment and an idempotent like toggle.
type Service struct {
	articles repositories.ArticleRepository
	likes    repositories.LikeRepository
	cache    *ViewCache
}

// NewService creates an engagement Service
func NewService(articles repositories.ArticleRepository, likes repositories.LikeRepository, cache *ViewCache) *Service {
	return &Service{
		articles: articles,
		likes:    likes,
		cache:    cache,
	}
}

// RegisterView counts a view for the article unless the same client was
// already counted within the retention window. Returns the article either way;
// fails with ErrNotFound if the article does not exist. The cache insert is
// the atomic gate, so N concurrent calls for a fresh pair produce exactly one
// durable increment.
func (s *Service) RegisterView(ctx context.Context, articleID, clientID string) (*models.Article, error) {
	article, err := s.articles.GetArticleByID(ctx, articleID)
	if err != nil {
		return nil, err
	}

	if !s.cache.ShouldCountView(articleID, clientID) {
		return article, nil
	}

	updated, err := s.articles.IncrementViewsCount(ctx, articleID)
	if err != nil {
		// The view was admitted but never became durable; release the
		// fingerprint so a retry can still count.
		s.cache.Forget(articleID, clientID)
		return nil, err
	}
	return updated, nil
}

// SetLikeStatus moves the user's like relation for the article to the desired
// state. The unique (article_id, user_id) index makes the relation write the
// single serialization point: only the call that actually creates or deletes
// the row adjusts the counter, so repeated or concurrent calls with the same
// desired state never double-count. changed reports whether this call made the
// transition. Fails with ErrNotFound if the article does not exist.
func (s *Service) SetLikeStatus(ctx context.Context, articleID string, userID uint, liked bool) (article *models.Article, changed bool, err error) {
	article, err = s.articles.GetArticleByID(ctx, articleID)
	if err != nil {
		return nil, false, err
	}

	if liked {
		created, err := s.likes.CreateLike(ctx, &models.Like{
			ArticleID: articleID,
			UserID:    userID,
			CreatedAt: time.Now(),
		})
		if err != nil {
			return nil, false, err
		}
		if !created {
			return article, false, nil
		}
		article, err = s.articles.IncrementLikesCount(ctx, articleID)
		if err != nil {
			// The counter never moved; roll the relation back so a retry
			// with the same desired state can redo the whole transition.
			if _, delErr := s.likes.DeleteLike(ctx, articleID, userID); delErr != nil {
				log.Printf("engagement: rolling back like relation for article %s user %d failed: %v", articleID, userID, delErr)
			}
			return nil, false, err
		}
		return article, true, nil
	}

	deleted, err := s.likes.DeleteLike(ctx, articleID, userID)
	if err != nil {
		return nil, false, err
	}
	if !deleted {
		return article, false, nil
	}
	article, err = s.articles.DecrementLikesCount(ctx, articleID)
	if err != nil {
		// Restore the relation so the user still reads as liked and a retry
		// of the unlike repeats the full transition.
		if _, createErr := s.likes.CreateLike(ctx, &models.Like{
			ArticleID: articleID,
			UserID:    userID,
			CreatedAt: time.Now(),
		}); createErr != nil {
			log.Printf("engagement: restoring like relation for article %s user %d failed: %v", articleID, userID, createErr)
		}
		return nil, false, err
	}
	return article, true, nil
}

// HasUserLiked reports whether the user currently likes the article.
func (s *Service) HasUserLiked(ctx context.Context, articleID string, userID uint) (bool, error) {
	return s.likes.HasUserLiked(ctx, articleID, userID)
}
