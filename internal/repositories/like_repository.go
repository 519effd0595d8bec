package repositories

import (
	"context"

	"github.com/nayonf/inkline/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository defines the interface for like relation operations. Both
// mutations are idempotent: inserting an existing relation or deleting a
// missing one is a no-op, reported through the returned bool so callers know
// whether to adjust the durable counter.
type LikeRepository interface {
	CreateLike(ctx context.Context, like *models.Like) (bool, error)
	DeleteLike(ctx context.Context, articleID string, userID uint) (bool, error)
	HasUserLiked(ctx context.Context, articleID string, userID uint) (bool, error)
}

// PostgresLikeRepository implements LikeRepository for PostgreSQL
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

// CreateLike inserts the relation unless it already exists. The unique index
// on (article_id, user_id) makes the check-and-insert a single atomic
// statement; created reports whether a new row was written.
func (r *PostgresLikeRepository) CreateLike(ctx context.Context, like *models.Like) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(like)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// DeleteLike removes the relation if present; deleted reports whether a row
// was actually removed.
func (r *PostgresLikeRepository) DeleteLike(ctx context.Context, articleID string, userID uint) (bool, error) {
	res := r.db.WithContext(ctx).Where("article_id = ? AND user_id = ?", articleID, userID).Delete(&models.Like{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// HasUserLiked checks if a user currently likes a specific article
func (r *PostgresLikeRepository) HasUserLiked(ctx context.Context, articleID string, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("article_id = ? AND user_id = ?", articleID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
