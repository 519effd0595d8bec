package models

import "time"

// Like represents "user currently likes article". The composite unique index
// on (article_id, user_id) keeps the like/unlike toggle idempotent even when
// the store is shared across processes.
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ArticleID string    `json:"article_id" gorm:"size:24;not null;uniqueIndex:idx_article_user"` // MongoDB ObjectID as string
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_article_user"`
	CreatedAt time.Time `json:"created_at"`
}

// SetLikeRequest defines the request body for setting the like state of an article
type SetLikeRequest struct {
	Liked *bool `json:"liked" validate:"required"`
}
