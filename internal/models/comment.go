package models

import "gorm.io/gorm"

// Comment represents a comment on an article. A non-nil ParentID makes it a
// reply to another comment on the same article.
type Comment struct {
	gorm.Model
	ArticleID string `json:"article_id" gorm:"size:24;index"` // MongoDB ObjectID as string
	UserID    uint   `json:"user_id" gorm:"index"`            // ID of the user who made the comment
	ParentID  *uint  `json:"parent_id,omitempty" gorm:"index"`
	Content   string `json:"content"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Content  string `json:"content" validate:"required,min=1,max=500"`
	ParentID *uint  `json:"parent_id,omitempty"`
}
