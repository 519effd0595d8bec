package models

import "time"

// Notification kinds
const (
	NotificationComment = "comment" // someone commented on your article
	NotificationReply   = "reply"   // someone replied to your comment
	NotificationLike    = "like"
	NotificationMention = "mention"
	NotificationFollow  = "follow"
)

// Notification represents a user notification (PostgreSQL)
type Notification struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Kind        string    `json:"kind" gorm:"size:20;index"`
	ActorID     uint      `json:"actor_id" gorm:"index"`
	RecipientID uint      `json:"recipient_id" gorm:"index"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	Link        string    `json:"link,omitempty"`      // deep link, e.g. /articles/:id#comment-42
	SourceID    string    `json:"source_id,omitempty"` // article ID, comment ID, etc.
	IsRead      bool      `json:"is_read" gorm:"default:false;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}
