package models

import "time"

// DeviceToken links an FCM registration token to a user, so notifications can
// be pushed to devices that have no live socket connection.
type DeviceToken struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index"`
	Token     string    `json:"token" gorm:"size:255;uniqueIndex"`
	CreatedAt time.Time `json:"created_at"`
}

// RegisterDeviceRequest defines the request body for registering a device token
type RegisterDeviceRequest struct {
	Token string `json:"token" validate:"required"`
}
