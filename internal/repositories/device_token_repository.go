package repositories

import (
	"context"

	"github.com/nayonf/inkline/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeviceTokenRepository defines the interface for FCM device token operations
type DeviceTokenRepository interface {
	RegisterToken(ctx context.Context, token *models.DeviceToken) error
	GetTokensByUserID(ctx context.Context, userID uint) ([]string, error)
	DeleteToken(ctx context.Context, token string) error
}

// PostgresDeviceTokenRepository implements DeviceTokenRepository for PostgreSQL
type PostgresDeviceTokenRepository struct {
	db *gorm.DB
}

// NewPostgresDeviceTokenRepository creates a new PostgresDeviceTokenRepository
func NewPostgresDeviceTokenRepository(db *gorm.DB) *PostgresDeviceTokenRepository {
	return &PostgresDeviceTokenRepository{db: db}
}

// RegisterToken stores a device token; re-registering the same token is a no-op.
func (r *PostgresDeviceTokenRepository) RegisterToken(ctx context.Context, token *models.DeviceToken) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(token).Error
}

// GetTokensByUserID returns all registered tokens for a user
func (r *PostgresDeviceTokenRepository) GetTokensByUserID(ctx context.Context, userID uint) ([]string, error) {
	var tokens []string
	err := r.db.WithContext(ctx).Model(&models.DeviceToken{}).
		Where("user_id = ?", userID).Pluck("token", &tokens).Error
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

// DeleteToken removes a token, typically after FCM reports it unregistered.
func (r *PostgresDeviceTokenRepository) DeleteToken(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Where("token = ?", token).Delete(&models.DeviceToken{}).Error
}
