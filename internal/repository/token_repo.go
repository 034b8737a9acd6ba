package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/oggyb/movienight/internal/db"

	"gorm.io/gorm"
)

// TokenRepository stores issued session tokens.
type TokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository creates a new repository bound to the given DB connection.
func NewTokenRepository(database *gorm.DB) *TokenRepository {
	return &TokenRepository{db: database}
}

// Insert stores a freshly issued, valid token.
func (r *TokenRepository) Insert(ctx context.Context, userID uint64, token string) error {
	row := db.AuthToken{Token: token, UserID: userID, Valid: true}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

// UserForValidToken resolves the owner of token.
//
// Behavior:
//   - Only rows with valid = true match.
//   - Revoked and unknown tokens both return ErrNotFound.
func (r *TokenRepository) UserForValidToken(ctx context.Context, token string) (uint64, error) {
	var row db.AuthToken
	err := r.db.WithContext(ctx).
		Select("user_id").
		Where("token = ? AND valid = ?", token, true).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("lookup token: %w", err)
	}
	return row.UserID, nil
}

// InvalidateAll marks every token of userID invalid. Running it twice is harmless.
func (r *TokenRepository) InvalidateAll(ctx context.Context, userID uint64) error {
	err := r.db.WithContext(ctx).
		Model(&db.AuthToken{}).
		Where("user_id = ?", userID).
		Update("valid", false).Error
	if err != nil {
		return fmt.Errorf("invalidate tokens of user %d: %w", userID, err)
	}
	return nil
}
