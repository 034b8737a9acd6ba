package repository

import (
	"context"
	"fmt"

	"github.com/oggyb/movienight/internal/db"

	"gorm.io/gorm"
)

// RatingRepository is the append-only ledger of movie ratings.
// It exposes no update or delete.
type RatingRepository struct {
	db *gorm.DB
}

// NewRatingRepository creates a new repository bound to the given DB connection.
func NewRatingRepository(database *gorm.DB) *RatingRepository {
	return &RatingRepository{db: database}
}

// Append records one rating fact. Rating the same movie again adds another row.
func (r *RatingRepository) Append(ctx context.Context, userID, movieID uint64, rating int) error {
	row := db.Preference{UserID: userID, MovieID: movieID, Rating: rating}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("append rating: %w", err)
	}
	return nil
}
