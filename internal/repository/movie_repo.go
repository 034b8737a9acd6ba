package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/oggyb/movienight/internal/db"

	"gorm.io/gorm"
)

// RecommendationLimit caps the length of a recommendation list.
const RecommendationLimit = 100

// Recommendation is a movie with the average of its qualifying ratings.
type Recommendation struct {
	ID          uint64  `gorm:"column:id"`
	APIID       int64   `gorm:"column:api_id"`
	Title       string  `gorm:"column:title"`
	Overview    string  `gorm:"column:overview"`
	ReleaseDate string  `gorm:"column:release_date"`
	TrailerURL  string  `gorm:"column:trailer_url"`
	AvgRating   float64 `gorm:"column:avg_rating"`
}

// MovieRepository provides data access for surfaced movies and the
// recommendation aggregate over the rating ledger.
type MovieRepository struct {
	db *gorm.DB
}

// NewMovieRepository creates a new repository bound to the given DB connection.
func NewMovieRepository(database *gorm.DB) *MovieRepository {
	return &MovieRepository{db: database}
}

// Create always inserts a new row, even for a provider id seen before.
func (r *MovieRepository) Create(ctx context.Context, movie *db.Movie) error {
	if err := r.db.WithContext(ctx).Create(movie).Error; err != nil {
		return fmt.Errorf("insert movie %d: %w", movie.APIID, err)
	}
	return nil
}

// Exists reports whether a local movie id is known.
func (r *MovieRepository) Exists(ctx context.Context, id uint64) (bool, error) {
	var movie db.Movie
	err := r.db.WithContext(ctx).Select("id").Take(&movie, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup movie %d: %w", id, err)
	}
	return true, nil
}

// Recommend ranks the movies both users liked.
//
// Behavior:
//   - Only ratings by userID or partnerID with value 1 or 2 count;
//     negative ratings are left out of the average entirely.
//   - A movie needs more than one counted row: both users liked it, or one
//     user liked it more than once.
//   - Ordered by average DESC, capped at RecommendationLimit. Equal averages
//     keep whatever order the store yields.
//   - Pass partnerID = 0 for an unpaired user; it matches nobody.
//
// Example:
//
//	repo.Recommend(ctx, 1, 2) // movies users 1 and 2 both rated 1 or 2
func (r *MovieRepository) Recommend(ctx context.Context, userID, partnerID uint64) ([]Recommendation, error) {
	var rows []Recommendation
	err := r.db.WithContext(ctx).
		Table("movies m").
		Select("m.id, m.api_id, m.title, m.overview, m.release_date, m.trailer_url, AVG(p.rating) AS avg_rating").
		Joins("INNER JOIN preferences p ON m.id = p.movie_id").
		Where("p.user_id IN ? AND p.rating IN ?", []uint64{userID, partnerID}, []int{1, 2}).
		Group("m.id, m.api_id, m.title, m.overview, m.release_date, m.trailer_url").
		Having("COUNT(*) > 1").
		Order("avg_rating DESC").
		Limit(RecommendationLimit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("recommend for user %d: %w", userID, err)
	}
	return rows, nil
}
