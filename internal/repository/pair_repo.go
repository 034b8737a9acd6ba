package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/oggyb/movienight/internal/db"

	"gorm.io/gorm"
)

// ErrAlreadyPaired is returned by Create when either user already has a pair.
var ErrAlreadyPaired = errors.New("user already paired")

// PairRepository provides data access for the exclusive pairing relation.
type PairRepository struct {
	db *gorm.DB
}

// NewPairRepository creates a new repository bound to the given DB connection.
func NewPairRepository(database *gorm.DB) *PairRepository {
	return &PairRepository{db: database}
}

// PartnerOf returns the other side of the pair userID belongs to.
//
// Behavior:
//   - Looks at both columns, the relation is undirected.
//   - Returns (0, false, nil) when userID is unpaired.
//
// Example:
//
//	repo.PartnerOf(ctx, 1) // -> 2, true, nil when (1,2) or (2,1) is stored
func (r *PairRepository) PartnerOf(ctx context.Context, userID uint64) (uint64, bool, error) {
	var pair db.Pair
	err := r.db.WithContext(ctx).
		Where("user_a = ? OR user_b = ?", userID, userID).
		Take(&pair).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("lookup pair of user %d: %w", userID, err)
	}
	if pair.UserA == userID {
		return pair.UserB, true, nil
	}
	return pair.UserA, true, nil
}

// IsPaired reports whether userID appears on either side of any pair.
func (r *PairRepository) IsPaired(ctx context.Context, userID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Pair{}).
		Where("user_a = ? OR user_b = ?", userID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("count pairs of user %d: %w", userID, err)
	}
	return count > 0, nil
}

// Create pairs userA with userB atomically.
//
// Behavior:
//   - Writes the pair row and one pair_members row per side in one transaction.
//   - pair_members.user_id is the primary key, so if either user got paired
//     concurrently the transaction fails and ErrAlreadyPaired is returned.
//   - Nothing is written on failure.
func (r *PairRepository) Create(ctx context.Context, userA, userB uint64) (*db.Pair, error) {
	if userA == userB {
		return nil, fmt.Errorf("pair user %d with itself", userA)
	}

	pair := db.Pair{UserA: userA, UserB: userB}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&pair).Error; err != nil {
			return err
		}
		members := []db.PairMember{
			{UserID: userA, PairID: pair.ID},
			{UserID: userB, PairID: pair.ID},
		}
		return tx.Create(&members).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, ErrAlreadyPaired
	}
	if err != nil {
		return nil, fmt.Errorf("create pair (%d,%d): %w", userA, userB, err)
	}
	return &pair, nil
}
