package db

import (
	"time"
)

// User table
type User struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement"`
	Username     string    `gorm:"uniqueIndex;size:64;not null"`
	PasswordHash string    `gorm:"size:255;not null"`
	FullName     string    `gorm:"size:128;not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

// AuthToken is one issued session token.
//
// Rows are never deleted. Logging out flips Valid to false on every row of
// the user, so a lookup by (token, valid = true) is the whole validity check.
type AuthToken struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	Token     string    `gorm:"uniqueIndex;size:64;not null"`
	UserID    uint64    `gorm:"index:idx_user_valid,priority:1;not null"`
	Valid     bool      `gorm:"index:idx_user_valid,priority:2;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Pair relates two distinct users. The orientation carries no meaning.
type Pair struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserA     uint64    `gorm:"index;not null"`
	UserB     uint64    `gorm:"index;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// PairMember holds one row per side of a Pair.
//
// UserID is the primary key, so the store itself refuses to put a user into
// a second pair even when two requests race past the service checks.
type PairMember struct {
	UserID uint64 `gorm:"primaryKey;autoIncrement:false"`
	PairID uint64 `gorm:"index;not null"`
}

// Movie is a provider movie surfaced to a user. One row per surfacing.
type Movie struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	APIID       int64     `gorm:"column:api_id;index;not null"`
	Title       string    `gorm:"size:255;not null"`
	Overview    string    `gorm:"type:text"`
	ReleaseDate string    `gorm:"size:32"`
	TrailerURL  string    `gorm:"size:255"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

// Preference is one rating fact. Append-only: no update or delete path exists.
type Preference struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserID    uint64    `gorm:"index:idx_user_rating,priority:1;not null"`
	MovieID   uint64    `gorm:"index;not null"`
	Rating    int       `gorm:"index:idx_user_rating,priority:2;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// AllModels lists every table, in migration order.
func AllModels() []any {
	return []any{&User{}, &AuthToken{}, &Pair{}, &PairMember{}, &Movie{}, &Preference{}}
}
