package db

import (
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoPassword is the password of every seeded user.
const DemoPassword = "password"

// seedTables are cleared child tables first.
var seedTables = []string{"preferences", "movies", "pair_members", "pairs", "auth_tokens", "users"}

var demoMovies = []Movie{
	{APIID: 603, Title: "The Matrix", ReleaseDate: "1999-03-31", TrailerURL: "https://www.youtube.com/watch?v=vKQi3bBA1y8",
		Overview: "A hacker learns the world he lives in is a simulation."},
	{APIID: 155, Title: "The Dark Knight", ReleaseDate: "2008-07-16", TrailerURL: "https://www.youtube.com/watch?v=EXeTwQWrcwY",
		Overview: "Batman faces the Joker in Gotham."},
	{APIID: 27205, Title: "Inception", ReleaseDate: "2010-07-15", TrailerURL: "https://www.youtube.com/watch?v=YoHD9XEInc0",
		Overview: "A thief steals secrets through dream-sharing."},
	{APIID: 13, Title: "Forrest Gump", ReleaseDate: "1994-06-23", TrailerURL: "https://www.youtube.com/watch?v=bLvqoHBptjg",
		Overview: "A slow-witted man witnesses decades of history."},
}

// SeedDemoData resets the database and populates it with demo data.
//
// Behavior:
//  1. Clears every table.
//  2. Creates users user1..user4 with DemoPassword.
//  3. Pairs user1 with user2; user3 and user4 stay unpaired.
//  4. Surfaces the demo movies and records ratings so user1/user2 get
//     a non-empty recommendation list.
//
// Compatible with both MySQL and SQLite.
func SeedDemoData(db *gorm.DB, logger *slog.Logger) error {
	for _, table := range seedTables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
		switch db.Dialector.Name() {
		case "mysql":
			db.Exec("ALTER TABLE " + table + " AUTO_INCREMENT = 1")
		case "sqlite":
			db.Exec("DELETE FROM sqlite_sequence WHERE name = ?", table)
		}
	}
	logger.Info("Cleared existing data")

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		users := make([]User, 4)
		for i := range users {
			users[i] = User{
				Username:     fmt.Sprintf("user%d", i+1),
				PasswordHash: string(hash),
				FullName:     fmt.Sprintf("Demo User %d", i+1),
			}
		}
		if err := tx.Create(&users).Error; err != nil {
			return fmt.Errorf("failed to seed users: %w", err)
		}

		pair := Pair{UserA: users[0].ID, UserB: users[1].ID}
		if err := tx.Create(&pair).Error; err != nil {
			return fmt.Errorf("failed to seed pair: %w", err)
		}
		members := []PairMember{{UserID: pair.UserA, PairID: pair.ID}, {UserID: pair.UserB, PairID: pair.ID}}
		if err := tx.Create(&members).Error; err != nil {
			return fmt.Errorf("failed to seed pair members: %w", err)
		}

		movies := append([]Movie(nil), demoMovies...)
		if err := tx.Create(&movies).Error; err != nil {
			return fmt.Errorf("failed to seed movies: %w", err)
		}

		// per movie: ratings of user1, user2, user3
		ratings := [][3]int{
			{2, 2, 1},
			{1, -1, 2},
			{2, 1, -1},
			{-1, 2, 2},
		}
		var prefs []Preference
		for i, row := range ratings {
			for u, r := range row {
				prefs = append(prefs, Preference{UserID: users[u].ID, MovieID: movies[i].ID, Rating: r})
			}
		}
		if err := tx.Create(&prefs).Error; err != nil {
			return fmt.Errorf("failed to seed ratings: %w", err)
		}

		logger.Info("Seeded demo data", "users", len(users), "movies", len(movies), "ratings", len(prefs))
		return nil
	})
}
