package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/oggyb/movienight/internal/tmdb"
)

// FakeMovies is a tmdb.Provider that hands out numbered movies, or Err when set.
type FakeMovies struct {
	mu    sync.Mutex
	next  int64
	Err   error
	Calls int
}

func (f *FakeMovies) TrendingMovie(ctx context.Context) (*tmdb.Movie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls++
	if f.Err != nil {
		return nil, f.Err
	}
	f.next++
	return &tmdb.Movie{
		ID:            1000 + f.next,
		Title:         fmt.Sprintf("Movie %d", f.next),
		OriginalTitle: fmt.Sprintf("Original %d", f.next),
		Overview:      "overview",
		ReleaseDate:   "2024-01-01",
		TrailerURL:    fmt.Sprintf("https://www.youtube.com/watch?v=trailer%d", f.next),
	}, nil
}
