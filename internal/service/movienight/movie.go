package movienight

import (
	"context"

	"github.com/oggyb/movienight/internal/db"
	svcErr "github.com/oggyb/movienight/internal/errors"
	"github.com/oggyb/movienight/internal/metrics"
)

// validRatings are the only values the ledger accepts. There is no neutral 0.
var validRatings = map[int]bool{-1: true, 1: true, 2: true}

// GetMovie surfaces one trending movie to the caller for rating.
//
// Behavior:
//   - Always inserts a new movie row, even if the provider returned a movie
//     that was surfaced before.
//   - Provider and insert failures collapse into one "Error getting movie".
func (s *Service) GetMovie(ctx context.Context, token string) (*MovieResponse, error) {
	userID, err := s.authenticate(ctx, token)
	if err != nil {
		return nil, err
	}

	found, err := s.appCtx.Movies.TrendingMovie(ctx)
	if err != nil {
		return nil, s.fail(err, "Error getting movie", "TrendingMovie failed", "user_id", userID)
	}

	movie := &db.Movie{
		APIID:       found.ID,
		Title:       found.Title,
		Overview:    found.Overview,
		ReleaseDate: found.ReleaseDate,
		TrailerURL:  found.TrailerURL,
	}
	if err := s.movies.Create(ctx, movie); err != nil {
		return nil, s.fail(err, "Error getting movie", "Create movie failed", "api_id", found.ID)
	}

	s.appCtx.Logger.Debug("GetMovie result", "user_id", userID, "movie_id", movie.ID, "api_id", movie.APIID)
	return movieView(movie), nil
}

// RateMovie appends one rating fact for the caller.
//
// Behavior:
//   - movieId must be set and non-zero; rating must be -1, 1 or 2.
//     Anything else, 0 included, fails with InvalidInput.
//   - A movieId that was never surfaced fails with InvalidInput.
//   - Rating a movie again appends another row; nothing is overwritten.
func (s *Service) RateMovie(ctx context.Context, token string, req *RateMovieRequest) (*StatusResponse, error) {
	userID, err := s.authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := s.validate(req, "Missing information"); err != nil {
		return nil, err
	}
	if !validRatings[*req.Rating] {
		return nil, svcErr.InvalidArgument("Missing information")
	}

	exists, err := s.movies.Exists(ctx, req.MovieID)
	if err != nil {
		return nil, s.fail(err, "Error saving preference", "Movie lookup failed", "movie_id", req.MovieID)
	}
	if !exists {
		return nil, svcErr.InvalidArgument("Unknown movie")
	}

	if err := s.ratings.Append(ctx, userID, req.MovieID, *req.Rating); err != nil {
		return nil, s.fail(err, "Error saving preference", "Append rating failed", "user_id", userID, "movie_id", req.MovieID)
	}
	metrics.RecordRating(*req.Rating)

	return statusOK, nil
}

func movieView(m *db.Movie) *MovieResponse {
	return &MovieResponse{
		ID:          m.ID,
		APIID:       m.APIID,
		Title:       m.Title,
		Overview:    m.Overview,
		ReleaseDate: m.ReleaseDate,
		TrailerURL:  m.TrailerURL,
	}
}
