// Package tmdb fetches trending movies from The Movie Database v3 API.
package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/oggyb/movienight/internal/config"
)

// ErrNoResults is returned when a trending page comes back empty.
var ErrNoResults = errors.New("tmdb: no trending movies")

// Movie is the provider's view of a movie.
type Movie struct {
	ID            int64
	Title         string
	OriginalTitle string
	Overview      string
	ReleaseDate   string
	TrailerURL    string
}

// Provider returns one trending movie per call.
type Provider interface {
	TrendingMovie(ctx context.Context) (*Movie, error)
}

type trendingResponse struct {
	Page    int `json:"page"`
	Results []struct {
		ID            int64  `json:"id"`
		Title         string `json:"title"`
		OriginalTitle string `json:"original_title"`
		Overview      string `json:"overview"`
		ReleaseDate   string `json:"release_date"`
	} `json:"results"`
}

type videosResponse struct {
	Results []struct {
		Key  string `json:"key"`
		Site string `json:"site"`
		Type string `json:"type"`
	} `json:"results"`
}

// Client is a plain HTTP client for the TMDB API.
type Client struct {
	baseURL string
	apiKey  string
	maxPage int
	http    *http.Client
	intN    func(n int) int
}

// NewClient builds a client from config. The HTTP timeout is the only bound
// on a provider call.
func NewClient(cfg *config.Config) *Client {
	maxPage := cfg.TMDB.MaxPage
	if maxPage < 1 {
		maxPage = 1
	}
	return &Client{
		baseURL: cfg.TMDB.BaseURL,
		apiKey:  cfg.TMDB.APIKey,
		maxPage: maxPage,
		http:    &http.Client{Timeout: cfg.TMDB.Timeout},
		intN:    rand.Intn,
	}
}

// TrendingMovie picks a random movie from a random page of this week's
// trending list and resolves its YouTube trailer.
func (c *Client) TrendingMovie(ctx context.Context) (*Movie, error) {
	page := c.intN(c.maxPage) + 1

	var trending trendingResponse
	q := url.Values{"page": {strconv.Itoa(page)}}
	if err := c.getJSON(ctx, "/trending/movie/week", q, &trending); err != nil {
		return nil, err
	}
	if len(trending.Results) == 0 {
		return nil, ErrNoResults
	}

	pick := trending.Results[c.intN(len(trending.Results))]
	movie := &Movie{
		ID:            pick.ID,
		Title:         pick.Title,
		OriginalTitle: pick.OriginalTitle,
		Overview:      pick.Overview,
		ReleaseDate:   pick.ReleaseDate,
	}

	trailer, err := c.trailerURL(ctx, pick.ID)
	if err != nil {
		return nil, err
	}
	movie.TrailerURL = trailer
	return movie, nil
}

// trailerURL returns the first YouTube trailer, or "" when there is none.
func (c *Client) trailerURL(ctx context.Context, movieID int64) (string, error) {
	var videos videosResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/movie/%d/videos", movieID), nil, &videos); err != nil {
		return "", err
	}
	for _, v := range videos.Results {
		if v.Site == "YouTube" && v.Type == "Trailer" && v.Key != "" {
			return "https://www.youtube.com/watch?v=" + url.QueryEscape(v.Key), nil
		}
	}
	return "", nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	if q == nil {
		q = url.Values{}
	}
	q.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("tmdb: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("tmdb: GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("tmdb: GET %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("tmdb: decode %s: %w", path, err)
	}
	return nil
}
