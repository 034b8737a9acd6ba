package movienight_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/oggyb/movienight/internal/app"
	"github.com/oggyb/movienight/internal/db"
	svcErr "github.com/oggyb/movienight/internal/errors"
	"github.com/oggyb/movienight/internal/logger"
	"github.com/oggyb/movienight/internal/service/movienight"
	"github.com/oggyb/movienight/internal/testutil"
)

//
// Test helpers
//

type env struct {
	svc    *movienight.Service
	db     *gorm.DB
	redis  *miniredis.Miniredis
	movies *testutil.FakeMovies
}

// setupService wires a Service over an isolated SQLite DB, a miniredis and a
// fake movie provider.
func setupService(t *testing.T) *env {
	t.Helper()

	gdb := testutil.NewDB(t)
	rc, mr := testutil.NewRedis(t)
	movies := &testutil.FakeMovies{}

	appCtx := app.New(gdb, rc, logger.Nop(), movies)
	appCtx.BcryptCost = bcrypt.MinCost

	return &env{svc: movienight.NewService(appCtx), db: gdb, redis: mr, movies: movies}
}

func (e *env) signUp(t *testing.T, username string) *movienight.SessionResponse {
	t.Helper()
	resp, err := e.svc.CreateUser(context.Background(), &movienight.CreateUserRequest{
		Username: username,
		Password: "secret",
		FullName: "Full " + username,
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	return resp
}

func (e *env) pair(t *testing.T, a *movienight.SessionResponse, partner string) {
	t.Helper()
	_, err := e.svc.CreatePair(context.Background(), a.Token, &movienight.CreatePairRequest{PartnerUsername: partner})
	require.NoError(t, err)
}

func (e *env) movie(t *testing.T, s *movienight.SessionResponse) uint64 {
	t.Helper()
	m, err := e.svc.GetMovie(context.Background(), s.Token)
	require.NoError(t, err)
	return m.ID
}

func (e *env) rate(t *testing.T, s *movienight.SessionResponse, movieID uint64, rating int) {
	t.Helper()
	_, err := e.svc.RateMovie(context.Background(), s.Token, &movienight.RateMovieRequest{MovieID: movieID, Rating: &rating})
	require.NoError(t, err)
}

func assertKind(t *testing.T, err error, kind svcErr.Kind, msg string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, svcErr.KindOf(err), "error: %v", err)
	if msg != "" {
		assert.Equal(t, msg, svcErr.Message(err))
	}
}

func intPtr(v int) *int { return &v }

//
// Tests
//

func TestCreateUserAndLogin(t *testing.T) {
	ctx := context.Background()
	e := setupService(t)

	created := e.signUp(t, "alice")
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Full alice", created.FullName)

	login, err := e.svc.Login(ctx, &movienight.LoginRequest{Username: "alice", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, login.ID)
	assert.NotEqual(t, created.Token, login.Token, "each login issues a fresh token")

	// both sessions stay valid until logout
	for _, tok := range []string{created.Token, login.Token} {
		_, err := e.svc.GetPair(ctx, tok)
		assert.NoError(t, err)
	}

	_, err = e.svc.Login(ctx, &movienight.LoginRequest{Username: "alice", Password: "wrong"})
	assertKind(t, err, svcErr.KindUnauthenticated, "Unable to authenticate")

	_, err = e.svc.Login(ctx, &movienight.LoginRequest{Username: "ghost", Password: "secret"})
	assertKind(t, err, svcErr.KindUnauthenticated, "Unable to authenticate")

	_, err = e.svc.Login(ctx, &movienight.LoginRequest{Username: "alice"})
	assertKind(t, err, svcErr.KindInvalidInput, "Missing data")
}

func TestCreateUser_Errors(t *testing.T) {
	ctx := context.Background()
	e := setupService(t)
	e.signUp(t, "alice")

	_, err := e.svc.CreateUser(ctx, &movienight.CreateUserRequest{Username: "bob", Password: "x"})
	assertKind(t, err, svcErr.KindInvalidInput, "Missing data")

	_, err = e.svc.CreateUser(ctx, &movienight.CreateUserRequest{Username: "alice", Password: "x", FullName: "Again"})
	assertKind(t, err, svcErr.KindConflict, "")
	assert.Contains(t, svcErr.Message(err), "alice")
}

func TestLogout_RevokesEveryToken(t *testing.T) {
	ctx := context.Background()
	e := setupService(t)

	first := e.signUp(t, "alice")
	second, err := e.svc.Login(ctx, &movienight.LoginRequest{Username: "alice", Password: "secret"})
	require.NoError(t, err)

	// warm the cache for both tokens
	for _, tok := range []string{first.Token, second.Token} {
		_, err := e.svc.GetPair(ctx, tok)
		require.NoError(t, err)
	}

	resp, err := e.svc.Logout(ctx, second.Token)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)

	for _, tok := range []string{first.Token, second.Token} {
		_, err := e.svc.GetPair(ctx, tok)
		assertKind(t, err, svcErr.KindUnauthenticated, "Could not authenticate")
	}

	// logging out again is a no-op
	resp, err = e.svc.Logout(ctx, second.Token)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)

	_, err = e.svc.Logout(ctx, "")
	assertKind(t, err, svcErr.KindUnauthenticated, "Missing token")

	// a new login works after logout
	_, err = e.svc.Login(ctx, &movienight.LoginRequest{Username: "alice", Password: "secret"})
	assert.NoError(t, err)
}

func TestAuthenticatedOperations_RejectBadTokens(t *testing.T) {
	ctx := context.Background()
	e := setupService(t)

	_, err := e.svc.GetPair(ctx, "")
	assertKind(t, err, svcErr.KindUnauthenticated, "Missing token")

	_, err = e.svc.GetMovie(ctx, "not-a-token")
	assertKind(t, err, svcErr.KindUnauthenticated, "Could not authenticate")
	assert.Zero(t, e.movies.Calls, "provider must not be called before auth")

	_, err = e.svc.RateMovie(ctx, "not-a-token", &movienight.RateMovieRequest{MovieID: 1, Rating: intPtr(1)})
	assertKind(t, err, svcErr.KindUnauthenticated, "")

	_, err = e.svc.GetRecommendation(ctx, "not-a-token")
	assertKind(t, err, svcErr.KindUnauthenticated, "")
}

func TestCreatePair(t *testing.T) {
	ctx := context.Background()
	e := setupService(t)

	alice := e.signUp(t, "alice")
	bob := e.signUp(t, "bob")
	carol := e.signUp(t, "carol")

	partner, err := e.svc.CreatePair(ctx, alice.Token, &movienight.CreatePairRequest{PartnerUsername: "bob"})
	require.NoError(t, err)
	assert.Equal(t, bob.ID, partner.ID)
	assert.Equal(t, "bob", partner.Username)
	assert.Equal(t, "Full bob", partner.FullName)

	// pairing is symmetric
	got, err := e.svc.GetPair(ctx, bob.Token)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	_, err = e.svc.CreatePair(ctx, alice.Token, &movienight.CreatePairRequest{PartnerUsername: "carol"})
	assertKind(t, err, svcErr.KindConflict, "You already have a partner")

	_, err = e.svc.CreatePair(ctx, carol.Token, &movienight.CreatePairRequest{PartnerUsername: "bob"})
	assertKind(t, err, svcErr.KindConflict, "This user already has a partner")

	// carol stays unpaired
	got, err = e.svc.GetPair(ctx, carol.Token)
	require.NoError(t, err)
	assert.Zero(t, got.ID)
}

func TestCreatePair_CheckOrder(t *testing.T) {
	ctx := context.Background()
	e := setupService(t)

	alice := e.signUp(t, "alice")
	e.signUp(t, "bob")

	cases := []struct {
		name    string
		partner string
		kind    svcErr.Kind
		msg     string
	}{
		{"empty", "", svcErr.KindInvalidInput, "Missing partner username"},
		{"unknown", "ghost", svcErr.KindInvalidInput, "Not a valid username"},
		{"self", "alice", svcErr.KindInvalidInput, "You cannot pair with yourself"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.svc.CreatePair(ctx, alice.Token, &movienight.CreatePairRequest{PartnerUsername: tc.partner})
			assertKind(t, err, tc.kind, tc.msg)
		})
	}

	// self-pairing stays InvalidInput once paired
	e.pair(t, alice, "bob")
	_, err := e.svc.CreatePair(ctx, alice.Token, &movienight.CreatePairRequest{PartnerUsername: "alice"})
	assertKind(t, err, svcErr.KindInvalidInput, "You cannot pair with yourself")
}

func TestCreatePair_ConcurrentSamePartner(t *testing.T) {
	ctx := context.Background()
	e := setupService(t)

	e.signUp(t, "target")
	callers := make([]*movienight.SessionResponse, 8)
	for i := range callers {
		callers[i] = e.signUp(t, fmt.Sprintf("caller%d", i))
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for _, c := range callers {
		wg.Add(1)
		go func(tok string) {
			defer wg.Done()
			_, err := e.svc.CreatePair(ctx, tok, &movienight.CreatePairRequest{PartnerUsername: "target"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case svcErr.KindOf(err) == svcErr.KindConflict:
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(c.Token)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, len(callers)-1, conflicts)

	var pairs int64
	require.NoError(t, e.db.Model(&db.Pair{}).Count(&pairs).Error)
	assert.EqualValues(t, 1, pairs)
}

func TestGetMovie(t *testing.T) {
	ctx := context.Background()
	e := setupService(t)
	alice := e.signUp(t, "alice")

	m1, err := e.svc.GetMovie(ctx, alice.Token)
	require.NoError(t, err)
	assert.NotZero(t, m1.ID)
	assert.Equal(t, int64(1001), m1.APIID)
	assert.Equal(t, "Movie 1", m1.Title)
	assert.Equal(t, "https://www.youtube.com/watch?v=trailer1", m1.TrailerURL)

	m2, err := e.svc.GetMovie(ctx, alice.Token)
	require.NoError(t, err)
	assert.NotEqual(t, m1.ID, m2.ID, "every call inserts a new row")

	e.movies.Err = errors.New("tmdb down")
	_, err = e.svc.GetMovie(ctx, alice.Token)
	assertKind(t, err, svcErr.KindUpstream, "Error getting movie")

	var count int64
	require.NoError(t, e.db.Model(&db.Movie{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestRateMovie_Validity(t *testing.T) {
	ctx := context.Background()
	e := setupService(t)
	alice := e.signUp(t, "alice")
	movieID := e.movie(t, alice)

	invalid := []struct {
		name string
		req  *movienight.RateMovieRequest
		msg  string
	}{
		{"zero rating", &movienight.RateMovieRequest{MovieID: movieID, Rating: intPtr(0)}, "Missing information"},
		{"rating 3", &movienight.RateMovieRequest{MovieID: movieID, Rating: intPtr(3)}, "Missing information"},
		{"rating -2", &movienight.RateMovieRequest{MovieID: movieID, Rating: intPtr(-2)}, "Missing information"},
		{"null rating", &movienight.RateMovieRequest{MovieID: movieID}, "Missing information"},
		{"missing movie", &movienight.RateMovieRequest{Rating: intPtr(1)}, "Missing information"},
		{"unknown movie", &movienight.RateMovieRequest{MovieID: movieID + 100, Rating: intPtr(1)}, "Unknown movie"},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.svc.RateMovie(ctx, alice.Token, tc.req)
			assertKind(t, err, svcErr.KindInvalidInput, tc.msg)
		})
	}

	var count int64
	require.NoError(t, e.db.Model(&db.Preference{}).Count(&count).Error)
	assert.Zero(t, count)

	for i, r := range []int{-1, 1, 2, 2} {
		resp, err := e.svc.RateMovie(ctx, alice.Token, &movienight.RateMovieRequest{MovieID: movieID, Rating: intPtr(r)})
		require.NoError(t, err)
		assert.Equal(t, "ok", resp.Status)

		require.NoError(t, e.db.Model(&db.Preference{}).Count(&count).Error)
		assert.EqualValues(t, i+1, count, "each valid rating appends exactly one row")
	}
}

func TestGetRecommendation_Aggregation(t *testing.T) {
	ctx := context.Background()
	e := setupService(t)

	alice := e.signUp(t, "alice")
	bob := e.signUp(t, "bob")
	carol := e.signUp(t, "carol")
	e.pair(t, alice, "bob")

	m1 := e.movie(t, alice)
	m2 := e.movie(t, alice)
	m3 := e.movie(t, alice)
	m4 := e.movie(t, alice)

	e.rate(t, alice, m1, 2)
	e.rate(t, bob, m1, 2)
	e.rate(t, alice, m2, 1)
	e.rate(t, bob, m2, -1)
	e.rate(t, alice, m3, 2)
	e.rate(t, bob, m3, 1)
	// an outsider's ratings never count
	e.rate(t, alice, m4, 2)
	e.rate(t, carol, m4, 2)

	for _, s := range []*movienight.SessionResponse{alice, bob} {
		recs, err := e.svc.GetRecommendation(ctx, s.Token)
		require.NoError(t, err)
		require.Len(t, recs, 2)

		assert.Equal(t, m1, recs[0].ID)
		assert.InDelta(t, 2.0, recs[0].Rating, 1e-9)
		assert.Equal(t, m3, recs[1].ID)
		assert.InDelta(t, 1.5, recs[1].Rating, 1e-9)
		assert.NotEmpty(t, recs[0].Title)
	}
}

func TestGetRecommendation_Unpaired(t *testing.T) {
	ctx := context.Background()
	e := setupService(t)
	alice := e.signUp(t, "alice")

	recs, err := e.svc.GetRecommendation(ctx, alice.Token)
	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)

	// liking the same movie twice qualifies it on its own
	m := e.movie(t, alice)
	e.rate(t, alice, m, 2)
	e.rate(t, alice, m, 1)

	recs, err = e.svc.GetRecommendation(ctx, alice.Token)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, m, recs[0].ID)
	assert.InDelta(t, 1.5, recs[0].Rating, 1e-9)
}

func TestService_WithoutCache(t *testing.T) {
	ctx := context.Background()

	appCtx := app.New(testutil.NewDB(t), nil, logger.Nop(), &testutil.FakeMovies{})
	appCtx.BcryptCost = bcrypt.MinCost
	svc := movienight.NewService(appCtx)

	s, err := svc.CreateUser(ctx, &movienight.CreateUserRequest{Username: "alice", Password: "secret", FullName: "Alice"})
	require.NoError(t, err)

	_, err = svc.GetPair(ctx, s.Token)
	require.NoError(t, err)

	_, err = svc.Logout(ctx, s.Token)
	require.NoError(t, err)

	_, err = svc.GetPair(ctx, s.Token)
	assertKind(t, err, svcErr.KindUnauthenticated, "")
}

func TestOperations_KeepContextErrors(t *testing.T) {
	e := setupService(t)
	alice := e.signUp(t, "alice")
	e.signUp(t, "bob")

	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	calls := map[string]func(ctx context.Context) error{
		"Login": func(ctx context.Context) error {
			_, err := e.svc.Login(ctx, &movienight.LoginRequest{Username: "alice", Password: "secret"})
			return err
		},
		"Logout": func(ctx context.Context) error {
			_, err := e.svc.Logout(ctx, alice.Token)
			return err
		},
		"CreatePair": func(ctx context.Context) error {
			_, err := e.svc.CreatePair(ctx, alice.Token, &movienight.CreatePairRequest{PartnerUsername: "bob"})
			return err
		},
		"GetPair": func(ctx context.Context) error {
			_, err := e.svc.GetPair(ctx, alice.Token)
			return err
		},
		"RateMovie": func(ctx context.Context) error {
			_, err := e.svc.RateMovie(ctx, alice.Token, &movienight.RateMovieRequest{MovieID: 1, Rating: intPtr(1)})
			return err
		},
		"GetRecommendation": func(ctx context.Context) error {
			_, err := e.svc.GetRecommendation(ctx, alice.Token)
			return err
		},
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			assertKind(t, call(canceled), svcErr.KindCanceled, "request was canceled")
		})
	}

	// nothing was written by the canceled calls
	got, err := e.svc.GetPair(context.Background(), alice.Token)
	require.NoError(t, err)
	assert.Zero(t, got.ID)
}

func TestGetMovie_ProviderTimeout(t *testing.T) {
	e := setupService(t)
	alice := e.signUp(t, "alice")

	e.movies.Err = fmt.Errorf("get trending: %w", context.DeadlineExceeded)
	_, err := e.svc.GetMovie(context.Background(), alice.Token)
	assertKind(t, err, svcErr.KindTimeout, "request timed out")
}
