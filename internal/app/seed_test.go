package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oggyb/movienight/internal/app"
	"github.com/oggyb/movienight/internal/auth"
	svcErr "github.com/oggyb/movienight/internal/errors"
	"github.com/oggyb/movienight/internal/logger"
	"github.com/oggyb/movienight/internal/repository"
	"github.com/oggyb/movienight/internal/testutil"
)

func TestSeedDemo_DropsCachedTokens(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.NewDB(t)
	rc, mr := testutil.NewRedis(t)
	appCtx := app.New(gdb, rc, logger.Nop(), &testutil.FakeMovies{})

	user, err := auth.NewCredentialStore(repository.NewUserRepository(gdb), bcrypt.MinCost).
		Register(ctx, "before-seed", "pw", "Before Seed")
	require.NoError(t, err)

	authority := auth.NewTokenAuthority(repository.NewTokenRepository(gdb), rc, logger.Nop())
	tok, err := authority.Issue(ctx, user.ID)
	require.NoError(t, err)
	_, err = authority.Validate(ctx, tok)
	require.NoError(t, err)
	require.True(t, mr.Exists(rc.KeyForToken(tok)))

	require.NoError(t, app.SeedDemo(ctx, appCtx))

	assert.False(t, mr.Exists(rc.KeyForToken(tok)))
	assert.False(t, mr.Exists(rc.KeyForUserTokens(user.ID)))

	// the seeded user1 may reuse the old id; the old token must not log in as them
	_, err = authority.Validate(ctx, tok)
	assert.Equal(t, svcErr.KindUnauthenticated, svcErr.KindOf(err))
}

func TestSeedDemo_WithoutCache(t *testing.T) {
	gdb := testutil.NewDB(t)
	appCtx := app.New(gdb, nil, logger.Nop(), &testutil.FakeMovies{})

	require.NoError(t, app.SeedDemo(context.Background(), appCtx))

	u1, err := repository.NewUserRepository(gdb).GetByUsername(context.Background(), "user1")
	require.NoError(t, err)
	assert.Equal(t, "Demo User 1", u1.FullName)
}
