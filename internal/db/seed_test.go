package db_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oggyb/movienight/internal/db"
	"github.com/oggyb/movienight/internal/logger"
	"github.com/oggyb/movienight/internal/repository"
	"github.com/oggyb/movienight/internal/testutil"
)

func TestSeedDemoData(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.NewDB(t)

	// seeding twice must leave one copy of the data
	require.NoError(t, db.SeedDemoData(gdb, logger.Nop()))
	require.NoError(t, db.SeedDemoData(gdb, logger.Nop()))

	var users int64
	require.NoError(t, gdb.Model(&db.User{}).Count(&users).Error)
	assert.EqualValues(t, 4, users)

	u1, err := repository.NewUserRepository(gdb).GetByUsername(ctx, "user1")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u1.PasswordHash), []byte(db.DemoPassword)))

	pairs := repository.NewPairRepository(gdb)
	partnerID, ok, err := pairs.PartnerOf(ctx, u1.ID)
	require.NoError(t, err)
	require.True(t, ok)

	recs, err := repository.NewMovieRepository(gdb).Recommend(ctx, u1.ID, partnerID)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "The Matrix", recs[0].Title)
	assert.InDelta(t, 2.0, recs[0].AvgRating, 1e-9)
	assert.Equal(t, "Inception", recs[1].Title)
	assert.InDelta(t, 1.5, recs[1].AvgRating, 1e-9)
}
