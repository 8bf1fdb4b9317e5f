package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nonamep-p/plagg-engine/internal/game/guild"
	"github.com/nonamep-p/plagg-engine/internal/storage/postgres"
	"github.com/nonamep-p/plagg-engine/internal/testutil"
)

func TestGuildRepository_RoundTrip(t *testing.T) {
	repo := postgres.NewGuildRepository(testutil.NewPool(t))
	ctx := context.Background()

	g, err := guild.New("g1", "Cheese Appreciation Society", "alice")
	require.NoError(t, err)
	require.NoError(t, g.Join("bob"))
	require.NoError(t, g.Deposit("bob", 40))
	require.NoError(t, repo.Create(ctx, g))

	got, err := repo.Get(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, g.Name, got.Name)
	assert.Equal(t, int64(40), got.Bank)
	require.Len(t, got.Members, 2)
	assert.Equal(t, guild.RoleLeader, got.Member("alice").Role)
	assert.Equal(t, int64(40), got.Member("bob").Contribution)
}

func TestGuildRepository_DuplicateName(t *testing.T) {
	repo := postgres.NewGuildRepository(testutil.NewPool(t))
	ctx := context.Background()

	g1, err := guild.New("g1", "The Originals", "alice")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, g1))

	g2, err := guild.New("g2", "The Originals", "bob")
	require.NoError(t, err)
	require.ErrorIs(t, repo.Create(ctx, g2), postgres.ErrGuildNameTaken)
}

func TestGuildRepository_Save(t *testing.T) {
	repo := postgres.NewGuildRepository(testutil.NewPool(t))
	ctx := context.Background()

	g, err := guild.New("g1", "Savers", "alice")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, g))

	g.AddXP(1500)
	require.NoError(t, g.Join("bob"))
	require.NoError(t, repo.Save(ctx, g))

	got, err := repo.Get(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Level)
	require.Len(t, got.Members, 2)
}

func TestGuildRepository_SaveDisbandedDeletes(t *testing.T) {
	repo := postgres.NewGuildRepository(testutil.NewPool(t))
	ctx := context.Background()

	g, err := guild.New("g1", "Short Lived", "alice")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, g))

	require.NoError(t, g.Leave("alice"))
	require.True(t, g.Disbanded)
	require.NoError(t, repo.Save(ctx, g))

	_, err = repo.Get(ctx, "g1")
	require.ErrorIs(t, err, postgres.ErrGuildNotFound)
}

func TestGuildRepository_GetMissing(t *testing.T) {
	repo := postgres.NewGuildRepository(testutil.NewPool(t))
	_, err := repo.Get(context.Background(), "nope")
	require.ErrorIs(t, err, postgres.ErrGuildNotFound)
}
