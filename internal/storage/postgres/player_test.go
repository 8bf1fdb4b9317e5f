package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nonamep-p/plagg-engine/internal/game/character"
	"github.com/nonamep-p/plagg-engine/internal/storage/postgres"
	"github.com/nonamep-p/plagg-engine/internal/testutil"
)

func makePlayer(t *testing.T, id string, class character.Class) *character.Character {
	t.Helper()
	c, err := character.New(id, "Hero "+id, class)
	require.NoError(t, err)
	return c
}

func TestPlayerRepository_CreateAndGet(t *testing.T) {
	repo := postgres.NewPlayerRepository(testutil.NewPool(t))
	ctx := context.Background()

	c := makePlayer(t, "discord-1", character.Warrior)
	c.Gold = 250
	c.AddItem("small-potion", 3)
	c.LearnSkill("power-strike")
	require.NoError(t, repo.Create(ctx, c))

	got, err := repo.Get(ctx, "discord-1")
	require.NoError(t, err)
	assert.Equal(t, c.Name, got.Name)
	assert.Equal(t, character.Warrior, got.Class)
	assert.Equal(t, int64(250), got.Gold)
	assert.Equal(t, 3, got.Inventory["small-potion"])
	assert.True(t, got.Knows("power-strike"))
	assert.Equal(t, c.Base, got.Base)
}

func TestPlayerRepository_DuplicateCreate(t *testing.T) {
	repo := postgres.NewPlayerRepository(testutil.NewPool(t))
	ctx := context.Background()

	c := makePlayer(t, "discord-1", character.Mage)
	require.NoError(t, repo.Create(ctx, c))
	require.ErrorIs(t, repo.Create(ctx, c), postgres.ErrPlayerExists)
}

func TestPlayerRepository_GetMissing(t *testing.T) {
	repo := postgres.NewPlayerRepository(testutil.NewPool(t))
	_, err := repo.Get(context.Background(), "nobody")
	require.ErrorIs(t, err, postgres.ErrPlayerNotFound)
}

func TestPlayerRepository_Save(t *testing.T) {
	repo := postgres.NewPlayerRepository(testutil.NewPool(t))
	ctx := context.Background()

	c := makePlayer(t, "discord-1", character.Rogue)
	require.NoError(t, repo.Create(ctx, c))

	c.GainXP(500)
	c.Gold = 999
	require.NoError(t, repo.Save(ctx, c))

	got, err := repo.Get(ctx, "discord-1")
	require.NoError(t, err)
	assert.Equal(t, c.Level, got.Level)
	assert.Equal(t, int64(999), got.Gold)

	missing := makePlayer(t, "ghost", character.Rogue)
	require.ErrorIs(t, repo.Save(ctx, missing), postgres.ErrPlayerNotFound)
}

func TestPlayerRepository_ListByGuild(t *testing.T) {
	repo := postgres.NewPlayerRepository(testutil.NewPool(t))
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		c := makePlayer(t, id, character.Archer)
		if id != "c" {
			c.GuildID = "guild-1"
		}
		require.NoError(t, repo.Create(ctx, c))
	}

	members, err := repo.ListByGuild(ctx, "guild-1")
	require.NoError(t, err)
	require.Len(t, members, 2)

	none, err := repo.ListByGuild(ctx, "guild-9")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPlayerRepository_Delete(t *testing.T) {
	repo := postgres.NewPlayerRepository(testutil.NewPool(t))
	ctx := context.Background()

	c := makePlayer(t, "discord-1", character.Warrior)
	require.NoError(t, repo.Create(ctx, c))
	require.NoError(t, repo.Delete(ctx, "discord-1"))

	_, err := repo.Get(ctx, "discord-1")
	require.ErrorIs(t, err, postgres.ErrPlayerNotFound)
	require.ErrorIs(t, repo.Delete(ctx, "discord-1"), postgres.ErrPlayerNotFound)
}
