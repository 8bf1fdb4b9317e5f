package content_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nonamep-p/plagg-engine/internal/content"
	"github.com/nonamep-p/plagg-engine/internal/game/element"
)

func sampleDefinitions() ([]*content.Item, []*content.Skill, []*content.Monster, []*content.Recipe, []*content.Dungeon) {
	items := []*content.Item{
		{ID: "iron-sword", Name: "Iron Sword", Slot: "weapon", Rarity: content.RarityCommon, Price: 100, AttackBonus: 5},
		{ID: "iron-ore", Name: "Iron Ore", Slot: "material", Rarity: content.RarityCommon, Price: 10},
		{ID: "small-potion", Name: "Small Potion", Slot: "consumable", Rarity: content.RarityCommon, Price: 25, HealAmount: 30},
	}
	skills := []*content.Skill{
		{ID: "fireball", Name: "Fireball", SPCost: 12, Power: 30, DamageType: "magical", Element: element.Fire, Target: "enemy"},
	}
	monsters := []*content.Monster{
		{ID: "goblin", Name: "Goblin", Level: 3, MaxHP: 40, Attack: 8, Defense: 4, Speed: 6, Accuracy: 70, Evasion: 10, Personality: "aggressive", Skills: []string{"fireball"}, XPReward: 15, GoldReward: 8},
		{ID: "goblin-king", Name: "Goblin King", Level: 10, MaxHP: 300, Attack: 20, Defense: 12, Speed: 8, Accuracy: 80, Evasion: 5, Personality: "tactical", Boss: true, XPReward: 200, GoldReward: 150},
	}
	recipes := []*content.Recipe{
		{ID: "forge-sword", Name: "Forge Iron Sword", Output: "iron-sword", OutputQty: 1, Materials: map[string]int{"iron-ore": 3}, Difficulty: "novice", Duration: 60},
	}
	dungeons := []*content.Dungeon{
		{ID: "goblin-caves", Name: "Goblin Caves", Floors: 5, MinLevel: 1, MonsterPool: []string{"goblin"}, Boss: "goblin-king", BaseReward: 100, BaseXP: 50},
	}
	return items, skills, monsters, recipes, dungeons
}

func TestNewRegistry_LookupAndSentinels(t *testing.T) {
	items, skills, monsters, recipes, dungeons := sampleDefinitions()
	reg, err := content.NewRegistry(items, skills, monsters, recipes, dungeons)
	require.NoError(t, err)

	it, err := reg.Item("iron-sword")
	require.NoError(t, err)
	assert.Equal(t, 5, it.AttackBonus)
	assert.True(t, it.Equippable())

	potion, err := reg.Item("small-potion")
	require.NoError(t, err)
	assert.False(t, potion.Equippable())

	_, err = reg.Item("excalibur")
	assert.ErrorIs(t, err, content.ErrUnknownItem)
	_, err = reg.Skill("meteor")
	assert.ErrorIs(t, err, content.ErrUnknownSkill)
	_, err = reg.Monster("dragon")
	assert.ErrorIs(t, err, content.ErrUnknownMonster)
	_, err = reg.Recipe("brew-elixir")
	assert.ErrorIs(t, err, content.ErrUnknownRecipe)
	_, err = reg.Dungeon("abyss")
	assert.ErrorIs(t, err, content.ErrUnknownDungeon)
}

func TestNewRegistry_RejectsDuplicates(t *testing.T) {
	items, skills, monsters, recipes, dungeons := sampleDefinitions()
	items = append(items, &content.Item{ID: "iron-sword", Name: "Copy"})
	_, err := content.NewRegistry(items, skills, monsters, recipes, dungeons)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate item")
}

func TestNewRegistry_RejectsDanglingReferences(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(monsters []*content.Monster, recipes []*content.Recipe, dungeons []*content.Dungeon)
	}{
		{"monster skill", func(m []*content.Monster, _ []*content.Recipe, _ []*content.Dungeon) {
			m[0].Skills = []string{"no-such-skill"}
		}},
		{"recipe output", func(_ []*content.Monster, r []*content.Recipe, _ []*content.Dungeon) {
			r[0].Output = "no-such-item"
		}},
		{"recipe material", func(_ []*content.Monster, r []*content.Recipe, _ []*content.Dungeon) {
			r[0].Materials = map[string]int{"no-such-item": 1}
		}},
		{"dungeon pool", func(_ []*content.Monster, _ []*content.Recipe, d []*content.Dungeon) {
			d[0].MonsterPool = []string{"no-such-monster"}
		}},
		{"dungeon boss", func(_ []*content.Monster, _ []*content.Recipe, d []*content.Dungeon) {
			d[0].Boss = "no-such-monster"
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			items, skills, monsters, recipes, dungeons := sampleDefinitions()
			tc.mutate(monsters, recipes, dungeons)
			_, err := content.NewRegistry(items, skills, monsters, recipes, dungeons)
			require.Error(t, err)
		})
	}
}
