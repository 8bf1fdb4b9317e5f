// Package content defines the static game-content tables: items, skills,
// monsters, crafting recipes, and dungeons. Content is parsed from YAML once
// at startup into an immutable Registry that is passed explicitly to the
// systems that need it.
package content

import (
	"github.com/nonamep-p/plagg-engine/internal/game/element"
	"github.com/nonamep-p/plagg-engine/internal/game/status"
)

// Rarity buckets for items and crafting outputs.
const (
	RarityCommon    = "common"
	RarityUncommon  = "uncommon"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
)

// Item is a static item definition.
type Item struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// Slot is "" for non-equippable items, otherwise one of
	// "weapon", "armor", "accessory", "consumable", "material".
	Slot   string `yaml:"slot"`
	Rarity string `yaml:"rarity"`
	Price  int    `yaml:"price"`
	// Element is the weapon element; empty means physical.
	Element element.Element `yaml:"element,omitempty"`

	// Equipment stat bonuses.
	AttackBonus       int `yaml:"attack_bonus,omitempty"`
	DefenseBonus      int `yaml:"defense_bonus,omitempty"`
	SpeedBonus        int `yaml:"speed_bonus,omitempty"`
	IntelligenceBonus int `yaml:"intelligence_bonus,omitempty"`

	// Consumable effects.
	HealAmount int           `yaml:"heal_amount,omitempty"`
	SPRestore  int           `yaml:"sp_restore,omitempty"`
	Cures      []status.Kind `yaml:"cures,omitempty"`
}

// Equippable reports whether the item occupies an equipment slot.
func (i *Item) Equippable() bool {
	switch i.Slot {
	case "weapon", "armor", "accessory":
		return true
	}
	return false
}

// Skill is a static skill definition.
type Skill struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	SPCost      int    `yaml:"sp_cost"`
	Cooldown    int    `yaml:"cooldown"`
	// Power is the base power fed into the damage formula; 0 for pure
	// utility skills.
	Power float64 `yaml:"power"`
	// DamageType is "physical" or "magical".
	DamageType string          `yaml:"damage_type"`
	Element    element.Element `yaml:"element,omitempty"`
	// Target is "enemy" or "self".
	Target string `yaml:"target"`
	// HealPercent heals the caster for this fraction of max HP.
	HealPercent float64 `yaml:"heal_percent,omitempty"`

	// Status application on the target (or self for self-targeted skills).
	AppliesStatus  status.Kind `yaml:"applies_status,omitempty"`
	StatusStacks   int         `yaml:"status_stacks,omitempty"`
	StatusDuration int         `yaml:"status_duration,omitempty"`
}

// Monster is a static monster definition.
type Monster struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Level int    `yaml:"level"`

	MaxHP        int `yaml:"max_hp"`
	MaxSP        int `yaml:"max_sp"`
	Attack       int `yaml:"attack"`
	Defense      int `yaml:"defense"`
	Speed        int `yaml:"speed"`
	Intelligence int `yaml:"intelligence"`
	Luck         int `yaml:"luck"`
	Agility      int `yaml:"agility"`
	Accuracy     int `yaml:"accuracy"`
	Evasion      int `yaml:"evasion"`

	Element element.Element `yaml:"element,omitempty"`
	// Personality selects the AI classifier bias: "aggressive", "defensive",
	// "tactical". Enrage is a state every monster can enter, not a personality.
	Personality string   `yaml:"personality"`
	Skills      []string `yaml:"skills,omitempty"`
	// OnEnrage names a Lua hook fired when the monster enrages (boss phase).
	OnEnrage string `yaml:"on_enrage,omitempty"`

	XPReward   int `yaml:"xp_reward"`
	GoldReward int `yaml:"gold_reward"`
	// Boss monsters anchor dungeon final floors and guild raids.
	Boss bool `yaml:"boss,omitempty"`
}

// Recipe is a static crafting recipe.
type Recipe struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	// Output is the crafted item ID.
	Output    string `yaml:"output"`
	OutputQty int    `yaml:"output_qty"`
	// Materials maps item ID to the required quantity.
	Materials map[string]int `yaml:"materials"`
	// Difficulty is "novice", "apprentice", "journeyman", or "master".
	Difficulty string `yaml:"difficulty"`
	// Duration is the crafting time in seconds.
	Duration int `yaml:"duration"`
}

// Dungeon is a static dungeon definition.
type Dungeon struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Floors   int    `yaml:"floors"`
	MinLevel int    `yaml:"min_level"`
	// MonsterPool lists monster IDs eligible for floor encounters.
	MonsterPool []string `yaml:"monster_pool"`
	// Boss is the monster ID of the final-floor boss.
	Boss string `yaml:"boss"`
	// BaseReward is the base gold reward fed to the reward scorer.
	BaseReward int `yaml:"base_reward"`
	BaseXP     int `yaml:"base_xp"`
}
