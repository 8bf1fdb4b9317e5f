// Package combat implements the turn-based combat engine: hit resolution,
// elemental matchups, status effects, combo multipliers, and AI behavior
// selection. Sessions are pure state machines; every call is a synchronous
// computation over session state plus a bounded random draw.
package combat

import (
	"github.com/nonamep-p/plagg-engine/internal/content"
	"github.com/nonamep-p/plagg-engine/internal/game/character"
	"github.com/nonamep-p/plagg-engine/internal/game/element"
	"github.com/nonamep-p/plagg-engine/internal/game/status"
)

// Side distinguishes the two opposing teams in a session.
type Side int

const (
	SidePlayers Side = iota
	SideMonsters
)

// String returns a human-readable side label.
func (s Side) String() string {
	if s == SideMonsters {
		return "monsters"
	}
	return "players"
}

// Combatant is one participant's combat snapshot. It is built from a
// character or monster definition at session start and mutated only by the
// session that owns it; persistent models are updated from the terminal
// result, never mid-fight.
type Combatant struct {
	ID   string
	Name string
	Side Side
	// NPC combatants act through the AI classifier and never act directly.
	NPC   bool
	Level int

	MaxHP        int
	HP           int
	MaxSP        int
	SP           int
	Attack       int
	Defense      int
	Speed        int
	Intelligence int
	Luck         int
	Agility      int
	Accuracy     int
	Evasion      int

	// Shield points absorb incoming hit damage before HP (defend action).
	Shield int

	// Affinity is the combatant's innate or weapon element.
	Affinity element.Element

	// Player-only fields.
	Class          character.Class
	UltimateCharge int
	Inventory      map[string]int

	SkillIDs []string

	// NPC-only fields.
	Personality string
	Enraged     bool
	OnEnrage    string
	XPReward    int
	GoldReward  int

	Statuses *status.ActiveSet
}

// IsDead reports whether the combatant is at 0 HP.
func (c *Combatant) IsDead() bool { return c.HP <= 0 }

// HPRatio returns current HP as a fraction of max.
//
// Postcondition: Returns a value in [0, 1] for any combatant with MaxHP > 0.
func (c *Combatant) HPRatio() float64 {
	if c.MaxHP <= 0 {
		return 0
	}
	return float64(c.HP) / float64(c.MaxHP)
}

// ApplyDamage deals amount damage, consuming shield points before HP.
//
// Precondition: amount must be >= 0.
// Postcondition: Returns (HP lost, shield absorbed); HP and Shield stay >= 0.
func (c *Combatant) ApplyDamage(amount int) (hpLoss, absorbed int) {
	if amount <= 0 {
		return 0, 0
	}
	if c.Shield > 0 {
		absorbed = amount
		if absorbed > c.Shield {
			absorbed = c.Shield
		}
		c.Shield -= absorbed
		amount -= absorbed
	}
	if amount > c.HP {
		amount = c.HP
	}
	c.HP -= amount
	return amount, absorbed
}

// HealHP raises HP by amount, clamped to MaxHP. Non-positive amounts are
// ignored.
func (c *Combatant) HealHP(amount int) {
	if amount <= 0 {
		return
	}
	c.HP += amount
	if c.HP > c.MaxHP {
		c.HP = c.MaxHP
	}
}

// RestoreSP raises SP by amount, clamped to MaxSP.
func (c *Combatant) RestoreSP(amount int) {
	if amount <= 0 {
		return
	}
	c.SP += amount
	if c.SP > c.MaxSP {
		c.SP = c.MaxSP
	}
}

// EffectiveSpeed returns speed adjusted by active status modifiers.
//
// Postcondition: Returns >= 0.
func (c *Combatant) EffectiveSpeed() int {
	s := int(float64(c.Speed) * (1.0 + c.Statuses.SpeedModifier()))
	if s < 0 {
		s = 0
	}
	return s
}

// effectiveEvasion returns evasion adjusted by active status modifiers.
func (c *Combatant) effectiveEvasion() int {
	e := int(float64(c.Evasion) * (1.0 + c.Statuses.EvasionModifier()))
	if e < 0 {
		e = 0
	}
	return e
}

// gainCharge adds ultimate charge for players; NPCs have no meter.
func (c *Combatant) gainCharge(n int) {
	if c.NPC || n <= 0 {
		return
	}
	c.UltimateCharge += n
	if c.UltimateCharge > character.MaxUltimateCharge {
		c.UltimateCharge = character.MaxUltimateCharge
	}
}

// FromCharacter builds a player-side combat snapshot from a persistent
// character. Equipment bonuses are baked in; the weapon element becomes the
// combatant's affinity.
func FromCharacter(ch *character.Character, reg *content.Registry) *Combatant {
	eff := ch.EffectiveStats(reg)

	var affinity element.Element
	if weaponID := ch.Equipment["weapon"]; weaponID != "" {
		if it, err := reg.Item(weaponID); err == nil {
			affinity = it.Element
		}
	}

	inv := make(map[string]int, len(ch.Inventory))
	for id, qty := range ch.Inventory {
		inv[id] = qty
	}
	skills := make([]string, len(ch.Skills))
	copy(skills, ch.Skills)

	return &Combatant{
		ID:             ch.ID,
		Name:           ch.Name,
		Side:           SidePlayers,
		Level:          ch.Level,
		MaxHP:          eff.MaxHP,
		HP:             min(ch.HP, eff.MaxHP),
		MaxSP:          eff.MaxSP,
		SP:             min(ch.SP, eff.MaxSP),
		Attack:         eff.Attack,
		Defense:        eff.Defense,
		Speed:          eff.Speed,
		Intelligence:   eff.Intelligence,
		Luck:           eff.Luck,
		Agility:        eff.Agility,
		Accuracy:       ch.Accuracy(reg),
		Evasion:        ch.Evasion(reg),
		Affinity:       affinity,
		Class:          ch.Class,
		UltimateCharge: ch.UltimateCharge,
		Inventory:      inv,
		SkillIDs:       skills,
		Statuses:       status.NewActiveSet(),
	}
}

// FromMonster builds a monster-side combat snapshot from a content
// definition. Each call produces an independent instance; id must be unique
// within the session.
func FromMonster(id string, m *content.Monster) *Combatant {
	skills := make([]string, len(m.Skills))
	copy(skills, m.Skills)
	return &Combatant{
		ID:           id,
		Name:         m.Name,
		Side:         SideMonsters,
		NPC:          true,
		Level:        m.Level,
		MaxHP:        m.MaxHP,
		HP:           m.MaxHP,
		MaxSP:        m.MaxSP,
		SP:           m.MaxSP,
		Attack:       m.Attack,
		Defense:      m.Defense,
		Speed:        m.Speed,
		Intelligence: m.Intelligence,
		Luck:         m.Luck,
		Agility:      m.Agility,
		Accuracy:     m.Accuracy,
		Evasion:      m.Evasion,
		Affinity:     m.Element,
		SkillIDs:     skills,
		Personality:  m.Personality,
		OnEnrage:     m.OnEnrage,
		XPReward:     m.XPReward,
		GoldReward:   m.GoldReward,
		Statuses:     status.NewActiveSet(),
	}
}
