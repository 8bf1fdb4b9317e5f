package character

import (
	"fmt"

	"github.com/nonamep-p/plagg-engine/internal/game/element"
	"github.com/nonamep-p/plagg-engine/internal/game/status"
)

// Class is the character class tag. Behavior differences between classes are
// resolved by explicit switches on this tag, never by embedding or interfaces.
type Class string

const (
	Warrior Class = "warrior"
	Mage    Class = "mage"
	Archer  Class = "archer"
	Rogue   Class = "rogue"
)

// Classes returns all playable classes.
func Classes() []Class {
	return []Class{Warrior, Mage, Archer, Rogue}
}

// ParseClass converts s to a Class.
//
// Postcondition: Returns the Class, or an error if s names no known class.
func ParseClass(s string) (Class, error) {
	switch Class(s) {
	case Warrior, Mage, Archer, Rogue:
		return Class(s), nil
	}
	return "", fmt.Errorf("unknown class %q", s)
}

// BaseStats returns the level-1 stat block for the class.
func BaseStats(c Class) Stats {
	switch c {
	case Mage:
		return Stats{MaxHP: 70, MaxSP: 100, Attack: 8, Defense: 5, Speed: 6, Intelligence: 15, Luck: 8, Agility: 5}
	case Archer:
		return Stats{MaxHP: 80, MaxSP: 60, Attack: 12, Defense: 6, Speed: 12, Intelligence: 7, Luck: 10, Agility: 12}
	case Rogue:
		return Stats{MaxHP: 75, MaxSP: 70, Attack: 10, Defense: 4, Speed: 15, Intelligence: 6, Luck: 12, Agility: 15}
	default:
		return Stats{MaxHP: 100, MaxSP: 50, Attack: 15, Defense: 10, Speed: 8, Intelligence: 5, Luck: 5, Agility: 7}
	}
}

// Ultimate describes a class ultimate ability. The combat resolver consumes
// the full 100-point charge and applies the listed effects in one action.
type Ultimate struct {
	Name       string
	Multiplier float64
	// DamageType is "physical" or "magical".
	DamageType string
	Element    element.Element
	// GuaranteedCrit skips the crit roll and always crits.
	GuaranteedCrit bool

	// Status applied to the target on a landed hit.
	AppliesStatus  status.Kind
	StatusStacks   int
	StatusDuration int

	// Status applied to the user regardless of the hit outcome.
	SelfStatus   status.Kind
	SelfDuration int
}

// UltimateFor resolves the class ultimate. This is the single place class
// ultimates differ; each variant is plain data interpreted by the resolver.
func UltimateFor(c Class) Ultimate {
	switch c {
	case Mage:
		return Ultimate{
			Name:           "Arcane Cataclysm",
			Multiplier:     2.5,
			DamageType:     "magical",
			Element:        element.Fire,
			AppliesStatus:  status.Burn,
			StatusStacks:   2,
			StatusDuration: 3,
		}
	case Archer:
		return Ultimate{
			Name:           "Rain of Arrows",
			Multiplier:     2.8,
			DamageType:     "physical",
			GuaranteedCrit: true,
		}
	case Rogue:
		return Ultimate{
			Name:           "Phantom Flurry",
			Multiplier:     2.2,
			DamageType:     "physical",
			AppliesStatus:  status.Bleed,
			StatusStacks:   2,
			StatusDuration: 3,
			SelfStatus:     status.Haste,
			SelfDuration:   3,
		}
	default:
		return Ultimate{
			Name:           "Blade Tempest",
			Multiplier:     3.0,
			DamageType:     "physical",
			AppliesStatus:  status.Stun,
			StatusStacks:   1,
			StatusDuration: 1,
		}
	}
}

// levelGains returns the stat increases awarded when reaching level. Gains
// grow 10% per level past the first and truncate to integers.
func levelGains(c Class, level int) Stats {
	g := Stats{MaxHP: 10, MaxSP: 5, Attack: 2, Defense: 1, Speed: 1, Intelligence: 1, Luck: 1, Agility: 1}
	switch c {
	case Warrior:
		g.MaxHP += 5
		g.Attack++
		g.Defense++
	case Mage:
		g.MaxSP += 3
		g.Intelligence += 2
	case Archer:
		g.Speed += 2
		g.Agility++
		g.Attack++
	case Rogue:
		g.Speed += 2
		g.Luck++
		g.Agility++
	}
	mult := 1.0 + float64(level-1)*0.1
	scale := func(n int) int { return int(float64(n) * mult) }
	return Stats{
		MaxHP:        scale(g.MaxHP),
		MaxSP:        scale(g.MaxSP),
		Attack:       scale(g.Attack),
		Defense:      scale(g.Defense),
		Speed:        scale(g.Speed),
		Intelligence: scale(g.Intelligence),
		Luck:         scale(g.Luck),
		Agility:      scale(g.Agility),
	}
}
