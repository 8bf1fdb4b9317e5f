package combat

import (
	"math"

	"github.com/nonamep-p/plagg-engine/internal/config"
	"github.com/nonamep-p/plagg-engine/internal/game/element"
	"github.com/nonamep-p/plagg-engine/internal/game/rng"
)

// Scalar constants of the damage model. The externally tunable knobs live in
// config.CombatConfig; these are structural.
const (
	grazeWindow    = 0.1
	grazeFactor    = 0.6
	critBase       = 0.05
	critPerLuck    = 0.002
	critCap        = 0.75
	critFactor     = 1.5
	damageExponent = 1.2
	damageVariance = 0.05
)

func clampF(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// hitRoll resolves the three-tier hit check.
//
// The hit probability is acc/(acc+eva) clamped to [0.05, 0.95]; the top
// grazeWindow fraction of the success range downgrades to a graze.
//
// Postcondition: Returns (Hit, 1.0), (Graze, grazeFactor), or (Miss, 0).
func hitRoll(src rng.Source, acc, eva int) (HitKind, float64) {
	if eva < 1 {
		eva = 1
	}
	pHit := clampF(float64(acc)/float64(acc+eva), 0.05, 0.95)
	roll := src.Float64()
	switch {
	case roll <= pHit*(1.0-grazeWindow):
		return Hit, 1.0
	case roll <= pHit:
		return Graze, grazeFactor
	}
	return Miss, 0.0
}

// critRoll resolves a critical check from luck.
//
// Postcondition: Crit chance is critBase + luck*critPerLuck, capped at critCap.
func critRoll(src rng.Source, luck int) bool {
	return src.Float64() < clampF(critBase+float64(luck)*critPerLuck, 0.0, critCap)
}

// scaledDamage computes power × (stat/(stat+effDef))^damageExponent × variance,
// floored at 1. Penetration reduces the defensive stat before scaling.
func scaledDamage(src rng.Source, power float64, stat, def, pen int) int {
	effDef := def - pen
	if effDef < 1 {
		effDef = 1
	}
	scale := math.Pow(float64(stat)/float64(stat+effDef), damageExponent)
	variance := rng.Uniform(src, 1.0-damageVariance, 1.0+damageVariance)
	dmg := int(math.Round(power * scale * variance))
	if dmg < 1 {
		dmg = 1
	}
	return dmg
}

// strikeResult is the outcome of one resolved strike.
type strikeResult struct {
	Kind HitKind
	Crit bool
	// HPDamage is the HP actually lost after shield absorption.
	HPDamage int
	// Absorbed is the portion soaked by shield points.
	Absorbed int
}

// resolver applies the full damage pipeline for one strike.
type resolver struct {
	cfg     config.CombatConfig
	matchup *element.Matchup
	src     rng.Source
}

// strike resolves one attack from attacker to defender.
//
// Pipeline: hit roll, base damage (physical or magical), crit, affinity
// bonus, elemental matchup, combo multiplier, enrage bonus, status damage
// modifiers, shield absorption. Base damage rounds to an integer first; the
// multiplied total rounds once at the end and lands at 1 minimum.
//
// Precondition: attacker and defender must be non-nil and alive.
func (r *resolver) strike(attacker, defender *Combatant, power float64, damageType string, elem element.Element, comboCount int, guaranteedCrit bool) strikeResult {
	kind, hitMult := hitRoll(r.src, attacker.Accuracy, defender.effectiveEvasion())
	if kind == Miss {
		return strikeResult{Kind: Miss}
	}

	var base int
	if damageType == "magical" {
		base = scaledDamage(r.src, power, attacker.Intelligence, defender.Intelligence, 0)
	} else {
		base = scaledDamage(r.src, power, attacker.Attack, defender.Defense, 0)
	}

	total := float64(base) * hitMult

	crit := guaranteedCrit || critRoll(r.src, attacker.Luck)
	if crit {
		total *= critFactor
	}
	if elem != "" && elem == attacker.Affinity {
		total *= 1.0 + r.cfg.AffinityBonus
	}
	if elem != "" {
		total *= r.matchup.Multiplier(elem, defender.Affinity)
	}
	total *= r.cfg.ComboMultiplier(comboCount)
	if attacker.Enraged {
		total *= 1.0 + r.cfg.EnrageBonus
	}
	total *= 1.0 + attacker.Statuses.DamageDealtModifier()
	total *= 1.0 + defender.Statuses.DamageTakenModifier()

	dmg := int(math.Round(total))
	if dmg < 1 {
		dmg = 1
	}
	hpLoss, absorbed := defender.ApplyDamage(dmg)
	return strikeResult{Kind: kind, Crit: crit, HPDamage: hpLoss, Absorbed: absorbed}
}
