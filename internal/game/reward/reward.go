// Package reward implements the effort-based reward scorer: an ordered
// action log plus activity metrics map to a discrete effort tier, and the
// tier and team size scale the base payout. Scoring is fully deterministic;
// the same log always produces the same reward.
package reward

import (
	"fmt"
	"math"
)

// Activity is the kind of play being scored.
type Activity string

const (
	ActivityCombat    Activity = "combat"
	ActivityDungeon   Activity = "dungeon"
	ActivityGuildRaid Activity = "guild_raid"
	ActivityPvPMatch  Activity = "pvp_match"
	ActivityCrafting  Activity = "crafting"
)

// Tier is the discrete effort classification.
type Tier string

const (
	TierMinimal  Tier = "minimal"
	TierModerate Tier = "moderate"
	TierIntense  Tier = "intense"
	TierMaster   Tier = "master"
)

// Multiplier returns the effort multiplier for the tier.
func (t Tier) Multiplier() float64 {
	switch t {
	case TierModerate:
		return 1.0
	case TierIntense:
		return 1.8
	case TierMaster:
		return 2.5
	default:
		return 0.5
	}
}

// ActionKind buckets logged actions for effort classification.
type ActionKind string

const (
	// KindBasic is attack spam: no effort signal.
	KindBasic ActionKind = "basic"
	// KindElemental is an attack exploiting an elemental matchup.
	KindElemental ActionKind = "elemental"
	// KindCombo is a hit that extended a combo chain.
	KindCombo ActionKind = "combo"
	// KindStatus applied or exploited a status effect.
	KindStatus ActionKind = "status"
	// KindSupport is a heal, buff, or other team-coordination action.
	KindSupport ActionKind = "support"
	// KindStrategic is deliberate play: defends, baits, resource denial.
	KindStrategic ActionKind = "strategic"
)

// Action is one logged action. TimingHit marks a hit landed inside the
// timing window (a critical or a perfectly-timed strike).
type Action struct {
	Kind      ActionKind
	TimingHit bool
}

// Log is the ordered record of actions during one activity.
type Log struct {
	actions []Action
}

// Append records an action at the end of the log.
func (l *Log) Append(a Action) { l.actions = append(l.actions, a) }

// Len returns the number of logged actions.
func (l *Log) Len() int { return len(l.actions) }

// Actions returns a copy of the log in order.
func (l *Log) Actions() []Action {
	out := make([]Action, len(l.actions))
	copy(out, l.actions)
	return out
}

// skillRatio is the fraction of logged actions showing the given kinds (or a
// timing-window hit).
func (l *Log) skillRatio(kinds ...ActionKind) float64 {
	if len(l.actions) == 0 {
		return 0
	}
	wanted := make(map[ActionKind]bool, len(kinds))
	for _, k := range kinds {
		wanted[k] = true
	}
	n := 0
	for _, a := range l.actions {
		if wanted[a.Kind] || a.TimingHit {
			n++
		}
	}
	return float64(n) / float64(len(l.actions))
}

// Classification thresholds on the skilled-action ratio.
const (
	masterRatio   = 0.8
	intenseRatio  = 0.6
	moderateRatio = 0.4
)

func tierFromRatio(r float64) Tier {
	switch {
	case r >= masterRatio:
		return TierMaster
	case r >= intenseRatio:
		return TierIntense
	case r >= moderateRatio:
		return TierModerate
	default:
		return TierMinimal
	}
}

// Input carries the action log plus the per-activity metrics the classifier
// needs. Unused fields are ignored for other activities.
type Input struct {
	Activity Activity
	Log      *Log

	// Dungeon metrics.
	CompletionTurns int
	ParTurns        int
	DamageTaken     int

	// Guild raid metrics.
	DamageDealt  int
	TeamDamage   int
	Participants int

	// Crafting metrics.
	RecipeDifficulty string
	// Quality is the craft quality outcome in [0, 1].
	Quality float64
}

// Score classifies the effort tier for the activity. The rules are public
// and deterministic so rewards stay predictable and fair.
//
// Postcondition: Returns the same Tier for the same Input, always.
func Score(in Input) Tier {
	log := in.Log
	if log == nil {
		log = &Log{}
	}
	switch in.Activity {
	case ActivityDungeon:
		return scoreDungeon(in, log)
	case ActivityGuildRaid:
		return scoreRaid(in, log)
	case ActivityCrafting:
		return scoreCrafting(in)
	case ActivityPvPMatch:
		// Strategic variety and timing wins PvP matches.
		return tierFromRatio(log.skillRatio(KindStrategic, KindStatus, KindSupport))
	default:
		// Combat counts elemental-combo usage and timing-window hits.
		return tierFromRatio(log.skillRatio(KindElemental, KindCombo, KindStatus))
	}
}

// scoreDungeon weighs completion speed and damage taken.
func scoreDungeon(in Input, log *Log) Tier {
	if log.Len() == 0 {
		return TierMinimal
	}
	fast := in.ParTurns > 0 && in.CompletionTurns <= in.ParTurns
	clean := in.DamageTaken == 0
	switch {
	case fast && clean:
		return TierMaster
	case fast || clean:
		return TierIntense
	default:
		return TierModerate
	}
}

// scoreRaid weighs damage share and coordination.
func scoreRaid(in Input, log *Log) Tier {
	if log.Len() == 0 {
		return TierMinimal
	}
	pulledWeight := in.Participants > 0 && in.TeamDamage > 0 &&
		in.DamageDealt*in.Participants >= in.TeamDamage
	coordinated := log.skillRatio(KindSupport) >= 0.2
	switch {
	case pulledWeight && coordinated:
		return TierMaster
	case pulledWeight || coordinated:
		return TierIntense
	default:
		return TierModerate
	}
}

// scoreCrafting maps recipe difficulty to a tier, downgraded one step when
// the quality outcome lands below half.
func scoreCrafting(in Input) Tier {
	var tier Tier
	switch in.RecipeDifficulty {
	case "master":
		tier = TierMaster
	case "journeyman":
		tier = TierIntense
	case "apprentice":
		tier = TierModerate
	default:
		tier = TierMinimal
	}
	if in.Quality < 0.5 {
		tier = downgrade(tier)
	}
	return tier
}

func downgrade(t Tier) Tier {
	switch t {
	case TierMaster:
		return TierIntense
	case TierIntense:
		return TierModerate
	default:
		return TierMinimal
	}
}

// TeamBonus returns the cooperation bonus for the participant count.
//
// Postcondition: Returns 0 solo, 0.10/0.25/0.40 for 2/3/4, 0.60 for 5+.
func TeamBonus(participants int) float64 {
	switch {
	case participants >= 5:
		return 0.60
	case participants == 4:
		return 0.40
	case participants == 3:
		return 0.25
	case participants == 2:
		return 0.10
	default:
		return 0
	}
}

// Payout applies the effort and team multipliers to a base reward.
//
// Postcondition: Returns round(base × tier multiplier × (1 + team bonus)).
func Payout(base int, tier Tier, participants int) int {
	return int(math.Round(float64(base) * tier.Multiplier() * (1.0 + TeamBonus(participants))))
}

// Breakdown reports how a payout was computed, for display.
type Breakdown struct {
	Tier         Tier
	Effort       float64
	TeamBonus    float64
	Base         int
	Final        int
	Participants int
}

// Compute scores the input and applies the payout in one step.
func Compute(in Input, base int) Breakdown {
	tier := Score(in)
	return Breakdown{
		Tier:         tier,
		Effort:       tier.Multiplier(),
		TeamBonus:    TeamBonus(in.Participants),
		Base:         base,
		Final:        Payout(base, tier, in.Participants),
		Participants: in.Participants,
	}
}

// String renders the breakdown for narrative logs.
func (b Breakdown) String() string {
	return fmt.Sprintf("%d (base %d x %.1f %s x %.2f team)", b.Final, b.Base, b.Effort, b.Tier, 1.0+b.TeamBonus)
}
