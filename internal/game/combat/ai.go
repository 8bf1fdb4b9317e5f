package combat

import "github.com/nonamep-p/plagg-engine/internal/content"

// AIState is the finite behavior state an NPC occupies for one action.
type AIState int

const (
	StateAggressive AIState = iota
	StateDefensive
	StateTactical
	StateEnrage
)

// String returns a human-readable state label.
func (s AIState) String() string {
	switch s {
	case StateDefensive:
		return "defensive"
	case StateTactical:
		return "tactical"
	case StateEnrage:
		return "enrage"
	default:
		return "aggressive"
	}
}

// tacticalHealThreshold is the own-HP ratio under which a tactical NPC
// prefers recovery over attack.
const tacticalHealThreshold = 0.4

// classify picks the NPC's behavior state for this action.
//
// Enrage overrides everything once entered and never clears. Defensive wins
// when the opposing combo has grown past the threshold. Otherwise the
// personality tag decides.
//
// Postcondition: Returns StateEnrage whenever npc.Enraged is true.
func classify(npc *Combatant, opposingCombo, defensiveComboThreshold int) AIState {
	if npc.Enraged {
		return StateEnrage
	}
	if opposingCombo > defensiveComboThreshold {
		return StateDefensive
	}
	switch npc.Personality {
	case "defensive":
		return StateDefensive
	case "tactical":
		return StateTactical
	default:
		return StateAggressive
	}
}

type npcChoiceKind int

const (
	npcAttack npcChoiceKind = iota
	npcSkill
	npcHeal
	npcDefend
)

// npcChoice is the concrete action an NPC resolved to take.
type npcChoice struct {
	Kind  npcChoiceKind
	Skill *content.Skill
}

// chooseAction maps the behavior state to a concrete action given the NPC's
// usable skills.
//
// Aggressive and Enrage pick the strongest affordable offensive skill, basic
// attack when none. Defensive mitigates. Tactical heals below the threshold
// when it can, otherwise attacks.
func chooseAction(npc *Combatant, opposingCombo, defensiveComboThreshold int, usable []*content.Skill) npcChoice {
	state := classify(npc, opposingCombo, defensiveComboThreshold)
	switch state {
	case StateDefensive:
		return npcChoice{Kind: npcDefend}
	case StateTactical:
		if npc.HPRatio() < tacticalHealThreshold {
			if heal := bestHeal(usable); heal != nil {
				return npcChoice{Kind: npcHeal, Skill: heal}
			}
			return npcChoice{Kind: npcDefend}
		}
		return offensive(usable)
	default:
		return offensive(usable)
	}
}

func offensive(usable []*content.Skill) npcChoice {
	var best *content.Skill
	for _, sk := range usable {
		if sk.Power <= 0 || sk.Target == "self" {
			continue
		}
		if best == nil || sk.Power > best.Power {
			best = sk
		}
	}
	if best != nil {
		return npcChoice{Kind: npcSkill, Skill: best}
	}
	return npcChoice{Kind: npcAttack}
}

func bestHeal(usable []*content.Skill) *content.Skill {
	var best *content.Skill
	for _, sk := range usable {
		if sk.HealPercent <= 0 {
			continue
		}
		if best == nil || sk.HealPercent > best.HealPercent {
			best = sk
		}
	}
	return best
}
