package combat

import (
	"github.com/nonamep-p/plagg-engine/internal/game/status"
)

// ActionType identifies what a combatant intends to do on their turn.
// The zero value (ActionUnknown) is intentionally invalid.
type ActionType int

const (
	ActionUnknown ActionType = iota // zero value; intentionally invalid
	ActionAttack
	ActionSkill
	ActionItem
	ActionUltimate
	ActionDefend
	ActionFlee
)

// String returns the human-readable name of the ActionType.
func (a ActionType) String() string {
	switch a {
	case ActionAttack:
		return "attack"
	case ActionSkill:
		return "skill"
	case ActionItem:
		return "item"
	case ActionUltimate:
		return "ultimate"
	case ActionDefend:
		return "defend"
	case ActionFlee:
		return "flee"
	default:
		return "unknown"
	}
}

// Action is one combatant's chosen action for a turn.
type Action struct {
	Type ActionType
	// TargetID selects the target for offensive actions; empty picks the
	// first living opponent. A taunt overrides this selection.
	TargetID string
	// SkillID names the skill for ActionSkill.
	SkillID string
	// ItemID names the consumable for ActionItem.
	ItemID string
}

// Reason classifies the outcome of an Act call.
type Reason int

const (
	// ReasonPerformed means the action resolved normally.
	ReasonPerformed Reason = iota
	// ReasonCannotPerform means the actor lacked a resource (SP, charge,
	// inventory, cooldown). The turn is NOT consumed and nothing mutated.
	ReasonCannotPerform
	// ReasonInvalidAction means the request itself was malformed: unknown
	// action type, unresolvable or same-side target, or an action the actor
	// can never take. The turn is NOT consumed and nothing mutated.
	ReasonInvalidAction
	// ReasonTargetDefeated means the target was already at 0 HP, or could no
	// longer be resolved once the action landed. The action silently fails
	// and the turn is forfeited.
	ReasonTargetDefeated
	// ReasonSkipped means a crowd-control effect forcibly skipped the turn.
	ReasonSkipped
	// ReasonFled means a flee attempt succeeded and the session ended.
	ReasonFled
	// ReasonFleeFailed means a flee attempt failed; the turn is consumed.
	ReasonFleeFailed
)

// String returns a human-readable reason label.
func (r Reason) String() string {
	switch r {
	case ReasonPerformed:
		return "performed"
	case ReasonCannotPerform:
		return "cannot perform"
	case ReasonInvalidAction:
		return "invalid action"
	case ReasonTargetDefeated:
		return "target defeated"
	case ReasonSkipped:
		return "skipped"
	case ReasonFled:
		return "fled"
	case ReasonFleeFailed:
		return "flee failed"
	default:
		return "unknown"
	}
}

// HitKind is the three-tier hit roll result.
type HitKind int

const (
	Miss HitKind = iota
	Graze
	Hit
)

// String returns a human-readable hit label.
func (h HitKind) String() string {
	switch h {
	case Hit:
		return "hit"
	case Graze:
		return "graze"
	default:
		return "miss"
	}
}

// Rewards is the payout finalized when a session reaches Victory.
type Rewards struct {
	XP   int
	Gold int
}

// TurnResult reports everything that happened during one Act call, including
// NPC reactions resolved in the same turn.
type TurnResult struct {
	Reason Reason
	Action ActionType
	// TurnConsumed is false only for ReasonCannotPerform/ReasonInvalidAction.
	TurnConsumed bool

	Hit    HitKind
	Damage int
	Crit   bool
	Healed int
	// StatusesApplied lists effects the action applied to its target.
	StatusesApplied []status.Kind
	// UltimateName is set when the action was a class ultimate.
	UltimateName string

	// EnragedIDs lists NPC combatants that entered enrage this turn.
	EnragedIDs []string

	State State
	// Log holds the most recent narrative lines (bounded).
	Log []string
	// Rewards is non-nil exactly once, on the Active -> Victory transition.
	Rewards *Rewards
}
