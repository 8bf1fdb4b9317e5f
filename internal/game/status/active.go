package status

import "fmt"

// Active tracks one applied status effect on a combatant.
type Active struct {
	Def               *Def
	Stacks            int
	DurationRemaining int
	// AppliedBy is the combatant ID of the applier; Taunt redirects the
	// owner's offensive actions to this ID.
	AppliedBy string
}

// ActiveSet tracks all status effects currently applied to one combatant.
// It is not safe for concurrent use; the caller must serialise access.
type ActiveSet struct {
	effects map[Kind]*Active
}

// NewActiveSet creates an empty ActiveSet.
func NewActiveSet() *ActiveSet {
	return &ActiveSet{effects: make(map[Kind]*Active)}
}

// Apply adds or refreshes a status effect.
// If the effect is already present, stacks are incremented (capped at
// def.MaxStacks) and the duration is extended to max(existing, duration).
// If MaxStacks == 0 (unstackable), stacks is always stored as 1.
// duration <= 0 uses def.Duration.
//
// Precondition: def must not be nil; stacks must be >= 1.
// Postcondition: Has(def.ID) is true and Stacks(def.ID) never exceeds
// def.MaxStacks (or 1 when unstackable), no matter how often Apply is called.
func (s *ActiveSet) Apply(def *Def, stacks, duration int, appliedBy string) error {
	if def == nil {
		return fmt.Errorf("status: Apply: def must not be nil")
	}
	if stacks < 1 {
		return fmt.Errorf("status: Apply %q: stacks must be >= 1, got %d", def.ID, stacks)
	}
	if duration <= 0 {
		duration = def.Duration
	}

	if existing, ok := s.effects[def.ID]; ok {
		if def.MaxStacks > 0 {
			newStacks := existing.Stacks + stacks
			if newStacks > def.MaxStacks {
				newStacks = def.MaxStacks
			}
			existing.Stacks = newStacks
		}
		if duration > existing.DurationRemaining {
			existing.DurationRemaining = duration
		}
		existing.AppliedBy = appliedBy
		return nil
	}

	capped := stacks
	if def.MaxStacks == 0 {
		capped = 1
	} else if capped > def.MaxStacks {
		capped = def.MaxStacks
	}
	s.effects[def.ID] = &Active{
		Def:               def,
		Stacks:            capped,
		DurationRemaining: duration,
		AppliedBy:         appliedBy,
	}
	return nil
}

// Cure removes the effect with the given kind. Not-present is a no-op.
//
// Postcondition: Has(kind) is false.
func (s *ActiveSet) Cure(kind Kind) {
	delete(s.effects, kind)
}

// Has reports whether the effect with kind is currently active.
func (s *ActiveSet) Has(kind Kind) bool {
	_, ok := s.effects[kind]
	return ok
}

// Stacks returns the current stack count for kind, or 0 if not present.
func (s *ActiveSet) Stacks(kind Kind) int {
	if a, ok := s.effects[kind]; ok {
		return a.Stacks
	}
	return 0
}

// Duration returns the remaining duration for kind, or 0 if not present.
func (s *ActiveSet) Duration(kind Kind) int {
	if a, ok := s.effects[kind]; ok {
		return a.DurationRemaining
	}
	return 0
}

// All returns a slice of pointers to the active effects. The slice itself is
// a new allocation; the pointed-to Active values are shared and must not be
// modified by callers.
func (s *ActiveSet) All() []*Active {
	out := make([]*Active, 0, len(s.effects))
	for _, a := range s.effects {
		out = append(out, a)
	}
	return out
}

// TickResult summarises one start-of-turn tick.
type TickResult struct {
	// Damage is the total damage-over-time dealt this tick (Burn + Poison + Bleed).
	Damage int
	// Heal is the total heal-over-time applied this tick (Regen).
	Heal int
	// Expired lists the kinds removed because their duration reached zero.
	Expired []Kind
}

// TickStart processes the start of the owner's turn: damage-over-time and
// heal-over-time fire at their per-stack amounts, every duration is
// decremented, and effects at zero duration are removed.
//
// The result is computed in full before any effect is mutated, so a tick
// either fully applies or not at all.
//
// Postcondition: For every kind in result.Expired, Has(kind) is false.
func (s *ActiveSet) TickStart() TickResult {
	var res TickResult
	for _, a := range s.effects {
		res.Damage += a.Def.DotPerStack * a.Stacks
		res.Heal += a.Def.HotPerStack * a.Stacks
		if a.DurationRemaining-1 <= 0 {
			res.Expired = append(res.Expired, a.Def.ID)
		}
	}
	for _, a := range s.effects {
		a.DurationRemaining--
	}
	for _, kind := range res.Expired {
		delete(s.effects, kind)
	}
	return res
}
