package status

// BlocksAll reports whether any active effect gates every action this turn
// (Stun, Shock).
func (s *ActiveSet) BlocksAll() bool {
	for _, a := range s.effects {
		if a.Def.BlocksAll {
			return true
		}
	}
	return false
}

// BlocksSkills reports whether any active effect gates skill and ultimate use
// (Silence). BlocksAll effects also block skills.
func (s *ActiveSet) BlocksSkills() bool {
	for _, a := range s.effects {
		if a.Def.BlocksSkills || a.Def.BlocksAll {
			return true
		}
	}
	return false
}

// ForcedTarget returns the combatant ID the owner is compelled to target
// (Taunt), or "" when no taunt is active.
func (s *ActiveSet) ForcedTarget() string {
	for _, a := range s.effects {
		if a.Def.ForcesTarget {
			return a.AppliedBy
		}
	}
	return ""
}

// SpeedModifier returns the net fractional speed modifier from all active
// effects. Modifiers are additive across effects.
func (s *ActiveSet) SpeedModifier() float64 {
	total := 0.0
	for _, a := range s.effects {
		total += a.Def.SpeedMod
	}
	return total
}

// EvasionModifier returns the net fractional evasion modifier.
func (s *ActiveSet) EvasionModifier() float64 {
	total := 0.0
	for _, a := range s.effects {
		total += a.Def.EvasionMod
	}
	return total
}

// DamageDealtModifier returns the net fractional outgoing-damage modifier.
func (s *ActiveSet) DamageDealtModifier() float64 {
	total := 0.0
	for _, a := range s.effects {
		total += a.Def.DamageDealtMod
	}
	return total
}

// DamageTakenModifier returns the net fractional incoming-damage modifier.
// Negative values reduce incoming damage (Shield).
func (s *ActiveSet) DamageTakenModifier() float64 {
	total := 0.0
	for _, a := range s.effects {
		total += a.Def.DamageTakenMod
	}
	return total
}
