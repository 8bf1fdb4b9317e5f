// Package status implements status-effect definitions and the per-combatant
// active-effect set: damage over time, crowd control gates, and stat
// modifiers.
package status

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Kind identifies a status effect.
type Kind string

const (
	Burn    Kind = "burn"
	Frost   Kind = "frost"
	Shock   Kind = "shock"
	Poison  Kind = "poison"
	Bleed   Kind = "bleed"
	Stun    Kind = "stun"
	Silence Kind = "silence"
	Taunt   Kind = "taunt"
	Haste   Kind = "haste"
	Slow    Kind = "slow"
	Regen   Kind = "regen"
	Shield  Kind = "shield"
)

// Def is the static definition of a status effect, loaded from YAML.
type Def struct {
	ID          Kind   `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// MaxStacks caps how high the effect stacks; 0 = unstackable (always 1).
	MaxStacks int `yaml:"max_stacks"`
	// Duration is the default duration in turns when the applier does not
	// specify one.
	Duration int `yaml:"duration"`
	// DotPerStack is damage dealt per stack at the start of the owner's turn.
	DotPerStack int `yaml:"dot_per_stack"`
	// HotPerStack is healing applied per stack at the start of the owner's turn.
	HotPerStack int `yaml:"hot_per_stack"`
	// SpeedMod is the fractional speed modifier while active (-0.3 = 30% slower).
	SpeedMod float64 `yaml:"speed_mod"`
	// EvasionMod is the fractional evasion modifier while active.
	EvasionMod float64 `yaml:"evasion_mod"`
	// DamageDealtMod is the fractional outgoing-damage modifier while active.
	DamageDealtMod float64 `yaml:"damage_dealt_mod"`
	// DamageTakenMod is the fractional incoming-damage modifier while active
	// (-0.4 = 40% damage reduction).
	DamageTakenMod float64 `yaml:"damage_taken_mod"`
	// BlocksAll gates every action for the owner's turn (Stun, Shock).
	BlocksAll bool `yaml:"blocks_all"`
	// BlocksSkills gates skill and ultimate use only (Silence).
	BlocksSkills bool `yaml:"blocks_skills"`
	// ForcesTarget redirects the owner's offensive actions to the applier (Taunt).
	ForcesTarget bool `yaml:"forces_target"`
}

// Registry holds all known status Defs keyed by Kind.
type Registry struct {
	defs map[Kind]*Def
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[Kind]*Def)}
}

// Register adds def to the registry, overwriting any existing entry with the same ID.
//
// Precondition: def must not be nil and def.ID must not be empty.
func (r *Registry) Register(def *Def) {
	r.defs[def.ID] = def
}

// Get returns the Def for kind, or (nil, false) if not found.
func (r *Registry) Get(kind Kind) (*Def, bool) {
	d, ok := r.defs[kind]
	return d, ok
}

// All returns a snapshot slice of all registered Defs.
func (r *Registry) All() []*Def {
	out := make([]*Def, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	return out
}

// yamlEffectsFile wraps the YAML top-level key.
type yamlEffectsFile struct {
	Effects []*Def `yaml:"effects"`
}

// LoadFile reads status-effect definitions from a single YAML file and
// returns a populated Registry.
//
// Precondition: path must be a readable YAML file with a top-level "effects" list.
// Postcondition: Returns a non-nil Registry, or an error if parsing fails or a
// definition is invalid.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading effects file %q: %w", path, err)
	}
	var file yamlEffectsFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parsing effects file %q: %w", path, err)
	}

	reg := NewRegistry()
	for _, def := range file.Effects {
		if def.ID == "" {
			return nil, fmt.Errorf("effects file %q: definition with empty id", path)
		}
		if def.MaxStacks < 0 {
			return nil, fmt.Errorf("effect %q: max_stacks must be >= 0", def.ID)
		}
		if def.Duration < 1 {
			return nil, fmt.Errorf("effect %q: duration must be >= 1", def.ID)
		}
		reg.Register(def)
	}
	return reg, nil
}

// DefaultRegistry returns the shipped effect definitions. Stack caps follow
// the balance sheet: Burn 5, Poison 3, Bleed 4; everything else is
// unstackable.
func DefaultRegistry() *Registry {
	reg := NewRegistry()
	for _, def := range []*Def{
		{ID: Burn, Name: "Burning", MaxStacks: 5, Duration: 3, DotPerStack: 5},
		{ID: Poison, Name: "Poisoned", MaxStacks: 3, Duration: 4, DotPerStack: 3},
		{ID: Bleed, Name: "Bleeding", MaxStacks: 4, Duration: 3, DotPerStack: 4},
		{ID: Frost, Name: "Frostbitten", Duration: 2, SpeedMod: -0.3, EvasionMod: -0.1},
		{ID: Shock, Name: "Shocked", Duration: 1, BlocksAll: true},
		{ID: Stun, Name: "Stunned", Duration: 1, BlocksAll: true},
		{ID: Silence, Name: "Silenced", Duration: 2, BlocksSkills: true},
		{ID: Taunt, Name: "Taunted", Duration: 2, ForcesTarget: true},
		{ID: Haste, Name: "Hastened", Duration: 3, SpeedMod: 0.3, DamageDealtMod: 0.2},
		{ID: Slow, Name: "Slowed", Duration: 2, SpeedMod: -0.3, DamageDealtMod: -0.2},
		{ID: Regen, Name: "Regenerating", Duration: 3, HotPerStack: 8},
		{ID: Shield, Name: "Shielded", Duration: 2, DamageTakenMod: -0.4},
	} {
		reg.Register(def)
	}
	return reg
}
