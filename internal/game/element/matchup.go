package element

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Edge is one directed entry in the matchup table: attacking element vs
// defending element. Exactly one of Relation or Multiplier must be set.
type Edge struct {
	Attacker   string  `yaml:"attacker"`
	Defender   string  `yaml:"defender"`
	Relation   string  `yaml:"relation,omitempty"`   // "advantage" | "disadvantage"
	Multiplier float64 `yaml:"multiplier,omitempty"` // explicit factor, overrides Relation
}

// Factors are the tunable multipliers applied to relation-style edges.
type Factors struct {
	// Advantage is the damage multiplier for an "advantage" edge.
	Advantage float64
	// Disadvantage is the damage multiplier for a "disadvantage" edge.
	Disadvantage float64
}

// Matchup is the resolved, immutable elemental matchup table.
//
// Invariant: missing edges multiply by exactly 1.0. The graph is directed;
// Multiplier(a, b) and Multiplier(b, a) are independent entries.
type Matchup struct {
	edges map[Element]map[Element]float64
}

// NewMatchup resolves edges against the given factors and returns the table.
//
// Precondition: every edge names valid elements and either a known Relation or
// an explicit Multiplier > 0.
// Postcondition: Returns a non-nil Matchup or an error naming the bad edge.
func NewMatchup(edges []Edge, f Factors) (*Matchup, error) {
	m := &Matchup{edges: make(map[Element]map[Element]float64)}
	for _, e := range edges {
		att, err := Parse(e.Attacker)
		if err != nil {
			return nil, fmt.Errorf("matchup edge %q->%q: %w", e.Attacker, e.Defender, err)
		}
		def, err := Parse(e.Defender)
		if err != nil {
			return nil, fmt.Errorf("matchup edge %q->%q: %w", e.Attacker, e.Defender, err)
		}

		var mult float64
		switch {
		case e.Multiplier > 0:
			mult = e.Multiplier
		case e.Relation == "advantage":
			mult = f.Advantage
		case e.Relation == "disadvantage":
			mult = f.Disadvantage
		default:
			return nil, fmt.Errorf("matchup edge %s->%s: relation must be advantage or disadvantage, or multiplier must be > 0", att, def)
		}

		if _, dup := m.edges[att][def]; dup {
			return nil, fmt.Errorf("matchup edge %s->%s: duplicate entry", att, def)
		}
		if m.edges[att] == nil {
			m.edges[att] = make(map[Element]float64)
		}
		m.edges[att][def] = mult
	}
	return m, nil
}

// Multiplier returns the damage factor for an attack of element att against a
// defender of element def.
//
// Postcondition: Returns the configured edge value, or 1.0 when no edge exists.
func (m *Matchup) Multiplier(att, def Element) float64 {
	if row, ok := m.edges[att]; ok {
		if mult, ok := row[def]; ok {
			return mult
		}
	}
	return 1.0
}

// yamlMatchupFile wraps the YAML top-level key.
type yamlMatchupFile struct {
	Elements []Edge `yaml:"elements"`
}

// LoadMatchup reads the matchup table from a YAML file and resolves it
// against the given factors.
//
// Precondition: path must be a readable YAML file with a top-level "elements" list.
// Postcondition: Returns a non-nil Matchup or an error.
func LoadMatchup(path string, f Factors) (*Matchup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading matchup file %q: %w", path, err)
	}
	var file yamlMatchupFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parsing matchup file %q: %w", path, err)
	}
	return NewMatchup(file.Elements, f)
}

// DefaultEdges returns the shipped matchup graph. Fire and Ice counter each
// other, Lightning beats Ice, Poison is weak into Holy, and Holy and Shadow
// are mutually strong. The asymmetry (no Ice>Lightning, no Holy>Poison edge)
// is deliberate balance data.
func DefaultEdges() []Edge {
	return []Edge{
		{Attacker: "fire", Defender: "ice", Relation: "advantage"},
		{Attacker: "ice", Defender: "fire", Relation: "advantage"},
		{Attacker: "ice", Defender: "lightning", Relation: "disadvantage"},
		{Attacker: "lightning", Defender: "ice", Relation: "advantage"},
		{Attacker: "poison", Defender: "holy", Relation: "disadvantage"},
		{Attacker: "holy", Defender: "shadow", Relation: "advantage"},
		{Attacker: "shadow", Defender: "holy", Relation: "advantage"},
	}
}
