// Package element defines damage elements and the elemental matchup table.
//
// The matchup graph is directed and intentionally asymmetric: Holy is strong
// against Shadow AND Shadow is strong against Holy, while Poison is merely
// weak into Holy with no reverse edge. The table is loaded as configured data
// and never symmetrised.
package element

import "fmt"

// Element identifies a damage element.
type Element string

const (
	Physical  Element = "physical"
	Fire      Element = "fire"
	Ice       Element = "ice"
	Lightning Element = "lightning"
	Poison    Element = "poison"
	Holy      Element = "holy"
	Shadow    Element = "shadow"
	Magic     Element = "magic"
)

// All lists every defined element.
func All() []Element {
	return []Element{Physical, Fire, Ice, Lightning, Poison, Holy, Shadow, Magic}
}

// Parse converts a string to an Element.
//
// Postcondition: Returns the matching Element, or an error for unknown names.
func Parse(s string) (Element, error) {
	for _, e := range All() {
		if string(e) == s {
			return e, nil
		}
	}
	return "", fmt.Errorf("element: unknown element %q", s)
}

// Valid reports whether e is one of the defined elements.
func (e Element) Valid() bool {
	for _, known := range All() {
		if e == known {
			return true
		}
	}
	return false
}
