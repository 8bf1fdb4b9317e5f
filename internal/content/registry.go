package content

import (
	"errors"
	"fmt"
)

// Lookup failures are configuration errors: fatal to the single operation
// that hit them, never a reason to mutate or corrupt state.
var (
	ErrUnknownItem    = errors.New("unknown item")
	ErrUnknownSkill   = errors.New("unknown skill")
	ErrUnknownMonster = errors.New("unknown monster")
	ErrUnknownRecipe  = errors.New("unknown recipe")
	ErrUnknownDungeon = errors.New("unknown dungeon")
)

// Registry is the immutable set of loaded content definitions.
//
// Build one with NewRegistry or Load, then share it freely: the registry is
// safe for concurrent reads and is never mutated after construction.
type Registry struct {
	items    map[string]*Item
	skills   map[string]*Skill
	monsters map[string]*Monster
	recipes  map[string]*Recipe
	dungeons map[string]*Dungeon
}

// NewRegistry builds a Registry from already-parsed definitions.
//
// Precondition: IDs must be unique within each slice.
// Postcondition: Returns a non-nil Registry or an error naming the duplicate.
func NewRegistry(items []*Item, skills []*Skill, monsters []*Monster, recipes []*Recipe, dungeons []*Dungeon) (*Registry, error) {
	r := &Registry{
		items:    make(map[string]*Item, len(items)),
		skills:   make(map[string]*Skill, len(skills)),
		monsters: make(map[string]*Monster, len(monsters)),
		recipes:  make(map[string]*Recipe, len(recipes)),
		dungeons: make(map[string]*Dungeon, len(dungeons)),
	}
	for _, it := range items {
		if _, dup := r.items[it.ID]; dup {
			return nil, fmt.Errorf("content: duplicate item ID %q", it.ID)
		}
		r.items[it.ID] = it
	}
	for _, sk := range skills {
		if _, dup := r.skills[sk.ID]; dup {
			return nil, fmt.Errorf("content: duplicate skill ID %q", sk.ID)
		}
		r.skills[sk.ID] = sk
	}
	for _, m := range monsters {
		if _, dup := r.monsters[m.ID]; dup {
			return nil, fmt.Errorf("content: duplicate monster ID %q", m.ID)
		}
		r.monsters[m.ID] = m
	}
	for _, rc := range recipes {
		if _, dup := r.recipes[rc.ID]; dup {
			return nil, fmt.Errorf("content: duplicate recipe ID %q", rc.ID)
		}
		r.recipes[rc.ID] = rc
	}
	for _, d := range dungeons {
		if _, dup := r.dungeons[d.ID]; dup {
			return nil, fmt.Errorf("content: duplicate dungeon ID %q", d.ID)
		}
		r.dungeons[d.ID] = d
	}
	if err := r.validateReferences(); err != nil {
		return nil, err
	}
	return r, nil
}

// validateReferences checks cross-table references so a missing definition is
// caught at load time rather than mid-combat.
func (r *Registry) validateReferences() error {
	for _, m := range r.monsters {
		for _, skillID := range m.Skills {
			if _, ok := r.skills[skillID]; !ok {
				return fmt.Errorf("content: monster %q references unknown skill %q", m.ID, skillID)
			}
		}
	}
	for _, rc := range r.recipes {
		if _, ok := r.items[rc.Output]; !ok {
			return fmt.Errorf("content: recipe %q outputs unknown item %q", rc.ID, rc.Output)
		}
		for matID := range rc.Materials {
			if _, ok := r.items[matID]; !ok {
				return fmt.Errorf("content: recipe %q requires unknown item %q", rc.ID, matID)
			}
		}
	}
	for _, d := range r.dungeons {
		for _, monID := range d.MonsterPool {
			if _, ok := r.monsters[monID]; !ok {
				return fmt.Errorf("content: dungeon %q pools unknown monster %q", d.ID, monID)
			}
		}
		if d.Boss != "" {
			if _, ok := r.monsters[d.Boss]; !ok {
				return fmt.Errorf("content: dungeon %q names unknown boss %q", d.ID, d.Boss)
			}
		}
	}
	return nil
}

// Item returns the item definition for id.
//
// Postcondition: Returns the Item or a wrapped ErrUnknownItem.
func (r *Registry) Item(id string) (*Item, error) {
	it, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownItem, id)
	}
	return it, nil
}

// Skill returns the skill definition for id.
//
// Postcondition: Returns the Skill or a wrapped ErrUnknownSkill.
func (r *Registry) Skill(id string) (*Skill, error) {
	sk, ok := r.skills[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSkill, id)
	}
	return sk, nil
}

// Monster returns the monster definition for id.
//
// Postcondition: Returns the Monster or a wrapped ErrUnknownMonster.
func (r *Registry) Monster(id string) (*Monster, error) {
	m, ok := r.monsters[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMonster, id)
	}
	return m, nil
}

// Recipe returns the recipe definition for id.
//
// Postcondition: Returns the Recipe or a wrapped ErrUnknownRecipe.
func (r *Registry) Recipe(id string) (*Recipe, error) {
	rc, ok := r.recipes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRecipe, id)
	}
	return rc, nil
}

// Dungeon returns the dungeon definition for id.
//
// Postcondition: Returns the Dungeon or a wrapped ErrUnknownDungeon.
func (r *Registry) Dungeon(id string) (*Dungeon, error) {
	d, ok := r.dungeons[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDungeon, id)
	}
	return d, nil
}

// Items returns all item definitions in unspecified order.
func (r *Registry) Items() []*Item {
	out := make([]*Item, 0, len(r.items))
	for _, it := range r.items {
		out = append(out, it)
	}
	return out
}

// Skills returns all skill definitions in unspecified order.
func (r *Registry) Skills() []*Skill {
	out := make([]*Skill, 0, len(r.skills))
	for _, sk := range r.skills {
		out = append(out, sk)
	}
	return out
}

// Monsters returns all monster definitions in unspecified order.
func (r *Registry) Monsters() []*Monster {
	out := make([]*Monster, 0, len(r.monsters))
	for _, m := range r.monsters {
		out = append(out, m)
	}
	return out
}

// Recipes returns all recipe definitions in unspecified order.
func (r *Registry) Recipes() []*Recipe {
	out := make([]*Recipe, 0, len(r.recipes))
	for _, rc := range r.recipes {
		out = append(out, rc)
	}
	return out
}

// Dungeons returns all dungeon definitions in unspecified order.
func (r *Registry) Dungeons() []*Dungeon {
	out := make([]*Dungeon, 0, len(r.dungeons))
	for _, d := range r.dungeons {
		out = append(out, d)
	}
	return out
}
