package content

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// File names expected under the content directory.
const (
	itemsFile    = "items.yaml"
	skillsFile   = "skills.yaml"
	monstersFile = "monsters.yaml"
	recipesFile  = "recipes.yaml"
	dungeonsFile = "dungeons.yaml"
)

type yamlItemsFile struct {
	Items []*Item `yaml:"items"`
}

type yamlSkillsFile struct {
	Skills []*Skill `yaml:"skills"`
}

type yamlMonstersFile struct {
	Monsters []*Monster `yaml:"monsters"`
}

type yamlRecipesFile struct {
	Recipes []*Recipe `yaml:"recipes"`
}

type yamlDungeonsFile struct {
	Dungeons []*Dungeon `yaml:"dungeons"`
}

// decodeStrict parses YAML with unknown fields rejected.
func decodeStrict(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %q: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("parsing %q: %w", path, err)
	}
	return nil
}

// Load reads all content files from dir and returns a validated Registry.
// A missing recipes or dungeons file is tolerated (those tables may be empty
// on a fresh deployment); items, skills, and monsters are required.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error naming the first
// file or definition that failed.
func Load(dir string) (*Registry, error) {
	var items yamlItemsFile
	if err := decodeStrict(filepath.Join(dir, itemsFile), &items); err != nil {
		return nil, err
	}
	var skills yamlSkillsFile
	if err := decodeStrict(filepath.Join(dir, skillsFile), &skills); err != nil {
		return nil, err
	}
	var monsters yamlMonstersFile
	if err := decodeStrict(filepath.Join(dir, monstersFile), &monsters); err != nil {
		return nil, err
	}

	var recipes yamlRecipesFile
	if err := decodeStrict(filepath.Join(dir, recipesFile), &recipes); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	var dungeons yamlDungeonsFile
	if err := decodeStrict(filepath.Join(dir, dungeonsFile), &dungeons); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	reg, err := NewRegistry(items.Items, skills.Skills, monsters.Monsters, recipes.Recipes, dungeons.Dungeons)
	if err != nil {
		return nil, err
	}
	if err := validateDefinitions(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// validateDefinitions checks per-definition field invariants.
func validateDefinitions(r *Registry) error {
	for _, it := range r.Items() {
		if it.ID == "" || it.Name == "" {
			return fmt.Errorf("content: item with empty id or name")
		}
		if it.Price < 0 {
			return fmt.Errorf("content: item %q: price must be >= 0", it.ID)
		}
		if it.Element != "" && !it.Element.Valid() {
			return fmt.Errorf("content: item %q: unknown element %q", it.ID, it.Element)
		}
	}
	for _, sk := range r.Skills() {
		if sk.ID == "" || sk.Name == "" {
			return fmt.Errorf("content: skill with empty id or name")
		}
		if sk.SPCost < 0 {
			return fmt.Errorf("content: skill %q: sp_cost must be >= 0", sk.ID)
		}
		if sk.DamageType != "" && sk.DamageType != "physical" && sk.DamageType != "magical" {
			return fmt.Errorf("content: skill %q: damage_type must be physical or magical, got %q", sk.ID, sk.DamageType)
		}
		if sk.Element != "" && !sk.Element.Valid() {
			return fmt.Errorf("content: skill %q: unknown element %q", sk.ID, sk.Element)
		}
	}
	for _, m := range r.Monsters() {
		if m.ID == "" || m.Name == "" {
			return fmt.Errorf("content: monster with empty id or name")
		}
		if m.MaxHP < 1 {
			return fmt.Errorf("content: monster %q: max_hp must be >= 1", m.ID)
		}
		switch m.Personality {
		case "", "aggressive", "defensive", "tactical":
		default:
			return fmt.Errorf("content: monster %q: unknown personality %q", m.ID, m.Personality)
		}
		if m.Element != "" && !m.Element.Valid() {
			return fmt.Errorf("content: monster %q: unknown element %q", m.ID, m.Element)
		}
	}
	for _, rc := range r.Recipes() {
		if rc.OutputQty < 1 {
			return fmt.Errorf("content: recipe %q: output_qty must be >= 1", rc.ID)
		}
		if len(rc.Materials) == 0 {
			return fmt.Errorf("content: recipe %q: materials must not be empty", rc.ID)
		}
		switch rc.Difficulty {
		case "novice", "apprentice", "journeyman", "master":
		default:
			return fmt.Errorf("content: recipe %q: unknown difficulty %q", rc.ID, rc.Difficulty)
		}
	}
	for _, d := range r.Dungeons() {
		if d.Floors < 1 {
			return fmt.Errorf("content: dungeon %q: floors must be >= 1", d.ID)
		}
		if len(d.MonsterPool) == 0 {
			return fmt.Errorf("content: dungeon %q: monster_pool must not be empty", d.ID)
		}
	}
	return nil
}
