// Package crafting implements timed crafting jobs: starting a craft deducts
// the recipe materials, completion after the recipe duration rolls a
// difficulty-driven quality outcome, and cancelling refunds the materials.
package crafting

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nonamep-p/plagg-engine/internal/content"
	"github.com/nonamep-p/plagg-engine/internal/game/character"
	"github.com/nonamep-p/plagg-engine/internal/game/rng"
)

var (
	ErrCraftNotFound = errors.New("craft not found")
	ErrCraftNotReady = errors.New("craft not finished yet")
	ErrNotOwner      = errors.New("craft belongs to another character")
)

// Craft is one in-flight crafting job. Quality is rolled when the job
// starts so a seeded source fully determines the outcome.
type Craft struct {
	ID          string    `json:"id"`
	CharacterID string    `json:"character_id"`
	RecipeID    string    `json:"recipe_id"`
	StartedAt   time.Time `json:"started_at"`
	ReadyAt     time.Time `json:"ready_at"`
	// Quality is the rolled outcome in [0, 1].
	Quality float64 `json:"quality"`
}

// qualityShift biases the quality roll by recipe difficulty. Easy recipes
// rarely fail; master recipes punish a bad roll.
func qualityShift(difficulty string) float64 {
	switch difficulty {
	case "novice":
		return 0.30
	case "apprentice":
		return 0.15
	case "journeyman":
		return 0.0
	default:
		return -0.15
	}
}

// Manager owns in-flight crafts.
type Manager struct {
	mu      sync.Mutex
	crafts  map[string]*Craft
	content *content.Registry
	src     rng.Source
	now     func() time.Time
	log     *zap.Logger
}

// NewManager builds the crafting manager. now defaults to time.Now.
func NewManager(reg *content.Registry, src rng.Source, log *zap.Logger, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{
		crafts:  map[string]*Craft{},
		content: reg,
		src:     src,
		now:     now,
		log:     log,
	}
}

// Start begins crafting recipeID for ch, deducting the materials.
//
// Postcondition: On any error the inventory is unchanged. The quality roll
// happens here; completion only reveals it.
func (m *Manager) Start(ch *character.Character, recipeID string) (*Craft, error) {
	recipe, err := m.content.Recipe(recipeID)
	if err != nil {
		return nil, err
	}
	for itemID, qty := range recipe.Materials {
		if ch.Inventory[itemID] < qty {
			return nil, fmt.Errorf("%w: need %dx %s", character.ErrInsufficientItems, qty, itemID)
		}
	}
	for itemID, qty := range recipe.Materials {
		if err := ch.RemoveItem(itemID, qty); err != nil {
			return nil, err
		}
	}

	quality := clamp01(m.src.Float64() + qualityShift(recipe.Difficulty))
	now := m.now()
	c := &Craft{
		ID:          uuid.NewString(),
		CharacterID: ch.ID,
		RecipeID:    recipeID,
		StartedAt:   now,
		ReadyAt:     now.Add(time.Duration(recipe.Duration) * time.Second),
		Quality:     quality,
	}
	m.mu.Lock()
	m.crafts[c.ID] = c
	m.mu.Unlock()
	m.log.Info("craft started",
		zap.String("craft_id", c.ID),
		zap.String("character", ch.ID),
		zap.String("recipe", recipeID),
		zap.Time("ready_at", c.ReadyAt))
	return c, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Complete finishes a ready craft, delivering the output items.
//
// Postcondition: Returns ErrCraftNotReady before ReadyAt without mutation.
// The craft record is gone afterwards.
func (m *Manager) Complete(ch *character.Character, craftID string) (*Craft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.crafts[craftID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCraftNotFound, craftID)
	}
	if c.CharacterID != ch.ID {
		return nil, ErrNotOwner
	}
	if m.now().Before(c.ReadyAt) {
		return nil, fmt.Errorf("%w: ready at %s", ErrCraftNotReady, c.ReadyAt.Format(time.RFC3339))
	}

	recipe, err := m.content.Recipe(c.RecipeID)
	if err != nil {
		return nil, err
	}
	qty := recipe.OutputQty
	if qty <= 0 {
		qty = 1
	}
	ch.AddItem(recipe.Output, qty)
	delete(m.crafts, craftID)
	return c, nil
}

// Cancel abandons a craft and refunds its materials.
func (m *Manager) Cancel(ch *character.Character, craftID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.crafts[craftID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrCraftNotFound, craftID)
	}
	if c.CharacterID != ch.ID {
		return ErrNotOwner
	}
	recipe, err := m.content.Recipe(c.RecipeID)
	if err != nil {
		return err
	}
	for itemID, qty := range recipe.Materials {
		ch.AddItem(itemID, qty)
	}
	delete(m.crafts, craftID)
	return nil
}

// Craft returns the in-flight job by id.
func (m *Manager) Craft(craftID string) (*Craft, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.crafts[craftID]
	return c, ok
}
