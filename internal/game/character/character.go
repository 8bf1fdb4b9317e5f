// Package character holds the persistent player model: stats, class,
// leveling, equipment, learned skills, and the ultimate charge meter. It knows
// nothing about combat sessions; combat builds disposable snapshots from a
// Character and writes results back through the outcome structs.
package character

import (
	"errors"
	"fmt"
	"math"

	"github.com/nonamep-p/plagg-engine/internal/content"
)

var (
	ErrInsufficientSP      = errors.New("insufficient sp")
	ErrUltimateNotCharged  = errors.New("ultimate not charged")
	ErrNotEquippable       = errors.New("item not equippable")
	ErrInsufficientItems   = errors.New("insufficient items")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// MaxUltimateCharge is the charge required to unleash an ultimate.
const MaxUltimateCharge = 100

// Stats is a flat stat block. MaxHP and MaxSP are capacities; current HP/SP
// live on the Character itself.
type Stats struct {
	MaxHP        int `json:"max_hp"`
	MaxSP        int `json:"max_sp"`
	Attack       int `json:"attack"`
	Defense      int `json:"defense"`
	Speed        int `json:"speed"`
	Intelligence int `json:"intelligence"`
	Luck         int `json:"luck"`
	Agility      int `json:"agility"`
}

// Add returns the component-wise sum of s and o.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		MaxHP:        s.MaxHP + o.MaxHP,
		MaxSP:        s.MaxSP + o.MaxSP,
		Attack:       s.Attack + o.Attack,
		Defense:      s.Defense + o.Defense,
		Speed:        s.Speed + o.Speed,
		Intelligence: s.Intelligence + o.Intelligence,
		Luck:         s.Luck + o.Luck,
		Agility:      s.Agility + o.Agility,
	}
}

// Character is a persistent player character.
//
// HP and SP are always within [0, effective max]. Level only ever increases,
// driven by total XP crossing per-level thresholds.
type Character struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Class Class  `json:"class"`

	Level int   `json:"level"`
	XP    int64 `json:"xp"`
	Base  Stats `json:"base"`

	HP             int `json:"hp"`
	SP             int `json:"sp"`
	UltimateCharge int `json:"ultimate_charge"`

	Gold int64 `json:"gold"`

	// Equipment maps slot name ("weapon", "armor", "accessory") to item ID.
	Equipment map[string]string `json:"equipment"`
	// Inventory maps item ID to held quantity.
	Inventory map[string]int `json:"inventory"`
	Skills    []string       `json:"skills"`

	GuildID string `json:"guild_id,omitempty"`
}

// New creates a level-1 character of the given class at full HP and SP.
//
// Precondition: id and name must be non-empty.
func New(id, name string, class Class) (*Character, error) {
	if id == "" || name == "" {
		return nil, errors.New("character id and name must be non-empty")
	}
	base := BaseStats(class)
	return &Character{
		ID:        id,
		Name:      name,
		Class:     class,
		Level:     1,
		Base:      base,
		HP:        base.MaxHP,
		SP:        base.MaxSP,
		Equipment: make(map[string]string),
		Inventory: make(map[string]int),
	}, nil
}

// XPForLevel returns the XP required to advance from level to level+1.
func XPForLevel(level int) int64 {
	return int64(100 * math.Pow(float64(level), 1.5))
}

// EffectiveStats returns base stats plus equipment bonuses. The content
// registry resolves equipped item IDs; unknown IDs contribute nothing.
func (c *Character) EffectiveStats(reg *content.Registry) Stats {
	out := c.Base
	for _, itemID := range c.Equipment {
		it, err := reg.Item(itemID)
		if err != nil {
			continue
		}
		out.Attack += it.AttackBonus
		out.Defense += it.DefenseBonus
		out.Speed += it.SpeedBonus
		out.Intelligence += it.IntelligenceBonus
	}
	return out
}

// Accuracy derives the hit-roll accuracy stat from agility.
func (c *Character) Accuracy(reg *content.Registry) int {
	return 60 + c.EffectiveStats(reg).Agility
}

// Evasion derives the hit-roll evasion stat from agility.
func (c *Character) Evasion(reg *content.Registry) int {
	return 10 + c.EffectiveStats(reg).Agility
}

// TakeDamage reduces HP by n, clamped at 0. Negative n is ignored.
//
// Postcondition: Returns true when the character is at 0 HP.
func (c *Character) TakeDamage(n int) bool {
	if n > 0 {
		c.HP -= n
		if c.HP < 0 {
			c.HP = 0
		}
	}
	return c.HP == 0
}

// Heal raises HP by n, clamped to max. Negative n is ignored.
func (c *Character) Heal(n int, reg *content.Registry) {
	if n <= 0 {
		return
	}
	max := c.EffectiveStats(reg).MaxHP
	c.HP += n
	if c.HP > max {
		c.HP = max
	}
}

// SpendSP deducts n SP.
//
// Postcondition: Returns ErrInsufficientSP and leaves SP untouched when the
// balance cannot cover n.
func (c *Character) SpendSP(n int) error {
	if n < 0 {
		return fmt.Errorf("sp cost must be >= 0, got %d", n)
	}
	if c.SP < n {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientSP, c.SP, n)
	}
	c.SP -= n
	return nil
}

// RestoreSP raises SP by n, clamped to max. Negative n is ignored.
func (c *Character) RestoreSP(n int, reg *content.Registry) {
	if n <= 0 {
		return
	}
	max := c.EffectiveStats(reg).MaxSP
	c.SP += n
	if c.SP > max {
		c.SP = max
	}
}

// GainXP credits amount XP and applies any level-ups it unlocks.
//
// Precondition: amount must be >= 0.
// Postcondition: Returns the number of levels gained. Stat gains for each
// level are applied to the base block; current HP/SP grow by the same amount.
func (c *Character) GainXP(amount int64) int {
	if amount <= 0 {
		return 0
	}
	c.XP += amount

	gained := 0
	remaining := c.XP
	for lvl := 1; lvl < c.Level; lvl++ {
		remaining -= XPForLevel(lvl)
	}
	for remaining >= XPForLevel(c.Level) {
		remaining -= XPForLevel(c.Level)
		c.Level++
		gained++
		g := levelGains(c.Class, c.Level)
		c.Base = c.Base.Add(g)
		c.HP += g.MaxHP
		c.SP += g.MaxSP
	}
	return gained
}

// GainUltimateCharge adds n charge, clamped to MaxUltimateCharge.
func (c *Character) GainUltimateCharge(n int) {
	if n <= 0 {
		return
	}
	c.UltimateCharge += n
	if c.UltimateCharge > MaxUltimateCharge {
		c.UltimateCharge = MaxUltimateCharge
	}
}

// ConsumeUltimate spends the full charge meter.
//
// Postcondition: Returns the class Ultimate with charge reset to 0, or
// ErrUltimateNotCharged with no mutation when the meter is not full.
func (c *Character) ConsumeUltimate() (Ultimate, error) {
	if c.UltimateCharge < MaxUltimateCharge {
		return Ultimate{}, fmt.Errorf("%w: %d/%d", ErrUltimateNotCharged, c.UltimateCharge, MaxUltimateCharge)
	}
	c.UltimateCharge = 0
	return UltimateFor(c.Class), nil
}

// Equip places an item into its slot, returning the previously equipped item
// ID ("" when the slot was empty). The item moves out of the inventory and
// any displaced item moves back in.
//
// Precondition: The item must be held in the inventory.
func (c *Character) Equip(it *content.Item) (string, error) {
	if !it.Equippable() {
		return "", fmt.Errorf("%w: %q has slot %q", ErrNotEquippable, it.ID, it.Slot)
	}
	if c.Inventory[it.ID] < 1 {
		return "", fmt.Errorf("%w: %q not held", ErrInsufficientItems, it.ID)
	}
	c.RemoveItem(it.ID, 1)
	prev := c.Equipment[it.Slot]
	c.Equipment[it.Slot] = it.ID
	if prev != "" {
		c.AddItem(prev, 1)
	}
	return prev, nil
}

// Unequip clears a slot, returning the removed item to the inventory.
func (c *Character) Unequip(slot string) {
	if id := c.Equipment[slot]; id != "" {
		delete(c.Equipment, slot)
		c.AddItem(id, 1)
	}
}

// AddItem credits qty of itemID to the inventory. Non-positive qty is a no-op.
func (c *Character) AddItem(itemID string, qty int) {
	if qty <= 0 {
		return
	}
	if c.Inventory == nil {
		c.Inventory = make(map[string]int)
	}
	c.Inventory[itemID] += qty
}

// RemoveItem debits qty of itemID.
//
// Postcondition: Returns ErrInsufficientItems and leaves the inventory
// untouched when fewer than qty are held.
func (c *Character) RemoveItem(itemID string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("quantity must be >= 1, got %d", qty)
	}
	have := c.Inventory[itemID]
	if have < qty {
		return fmt.Errorf("%w: have %d of %q, need %d", ErrInsufficientItems, have, itemID, qty)
	}
	if have == qty {
		delete(c.Inventory, itemID)
	} else {
		c.Inventory[itemID] = have - qty
	}
	return nil
}

// Credit adds gold to the wallet. Negative amounts are rejected.
func (c *Character) Credit(amount int64) error {
	if amount < 0 {
		return fmt.Errorf("credit amount must be >= 0, got %d", amount)
	}
	c.Gold += amount
	return nil
}

// Debit removes gold from the wallet.
//
// Postcondition: Returns ErrInsufficientBalance and leaves the balance
// untouched when it cannot cover amount. The balance never goes negative.
func (c *Character) Debit(amount int64) error {
	if amount < 0 {
		return fmt.Errorf("debit amount must be >= 0, got %d", amount)
	}
	if c.Gold < amount {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientBalance, c.Gold, amount)
	}
	c.Gold -= amount
	return nil
}

// LearnSkill records a learned skill ID. Learning twice is a no-op.
func (c *Character) LearnSkill(skillID string) {
	if c.Knows(skillID) {
		return
	}
	c.Skills = append(c.Skills, skillID)
}

// Knows reports whether the character has learned skillID.
func (c *Character) Knows(skillID string) bool {
	for _, s := range c.Skills {
		if s == skillID {
			return true
		}
	}
	return false
}
