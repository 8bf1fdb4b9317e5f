// Package dungeon implements dungeon runs: a seeded floor-by-floor descent
// where each floor rolls an encounter (monsters, treasure, or the boss) and
// the run's accumulated stats feed the effort scorer at the end.
package dungeon

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nonamep-p/plagg-engine/internal/content"
	"github.com/nonamep-p/plagg-engine/internal/game/reward"
	"github.com/nonamep-p/plagg-engine/internal/game/rng"
)

var (
	ErrRunNotFound  = errors.New("dungeon run not found")
	ErrRunFinished  = errors.New("dungeon run already finished")
	ErrLevelTooLow  = errors.New("level too low for this dungeon")
	ErrFloorPending = errors.New("current floor not cleared")
	ErrNotLastFloor = errors.New("boss floor not reached")
)

// treasureChance is the per-floor probability of a treasure room instead of
// a monster encounter. The boss floor is always a fight.
const treasureChance = 0.3

// parTurnsPerFloor sets the pace bar for the speed indicator.
const parTurnsPerFloor = 5

// EncounterKind tags what a floor rolled.
type EncounterKind string

const (
	EncounterMonsters EncounterKind = "monsters"
	EncounterTreasure EncounterKind = "treasure"
	EncounterBoss     EncounterKind = "boss"
)

// Encounter is one rolled floor.
type Encounter struct {
	Floor        int           `json:"floor"`
	Kind         EncounterKind `json:"kind"`
	MonsterIDs   []string      `json:"monster_ids,omitempty"`
	TreasureGold int64         `json:"treasure_gold,omitempty"`
}

// Run is one in-flight descent by a player or party.
type Run struct {
	ID        string    `json:"id"`
	DungeonID string    `json:"dungeon_id"`
	PartyIDs  []string  `json:"party_ids"`
	Floor     int       `json:"floor"`
	StartedAt time.Time `json:"started_at"`

	// Accumulated combat stats, fed to the effort scorer on completion.
	Turns       int `json:"turns"`
	DamageTaken int `json:"damage_taken"`

	// cleared reports whether the current floor's encounter is resolved.
	cleared bool
	src     rng.Source
}

// Manager owns live dungeon runs.
type Manager struct {
	mu      sync.Mutex
	runs    map[string]*Run
	content *content.Registry
	now     func() time.Time
	log     *zap.Logger
}

// NewManager builds the dungeon manager. now defaults to time.Now.
func NewManager(reg *content.Registry, log *zap.Logger, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{runs: map[string]*Run{}, content: reg, now: now, log: log}
}

// Start opens a run into dungeonID for the given party. minLevel is the
// lowest level in the party; everybody must clear the dungeon's bar.
//
// Postcondition: The run starts above floor zero with nothing cleared; the
// same seed replays the same descent.
func (m *Manager) Start(dungeonID string, partyIDs []string, minLevel int, seed int64) (*Run, error) {
	d, err := m.content.Dungeon(dungeonID)
	if err != nil {
		return nil, err
	}
	if len(partyIDs) == 0 {
		return nil, errors.New("a run needs at least one participant")
	}
	if minLevel < d.MinLevel {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrLevelTooLow, d.MinLevel, minLevel)
	}
	r := &Run{
		ID:        uuid.NewString(),
		DungeonID: dungeonID,
		PartyIDs:  append([]string(nil), partyIDs...),
		StartedAt: m.now(),
		cleared:   true,
		src:       rng.NewSeededSource(seed),
	}
	m.mu.Lock()
	m.runs[r.ID] = r
	m.mu.Unlock()
	m.log.Info("dungeon run started",
		zap.String("run_id", r.ID),
		zap.String("dungeon", dungeonID),
		zap.Int("party_size", len(partyIDs)))
	return r, nil
}

// Advance descends to the next floor and rolls its encounter.
//
// Postcondition: Returns ErrFloorPending while the current floor is
// uncleared; the final floor is always the boss.
func (m *Manager) Advance(runID string) (*Encounter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.runs[runID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRunNotFound, runID)
	}
	if !r.cleared {
		return nil, fmt.Errorf("%w: floor %d", ErrFloorPending, r.Floor)
	}
	d, err := m.content.Dungeon(r.DungeonID)
	if err != nil {
		return nil, err
	}
	if r.Floor >= d.Floors {
		return nil, fmt.Errorf("%w: %q", ErrRunFinished, runID)
	}
	r.Floor++

	enc := &Encounter{Floor: r.Floor}
	switch {
	case r.Floor == d.Floors:
		enc.Kind = EncounterBoss
		enc.MonsterIDs = []string{d.Boss}
		r.cleared = false
	case r.src.Float64() < treasureChance:
		enc.Kind = EncounterTreasure
		enc.TreasureGold = int64(10 + r.src.Intn(41))
	default:
		enc.Kind = EncounterMonsters
		n := 1 + r.src.Intn(2)
		for i := 0; i < n; i++ {
			enc.MonsterIDs = append(enc.MonsterIDs, d.MonsterPool[r.src.Intn(len(d.MonsterPool))])
		}
		r.cleared = false
	}
	return enc, nil
}

// RecordFight marks the current floor's fight as cleared and accumulates
// its stats.
func (m *Manager) RecordFight(runID string, turns, damageTaken int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.runs[runID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrRunNotFound, runID)
	}
	r.Turns += turns
	r.DamageTaken += damageTaken
	r.cleared = true
	return nil
}

// Finish closes a run after the boss floor is cleared, scoring the descent.
//
// Postcondition: The run record is gone afterwards; the breakdown carries
// the effort tier and the final gold payout from the dungeon's base reward.
func (m *Manager) Finish(runID string, log *reward.Log) (reward.Breakdown, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.runs[runID]
	if !ok {
		return reward.Breakdown{}, fmt.Errorf("%w: %q", ErrRunNotFound, runID)
	}
	d, err := m.content.Dungeon(r.DungeonID)
	if err != nil {
		return reward.Breakdown{}, err
	}
	if r.Floor < d.Floors || !r.cleared {
		return reward.Breakdown{}, fmt.Errorf("%w: on floor %d of %d", ErrNotLastFloor, r.Floor, d.Floors)
	}

	b := reward.Compute(reward.Input{
		Activity:        reward.ActivityDungeon,
		Log:             log,
		CompletionTurns: r.Turns,
		ParTurns:        d.Floors * parTurnsPerFloor,
		DamageTaken:     r.DamageTaken,
		Participants:    len(r.PartyIDs),
	}, d.BaseReward)
	delete(m.runs, runID)
	m.log.Info("dungeon run finished",
		zap.String("run_id", runID),
		zap.String("tier", string(b.Tier)),
		zap.Int("payout", b.Final))
	return b, nil
}

// Abandon discards a run with no reward.
func (m *Manager) Abandon(runID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.runs[runID]; !ok {
		return fmt.Errorf("%w: %q", ErrRunNotFound, runID)
	}
	delete(m.runs, runID)
	return nil
}

// Run returns the live run by id.
func (m *Manager) Run(runID string) (*Run, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[runID]
	return r, ok
}
