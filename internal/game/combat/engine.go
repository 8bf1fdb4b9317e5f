package combat

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nonamep-p/plagg-engine/internal/config"
	"github.com/nonamep-p/plagg-engine/internal/content"
	"github.com/nonamep-p/plagg-engine/internal/game/element"
	"github.com/nonamep-p/plagg-engine/internal/game/rng"
	"github.com/nonamep-p/plagg-engine/internal/game/status"
)

// ErrSessionNotFound rejects operations on an unknown session ID.
var ErrSessionNotFound = errors.New("session not found")

// EnrageHook fires when an NPC crosses the enrage threshold, before its
// reaction resolves. Scripted boss phases hang off this.
type EnrageHook func(s *Session, c *Combatant)

// Engine manages all active combat sessions, keyed by session ID.
// All methods are safe for concurrent use; each session's turns are
// serialized under the engine lock.
type Engine struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	cfg      config.CombatConfig
	matchup  *element.Matchup
	statuses *status.Registry
	content  *content.Registry
	log      *zap.Logger
	onEnrage EnrageHook
}

// Option configures an Engine.
type Option func(*Engine)

// WithEnrageHook installs the boss-phase hook.
func WithEnrageHook(h EnrageHook) Option {
	return func(e *Engine) { e.onEnrage = h }
}

// NewEngine creates a combat engine over loaded content and balance config.
//
// Precondition: matchup, statuses, reg, and log must be non-nil.
// Postcondition: Returns a non-nil Engine ready for use.
func NewEngine(cfg config.CombatConfig, matchup *element.Matchup, statuses *status.Registry, reg *content.Registry, log *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		matchup:  matchup,
		statuses: statuses,
		content:  reg,
		log:      log,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start begins a new session with the given combatants. The seed makes the
// whole encounter replayable.
//
// Precondition: Both sides must field at least one living combatant.
// Postcondition: Returns an Active session with a fresh uuid ID.
func (e *Engine) Start(combatants []*Combatant, seed int64) (*Session, error) {
	players, monsters := 0, 0
	for _, c := range combatants {
		if c.Side == SidePlayers {
			players++
		} else {
			monsters++
		}
	}
	if players == 0 || monsters == 0 {
		return nil, errors.New("combat needs at least one combatant per side")
	}

	id := uuid.NewString()
	s := newSession(id, combatants, e.cfg, e.matchup, e.statuses, e.content, rng.NewSeededSource(seed), e.onEnrage)

	e.mu.Lock()
	e.sessions[id] = s
	e.mu.Unlock()

	e.log.Info("combat session started",
		zap.String("session_id", id),
		zap.Int("players", players),
		zap.Int("monsters", monsters),
	)
	return s, nil
}

// Act resolves one turn in the named session. Terminal transitions destroy
// the session; the returned result still carries the final state and payout.
//
// Postcondition: Returns ErrSessionNotFound for unknown IDs. Session errors
// (terminated, unknown combatant) pass through unchanged.
func (e *Engine) Act(sessionID, actorID string, a Action) (*TurnResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	result, err := s.Act(actorID, a)
	if err != nil {
		return nil, err
	}
	if s.State != StateActive {
		delete(e.sessions, sessionID)
		e.log.Info("combat session ended",
			zap.String("session_id", sessionID),
			zap.String("state", s.State.String()),
			zap.Int("turns", s.Turn),
		)
	}
	return result, nil
}

// Get returns the active session with the given ID.
//
// Postcondition: Returns (session, true) if found, or (nil, false) otherwise.
func (e *Engine) Get(sessionID string) (*Session, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.sessions[sessionID]
	return s, ok
}

// End abandons and removes a session without a terminal transition.
func (e *Engine) End(sessionID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.sessions, sessionID)
}
