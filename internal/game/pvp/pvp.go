// Package pvp implements player-versus-player matches: a challenge
// handshake, best-of-3 round tracking, and an Elo-style rating ladder with
// named rank tiers.
package pvp

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// kFactor sets how far one match moves a rating.
	kFactor = 32.0
	// InitialRating is where every player starts on the ladder.
	InitialRating = 1000.0
	// roundsToWin ends a best-of-3 match.
	roundsToWin = 2
)

var (
	ErrMatchNotFound  = errors.New("match not found")
	ErrNotDefender    = errors.New("only the challenged player may respond")
	ErrNotParticipant = errors.New("not a match participant")
	ErrMatchNotActive = errors.New("match is not active")
	ErrSelfChallenge  = errors.New("cannot challenge yourself")
)

// ExpectedScore returns the probability that a rating of a beats a rating
// of b under the logistic Elo curve.
func ExpectedScore(a, b float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (b-a)/400.0))
}

// Rating is one player's ladder record.
type Rating struct {
	PlayerID string  `json:"player_id"`
	Score    float64 `json:"score"`
	Wins     int     `json:"wins"`
	Losses   int     `json:"losses"`
}

// Tier returns the named rank for the rating.
func (r Rating) Tier() RankTier { return TierFor(r.Score) }

// RankTier is a named ladder bracket.
type RankTier string

const (
	TierBronze      RankTier = "bronze"
	TierSilver      RankTier = "silver"
	TierGold        RankTier = "gold"
	TierPlatinum    RankTier = "platinum"
	TierDiamond     RankTier = "diamond"
	TierMaster      RankTier = "master"
	TierGrandmaster RankTier = "grandmaster"
)

// TierFor maps a rating score to its bracket.
func TierFor(score float64) RankTier {
	switch {
	case score >= 2100:
		return TierGrandmaster
	case score >= 1900:
		return TierMaster
	case score >= 1700:
		return TierDiamond
	case score >= 1500:
		return TierPlatinum
	case score >= 1300:
		return TierGold
	case score >= 1100:
		return TierSilver
	default:
		return TierBronze
	}
}

// MatchState is the lifecycle of a challenge.
type MatchState string

const (
	StatePending  MatchState = "pending"
	StateActive   MatchState = "active"
	StateDeclined MatchState = "declined"
	StateDone     MatchState = "done"
)

// Match is one best-of-3 duel.
type Match struct {
	ID           string     `json:"id"`
	ChallengerID string     `json:"challenger_id"`
	DefenderID   string     `json:"defender_id"`
	State        MatchState `json:"state"`

	ChallengerWins int    `json:"challenger_wins"`
	DefenderWins   int    `json:"defender_wins"`
	WinnerID       string `json:"winner_id"`
}

func (m *Match) participant(playerID string) bool {
	return playerID == m.ChallengerID || playerID == m.DefenderID
}

// Manager owns live matches and the rating ladder.
type Manager struct {
	mu      sync.RWMutex
	matches map[string]*Match
	ratings map[string]*Rating
	log     *zap.Logger
}

// NewManager builds an empty ladder.
func NewManager(log *zap.Logger) *Manager {
	return &Manager{
		matches: map[string]*Match{},
		ratings: map[string]*Rating{},
		log:     log,
	}
}

// Challenge opens a pending match from challenger to defender.
//
// Postcondition: Returns ErrSelfChallenge for a self-challenge; otherwise
// the match starts in StatePending.
func (m *Manager) Challenge(challengerID, defenderID string) (*Match, error) {
	if challengerID == defenderID {
		return nil, ErrSelfChallenge
	}
	if challengerID == "" || defenderID == "" {
		return nil, errors.New("challenger and defender must be non-empty")
	}
	match := &Match{
		ID:           uuid.NewString(),
		ChallengerID: challengerID,
		DefenderID:   defenderID,
		State:        StatePending,
	}
	m.mu.Lock()
	m.matches[match.ID] = match
	m.mu.Unlock()
	m.log.Info("pvp challenge issued",
		zap.String("match_id", match.ID),
		zap.String("challenger", challengerID),
		zap.String("defender", defenderID))
	return match, nil
}

// Accept moves a pending match to active. Defender only.
func (m *Manager) Accept(matchID, playerID string) (*Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	match, err := m.pending(matchID, playerID)
	if err != nil {
		return nil, err
	}
	match.State = StateActive
	return match, nil
}

// Decline refuses a pending match. Defender only. Declined matches are
// removed.
func (m *Manager) Decline(matchID, playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	match, err := m.pending(matchID, playerID)
	if err != nil {
		return err
	}
	match.State = StateDeclined
	delete(m.matches, matchID)
	return nil
}

func (m *Manager) pending(matchID, playerID string) (*Match, error) {
	match, ok := m.matches[matchID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMatchNotFound, matchID)
	}
	if match.State != StatePending {
		return nil, fmt.Errorf("%w: state %s", ErrMatchNotActive, match.State)
	}
	if playerID != match.DefenderID {
		return nil, ErrNotDefender
	}
	return match, nil
}

// RecordRound credits one round win to winnerID. The first player to two
// round wins takes the match; the rating update and removal happen exactly
// once, on the deciding round.
//
// Postcondition: Recording a round on a finished or missing match returns an
// error without mutating any rating.
func (m *Manager) RecordRound(matchID, winnerID string) (*Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	match, ok := m.matches[matchID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMatchNotFound, matchID)
	}
	if match.State != StateActive {
		return nil, fmt.Errorf("%w: state %s", ErrMatchNotActive, match.State)
	}
	if !match.participant(winnerID) {
		return nil, fmt.Errorf("%w: %q", ErrNotParticipant, winnerID)
	}

	if winnerID == match.ChallengerID {
		match.ChallengerWins++
	} else {
		match.DefenderWins++
	}

	switch {
	case match.ChallengerWins >= roundsToWin:
		m.finish(match, match.ChallengerID, match.DefenderID)
	case match.DefenderWins >= roundsToWin:
		m.finish(match, match.DefenderID, match.ChallengerID)
	}
	return match, nil
}

func (m *Manager) finish(match *Match, winnerID, loserID string) {
	match.State = StateDone
	match.WinnerID = winnerID

	winner := m.rating(winnerID)
	loser := m.rating(loserID)
	delta := kFactor * (1 - ExpectedScore(winner.Score, loser.Score))
	winner.Score += delta
	loser.Score -= delta
	if loser.Score < 0 {
		loser.Score = 0
	}
	winner.Wins++
	loser.Losses++

	delete(m.matches, match.ID)
	m.log.Info("pvp match decided",
		zap.String("match_id", match.ID),
		zap.String("winner", winnerID),
		zap.Float64("winner_score", winner.Score),
		zap.Float64("loser_score", loser.Score))
}

func (m *Manager) rating(playerID string) *Rating {
	r, ok := m.ratings[playerID]
	if !ok {
		r = &Rating{PlayerID: playerID, Score: InitialRating}
		m.ratings[playerID] = r
	}
	return r
}

// Rating returns a copy of the player's ladder record, creating it at the
// initial score on first sight.
func (m *Manager) Rating(playerID string) Rating {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.rating(playerID)
}

// SeedRating installs a previously persisted ladder record.
func (m *Manager) SeedRating(r Rating) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := r
	m.ratings[r.PlayerID] = &cp
}

// Match returns the live match by id.
func (m *Manager) Match(matchID string) (*Match, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	match, ok := m.matches[matchID]
	return match, ok
}
