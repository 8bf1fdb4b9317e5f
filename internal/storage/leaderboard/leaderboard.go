// Package leaderboard provides Redis-backed sorted-set leaderboards for
// PvP rating and gold rankings.
package leaderboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// Board names the supported leaderboards; each maps to one Redis ZSET.
type Board string

const (
	BoardRating Board = "leaderboard:rating"
	BoardGold   Board = "leaderboard:gold"
)

// ErrNotRanked is returned when a player has no entry on a board.
var ErrNotRanked = errors.New("player not ranked")

// Entry is one leaderboard row.
type Entry struct {
	PlayerID string
	Score    float64
	// Rank is 1-based.
	Rank int64
}

// Store reads and writes leaderboards.
type Store struct {
	client *redis.Client
}

// NewStore wraps a connected Redis client.
//
// Precondition: client must be non-nil and connected.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// Set records a player's score on a board, overwriting any previous score.
func (s *Store) Set(ctx context.Context, board Board, playerID string, score float64) error {
	if err := s.client.ZAdd(ctx, string(board), &redis.Z{Score: score, Member: playerID}).Err(); err != nil {
		return fmt.Errorf("setting %s score for %q: %w", board, playerID, err)
	}
	return nil
}

// Top returns the highest n entries, best first, with 1-based ranks.
//
// Precondition: n must be > 0.
func (s *Store) Top(ctx context.Context, board Board, n int64) ([]Entry, error) {
	zs, err := s.client.ZRevRangeWithScores(ctx, string(board), 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("reading top of %s: %w", board, err)
	}
	entries := make([]Entry, 0, len(zs))
	for i, z := range zs {
		id, ok := z.Member.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected member type %T on %s", z.Member, board)
		}
		entries = append(entries, Entry{PlayerID: id, Score: z.Score, Rank: int64(i) + 1})
	}
	return entries, nil
}

// Rank returns a player's entry with its 1-based rank.
//
// Postcondition: Returns ErrNotRanked when the player has no score.
func (s *Store) Rank(ctx context.Context, board Board, playerID string) (Entry, error) {
	rank, err := s.client.ZRevRank(ctx, string(board), playerID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Entry{}, fmt.Errorf("%w: %q on %s", ErrNotRanked, playerID, board)
		}
		return Entry{}, fmt.Errorf("reading %s rank for %q: %w", board, playerID, err)
	}
	score, err := s.client.ZScore(ctx, string(board), playerID).Result()
	if err != nil {
		return Entry{}, fmt.Errorf("reading %s score for %q: %w", board, playerID, err)
	}
	return Entry{PlayerID: playerID, Score: score, Rank: rank + 1}, nil
}

// Remove drops a player from a board.
func (s *Store) Remove(ctx context.Context, board Board, playerID string) error {
	if err := s.client.ZRem(ctx, string(board), playerID).Err(); err != nil {
		return fmt.Errorf("removing %q from %s: %w", playerID, board, err)
	}
	return nil
}
