package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nonamep-p/plagg-engine/internal/game/pvp"
)

// RatingRepository persists the PvP ladder.
type RatingRepository struct {
	db *pgxpool.Pool
}

// NewRatingRepository creates a RatingRepository backed by the given pool.
func NewRatingRepository(db *pgxpool.Pool) *RatingRepository {
	return &RatingRepository{db: db}
}

// Upsert writes a ladder record in a single statement.
func (r *RatingRepository) Upsert(ctx context.Context, rating pvp.Rating) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO pvp_ratings (player_id, score, wins, losses)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (player_id)
		DO UPDATE SET score = $2, wins = $3, losses = $4, updated_at = NOW()`,
		rating.PlayerID, rating.Score, rating.Wins, rating.Losses,
	)
	if err != nil {
		return fmt.Errorf("upserting rating: %w", err)
	}
	return nil
}

// Get retrieves a ladder record, returning a fresh one at the initial score
// when the player has never played.
func (r *RatingRepository) Get(ctx context.Context, playerID string) (pvp.Rating, error) {
	rating := pvp.Rating{PlayerID: playerID, Score: pvp.InitialRating}
	err := r.db.QueryRow(ctx, `
		SELECT score, wins, losses FROM pvp_ratings WHERE player_id = $1`, playerID,
	).Scan(&rating.Score, &rating.Wins, &rating.Losses)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return rating, nil
		}
		return pvp.Rating{}, fmt.Errorf("querying rating: %w", err)
	}
	return rating, nil
}

// Top returns the highest-rated players, best first.
//
// Precondition: limit must be > 0.
func (r *RatingRepository) Top(ctx context.Context, limit int) ([]pvp.Rating, error) {
	rows, err := r.db.Query(ctx, `
		SELECT player_id, score, wins, losses
		FROM pvp_ratings ORDER BY score DESC, player_id ASC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing top ratings: %w", err)
	}
	defer rows.Close()

	ratings := make([]pvp.Rating, 0, limit)
	for rows.Next() {
		var rating pvp.Rating
		if err := rows.Scan(&rating.PlayerID, &rating.Score, &rating.Wins, &rating.Losses); err != nil {
			return nil, fmt.Errorf("scanning rating row: %w", err)
		}
		ratings = append(ratings, rating)
	}
	return ratings, rows.Err()
}
