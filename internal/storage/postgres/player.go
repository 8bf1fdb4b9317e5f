package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nonamep-p/plagg-engine/internal/game/character"
)

// ErrPlayerNotFound is returned when a player lookup yields no results.
var ErrPlayerNotFound = errors.New("player not found")

// ErrPlayerExists is returned when creating a player whose id is taken.
var ErrPlayerExists = errors.New("player already exists")

// PlayerRepository persists characters keyed by their Discord user id. The
// full character state lives in one JSONB column; hot columns (name, class,
// level, gold, guild) are projected out for queries and leaderboards.
type PlayerRepository struct {
	db *pgxpool.Pool
}

// NewPlayerRepository creates a PlayerRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewPlayerRepository(db *pgxpool.Pool) *PlayerRepository {
	return &PlayerRepository{db: db}
}

// Create inserts a new character.
//
// Precondition: c.ID must be non-empty.
// Postcondition: Returns ErrPlayerExists on a duplicate id.
func (r *PlayerRepository) Create(ctx context.Context, c *character.Character) error {
	stats, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding character %q: %w", c.ID, err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO players (id, name, class, level, gold, guild_id, stats)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)`,
		c.ID, c.Name, string(c.Class), c.Level, c.Gold, c.GuildID, stats,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("%w: %q", ErrPlayerExists, c.ID)
		}
		return fmt.Errorf("inserting player: %w", err)
	}
	return nil
}

// Get retrieves a character by id.
//
// Postcondition: Returns the Character or ErrPlayerNotFound.
func (r *PlayerRepository) Get(ctx context.Context, id string) (*character.Character, error) {
	var stats []byte
	err := r.db.QueryRow(ctx, `SELECT stats FROM players WHERE id = $1`, id).Scan(&stats)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %q", ErrPlayerNotFound, id)
		}
		return nil, fmt.Errorf("querying player: %w", err)
	}
	var c character.Character
	if err := json.Unmarshal(stats, &c); err != nil {
		return nil, fmt.Errorf("decoding character %q: %w", id, err)
	}
	return &c, nil
}

// Save overwrites a character's state in a single statement.
//
// Postcondition: Returns ErrPlayerNotFound if no row was updated.
func (r *PlayerRepository) Save(ctx context.Context, c *character.Character) error {
	stats, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding character %q: %w", c.ID, err)
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE players
		SET name = $2, class = $3, level = $4, gold = $5,
		    guild_id = NULLIF($6, ''), stats = $7, updated_at = NOW()
		WHERE id = $1`,
		c.ID, c.Name, string(c.Class), c.Level, c.Gold, c.GuildID, stats,
	)
	if err != nil {
		return fmt.Errorf("saving player: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %q", ErrPlayerNotFound, c.ID)
	}
	return nil
}

// ListByGuild returns all characters in a guild, ordered by level descending.
func (r *PlayerRepository) ListByGuild(ctx context.Context, guildID string) ([]*character.Character, error) {
	rows, err := r.db.Query(ctx,
		`SELECT stats FROM players WHERE guild_id = $1 ORDER BY level DESC, id ASC`, guildID)
	if err != nil {
		return nil, fmt.Errorf("listing guild players: %w", err)
	}
	defer rows.Close()

	chars := make([]*character.Character, 0)
	for rows.Next() {
		var stats []byte
		if err := rows.Scan(&stats); err != nil {
			return nil, fmt.Errorf("scanning player row: %w", err)
		}
		var c character.Character
		if err := json.Unmarshal(stats, &c); err != nil {
			return nil, fmt.Errorf("decoding player row: %w", err)
		}
		chars = append(chars, &c)
	}
	return chars, rows.Err()
}

// Delete removes a character.
//
// Postcondition: Returns ErrPlayerNotFound if no row was deleted.
func (r *PlayerRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting player: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %q", ErrPlayerNotFound, id)
	}
	return nil
}
