package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nonamep-p/plagg-engine/internal/game/guild"
)

// ErrGuildNotFound is returned when a guild lookup yields no results.
var ErrGuildNotFound = errors.New("guild not found")

// ErrGuildNameTaken is returned when creating a guild with a taken name.
var ErrGuildNameTaken = errors.New("guild name already taken")

// GuildRepository persists guilds. Membership and the contribution ledger
// live in one JSONB column alongside projected hot columns.
type GuildRepository struct {
	db *pgxpool.Pool
}

// NewGuildRepository creates a GuildRepository backed by the given pool.
func NewGuildRepository(db *pgxpool.Pool) *GuildRepository {
	return &GuildRepository{db: db}
}

// Create inserts a new guild.
//
// Postcondition: Returns ErrGuildNameTaken on a duplicate name.
func (r *GuildRepository) Create(ctx context.Context, g *guild.Guild) error {
	members, err := json.Marshal(g.Members)
	if err != nil {
		return fmt.Errorf("encoding guild members: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO guilds (id, name, level, xp, bank, members)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		g.ID, g.Name, g.Level, g.XP, g.Bank, members,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("%w: %q", ErrGuildNameTaken, g.Name)
		}
		return fmt.Errorf("inserting guild: %w", err)
	}
	return nil
}

// Get retrieves a guild by id.
//
// Postcondition: Returns the Guild or ErrGuildNotFound.
func (r *GuildRepository) Get(ctx context.Context, id string) (*guild.Guild, error) {
	var g guild.Guild
	var members []byte
	err := r.db.QueryRow(ctx, `
		SELECT id, name, level, xp, bank, members FROM guilds WHERE id = $1`, id,
	).Scan(&g.ID, &g.Name, &g.Level, &g.XP, &g.Bank, &members)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %q", ErrGuildNotFound, id)
		}
		return nil, fmt.Errorf("querying guild: %w", err)
	}
	if err := json.Unmarshal(members, &g.Members); err != nil {
		return nil, fmt.Errorf("decoding guild members: %w", err)
	}
	return &g, nil
}

// Save overwrites a guild's state in a single statement. A disbanded guild
// is deleted instead.
//
// Postcondition: Returns ErrGuildNotFound if no row was touched.
func (r *GuildRepository) Save(ctx context.Context, g *guild.Guild) error {
	if g.Disbanded {
		return r.Delete(ctx, g.ID)
	}
	members, err := json.Marshal(g.Members)
	if err != nil {
		return fmt.Errorf("encoding guild members: %w", err)
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE guilds
		SET name = $2, level = $3, xp = $4, bank = $5, members = $6, updated_at = NOW()
		WHERE id = $1`,
		g.ID, g.Name, g.Level, g.XP, g.Bank, members,
	)
	if err != nil {
		return fmt.Errorf("saving guild: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %q", ErrGuildNotFound, g.ID)
	}
	return nil
}

// Delete removes a guild.
func (r *GuildRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM guilds WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting guild: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %q", ErrGuildNotFound, id)
	}
	return nil
}
