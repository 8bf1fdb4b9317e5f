package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nonamep-p/plagg-engine/internal/game/economy"
)

// ErrListingNotFound is returned when a listing lookup yields no results.
var ErrListingNotFound = errors.New("listing not found")

// MarketRepository persists market listings.
type MarketRepository struct {
	db *pgxpool.Pool
}

// NewMarketRepository creates a MarketRepository backed by the given pool.
func NewMarketRepository(db *pgxpool.Pool) *MarketRepository {
	return &MarketRepository{db: db}
}

// Create inserts a listing.
func (r *MarketRepository) Create(ctx context.Context, l *economy.Listing) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO market_listings (id, seller_id, item_id, qty, price, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		l.ID, l.SellerID, l.ItemID, l.Qty, l.Price, l.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("inserting listing: %w", err)
	}
	return nil
}

// Get retrieves a listing by id.
//
// Postcondition: Returns the Listing or ErrListingNotFound.
func (r *MarketRepository) Get(ctx context.Context, id string) (*economy.Listing, error) {
	var l economy.Listing
	err := r.db.QueryRow(ctx, `
		SELECT id, seller_id, item_id, qty, price, expires_at
		FROM market_listings WHERE id = $1`, id,
	).Scan(&l.ID, &l.SellerID, &l.ItemID, &l.Qty, &l.Price, &l.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %q", ErrListingNotFound, id)
		}
		return nil, fmt.Errorf("querying listing: %w", err)
	}
	return &l, nil
}

// ListLive returns unexpired listings ordered by expiry, soonest first.
func (r *MarketRepository) ListLive(ctx context.Context, now time.Time) ([]*economy.Listing, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, seller_id, item_id, qty, price, expires_at
		FROM market_listings WHERE expires_at > $1 ORDER BY expires_at ASC`, now)
	if err != nil {
		return nil, fmt.Errorf("listing market: %w", err)
	}
	defer rows.Close()

	listings := make([]*economy.Listing, 0)
	for rows.Next() {
		var l economy.Listing
		if err := rows.Scan(&l.ID, &l.SellerID, &l.ItemID, &l.Qty, &l.Price, &l.ExpiresAt); err != nil {
			return nil, fmt.Errorf("scanning listing row: %w", err)
		}
		listings = append(listings, &l)
	}
	return listings, rows.Err()
}

// Delete removes a listing, typically after a sale or cancellation.
//
// Postcondition: Returns ErrListingNotFound if no row was deleted.
func (r *MarketRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM market_listings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting listing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %q", ErrListingNotFound, id)
	}
	return nil
}

// DeleteExpired removes every listing past its expiry in one statement.
//
// Postcondition: Returns the number of listings removed.
func (r *MarketRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM market_listings WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("sweeping listings: %w", err)
	}
	return tag.RowsAffected(), nil
}
