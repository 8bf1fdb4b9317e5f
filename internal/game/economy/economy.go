// Package economy implements the gold economy: the NPC shop trading at
// content list prices, the daily reward stipend, and the player-to-player
// market with escrowed proceeds.
package economy

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nonamep-p/plagg-engine/internal/content"
	"github.com/nonamep-p/plagg-engine/internal/game/character"
)

const (
	// SellRatio is the fraction of list price the shop pays when buying
	// back.
	SellRatio = 0.5
	// ListingFeeRate is taken from the asking price when a listing posts.
	ListingFeeRate = 0.05
	// DailyCooldown gates the daily reward.
	DailyCooldown = 24 * time.Hour
	// DailyAmount is the stipend paid per claim.
	DailyAmount int64 = 100
	// ListingTTL is how long a market listing stays live.
	ListingTTL = 48 * time.Hour
)

var (
	ErrCooldownActive  = errors.New("daily reward already claimed")
	ErrListingNotFound = errors.New("listing not found")
	ErrListingExpired  = errors.New("listing expired")
	ErrNotSeller       = errors.New("only the seller may cancel")
	ErrOwnListing      = errors.New("cannot buy your own listing")
)

// Shop trades items at content list prices.
type Shop struct {
	content *content.Registry
}

// NewShop builds a shop over the content registry.
func NewShop(reg *content.Registry) *Shop { return &Shop{content: reg} }

// Buy purchases qty of itemID for ch at list price.
//
// Postcondition: Returns the total cost; on any error neither wallet nor
// inventory changes.
func (s *Shop) Buy(ch *character.Character, itemID string, qty int) (int64, error) {
	if qty <= 0 {
		return 0, fmt.Errorf("quantity must be > 0, got %d", qty)
	}
	item, err := s.content.Item(itemID)
	if err != nil {
		return 0, err
	}
	cost := int64(item.Price) * int64(qty)
	if err := ch.Debit(cost); err != nil {
		return 0, err
	}
	ch.AddItem(itemID, qty)
	return cost, nil
}

// Sell buys back qty of itemID from ch at half list price, rounded down.
func (s *Shop) Sell(ch *character.Character, itemID string, qty int) (int64, error) {
	if qty <= 0 {
		return 0, fmt.Errorf("quantity must be > 0, got %d", qty)
	}
	item, err := s.content.Item(itemID)
	if err != nil {
		return 0, err
	}
	if err := ch.RemoveItem(itemID, qty); err != nil {
		return 0, err
	}
	proceeds := int64(math.Floor(float64(item.Price) * float64(qty) * SellRatio))
	ch.Credit(proceeds)
	return proceeds, nil
}

// DailyReward pays a fixed stipend at most once per cooldown window.
type DailyReward struct {
	mu        sync.Mutex
	lastClaim map[string]time.Time
	now       func() time.Time
}

// NewDailyReward builds the stipend tracker. now defaults to time.Now.
func NewDailyReward(now func() time.Time) *DailyReward {
	if now == nil {
		now = time.Now
	}
	return &DailyReward{lastClaim: map[string]time.Time{}, now: now}
}

// Claim pays the stipend into ch's wallet.
//
// Postcondition: Returns ErrCooldownActive without payment when claimed
// again inside the window.
func (d *DailyReward) Claim(ch *character.Character) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.now()
	if last, ok := d.lastClaim[ch.ID]; ok && now.Sub(last) < DailyCooldown {
		return 0, fmt.Errorf("%w: next claim at %s", ErrCooldownActive, last.Add(DailyCooldown).Format(time.RFC3339))
	}
	d.lastClaim[ch.ID] = now
	ch.Credit(DailyAmount)
	return DailyAmount, nil
}

// NextClaim returns when playerID may claim again; the zero time means now.
func (d *DailyReward) NextClaim(playerID string) time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	last, ok := d.lastClaim[playerID]
	if !ok {
		return time.Time{}
	}
	next := last.Add(DailyCooldown)
	if !next.After(d.now()) {
		return time.Time{}
	}
	return next
}

// Listing is one market posting. Price is the asking price for the whole
// lot.
type Listing struct {
	ID        string    `json:"id"`
	SellerID  string    `json:"seller_id"`
	ItemID    string    `json:"item_id"`
	Qty       int       `json:"qty"`
	Price     int64     `json:"price"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Market is the player-to-player item market. Sale proceeds and expired or
// cancelled goods sit in escrow until collected.
type Market struct {
	mu       sync.Mutex
	content  *content.Registry
	listings map[string]*Listing
	// goldEscrow holds sale proceeds per seller.
	goldEscrow map[string]int64
	// itemEscrow holds returned goods per seller, item ID to quantity.
	itemEscrow map[string]map[string]int
	now        func() time.Time
	log        *zap.Logger
}

// NewMarket builds an empty market. now defaults to time.Now.
func NewMarket(reg *content.Registry, log *zap.Logger, now func() time.Time) *Market {
	if now == nil {
		now = time.Now
	}
	return &Market{
		content:    reg,
		listings:   map[string]*Listing{},
		goldEscrow: map[string]int64{},
		itemEscrow: map[string]map[string]int{},
		now:        now,
		log:        log,
	}
}

// List posts qty of itemID from seller at the given lot price. The listing
// fee comes out of the seller's wallet up front.
//
// Postcondition: On success the goods leave the seller's inventory; on any
// error nothing changes.
func (m *Market) List(seller *character.Character, itemID string, qty int, price int64) (*Listing, error) {
	if qty <= 0 || price <= 0 {
		return nil, fmt.Errorf("quantity and price must be > 0, got qty=%d price=%d", qty, price)
	}
	if _, err := m.content.Item(itemID); err != nil {
		return nil, err
	}
	fee := int64(math.Ceil(float64(price) * ListingFeeRate))
	if err := seller.Debit(fee); err != nil {
		return nil, err
	}
	if err := seller.RemoveItem(itemID, qty); err != nil {
		seller.Credit(fee)
		return nil, err
	}

	l := &Listing{
		ID:        uuid.NewString(),
		SellerID:  seller.ID,
		ItemID:    itemID,
		Qty:       qty,
		Price:     price,
		ExpiresAt: m.now().Add(ListingTTL),
	}
	m.mu.Lock()
	m.listings[l.ID] = l
	m.mu.Unlock()
	m.log.Info("market listing posted",
		zap.String("listing_id", l.ID),
		zap.String("seller", seller.ID),
		zap.String("item", itemID),
		zap.Int("qty", qty),
		zap.Int64("price", price))
	return l, nil
}

// Buy purchases a whole listing. The price goes into the seller's gold
// escrow; the goods go straight to the buyer.
func (m *Market) Buy(buyer *character.Character, listingID string) (*Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.listings[listingID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrListingNotFound, listingID)
	}
	if l.SellerID == buyer.ID {
		return nil, ErrOwnListing
	}
	if m.now().After(l.ExpiresAt) {
		m.expireLocked(l)
		return nil, fmt.Errorf("%w: %q", ErrListingExpired, listingID)
	}
	if err := buyer.Debit(l.Price); err != nil {
		return nil, err
	}
	buyer.AddItem(l.ItemID, l.Qty)
	m.goldEscrow[l.SellerID] += l.Price
	delete(m.listings, listingID)
	return l, nil
}

// Cancel withdraws a listing; the goods return to the seller's inventory.
// The listing fee is not refunded.
func (m *Market) Cancel(seller *character.Character, listingID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.listings[listingID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrListingNotFound, listingID)
	}
	if l.SellerID != seller.ID {
		return ErrNotSeller
	}
	seller.AddItem(l.ItemID, l.Qty)
	delete(m.listings, listingID)
	return nil
}

// Sweep removes every expired listing, moving the goods into the sellers'
// item escrow. Returns the number of listings removed.
func (m *Market) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	n := 0
	for _, l := range m.listings {
		if now.After(l.ExpiresAt) {
			m.expireLocked(l)
			n++
		}
	}
	if n > 0 {
		m.log.Info("market sweep", zap.Int("expired", n))
	}
	return n
}

func (m *Market) expireLocked(l *Listing) {
	items := m.itemEscrow[l.SellerID]
	if items == nil {
		items = map[string]int{}
		m.itemEscrow[l.SellerID] = items
	}
	items[l.ItemID] += l.Qty
	delete(m.listings, l.ID)
}

// Collect pays out escrowed gold and returns escrowed goods to ch.
//
// Postcondition: Both escrows for ch are empty afterwards.
func (m *Market) Collect(ch *character.Character) (gold int64, items map[string]int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	gold = m.goldEscrow[ch.ID]
	if gold > 0 {
		ch.Credit(gold)
		delete(m.goldEscrow, ch.ID)
	}
	items = m.itemEscrow[ch.ID]
	for id, qty := range items {
		ch.AddItem(id, qty)
	}
	delete(m.itemEscrow, ch.ID)
	return gold, items
}

// Listings returns live listings sorted by expiry, soonest first.
func (m *Market) Listings() []*Listing {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Listing, 0, len(m.listings))
	for _, l := range m.listings {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt.Before(out[j].ExpiresAt) })
	return out
}
