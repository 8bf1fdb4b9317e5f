// Package guild implements guild membership, roles, the shared bank, the
// contribution ledger, and guild progression. A Guild is a pure state
// machine; persistence happens outside through the storage layer.
package guild

import (
	"errors"
	"fmt"
	"math"
)

// Role is a member's rank. Ordering matters: Leader outranks Officer
// outranks Member outranks Recruit.
type Role string

const (
	RoleLeader  Role = "leader"
	RoleOfficer Role = "officer"
	RoleMember  Role = "member"
	RoleRecruit Role = "recruit"
)

func (r Role) rank() int {
	switch r {
	case RoleLeader:
		return 3
	case RoleOfficer:
		return 2
	case RoleMember:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether r outranks or equals o.
func (r Role) AtLeast(o Role) bool { return r.rank() >= o.rank() }

// MaxMembers caps guild size.
const MaxMembers = 50

var (
	ErrNotAMember        = errors.New("not a guild member")
	ErrAlreadyMember     = errors.New("already a guild member")
	ErrInsufficientRole  = errors.New("insufficient guild role")
	ErrInsufficientFunds = errors.New("insufficient guild funds")
	ErrGuildFull         = errors.New("guild is full")
	ErrGuildDisbanded    = errors.New("guild disbanded")
)

// Member is one guild member. Contribution is a lifetime ledger; it never
// decreases.
type Member struct {
	PlayerID     string `json:"player_id"`
	Role         Role   `json:"role"`
	Contribution int64  `json:"contribution"`
}

// Guild is a player guild. Members keep join order; the order breaks ties
// when leadership must pass on.
type Guild struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Level   int       `json:"level"`
	XP      int64     `json:"xp"`
	Bank    int64     `json:"bank"`
	Members []*Member `json:"members"`

	Disbanded bool `json:"disbanded"`
}

// New founds a guild; the founder becomes its Leader.
//
// Precondition: id, name, and founderID must be non-empty.
func New(id, name, founderID string) (*Guild, error) {
	if id == "" || name == "" || founderID == "" {
		return nil, errors.New("guild id, name, and founder must be non-empty")
	}
	return &Guild{
		ID:      id,
		Name:    name,
		Level:   1,
		Members: []*Member{{PlayerID: founderID, Role: RoleLeader}},
	}, nil
}

// Member returns the membership record for playerID, or nil.
func (g *Guild) Member(playerID string) *Member {
	for _, m := range g.Members {
		if m.PlayerID == playerID {
			return m
		}
	}
	return nil
}

// Join admits playerID as a Recruit.
//
// Postcondition: Returns ErrAlreadyMember, ErrGuildFull, or ErrGuildDisbanded
// without mutation on failure.
func (g *Guild) Join(playerID string) error {
	if g.Disbanded {
		return ErrGuildDisbanded
	}
	if g.Member(playerID) != nil {
		return fmt.Errorf("%w: %q", ErrAlreadyMember, playerID)
	}
	if len(g.Members) >= MaxMembers {
		return ErrGuildFull
	}
	g.Members = append(g.Members, &Member{PlayerID: playerID, Role: RoleRecruit})
	return nil
}

// Leave removes playerID. A departing leader hands leadership to the most
// senior Officer, then to the most senior remaining member; an empty guild
// disbands.
//
// Postcondition: The guild always has exactly one Leader unless disbanded.
func (g *Guild) Leave(playerID string) error {
	m := g.Member(playerID)
	if m == nil {
		return fmt.Errorf("%w: %q", ErrNotAMember, playerID)
	}
	wasLeader := m.Role == RoleLeader

	kept := g.Members[:0]
	for _, member := range g.Members {
		if member.PlayerID != playerID {
			kept = append(kept, member)
		}
	}
	g.Members = kept

	if len(g.Members) == 0 {
		g.Disbanded = true
		return nil
	}
	if wasLeader {
		if next := g.firstWithRole(RoleOfficer); next != nil {
			next.Role = RoleLeader
		} else {
			g.Members[0].Role = RoleLeader
		}
	}
	return nil
}

func (g *Guild) firstWithRole(role Role) *Member {
	for _, m := range g.Members {
		if m.Role == role {
			return m
		}
	}
	return nil
}

// Promote raises target one rank: Recruit to Member to Officer. Only the
// Leader may mint Officers; Officers may promote Recruits.
//
// Postcondition: Returns ErrInsufficientRole or ErrNotAMember without
// mutation on failure. Nobody is promoted to Leader.
func (g *Guild) Promote(actorID, targetID string) error {
	actor, target, err := g.pair(actorID, targetID)
	if err != nil {
		return err
	}
	if !actor.Role.AtLeast(RoleOfficer) {
		return fmt.Errorf("%w: %s cannot promote", ErrInsufficientRole, actor.Role)
	}
	switch target.Role {
	case RoleRecruit:
		target.Role = RoleMember
	case RoleMember:
		if actor.Role != RoleLeader {
			return fmt.Errorf("%w: only the leader mints officers", ErrInsufficientRole)
		}
		target.Role = RoleOfficer
	default:
		return fmt.Errorf("%w: %s cannot be promoted", ErrInsufficientRole, target.Role)
	}
	return nil
}

// Demote lowers target one rank: Officer to Member to Recruit. Only the
// Leader may demote Officers; Officers may demote Members.
//
// Postcondition: Returns ErrInsufficientRole or ErrNotAMember without
// mutation on failure. The Leader cannot be demoted.
func (g *Guild) Demote(actorID, targetID string) error {
	actor, target, err := g.pair(actorID, targetID)
	if err != nil {
		return err
	}
	if !actor.Role.AtLeast(RoleOfficer) {
		return fmt.Errorf("%w: %s cannot demote", ErrInsufficientRole, actor.Role)
	}
	switch target.Role {
	case RoleOfficer:
		if actor.Role != RoleLeader {
			return fmt.Errorf("%w: only the leader demotes officers", ErrInsufficientRole)
		}
		target.Role = RoleMember
	case RoleMember:
		target.Role = RoleRecruit
	default:
		return fmt.Errorf("%w: %s cannot be demoted", ErrInsufficientRole, target.Role)
	}
	return nil
}

func (g *Guild) pair(actorID, targetID string) (*Member, *Member, error) {
	actor := g.Member(actorID)
	if actor == nil {
		return nil, nil, fmt.Errorf("%w: %q", ErrNotAMember, actorID)
	}
	target := g.Member(targetID)
	if target == nil {
		return nil, nil, fmt.Errorf("%w: %q", ErrNotAMember, targetID)
	}
	return actor, target, nil
}

// Deposit moves amount into the guild bank and credits the depositor's
// contribution ledger.
//
// Precondition: amount must be > 0; the caller has already debited the
// player's wallet.
func (g *Guild) Deposit(playerID string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("deposit amount must be > 0, got %d", amount)
	}
	m := g.Member(playerID)
	if m == nil {
		return fmt.Errorf("%w: %q", ErrNotAMember, playerID)
	}
	g.Bank += amount
	m.Contribution += amount
	return nil
}

// Withdraw takes amount from the guild bank. Officer rank or better.
//
// Postcondition: Returns ErrInsufficientRole or ErrInsufficientFunds
// without mutation on failure; the bank never goes negative.
func (g *Guild) Withdraw(playerID string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("withdraw amount must be > 0, got %d", amount)
	}
	m := g.Member(playerID)
	if m == nil {
		return fmt.Errorf("%w: %q", ErrNotAMember, playerID)
	}
	if !m.Role.AtLeast(RoleOfficer) {
		return fmt.Errorf("%w: %s cannot withdraw", ErrInsufficientRole, m.Role)
	}
	if g.Bank < amount {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, g.Bank, amount)
	}
	g.Bank -= amount
	return nil
}

// XPForLevel returns the guild XP required to advance from level to level+1.
func XPForLevel(level int) int64 {
	return int64(1000 * math.Pow(float64(level), 1.5))
}

// AddXP credits guild XP and applies level-ups.
//
// Postcondition: Returns the number of levels gained; Level never decreases.
func (g *Guild) AddXP(amount int64) int {
	if amount <= 0 {
		return 0
	}
	g.XP += amount

	gained := 0
	remaining := g.XP
	for lvl := 1; lvl < g.Level; lvl++ {
		remaining -= XPForLevel(lvl)
	}
	for remaining >= XPForLevel(g.Level) {
		remaining -= XPForLevel(g.Level)
		g.Level++
		gained++
	}
	return gained
}

// StartRaid authorizes playerID to launch a guild raid. Officer rank or
// better.
func (g *Guild) StartRaid(playerID string) error {
	if g.Disbanded {
		return ErrGuildDisbanded
	}
	m := g.Member(playerID)
	if m == nil {
		return fmt.Errorf("%w: %q", ErrNotAMember, playerID)
	}
	if !m.Role.AtLeast(RoleOfficer) {
		return fmt.Errorf("%w: %s cannot start a raid", ErrInsufficientRole, m.Role)
	}
	return nil
}
