// Package party implements small adventuring parties: invitations, a
// four-player size cap, monster scaling for group content, and reward
// splitting.
package party

import (
	"errors"
	"fmt"
)

// MaxSize caps party membership.
const MaxSize = 4

var (
	ErrPartyFull     = errors.New("party is full")
	ErrNotInvited    = errors.New("no pending invitation")
	ErrNotAMember    = errors.New("not a party member")
	ErrAlreadyMember = errors.New("already a party member")
	ErrNotLeader     = errors.New("only the party leader may do that")
	ErrDisbanded     = errors.New("party disbanded")
)

// Party is an adventuring group. Members keep join order; the first member
// is the leader.
type Party struct {
	ID      string   `json:"id"`
	Members []string `json:"members"`

	invites   map[string]bool
	Disbanded bool `json:"disbanded"`
}

// New creates a party led by leaderID.
func New(id, leaderID string) (*Party, error) {
	if id == "" || leaderID == "" {
		return nil, errors.New("party id and leader must be non-empty")
	}
	return &Party{
		ID:      id,
		Members: []string{leaderID},
		invites: map[string]bool{},
	}, nil
}

// Leader returns the current leader, or "" when disbanded.
func (p *Party) Leader() string {
	if len(p.Members) == 0 {
		return ""
	}
	return p.Members[0]
}

// IsMember reports whether playerID is in the party.
func (p *Party) IsMember(playerID string) bool {
	for _, id := range p.Members {
		if id == playerID {
			return true
		}
	}
	return false
}

// Invite extends an invitation to playerID. Leader only.
//
// Postcondition: Returns ErrNotLeader, ErrAlreadyMember, or ErrPartyFull
// without mutation on failure.
func (p *Party) Invite(actorID, playerID string) error {
	if p.Disbanded {
		return ErrDisbanded
	}
	if actorID != p.Leader() {
		return ErrNotLeader
	}
	if p.IsMember(playerID) {
		return fmt.Errorf("%w: %q", ErrAlreadyMember, playerID)
	}
	if len(p.Members) >= MaxSize {
		return ErrPartyFull
	}
	p.invites[playerID] = true
	return nil
}

// Accept consumes a pending invitation and adds playerID to the party.
//
// Postcondition: The invitation is consumed even when the party filled up
// in the meantime.
func (p *Party) Accept(playerID string) error {
	if p.Disbanded {
		return ErrDisbanded
	}
	if !p.invites[playerID] {
		return fmt.Errorf("%w: %q", ErrNotInvited, playerID)
	}
	delete(p.invites, playerID)
	if len(p.Members) >= MaxSize {
		return ErrPartyFull
	}
	p.Members = append(p.Members, playerID)
	return nil
}

// Decline discards a pending invitation.
func (p *Party) Decline(playerID string) error {
	if !p.invites[playerID] {
		return fmt.Errorf("%w: %q", ErrNotInvited, playerID)
	}
	delete(p.invites, playerID)
	return nil
}

// Leave removes playerID. A departing leader hands leadership to the next
// member in join order; an empty party disbands.
func (p *Party) Leave(playerID string) error {
	if !p.IsMember(playerID) {
		return fmt.Errorf("%w: %q", ErrNotAMember, playerID)
	}
	kept := p.Members[:0]
	for _, id := range p.Members {
		if id != playerID {
			kept = append(kept, id)
		}
	}
	p.Members = kept
	if len(p.Members) == 0 {
		p.Disbanded = true
	}
	return nil
}

// Kick removes targetID from the party. Leader only; the leader cannot kick
// themselves (they Leave instead).
func (p *Party) Kick(actorID, targetID string) error {
	if actorID != p.Leader() {
		return ErrNotLeader
	}
	if actorID == targetID {
		return errors.New("the leader leaves rather than kicks themselves")
	}
	if !p.IsMember(targetID) {
		return fmt.Errorf("%w: %q", ErrNotAMember, targetID)
	}
	return p.Leave(targetID)
}

// Size returns the current member count.
func (p *Party) Size() int { return len(p.Members) }

// ScaleMonsterHP scales a monster's HP for the party size. Each member past
// the first adds half a monster's worth of HP.
//
// Postcondition: Returns baseHP unchanged for a solo party.
func ScaleMonsterHP(baseHP, partySize int) int {
	if partySize <= 1 {
		return baseHP
	}
	return baseHP + baseHP*(partySize-1)/2
}

// ScaleMonsterDamage scales a monster's attack for the party size. Damage
// grows slower than HP so larger parties feel tanky, not punished.
func ScaleMonsterDamage(baseAttack, partySize int) int {
	if partySize <= 1 {
		return baseAttack
	}
	return baseAttack + baseAttack*(partySize-1)/4
}

// SplitReward divides a pooled reward evenly across members; the remainder
// goes to the earliest members in join order.
//
// Postcondition: The returned shares sum exactly to total.
func (p *Party) SplitReward(total int64) map[string]int64 {
	shares := make(map[string]int64, len(p.Members))
	if len(p.Members) == 0 || total <= 0 {
		return shares
	}
	n := int64(len(p.Members))
	each := total / n
	rem := total % n
	for i, id := range p.Members {
		shares[id] = each
		if int64(i) < rem {
			shares[id]++
		}
	}
	return shares
}
