package combat

import (
	"errors"
	"fmt"
	"sort"

	"github.com/nonamep-p/plagg-engine/internal/config"
	"github.com/nonamep-p/plagg-engine/internal/content"
	"github.com/nonamep-p/plagg-engine/internal/game/character"
	"github.com/nonamep-p/plagg-engine/internal/game/element"
	"github.com/nonamep-p/plagg-engine/internal/game/rng"
	"github.com/nonamep-p/plagg-engine/internal/game/status"
)

var (
	// ErrSessionTerminated rejects any action on a session already in a
	// terminal state. The session is not mutated.
	ErrSessionTerminated = errors.New("session terminated")
	// ErrUnknownCombatant rejects actions from an ID not in the session.
	ErrUnknownCombatant = errors.New("unknown combatant")
)

// State is the session lifecycle state.
type State int

const (
	StateActive State = iota
	StateVictory
	StateDefeat
	StateFled
)

// String returns a human-readable state label.
func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateVictory:
		return "victory"
	case StateDefeat:
		return "defeat"
	case StateFled:
		return "fled"
	default:
		return "unknown"
	}
}

// logLines is how many narrative lines a session retains for display.
const logLines = 3

// Per-action ultimate charge gains; taking a hit also charges the meter.
const (
	chargePerAttack = 10
	chargePerSkill  = 15
	chargeWhenHit   = 5
)

// Defend action: shield points scale with defense, and the breather restores
// a flat amount of SP.
const (
	defendShieldFactor = 0.6
	defendSPRegen      = 15
)

// Session is one live combat encounter. It is NOT safe for concurrent use;
// the Engine serializes access per session.
type Session struct {
	ID    string
	State State
	// Turn counts consumed turns, starting at 0.
	Turn int

	combatants []*Combatant
	combos     map[string]int
	cooldowns  map[string]map[string]int
	log        []string

	lastSide Side
	hasActed bool

	cfg      config.CombatConfig
	res      *resolver
	content  *content.Registry
	statuses *status.Registry
	src      rng.Source

	// onEnrage fires once per NPC when it crosses the enrage threshold.
	onEnrage func(s *Session, c *Combatant)
}

// newSession assembles a session with combatants sorted by effective speed
// descending (ties keep insertion order).
func newSession(id string, combatants []*Combatant, cfg config.CombatConfig, matchup *element.Matchup, statuses *status.Registry, reg *content.Registry, src rng.Source, onEnrage func(*Session, *Combatant)) *Session {
	sorted := make([]*Combatant, len(combatants))
	copy(sorted, combatants)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EffectiveSpeed() > sorted[j].EffectiveSpeed()
	})
	return &Session{
		ID:         id,
		State:      StateActive,
		combatants: sorted,
		combos:     make(map[string]int),
		cooldowns:  make(map[string]map[string]int),
		cfg:        cfg,
		res:        &resolver{cfg: cfg, matchup: matchup, src: src},
		content:    reg,
		statuses:   statuses,
		src:        src,
		onEnrage:   onEnrage,
	}
}

// Combatants returns the session's combatants in initiative order.
func (s *Session) Combatants() []*Combatant {
	out := make([]*Combatant, len(s.combatants))
	copy(out, s.combatants)
	return out
}

// Combatant returns the participant with the given ID, or nil.
func (s *Session) Combatant(id string) *Combatant {
	for _, c := range s.combatants {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Combo returns the current combo count for an actor.
func (s *Session) Combo(actorID string) int { return s.combos[actorID] }

// Log returns the retained narrative lines, oldest first.
func (s *Session) Log() []string {
	out := make([]string, len(s.log))
	copy(out, s.log)
	return out
}

func (s *Session) logf(format string, args ...any) {
	s.log = append(s.log, fmt.Sprintf(format, args...))
	if len(s.log) > logLines {
		s.log = s.log[len(s.log)-logLines:]
	}
}

// Act resolves one turn: the actor's chosen action, then reactions from
// living NPC opponents, then terminal-state checks.
//
// Precondition: The session must be Active and actorID must name a living
// participant.
// Postcondition: Returns ErrSessionTerminated without mutation when the
// session is terminal. A ReasonCannotPerform or ReasonInvalidAction result
// consumes no turn and mutates nothing. Terminal transitions happen exactly
// once; Rewards is non-nil only on the Victory transition.
func (s *Session) Act(actorID string, a Action) (*TurnResult, error) {
	if s.State != StateActive {
		return nil, fmt.Errorf("%w: session %s is %s", ErrSessionTerminated, s.ID, s.State)
	}
	actor := s.Combatant(actorID)
	if actor == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCombatant, actorID)
	}
	if actor.IsDead() {
		return nil, fmt.Errorf("%w: %q is defeated", ErrUnknownCombatant, actorID)
	}

	result := &TurnResult{Action: a.Type, Reason: ReasonPerformed, TurnConsumed: true}

	// Affordability is validated before anything mutates so a rejected
	// action costs nothing, not even a status tick.
	if rejected := s.validate(actor, a); rejected != nil {
		rejected.State = s.State
		rejected.Log = s.Log()
		return rejected, nil
	}

	// A turn passing to the other side breaks the previous side's combos.
	if s.hasActed && actor.Side != s.lastSide {
		for _, c := range s.combatants {
			if c.Side != actor.Side {
				s.combos[c.ID] = 0
			}
		}
	}
	s.lastSide = actor.Side
	s.hasActed = true

	// Snapshot the gate before ticking: a duration-1 stun must skip exactly
	// this one action even though the tick below expires it.
	blocked := actor.Statuses.BlocksAll()

	s.tickStatuses(actor)
	if s.checkTerminal(result) {
		return s.finish(result), nil
	}

	switch {
	case blocked:
		result.Reason = ReasonSkipped
		s.logf("%s is unable to act", actor.Name)
	case actor.IsDead():
		// The start-of-turn tick killed the actor.
		result.Reason = ReasonSkipped
	default:
		s.perform(actor, a, result)
	}

	// A rejection surfacing from perform skips reactions and turn advance.
	if !result.TurnConsumed {
		result.State = s.State
		result.Log = s.Log()
		return result, nil
	}

	if s.State == StateFled {
		result.State = s.State
		result.Log = s.Log()
		return result, nil
	}
	if s.checkTerminal(result) {
		return s.finish(result), nil
	}

	if !actor.NPC {
		s.npcReactions(actor, result)
		if s.checkTerminal(result) {
			return s.finish(result), nil
		}
	}

	s.endTurn()
	result.State = s.State
	result.Log = s.Log()
	return result, nil
}

// validate returns a non-nil rejection result when the action cannot even be
// attempted: malformed requests, unresolvable or same-side targets, and
// unaffordable costs. Rejections consume no turn and mutate nothing.
func (s *Session) validate(actor *Combatant, a Action) *TurnResult {
	reject := func(reason Reason) *TurnResult {
		return &TurnResult{Action: a.Type, Reason: reason, TurnConsumed: false, Log: s.Log()}
	}
	switch a.Type {
	case ActionAttack:
		if t := s.target(actor, a.TargetID); t == nil || t.Side == actor.Side {
			return reject(ReasonInvalidAction)
		}
	case ActionSkill:
		if actor.Statuses.BlocksSkills() {
			return reject(ReasonCannotPerform)
		}
		sk, err := s.content.Skill(a.SkillID)
		if err != nil {
			return reject(ReasonInvalidAction)
		}
		if !s.knowsSkill(actor, a.SkillID) {
			return reject(ReasonInvalidAction)
		}
		if sk.Target != "self" {
			if t := s.target(actor, a.TargetID); t == nil || t.Side == actor.Side {
				return reject(ReasonInvalidAction)
			}
		}
		if actor.SP < sk.SPCost {
			return reject(ReasonCannotPerform)
		}
		if s.cooldowns[actor.ID][a.SkillID] > 0 {
			return reject(ReasonCannotPerform)
		}
	case ActionItem:
		if actor.NPC {
			return reject(ReasonInvalidAction)
		}
		it, err := s.content.Item(a.ItemID)
		if err != nil || it.Slot != "consumable" {
			return reject(ReasonInvalidAction)
		}
		if actor.Inventory[a.ItemID] < 1 {
			return reject(ReasonCannotPerform)
		}
	case ActionUltimate:
		if actor.NPC {
			return reject(ReasonInvalidAction)
		}
		if t := s.target(actor, a.TargetID); t == nil || t.Side == actor.Side {
			return reject(ReasonInvalidAction)
		}
		if actor.UltimateCharge < character.MaxUltimateCharge {
			return reject(ReasonCannotPerform)
		}
	case ActionDefend:
	case ActionFlee:
		if actor.NPC {
			return reject(ReasonInvalidAction)
		}
	default:
		return reject(ReasonInvalidAction)
	}
	return nil
}

func (s *Session) knowsSkill(c *Combatant, skillID string) bool {
	for _, id := range c.SkillIDs {
		if id == skillID {
			return true
		}
	}
	return false
}

// tickStatuses applies start-of-turn DoT/HoT and expirations for c.
func (s *Session) tickStatuses(c *Combatant) {
	res := c.Statuses.TickStart()
	if res.Damage > 0 {
		// Damage over time bypasses defend shields.
		c.HP -= res.Damage
		if c.HP < 0 {
			c.HP = 0
		}
		s.logf("%s suffers %d damage from lingering effects", c.Name, res.Damage)
	}
	if res.Heal > 0 && !c.IsDead() {
		c.HealHP(res.Heal)
	}
}

// target resolves the action target: an active taunt wins, then the explicit
// choice, then the first living opponent.
func (s *Session) target(actor *Combatant, explicit string) *Combatant {
	if forced := actor.Statuses.ForcedTarget(); forced != "" {
		if t := s.Combatant(forced); t != nil {
			return t
		}
	}
	if explicit != "" {
		return s.Combatant(explicit)
	}
	for _, c := range s.combatants {
		if c.Side != actor.Side && !c.IsDead() {
			return c
		}
	}
	return nil
}

func (s *Session) perform(actor *Combatant, a Action, result *TurnResult) {
	switch a.Type {
	case ActionAttack:
		s.performAttack(actor, a.TargetID, result)
	case ActionSkill:
		s.performSkill(actor, a, result)
	case ActionItem:
		s.performItem(actor, a.ItemID, result)
	case ActionUltimate:
		s.performUltimate(actor, a.TargetID, result)
	case ActionDefend:
		s.performDefend(actor)
	case ActionFlee:
		s.performFlee(actor, result)
	}
}

func (s *Session) performAttack(actor *Combatant, targetID string, result *TurnResult) {
	// Targets were resolved by validate; a taunt expiring in the tick can
	// still leave the swing with nowhere legal to land.
	t := s.target(actor, targetID)
	if t == nil || t.Side == actor.Side || t.IsDead() {
		result.Reason = ReasonTargetDefeated
		s.logf("%s swings at nothing", actor.Name)
		return
	}
	sr := s.res.strike(actor, t, float64(actor.Attack), "physical", actor.Affinity, s.combos[actor.ID], false)
	s.recordStrike(actor, t, sr, result)
	actor.gainCharge(chargePerAttack)
}

func (s *Session) performSkill(actor *Combatant, a Action, result *TurnResult) {
	sk, err := s.content.Skill(a.SkillID)
	if err != nil {
		result.Reason = ReasonInvalidAction
		result.TurnConsumed = false
		return
	}

	if sk.Target == "self" {
		s.spendSkill(actor, sk)
		if sk.HealPercent > 0 {
			heal := int(float64(actor.MaxHP) * sk.HealPercent)
			actor.HealHP(heal)
			result.Healed = heal
			s.logf("%s uses %s and recovers %d HP", actor.Name, sk.Name, heal)
		}
		s.applyStatus(actor, actor, sk.AppliesStatus, sk.StatusStacks, sk.StatusDuration, result)
		return
	}

	// The cast fizzles before any SP is spent.
	t := s.target(actor, a.TargetID)
	if t == nil || t.Side == actor.Side || t.IsDead() {
		result.Reason = ReasonTargetDefeated
		s.logf("%s casts %s at a fallen foe", actor.Name, sk.Name)
		return
	}

	s.spendSkill(actor, sk)
	sr := s.res.strike(actor, t, sk.Power, sk.DamageType, sk.Element, s.combos[actor.ID], false)
	s.recordStrike(actor, t, sr, result)
	if sr.Kind != Miss {
		s.applyStatus(actor, t, sk.AppliesStatus, sk.StatusStacks, sk.StatusDuration, result)
	}
}

// spendSkill deducts the SP cost, arms the cooldown, and charges the meter.
func (s *Session) spendSkill(actor *Combatant, sk *content.Skill) {
	actor.SP -= sk.SPCost
	if sk.Cooldown > 0 {
		if s.cooldowns[actor.ID] == nil {
			s.cooldowns[actor.ID] = make(map[string]int)
		}
		s.cooldowns[actor.ID][sk.ID] = sk.Cooldown
	}
	actor.gainCharge(chargePerSkill)
}

func (s *Session) performItem(actor *Combatant, itemID string, result *TurnResult) {
	it, err := s.content.Item(itemID)
	if err != nil {
		result.Reason = ReasonInvalidAction
		result.TurnConsumed = false
		return
	}
	actor.Inventory[itemID]--
	if it.HealAmount > 0 {
		actor.HealHP(it.HealAmount)
		result.Healed = it.HealAmount
	}
	if it.SPRestore > 0 {
		actor.RestoreSP(it.SPRestore)
	}
	for _, kind := range it.Cures {
		actor.Statuses.Cure(kind)
	}
	s.logf("%s uses %s", actor.Name, it.Name)
}

func (s *Session) performUltimate(actor *Combatant, targetID string, result *TurnResult) {
	t := s.target(actor, targetID)
	if t == nil || t.Side == actor.Side || t.IsDead() {
		result.Reason = ReasonTargetDefeated
		return
	}

	actor.UltimateCharge = 0
	ult := character.UltimateFor(actor.Class)
	result.UltimateName = ult.Name

	power := float64(actor.Attack)
	if ult.DamageType == "magical" {
		power = float64(actor.Intelligence)
	}
	power *= ult.Multiplier

	sr := s.res.strike(actor, t, power, ult.DamageType, ult.Element, s.combos[actor.ID], ult.GuaranteedCrit)
	s.recordStrike(actor, t, sr, result)
	if sr.Kind != Miss {
		s.applyStatus(actor, t, ult.AppliesStatus, ult.StatusStacks, ult.StatusDuration, result)
	}
	if ult.SelfStatus != "" {
		s.applyStatus(actor, actor, ult.SelfStatus, 1, ult.SelfDuration, result)
	}
	s.logf("%s unleashes %s", actor.Name, ult.Name)
}

func (s *Session) performDefend(actor *Combatant) {
	shield := int(float64(actor.Defense) * defendShieldFactor)
	actor.Shield += shield
	actor.RestoreSP(defendSPRegen)
	s.combos[actor.ID] = 0
	s.logf("%s braces, gaining %d shield", actor.Name, shield)
}

func (s *Session) performFlee(actor *Combatant, result *TurnResult) {
	if s.src.Float64() < s.cfg.FleeChance {
		s.State = StateFled
		result.Reason = ReasonFled
		s.logf("%s flees the battle", actor.Name)
		return
	}
	result.Reason = ReasonFleeFailed
	s.combos[actor.ID] = 0
	s.logf("%s fails to escape", actor.Name)
}

// recordStrike folds a strike outcome into the result, updates the combo
// counter, and charges the defender's ultimate meter.
func (s *Session) recordStrike(actor, t *Combatant, sr strikeResult, result *TurnResult) {
	result.Hit = sr.Kind
	result.Crit = sr.Crit
	result.Damage = sr.HPDamage

	switch sr.Kind {
	case Hit:
		s.combos[actor.ID]++
	case Miss:
		s.combos[actor.ID] = 0
	}
	// A graze neither extends nor breaks the combo.

	switch sr.Kind {
	case Miss:
		s.logf("%s misses %s", actor.Name, t.Name)
	default:
		suffix := ""
		if sr.Crit {
			suffix = " (critical!)"
		}
		s.logf("%s %ss %s for %d damage%s", actor.Name, sr.Kind, t.Name, sr.HPDamage, suffix)
		t.gainCharge(chargeWhenHit)
	}
	if t.IsDead() {
		s.logf("%s is defeated", t.Name)
	}
}

func (s *Session) applyStatus(source, t *Combatant, kind status.Kind, stacks, duration int, result *TurnResult) {
	if kind == "" {
		return
	}
	def, ok := s.statuses.Get(kind)
	if !ok {
		return
	}
	if stacks < 1 {
		stacks = 1
	}
	if err := t.Statuses.Apply(def, stacks, duration, source.ID); err == nil {
		result.StatusesApplied = append(result.StatusesApplied, kind)
		s.logf("%s is afflicted by %s", t.Name, def.Name)
	}
}

// npcReactions gives every living NPC on the opposing side its counter
// action for this turn.
func (s *Session) npcReactions(actor *Combatant, result *TurnResult) {
	for _, npc := range s.combatants {
		if !npc.NPC || npc.Side == actor.Side || npc.IsDead() {
			continue
		}
		if s.State != StateActive {
			return
		}

		blocked := npc.Statuses.BlocksAll()
		s.tickStatuses(npc)
		if npc.IsDead() {
			continue
		}

		if !npc.Enraged && npc.HPRatio() < s.cfg.EnrageThreshold {
			npc.Enraged = true
			result.EnragedIDs = append(result.EnragedIDs, npc.ID)
			s.logf("%s becomes enraged!", npc.Name)
			if s.onEnrage != nil {
				s.onEnrage(s, npc)
			}
		}

		if blocked {
			s.logf("%s is unable to act", npc.Name)
			continue
		}

		choice := chooseAction(npc, s.opposingCombo(npc), s.cfg.DefensiveComboThreshold, s.npcSkills(npc))
		s.resolveNPCAction(npc, choice)
	}
}

// opposingCombo returns the highest combo count among the NPC's opponents.
func (s *Session) opposingCombo(npc *Combatant) int {
	best := 0
	for _, c := range s.combatants {
		if c.Side != npc.Side && s.combos[c.ID] > best {
			best = s.combos[c.ID]
		}
	}
	return best
}

// npcSkills resolves the NPC's usable skill definitions, cooldowns and SP
// respected.
func (s *Session) npcSkills(npc *Combatant) []*content.Skill {
	var out []*content.Skill
	if npc.Statuses.BlocksSkills() {
		return out
	}
	for _, id := range npc.SkillIDs {
		sk, err := s.content.Skill(id)
		if err != nil {
			continue
		}
		if npc.SP < sk.SPCost || s.cooldowns[npc.ID][id] > 0 {
			continue
		}
		out = append(out, sk)
	}
	return out
}

func (s *Session) resolveNPCAction(npc *Combatant, choice npcChoice) {
	switch choice.Kind {
	case npcDefend:
		s.performDefend(npc)
	case npcHeal:
		sk := choice.Skill
		npc.SP -= sk.SPCost
		if sk.Cooldown > 0 {
			if s.cooldowns[npc.ID] == nil {
				s.cooldowns[npc.ID] = make(map[string]int)
			}
			s.cooldowns[npc.ID][sk.ID] = sk.Cooldown
		}
		heal := int(float64(npc.MaxHP) * sk.HealPercent)
		npc.HealHP(heal)
		s.logf("%s uses %s and recovers %d HP", npc.Name, sk.Name, heal)
	case npcSkill:
		sk := choice.Skill
		t := s.target(npc, "")
		if t == nil || t.IsDead() {
			return
		}
		npc.SP -= sk.SPCost
		if sk.Cooldown > 0 {
			if s.cooldowns[npc.ID] == nil {
				s.cooldowns[npc.ID] = make(map[string]int)
			}
			s.cooldowns[npc.ID][sk.ID] = sk.Cooldown
		}
		sr := s.res.strike(npc, t, sk.Power, sk.DamageType, sk.Element, s.combos[npc.ID], false)
		s.recordStrike(npc, t, sr, &TurnResult{})
		if sr.Kind != Miss && sk.AppliesStatus != "" {
			s.applyStatus(npc, t, sk.AppliesStatus, sk.StatusStacks, sk.StatusDuration, &TurnResult{})
		}
	default:
		t := s.target(npc, "")
		if t == nil || t.IsDead() {
			return
		}
		sr := s.res.strike(npc, t, float64(npc.Attack), "physical", npc.Affinity, s.combos[npc.ID], false)
		s.recordStrike(npc, t, sr, &TurnResult{})
	}
}

// checkTerminal transitions the session when one side is wiped out.
//
// Postcondition: Returns true iff the session is now terminal. The Victory
// payout is attached exactly once.
func (s *Session) checkTerminal(result *TurnResult) bool {
	if s.State != StateActive {
		return true
	}
	playersAlive, monstersAlive := false, false
	for _, c := range s.combatants {
		if c.IsDead() {
			continue
		}
		if c.Side == SidePlayers {
			playersAlive = true
		} else {
			monstersAlive = true
		}
	}
	switch {
	case !playersAlive:
		s.State = StateDefeat
		s.logf("the party has fallen")
		return true
	case !monstersAlive:
		s.State = StateVictory
		rewards := &Rewards{}
		for _, c := range s.combatants {
			if c.Side == SideMonsters {
				rewards.XP += c.XPReward
				rewards.Gold += c.GoldReward
			}
		}
		result.Rewards = rewards
		s.logf("victory!")
		return true
	}
	return false
}

func (s *Session) finish(result *TurnResult) *TurnResult {
	s.Turn++
	result.State = s.State
	result.Log = s.Log()
	return result
}

func (s *Session) endTurn() {
	s.Turn++
	for _, byActor := range s.cooldowns {
		for id, remaining := range byActor {
			if remaining > 0 {
				byActor[id] = remaining - 1
			}
		}
	}
}
