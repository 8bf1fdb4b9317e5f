package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nonamep-p/plagg-engine/internal/config"
	"github.com/nonamep-p/plagg-engine/internal/content"
	"github.com/nonamep-p/plagg-engine/internal/game/character"
	"github.com/nonamep-p/plagg-engine/internal/game/rng"
	"github.com/nonamep-p/plagg-engine/internal/game/status"
)

func testContent(t *testing.T) *content.Registry {
	t.Helper()
	items := []*content.Item{
		{ID: "potion", Name: "Potion", Slot: "consumable", Rarity: content.RarityCommon, HealAmount: 30},
		{ID: "antidote", Name: "Antidote", Slot: "consumable", Rarity: content.RarityCommon, Cures: []status.Kind{status.Poison}},
	}
	skills := []*content.Skill{
		{ID: "power-strike", Name: "Power Strike", SPCost: 10, Cooldown: 0, Power: 25, DamageType: "physical", Target: "enemy"},
		{ID: "venom", Name: "Venom", SPCost: 5, Cooldown: 2, Power: 10, DamageType: "physical", Target: "enemy", AppliesStatus: status.Poison, StatusStacks: 1, StatusDuration: 4},
		{ID: "mend", Name: "Mend", SPCost: 8, Target: "self", HealPercent: 0.3},
	}
	reg, err := content.NewRegistry(items, skills, nil, nil, nil)
	require.NoError(t, err)
	return reg
}

func sessionWith(t *testing.T, src rng.Source, onEnrage func(*Session, *Combatant), combatants ...*Combatant) *Session {
	t.Helper()
	return newSession("test-session", combatants, config.DefaultCombat(), testMatchup(t), status.DefaultRegistry(), testContent(t), src, onEnrage)
}

func testPlayer(id string) *Combatant {
	c := basicCombatant(id, SidePlayers)
	c.Class = character.Warrior
	c.Inventory = map[string]int{}
	return c
}

func testMonster(id string) *Combatant {
	c := basicCombatant(id, SideMonsters)
	c.NPC = true
	c.Personality = "aggressive"
	c.XPReward = 15
	c.GoldReward = 8
	return c
}

func TestAct_TerminatedSessionRejected(t *testing.T) {
	s := sessionWith(t, alwaysHit(), nil, testPlayer("p1"), testMonster("m1"))
	s.State = StateVictory

	hpBefore := s.Combatant("m1").HP
	_, err := s.Act("p1", Action{Type: ActionAttack})
	require.ErrorIs(t, err, ErrSessionTerminated)
	assert.Equal(t, hpBefore, s.Combatant("m1").HP)
}

func TestAct_UnknownCombatant(t *testing.T) {
	s := sessionWith(t, alwaysHit(), nil, testPlayer("p1"), testMonster("m1"))
	_, err := s.Act("ghost", Action{Type: ActionAttack})
	require.ErrorIs(t, err, ErrUnknownCombatant)
}

func TestAct_AttackAndCounter(t *testing.T) {
	p, m := testPlayer("p1"), testMonster("m1")
	s := sessionWith(t, alwaysHit(), nil, p, m)

	res, err := s.Act("p1", Action{Type: ActionAttack})
	require.NoError(t, err)
	assert.Equal(t, ReasonPerformed, res.Reason)
	assert.Equal(t, Hit, res.Hit)
	assert.True(t, res.TurnConsumed)

	assert.Less(t, m.HP, m.MaxHP, "attack should damage the monster")
	assert.Less(t, p.HP, p.MaxHP, "monster should counter-attack")
	assert.Equal(t, 1, s.Combo("p1"))
	assert.Equal(t, 1, s.Turn)
	// +10 for attacking, +5 for being hit.
	assert.Equal(t, 15, p.UltimateCharge)
}

func TestAct_InsufficientSP_TurnNotConsumed(t *testing.T) {
	p, m := testPlayer("p1"), testMonster("m1")
	p.SP = 4
	p.SkillIDs = []string{"power-strike"}
	s := sessionWith(t, alwaysHit(), nil, p, m)

	res, err := s.Act("p1", Action{Type: ActionSkill, SkillID: "power-strike"})
	require.NoError(t, err)
	assert.Equal(t, ReasonCannotPerform, res.Reason)
	assert.False(t, res.TurnConsumed)
	assert.Equal(t, 0, s.Turn)
	assert.Equal(t, m.MaxHP, m.HP)
	assert.Equal(t, p.MaxHP, p.HP, "no counter-attack on a rejected action")
	assert.Equal(t, 4, p.SP)
}

func TestAct_UnknownSkillInvalid(t *testing.T) {
	p, m := testPlayer("p1"), testMonster("m1")
	s := sessionWith(t, alwaysHit(), nil, p, m)

	res, err := s.Act("p1", Action{Type: ActionSkill, SkillID: "meteor"})
	require.NoError(t, err)
	assert.Equal(t, ReasonInvalidAction, res.Reason)
	assert.False(t, res.TurnConsumed)
}

func TestAct_DeadTargetSilentForfeit(t *testing.T) {
	p, m1, m2 := testPlayer("p1"), testMonster("m1"), testMonster("m2")
	m1.HP = 0
	s := sessionWith(t, alwaysHit(), nil, p, m1, m2)

	res, err := s.Act("p1", Action{Type: ActionAttack, TargetID: "m1"})
	require.NoError(t, err)
	assert.Equal(t, ReasonTargetDefeated, res.Reason)
	assert.True(t, res.TurnConsumed)
	assert.Equal(t, 1, s.Turn)
	assert.Equal(t, m2.MaxHP, m2.HP, "the forfeited swing touches nobody")
	assert.Less(t, p.HP, p.MaxHP, "living monster still counter-attacks")
}

func TestAct_UnknownTargetRejectedWithoutMutation(t *testing.T) {
	p, m := testPlayer("p1"), testMonster("m1")
	s := sessionWith(t, alwaysHit(), nil, p, m)

	burn, ok := status.DefaultRegistry().Get(status.Burn)
	require.True(t, ok)
	require.NoError(t, p.Statuses.Apply(burn, 1, 3, "m1"))

	res, err := s.Act("p1", Action{Type: ActionAttack, TargetID: "ghost"})
	require.NoError(t, err)
	assert.Equal(t, ReasonInvalidAction, res.Reason)
	assert.False(t, res.TurnConsumed)
	assert.Equal(t, 0, s.Turn)
	assert.Equal(t, p.MaxHP, p.HP, "no burn tick and no counter-attack on a rejection")
	assert.Equal(t, 3, p.Statuses.Duration(status.Burn))
	assert.Equal(t, m.MaxHP, m.HP)
}

func TestAct_SameSideTargetRejected(t *testing.T) {
	p1, p2, m := testPlayer("p1"), testPlayer("p2"), testMonster("m1")
	s := sessionWith(t, alwaysHit(), nil, p1, p2, m)

	res, err := s.Act("p1", Action{Type: ActionAttack, TargetID: "p2"})
	require.NoError(t, err)
	assert.Equal(t, ReasonInvalidAction, res.Reason)
	assert.False(t, res.TurnConsumed)
	assert.Equal(t, 0, s.Turn)
	assert.Equal(t, p2.MaxHP, p2.HP)
	assert.Equal(t, p1.MaxHP, p1.HP, "no counter-attack on a rejection")
}

func TestAct_SkillUnknownTargetKeepsSP(t *testing.T) {
	p, m := testPlayer("p1"), testMonster("m1")
	p.SkillIDs = []string{"venom"}
	s := sessionWith(t, alwaysHit(), nil, p, m)

	spBefore := p.SP
	res, err := s.Act("p1", Action{Type: ActionSkill, SkillID: "venom", TargetID: "ghost"})
	require.NoError(t, err)
	assert.Equal(t, ReasonInvalidAction, res.Reason)
	assert.False(t, res.TurnConsumed)
	assert.Equal(t, spBefore, p.SP, "a rejected cast costs nothing")
	assert.Equal(t, 0, s.cooldowns["p1"]["venom"])
	assert.Equal(t, 0, s.Turn)
}

func TestAct_SkillOnDeadTargetKeepsSP(t *testing.T) {
	p, m1, m2 := testPlayer("p1"), testMonster("m1"), testMonster("m2")
	p.SkillIDs = []string{"venom"}
	m1.HP = 0
	s := sessionWith(t, alwaysHit(), nil, p, m1, m2)

	spBefore := p.SP
	res, err := s.Act("p1", Action{Type: ActionSkill, SkillID: "venom", TargetID: "m1"})
	require.NoError(t, err)
	assert.Equal(t, ReasonTargetDefeated, res.Reason)
	assert.True(t, res.TurnConsumed)
	assert.Equal(t, spBefore, p.SP, "the fizzled cast spends no SP")
	assert.Equal(t, 1, s.Turn)
}

func TestAct_StunSkipsExactlyOneTurn(t *testing.T) {
	p, m := testPlayer("p1"), testMonster("m1")
	s := sessionWith(t, alwaysHit(), nil, p, m)

	stun, ok := status.DefaultRegistry().Get(status.Stun)
	require.True(t, ok)
	require.NoError(t, p.Statuses.Apply(stun, 1, 1, "m1"))

	res, err := s.Act("p1", Action{Type: ActionAttack})
	require.NoError(t, err)
	assert.Equal(t, ReasonSkipped, res.Reason)
	assert.True(t, res.TurnConsumed)
	assert.Equal(t, m.MaxHP, m.HP)

	res, err = s.Act("p1", Action{Type: ActionAttack})
	require.NoError(t, err)
	assert.Equal(t, ReasonPerformed, res.Reason)
	assert.Less(t, m.HP, m.MaxHP)
}

func TestAct_SilenceBlocksSkillsOnly(t *testing.T) {
	p, m := testPlayer("p1"), testMonster("m1")
	p.SkillIDs = []string{"power-strike"}
	s := sessionWith(t, alwaysHit(), nil, p, m)

	silence, ok := status.DefaultRegistry().Get(status.Silence)
	require.True(t, ok)
	require.NoError(t, p.Statuses.Apply(silence, 1, 2, "m1"))

	res, err := s.Act("p1", Action{Type: ActionSkill, SkillID: "power-strike"})
	require.NoError(t, err)
	assert.Equal(t, ReasonCannotPerform, res.Reason)
	assert.False(t, res.TurnConsumed)

	res, err = s.Act("p1", Action{Type: ActionAttack})
	require.NoError(t, err)
	assert.Equal(t, ReasonPerformed, res.Reason)
}

func TestAct_TauntForcesTarget(t *testing.T) {
	p, m1, m2 := testPlayer("p1"), testMonster("m1"), testMonster("m2")
	s := sessionWith(t, alwaysHit(), nil, p, m1, m2)

	taunt, ok := status.DefaultRegistry().Get(status.Taunt)
	require.True(t, ok)
	require.NoError(t, p.Statuses.Apply(taunt, 1, 2, "m2"))

	_, err := s.Act("p1", Action{Type: ActionAttack, TargetID: "m1"})
	require.NoError(t, err)
	assert.Equal(t, m1.MaxHP, m1.HP, "taunt overrides the chosen target")
	assert.Less(t, m2.HP, m2.MaxHP)
}

func TestAct_SkillAppliesStatusAndCooldown(t *testing.T) {
	p, m := testPlayer("p1"), testMonster("m1")
	p.SkillIDs = []string{"venom"}
	s := sessionWith(t, alwaysHit(), nil, p, m)

	res, err := s.Act("p1", Action{Type: ActionSkill, SkillID: "venom"})
	require.NoError(t, err)
	assert.Equal(t, ReasonPerformed, res.Reason)
	assert.Contains(t, res.StatusesApplied, status.Poison)
	assert.True(t, m.Statuses.Has(status.Poison))
	assert.Equal(t, 95, p.SP)

	res, err = s.Act("p1", Action{Type: ActionSkill, SkillID: "venom"})
	require.NoError(t, err)
	assert.Equal(t, ReasonCannotPerform, res.Reason, "skill still cooling down")
}

func TestAct_ItemHealsAndConsumes(t *testing.T) {
	p, m := testPlayer("p1"), testMonster("m1")
	p.HP = 500
	p.Inventory["potion"] = 1
	s := sessionWith(t, alwaysHit(), nil, p, m)

	res, err := s.Act("p1", Action{Type: ActionItem, ItemID: "potion"})
	require.NoError(t, err)
	assert.Equal(t, ReasonPerformed, res.Reason)
	assert.Equal(t, 30, res.Healed)
	assert.Equal(t, 0, p.Inventory["potion"])

	res, err = s.Act("p1", Action{Type: ActionItem, ItemID: "potion"})
	require.NoError(t, err)
	assert.Equal(t, ReasonCannotPerform, res.Reason)
}

func TestAct_ItemCuresStatus(t *testing.T) {
	p, m := testPlayer("p1"), testMonster("m1")
	p.Inventory["antidote"] = 1
	s := sessionWith(t, alwaysHit(), nil, p, m)

	poison, ok := status.DefaultRegistry().Get(status.Poison)
	require.True(t, ok)
	require.NoError(t, p.Statuses.Apply(poison, 2, 4, "m1"))

	_, err := s.Act("p1", Action{Type: ActionItem, ItemID: "antidote"})
	require.NoError(t, err)
	assert.False(t, p.Statuses.Has(status.Poison))
}

func TestAct_UltimateConsumesFullCharge(t *testing.T) {
	p, m := testPlayer("p1"), testMonster("m1")
	s := sessionWith(t, alwaysHit(), nil, p, m)

	res, err := s.Act("p1", Action{Type: ActionUltimate})
	require.NoError(t, err)
	assert.Equal(t, ReasonCannotPerform, res.Reason)

	p.UltimateCharge = character.MaxUltimateCharge
	res, err = s.Act("p1", Action{Type: ActionUltimate})
	require.NoError(t, err)
	assert.Equal(t, ReasonPerformed, res.Reason)
	assert.Equal(t, "Blade Tempest", res.UltimateName)
	assert.Equal(t, 0, p.UltimateCharge)
	assert.Less(t, m.HP, m.MaxHP)
	assert.Equal(t, p.MaxHP, p.HP, "the stunned monster cannot counter-attack")
}

func TestAct_DefendGrantsShieldAndResetsCombo(t *testing.T) {
	p, m := testPlayer("p1"), testMonster("m1")
	p.Defense = 50
	s := sessionWith(t, alwaysHit(), nil, p, m)
	s.combos["p1"] = 4

	_, err := s.Act("p1", Action{Type: ActionDefend})
	require.NoError(t, err)
	assert.Equal(t, 0, s.Combo("p1"))
	// Shield 30 was granted, then the counter-attack chewed into it.
	assert.Equal(t, p.MaxHP, p.HP, "shield absorbed the counter-attack")
	assert.Less(t, p.Shield, 30)
}

func TestAct_FleeSuccess(t *testing.T) {
	p, m := testPlayer("p1"), testMonster("m1")
	s := sessionWith(t, &scriptSource{vals: []float64{0.0}}, nil, p, m)

	res, err := s.Act("p1", Action{Type: ActionFlee})
	require.NoError(t, err)
	assert.Equal(t, ReasonFled, res.Reason)
	assert.Equal(t, StateFled, res.State)
	assert.Equal(t, StateFled, s.State)
	assert.Equal(t, p.MaxHP, p.HP, "no counter-attack after a successful flee")
}

func TestAct_FleeFailureConsumesTurn(t *testing.T) {
	p, m := testPlayer("p1"), testMonster("m1")
	s := sessionWith(t, &scriptSource{vals: []float64{0.99, 0.0, 0.5, 0.99}}, nil, p, m)
	s.combos["p1"] = 3

	res, err := s.Act("p1", Action{Type: ActionFlee})
	require.NoError(t, err)
	assert.Equal(t, ReasonFleeFailed, res.Reason)
	assert.Equal(t, StateActive, s.State)
	assert.Equal(t, 0, s.Combo("p1"))
	assert.Less(t, p.HP, p.MaxHP, "monster punishes the failed escape")
	assert.Equal(t, 1, s.Turn)
}

func TestAct_VictoryExactlyOnce(t *testing.T) {
	p, m := testPlayer("p1"), testMonster("m1")
	m.HP = 1
	s := sessionWith(t, alwaysHit(), nil, p, m)

	res, err := s.Act("p1", Action{Type: ActionAttack})
	require.NoError(t, err)
	assert.Equal(t, StateVictory, res.State)
	require.NotNil(t, res.Rewards)
	assert.Equal(t, 15, res.Rewards.XP)
	assert.Equal(t, 8, res.Rewards.Gold)

	_, err = s.Act("p1", Action{Type: ActionAttack})
	require.ErrorIs(t, err, ErrSessionTerminated)
}

func TestAct_DefeatWhenPlayersFall(t *testing.T) {
	p, m := testPlayer("p1"), testMonster("m1")
	p.HP = 1
	p.Defense = 0
	s := sessionWith(t, alwaysHit(), nil, p, m)

	res, err := s.Act("p1", Action{Type: ActionDefend})
	require.NoError(t, err)
	// Defense 0 grants no shield; the counter-attack finishes the player.
	assert.Equal(t, StateDefeat, res.State)
	assert.Nil(t, res.Rewards)
}

func TestAct_ComboResetOnMiss(t *testing.T) {
	p, m := testPlayer("p1"), testMonster("m1")
	s := sessionWith(t, &scriptSource{vals: []float64{0.99}}, nil, p, m)
	s.combos["p1"] = 5

	res, err := s.Act("p1", Action{Type: ActionAttack})
	require.NoError(t, err)
	assert.Equal(t, Miss, res.Hit)
	assert.Equal(t, 0, s.Combo("p1"))
}

func TestAct_TurnChangeToOtherSideResetsCombo(t *testing.T) {
	// A PvP-style session: both combatants are player-controlled.
	a, b := testPlayer("a"), testPlayer("b")
	b.Side = SideMonsters
	s := sessionWith(t, alwaysHit(), nil, a, b)

	_, err := s.Act("a", Action{Type: ActionAttack})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Combo("a"))

	_, err = s.Act("b", Action{Type: ActionAttack})
	require.NoError(t, err)
	assert.Equal(t, 0, s.Combo("a"), "combo breaks when the turn changes sides")
	assert.Equal(t, 1, s.Combo("b"))
}

func TestAct_EnrageIsIrreversibleAndFiresHook(t *testing.T) {
	p, m := testPlayer("p1"), testMonster("m1")
	m.HP = 100 // 10% of max: already under the enrage threshold
	m.Attack = 1
	hookCalls := 0
	s := sessionWith(t, alwaysHit(), func(_ *Session, c *Combatant) {
		hookCalls++
		assert.Equal(t, "m1", c.ID)
	}, p, m)

	res, err := s.Act("p1", Action{Type: ActionDefend})
	require.NoError(t, err)
	assert.Contains(t, res.EnragedIDs, "m1")
	assert.True(t, m.Enraged)
	assert.Equal(t, 1, hookCalls)

	// Healing above the threshold does not clear enrage, and the hook does
	// not fire again.
	m.HP = m.MaxHP
	res, err = s.Act("p1", Action{Type: ActionDefend})
	require.NoError(t, err)
	assert.Empty(t, res.EnragedIDs)
	assert.True(t, m.Enraged)
	assert.Equal(t, 1, hookCalls)
}

func TestAct_DoTTicksAtTurnStart(t *testing.T) {
	p, m := testPlayer("p1"), testMonster("m1")
	s := sessionWith(t, alwaysHit(), nil, p, m)

	burn, ok := status.DefaultRegistry().Get(status.Burn)
	require.True(t, ok)
	require.NoError(t, p.Statuses.Apply(burn, 3, 3, "m1"))

	hpBefore := p.HP
	_, err := s.Act("p1", Action{Type: ActionDefend})
	require.NoError(t, err)
	// 3 stacks x 5 burn damage tick before the action; the defend shield
	// cannot absorb damage over time.
	assert.LessOrEqual(t, p.HP, hpBefore-15)
}

func TestAct_NarrativeLogBounded(t *testing.T) {
	p, m := testPlayer("p1"), testMonster("m1")
	s := sessionWith(t, alwaysHit(), nil, p, m)

	for i := 0; i < 5; i++ {
		res, err := s.Act("p1", Action{Type: ActionAttack})
		require.NoError(t, err)
		assert.LessOrEqual(t, len(res.Log), 3)
	}
	assert.Len(t, s.Log(), 3)
}
