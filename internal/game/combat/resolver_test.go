package combat

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nonamep-p/plagg-engine/internal/config"
	"github.com/nonamep-p/plagg-engine/internal/game/element"
	"github.com/nonamep-p/plagg-engine/internal/game/status"
)

// scriptSource replays a fixed cycle of Float64 values. One resolved strike
// consumes three draws: hit roll, damage variance, crit roll (skipped when
// the crit is guaranteed).
type scriptSource struct {
	vals []float64
	i    int
}

func (s *scriptSource) Float64() float64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

func (s *scriptSource) Intn(n int) int {
	if n <= 0 {
		panic("Intn: n must be > 0")
	}
	return 0
}

// alwaysHit scripts hit, neutral variance, no crit, repeating.
func alwaysHit() *scriptSource { return &scriptSource{vals: []float64{0.0, 0.5, 0.99}} }

func testMatchup(t *testing.T) *element.Matchup {
	t.Helper()
	m, err := element.NewMatchup(element.DefaultEdges(), element.Factors{Advantage: 1.5, Disadvantage: 0.5})
	require.NoError(t, err)
	return m
}

func newTestResolver(t *testing.T, src *scriptSource) *resolver {
	t.Helper()
	return &resolver{cfg: config.DefaultCombat(), matchup: testMatchup(t), src: src}
}

func basicCombatant(id string, side Side) *Combatant {
	return &Combatant{
		ID:       id,
		Name:     id,
		Side:     side,
		MaxHP:    1000,
		HP:       1000,
		MaxSP:    100,
		SP:       100,
		Attack:   50,
		Speed:    10,
		Luck:     5,
		Accuracy: 80,
		Evasion:  20,
		Statuses: status.NewActiveSet(),
	}
}

func TestHitRoll_Tiers(t *testing.T) {
	// acc 80 vs eva 20: p = 0.8; hit band ends at 0.72, graze band at 0.8.
	tests := []struct {
		roll float64
		want HitKind
		mult float64
	}{
		{0.0, Hit, 1.0},
		{0.71, Hit, 1.0},
		{0.75, Graze, grazeFactor},
		{0.80, Graze, grazeFactor},
		{0.81, Miss, 0.0},
		{0.99, Miss, 0.0},
	}
	for _, tc := range tests {
		src := &scriptSource{vals: []float64{tc.roll}}
		kind, mult := hitRoll(src, 80, 20)
		assert.Equal(t, tc.want, kind, "roll %.2f", tc.roll)
		assert.InDelta(t, tc.mult, mult, 1e-9)
	}
}

func TestHitRoll_ProbabilityClamped(t *testing.T) {
	// Overwhelming accuracy still leaves a 5% miss band.
	src := &scriptSource{vals: []float64{0.96}}
	kind, _ := hitRoll(src, 100000, 1)
	assert.Equal(t, Miss, kind)

	// Hopeless accuracy still hits 5% of the time.
	src = &scriptSource{vals: []float64{0.04}}
	kind, _ = hitRoll(src, 1, 100000)
	assert.NotEqual(t, Miss, kind)
}

func TestCritRoll_LuckCapped(t *testing.T) {
	// Crit chance caps at 0.75 no matter the luck.
	src := &scriptSource{vals: []float64{0.76}}
	assert.False(t, critRoll(src, 1000000))

	src = &scriptSource{vals: []float64{0.74}}
	assert.True(t, critRoll(src, 1000000))

	// Base chance with zero luck is 5%.
	src = &scriptSource{vals: []float64{0.04}}
	assert.True(t, critRoll(src, 0))
}

func TestScaledDamage_MinimumOne(t *testing.T) {
	src := &scriptSource{vals: []float64{0.5}}
	dmg := scaledDamage(src, 0.001, 1, 1000, 0)
	assert.Equal(t, 1, dmg)
}

func TestScaledDamage_VarianceBounds(t *testing.T) {
	for _, roll := range []float64{0.0, 0.5, 1.0} {
		src := &scriptSource{vals: []float64{roll}}
		dmg := scaledDamage(src, 100, 50, 0, 0)
		// scale = (50/51)^1.2; variance within ±5%.
		base := 100 * math.Pow(50.0/51.0, damageExponent)
		assert.GreaterOrEqual(t, float64(dmg), math.Floor(base*0.95))
		assert.LessOrEqual(t, float64(dmg), math.Ceil(base*1.05))
	}
}

// The canonical pipeline check: a Fire-affine attacker (Attack 50) lands a
// matching Fire skill of power 30 on an Ice defender at combo count 2.
// Expected: round(base) x 1.20 affinity x 1.5 advantage x 1.10 combo,
// rounded once at the end.
func TestStrike_MultiplierPipeline(t *testing.T) {
	src := alwaysHit()
	r := newTestResolver(t, src)

	attacker := basicCombatant("p1", SidePlayers)
	attacker.Attack = 50
	attacker.Affinity = element.Fire

	defender := basicCombatant("m1", SideMonsters)
	defender.Defense = 0
	defender.Evasion = 20
	defender.Affinity = element.Ice

	sr := r.strike(attacker, defender, 30, "physical", element.Fire, 2, false)
	require.Equal(t, Hit, sr.Kind)
	require.False(t, sr.Crit)

	base := math.Round(30 * math.Pow(50.0/51.0, damageExponent)) // variance draw is neutral
	expected := int(math.Round(base * 1.20 * 1.5 * 1.10))
	assert.Equal(t, expected, sr.HPDamage)
	assert.Equal(t, 1000-expected, defender.HP)
}

func TestStrike_NeutralElementSkipsAffinityAndMatchup(t *testing.T) {
	src := alwaysHit()
	r := newTestResolver(t, src)

	attacker := basicCombatant("p1", SidePlayers)
	defender := basicCombatant("m1", SideMonsters)
	defender.Defense = 0

	sr := r.strike(attacker, defender, 30, "physical", "", 0, false)
	require.Equal(t, Hit, sr.Kind)

	base := int(math.Round(30 * math.Pow(50.0/51.0, damageExponent)))
	assert.Equal(t, base, sr.HPDamage)
}

func TestStrike_MagicalUsesIntelligence(t *testing.T) {
	src := alwaysHit()
	r := newTestResolver(t, src)

	attacker := basicCombatant("p1", SidePlayers)
	attacker.Intelligence = 40
	defender := basicCombatant("m1", SideMonsters)
	defender.Intelligence = 0

	sr := r.strike(attacker, defender, 30, "magical", "", 0, false)
	require.Equal(t, Hit, sr.Kind)

	base := int(math.Round(30 * math.Pow(40.0/41.0, damageExponent)))
	assert.Equal(t, base, sr.HPDamage)
}

func TestStrike_GuaranteedCritSkipsRoll(t *testing.T) {
	// Only two draws: hit roll and variance. A third draw would wrap to 0.0
	// and wrongly crit, so the guaranteed path must not consume it.
	src := &scriptSource{vals: []float64{0.0, 0.5}}
	r := newTestResolver(t, src)

	attacker := basicCombatant("p1", SidePlayers)
	defender := basicCombatant("m1", SideMonsters)
	defender.Defense = 0

	sr := r.strike(attacker, defender, 30, "physical", "", 0, true)
	require.Equal(t, Hit, sr.Kind)
	assert.True(t, sr.Crit)

	base := math.Round(30 * math.Pow(50.0/51.0, damageExponent))
	assert.Equal(t, int(math.Round(base*critFactor)), sr.HPDamage)
	assert.Equal(t, 2, src.i)
}

func TestStrike_ShieldAbsorbsBeforeHP(t *testing.T) {
	src := alwaysHit()
	r := newTestResolver(t, src)

	attacker := basicCombatant("p1", SidePlayers)
	defender := basicCombatant("m1", SideMonsters)
	defender.Defense = 0
	defender.Shield = 10000

	sr := r.strike(attacker, defender, 30, "physical", "", 0, false)
	require.Equal(t, Hit, sr.Kind)
	assert.Equal(t, 0, sr.HPDamage)
	assert.Greater(t, sr.Absorbed, 0)
	assert.Equal(t, 1000, defender.HP)
}

func TestStrike_MissDealsNothing(t *testing.T) {
	src := &scriptSource{vals: []float64{0.99}}
	r := newTestResolver(t, src)

	attacker := basicCombatant("p1", SidePlayers)
	defender := basicCombatant("m1", SideMonsters)

	sr := r.strike(attacker, defender, 30, "physical", "", 0, false)
	assert.Equal(t, Miss, sr.Kind)
	assert.Equal(t, 0, sr.HPDamage)
	assert.Equal(t, 1000, defender.HP)
	assert.Equal(t, 1, src.i) // a miss consumes only the hit roll
}

func TestStrike_EnrageBonus(t *testing.T) {
	src := alwaysHit()
	r := newTestResolver(t, src)

	attacker := basicCombatant("m1", SideMonsters)
	attacker.Enraged = true
	defender := basicCombatant("p1", SidePlayers)
	defender.Defense = 0

	sr := r.strike(attacker, defender, 30, "physical", "", 0, false)
	require.Equal(t, Hit, sr.Kind)

	base := math.Round(30 * math.Pow(50.0/51.0, damageExponent))
	assert.Equal(t, int(math.Round(base*1.30)), sr.HPDamage)
}
