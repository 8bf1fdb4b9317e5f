package status_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/nonamep-p/plagg-engine/internal/game/status"
)

func defs() *status.Registry { return status.DefaultRegistry() }

func mustDef(t *testing.T, r *status.Registry, kind status.Kind) *status.Def {
	t.Helper()
	d, ok := r.Get(kind)
	require.True(t, ok, "missing definition for %s", kind)
	return d
}

func TestApply_NewEffect(t *testing.T) {
	r := defs()
	s := status.NewActiveSet()
	require.NoError(t, s.Apply(mustDef(t, r, status.Burn), 2, 0, "npc-1"))
	assert.True(t, s.Has(status.Burn))
	assert.Equal(t, 2, s.Stacks(status.Burn))
	assert.Equal(t, 3, s.Duration(status.Burn)) // default duration from the def
}

func TestApply_StacksCappedPerKind(t *testing.T) {
	r := defs()
	tests := []struct {
		kind status.Kind
		cap  int
	}{
		{status.Burn, 5},
		{status.Poison, 3},
		{status.Bleed, 4},
	}
	for _, tc := range tests {
		t.Run(string(tc.kind), func(t *testing.T) {
			s := status.NewActiveSet()
			d := mustDef(t, r, tc.kind)
			for i := 0; i < 20; i++ {
				require.NoError(t, s.Apply(d, 2, 0, "x"))
			}
			assert.Equal(t, tc.cap, s.Stacks(tc.kind))
		})
	}
}

func TestApply_UnstackableAlwaysOne(t *testing.T) {
	r := defs()
	s := status.NewActiveSet()
	d := mustDef(t, r, status.Stun)
	require.NoError(t, s.Apply(d, 3, 0, "x"))
	require.NoError(t, s.Apply(d, 3, 0, "x"))
	assert.Equal(t, 1, s.Stacks(status.Stun))
}

func TestApply_DurationExtendsNotShortens(t *testing.T) {
	r := defs()
	s := status.NewActiveSet()
	d := mustDef(t, r, status.Burn)
	require.NoError(t, s.Apply(d, 1, 5, "x"))
	require.NoError(t, s.Apply(d, 1, 2, "x"))
	assert.Equal(t, 5, s.Duration(status.Burn))
}

func TestApply_InvalidArgs(t *testing.T) {
	s := status.NewActiveSet()
	require.Error(t, s.Apply(nil, 1, 0, "x"))
	require.Error(t, s.Apply(mustDef(t, defs(), status.Burn), 0, 0, "x"))
}

// Property: no sequence of applications can push a stack count past its cap.
func TestApply_StackCapProperty(t *testing.T) {
	r := defs()
	rapid.Check(t, func(rt *rapid.T) {
		s := status.NewActiveSet()
		kind := rapid.SampledFrom([]status.Kind{status.Burn, status.Poison, status.Bleed, status.Stun}).Draw(rt, "kind")
		d, ok := r.Get(kind)
		require.True(rt, ok)
		n := rapid.IntRange(1, 30).Draw(rt, "applications")
		for i := 0; i < n; i++ {
			stacks := rapid.IntRange(1, 6).Draw(rt, "stacks")
			require.NoError(rt, s.Apply(d, stacks, 0, "x"))
		}
		limit := d.MaxStacks
		if limit == 0 {
			limit = 1
		}
		assert.LessOrEqual(rt, s.Stacks(kind), limit)
		assert.GreaterOrEqual(rt, s.Stacks(kind), 1)
	})
}

func TestTickStart_DotScalesWithStacks(t *testing.T) {
	r := defs()
	s := status.NewActiveSet()
	require.NoError(t, s.Apply(mustDef(t, r, status.Burn), 3, 3, "x"))   // 3 stacks x 5
	require.NoError(t, s.Apply(mustDef(t, r, status.Poison), 2, 4, "x")) // 2 stacks x 3
	res := s.TickStart()
	assert.Equal(t, 21, res.Damage)
	assert.Equal(t, 0, res.Heal)
	assert.Empty(t, res.Expired)
}

func TestTickStart_RegenHeals(t *testing.T) {
	r := defs()
	s := status.NewActiveSet()
	require.NoError(t, s.Apply(mustDef(t, r, status.Regen), 1, 3, "x"))
	res := s.TickStart()
	assert.Equal(t, 8, res.Heal)
	assert.Equal(t, 0, res.Damage)
}

func TestTickStart_ExpiryAtZero(t *testing.T) {
	r := defs()
	s := status.NewActiveSet()
	require.NoError(t, s.Apply(mustDef(t, r, status.Bleed), 1, 2, "x"))

	res := s.TickStart()
	assert.Empty(t, res.Expired)
	assert.Equal(t, 1, s.Duration(status.Bleed))

	res = s.TickStart()
	assert.Equal(t, []status.Kind{status.Bleed}, res.Expired)
	assert.False(t, s.Has(status.Bleed))
}

func TestTickStart_StunLastsExactlyOneTurn(t *testing.T) {
	r := defs()
	s := status.NewActiveSet()
	require.NoError(t, s.Apply(mustDef(t, r, status.Stun), 1, 1, "x"))
	assert.True(t, s.BlocksAll())

	res := s.TickStart()
	assert.Contains(t, res.Expired, status.Stun)
	assert.False(t, s.BlocksAll())
}

func TestCure_RemovesEffect(t *testing.T) {
	r := defs()
	s := status.NewActiveSet()
	require.NoError(t, s.Apply(mustDef(t, r, status.Poison), 2, 0, "x"))
	s.Cure(status.Poison)
	assert.False(t, s.Has(status.Poison))
	assert.Equal(t, 0, s.Stacks(status.Poison))

	s.Cure(status.Poison) // not present: no-op, must not panic
}

func TestGates(t *testing.T) {
	r := defs()

	t.Run("stun blocks everything", func(t *testing.T) {
		s := status.NewActiveSet()
		require.NoError(t, s.Apply(mustDef(t, r, status.Stun), 1, 0, "x"))
		assert.True(t, s.BlocksAll())
		assert.True(t, s.BlocksSkills())
	})

	t.Run("silence blocks skills only", func(t *testing.T) {
		s := status.NewActiveSet()
		require.NoError(t, s.Apply(mustDef(t, r, status.Silence), 1, 0, "x"))
		assert.False(t, s.BlocksAll())
		assert.True(t, s.BlocksSkills())
	})

	t.Run("taunt forces target to the applier", func(t *testing.T) {
		s := status.NewActiveSet()
		require.NoError(t, s.Apply(mustDef(t, r, status.Taunt), 1, 0, "boss-7"))
		assert.Equal(t, "boss-7", s.ForcedTarget())
	})

	t.Run("no gates when clean", func(t *testing.T) {
		s := status.NewActiveSet()
		assert.False(t, s.BlocksAll())
		assert.False(t, s.BlocksSkills())
		assert.Equal(t, "", s.ForcedTarget())
	})
}

func TestModifiers_Additive(t *testing.T) {
	r := defs()
	s := status.NewActiveSet()
	require.NoError(t, s.Apply(mustDef(t, r, status.Haste), 1, 0, "x"))
	require.NoError(t, s.Apply(mustDef(t, r, status.Slow), 1, 0, "x"))
	// Haste +0.3 speed, Slow -0.3 speed: they cancel.
	assert.InDelta(t, 0.0, s.SpeedModifier(), 1e-9)
	// Haste +0.2 dealt, Slow -0.2 dealt: they cancel.
	assert.InDelta(t, 0.0, s.DamageDealtModifier(), 1e-9)

	require.NoError(t, s.Apply(mustDef(t, r, status.Shield), 1, 0, "x"))
	assert.InDelta(t, -0.4, s.DamageTakenModifier(), 1e-9)
}
