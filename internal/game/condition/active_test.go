package condition_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/derelict-dawn/derelict/internal/game/condition"
	"github.com/derelict-dawn/derelict/internal/game/state"
)

func weaken(duration int, mag float64) state.StatusEffect {
	return state.StatusEffect{Type: state.Weaken, Duration: duration, Magnitude: mag}
}

func TestApply_SetsRemainingTurns(t *testing.T) {
	var c state.Combatant
	require.NoError(t, condition.Apply(&c, weaken(3, 0.25), "player"))
	require.Len(t, c.StatusEffects, 1)
	assert.Equal(t, 3, c.StatusEffects[0].RemainingTurns)
	assert.Equal(t, "player", c.StatusEffects[0].Source)
	assert.True(t, condition.Has(&c, state.Weaken))
}

func TestApply_RejectsNonPositiveDuration(t *testing.T) {
	var c state.Combatant
	assert.Error(t, condition.Apply(&c, weaken(0, 0.25), "player"))
	assert.Empty(t, c.StatusEffects)
}

func TestApply_ReapplyRefreshesWithoutStacking(t *testing.T) {
	var c state.Combatant
	require.NoError(t, condition.Apply(&c, weaken(3, 0.5), "player"))
	condition.Tick(&c)
	require.NoError(t, condition.Apply(&c, weaken(2, 0.25), "player"))
	require.Len(t, c.StatusEffects, 1)
	assert.Equal(t, 2, c.StatusEffects[0].RemainingTurns)
	assert.Equal(t, 0.5, c.StatusEffects[0].Magnitude)

	require.NoError(t, condition.Apply(&c, weaken(4, 0.75), "enemy"))
	assert.Equal(t, 4, c.StatusEffects[0].RemainingTurns)
	assert.Equal(t, 0.75, c.StatusEffects[0].Magnitude)
}

func TestTick_ExpiresAtZero(t *testing.T) {
	var c state.Combatant
	require.NoError(t, condition.Apply(&c, weaken(1, 0.25), "player"))
	require.NoError(t, condition.Apply(&c, state.StatusEffect{Type: state.Stun, Duration: 2}, "enemy"))

	expired := condition.Tick(&c)
	assert.Equal(t, []state.StatusEffectType{state.Weaken}, expired)
	assert.False(t, condition.Has(&c, state.Weaken))
	assert.True(t, condition.IsStunned(&c))

	expired = condition.Tick(&c)
	assert.Equal(t, []state.StatusEffectType{state.Stun}, expired)
	assert.Empty(t, c.StatusEffects)
}

func TestRemoveAndClear(t *testing.T) {
	var c state.Combatant
	condition.Remove(&c, state.Stun)
	require.NoError(t, condition.Apply(&c, weaken(2, 0.1), "player"))
	require.NoError(t, condition.Apply(&c, state.StatusEffect{Type: state.Expose, Duration: 2, Magnitude: 0.5}, "player"))

	condition.Remove(&c, state.Weaken)
	assert.False(t, condition.Has(&c, state.Weaken))
	assert.True(t, condition.Has(&c, state.Expose))

	condition.Clear(&c)
	assert.NotNil(t, c.StatusEffects)
	assert.Empty(t, c.StatusEffects)
}

func TestModifiers(t *testing.T) {
	var c state.Combatant
	assert.Equal(t, 1.0, condition.DamageTakenMultiplier(&c))
	assert.Equal(t, 1.0, condition.OutgoingMultiplier(&c))
	assert.Zero(t, condition.ShieldBypassChance(&c))
	assert.False(t, condition.IsStunned(&c))

	require.NoError(t, condition.Apply(&c, weaken(2, 0.5), "enemy"))
	require.NoError(t, condition.Apply(&c, state.StatusEffect{Type: state.Disable, Duration: 2, Magnitude: 0.3}, "enemy"))
	require.NoError(t, condition.Apply(&c, state.StatusEffect{Type: state.Expose, Duration: 2, Magnitude: 0.4}, "enemy"))
	assert.Equal(t, 1.5, condition.DamageTakenMultiplier(&c))
	assert.InDelta(t, 0.7, condition.OutgoingMultiplier(&c), 1e-9)
	assert.Equal(t, 0.4, condition.ShieldBypassChance(&c))
}

func TestOutgoingMultiplier_NeverNegative(t *testing.T) {
	c := state.Combatant{StatusEffects: []state.StatusEffectInstance{
		{StatusEffect: state.StatusEffect{Type: state.Disable, Duration: 1, Magnitude: 1.5}, RemainingTurns: 1},
	}}
	assert.Zero(t, condition.OutgoingMultiplier(&c))
}

func TestPropertyTick_RemainingAlwaysPositive(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		var c state.Combatant
		types := []state.StatusEffectType{state.Weaken, state.Expose, state.Stun, state.Disable}
		n := rapid.IntRange(0, 8).Draw(rt, "applies")
		for i := 0; i < n; i++ {
			typ := rapid.SampledFrom(types).Draw(rt, "type")
			d := rapid.IntRange(1, 6).Draw(rt, "duration")
			require.NoError(rt, condition.Apply(&c, state.StatusEffect{Type: typ, Duration: d, Magnitude: 0.2}, "x"))
		}
		ticks := rapid.IntRange(0, 8).Draw(rt, "ticks")
		for i := 0; i < ticks; i++ {
			condition.Tick(&c)
		}
		seen := map[state.StatusEffectType]bool{}
		for _, inst := range c.StatusEffects {
			assert.Greater(rt, inst.RemainingTurns, 0)
			assert.False(rt, seen[inst.Type], "effect %s stacked", inst.Type)
			seen[inst.Type] = true
		}
	})
}
