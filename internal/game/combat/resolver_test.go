package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/derelict-dawn/derelict/internal/game/combat"
	"github.com/derelict-dawn/derelict/internal/game/condition"
	"github.com/derelict-dawn/derelict/internal/game/dice"
	"github.com/derelict-dawn/derelict/internal/game/state"
)

func combatant(health, shield int) *state.Combatant {
	return &state.Combatant{Health: health, MaxHealth: 100, Shield: shield, MaxShield: 50, StatusEffects: []state.StatusEffectInstance{}}
}

func TestApplyDamage_ShieldAbsorbsFirst(t *testing.T) {
	target := &state.Combatant{Health: 50, MaxHealth: 50, Shield: 4, MaxShield: 10}
	hit := combat.ApplyDamage(target, 10, false)
	assert.Equal(t, 0, target.Shield)
	assert.Equal(t, 44, target.Health)
	assert.Equal(t, combat.Hit{Absorbed: 4, Dealt: 6}, hit)
}

func TestApplyDamage_BypassLeavesShield(t *testing.T) {
	target := combatant(50, 20)
	hit := combat.ApplyDamage(target, 10, true)
	assert.Equal(t, 20, target.Shield)
	assert.Equal(t, 40, target.Health)
	assert.True(t, hit.Bypassed)
}

func TestApplyDamage_FloorsAtZero(t *testing.T) {
	target := combatant(5, 3)
	hit := combat.ApplyDamage(target, 100, false)
	assert.Zero(t, target.Shield)
	assert.Zero(t, target.Health)
	assert.Equal(t, 3, hit.Absorbed)
	assert.Equal(t, 5, hit.Dealt)
}

func TestScaledDamage_Modifiers(t *testing.T) {
	attacker, target := combatant(100, 0), combatant(100, 0)
	assert.Equal(t, 10, combat.ScaledDamage(10, attacker, target))
	assert.Zero(t, combat.ScaledDamage(0, attacker, target))

	require.NoError(t, condition.Apply(target, state.StatusEffect{Type: state.Weaken, Duration: 2, Magnitude: 0.25}, "t"))
	assert.Equal(t, 13, combat.ScaledDamage(10, attacker, target), "round(12.5)")

	require.NoError(t, condition.Apply(attacker, state.StatusEffect{Type: state.Disable, Duration: 2, Magnitude: 1}, "t"))
	assert.Zero(t, combat.ScaledDamage(10, attacker, target))
}

func TestStrike_ExposeRollsOnlyWhenExposed(t *testing.T) {
	src := dice.NewSequenceSource(0.3)
	attacker, target := combatant(100, 0), combatant(100, 20)
	combat.Strike(src, 10, attacker, target)
	assert.Zero(t, src.Consumed())
	assert.Equal(t, 10, target.Shield)

	require.NoError(t, condition.Apply(target, state.StatusEffect{Type: state.Expose, Duration: 2, Magnitude: 0.5}, "t"))
	hit := combat.Strike(src, 10, attacker, target)
	assert.Equal(t, 1, src.Consumed())
	assert.True(t, hit.Bypassed)
	assert.Equal(t, 10, target.Shield)
	assert.Equal(t, 90, target.Health)
}

func TestRepair_CapsAtMaximum(t *testing.T) {
	c := combatant(95, 45)
	shield, hull := combat.Repair(c, 20, 20)
	assert.Equal(t, 5, shield)
	assert.Equal(t, 5, hull)
	assert.Equal(t, 100, c.Health)
	assert.Equal(t, 50, c.Shield)
}

func TestPropertyDamageConservation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		health := rapid.IntRange(0, 200).Draw(t, "health")
		shield := rapid.IntRange(0, 100).Draw(t, "shield")
		dmg := rapid.IntRange(0, 400).Draw(t, "dmg")
		bypass := rapid.Bool().Draw(t, "bypass")
		target := &state.Combatant{Health: health, MaxHealth: 200, Shield: shield, MaxShield: 100}

		hit := combat.ApplyDamage(target, dmg, bypass)
		if target.Health < 0 || target.Shield < 0 {
			t.Fatalf("negative stats: %+v", target)
		}
		if hit.Absorbed+hit.Dealt > dmg {
			t.Fatalf("hit %+v exceeds damage %d", hit, dmg)
		}
		if health-target.Health != hit.Dealt || shield-target.Shield != hit.Absorbed {
			t.Fatalf("hit %+v does not match stat change", hit)
		}
		if !bypass && hit.Dealt > 0 && target.Shield != 0 {
			t.Fatalf("hull took damage while shield held %d", target.Shield)
		}
	})
}
