// Package condition applies, ticks and interprets timed status effects on
// combatants.
package condition

import (
	"fmt"

	"github.com/derelict-dawn/derelict/internal/game/state"
)

// Apply attaches eff to c with RemainingTurns = eff.Duration.
// Re-applying a type already present does not stack: the remaining turns
// become max(existing, duration) and the magnitude max(existing, new).
//
// Precondition: eff.Duration > 0.
// Postcondition: Has(c, eff.Type) is true.
func Apply(c *state.Combatant, eff state.StatusEffect, source string) error {
	if eff.Duration <= 0 {
		return fmt.Errorf("Apply: duration must be > 0, got %d", eff.Duration)
	}
	for i := range c.StatusEffects {
		existing := &c.StatusEffects[i]
		if existing.Type != eff.Type {
			continue
		}
		existing.RemainingTurns = max(existing.RemainingTurns, eff.Duration)
		existing.Magnitude = max(existing.Magnitude, eff.Magnitude)
		existing.Duration = max(existing.Duration, eff.Duration)
		existing.Source = source
		return nil
	}
	c.StatusEffects = append(c.StatusEffects, state.StatusEffectInstance{
		StatusEffect:   eff,
		RemainingTurns: eff.Duration,
		Source:         source,
	})
	return nil
}

// Remove deletes every effect of typ from c. Removing an absent type is a no-op.
//
// Postcondition: Has(c, typ) is false.
func Remove(c *state.Combatant, typ state.StatusEffectType) {
	kept := c.StatusEffects[:0]
	for _, inst := range c.StatusEffects {
		if inst.Type != typ {
			kept = append(kept, inst)
		}
	}
	c.StatusEffects = kept
}

// Clear removes all effects from c.
func Clear(c *state.Combatant) {
	c.StatusEffects = []state.StatusEffectInstance{}
}

// Tick decrements RemainingTurns of every effect on c by one and removes the
// effects that reach zero, returning their types in application order.
//
// Postcondition: every remaining effect has RemainingTurns > 0.
func Tick(c *state.Combatant) []state.StatusEffectType {
	var expired []state.StatusEffectType
	kept := c.StatusEffects[:0]
	for _, inst := range c.StatusEffects {
		inst.RemainingTurns--
		if inst.RemainingTurns <= 0 {
			expired = append(expired, inst.Type)
			continue
		}
		kept = append(kept, inst)
	}
	c.StatusEffects = kept
	return expired
}

// Has reports whether an effect of typ is active on c.
func Has(c *state.Combatant, typ state.StatusEffectType) bool {
	for _, inst := range c.StatusEffects {
		if inst.Type == typ {
			return true
		}
	}
	return false
}

// Magnitude returns the strongest magnitude of typ on c, or 0 if absent.
func Magnitude(c *state.Combatant, typ state.StatusEffectType) float64 {
	var m float64
	for _, inst := range c.StatusEffects {
		if inst.Type == typ && inst.Magnitude > m {
			m = inst.Magnitude
		}
	}
	return m
}
