package condition

import (
	"github.com/derelict-dawn/derelict/internal/game/state"
)

// DamageTakenMultiplier returns the factor applied to damage landing on c.
//
// Postcondition: Returns >= 1.
func DamageTakenMultiplier(c *state.Combatant) float64 {
	return 1 + Magnitude(c, state.Weaken)
}

// OutgoingMultiplier returns the factor applied to damage dealt by c.
//
// Postcondition: Returns a value in [0, 1].
func OutgoingMultiplier(c *state.Combatant) float64 {
	return max(0, 1-Magnitude(c, state.Disable))
}

// ShieldBypassChance returns the probability that damage landing on c
// ignores its shield.
//
// Postcondition: Returns a value in [0, 1].
func ShieldBypassChance(c *state.Combatant) float64 {
	return min(1, Magnitude(c, state.Expose))
}

// IsStunned reports whether c loses its turn.
func IsStunned(c *state.Combatant) bool {
	return Has(c, state.Stun)
}
