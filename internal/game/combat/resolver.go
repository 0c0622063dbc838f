package combat

import (
	"math"

	"github.com/derelict-dawn/derelict/internal/game/condition"
	"github.com/derelict-dawn/derelict/internal/game/dice"
	"github.com/derelict-dawn/derelict/internal/game/state"
)

// Hit describes the damage one attack did.
type Hit struct {
	// Absorbed is the damage taken by the shield.
	Absorbed int
	// Dealt is the damage taken by the hull.
	Dealt int
	// Bypassed is true when the attack ignored the shield.
	Bypassed bool
}

// ScaledDamage applies the attacker's DISABLE and the target's WEAKEN
// multipliers to base, rounding to the nearest point.
//
// Postcondition: Returns >= 0.
func ScaledDamage(base int, attacker, target *state.Combatant) int {
	if base <= 0 {
		return 0
	}
	scaled := float64(base) * condition.OutgoingMultiplier(attacker) * condition.DamageTakenMultiplier(target)
	return int(math.Round(scaled))
}

// ApplyDamage lands dmg on target. The shield absorbs first unless bypass is
// set; the remainder carries to the hull. Neither goes below zero.
//
// Postcondition: Absorbed + Dealt <= dmg; Shield >= 0; Health >= 0.
func ApplyDamage(target *state.Combatant, dmg int, bypass bool) Hit {
	if dmg <= 0 {
		return Hit{Bypassed: bypass}
	}
	var hit Hit
	hit.Bypassed = bypass
	if !bypass {
		hit.Absorbed = min(max(target.Shield, 0), dmg)
		target.Shield -= hit.Absorbed
		dmg -= hit.Absorbed
	}
	hit.Dealt = min(max(target.Health, 0), dmg)
	target.Health = max(0, target.Health-dmg)
	return hit
}

// Strike resolves an attack of base damage from attacker against target,
// rolling EXPOSE shield bypass only when the target is exposed.
func Strike(src dice.Source, base int, attacker, target *state.Combatant) Hit {
	dmg := ScaledDamage(base, attacker, target)
	if dmg <= 0 {
		return Hit{}
	}
	bypass := dice.Chance(src, condition.ShieldBypassChance(target))
	return ApplyDamage(target, dmg, bypass)
}

// Repair restores shield and hull on c, capped at their maxima.
//
// Postcondition: Returns the shield and hull points actually restored.
func Repair(c *state.Combatant, shield, hull int) (int, int) {
	shieldGain := max(0, min(shield, c.MaxShield-c.Shield))
	hullGain := max(0, min(hull, c.MaxHealth-c.Health))
	c.Shield += shieldGain
	c.Health += hullGain
	return shieldGain, hullGain
}
