package combat

import (
	"fmt"
	"math"
	"sort"

	"github.com/derelict-dawn/derelict/internal/game/condition"
	"github.com/derelict-dawn/derelict/internal/game/content"
	"github.com/derelict-dawn/derelict/internal/game/dice"
	"github.com/derelict-dawn/derelict/internal/game/event"
	"github.com/derelict-dawn/derelict/internal/game/state"
)

// upkeep runs at the turn boundary: status effects and existing cooldowns of
// both sides tick down, then the actions used this exchange go on cooldown.
func (e *Engine) upkeep(st *state.GameState, used *content.Action, enemyUsed *content.EnemyAction) {
	c := &st.Combat
	for _, typ := range condition.Tick(&c.PlayerStats) {
		c.Log(state.LogSystem, fmt.Sprintf("%s wears off your ship.", e.catalog.Effects().Name(typ)))
	}
	for _, typ := range condition.Tick(&c.EnemyStats) {
		c.Log(state.LogSystem, fmt.Sprintf("%s wears off the enemy.", e.catalog.Effects().Name(typ)))
	}
	tickCooldowns(c.Cooldowns)
	tickCooldowns(c.EnemyCooldowns)
	if used != nil && used.Cooldown > 0 {
		c.Cooldowns[used.ID] = used.Cooldown
	}
	if enemyUsed != nil && enemyUsed.Cooldown > 0 {
		c.EnemyCooldowns[enemyUsed.ID] = enemyUsed.Cooldown
	}
}

// tickCooldowns decrements every cooldown, dropping those that reach zero.
func tickCooldowns(cds map[string]int) {
	for id, n := range cds {
		if n <= 1 {
			delete(cds, id)
			continue
		}
		cds[id] = n - 1
	}
}

// victory awards loot and ends the battle. Each loot entry rolls its own
// probability and is credited through the resource ledger.
func (e *Engine) victory(st *state.GameState, actionID, msg string, def *content.Enemy) Result {
	c := &st.Combat
	rewards := map[state.ResourceType]float64{}
	if def != nil {
		for _, l := range def.Loot {
			if !dice.Chance(e.src, l.Chance()) {
				continue
			}
			rewards[l.Type] += e.res.Add(st, l.Type, l.Amount)
		}
	}
	c.Rewards = rewards
	name := c.CurrentEnemy
	if def != nil {
		name = def.Name
	}
	c.Log(state.LogSystem, fmt.Sprintf("%s is destroyed. Salvage: %s.", name, describeRewards(rewards)))
	e.finish(st, state.OutcomeVictory)
	e.bus.Publish(event.CombatActionEvent{ActionID: actionID, Success: true, Message: msg, Turn: c.Turn})
	return Result{Success: true, Message: msg, Outcome: state.OutcomeVictory, Rewards: rewards}
}

// defeat drains the defeat penalty, restores the hull to the recovery
// fraction and ends the battle.
func (e *Engine) defeat(st *state.GameState, actionID, msg, enemyActionID string) Result {
	c := &st.Combat
	lost := e.res.Drain(st, e.cfg.DefeatPenalty)
	p := &c.PlayerStats
	p.Health = max(1, int(math.Floor(float64(p.MaxHealth)*e.cfg.DefeatRecovery)))
	p.Shield = 0
	c.Log(state.LogSystem, "Your ship is crippled. The crew limps away from the battle.")
	e.finish(st, state.OutcomeDefeat)
	e.bus.Publish(event.CombatActionEvent{ActionID: actionID, Success: true, Message: msg, Turn: c.Turn, EnemyActionID: enemyActionID})
	return Result{Success: true, Message: msg, EnemyActionID: enemyActionID, Outcome: state.OutcomeDefeat, Lost: lost}
}

func describeRewards(rewards map[state.ResourceType]float64) string {
	if len(rewards) == 0 {
		return "nothing"
	}
	types := make([]string, 0, len(rewards))
	for t := range rewards {
		types = append(types, string(t))
	}
	sort.Strings(types)
	out := ""
	for i, t := range types {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%g %s", rewards[state.ResourceType(t)], t)
	}
	return out
}
