package combat

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/derelict-dawn/derelict/internal/game/condition"
	"github.com/derelict-dawn/derelict/internal/game/content"
	"github.com/derelict-dawn/derelict/internal/game/event"
	"github.com/derelict-dawn/derelict/internal/game/state"
)

// PerformAction resolves one atomic exchange: the player's action, a victory
// check, the enemy's counter-action, a defeat check, then turn upkeep.
//
// The action is validated in order: it must exist, be off cooldown and be
// affordable. A rejected action appends a battle-log entry and changes
// nothing else; the turn is not consumed. A stunned player still needs a
// known action that is off cooldown, then forfeits it without paying for it
// while the enemy still acts.
//
// Postcondition: On success Turn is incremented unless the battle ended.
func (e *Engine) PerformAction(st *state.GameState, actionID string) Result {
	c := &st.Combat
	if !c.Active {
		e.logger.Warn("combat action with no active combat", zap.String("action", actionID))
		return Result{Message: "No active combat"}
	}
	enemyDef, enemyKnown := e.catalog.Enemy(c.CurrentEnemy)
	enemyName := c.CurrentEnemy
	if enemyKnown {
		enemyName = enemyDef.Name
	}

	stunned := condition.IsStunned(&c.PlayerStats)
	act, failure := e.validate(st, actionID, !stunned)
	if failure != "" {
		c.Log(state.LogSystem, failure)
		e.bus.Publish(event.CombatActionEvent{ActionID: actionID, Message: failure, Turn: c.Turn})
		return Result{Message: failure}
	}

	var used *content.Action
	var msg string
	if stunned {
		msg = "Your systems are stunned; you lose the initiative."
		c.Log(state.LogSystem, msg)
	} else {
		if err := e.res.Consume(st, act.Cost); err != nil {
			failure = fmt.Sprintf("Cannot fire %s: %v", act.Name, err)
			c.Log(state.LogSystem, failure)
			e.bus.Publish(event.CombatActionEvent{ActionID: actionID, Message: failure, Turn: c.Turn})
			return Result{Message: failure}
		}
		used = act
		msg = e.apply(c, state.LogPlayer, act, &c.PlayerStats, &c.EnemyStats, "player", enemyName)
	}

	if c.EnemyStats.Health <= 0 {
		return e.victory(st, actionID, msg, enemyDef)
	}

	var enemyUsed *content.EnemyAction
	switch {
	case !enemyKnown:
		e.logger.Error("active enemy has no definition", zap.String("enemy", c.CurrentEnemy))
	case condition.IsStunned(&c.EnemyStats):
		c.Log(state.LogEnemy, fmt.Sprintf("%s is stunned and cannot act.", enemyName))
	default:
		if act, ok := e.intendedAction(st, enemyDef); ok {
			enemyUsed = act
			e.apply(c, state.LogEnemy, &act.Action, &c.EnemyStats, &c.PlayerStats, enemyDef.ID, "your ship")
		}
	}
	enemyActionID := ""
	if enemyUsed != nil {
		enemyActionID = enemyUsed.ID
	}

	if c.PlayerStats.Health <= 0 {
		return e.defeat(st, actionID, msg, enemyActionID)
	}

	e.upkeep(st, used, enemyUsed)
	c.Turn++
	if enemyKnown {
		e.chooseIntention(st, enemyDef)
	}

	e.bus.Publish(event.CombatActionEvent{ActionID: actionID, Success: true, Message: msg, Turn: c.Turn, EnemyActionID: enemyActionID})
	return Result{Success: true, Message: msg, EnemyActionID: enemyActionID}
}

// validate checks existence and cooldown, and affordability when checkCost
// is set, returning a failure message or "".
func (e *Engine) validate(st *state.GameState, actionID string, checkCost bool) (*content.Action, string) {
	act, ok := e.catalog.PlayerAction(actionID)
	if !ok {
		return nil, fmt.Sprintf("Unknown action %q", actionID)
	}
	if cd := st.Combat.Cooldowns[actionID]; cd > 0 {
		return nil, fmt.Sprintf("%s is on cooldown for %d more turn(s)", act.Name, cd)
	}
	if checkCost && !e.res.Has(st, act.Cost) {
		return nil, fmt.Sprintf("Insufficient resources for %s", act.Name)
	}
	return act, ""
}

// apply resolves act from actor against opponent and logs a summary.
func (e *Engine) apply(c *state.Combat, by state.LogSource, act *content.Action, actor, opponent *state.Combatant, actorID, opponentName string) string {
	var parts []string
	if act.Damage > 0 {
		hit := Strike(e.src, act.Damage, actor, opponent)
		part := fmt.Sprintf("hits %s for %d", opponentName, hit.Absorbed+hit.Dealt)
		switch {
		case hit.Bypassed:
			part += " straight through the shields"
		case hit.Absorbed > 0:
			part += fmt.Sprintf(" (%d absorbed by shields)", hit.Absorbed)
		}
		parts = append(parts, part)
	}
	if act.ShieldRepair > 0 || act.HullRepair > 0 {
		shield, hull := Repair(actor, act.ShieldRepair, act.HullRepair)
		parts = append(parts, fmt.Sprintf("restores %d shield and %d hull", shield, hull))
	}
	if eff := act.StatusEffect; eff != nil {
		target, targetName := opponent, opponentName
		if eff.Target == content.TargetSelf {
			target, targetName = actor, "itself"
		}
		if err := condition.Apply(target, eff.StatusEffect, actorID); err != nil {
			e.logger.Warn("status effect rejected", zap.String("action", act.ID), zap.Error(err))
		} else {
			parts = append(parts, fmt.Sprintf("inflicts %s on %s for %d turn(s)", e.catalog.Effects().Name(eff.Type), targetName, eff.Duration))
		}
	}
	if len(parts) == 0 {
		parts = append(parts, "has no effect")
	}
	msg := fmt.Sprintf("%s %s.", act.Name, strings.Join(parts, ", "))
	c.Log(by, msg)
	e.logger.Debug("combat action resolved", zap.String("action", act.ID), zap.String("by", actorID))
	return msg
}
