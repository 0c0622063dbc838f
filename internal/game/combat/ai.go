package combat

import (
	"go.uber.org/zap"

	"github.com/derelict-dawn/derelict/internal/game/content"
	"github.com/derelict-dawn/derelict/internal/game/dice"
	"github.com/derelict-dawn/derelict/internal/game/state"
	"github.com/derelict-dawn/derelict/internal/scripting"
)

// SelectEnemyAction picks the enemy's next action. Actions are filtered by
// cooldown and use condition and chosen uniformly; when none qualifies the
// enemy falls back to a random ALWAYS action, then to its first action.
//
// Postcondition: Returns (action, true) unless the enemy has no resolvable action.
func (e *Engine) SelectEnemyAction(st *state.GameState, def *content.Enemy) (*content.EnemyAction, bool) {
	catalog := e.enemyCatalog(def)
	if len(catalog) == 0 {
		e.logger.Error("enemy has no resolvable actions", zap.String("enemy", def.ID))
		return nil, false
	}

	var eligible []*content.EnemyAction
	for _, act := range catalog {
		if st.Combat.EnemyCooldowns[act.ID] > 0 {
			continue
		}
		if e.conditionHolds(st, def, act, true) {
			eligible = append(eligible, act)
		}
	}
	if len(eligible) > 0 {
		return dice.Pick(e.src, eligible), true
	}

	var always []*content.EnemyAction
	for _, act := range catalog {
		if act.UseCondition.Type == content.Always {
			always = append(always, act)
		}
	}
	if len(always) > 0 {
		return dice.Pick(e.src, always), true
	}
	return catalog[0], true
}

// enemyCatalog resolves the enemy's action ids in declaration order.
func (e *Engine) enemyCatalog(def *content.Enemy) []*content.EnemyAction {
	out := make([]*content.EnemyAction, 0, len(def.Actions))
	for _, id := range def.Actions {
		act, ok := e.catalog.EnemyAction(id)
		if !ok {
			e.logger.Warn("enemy references unknown action",
				zap.String("enemy", def.ID),
				zap.String("action", id),
			)
			continue
		}
		out = append(out, act)
	}
	return out
}

// conditionHolds evaluates act's use condition against the live battle. With
// roll false a RANDOM condition is treated as already passed, which is how a
// telegraphed intention is re-validated without re-rolling it.
func (e *Engine) conditionHolds(st *state.GameState, def *content.Enemy, act *content.EnemyAction, roll bool) bool {
	enemy := &st.Combat.EnemyStats
	u := act.UseCondition
	switch u.Type {
	case content.Always, "":
		return true
	case content.Random:
		return !roll || dice.Chance(e.src, u.Probability)
	case content.HealthThreshold:
		return u.Holds(enemy.HealthFraction())
	case content.ShieldThreshold:
		if enemy.MaxShield <= 0 {
			return false
		}
		return u.Holds(enemy.ShieldFraction())
	case content.Script:
		if e.scripts == nil {
			e.logger.Warn("SCRIPT condition with no script evaluator", zap.String("action", act.ID))
			return false
		}
		ok, err := e.scripts.EvalCondition(u.Script, e.scriptContext(st, def))
		if err != nil {
			e.logger.Warn("SCRIPT condition failed",
				zap.String("action", act.ID),
				zap.String("script", u.Script),
				zap.Error(err),
			)
			return false
		}
		return ok
	default:
		e.logger.Warn("unknown use condition", zap.String("action", act.ID), zap.String("type", string(u.Type)))
		return false
	}
}

func (e *Engine) scriptContext(st *state.GameState, def *content.Enemy) scripting.ConditionContext {
	c := &st.Combat
	return scripting.ConditionContext{
		Turn:            c.Turn,
		EnemyID:         def.ID,
		Health:          c.EnemyStats.Health,
		MaxHealth:       c.EnemyStats.MaxHealth,
		Shield:          c.EnemyStats.Shield,
		MaxShield:       c.EnemyStats.MaxShield,
		PlayerHealth:    c.PlayerStats.Health,
		PlayerMaxHealth: c.PlayerStats.MaxHealth,
		PlayerShield:    c.PlayerStats.Shield,
		PlayerMaxShield: c.PlayerStats.MaxShield,
	}
}

// chooseIntention telegraphs the enemy's next action.
func (e *Engine) chooseIntention(st *state.GameState, def *content.Enemy) {
	act, ok := e.SelectEnemyAction(st, def)
	if !ok {
		st.Combat.EnemyIntentions = nil
		return
	}
	st.Combat.EnemyIntentions = &state.EnemyIntention{ActionID: act.ID, Name: act.Name, Damage: act.Damage}
}

// intendedAction returns the telegraphed action if it is still usable,
// otherwise a fresh selection.
func (e *Engine) intendedAction(st *state.GameState, def *content.Enemy) (*content.EnemyAction, bool) {
	if in := st.Combat.EnemyIntentions; in != nil {
		if act, ok := e.catalog.EnemyAction(in.ActionID); ok &&
			st.Combat.EnemyCooldowns[act.ID] == 0 &&
			e.conditionHolds(st, def, act, false) {
			return act, true
		}
	}
	return e.SelectEnemyAction(st, def)
}
