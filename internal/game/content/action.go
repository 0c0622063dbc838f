package content

import (
	"fmt"

	"github.com/derelict-dawn/derelict/internal/game/condition"
	"github.com/derelict-dawn/derelict/internal/game/state"
)

// EffectTarget selects which combatant an action's status effect lands on.
type EffectTarget string

const (
	// TargetOpponent applies the effect to the other combatant.
	TargetOpponent EffectTarget = "target"
	// TargetSelf applies the effect to the acting combatant.
	TargetSelf EffectTarget = "self"
)

// ActionEffect is a status effect carried by an action.
type ActionEffect struct {
	state.StatusEffect `yaml:",inline"`
	Target             EffectTarget `yaml:"target"`
}

// Action is a combat action definition shared by the player and enemy catalogs.
type Action struct {
	ID           string                 `yaml:"id"`
	Name         string                 `yaml:"name"`
	Description  string                 `yaml:"description"`
	Cost         []state.ResourceAmount `yaml:"cost"`
	Cooldown     int                    `yaml:"cooldown"`
	Damage       int                    `yaml:"damage"`
	ShieldRepair int                    `yaml:"shield_repair"`
	HullRepair   int                    `yaml:"hull_repair"`
	StatusEffect *ActionEffect          `yaml:"status_effect"`
}

// Validate checks the action's invariants against the status effect registry.
//
// Postcondition: Returns nil iff ID and Name are non-empty, all numeric fields
// are non-negative, every cost names a known resource and the status effect,
// if any, is valid.
func (a *Action) Validate(effects *condition.Registry) error {
	if a.ID == "" {
		return fmt.Errorf("action: id must not be empty")
	}
	if a.Name == "" {
		return fmt.Errorf("action %q: name must not be empty", a.ID)
	}
	if a.Cooldown < 0 || a.Damage < 0 || a.ShieldRepair < 0 || a.HullRepair < 0 {
		return fmt.Errorf("action %q: cooldown, damage and repairs must be >= 0", a.ID)
	}
	for i, c := range a.Cost {
		if !c.Type.Known() {
			return fmt.Errorf("action %q: cost[%d] has unknown resource %q", a.ID, i, c.Type)
		}
		if c.Amount <= 0 {
			return fmt.Errorf("action %q: cost[%d] amount must be > 0, got %v", a.ID, i, c.Amount)
		}
	}
	if a.StatusEffect != nil {
		switch a.StatusEffect.Target {
		case "":
			a.StatusEffect.Target = TargetOpponent
		case TargetOpponent, TargetSelf:
		default:
			return fmt.Errorf("action %q: status effect target %q must be %q or %q", a.ID, a.StatusEffect.Target, TargetOpponent, TargetSelf)
		}
		if err := effects.Validate(a.StatusEffect.StatusEffect); err != nil {
			return fmt.Errorf("action %q: %w", a.ID, err)
		}
	}
	return nil
}

// ConditionType selects how an enemy decides whether an action is eligible.
type ConditionType string

const (
	Always          ConditionType = "ALWAYS"
	Random          ConditionType = "RANDOM"
	HealthThreshold ConditionType = "HEALTH_THRESHOLD"
	ShieldThreshold ConditionType = "SHIELD_THRESHOLD"
	Script          ConditionType = "SCRIPT"
)

// Comparison is the direction of a threshold condition.
type Comparison string

const (
	// AtOrBelow is eligible when fraction <= threshold.
	AtOrBelow Comparison = "at_or_below"
	// AtOrAbove is eligible when fraction >= threshold.
	AtOrAbove Comparison = "at_or_above"
)

// UseCondition gates when an enemy may pick an action.
type UseCondition struct {
	Type        ConditionType `yaml:"type"`
	Probability float64       `yaml:"probability"`
	Threshold   float64       `yaml:"threshold"`
	Comparison  Comparison    `yaml:"comparison"`
	// Script names a global Lua function loaded from the script directory.
	Script string `yaml:"script"`
}

// Holds reports whether fraction satisfies the threshold comparison.
func (u UseCondition) Holds(fraction float64) bool {
	if u.Comparison == AtOrAbove {
		return fraction >= u.Threshold
	}
	return fraction <= u.Threshold
}

// EnemyAction is an enemy catalog entry: an Action plus its AI use condition.
// Enemies never pay resource costs.
type EnemyAction struct {
	Action       `yaml:",inline"`
	UseCondition UseCondition `yaml:"use_condition"`
}

// Validate checks the action and normalises its use condition defaults.
func (a *EnemyAction) Validate(effects *condition.Registry) error {
	if err := a.Action.Validate(effects); err != nil {
		return err
	}
	u := &a.UseCondition
	if u.Type == "" {
		u.Type = Always
	}
	switch u.Type {
	case Always:
	case Random:
		if u.Probability <= 0 || u.Probability > 1 {
			return fmt.Errorf("enemy action %q: RANDOM probability must be in (0, 1], got %v", a.ID, u.Probability)
		}
	case HealthThreshold, ShieldThreshold:
		if u.Threshold < 0 || u.Threshold > 1 {
			return fmt.Errorf("enemy action %q: threshold must be in [0, 1], got %v", a.ID, u.Threshold)
		}
		switch u.Comparison {
		case "":
			u.Comparison = AtOrBelow
		case AtOrBelow, AtOrAbove:
		default:
			return fmt.Errorf("enemy action %q: comparison %q must be %q or %q", a.ID, u.Comparison, AtOrBelow, AtOrAbove)
		}
	case Script:
		if u.Script == "" {
			return fmt.Errorf("enemy action %q: SCRIPT condition must name a script function", a.ID)
		}
	default:
		return fmt.Errorf("enemy action %q: unknown use condition %q", a.ID, u.Type)
	}
	return nil
}
