package content

import (
	"fmt"

	"github.com/derelict-dawn/derelict/internal/game/state"
)

// LootEntry is one independent drop of an enemy's loot table.
type LootEntry struct {
	Type   state.ResourceType `yaml:"type"`
	Amount float64            `yaml:"amount"`
	// Probability is the drop chance; nil means the entry always drops.
	Probability *float64 `yaml:"probability"`
}

// Chance returns the entry's drop probability, defaulting to 1.
func (l LootEntry) Chance() float64 {
	if l.Probability == nil {
		return 1
	}
	return *l.Probability
}

// Enemy is a static enemy definition. Combat seeds live stats from it and
// never mutates it.
type Enemy struct {
	ID          string      `yaml:"id"`
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Health      int         `yaml:"health"`
	MaxHealth   int         `yaml:"max_health"`
	Shield      int         `yaml:"shield"`
	MaxShield   int         `yaml:"max_shield"`
	Actions     []string    `yaml:"actions"`
	Loot        []LootEntry `yaml:"loot"`
	Region      string      `yaml:"region"`
	SubRegion   string      `yaml:"sub_region"`
	IsBoss      bool        `yaml:"is_boss"`
	// Weight is the enemy's share of its region's combat roster; 0 means 1.
	Weight float64 `yaml:"weight"`
}

// SelectionWeight returns Weight, defaulting to 1.
func (e *Enemy) SelectionWeight() float64 {
	if e.Weight <= 0 {
		return 1
	}
	return e.Weight
}

// Validate checks the enemy's own invariants and fills defaults.
// Cross references (actions, region) are checked by the Catalog.
//
// Postcondition: on success 0 < Health <= MaxHealth and 0 <= Shield <= MaxShield.
func (e *Enemy) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("enemy: id must not be empty")
	}
	if e.Name == "" {
		return fmt.Errorf("enemy %q: name must not be empty", e.ID)
	}
	if e.MaxHealth < 1 {
		return fmt.Errorf("enemy %q: max_health must be >= 1", e.ID)
	}
	if e.Health == 0 {
		e.Health = e.MaxHealth
	}
	if e.Health < 0 || e.Health > e.MaxHealth {
		return fmt.Errorf("enemy %q: health must be in [1, max_health], got %d", e.ID, e.Health)
	}
	if e.MaxShield < 0 || e.Shield < 0 || e.Shield > e.MaxShield {
		return fmt.Errorf("enemy %q: shield must be in [0, max_shield]", e.ID)
	}
	if len(e.Actions) == 0 {
		return fmt.Errorf("enemy %q: must have at least one action", e.ID)
	}
	if e.Region == "" {
		return fmt.Errorf("enemy %q: region must not be empty", e.ID)
	}
	if e.Weight < 0 {
		return fmt.Errorf("enemy %q: weight must be >= 0", e.ID)
	}
	for i, l := range e.Loot {
		if !l.Type.Known() {
			return fmt.Errorf("enemy %q: loot[%d] has unknown resource %q", e.ID, i, l.Type)
		}
		if l.Amount <= 0 {
			return fmt.Errorf("enemy %q: loot[%d] amount must be > 0", e.ID, i)
		}
		if p := l.Chance(); p <= 0 || p > 1 {
			return fmt.Errorf("enemy %q: loot[%d] probability must be in (0, 1], got %v", e.ID, i, p)
		}
	}
	return nil
}
