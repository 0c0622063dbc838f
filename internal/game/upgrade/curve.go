// Package upgrade implements the economy ledger: upgrade cost curves,
// purchases, active-unit assignment and derived category stats.
package upgrade

import (
	"fmt"
	"math"

	"github.com/derelict-dawn/derelict/internal/game/state"
)

// Kind identifies which upgrade track of a category is being bought.
type Kind string

const (
	// Capacity raises the category's storage cap.
	Capacity Kind = "capacity"
	// Throughput adds one production unit to the category.
	Throughput Kind = "throughput"
)

// Curve holds the static economy parameters of one category.
type Curve struct {
	// BaseCapacity is the capacity at capacity level 0.
	BaseCapacity float64 `yaml:"base_capacity"`
	// CapacityGrowth multiplies capacity on every capacity level.
	CapacityGrowth float64 `yaml:"capacity_growth"`
	// CapacityCostMultiplier prices a capacity upgrade as floor(currentCapacity × multiplier).
	CapacityCostMultiplier float64 `yaml:"capacity_cost_multiplier"`
	// ThroughputBaseCost prices a throughput upgrade as (level+1) × base.
	ThroughputBaseCost float64 `yaml:"throughput_base_cost"`
	// ThroughputCurrency is the resource paid for throughput upgrades.
	ThroughputCurrency state.ResourceType `yaml:"throughput_currency"`
	// PerUnitRate is the per-second production of one active unit.
	PerUnitRate float64 `yaml:"per_unit_rate"`
	// InitialUnits are owned before any throughput upgrade.
	InitialUnits int `yaml:"initial_units"`
	// ComponentThreshold is the level from which upgrades also cost
	// components; 0 disables component gating.
	ComponentThreshold int `yaml:"component_threshold"`
	// ComponentBase prices the component surcharge as floor(base^level).
	ComponentBase float64 `yaml:"component_base"`
}

// Validate checks the curve's invariants.
func (c Curve) Validate() error {
	if c.BaseCapacity <= 0 {
		return fmt.Errorf("base_capacity must be > 0, got %v", c.BaseCapacity)
	}
	if c.CapacityGrowth <= 1 {
		return fmt.Errorf("capacity_growth must be > 1, got %v", c.CapacityGrowth)
	}
	if c.CapacityCostMultiplier <= 0 {
		return fmt.Errorf("capacity_cost_multiplier must be > 0, got %v", c.CapacityCostMultiplier)
	}
	if c.ThroughputBaseCost <= 0 {
		return fmt.Errorf("throughput_base_cost must be > 0, got %v", c.ThroughputBaseCost)
	}
	if _, ok := state.CategoryFor(c.ThroughputCurrency); !ok {
		return fmt.Errorf("throughput_currency must be a category resource, got %q", c.ThroughputCurrency)
	}
	if c.PerUnitRate < 0 {
		return fmt.Errorf("per_unit_rate must be >= 0, got %v", c.PerUnitRate)
	}
	if c.InitialUnits < 0 {
		return fmt.Errorf("initial_units must be >= 0, got %d", c.InitialUnits)
	}
	if c.ComponentThreshold < 0 {
		return fmt.Errorf("component_threshold must be >= 0, got %d", c.ComponentThreshold)
	}
	if c.ComponentThreshold > 0 && c.ComponentBase <= 1 {
		return fmt.Errorf("component_base must be > 1 when gating is enabled, got %v", c.ComponentBase)
	}
	return nil
}

// CapacityAt returns the capacity at the given capacity level.
//
// Postcondition: Returns floor(BaseCapacity × CapacityGrowth^level).
func (c Curve) CapacityAt(level int) float64 {
	return math.Floor(c.BaseCapacity * math.Pow(c.CapacityGrowth, float64(level)))
}

// CapacityCost returns the price of the next capacity upgrade from level.
func (c Curve) CapacityCost(level int) float64 {
	return math.Floor(c.CapacityAt(level) * c.CapacityCostMultiplier)
}

// ThroughputCost returns the price of the next throughput upgrade from level.
func (c Curve) ThroughputCost(level int) float64 {
	return float64(level+1) * c.ThroughputBaseCost
}

// ComponentCost returns the component surcharge at level, or 0 below the threshold.
func (c Curve) ComponentCost(level int) float64 {
	if c.ComponentThreshold <= 0 || level < c.ComponentThreshold {
		return 0
	}
	return math.Floor(math.Pow(c.ComponentBase, float64(level)))
}

// DefaultCurves returns the built-in economy table.
func DefaultCurves() map[state.CategoryID]Curve {
	return map[state.CategoryID]Curve{
		state.Reactor: {
			BaseCapacity: 100, CapacityGrowth: 1.5, CapacityCostMultiplier: 0.8,
			ThroughputBaseCost: 10, ThroughputCurrency: state.Energy,
			PerUnitRate: 1, InitialUnits: 1,
			ComponentThreshold: 5, ComponentBase: 1.5,
		},
		state.Processor: {
			BaseCapacity: 50, CapacityGrowth: 1.5, CapacityCostMultiplier: 0.7,
			ThroughputBaseCost: 15, ThroughputCurrency: state.Energy,
			PerUnitRate: 0.5,
			ComponentThreshold: 5, ComponentBase: 1.6,
		},
		state.CrewQuarters: {
			BaseCapacity: 10, CapacityGrowth: 1.5, CapacityCostMultiplier: 1,
			ThroughputBaseCost: 20, ThroughputCurrency: state.Insight,
			PerUnitRate: 0.1,
			ComponentThreshold: 4, ComponentBase: 1.8,
		},
		state.Manufacturing: {
			BaseCapacity: 50, CapacityGrowth: 1.5, CapacityCostMultiplier: 0.6,
			ThroughputBaseCost: 5, ThroughputCurrency: state.Crew,
			PerUnitRate: 0.5,
			ComponentThreshold: 5, ComponentBase: 1.5,
		},
	}
}
