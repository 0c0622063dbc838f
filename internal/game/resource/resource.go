// Package resource implements the idle-production simulation and the shared
// resource ledger every other system debits and credits through.
package resource

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/derelict-dawn/derelict/internal/game/event"
	"github.com/derelict-dawn/derelict/internal/game/state"
)

var (
	// ErrUnknownResource is returned when a cost names a resource type the engine does not know.
	ErrUnknownResource = errors.New("unknown resource type")
	// ErrInsufficientResources is returned when a cost cannot be covered.
	ErrInsufficientResources = errors.New("insufficient resources")
)

// Simulation advances resource pools and owns every debit/credit against them.
// It is not safe for concurrent use; callers serialise access to the state.
type Simulation struct {
	bus    *event.Bus
	logger *zap.Logger
}

// NewSimulation creates a Simulation. bus may be nil, in which case no
// resource:changed events are published.
func NewSimulation(bus *event.Bus, logger *zap.Logger) *Simulation {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulation{bus: bus, logger: logger}
}

// Update advances every category by deltaSeconds of production. The
// category's derived PerSecondRate already equals activeUnits × perUnitRate.
// Production beyond capacity is lost, never queued.
//
// Postcondition: 0 <= amount <= capacity for every category; PlayTime grows by deltaSeconds.
func (s *Simulation) Update(st *state.GameState, deltaSeconds float64) {
	if deltaSeconds <= 0 || math.IsNaN(deltaSeconds) || math.IsInf(deltaSeconds, 0) {
		return
	}
	st.PlayTime += deltaSeconds

	for _, id := range state.Categories {
		c := st.Category(id)
		if c == nil {
			continue
		}
		gained := c.Stats.PerSecondRate * deltaSeconds
		if gained <= 0 {
			continue
		}
		room := c.Stats.Capacity - c.Resources.Amount
		if room <= 0 {
			continue
		}
		applied := math.Min(gained, room)
		c.Resources.Amount += applied
		s.bus.Publish(event.ResourceChangedEvent{Category: id, Delta: applied})
	}
}

// Amount returns the current amount of resource r.
//
// Postcondition: Returns (amount, true) for known types, (0, false) otherwise.
func (s *Simulation) Amount(st *state.GameState, r state.ResourceType) (float64, bool) {
	if r == state.Components {
		return st.Components, true
	}
	id, ok := state.CategoryFor(r)
	if !ok {
		return 0, false
	}
	c := st.Category(id)
	if c == nil {
		return 0, false
	}
	return c.Resources.Amount, true
}

// tally sums costs per resource type and checks each against the pools.
func (s *Simulation) tally(st *state.GameState, costs []state.ResourceAmount) (map[state.ResourceType]float64, error) {
	need := make(map[state.ResourceType]float64, len(costs))
	for _, c := range costs {
		if !c.Type.Known() {
			s.logger.Warn("cost names unknown resource type", zap.String("resource", string(c.Type)))
			return nil, fmt.Errorf("%w: %q", ErrUnknownResource, c.Type)
		}
		if c.Amount < 0 {
			s.logger.Warn("cost has negative amount",
				zap.String("resource", string(c.Type)),
				zap.Float64("amount", c.Amount),
			)
			return nil, fmt.Errorf("negative cost for %q", c.Type)
		}
		need[c.Type] += c.Amount
	}
	for r, amt := range need {
		have, ok := s.Amount(st, r)
		if !ok {
			s.logger.Warn("resource pool missing from state", zap.String("resource", string(r)))
			return nil, fmt.Errorf("%w: %q", ErrUnknownResource, r)
		}
		if have < amt {
			return nil, fmt.Errorf("%w: need %.0f %s, have %.0f", ErrInsufficientResources, amt, r, math.Floor(have))
		}
	}
	return need, nil
}

// Has reports whether every cost can be covered. Unknown resource types are a
// hard failure and are logged as a warning.
func (s *Simulation) Has(st *state.GameState, costs []state.ResourceAmount) bool {
	_, err := s.tally(st, costs)
	return err == nil
}

// Check returns the reason costs cannot be covered, or nil if they can.
func (s *Simulation) Check(st *state.GameState, costs []state.ResourceAmount) error {
	_, err := s.tally(st, costs)
	return err
}

// Consume debits every cost or none.
//
// Postcondition: on error the state is unchanged.
func (s *Simulation) Consume(st *state.GameState, costs []state.ResourceAmount) error {
	need, err := s.tally(st, costs)
	if err != nil {
		return err
	}
	for r, amt := range need {
		s.adjust(st, r, -amt)
	}
	return nil
}

// Add credits amount of r, clamped at capacity for category-backed resources.
// Unknown types are logged and ignored.
//
// Postcondition: Returns the amount actually applied (>= 0).
func (s *Simulation) Add(st *state.GameState, r state.ResourceType, amount float64) float64 {
	if amount <= 0 {
		return 0
	}
	if !r.Known() {
		s.logger.Warn("reward names unknown resource type", zap.String("resource", string(r)))
		return 0
	}
	if r == state.Components {
		st.Components += amount
		return amount
	}
	id, _ := state.CategoryFor(r)
	c := st.Category(id)
	if c == nil {
		return 0
	}
	room := math.Max(0, c.Stats.Capacity-c.Resources.Amount)
	applied := math.Min(amount, room)
	c.Resources.Amount += applied
	return applied
}

// Remove debits up to amount of r, flooring the pool at zero.
//
// Postcondition: Returns the amount actually removed (>= 0).
func (s *Simulation) Remove(st *state.GameState, r state.ResourceType, amount float64) float64 {
	if amount <= 0 {
		return 0
	}
	have, ok := s.Amount(st, r)
	if !ok {
		s.logger.Warn("loss names unknown resource type", zap.String("resource", string(r)))
		return 0
	}
	removed := math.Min(have, amount)
	s.adjust(st, r, -removed)
	return removed
}

// Apply credits positive and debits negative amounts, each clamped to the
// pool's bounds.
//
// Postcondition: Returns the signed amounts actually applied, omitting lines
// that had no effect.
func (s *Simulation) Apply(st *state.GameState, amounts []state.ResourceAmount) []state.ResourceAmount {
	var applied []state.ResourceAmount
	for _, a := range amounts {
		var delta float64
		if a.Amount >= 0 {
			delta = s.Add(st, a.Type, a.Amount)
		} else {
			delta = -s.Remove(st, a.Type, -a.Amount)
		}
		if delta != 0 {
			applied = append(applied, state.ResourceAmount{Type: a.Type, Amount: delta})
		}
	}
	return applied
}

// Drain removes floor(amount × fraction) from every pool, including components.
//
// Precondition: 0 <= fraction <= 1.
// Postcondition: Returns the amounts lost, in canonical category order.
func (s *Simulation) Drain(st *state.GameState, fraction float64) []state.ResourceAmount {
	if fraction <= 0 {
		return nil
	}
	if fraction > 1 {
		fraction = 1
	}
	var lost []state.ResourceAmount
	types := make([]state.ResourceType, 0, len(state.Categories)+1)
	for _, id := range state.Categories {
		types = append(types, id.Resource())
	}
	types = append(types, state.Components)
	for _, r := range types {
		have, _ := s.Amount(st, r)
		loss := math.Floor(have * fraction)
		if loss <= 0 {
			continue
		}
		s.adjust(st, r, -loss)
		lost = append(lost, state.ResourceAmount{Type: r, Amount: loss})
	}
	return lost
}

func (s *Simulation) adjust(st *state.GameState, r state.ResourceType, delta float64) {
	if r == state.Components {
		st.Components = math.Max(0, st.Components+delta)
		return
	}
	id, ok := state.CategoryFor(r)
	if !ok {
		return
	}
	if c := st.Category(id); c != nil {
		c.Resources.Amount = math.Max(0, c.Resources.Amount+delta)
	}
}
