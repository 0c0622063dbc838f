package upgrade

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/derelict-dawn/derelict/internal/game/resource"
	"github.com/derelict-dawn/derelict/internal/game/state"
)

// Result is the structured outcome of a ledger operation.
// Message is always populated.
type Result struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Cost    []state.ResourceAmount `json:"cost,omitempty"`
	Level   int                    `json:"level"`
}

// Ledger prices and applies upgrade purchases against the shared resource ledger.
// It is not safe for concurrent use; callers serialise access to the state.
type Ledger struct {
	curves map[state.CategoryID]Curve
	res    *resource.Simulation
	logger *zap.Logger
}

// NewLedger creates a Ledger. A nil curves map uses DefaultCurves; categories
// missing from curves fall back to their default curve.
//
// Precondition: res must be non-nil.
func NewLedger(curves map[state.CategoryID]Curve, res *resource.Simulation, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	merged := DefaultCurves()
	for id, c := range curves {
		merged[id] = c
	}
	return &Ledger{curves: merged, res: res, logger: logger}
}

// Curve returns the curve for category id.
func (l *Ledger) Curve(id state.CategoryID) (Curve, bool) {
	c, ok := l.curves[id]
	return c, ok
}

// Quote returns the full cost of the next upgrade of kind for category id.
//
// Postcondition: Returns a non-empty cost list or an error for an unknown
// category or kind.
func (l *Ledger) Quote(st *state.GameState, id state.CategoryID, kind Kind) ([]state.ResourceAmount, error) {
	curve, ok := l.curves[id]
	cat := st.Category(id)
	if !ok || cat == nil {
		return nil, fmt.Errorf("unknown category %q", id)
	}

	var level int
	var cost []state.ResourceAmount
	switch kind {
	case Capacity:
		level = cat.Upgrades.Capacity
		cost = append(cost, state.ResourceAmount{Type: id.Resource(), Amount: curve.CapacityCost(level)})
	case Throughput:
		level = cat.Upgrades.Throughput
		cost = append(cost, state.ResourceAmount{Type: curve.ThroughputCurrency, Amount: curve.ThroughputCost(level)})
	default:
		return nil, fmt.Errorf("unknown upgrade kind %q", kind)
	}
	if comp := curve.ComponentCost(level); comp > 0 {
		cost = append(cost, state.ResourceAmount{Type: state.Components, Amount: comp})
	}
	return cost, nil
}

// Purchase buys the next upgrade of kind for category id: price it, check
// affordability, consume, increment the level and recompute derived stats.
// A rejected purchase leaves the state untouched.
func (l *Ledger) Purchase(st *state.GameState, id state.CategoryID, kind Kind) Result {
	cost, err := l.Quote(st, id, kind)
	if err != nil {
		l.logger.Warn("rejected upgrade purchase",
			zap.String("category", string(id)),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		return Result{Message: err.Error()}
	}
	if err := l.res.Consume(st, cost); err != nil {
		return Result{Message: fmt.Sprintf("Cannot afford %s upgrade: %v", kind, err), Cost: cost}
	}

	cat := st.Category(id)
	var level int
	switch kind {
	case Capacity:
		cat.Upgrades.Capacity++
		level = cat.Upgrades.Capacity
	case Throughput:
		cat.Upgrades.Throughput++
		cat.Stats.ActiveUnits++
		level = cat.Upgrades.Throughput
	}
	l.RecomputeCategory(st, id)

	l.logger.Info("upgrade purchased",
		zap.String("category", string(id)),
		zap.String("kind", string(kind)),
		zap.Int("level", level),
	)
	return Result{
		Success: true,
		Message: fmt.Sprintf("%s %s upgraded to level %d", id, kind, level),
		Cost:    cost,
		Level:   level,
	}
}

// SetActiveUnits assigns n of the category's units to production, clamped to
// [0, totalUnits], and recomputes the production rate.
func (l *Ledger) SetActiveUnits(st *state.GameState, id state.CategoryID, n int) Result {
	cat := st.Category(id)
	if _, ok := l.curves[id]; !ok || cat == nil {
		l.logger.Warn("active units for unknown category", zap.String("category", string(id)))
		return Result{Message: fmt.Sprintf("unknown category %q", id)}
	}
	cat.Stats.ActiveUnits = n
	l.RecomputeCategory(st, id)
	return Result{
		Success: true,
		Message: fmt.Sprintf("%s running %d of %d units", id, cat.Stats.ActiveUnits, cat.Stats.TotalUnits),
		Level:   cat.Upgrades.Throughput,
	}
}

// Recompute recomputes derived stats for every category.
func (l *Ledger) Recompute(st *state.GameState) {
	for _, id := range state.Categories {
		l.RecomputeCategory(st, id)
	}
}

// RecomputeCategory derives capacity, unit counts and production rate purely
// from upgrade levels and the requested active-unit count.
//
// Postcondition: 0 <= ActiveUnits <= TotalUnits; 0 <= amount <= Capacity.
func (l *Ledger) RecomputeCategory(st *state.GameState, id state.CategoryID) {
	curve, ok := l.curves[id]
	cat := st.Category(id)
	if !ok || cat == nil {
		return
	}
	s := &cat.Stats
	s.TotalUnits = curve.InitialUnits + cat.Upgrades.Throughput
	s.ActiveUnits = max(0, min(s.ActiveUnits, s.TotalUnits))
	s.Capacity = curve.CapacityAt(cat.Upgrades.Capacity)
	s.PerSecondRate = float64(s.ActiveUnits) * curve.PerUnitRate
	cat.Resources.Amount = math.Max(0, math.Min(cat.Resources.Amount, s.Capacity))
}
