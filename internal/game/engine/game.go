// Package engine wires the game systems around one GameState and exposes the
// inbound API the presentation layer drives. Every call is serialised so each
// mutation is atomic with respect to the simulation tick.
package engine

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/derelict-dawn/derelict/internal/game/combat"
	"github.com/derelict-dawn/derelict/internal/game/content"
	"github.com/derelict-dawn/derelict/internal/game/dice"
	"github.com/derelict-dawn/derelict/internal/game/encounter"
	"github.com/derelict-dawn/derelict/internal/game/event"
	"github.com/derelict-dawn/derelict/internal/game/resource"
	"github.com/derelict-dawn/derelict/internal/game/state"
	"github.com/derelict-dawn/derelict/internal/game/upgrade"
	"github.com/derelict-dawn/derelict/internal/save"
)

// Options configures a Game.
type Options struct {
	// Catalog is the loaded content. Required.
	Catalog *content.Catalog
	// Source drives every random roll. Defaults to a crypto source.
	Source dice.Source
	// Scripts evaluates SCRIPT enemy conditions. Optional.
	Scripts combat.ScriptEvaluator
	// Combat holds battle penalties.
	Combat combat.Config
	// EncounterTables overrides region encounter weights by region id.
	EncounterTables map[string]content.EncounterTable
	// Bus is shared with subscribers. A fresh bus is created when nil.
	Bus    *event.Bus
	Logger *zap.Logger
}

// Game owns the state and the systems that mutate it.
//
// Bus handlers run synchronously while the Game is locked; they must not call
// back into the Game. StateUpdated events carry a snapshot for that purpose.
type Game struct {
	mu     sync.Mutex
	st     *state.GameState
	saveID string

	catalog *content.Catalog
	bus     *event.Bus
	res     *resource.Simulation
	ledger  *upgrade.Ledger
	gen     *encounter.Generator
	combat  *combat.Engine
	logger  *zap.Logger
}

// New builds a Game from doc, or from a fresh state when doc is nil.
//
// Precondition: opts.Catalog must be non-nil.
// Postcondition: Derived category stats are recomputed and the current region
// is discovered before the Game is returned.
func New(opts Options, doc *save.Document) (*Game, error) {
	if opts.Catalog == nil {
		return nil, fmt.Errorf("engine: catalog is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	src := opts.Source
	if src == nil {
		src = dice.NewCryptoSource()
	}
	bus := opts.Bus
	if bus == nil {
		bus = event.NewBus(logger.Named("bus"))
	}

	res := resource.NewSimulation(bus, logger.Named("resource"))
	g := &Game{
		catalog: opts.Catalog,
		bus:     bus,
		res:     res,
		ledger:  upgrade.NewLedger(opts.Catalog.Curves(), res, logger.Named("upgrade")),
		gen:     encounter.NewGenerator(opts.Catalog, res, bus, src, opts.EncounterTables, logger.Named("encounter")),
		combat:  combat.NewEngine(opts.Catalog, res, bus, src, opts.Scripts, opts.Combat, logger.Named("combat")),
		logger:  logger,
	}

	if doc != nil {
		g.st = save.Restore(doc, g.ledger)
		g.saveID = doc.ID
	} else {
		g.st = state.New()
		g.ledger.Recompute(g.st)
	}
	if _, ok := opts.Catalog.Region(g.st.Navigation.CurrentRegion); !ok {
		logger.Warn("saved region no longer exists, returning to start",
			zap.String("region", g.st.Navigation.CurrentRegion),
		)
		g.st.Navigation.CurrentRegion = state.StartingRegion
		g.st.Navigation.CurrentSubRegion = ""
	}
	g.gen.Discover(g.st)

	event.Subscribe(bus, g.onCombatTriggered)
	return g, nil
}

// onCombatTriggered starts the battle handed off by a completed encounter. It
// runs inside the CompleteEncounter call that published the event, so the
// lock is already held.
func (g *Game) onCombatTriggered(ev event.CombatEncounterTriggeredEvent) {
	res := g.combat.Start(g.st, ev.EnemyID, ev.RegionID)
	if !res.Success {
		g.logger.Warn("combat hand-off rejected",
			zap.String("enemy", ev.EnemyID),
			zap.String("reason", res.Message),
		)
	}
}

// Bus returns the event bus the Game publishes on.
func (g *Game) Bus() *event.Bus { return g.bus }

// Catalog returns the content the Game was built with.
func (g *Game) Catalog() *content.Catalog { return g.catalog }

// Snapshot returns a deep copy of the current state.
func (g *Game) Snapshot() *state.GameState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.st.Clone()
}

// Document captures the state as a save document stamped with now.
func (g *Game) Document(now time.Time) *save.Document {
	g.mu.Lock()
	defer g.mu.Unlock()
	doc := save.NewDocument(g.saveID, g.st, now)
	g.saveID = doc.ID
	return doc
}

// mutate runs fn under the lock, then publishes a StateUpdated snapshot.
func mutate[R any](g *Game, fn func(st *state.GameState) R) R {
	g.mu.Lock()
	out := fn(g.st)
	snap := g.st.Clone()
	g.mu.Unlock()
	g.bus.Publish(event.StateUpdatedEvent{State: snap})
	return out
}

// Tick advances production by deltaSeconds.
func (g *Game) Tick(deltaSeconds float64) {
	if deltaSeconds <= 0 {
		return
	}
	mutate(g, func(st *state.GameState) struct{} {
		g.res.Update(st, deltaSeconds)
		return struct{}{}
	})
}

// Jump generates a new encounter in the current region.
func (g *Game) Jump() encounter.Result {
	return mutate(g, g.gen.Generate)
}

// CompleteEncounter resolves the active encounter with choiceID. A combat
// hand-off starts the battle before this call returns.
func (g *Game) CompleteEncounter(choiceID string) encounter.Result {
	return mutate(g, func(st *state.GameState) encounter.Result {
		return g.gen.Complete(st, choiceID)
	})
}

// Travel moves to regionID, optionally entering subRegionID.
func (g *Game) Travel(regionID, subRegionID string) encounter.Result {
	return mutate(g, func(st *state.GameState) encounter.Result {
		return g.gen.Travel(st, regionID, subRegionID)
	})
}

// StartCombat engages enemyID directly. An empty regionID means the current region.
func (g *Game) StartCombat(enemyID, regionID string) combat.Result {
	return mutate(g, func(st *state.GameState) combat.Result {
		return g.combat.Start(st, enemyID, regionID)
	})
}

// PerformCombatAction resolves one exchange with the player's actionID.
func (g *Game) PerformCombatAction(actionID string) combat.Result {
	return mutate(g, func(st *state.GameState) combat.Result {
		return g.combat.PerformAction(st, actionID)
	})
}

// Retreat abandons the active battle.
func (g *Game) Retreat() combat.Result {
	return mutate(g, g.combat.Retreat)
}

// PurchaseUpgrade buys the next level of kind for category id.
func (g *Game) PurchaseUpgrade(id state.CategoryID, kind upgrade.Kind) upgrade.Result {
	return mutate(g, func(st *state.GameState) upgrade.Result {
		return g.ledger.Purchase(st, id, kind)
	})
}

// QuoteUpgrade prices the next level of kind without buying it.
func (g *Game) QuoteUpgrade(id state.CategoryID, kind upgrade.Kind) ([]state.ResourceAmount, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ledger.Quote(g.st, id, kind)
}

// SetActiveUnits assigns n units of category id to production.
func (g *Game) SetActiveUnits(id state.CategoryID, n int) upgrade.Result {
	return mutate(g, func(st *state.GameState) upgrade.Result {
		return g.ledger.SetActiveUnits(st, id, n)
	})
}
