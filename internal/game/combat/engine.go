// Package combat implements the turn-based battle state machine: starting a
// fight, resolving one player-then-enemy exchange per action, status upkeep,
// victory/defeat resolution with loot, and retreat.
package combat

import (
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/derelict-dawn/derelict/internal/game/condition"
	"github.com/derelict-dawn/derelict/internal/game/content"
	"github.com/derelict-dawn/derelict/internal/game/dice"
	"github.com/derelict-dawn/derelict/internal/game/event"
	"github.com/derelict-dawn/derelict/internal/game/resource"
	"github.com/derelict-dawn/derelict/internal/game/state"
	"github.com/derelict-dawn/derelict/internal/scripting"
)

// ScriptEvaluator evaluates SCRIPT use-conditions.
type ScriptEvaluator interface {
	EvalCondition(fn string, ctx scripting.ConditionContext) (bool, error)
}

// Config holds the outcome penalties of a battle.
type Config struct {
	// DefeatPenalty is the fraction of every resource lost on defeat.
	DefeatPenalty float64
	// RetreatPenalty is the fraction of every resource lost on retreat.
	RetreatPenalty float64
	// DefeatRecovery is the fraction of max hull restored after a defeat.
	DefeatRecovery float64
}

// DefaultConfig returns the built-in penalties.
func DefaultConfig() Config {
	return Config{DefeatPenalty: 0.25, RetreatPenalty: 0.1, DefeatRecovery: 0.5}
}

// Result is the structured outcome of a combat operation.
// Message is always populated.
type Result struct {
	Success       bool                           `json:"success"`
	Message       string                         `json:"message"`
	EnemyActionID string                         `json:"enemyActionId,omitempty"`
	Outcome       state.CombatOutcome            `json:"outcome,omitempty"`
	Rewards       map[state.ResourceType]float64 `json:"rewards,omitempty"`
	Lost          []state.ResourceAmount         `json:"lost,omitempty"`
}

// Engine resolves battles against the shared GameState.
// It is not safe for concurrent use; callers serialise access to the state.
type Engine struct {
	catalog *content.Catalog
	res     *resource.Simulation
	bus     *event.Bus
	src     dice.Source
	scripts ScriptEvaluator
	cfg     Config
	logger  *zap.Logger
}

// NewEngine creates an Engine. scripts may be nil, in which case SCRIPT
// conditions never hold.
//
// Precondition: catalog, res and src must be non-nil.
func NewEngine(catalog *content.Catalog, res *resource.Simulation, bus *event.Bus, src dice.Source, scripts ScriptEvaluator, cfg Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		catalog: catalog,
		res:     res,
		bus:     bus,
		src:     src,
		scripts: scripts,
		cfg:     cfg,
		logger:  logger,
	}
}

// Start begins a battle against enemyID. An empty regionID means the current
// region. A missing enemy definition degrades to an empty encounter.
//
// Precondition: neither combat nor an encounter may be active.
// Postcondition: On success Combat.Active is true, Turn is 1, the enemy is
// seeded from its definition, player health and shield persist while player
// status effects and all cooldowns are reset, and the first enemy intention
// is chosen.
func (e *Engine) Start(st *state.GameState, enemyID, regionID string) Result {
	c := &st.Combat
	if c.Active {
		return Result{Message: "Combat is already in progress"}
	}
	if st.Encounters.Active {
		return Result{Message: "Resolve the current encounter first"}
	}
	if regionID == "" {
		regionID = st.Navigation.CurrentRegion
	}

	def, ok := e.catalog.Enemy(enemyID)
	if !ok {
		e.logger.Error("missing enemy definition, degrading to empty encounter",
			zap.String("enemy", enemyID),
			zap.String("region", regionID),
		)
		enc := &state.Encounter{
			ID:          uuid.NewString(),
			Type:        state.EncounterEmpty,
			Title:       "Lost Contact",
			Description: "The contact vanishes from your sensors before you can engage.",
			Region:      regionID,
		}
		st.Encounters.Active = true
		st.Encounters.Encounter = enc
		e.bus.Publish(event.EncounterGeneratedEvent{EncounterID: enc.ID, Type: enc.Type, Region: regionID})
		return Result{Message: enc.Description}
	}

	if c.PlayerStats.MaxHealth <= 0 {
		c.PlayerStats = state.DefaultPlayer()
	}
	condition.Clear(&c.PlayerStats)
	c.EnemyStats = state.Combatant{
		Health:        def.Health,
		MaxHealth:     def.MaxHealth,
		Shield:        def.Shield,
		MaxShield:     def.MaxShield,
		StatusEffects: []state.StatusEffectInstance{},
	}
	c.Active = true
	c.CurrentEnemy = def.ID
	c.CurrentRegion = regionID
	c.Turn = 1
	c.AvailableActions = e.catalog.PlayerActionIDs()
	c.Cooldowns = map[string]int{}
	c.EnemyCooldowns = map[string]int{}
	c.BattleLog = []state.BattleLogEntry{}
	c.EncounterCompleted = false
	c.Rewards = map[state.ResourceType]float64{}
	c.Outcome = state.OutcomeNone
	c.Log(state.LogSystem, fmt.Sprintf("A hostile %s closes to engage!", def.Name))
	e.chooseIntention(st, def)

	e.logger.Info("combat started",
		zap.String("enemy", def.ID),
		zap.String("region", regionID),
	)
	e.bus.Publish(event.StartCombatEvent{EnemyID: def.ID, RegionID: regionID})
	return Result{Success: true, Message: fmt.Sprintf("Engaging %s", def.Name)}
}

// Retreat ends the active battle without loot, applying the retreat penalty.
// It ignores cooldowns, status effects and pending intentions.
//
// Postcondition: Combat.Active is false and one history entry with result
// "retreat" is appended. With no active combat it is a logged no-op.
func (e *Engine) Retreat(st *state.GameState) Result {
	c := &st.Combat
	if !c.Active {
		e.logger.Warn("retreat called with no active combat")
		return Result{Message: "No active combat"}
	}
	enemyID, regionID, turn := c.CurrentEnemy, c.CurrentRegion, c.Turn
	lost := e.res.Drain(st, e.cfg.RetreatPenalty)
	c.Log(state.LogSystem, "You break off and retreat.")
	e.finish(st, state.OutcomeRetreat)
	e.bus.Publish(event.RetreatFromBattleEvent{EnemyID: enemyID, RegionID: regionID, Turn: turn})
	return Result{Success: true, Message: "Retreated from battle", Outcome: state.OutcomeRetreat, Lost: lost}
}

// finish clears the battle and records it in the encounter history.
func (e *Engine) finish(st *state.GameState, outcome state.CombatOutcome) {
	c := &st.Combat
	c.Active = false
	c.Outcome = outcome
	c.EncounterCompleted = true
	c.EnemyIntentions = nil
	condition.Clear(&c.PlayerStats)
	st.Encounters.History = append(st.Encounters.History, state.HistoryEntry{
		ID:     uuid.NewString(),
		Type:   state.EncounterCombat,
		Result: string(outcome),
		Date:   time.Now().UTC(),
		Region: c.CurrentRegion,
	})
	e.logger.Info("combat ended",
		zap.String("enemy", c.CurrentEnemy),
		zap.String("outcome", string(outcome)),
		zap.Int("turn", c.Turn),
	)
	e.bus.Publish(event.CombatEndedEvent{EnemyID: c.CurrentEnemy, Outcome: outcome, Rewards: maps.Clone(c.Rewards)})
}
