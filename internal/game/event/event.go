// Package event implements the typed event bus through which engine systems
// announce state changes to each other and to the presentation layer.
//
// Events form a closed set: every payload type in this file implements Event
// and no other package can add one, so a payload-shape change breaks the build
// rather than a subscriber at runtime.
package event

import "github.com/derelict-dawn/derelict/internal/game/state"

// Name is the wire name of an event.
type Name string

const (
	StateUpdated             Name = "stateUpdated"
	ResourceChanged          Name = "resource:changed"
	CombatEncounterTriggered Name = "combatEncounterTriggered"
	StartCombat              Name = "START_COMBAT"
	CombatAction             Name = "COMBAT_ACTION"
	RetreatFromBattle        Name = "RETREAT_FROM_BATTLE"
	CombatEnded              Name = "combatEnded"
	EncounterGenerated       Name = "encounterGenerated"
	EncounterCompleted       Name = "encounterCompleted"
)

// Event is implemented by every payload type in this package.
type Event interface {
	EventName() Name
	sealed()
}

// StateUpdatedEvent carries a read-only snapshot of the state after a mutation.
type StateUpdatedEvent struct {
	State *state.GameState `json:"state"`
}

// ResourceChangedEvent reports production applied to a category during a tick.
type ResourceChangedEvent struct {
	Category state.CategoryID `json:"category"`
	Delta    float64          `json:"delta"`
}

// CombatEncounterTriggeredEvent hands a completed encounter off to combat.
type CombatEncounterTriggeredEvent struct {
	EnemyID     string `json:"enemyId"`
	RegionID    string `json:"regionId"`
	SubRegionID string `json:"subRegionId,omitempty"`
}

// StartCombatEvent announces that a battle has begun.
type StartCombatEvent struct {
	EnemyID  string `json:"enemyId"`
	RegionID string `json:"regionId"`
}

// CombatActionEvent reports one player action attempt and its outcome.
type CombatActionEvent struct {
	ActionID      string `json:"actionId"`
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	Turn          int    `json:"turn"`
	EnemyActionID string `json:"enemyActionId,omitempty"`
}

// RetreatFromBattleEvent announces a player-initiated escape.
type RetreatFromBattleEvent struct {
	EnemyID  string `json:"enemyId"`
	RegionID string `json:"regionId"`
	Turn     int    `json:"turn"`
}

// CombatEndedEvent announces the terminal outcome of a battle.
type CombatEndedEvent struct {
	EnemyID string                         `json:"enemyId"`
	Outcome state.CombatOutcome            `json:"outcome"`
	Rewards map[state.ResourceType]float64 `json:"rewards,omitempty"`
}

// EncounterGeneratedEvent announces a new encounter produced by a jump.
type EncounterGeneratedEvent struct {
	EncounterID string              `json:"encounterId"`
	Type        state.EncounterType `json:"type"`
	Region      string              `json:"region"`
}

// EncounterCompletedEvent announces that the active encounter was resolved.
type EncounterCompletedEvent struct {
	EncounterID string              `json:"encounterId"`
	Type        state.EncounterType `json:"type"`
	Result      string              `json:"result"`
}

func (StateUpdatedEvent) EventName() Name             { return StateUpdated }
func (ResourceChangedEvent) EventName() Name          { return ResourceChanged }
func (CombatEncounterTriggeredEvent) EventName() Name { return CombatEncounterTriggered }
func (StartCombatEvent) EventName() Name              { return StartCombat }
func (CombatActionEvent) EventName() Name             { return CombatAction }
func (RetreatFromBattleEvent) EventName() Name        { return RetreatFromBattle }
func (CombatEndedEvent) EventName() Name              { return CombatEnded }
func (EncounterGeneratedEvent) EventName() Name       { return EncounterGenerated }
func (EncounterCompletedEvent) EventName() Name       { return EncounterCompleted }

func (StateUpdatedEvent) sealed()             {}
func (ResourceChangedEvent) sealed()          {}
func (CombatEncounterTriggeredEvent) sealed() {}
func (StartCombatEvent) sealed()              {}
func (CombatActionEvent) sealed()             {}
func (RetreatFromBattleEvent) sealed()        {}
func (CombatEndedEvent) sealed()              {}
func (EncounterGeneratedEvent) sealed()       {}
func (EncounterCompletedEvent) sealed()       {}
