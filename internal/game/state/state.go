package state

import (
	"maps"
	"slices"
)

// StartingRegion is the region a fresh game begins in.
const StartingRegion = "void"

// GameState is the root mutable object owned by the engine layer.
// Rendering code only ever sees copies produced by Clone.
type GameState struct {
	Categories map[CategoryID]*Category `json:"categories"`
	Components float64                  `json:"components"`
	Combat     Combat                   `json:"combat"`
	Encounters Encounters               `json:"encounters"`
	Navigation Navigation               `json:"navigation"`
	Logs       []string                 `json:"logs"`
	PlayTime   float64                  `json:"playTime"`
}

// Category returns the category block for id, or nil if it does not exist.
func (s *GameState) Category(id CategoryID) *Category {
	return s.Categories[id]
}

// DefaultPlayer returns the player's starting hull/shield block.
func DefaultPlayer() Combatant {
	return Combatant{Health: 100, MaxHealth: 100, Shield: 50, MaxShield: 50, StatusEffects: []StatusEffectInstance{}}
}

// New returns a fresh game state. Derived category stats other than
// ActiveUnits are zero until the upgrade ledger recomputes them.
func New() *GameState {
	start := map[CategoryID]struct {
		amount float64
		units  int
	}{
		Reactor:       {amount: 10, units: 1},
		Processor:     {amount: 0, units: 0},
		CrewQuarters:  {amount: 0, units: 0},
		Manufacturing: {amount: 0, units: 0},
	}

	cats := make(map[CategoryID]*Category, len(Categories))
	for _, id := range Categories {
		s := start[id]
		cats[id] = &Category{
			Resource:  id.Resource(),
			Resources: Pool{Amount: s.amount},
			Stats:     Stats{ActiveUnits: s.units},
		}
	}

	return &GameState{
		Categories: cats,
		Combat: Combat{
			PlayerStats:      DefaultPlayer(),
			EnemyStats:       Combatant{StatusEffects: []StatusEffectInstance{}},
			AvailableActions: []string{},
			Cooldowns:        map[string]int{},
			EnemyCooldowns:   map[string]int{},
			BattleLog:        []BattleLogEntry{},
			Rewards:          map[ResourceType]float64{},
		},
		Encounters: Encounters{History: []HistoryEntry{}},
		Navigation: Navigation{
			CurrentRegion:    StartingRegion,
			ExploredRegions:  []string{StartingRegion},
			AvailableRegions: []string{StartingRegion},
		},
		Logs: []string{},
	}
}

// Clone returns a deep copy of s sharing no mutable memory with it. Nil
// category entries are dropped; Normalize restores them.
func (s *GameState) Clone() *GameState {
	if s == nil {
		return nil
	}
	cp := *s

	cp.Categories = make(map[CategoryID]*Category, len(s.Categories))
	for id, c := range s.Categories {
		if c == nil {
			continue
		}
		cc := *c
		cp.Categories[id] = &cc
	}

	cp.Combat = s.Combat.clone()
	cp.Encounters = Encounters{
		Active:    s.Encounters.Active,
		Encounter: s.Encounters.Encounter.Clone(),
		History:   slices.Clone(s.Encounters.History),
	}
	cp.Navigation = Navigation{
		CurrentRegion:    s.Navigation.CurrentRegion,
		CurrentSubRegion: s.Navigation.CurrentSubRegion,
		ExploredRegions:  slices.Clone(s.Navigation.ExploredRegions),
		AvailableRegions: slices.Clone(s.Navigation.AvailableRegions),
	}
	cp.Logs = slices.Clone(s.Logs)
	return &cp
}

func (c Combat) clone() Combat {
	cp := c
	cp.PlayerStats = c.PlayerStats.clone()
	cp.EnemyStats = c.EnemyStats.clone()
	cp.AvailableActions = slices.Clone(c.AvailableActions)
	cp.Cooldowns = maps.Clone(c.Cooldowns)
	cp.EnemyCooldowns = maps.Clone(c.EnemyCooldowns)
	cp.BattleLog = slices.Clone(c.BattleLog)
	cp.Rewards = maps.Clone(c.Rewards)
	if c.EnemyIntentions != nil {
		in := *c.EnemyIntentions
		cp.EnemyIntentions = &in
	}
	return cp
}

func (c Combatant) clone() Combatant {
	cp := c
	cp.StatusEffects = slices.Clone(c.StatusEffects)
	return cp
}

// Normalize fills nil maps and slices left by a decoded document so systems
// can write into them without nil checks.
func (s *GameState) Normalize() {
	if s.Categories == nil {
		s.Categories = map[CategoryID]*Category{}
	}
	fresh := New()
	for _, id := range Categories {
		if s.Categories[id] == nil {
			s.Categories[id] = fresh.Categories[id]
		}
		s.Categories[id].Resource = id.Resource()
	}
	if s.Combat.Cooldowns == nil {
		s.Combat.Cooldowns = map[string]int{}
	}
	if s.Combat.EnemyCooldowns == nil {
		s.Combat.EnemyCooldowns = map[string]int{}
	}
	if s.Combat.Rewards == nil {
		s.Combat.Rewards = map[ResourceType]float64{}
	}
	if s.Combat.AvailableActions == nil {
		s.Combat.AvailableActions = []string{}
	}
	if s.Combat.BattleLog == nil {
		s.Combat.BattleLog = []BattleLogEntry{}
	}
	if s.Combat.PlayerStats.MaxHealth == 0 {
		s.Combat.PlayerStats = DefaultPlayer()
	}
	if s.Combat.PlayerStats.StatusEffects == nil {
		s.Combat.PlayerStats.StatusEffects = []StatusEffectInstance{}
	}
	if s.Combat.EnemyStats.StatusEffects == nil {
		s.Combat.EnemyStats.StatusEffects = []StatusEffectInstance{}
	}
	if s.Encounters.History == nil {
		s.Encounters.History = []HistoryEntry{}
	}
	if s.Navigation.CurrentRegion == "" {
		s.Navigation.CurrentRegion = StartingRegion
	}
	if s.Navigation.ExploredRegions == nil {
		s.Navigation.ExploredRegions = []string{s.Navigation.CurrentRegion}
	}
	if s.Navigation.AvailableRegions == nil {
		s.Navigation.AvailableRegions = []string{s.Navigation.CurrentRegion}
	}
	if s.Logs == nil {
		s.Logs = []string{}
	}
}
