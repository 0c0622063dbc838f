// Package encounter implements the jump-driven encounter generator, encounter
// completion with its combat hand-off, and region navigation.
package encounter

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/derelict-dawn/derelict/internal/game/content"
	"github.com/derelict-dawn/derelict/internal/game/dice"
	"github.com/derelict-dawn/derelict/internal/game/event"
	"github.com/derelict-dawn/derelict/internal/game/resource"
	"github.com/derelict-dawn/derelict/internal/game/state"
)

// Result is the structured outcome of a generator operation.
// Message is always populated.
type Result struct {
	Success   bool                                 `json:"success"`
	Message   string                               `json:"message"`
	Encounter *state.Encounter                     `json:"encounter,omitempty"`
	Applied   []state.ResourceAmount               `json:"applied,omitempty"`
	Combat    *event.CombatEncounterTriggeredEvent `json:"combat,omitempty"`
}

func reject(format string, args ...any) Result {
	return Result{Message: fmt.Sprintf(format, args...)}
}

// Generator produces one encounter per jump and resolves its completion.
// It is not safe for concurrent use; callers serialise access to the state.
type Generator struct {
	catalog *content.Catalog
	res     *resource.Simulation
	bus     *event.Bus
	src     dice.Source
	tables  map[string]content.EncounterTable
	logger  *zap.Logger
}

// NewGenerator creates a Generator. tables overrides the encounter table of
// the named regions; nil keeps every region's own table.
//
// Precondition: catalog, res and src must be non-nil.
func NewGenerator(catalog *content.Catalog, res *resource.Simulation, bus *event.Bus, src dice.Source, tables map[string]content.EncounterTable, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{catalog: catalog, res: res, bus: bus, src: src, tables: tables, logger: logger}
}

// Table returns the effective encounter table of region def.
func (g *Generator) Table(def *content.Region) content.EncounterTable {
	if t, ok := g.tables[def.ID]; ok {
		return t
	}
	return def.EncounterTable
}

// Generate performs a jump: it rolls the encounter band of the current region,
// builds the encounter and makes it active.
//
// Precondition: no encounter and no combat may be active.
// Postcondition: On success Encounters.Active is true and Encounters.Encounter
// is set; on rejection the state is untouched.
func (g *Generator) Generate(st *state.GameState) Result {
	if st.Encounters.Active {
		return reject("An encounter is already in progress")
	}
	if st.Combat.Active {
		return reject("Cannot jump during combat")
	}

	regionID := st.Navigation.CurrentRegion
	subRegionID := st.Navigation.CurrentSubRegion
	var enc *state.Encounter
	def, ok := g.catalog.Region(regionID)
	if !ok {
		g.logger.Error("missing region definition", zap.String("region", regionID))
		enc = g.fallbackEmpty(regionID)
	} else {
		enc = g.roll(def, subRegionID)
	}
	enc.ID = uuid.NewString()
	enc.Region = regionID
	if enc.Type == state.EncounterCombat {
		enc.SubRegion = subRegionID
	}

	st.Encounters.Active = true
	st.Encounters.Encounter = enc
	g.logger.Info("encounter generated",
		zap.String("id", enc.ID),
		zap.String("type", string(enc.Type)),
		zap.String("region", regionID),
	)
	g.bus.Publish(event.EncounterGeneratedEvent{EncounterID: enc.ID, Type: enc.Type, Region: regionID})
	return Result{Success: true, Message: enc.Title, Encounter: enc.Clone()}
}

// roll partitions a uniform draw into the combat, empty and story bands, in
// that order.
func (g *Generator) roll(def *content.Region, subRegionID string) *state.Encounter {
	table := g.Table(def)
	total := table.Total()
	if total <= 0 {
		return g.empty(def)
	}
	x := g.src.Float64() * total
	switch {
	case x < table.Combat:
		if enc := g.combat(def, subRegionID); enc != nil {
			return enc
		}
		g.logger.Warn("region has no combat roster, degrading to empty encounter", zap.String("region", def.ID))
		return g.empty(def)
	case x < table.Combat+table.Empty:
		return g.empty(def)
	default:
		if enc := g.story(def); enc != nil {
			return enc
		}
		g.logger.Warn("no story encounters available, degrading to empty encounter", zap.String("region", def.ID))
		return g.empty(def)
	}
}

func (g *Generator) empty(def *content.Region) *state.Encounter {
	enc := &state.Encounter{
		Type:        state.EncounterEmpty,
		Title:       pickOr(g.src, def.Flavor.Titles, "Empty Space"),
		Description: pickOr(g.src, def.Flavor.Descriptions, "Nothing of interest drifts nearby."),
		Message:     pickOr(g.src, def.Flavor.Messages, ""),
	}
	for _, rw := range def.Rewards {
		if !dice.Chance(g.src, rw.Chance) {
			continue
		}
		if amt := dice.Range(g.src, rw.Min, rw.Max); amt > 0 {
			enc.Rewards = append(enc.Rewards, state.ResourceAmount{Type: rw.Type, Amount: float64(amt)})
		}
	}
	return enc
}

func (g *Generator) fallbackEmpty(regionID string) *state.Encounter {
	return &state.Encounter{
		Type:        state.EncounterEmpty,
		Title:       "Uncharted Space",
		Description: fmt.Sprintf("Your charts have no record of %q.", regionID),
	}
}

func (g *Generator) story(def *content.Region) *state.Encounter {
	pool := def.Stories
	if len(pool) == 0 {
		if generic, ok := g.catalog.Region(content.GenericRegion); ok {
			pool = generic.Stories
		}
	}
	if len(pool) == 0 {
		return nil
	}
	picked := dice.Pick(g.src, pool)
	enc := picked.Clone()
	enc.Type = state.EncounterStory
	return enc
}

func (g *Generator) combat(def *content.Region, subRegionID string) *state.Encounter {
	enemy, ok := g.PickEnemy(def.ID, subRegionID, false)
	if !ok {
		return nil
	}
	return &state.Encounter{
		Type:        state.EncounterCombat,
		Title:       enemy.Name,
		Description: enemy.Description,
		EnemyID:     enemy.ID,
	}
}

// PickEnemy selects a weighted-random enemy from the region's roster. A
// subregion with no roster of its own falls back to the whole region.
//
// Postcondition: Returns (enemy, true), or (nil, false) when the roster is empty.
func (g *Generator) PickEnemy(regionID, subRegionID string, boss bool) (*content.Enemy, bool) {
	roster := g.catalog.Enemies(regionID, subRegionID, boss)
	if len(roster) == 0 && subRegionID != "" {
		roster = g.catalog.Enemies(regionID, "", boss)
	}
	entries := make([]dice.Weighted[*content.Enemy], len(roster))
	for i, e := range roster {
		entries[i] = dice.Weighted[*content.Enemy]{Value: e, Weight: e.SelectionWeight()}
	}
	return dice.PickWeighted(g.src, entries)
}

// Complete resolves the active encounter. Empty encounters pay their rewards,
// story encounters apply the chosen outcome, and combat encounters always hand
// off to combat. The hand-off event is published after the encounter has been
// cleared.
//
// Postcondition: On success exactly one history entry is appended and
// Encounters.Active is false. With no active encounter, or an invalid or
// unaffordable choice, the state is untouched.
func (g *Generator) Complete(st *state.GameState, choiceID string) Result {
	enc := st.Encounters.Encounter
	if !st.Encounters.Active || enc == nil {
		g.logger.Warn("complete called with no active encounter")
		return reject("No active encounter")
	}

	var (
		applied []state.ResourceAmount
		trigger *state.CombatTrigger
		result  string
		message string
	)
	switch enc.Type {
	case state.EncounterEmpty:
		applied = g.res.Apply(st, enc.Rewards)
		result = "completed"
		message = enc.Message
	case state.EncounterStory:
		choice, ok := enc.Choice(choiceID)
		if !ok {
			return reject("Unknown choice %q", choiceID)
		}
		if len(choice.Cost) > 0 {
			if err := g.res.Consume(st, choice.Cost); err != nil {
				return reject("Cannot take %q: %v", choice.Text, err)
			}
		}
		applied = g.res.Apply(st, choice.Outcome.Resources)
		trigger = choice.Outcome.Combat
		result = choice.ID
		message = choice.Outcome.Text
	case state.EncounterCombat:
		trigger = &state.CombatTrigger{EnemyID: enc.EnemyID, RegionID: enc.Region, SubRegionID: enc.SubRegion}
		result = "combat"
		message = fmt.Sprintf("Engaging %s", enc.Title)
	default:
		g.logger.Error("active encounter has unknown type", zap.String("type", string(enc.Type)))
		result = "discarded"
		message = "Encounter discarded"
	}

	st.Encounters.History = append(st.Encounters.History, state.HistoryEntry{
		ID:     enc.ID,
		Type:   enc.Type,
		Result: result,
		Date:   time.Now().UTC(),
		Region: enc.Region,
	})
	st.Encounters.Active = false
	st.Encounters.Encounter = nil
	g.bus.Publish(event.EncounterCompletedEvent{EncounterID: enc.ID, Type: enc.Type, Result: result})

	out := Result{Success: true, Message: message, Encounter: enc, Applied: applied}
	if trigger != nil {
		if ev, ok := g.handOff(st, trigger); ok {
			out.Combat = &ev
			g.bus.Publish(ev)
		}
	}
	return out
}

// handOff resolves the trigger's enemy when it is not explicit.
func (g *Generator) handOff(st *state.GameState, trig *state.CombatTrigger) (event.CombatEncounterTriggeredEvent, bool) {
	regionID := trig.RegionID
	if regionID == "" {
		regionID = st.Navigation.CurrentRegion
	}
	ev := event.CombatEncounterTriggeredEvent{EnemyID: trig.EnemyID, RegionID: regionID, SubRegionID: trig.SubRegionID}
	if ev.EnemyID == "" {
		enemy, ok := g.PickEnemy(regionID, trig.SubRegionID, trig.IsBoss)
		if !ok {
			g.logger.Warn("combat hand-off found no enemy",
				zap.String("region", regionID),
				zap.String("sub_region", trig.SubRegionID),
				zap.Bool("boss", trig.IsBoss),
			)
			return ev, false
		}
		ev.EnemyID = enemy.ID
	}
	return ev, true
}

func pickOr(src dice.Source, pool []string, fallback string) string {
	if len(pool) == 0 {
		return fallback
	}
	return dice.Pick(src, pool)
}
