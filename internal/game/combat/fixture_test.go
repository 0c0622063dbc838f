package combat_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/derelict-dawn/derelict/internal/game/combat"
	"github.com/derelict-dawn/derelict/internal/game/content"
	"github.com/derelict-dawn/derelict/internal/game/dice"
	"github.com/derelict-dawn/derelict/internal/game/event"
	"github.com/derelict-dawn/derelict/internal/game/resource"
	"github.com/derelict-dawn/derelict/internal/game/state"
	"github.com/derelict-dawn/derelict/internal/game/upgrade"
	"github.com/derelict-dawn/derelict/internal/scripting"
)

type fixture struct {
	eng    *combat.Engine
	cat    *content.Catalog
	res    *resource.Simulation
	bus    *event.Bus
	st     *state.GameState
	logs   *observer.ObservedLogs
	events []event.Event
}

func effect(typ state.StatusEffectType, duration int, mag float64) *content.ActionEffect {
	return &content.ActionEffect{StatusEffect: state.StatusEffect{Type: typ, Duration: duration, Magnitude: mag}, Target: content.TargetOpponent}
}

func testCatalog(t testing.TB) *content.Catalog {
	t.Helper()
	half := 0.5
	energy := func(n float64) []state.ResourceAmount { return []state.ResourceAmount{{Type: state.Energy, Amount: n}} }
	set := content.Set{
		PlayerActions: []*content.Action{
			{ID: "blast", Name: "Blast", Damage: 10, Cooldown: 2, Cost: energy(1)},
			{ID: "free-shot", Name: "Free Shot", Damage: 5},
			{ID: "nuke", Name: "Nuke", Damage: 100},
			{ID: "expensive", Name: "Expensive", Damage: 50, Cost: energy(1000)},
			{ID: "stun-ray", Name: "Stun Ray", StatusEffect: effect(state.Stun, 1, 0)},
			{ID: "weaken-ray", Name: "Weaken Ray", StatusEffect: effect(state.Weaken, 3, 0.5)},
			{ID: "expose-ray", Name: "Expose Ray", StatusEffect: effect(state.Expose, 3, 1)},
			{ID: "disable-ray", Name: "Disable Ray", StatusEffect: effect(state.Disable, 3, 0.5)},
			{ID: "repair", Name: "Repair", ShieldRepair: 30, HullRepair: 30},
		},
		EnemyActions: []*content.EnemyAction{
			{Action: content.Action{ID: "bite", Name: "Bite", Damage: 3}, UseCondition: content.UseCondition{Type: content.Always}},
			{Action: content.Action{ID: "desperate", Name: "Desperate", Damage: 20}, UseCondition: content.UseCondition{Type: content.HealthThreshold, Threshold: 0.3}},
			{Action: content.Action{ID: "cocky", Name: "Cocky", Damage: 7}, UseCondition: content.UseCondition{Type: content.ShieldThreshold, Threshold: 0.8, Comparison: content.AtOrAbove}},
			{Action: content.Action{ID: "maybe", Name: "Maybe", Damage: 4}, UseCondition: content.UseCondition{Type: content.Random, Probability: 0.5}},
			{Action: content.Action{ID: "scripted", Name: "Scripted", Damage: 9}, UseCondition: content.UseCondition{Type: content.Script, Script: "go"}},
			{Action: content.Action{ID: "mend", Name: "Mend", HullRepair: 5, Cooldown: 3}, UseCondition: content.UseCondition{Type: content.HealthThreshold, Threshold: 0.5}},
		},
		Enemies: []*content.Enemy{
			{ID: "dummy", Name: "Dummy", MaxHealth: 50, Shield: 4, MaxShield: 10, Actions: []string{"bite"}, Region: "yard",
				Loot: []content.LootEntry{{Type: state.Scrap, Amount: 10}, {Type: state.Components, Amount: 1, Probability: &half}}},
			{ID: "husk", Name: "Husk", MaxHealth: 40, Actions: []string{"bite"}, Region: "yard"},
			{ID: "wall", Name: "Wall", MaxHealth: 10000, Actions: []string{"bite"}, Region: "yard"},
			{ID: "sentinel", Name: "Sentinel", MaxHealth: 100, Shield: 10, MaxShield: 10, Actions: []string{"desperate", "cocky"}, Region: "yard"},
			{ID: "medic", Name: "Medic", MaxHealth: 100, Actions: []string{"bite", "mend"}, Region: "yard"},
			{ID: "gambler", Name: "Gambler", MaxHealth: 100, Actions: []string{"maybe", "bite"}, Region: "yard"},
			{ID: "scripter", Name: "Scripter", MaxHealth: 100, Actions: []string{"cocky", "scripted"}, Region: "yard"},
		},
		Regions: []*content.Region{{ID: "yard", Name: "Yard", EncounterTable: content.EncounterTable{Combat: 1}}},
	}
	cat, err := content.New(set)
	require.NoError(t, err)
	return cat
}

func newFixture(t testing.TB, cat *content.Catalog, src dice.Source, scripts combat.ScriptEvaluator) *fixture {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	bus := event.NewBus(nil)
	res := resource.NewSimulation(bus, logger)
	st := state.New()
	upgrade.NewLedger(nil, res, nil).Recompute(st)
	st.Category(state.Reactor).Resources.Amount = 50
	st.Navigation.CurrentRegion = "yard"
	f := &fixture{
		eng:  combat.NewEngine(cat, res, bus, src, scripts, combat.DefaultConfig(), logger),
		cat:  cat,
		res:  res,
		bus:  bus,
		st:   st,
		logs: logs,
	}
	bus.SubscribeAll(func(e event.Event) {
		if e.EventName() != event.ResourceChanged {
			f.events = append(f.events, e)
		}
	})
	return f
}

func (f *fixture) start(t testing.TB, enemyID string) {
	t.Helper()
	res := f.eng.Start(f.st, enemyID, "")
	require.True(t, res.Success, res.Message)
}

func (f *fixture) eventsNamed(name event.Name) []event.Event {
	var out []event.Event
	for _, e := range f.events {
		if e.EventName() == name {
			out = append(out, e)
		}
	}
	return out
}

func logsFrom(c *state.Combat, src state.LogSource) []state.BattleLogEntry {
	var out []state.BattleLogEntry
	for _, l := range c.BattleLog {
		if l.Source == src {
			out = append(out, l)
		}
	}
	return out
}

type fakeScripts struct {
	result bool
	err    error
	calls  []scripting.ConditionContext
}

func (f *fakeScripts) EvalCondition(fn string, ctx scripting.ConditionContext) (bool, error) {
	f.calls = append(f.calls, ctx)
	return f.result, f.err
}
