package encounter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/derelict-dawn/derelict/internal/game/content"
	"github.com/derelict-dawn/derelict/internal/game/dice"
	"github.com/derelict-dawn/derelict/internal/game/encounter"
	"github.com/derelict-dawn/derelict/internal/game/event"
	"github.com/derelict-dawn/derelict/internal/game/resource"
	"github.com/derelict-dawn/derelict/internal/game/state"
	"github.com/derelict-dawn/derelict/internal/game/upgrade"
)

type fixture struct {
	gen      *encounter.Generator
	bus      *event.Bus
	st       *state.GameState
	logs     *observer.ObservedLogs
	triggers []event.CombatEncounterTriggeredEvent
}

func newFixture(t *testing.T, cat *content.Catalog, src dice.Source, tables map[string]content.EncounterTable) *fixture {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	bus := event.NewBus(nil)
	res := resource.NewSimulation(bus, logger)
	st := state.New()
	upgrade.NewLedger(nil, res, nil).Recompute(st)
	f := &fixture{
		gen:  encounter.NewGenerator(cat, res, bus, src, tables, logger),
		bus:  bus,
		st:   st,
		logs: logs,
	}
	event.Subscribe(bus, func(e event.CombatEncounterTriggeredEvent) { f.triggers = append(f.triggers, e) })
	return f
}

func shipped(t *testing.T) *content.Catalog {
	t.Helper()
	cat, err := content.Load("../../../content")
	require.NoError(t, err)
	return cat
}

// testCatalog has single-entry flavor pools and certain rewards so that only
// the band roll and weighted picks consume randomness.
func testCatalog(t *testing.T, withGeneric bool) *content.Catalog {
	t.Helper()
	set := content.Set{
		PlayerActions: []*content.Action{{ID: "zap", Name: "Zap", Damage: 1}},
		EnemyActions:  []*content.EnemyAction{{Action: content.Action{ID: "bite", Name: "Bite", Damage: 1}}},
		Enemies: []*content.Enemy{
			{ID: "a-rat", Name: "Rat", MaxHealth: 5, Actions: []string{"bite"}, Region: "dock", Weight: 1},
			{ID: "b-cat", Name: "Cat", MaxHealth: 9, Actions: []string{"bite"}, Region: "dock", Weight: 3},
			{ID: "z-king", Name: "Rat King", MaxHealth: 50, Actions: []string{"bite"}, Region: "dock", IsBoss: true},
		},
		Regions: []*content.Region{
			{
				ID: "dock", Name: "Dock",
				EncounterTable: content.EncounterTable{Combat: 1, Empty: 1, Story: 1},
				Flavor:         content.Flavor{Titles: []string{"Quiet Dock"}, Descriptions: []string{"Still."}, Messages: []string{"Done."}},
				Rewards:        []content.RewardRoll{{Type: state.Energy, Chance: 1, Min: 4, Max: 4}, {Type: state.Scrap, Chance: 0, Min: 1, Max: 9}},
				Connections:    []string{"yard"},
				SubRegions:     []string{"bay"},
			},
			{ID: "yard", Name: "Yard", EncounterTable: content.EncounterTable{Story: 1}, Connections: []string{"dock"}},
		},
	}
	if withGeneric {
		set.Regions = append(set.Regions, &content.Region{
			ID: content.GenericRegion, Name: "Anywhere",
			Stories: []state.Encounter{{
				ID: "crate", Title: "Crate",
				Choices: []state.Choice{
					{ID: "open", Text: "Open", Outcome: state.ChoiceOutcome{Text: "Fuel!", Resources: []state.ResourceAmount{{Type: state.Energy, Amount: 3}}}},
					{ID: "pay", Text: "Pay", Cost: []state.ResourceAmount{{Type: state.Energy, Amount: 500}}},
					{ID: "fight", Text: "Fight", Outcome: state.ChoiceOutcome{Combat: &state.CombatTrigger{RegionID: "dock", IsBoss: true}}},
				},
			}},
		})
	}
	cat, err := content.New(set)
	require.NoError(t, err)
	return cat
}

func TestGenerate_AsteroidCombatBand(t *testing.T) {
	cat := shipped(t)
	f := newFixture(t, cat, dice.NewSequenceSource(0.1), nil)
	f.st.Navigation.CurrentRegion = "asteroid"

	res := f.gen.Generate(f.st)
	require.True(t, res.Success, res.Message)
	require.Equal(t, state.EncounterCombat, res.Encounter.Type)

	var roster []string
	for _, e := range cat.Enemies("asteroid", "", false) {
		roster = append(roster, e.ID)
	}
	assert.Contains(t, roster, res.Encounter.EnemyID)
	assert.True(t, f.st.Encounters.Active)
	assert.Equal(t, "asteroid", f.st.Encounters.Encounter.Region)
	assert.NotEmpty(t, f.st.Encounters.Encounter.ID)
}

func TestGenerate_BandsInOrder(t *testing.T) {
	tests := []struct {
		roll float64
		want state.EncounterType
	}{
		{0.0, state.EncounterCombat},
		{0.32, state.EncounterCombat},
		{0.34, state.EncounterEmpty},
		{0.66, state.EncounterEmpty},
		{0.67, state.EncounterStory},
		{0.99, state.EncounterStory},
	}
	for _, tc := range tests {
		f := newFixture(t, testCatalog(t, true), dice.NewSequenceSource(tc.roll), nil)
		f.st.Navigation.CurrentRegion = "dock"
		res := f.gen.Generate(f.st)
		require.True(t, res.Success)
		assert.Equal(t, tc.want, res.Encounter.Type, "roll %v", tc.roll)
	}
}

func TestGenerate_TableOverride(t *testing.T) {
	tables := map[string]content.EncounterTable{"dock": {Empty: 1}}
	f := newFixture(t, testCatalog(t, true), dice.NewSequenceSource(0.0), tables)
	f.st.Navigation.CurrentRegion = "dock"
	res := f.gen.Generate(f.st)
	require.True(t, res.Success)
	assert.Equal(t, state.EncounterEmpty, res.Encounter.Type)
}

func TestGenerate_EmptyRewardsRolledIndependently(t *testing.T) {
	f := newFixture(t, testCatalog(t, true), dice.NewSequenceSource(0.5), nil)
	f.st.Navigation.CurrentRegion = "dock"
	res := f.gen.Generate(f.st)
	require.True(t, res.Success)
	enc := res.Encounter
	assert.Equal(t, "Quiet Dock", enc.Title)
	assert.Equal(t, "Still.", enc.Description)
	assert.Equal(t, []state.ResourceAmount{{Type: state.Energy, Amount: 4}}, enc.Rewards)
}

func TestGenerate_StoryFallsBackToGeneric(t *testing.T) {
	f := newFixture(t, testCatalog(t, true), dice.NewSequenceSource(0.9), nil)
	f.st.Navigation.CurrentRegion = "dock"
	res := f.gen.Generate(f.st)
	require.True(t, res.Success)
	assert.Equal(t, state.EncounterStory, res.Encounter.Type)
	assert.Equal(t, "Crate", res.Encounter.Title)
	assert.Equal(t, "dock", res.Encounter.Region)
}

func TestGenerate_StoryDegradesToEmptyWithoutGeneric(t *testing.T) {
	f := newFixture(t, testCatalog(t, false), dice.NewSequenceSource(0.9), nil)
	f.st.Navigation.CurrentRegion = "dock"
	res := f.gen.Generate(f.st)
	require.True(t, res.Success)
	assert.Equal(t, state.EncounterEmpty, res.Encounter.Type)
	assert.Equal(t, 1, f.logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestGenerate_StoryIsDeepCopied(t *testing.T) {
	cat := testCatalog(t, true)
	f := newFixture(t, cat, dice.NewSequenceSource(0.9), nil)
	f.st.Navigation.CurrentRegion = "dock"
	require.True(t, f.gen.Generate(f.st).Success)
	f.st.Encounters.Encounter.Choices[0].Outcome.Resources[0].Amount = 999

	generic, _ := cat.Region(content.GenericRegion)
	assert.Equal(t, 3.0, generic.Stories[0].Choices[0].Outcome.Resources[0].Amount)
}

func TestGenerate_MissingRegionDegradesToEmpty(t *testing.T) {
	f := newFixture(t, testCatalog(t, true), dice.NewSequenceSource(0.1), nil)
	f.st.Navigation.CurrentRegion = "nowhere"
	res := f.gen.Generate(f.st)
	require.True(t, res.Success)
	assert.Equal(t, state.EncounterEmpty, res.Encounter.Type)
	assert.Equal(t, 1, f.logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestGenerate_RejectedWhileBusy(t *testing.T) {
	f := newFixture(t, testCatalog(t, true), dice.NewSequenceSource(0.5), nil)
	f.st.Navigation.CurrentRegion = "dock"
	require.True(t, f.gen.Generate(f.st).Success)
	first := f.st.Encounters.Encounter

	res := f.gen.Generate(f.st)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Message)
	assert.Same(t, first, f.st.Encounters.Encounter)

	f2 := newFixture(t, testCatalog(t, true), dice.NewSequenceSource(0.5), nil)
	f2.st.Combat.Active = true
	assert.False(t, f2.gen.Generate(f2.st).Success)
	assert.False(t, f2.st.Encounters.Active)
}

func TestPickEnemy_WeightedFidelity(t *testing.T) {
	f := newFixture(t, testCatalog(t, true), dice.NewSequenceSource(0.9), nil)
	e, ok := f.gen.PickEnemy("dock", "", false)
	require.True(t, ok)
	assert.Equal(t, "b-cat", e.ID)

	f = newFixture(t, testCatalog(t, true), dice.NewSequenceSource(0.2), nil)
	e, ok = f.gen.PickEnemy("dock", "", false)
	require.True(t, ok)
	assert.Equal(t, "a-rat", e.ID)
}

func TestPickEnemy_SubRegionFallsBackAndBossesAreSeparate(t *testing.T) {
	f := newFixture(t, testCatalog(t, true), dice.NewSequenceSource(0.5), nil)
	e, ok := f.gen.PickEnemy("dock", "bay", false)
	require.True(t, ok)
	assert.False(t, e.IsBoss)

	boss, ok := f.gen.PickEnemy("dock", "", true)
	require.True(t, ok)
	assert.Equal(t, "z-king", boss.ID)

	_, ok = f.gen.PickEnemy("yard", "", false)
	assert.False(t, ok)
}

func TestPropertyGenerate_NeverBossAndAlwaysActive(t *testing.T) {
	cat := shipped(t)
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Uint64().Draw(rt, "seed")
		region := rapid.SampledFrom([]string{"void", "asteroid", "nebula", "deepspace"}).Draw(rt, "region")
		bus := event.NewBus(nil)
		res := resource.NewSimulation(bus, nil)
		gen := encounter.NewGenerator(cat, res, bus, dice.NewSeededSource(seed), nil, nil)
		st := state.New()
		st.Navigation.CurrentRegion = region

		out := gen.Generate(st)
		require.True(rt, out.Success)
		assert.True(rt, st.Encounters.Active)
		if out.Encounter.Type == state.EncounterCombat {
			e, ok := cat.Enemy(out.Encounter.EnemyID)
			require.True(rt, ok)
			assert.False(rt, e.IsBoss)
			assert.Equal(rt, region, e.Region)
		}
	})
}
