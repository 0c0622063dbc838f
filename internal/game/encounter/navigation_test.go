package encounter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derelict-dawn/derelict/internal/game/dice"
)

func TestDiscover_UnlocksConnections(t *testing.T) {
	f := newFixture(t, shipped(t), dice.NewSequenceSource(0.5), nil)
	f.gen.Discover(f.st)
	assert.ElementsMatch(t, []string{"void", "asteroid", "nebula"}, f.st.Navigation.AvailableRegions)
	assert.Equal(t, []string{"void"}, f.st.Navigation.ExploredRegions)

	f.gen.Discover(f.st)
	assert.Len(t, f.st.Navigation.AvailableRegions, 3)
}

func TestTravel_MovesAndDiscovers(t *testing.T) {
	f := newFixture(t, shipped(t), dice.NewSequenceSource(0.5), nil)
	f.gen.Discover(f.st)

	res := f.gen.Travel(f.st, "asteroid", "debris-field")
	require.True(t, res.Success, res.Message)
	assert.Equal(t, "asteroid", f.st.Navigation.CurrentRegion)
	assert.Equal(t, "debris-field", f.st.Navigation.CurrentSubRegion)
	assert.Contains(t, f.st.Navigation.ExploredRegions, "asteroid")
	assert.Contains(t, f.st.Navigation.AvailableRegions, "deepspace")
}

func TestTravel_Rejections(t *testing.T) {
	f := newFixture(t, shipped(t), dice.NewSequenceSource(0.5), nil)
	f.gen.Discover(f.st)

	tests := []struct {
		name      string
		region    string
		subRegion string
		prepare   func()
	}{
		{name: "unknown region", region: "andromeda"},
		{name: "not yet reachable", region: "deepspace"},
		{name: "unknown subregion", region: "asteroid", subRegion: "core"},
		{name: "during encounter", region: "asteroid", prepare: func() { f.st.Encounters.Active = true }},
		{name: "during combat", region: "asteroid", prepare: func() { f.st.Combat.Active = true }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f.st.Encounters.Active = false
			f.st.Combat.Active = false
			if tc.prepare != nil {
				tc.prepare()
			}
			res := f.gen.Travel(f.st, tc.region, tc.subRegion)
			assert.False(t, res.Success)
			assert.NotEmpty(t, res.Message)
			assert.Equal(t, "void", f.st.Navigation.CurrentRegion)
		})
	}
}
