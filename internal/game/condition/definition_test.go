package condition_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derelict-dawn/derelict/internal/game/condition"
	"github.com/derelict-dawn/derelict/internal/game/state"
)

func TestDefaultRegistry_HasBuiltins(t *testing.T) {
	reg := condition.DefaultRegistry()
	assert.Len(t, reg.All(), 4)
	for _, typ := range []state.StatusEffectType{state.Weaken, state.Expose, state.Stun, state.Disable} {
		_, ok := reg.Get(typ)
		assert.True(t, ok, "missing %s", typ)
	}
	assert.Equal(t, "Stunned", reg.Name(state.Stun))
	assert.Equal(t, "BURN", reg.Name("BURN"))
}

func TestRegistry_Validate(t *testing.T) {
	reg := condition.DefaultRegistry()
	assert.NoError(t, reg.Validate(state.StatusEffect{Type: state.Weaken, Duration: 2, Magnitude: 0.25}))
	assert.NoError(t, reg.Validate(state.StatusEffect{Type: state.Stun, Duration: 1}))
	assert.Error(t, reg.Validate(state.StatusEffect{Type: "BURN", Duration: 2}))
	assert.Error(t, reg.Validate(state.StatusEffect{Type: state.Weaken, Duration: 0, Magnitude: 0.25}))
	assert.Error(t, reg.Validate(state.StatusEffect{Type: state.Weaken, Duration: 2, Magnitude: 1.5}))
	assert.Error(t, reg.Validate(state.StatusEffect{Type: state.Stun, Duration: 6}))
	assert.Error(t, reg.Validate(state.StatusEffect{Type: state.Expose, Duration: 2, Magnitude: -0.1}))
}

func TestLoadDirectory_OverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	data := `
type: STUN
name: Jammed
description: "Systems jammed."
max_duration: 3
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stun.yaml"), []byte(data), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	reg, err := condition.LoadDirectory(dir)
	require.NoError(t, err)
	assert.Equal(t, "Jammed", reg.Name(state.Stun))
	assert.Equal(t, "Weakened", reg.Name(state.Weaken))
	assert.Error(t, reg.Validate(state.StatusEffect{Type: state.Stun, Duration: 4}))
}

func TestLoadDirectory_RejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("type: STUN\nstacks: 2\n"), 0644))
	_, err := condition.LoadDirectory(dir)
	assert.Error(t, err)
}

func TestLoadDirectory_MissingDir(t *testing.T) {
	_, err := condition.LoadDirectory(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}
