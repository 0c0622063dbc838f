package condition

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/derelict-dawn/derelict/internal/game/state"
)

// Def is the static catalog entry of a status effect type, loaded from YAML.
type Def struct {
	Type        state.StatusEffectType `yaml:"type"`
	Name        string                 `yaml:"name"`
	Description string                 `yaml:"description"`
	// MaxMagnitude bounds the magnitude content may assign; 0 means the
	// effect is a flag and ignores magnitude.
	MaxMagnitude float64 `yaml:"max_magnitude"`
	// MaxDuration bounds the duration content may assign.
	MaxDuration int `yaml:"max_duration"`
}

// Registry holds the known status effect definitions keyed by type.
type Registry struct {
	defs map[state.StatusEffectType]*Def
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[state.StatusEffectType]*Def)}
}

// DefaultRegistry returns a Registry holding the four built-in effects.
func DefaultRegistry() *Registry {
	reg := NewRegistry()
	reg.Register(&Def{Type: state.Weaken, Name: "Weakened", Description: "Takes increased damage.", MaxMagnitude: 1, MaxDuration: 10})
	reg.Register(&Def{Type: state.Expose, Name: "Exposed", Description: "Incoming fire may bypass shields.", MaxMagnitude: 1, MaxDuration: 10})
	reg.Register(&Def{Type: state.Stun, Name: "Stunned", Description: "Loses its next turns.", MaxDuration: 5})
	reg.Register(&Def{Type: state.Disable, Name: "Disabled", Description: "Deals reduced damage.", MaxMagnitude: 1, MaxDuration: 10})
	return reg
}

// Register adds def to the registry, overwriting any existing entry of the same type.
//
// Precondition: def must not be nil.
func (r *Registry) Register(def *Def) {
	r.defs[def.Type] = def
}

// Get returns the Def for typ, or (nil, false) if not found.
func (r *Registry) Get(typ state.StatusEffectType) (*Def, bool) {
	d, ok := r.defs[typ]
	return d, ok
}

// All returns the registered definitions ordered by type.
func (r *Registry) All() []*Def {
	out := make([]*Def, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// Name returns the display name of typ, falling back to the raw type.
func (r *Registry) Name(typ state.StatusEffectType) string {
	if d, ok := r.defs[typ]; ok && d.Name != "" {
		return d.Name
	}
	return string(typ)
}

// Validate checks that eff names a registered type and stays within its bounds.
func (r *Registry) Validate(eff state.StatusEffect) error {
	def, ok := r.defs[eff.Type]
	if !ok {
		return fmt.Errorf("unknown status effect type %q", eff.Type)
	}
	if eff.Duration <= 0 {
		return fmt.Errorf("status effect %s: duration must be > 0, got %d", eff.Type, eff.Duration)
	}
	if def.MaxDuration > 0 && eff.Duration > def.MaxDuration {
		return fmt.Errorf("status effect %s: duration %d exceeds max %d", eff.Type, eff.Duration, def.MaxDuration)
	}
	if eff.Magnitude < 0 {
		return fmt.Errorf("status effect %s: magnitude must be >= 0, got %v", eff.Type, eff.Magnitude)
	}
	if def.MaxMagnitude > 0 && eff.Magnitude > def.MaxMagnitude {
		return fmt.Errorf("status effect %s: magnitude %v exceeds max %v", eff.Type, eff.Magnitude, def.MaxMagnitude)
	}
	return nil
}

// LoadDirectory reads every *.yaml file in dir as a Def and layers them over
// DefaultRegistry, so a file only needs to exist for effects it retunes.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error if any file fails to parse.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading status effect dir %q: %w", dir, err)
	}
	reg := DefaultRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var def Def
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if def.Type == "" {
			return nil, fmt.Errorf("parsing %q: type must not be empty", path)
		}
		reg.Register(&def)
	}
	return reg, nil
}
