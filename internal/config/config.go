// Package config provides Viper-based configuration loading for the Derelict
// Dawn engine.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// SimulationConfig holds the production tick settings.
type SimulationConfig struct {
	// TickInterval is the wall time between production ticks.
	TickInterval time.Duration `mapstructure:"tick_interval"`
	// MaxDelta caps the simulated time credited by one tick; 0 disables the cap.
	MaxDelta time.Duration `mapstructure:"max_delta"`
}

// ContentConfig locates the YAML content tree.
type ContentConfig struct {
	Dir string `mapstructure:"dir"`
}

// SaveConfig holds save file settings.
type SaveConfig struct {
	// Path is the save document location.
	Path string `mapstructure:"path"`
	// AutosaveInterval is the time between autosaves; 0 disables autosave.
	AutosaveInterval time.Duration `mapstructure:"autosave_interval"`
}

// CombatConfig holds battle penalties and the enemy script sandbox settings.
type CombatConfig struct {
	// DefeatPenalty is the fraction of every resource lost on defeat.
	DefeatPenalty float64 `mapstructure:"defeat_penalty"`
	// RetreatPenalty is the fraction of every resource lost on retreat.
	RetreatPenalty float64 `mapstructure:"retreat_penalty"`
	// DefeatRecovery is the fraction of max hull restored after a defeat.
	DefeatRecovery float64 `mapstructure:"defeat_recovery"`
	// ScriptDir holds the Lua files defining SCRIPT conditions. Empty disables scripting.
	ScriptDir string `mapstructure:"script_dir"`
	// InstructionLimit bounds each script call; 0 uses the sandbox default.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// EncounterWeights overrides a region's encounter table.
type EncounterWeights struct {
	Combat float64 `mapstructure:"combat"`
	Empty  float64 `mapstructure:"empty"`
	Story  float64 `mapstructure:"story"`
}

// EncountersConfig holds per-region encounter table overrides.
type EncountersConfig struct {
	Tables map[string]EncounterWeights `mapstructure:"tables"`
}

// RandomConfig selects the random source.
type RandomConfig struct {
	// Seed makes every roll reproducible when non-zero; 0 uses crypto/rand.
	Seed uint64 `mapstructure:"seed"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Content    ContentConfig    `mapstructure:"content"`
	Save       SaveConfig       `mapstructure:"save"`
	Combat     CombatConfig     `mapstructure:"combat"`
	Encounters EncountersConfig `mapstructure:"encounters"`
	Random     RandomConfig     `mapstructure:"random"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string
	for _, validate := range []func() error{
		func() error { return validateLogging(c.Logging) },
		func() error { return validateSimulation(c.Simulation) },
		func() error { return validateContent(c.Content) },
		func() error { return validateSave(c.Save) },
		func() error { return validateCombat(c.Combat) },
		func() error { return validateEncounters(c.Encounters) },
	} {
		if err := validate(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateSimulation(s SimulationConfig) error {
	var errs []string
	if s.TickInterval <= 0 {
		errs = append(errs, fmt.Sprintf("simulation.tick_interval must be > 0, got %s", s.TickInterval))
	}
	if s.MaxDelta < 0 {
		errs = append(errs, "simulation.max_delta must not be negative")
	}
	if s.MaxDelta > 0 && s.MaxDelta < s.TickInterval {
		errs = append(errs, "simulation.max_delta must be 0 or at least simulation.tick_interval")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateContent(c ContentConfig) error {
	if c.Dir == "" {
		return fmt.Errorf("content.dir must not be empty")
	}
	return nil
}

func validateSave(s SaveConfig) error {
	var errs []string
	if s.Path == "" {
		errs = append(errs, "save.path must not be empty")
	}
	if s.AutosaveInterval < 0 {
		errs = append(errs, "save.autosave_interval must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateCombat(c CombatConfig) error {
	var errs []string
	fractions := []struct {
		name  string
		value float64
	}{
		{"combat.defeat_penalty", c.DefeatPenalty},
		{"combat.retreat_penalty", c.RetreatPenalty},
		{"combat.defeat_recovery", c.DefeatRecovery},
	}
	for _, f := range fractions {
		if f.value < 0 || f.value > 1 {
			errs = append(errs, fmt.Sprintf("%s must be in [0, 1], got %v", f.name, f.value))
		}
	}
	if c.InstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("combat.instruction_limit must be >= 0, got %d", c.InstructionLimit))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateEncounters(e EncountersConfig) error {
	var errs []string
	for region, w := range e.Tables {
		if w.Combat < 0 || w.Empty < 0 || w.Story < 0 {
			errs = append(errs, fmt.Sprintf("encounters.tables.%s weights must not be negative", region))
			continue
		}
		if w.Combat+w.Empty+w.Story <= 0 {
			errs = append(errs, fmt.Sprintf("encounters.tables.%s must have a positive total weight", region))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path uses defaults and
// environment variables only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	// Environment variable overrides with DERELICT_ prefix
	v.SetEnvPrefix("DERELICT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("simulation.tick_interval", "1s")
	v.SetDefault("simulation.max_delta", "1m")

	v.SetDefault("content.dir", "content")

	v.SetDefault("save.path", "derelict-save.json")
	v.SetDefault("save.autosave_interval", "30s")

	v.SetDefault("combat.defeat_penalty", 0.25)
	v.SetDefault("combat.retreat_penalty", 0.1)
	v.SetDefault("combat.defeat_recovery", 0.5)
	v.SetDefault("combat.script_dir", "content/scripts")
	v.SetDefault("combat.instruction_limit", 10000)

	v.SetDefault("random.seed", 0)
}
