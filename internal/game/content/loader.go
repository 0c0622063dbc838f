package content

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/derelict-dawn/derelict/internal/game/condition"
	"github.com/derelict-dawn/derelict/internal/game/state"
	"github.com/derelict-dawn/derelict/internal/game/upgrade"
)

// Directory layout below the content root.
const (
	PlayerActionsFile = "actions/player.yaml"
	EnemyActionsFile  = "actions/enemy.yaml"
	EnemiesDir        = "enemies"
	RegionsDir        = "regions"
	EffectsDir        = "effects"
	EconomyFile       = "economy.yaml"
)

type actionFile struct {
	Actions []*Action `yaml:"actions"`
}

type enemyActionFile struct {
	Actions []*EnemyAction `yaml:"actions"`
}

type enemyFile struct {
	Enemies []*Enemy `yaml:"enemies"`
}

type economyFile struct {
	Curves map[state.CategoryID]upgrade.Curve `yaml:"curves"`
}

// Load reads the content tree rooted at dir and builds a validated Catalog.
// The effects directory and economy file are optional.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Catalog, or an error naming the failing file.
func Load(dir string) (*Catalog, error) {
	var set Set

	var players actionFile
	if err := decodeFile(filepath.Join(dir, PlayerActionsFile), &players); err != nil {
		return nil, err
	}
	set.PlayerActions = players.Actions

	var enemyActions enemyActionFile
	if err := decodeFile(filepath.Join(dir, EnemyActionsFile), &enemyActions); err != nil {
		return nil, err
	}
	set.EnemyActions = enemyActions.Actions

	enemyPaths, err := yamlFiles(filepath.Join(dir, EnemiesDir))
	if err != nil {
		return nil, err
	}
	for _, path := range enemyPaths {
		var f enemyFile
		if err := decodeFile(path, &f); err != nil {
			return nil, err
		}
		set.Enemies = append(set.Enemies, f.Enemies...)
	}

	regionPaths, err := yamlFiles(filepath.Join(dir, RegionsDir))
	if err != nil {
		return nil, err
	}
	for _, path := range regionPaths {
		var r Region
		if err := decodeFile(path, &r); err != nil {
			return nil, err
		}
		set.Regions = append(set.Regions, &r)
	}

	effectsDir := filepath.Join(dir, EffectsDir)
	if _, err := os.Stat(effectsDir); err == nil {
		if set.Effects, err = condition.LoadDirectory(effectsDir); err != nil {
			return nil, err
		}
	}

	var econ economyFile
	if err := decodeFile(filepath.Join(dir, EconomyFile), &econ); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	set.Curves = econ.Curves

	cat, err := New(set)
	if err != nil {
		return nil, fmt.Errorf("validating content %q: %w", dir, err)
	}
	return cat, nil
}

// decodeFile strictly decodes the YAML file at path into out.
func decodeFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %q: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("parsing %q: %w", path, err)
	}
	return nil
}

// yamlFiles lists the *.yaml files directly inside dir in lexical order.
func yamlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading content dir %q: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
