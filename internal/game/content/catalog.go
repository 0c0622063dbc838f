// Package content loads and validates the static game catalogs: player and
// enemy actions, enemies, regions and the economy table.
package content

import (
	"errors"
	"fmt"
	"sort"

	"github.com/derelict-dawn/derelict/internal/game/condition"
	"github.com/derelict-dawn/derelict/internal/game/state"
	"github.com/derelict-dawn/derelict/internal/game/upgrade"
)

// Catalog is the read-only content set consumed by the engine systems.
// It is safe for concurrent reads once constructed.
type Catalog struct {
	playerOrder   []string
	playerActions map[string]*Action
	enemyActions  map[string]*EnemyAction
	enemies       map[string]*Enemy
	regions       map[string]*Region
	effects       *condition.Registry
	curves        map[state.CategoryID]upgrade.Curve
}

// Set is the raw material a Catalog is built from.
type Set struct {
	PlayerActions []*Action
	EnemyActions  []*EnemyAction
	Enemies       []*Enemy
	Regions       []*Region
	// Effects defaults to condition.DefaultRegistry when nil.
	Effects *condition.Registry
	// Curves overrides upgrade.DefaultCurves per category.
	Curves map[state.CategoryID]upgrade.Curve
}

// New validates every definition in set, checks cross references and builds
// a Catalog. All violations are reported together.
//
// Postcondition: Returns a non-nil Catalog, or an error joining every violation.
func New(set Set) (*Catalog, error) {
	c := &Catalog{
		playerActions: make(map[string]*Action, len(set.PlayerActions)),
		enemyActions:  make(map[string]*EnemyAction, len(set.EnemyActions)),
		enemies:       make(map[string]*Enemy, len(set.Enemies)),
		regions:       make(map[string]*Region, len(set.Regions)),
		effects:       set.Effects,
		curves:        set.Curves,
	}
	if c.effects == nil {
		c.effects = condition.DefaultRegistry()
	}

	var errs []error
	for _, a := range set.PlayerActions {
		if err := a.Validate(c.effects); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := c.playerActions[a.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate player action %q", a.ID))
			continue
		}
		c.playerActions[a.ID] = a
		c.playerOrder = append(c.playerOrder, a.ID)
	}
	if len(c.playerActions) == 0 {
		errs = append(errs, fmt.Errorf("player action catalog must not be empty"))
	}
	for _, a := range set.EnemyActions {
		if err := a.Validate(c.effects); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := c.enemyActions[a.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate enemy action %q", a.ID))
			continue
		}
		c.enemyActions[a.ID] = a
	}
	for _, r := range set.Regions {
		if err := r.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := c.regions[r.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate region %q", r.ID))
			continue
		}
		c.regions[r.ID] = r
	}
	for _, e := range set.Enemies {
		if err := e.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := c.enemies[e.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate enemy %q", e.ID))
			continue
		}
		c.enemies[e.ID] = e
	}
	for id, curve := range c.curves {
		if id.Resource() == "" {
			errs = append(errs, fmt.Errorf("economy: unknown category %q", id))
			continue
		}
		if err := curve.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("economy %q: %w", id, err))
		}
	}

	errs = append(errs, c.crossCheck()...)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return c, nil
}

func (c *Catalog) crossCheck() []error {
	var errs []error
	for _, id := range sortedKeys(c.enemies) {
		e := c.enemies[id]
		for _, a := range e.Actions {
			if _, ok := c.enemyActions[a]; !ok {
				errs = append(errs, fmt.Errorf("enemy %q: unknown action %q", e.ID, a))
			}
		}
		r, ok := c.regions[e.Region]
		if !ok {
			errs = append(errs, fmt.Errorf("enemy %q: unknown region %q", e.ID, e.Region))
			continue
		}
		if e.SubRegion != "" && !r.HasSubRegion(e.SubRegion) {
			errs = append(errs, fmt.Errorf("enemy %q: region %q has no subregion %q", e.ID, e.Region, e.SubRegion))
		}
	}
	for _, id := range sortedKeys(c.regions) {
		r := c.regions[id]
		for _, conn := range r.Connections {
			if _, ok := c.regions[conn]; !ok {
				errs = append(errs, fmt.Errorf("region %q: unknown connection %q", r.ID, conn))
			}
		}
		for _, st := range r.Stories {
			for _, ch := range st.Choices {
				trig := ch.Outcome.Combat
				if trig == nil {
					continue
				}
				if trig.EnemyID != "" {
					if _, ok := c.enemies[trig.EnemyID]; !ok {
						errs = append(errs, fmt.Errorf("region %q story %q: unknown enemy %q", r.ID, st.ID, trig.EnemyID))
					}
					continue
				}
				if trig.RegionID != "" {
					if _, ok := c.regions[trig.RegionID]; !ok {
						errs = append(errs, fmt.Errorf("region %q story %q: unknown combat region %q", r.ID, st.ID, trig.RegionID))
					}
				}
			}
		}
	}
	return errs
}

// PlayerActionIDs returns the player catalog in declaration order.
func (c *Catalog) PlayerActionIDs() []string {
	return append([]string(nil), c.playerOrder...)
}

// PlayerAction returns the player action with id.
func (c *Catalog) PlayerAction(id string) (*Action, bool) {
	a, ok := c.playerActions[id]
	return a, ok
}

// EnemyAction returns the enemy action with id.
func (c *Catalog) EnemyAction(id string) (*EnemyAction, bool) {
	a, ok := c.enemyActions[id]
	return a, ok
}

// Enemy returns the enemy definition with id.
func (c *Catalog) Enemy(id string) (*Enemy, bool) {
	e, ok := c.enemies[id]
	return e, ok
}

// Region returns the region definition with id.
func (c *Catalog) Region(id string) (*Region, bool) {
	r, ok := c.regions[id]
	return r, ok
}

// RegionIDs returns every region id, sorted.
func (c *Catalog) RegionIDs() []string {
	return sortedKeys(c.regions)
}

// Enemies returns the roster of regionID ordered by id. A non-empty
// subRegionID narrows the roster to that subregion; boss selects bosses
// instead of regular enemies.
func (c *Catalog) Enemies(regionID, subRegionID string, boss bool) []*Enemy {
	var out []*Enemy
	for _, id := range sortedKeys(c.enemies) {
		e := c.enemies[id]
		if e.Region != regionID || e.IsBoss != boss {
			continue
		}
		if subRegionID != "" && e.SubRegion != subRegionID {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Effects returns the status effect registry.
func (c *Catalog) Effects() *condition.Registry {
	return c.effects
}

// Curves returns the economy overrides loaded with the content, possibly nil.
func (c *Catalog) Curves() map[state.CategoryID]upgrade.Curve {
	return c.curves
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
