package content

import (
	"fmt"

	"github.com/derelict-dawn/derelict/internal/game/state"
)

// GenericRegion holds story encounters usable from any region.
const GenericRegion = "generic"

// EncounterTable holds the relative weights of the three encounter bands.
type EncounterTable struct {
	Combat float64 `yaml:"combat"`
	Empty  float64 `yaml:"empty"`
	Story  float64 `yaml:"story"`
}

// Total returns the sum of the weights.
func (t EncounterTable) Total() float64 {
	return t.Combat + t.Empty + t.Story
}

// Validate checks that no weight is negative.
func (t EncounterTable) Validate() error {
	if t.Combat < 0 || t.Empty < 0 || t.Story < 0 {
		return fmt.Errorf("encounter table weights must be >= 0, got %+v", t)
	}
	return nil
}

// Flavor holds the pools empty encounters draw their text from.
type Flavor struct {
	Titles       []string `yaml:"titles"`
	Descriptions []string `yaml:"descriptions"`
	Messages     []string `yaml:"messages"`
}

// RewardRoll is one independently rolled salvage line of an empty encounter.
type RewardRoll struct {
	Type   state.ResourceType `yaml:"type"`
	Chance float64            `yaml:"chance"`
	Min    int                `yaml:"min"`
	Max    int                `yaml:"max"`
}

// Region is a static region definition.
type Region struct {
	ID             string            `yaml:"id"`
	Name           string            `yaml:"name"`
	Description    string            `yaml:"description"`
	EncounterTable EncounterTable    `yaml:"encounter_table"`
	Flavor         Flavor            `yaml:"flavor"`
	Rewards        []RewardRoll      `yaml:"rewards"`
	Stories        []state.Encounter `yaml:"stories"`
	Connections    []string          `yaml:"connections"`
	SubRegions     []string          `yaml:"sub_regions"`
}

// HasSubRegion reports whether id is one of the region's subregions.
func (r *Region) HasSubRegion(id string) bool {
	for _, s := range r.SubRegions {
		if s == id {
			return true
		}
	}
	return false
}

// Validate checks the region's own invariants and stamps story encounters
// with their type and region. Cross references are checked by the Catalog.
func (r *Region) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("region: id must not be empty")
	}
	if r.Name == "" {
		return fmt.Errorf("region %q: name must not be empty", r.ID)
	}
	if err := r.EncounterTable.Validate(); err != nil {
		return fmt.Errorf("region %q: %w", r.ID, err)
	}
	for i, rw := range r.Rewards {
		if !rw.Type.Known() {
			return fmt.Errorf("region %q: rewards[%d] has unknown resource %q", r.ID, i, rw.Type)
		}
		if rw.Chance < 0 || rw.Chance > 1 {
			return fmt.Errorf("region %q: rewards[%d] chance must be in [0, 1], got %v", r.ID, i, rw.Chance)
		}
		if rw.Min < 0 || rw.Min > rw.Max {
			return fmt.Errorf("region %q: rewards[%d] requires 0 <= min <= max, got %d..%d", r.ID, i, rw.Min, rw.Max)
		}
	}
	seen := make(map[string]bool, len(r.Stories))
	for i := range r.Stories {
		st := &r.Stories[i]
		if st.ID == "" {
			return fmt.Errorf("region %q: stories[%d] id must not be empty", r.ID, i)
		}
		if seen[st.ID] {
			return fmt.Errorf("region %q: duplicate story %q", r.ID, st.ID)
		}
		seen[st.ID] = true
		if len(st.Choices) == 0 {
			return fmt.Errorf("region %q: story %q must offer at least one choice", r.ID, st.ID)
		}
		choices := make(map[string]bool, len(st.Choices))
		for _, ch := range st.Choices {
			if ch.ID == "" || choices[ch.ID] {
				return fmt.Errorf("region %q: story %q has an empty or duplicate choice id %q", r.ID, st.ID, ch.ID)
			}
			choices[ch.ID] = true
			for _, amt := range append(append([]state.ResourceAmount{}, ch.Cost...), ch.Outcome.Resources...) {
				if !amt.Type.Known() {
					return fmt.Errorf("region %q: story %q choice %q names unknown resource %q", r.ID, st.ID, ch.ID, amt.Type)
				}
			}
		}
		st.Type = state.EncounterStory
		st.Region = r.ID
	}
	return nil
}
