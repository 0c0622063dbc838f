package state

import "time"

// EncounterType discriminates the Encounter variants.
type EncounterType string

const (
	EncounterEmpty  EncounterType = "empty"
	EncounterStory  EncounterType = "story"
	EncounterCombat EncounterType = "combat"
)

// CombatTrigger hands a story outcome off to the combat engine. Either EnemyID
// is explicit or the enemy is resolved from RegionID/SubRegionID/IsBoss.
type CombatTrigger struct {
	EnemyID     string `json:"enemyId,omitempty" yaml:"enemy_id"`
	RegionID    string `json:"regionId,omitempty" yaml:"region_id"`
	SubRegionID string `json:"subRegionId,omitempty" yaml:"sub_region_id"`
	IsBoss      bool   `json:"isBoss,omitempty" yaml:"is_boss"`
}

// ChoiceOutcome is what happens when a story choice is taken.
type ChoiceOutcome struct {
	Text      string           `json:"text" yaml:"text"`
	Resources []ResourceAmount `json:"resources,omitempty" yaml:"resources"`
	Combat    *CombatTrigger   `json:"combat,omitempty" yaml:"combat"`
}

// Choice is one option of a story encounter. Negative outcome resources are
// losses; Cost must be affordable for the choice to be taken.
type Choice struct {
	ID      string           `json:"id" yaml:"id"`
	Text    string           `json:"text" yaml:"text"`
	Cost    []ResourceAmount `json:"cost,omitempty" yaml:"cost"`
	Outcome ChoiceOutcome    `json:"outcome" yaml:"outcome"`
}

// Encounter is the tagged variant produced by a jump.
//   - EncounterEmpty uses Rewards.
//   - EncounterStory uses Choices.
//   - EncounterCombat uses EnemyID.
type Encounter struct {
	ID          string           `json:"id" yaml:"id"`
	Type        EncounterType    `json:"type" yaml:"-"`
	Title       string           `json:"title" yaml:"title"`
	Description string           `json:"description" yaml:"description"`
	Message     string           `json:"message,omitempty" yaml:"message"`
	Region      string           `json:"region" yaml:"-"`
	SubRegion   string           `json:"subRegion,omitempty" yaml:"-"`
	Rewards     []ResourceAmount `json:"rewards,omitempty" yaml:"-"`
	Choices     []Choice         `json:"choices,omitempty" yaml:"choices"`
	EnemyID     string           `json:"enemyId,omitempty" yaml:"-"`
}

// Choice returns the choice with the given id.
func (e *Encounter) Choice(id string) (*Choice, bool) {
	for i := range e.Choices {
		if e.Choices[i].ID == id {
			return &e.Choices[i], true
		}
	}
	return nil, false
}

// Clone returns a deep copy sharing no mutable sub-objects with e.
func (e *Encounter) Clone() *Encounter {
	if e == nil {
		return nil
	}
	cp := *e
	cp.Rewards = cloneAmounts(e.Rewards)
	if e.Choices != nil {
		cp.Choices = make([]Choice, len(e.Choices))
		for i, ch := range e.Choices {
			cp.Choices[i] = ch
			cp.Choices[i].Cost = cloneAmounts(ch.Cost)
			cp.Choices[i].Outcome.Resources = cloneAmounts(ch.Outcome.Resources)
			if ch.Outcome.Combat != nil {
				trig := *ch.Outcome.Combat
				cp.Choices[i].Outcome.Combat = &trig
			}
		}
	}
	return &cp
}

// HistoryEntry records one finished encounter or battle.
type HistoryEntry struct {
	ID     string        `json:"id"`
	Type   EncounterType `json:"type"`
	Result string        `json:"result"`
	Date   time.Time     `json:"date"`
	Region string        `json:"region"`
}

// Encounters is the encounter block of the GameState.
type Encounters struct {
	Active    bool           `json:"active"`
	Encounter *Encounter     `json:"encounter,omitempty"`
	History   []HistoryEntry `json:"history"`
}

// Navigation tracks where the ship is and where it may go.
type Navigation struct {
	CurrentRegion    string   `json:"currentRegion"`
	CurrentSubRegion string   `json:"currentSubRegion,omitempty"`
	ExploredRegions  []string `json:"exploredRegions"`
	AvailableRegions []string `json:"availableRegions"`
}

func cloneAmounts(in []ResourceAmount) []ResourceAmount {
	if in == nil {
		return nil
	}
	out := make([]ResourceAmount, len(in))
	copy(out, in)
	return out
}
