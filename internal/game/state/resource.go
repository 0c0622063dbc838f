// Package state defines the single serializable GameState shared by every
// engine system, along with its default initial value and deep-copy helpers.
package state

// ResourceType names a fungible resource.
type ResourceType string

const (
	Energy  ResourceType = "energy"
	Insight ResourceType = "insight"
	Crew    ResourceType = "crew"
	Scrap   ResourceType = "scrap"
	// Components are the scarce combat-only resource gating late upgrades.
	// They are not bound to a category and have no capacity.
	Components ResourceType = "components"
)

// CategoryID identifies one of the four resource-production categories.
type CategoryID string

const (
	Reactor       CategoryID = "reactor"
	Processor     CategoryID = "processor"
	CrewQuarters  CategoryID = "crewQuarters"
	Manufacturing CategoryID = "manufacturing"
)

// Categories lists every category in canonical order. Iterate this rather than
// the GameState map when order matters.
var Categories = []CategoryID{Reactor, Processor, CrewQuarters, Manufacturing}

// Resource returns the resource produced by the category, or "" if c is unknown.
func (c CategoryID) Resource() ResourceType {
	switch c {
	case Reactor:
		return Energy
	case Processor:
		return Insight
	case CrewQuarters:
		return Crew
	case Manufacturing:
		return Scrap
	default:
		return ""
	}
}

// CategoryFor returns the category that stores resource r.
//
// Postcondition: Returns (id, true) for the four category-backed resources,
// ("", false) for Components and unknown types.
func CategoryFor(r ResourceType) (CategoryID, bool) {
	for _, c := range Categories {
		if c.Resource() == r {
			return c, true
		}
	}
	return "", false
}

// Known reports whether r is a resource type the engine understands.
func (r ResourceType) Known() bool {
	if r == Components {
		return true
	}
	_, ok := CategoryFor(r)
	return ok
}

// ResourceAmount is one line of a cost or reward list.
type ResourceAmount struct {
	Type   ResourceType `json:"type" yaml:"type"`
	Amount float64      `json:"amount" yaml:"amount"`
}

// Pool holds the current amount of a category's resource.
type Pool struct {
	Amount float64 `json:"amount"`
}

// UpgradeLevels records purchased upgrade levels for a category.
type UpgradeLevels struct {
	Capacity   int `json:"capacity"`
	Throughput int `json:"throughput"`
}

// Stats holds the derived values of a category.
// Capacity and PerSecondRate are recomputed from UpgradeLevels and ActiveUnits;
// they are never accumulated.
type Stats struct {
	Capacity      float64 `json:"capacity"`
	PerSecondRate float64 `json:"perSecondRate"`
	ActiveUnits   int     `json:"activeUnits"`
	TotalUnits    int     `json:"totalUnits"`
}

// Category is one resource-production block.
//
// Invariant: 0 <= Resources.Amount <= Stats.Capacity.
type Category struct {
	Resource  ResourceType  `json:"resource"`
	Resources Pool          `json:"resources"`
	Upgrades  UpgradeLevels `json:"upgrades"`
	Stats     Stats         `json:"stats"`
}
