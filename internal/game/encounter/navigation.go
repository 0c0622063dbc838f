package encounter

import (
	"slices"

	"go.uber.org/zap"

	"github.com/derelict-dawn/derelict/internal/game/state"
)

// Discover marks the current region explored and unlocks its connections.
func (g *Generator) Discover(st *state.GameState) {
	nav := &st.Navigation
	if !slices.Contains(nav.ExploredRegions, nav.CurrentRegion) {
		nav.ExploredRegions = append(nav.ExploredRegions, nav.CurrentRegion)
	}
	if !slices.Contains(nav.AvailableRegions, nav.CurrentRegion) {
		nav.AvailableRegions = append(nav.AvailableRegions, nav.CurrentRegion)
	}
	def, ok := g.catalog.Region(nav.CurrentRegion)
	if !ok {
		return
	}
	for _, conn := range def.Connections {
		if !slices.Contains(nav.AvailableRegions, conn) {
			nav.AvailableRegions = append(nav.AvailableRegions, conn)
		}
	}
}

// Travel moves the ship to an available region, optionally entering one of its
// subregions, and discovers it.
//
// Precondition: no encounter and no combat may be active.
// Postcondition: On success Navigation.CurrentRegion is regionID; on rejection
// the state is untouched.
func (g *Generator) Travel(st *state.GameState, regionID, subRegionID string) Result {
	if st.Encounters.Active {
		return reject("Resolve the current encounter before travelling")
	}
	if st.Combat.Active {
		return reject("Cannot travel during combat")
	}
	def, ok := g.catalog.Region(regionID)
	if !ok {
		g.logger.Warn("travel to unknown region", zap.String("region", regionID))
		return reject("Unknown region %q", regionID)
	}
	if !slices.Contains(st.Navigation.AvailableRegions, regionID) {
		return reject("%s is not reachable from here", def.Name)
	}
	if subRegionID != "" && !def.HasSubRegion(subRegionID) {
		return reject("%s has no sector %q", def.Name, subRegionID)
	}

	st.Navigation.CurrentRegion = regionID
	st.Navigation.CurrentSubRegion = subRegionID
	g.Discover(st)
	g.logger.Info("travelled",
		zap.String("region", regionID),
		zap.String("sub_region", subRegionID),
	)
	return Result{Success: true, Message: "Arrived at " + def.Name}
}
