package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"shorewatch/internal/actions"
	"shorewatch/internal/core"
	"shorewatch/internal/risk"
	"shorewatch/internal/types"
)

// zoneView is one zone's state joined with its derived patrol actions and a
// human-readable summary of the active risk factors.
type zoneView struct {
	types.ZoneState
	Actions     []types.SuggestedAction `json:"actions"`
	RiskSummary []string                `json:"risk_summary"`
}

// ListZones returns every enabled zone with its current state and derived
// actions, in configuration order.
func (h *Handler) ListZones(w http.ResponseWriter, r *http.Request) {
	resolved := resolvedSet(h.store.ResolvedActionIDs())

	zones := h.store.EnabledZones()
	views := make([]zoneView, 0, len(zones))
	for _, z := range zones {
		views = append(views, zoneView{
			ZoneState:   z,
			Actions:     annotateResolved(actions.Generate(z.Config.ID, z.Risk.Factors), resolved),
			RiskSummary: risk.Summary(z.Risk.Factors),
		})
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: views})
}

// GetZone returns one zone by id, enabled or not.
func (h *Handler) GetZone(w http.ResponseWriter, r *http.Request) {
	zoneID := chi.URLParam(r, "zoneID")

	zone, ok := h.store.Zone(zoneID)
	if !ok {
		core.Error(w, r, types.NewAppError(types.ErrCodeNotFoundZone,
			fmt.Sprintf("unknown zone %q", zoneID), nil))
		return
	}

	view := zoneView{
		ZoneState: zone,
		Actions: annotateResolved(
			actions.Generate(zone.Config.ID, zone.Risk.Factors),
			resolvedSet(h.store.ResolvedActionIDs())),
		RiskSummary: risk.Summary(zone.Risk.Factors),
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: view})
}

// TriggerMonitor starts a continuous condition-watch job on a zone.
func (h *Handler) TriggerMonitor(w http.ResponseWriter, r *http.Request) {
	zoneID := chi.URLParam(r, "zoneID")

	jobID, err := h.control.TriggerLiveMonitor(r.Context(), zoneID)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: map[string]string{
		"zone_id": zoneID,
		"job_id":  jobID,
	}})
}

// TriggerDigest starts a scene-narration stream on a zone.
func (h *Handler) TriggerDigest(w http.ResponseWriter, r *http.Request) {
	zoneID := chi.URLParam(r, "zoneID")

	if err := h.control.TriggerLiveDigest(r.Context(), zoneID); err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: map[string]string{
		"zone_id": zoneID,
		"status":  "digest started",
	}})
}

func resolvedSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// annotateResolved marks actions a human has already acknowledged.
// Resolution state survives recomputation because action ids are
// deterministic.
func annotateResolved(list []types.SuggestedAction, resolved map[string]struct{}) []types.SuggestedAction {
	for i := range list {
		if _, ok := resolved[list[i].ID]; ok {
			list[i].Resolved = true
		}
	}
	return list
}
