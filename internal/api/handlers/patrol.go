package handlers

import (
	"net/http"
	"sort"

	"shorewatch/internal/actions"
	"shorewatch/internal/core"
	"shorewatch/internal/types"
)

// maxFeedAlerts caps the flattened cross-zone alert feed.
const maxFeedAlerts = 100

// feedAlert is one alert joined with its zone's display context.
type feedAlert struct {
	types.AlertEntry
	ZoneName  string          `json:"zone_name"`
	RiskTotal int             `json:"risk_total"`
	RiskLevel types.RiskLevel `json:"risk_level"`
}

type patrolFeedView struct {
	Alerts  []feedAlert             `json:"alerts"`
	Actions []types.SuggestedAction `json:"actions"`
	// TopPriority is the severity of the most pressing queued action, empty
	// when the queue is clear.
	TopPriority types.ActionPriority `json:"top_priority,omitempty"`
}

// priorityRank orders actions urgent first for the patrol queue.
var priorityRank = map[types.ActionPriority]int{
	types.PriorityUrgent:  0,
	types.PriorityWarning: 1,
	types.PriorityInfo:    2,
}

// PatrolAlerts returns the flattened newest-first alert feed across all
// enabled zones, joined with the current patrol action queue.
func (h *Handler) PatrolAlerts(w http.ResponseWriter, r *http.Request) {
	resolved := resolvedSet(h.store.ResolvedActionIDs())

	var alerts []feedAlert
	var queue []types.SuggestedAction
	for _, z := range h.store.EnabledZones() {
		for _, a := range z.Alerts {
			alerts = append(alerts, feedAlert{
				AlertEntry: a,
				ZoneName:   z.Config.Name,
				RiskTotal:  z.Risk.Total,
				RiskLevel:  z.Risk.Level,
			})
		}
		queue = append(queue, annotateResolved(actions.Generate(z.Config.ID, z.Risk.Factors), resolved)...)
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Timestamp.After(alerts[j].Timestamp)
	})
	if len(alerts) > maxFeedAlerts {
		alerts = alerts[:maxFeedAlerts]
	}

	sort.SliceStable(queue, func(i, j int) bool {
		return priorityRank[queue[i].Priority] < priorityRank[queue[j].Priority]
	})

	view := patrolFeedView{Alerts: alerts, Actions: queue}
	if top, ok := actions.HighestPriority(queue); ok {
		view.TopPriority = top
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: view})
}

type resolveRequest struct {
	ActionID string `json:"action_id" validate:"required"`
}

// PatrolResolve marks one suggested action as acknowledged. Idempotent:
// resolving an already-resolved id succeeds.
func (h *Handler) PatrolResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		core.Error(w, r, types.NewAppError(types.ErrCodeValidationMissingField,
			"action_id is required", err))
		return
	}

	h.store.ResolveAction(req.ActionID)

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: map[string]any{
		"action_id": req.ActionID,
		"resolved":  true,
	}})
}

// PatrolResolved lists the acknowledged action ids.
func (h *Handler) PatrolResolved(w http.ResponseWriter, r *http.Request) {
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: map[string]any{
		"resolved_action_ids": h.store.ResolvedActionIDs(),
	}})
}
