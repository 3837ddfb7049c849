package handlers

import (
	"net/http"
	"time"

	"shorewatch/internal/core"
	"shorewatch/internal/types"
)

// zoneSummary is the compact per-zone line in the system status view.
type zoneSummary struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	RiskTotal    int             `json:"risk_total"`
	RiskLevel    types.RiskLevel `json:"risk_level"`
	StreamOnline bool            `json:"stream_online"`
	LastCheckAt  time.Time       `json:"last_check_at,omitzero"`
	MonitorJobID string          `json:"monitor_job_id,omitempty"`
}

type systemStatusView struct {
	Initialized    bool          `json:"initialized"`
	Running        bool          `json:"running"`
	UptimeSeconds  int64         `json:"uptime_seconds"`
	ActiveJobCount int           `json:"active_job_count"`
	Budget         types.Budget  `json:"budget"`
	Errors         []string      `json:"errors"`
	Zones          []zoneSummary `json:"zones"`
}

// SystemStatus returns the process-wide monitoring summary.
func (h *Handler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	state := h.store.State()

	var uptime int64
	if state.Initialized && !state.StartedAt.IsZero() {
		uptime = int64(time.Since(state.StartedAt).Seconds())
	}

	summaries := make([]zoneSummary, 0, len(state.Zones))
	for _, z := range h.store.AllZones() {
		summaries = append(summaries, zoneSummary{
			ID:           z.Config.ID,
			Name:         z.Config.Name,
			RiskTotal:    z.Risk.Total,
			RiskLevel:    z.Risk.Level,
			StreamOnline: z.StreamOnline,
			LastCheckAt:  z.LastCheckAt,
			MonitorJobID: z.LiveMonitorJobID,
		})
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: systemStatusView{
		Initialized:    state.Initialized,
		Running:        h.control.Running(),
		UptimeSeconds:  uptime,
		ActiveJobCount: state.ActiveJobCount,
		Budget:         state.Budget,
		Errors:         state.Errors,
		Zones:          summaries,
	}})
}

// SystemStart brings monitoring up.
func (h *Handler) SystemStart(w http.ResponseWriter, r *http.Request) {
	jobIDs, msg, err := h.control.StartAll(r.Context())
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: map[string]any{
		"message": msg,
		"job_ids": jobIDs,
	}})
}

// SystemStop tears monitoring down and resets accumulated state.
func (h *Handler) SystemStop(w http.ResponseWriter, r *http.Request) {
	if err := h.control.StopAll(r.Context()); err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: map[string]string{
		"message": "monitoring stopped",
	}})
}

// DemoStart switches polling to broad demo cadence.
func (h *Handler) DemoStart(w http.ResponseWriter, r *http.Request) {
	if err := h.control.EnableDemoMode(r.Context()); err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: map[string]string{
		"message": "demo mode enabled",
		"mode":    string(types.ModeDemo),
	}})
}

// DemoStop demotes polling back to conservative cadence. Monitoring keeps
// running.
func (h *Handler) DemoStop(w http.ResponseWriter, r *http.Request) {
	if err := h.control.DisableDemoMode(r.Context()); err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: map[string]string{
		"message": "demo mode disabled",
		"mode":    string(types.ModeConservative),
	}})
}
