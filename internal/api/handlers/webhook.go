package handlers

import (
	"context"
	"net/http"

	"shorewatch/internal/core"
	"shorewatch/internal/types"
)

// VisionWebhook receives pushed events from the vision provider. The
// delivery is acknowledged as soon as the payload parses; dispatch runs on
// a detached goroutine so a slow poll cycle or store contention can never
// back-pressure the provider into retries. Processing errors are logged,
// never returned.
func (h *Handler) VisionWebhook(w http.ResponseWriter, r *http.Request) {
	var payload types.VisionWebhookPayload
	if err := core.DecodeJSON(w, r, &payload); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validate.Struct(&payload); err != nil {
		core.Error(w, r, types.NewAppError(types.ErrCodeValidationMissingField,
			"webhook payload missing job_id", err))
		return
	}

	h.logger.InfoContext(r.Context(), "webhook received",
		"event", payload.EventType(),
		"job_id", payload.JobID,
	)

	// Fire and forget. The request context dies with the response, so the
	// dispatch gets a fresh one.
	go h.control.HandleWebhook(context.Background(), payload)

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: map[string]bool{
		"received": true,
	}})
}
