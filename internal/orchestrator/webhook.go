package orchestrator

import (
	"context"

	"shorewatch/internal/types"
)

// HandleWebhook dispatches one inbound vision webhook event. Events carrying
// an unknown job id are logged and dropped; stale deliveries for jobs the
// store no longer tracks must not corrupt state. The active-job count is
// refreshed best-effort after every dispatch.
//
// Called from a detached goroutine after the HTTP handler has already
// acknowledged the delivery, so nothing here can slow the provider down.
func (o *Orchestrator) HandleWebhook(ctx context.Context, payload types.VisionWebhookPayload) {
	switch event := payload.EventType(); event {
	case types.VisionEventWatchTriggered, types.VisionEventLiveMonitorResult:
		o.handleTriggerEvent(ctx, payload)

	case types.VisionEventJobStatus, types.VisionEventJobStopped:
		o.handleJobStoppedEvent(ctx, payload)

	case types.VisionEventJobStarted:
		o.logger.InfoContext(ctx, "remote job started", "job_id", payload.JobID)

	default:
		o.logger.InfoContext(ctx, "ignoring unknown webhook event",
			"event", event,
			"job_id", payload.JobID,
		)
	}

	o.refreshActiveJobCount(ctx)
}

// handleTriggerEvent correlates a condition evaluation back to its zone and
// applies it as a crowd-factor observation. Continuous jobs watch the crowd
// condition, so that is the factor a trigger speaks to.
func (o *Orchestrator) handleTriggerEvent(ctx context.Context, payload types.VisionWebhookPayload) {
	zoneID, ok := o.store.FindZoneByJobID(payload.JobID)
	if !ok {
		o.logger.InfoContext(ctx, "dropping webhook for unknown job",
			"job_id", payload.JobID,
			"event", payload.EventType(),
		)
		return
	}

	observed := payload.Data != nil && payload.Data.Triggered
	var explanation, frame string
	if payload.Data != nil {
		explanation = payload.Data.Explanation
		frame = payload.Data.FrameB64
	}

	o.applyFactorObservation(zoneID, types.FactorCrowd, observed, explanation, frame)
	o.logger.InfoContext(ctx, "webhook trigger applied",
		"zone_id", zoneID,
		"job_id", payload.JobID,
		"triggered", observed,
	)
}

// handleJobStoppedEvent clears the zone's handle for a job the remote
// service reports as finished. The job is not restarted; resuming coverage
// is an explicit operator action.
func (o *Orchestrator) handleJobStoppedEvent(ctx context.Context, payload types.VisionWebhookPayload) {
	zoneID, ok := o.store.FindZoneByJobID(payload.JobID)
	if !ok {
		o.logger.InfoContext(ctx, "job stop for untracked job", "job_id", payload.JobID)
		return
	}

	zone, _ := o.store.Zone(zoneID)
	if zone.LiveMonitorJobID == payload.JobID {
		o.store.SetJobID(zoneID, types.JobLiveMonitor, "")
	}
	if zone.LiveDigestJobID == payload.JobID {
		o.store.SetJobID(zoneID, types.JobLiveDigest, "")
	}

	o.logger.InfoContext(ctx, "remote job stopped",
		"zone_id", zoneID,
		"job_id", payload.JobID,
		"status", payload.Status,
		"auto_stopped", payload.AutoStopped,
		"reason", payload.Reason,
	)
}
