package types

// Wire types for the Trio vision API. Field names follow the remote JSON
// contract (snake_case) and must not be renamed independently of it.

// VisionCheckResult is the response to a single-shot condition check.
// A check-once call does not consume a remote job slot.
type VisionCheckResult struct {
	Triggered   bool   `json:"triggered"`
	Explanation string `json:"explanation"`
	LatencyMS   int    `json:"latency_ms"`
}

// VisionJobHandle is returned when a continuous job is started.
type VisionJobHandle struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// VisionJobStats carries the remote service's per-job counters.
type VisionJobStats struct {
	ChecksPerformed    int    `json:"checks_performed"`
	TriggersFired      int    `json:"triggers_fired"`
	FramesSkipped      int    `json:"frames_skipped"`
	SummariesGenerated int    `json:"summaries_generated,omitempty"`
	AutoStopped        bool   `json:"auto_stopped"`
	Reason             string `json:"reason,omitempty"`
	ElapsedSeconds     int    `json:"elapsed_seconds,omitempty"`
}

// DigestOptions tunes a narrative digest job. Zero fields are omitted from
// the request and fall back to the remote service's defaults.
type DigestOptions struct {
	WindowMinutes          int `json:"window_minutes,omitempty"`
	CaptureIntervalSeconds int `json:"capture_interval_seconds,omitempty"`
}

// VisionJobFilter narrows a job listing. The zero value lists everything.
type VisionJobFilter struct {
	Status string // pending, running, stopped, completed, failed
	Type   string // live-monitor, live-digest
	Limit  int
}

// VisionJobInfo describes one remote job, as returned by the job listing
// and detail endpoints.
type VisionJobInfo struct {
	JobID     string          `json:"job_id"`
	Status    string          `json:"status"` // pending, running, stopped, completed, failed
	JobType   string          `json:"job_type"`
	StreamURL string          `json:"stream_url"`
	CreatedAt string          `json:"created_at"`
	Stats     *VisionJobStats `json:"stats,omitempty"`
}

// StreamValidation is the result of validating a stream locator.
type StreamValidation struct {
	Valid       bool   `json:"valid"`
	IsLive      bool   `json:"is_live"`
	Platform    string `json:"platform"`
	StreamID    string `json:"stream_id,omitempty"`
	Title       string `json:"title,omitempty"`
	Channel     string `json:"channel,omitempty"`
	ViewerCount int    `json:"viewer_count,omitempty"`
	ErrorHint   string `json:"error_hint,omitempty"`
}

// PrepareStreamResult caches a stream upstream and returns embed information.
type PrepareStreamResult struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Cached    bool   `json:"cached"`
	EmbedURL  string `json:"embed_url"`
	EmbedType string `json:"embed_type"`
}

// VisionTriggerData is the condition evaluation payload inside a webhook event.
type VisionTriggerData struct {
	Condition        string `json:"condition,omitempty"`
	Triggered        bool   `json:"triggered"`
	Explanation      string `json:"explanation,omitempty"`
	PrefilterSkipped bool   `json:"prefilter_skipped,omitempty"`
	FrameB64         string `json:"frame_b64,omitempty"`
}

// Webhook event types pushed by the vision provider. The provider has used
// both naming generations; both are accepted.
const (
	VisionEventWatchTriggered    = "watch_triggered"
	VisionEventLiveMonitorResult = "live_monitor_result"
	VisionEventJobStatus         = "job_status"
	VisionEventJobStopped        = "job_stopped"
	VisionEventJobStarted        = "job_started"
)

// VisionWebhookPayload is the inbound webhook envelope. Either Type or Event
// carries the event name depending on the provider's payload generation.
type VisionWebhookPayload struct {
	Type      string             `json:"type,omitempty"`
	Event     string             `json:"event,omitempty"`
	JobID     string             `json:"job_id" validate:"required"`
	StreamURL string             `json:"stream_url,omitempty"`
	Timestamp string             `json:"timestamp,omitempty"`
	Data      *VisionTriggerData `json:"data,omitempty"`

	// Job lifecycle fields.
	Status          string `json:"status,omitempty"`
	ChecksPerformed int    `json:"checks_performed,omitempty"`
	TriggersFired   int    `json:"triggers_fired,omitempty"`
	AutoStopped     bool   `json:"auto_stopped,omitempty"`
	Reason          string `json:"reason,omitempty"`
	ElapsedSeconds  int    `json:"elapsed_seconds,omitempty"`
}

// EventType normalizes the two payload generations to one event name.
func (p VisionWebhookPayload) EventType() string {
	if p.Type != "" {
		return p.Type
	}
	if p.Event != "" {
		return p.Event
	}
	return "unknown"
}
