package orchestrator

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"

	"shorewatch/internal/types"
)

// digestEvent is one SSE payload on a live-digest stream. The provider
// interleaves a job registration event with periodic scene summaries.
type digestEvent struct {
	Type      string `json:"type,omitempty"`
	JobID     string `json:"job_id,omitempty"`
	Summary   string `json:"summary,omitempty"`
	Narrative string `json:"narrative,omitempty"`
}

// consumeDigest reads SSE lines off a live-digest stream until the stream
// ends or ctx is cancelled. Only "data: " lines are meaningful; malformed
// payloads are skipped. A job_id event registers the digest handle; summary
// or narrative text is stored and surfaced as a digest alert.
func (o *Orchestrator) consumeDigest(ctx context.Context, zoneID string, body io.ReadCloser) {
	defer o.wg.Done()

	// The scanner blocks on reads; closing the body is the only way to
	// unblock it when the orchestrator stops.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			body.Close()
		case <-done:
		}
	}()
	defer body.Close()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		var event digestEvent
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event); err != nil {
			continue
		}

		if event.JobID != "" {
			o.store.SetJobID(zoneID, types.JobLiveDigest, event.JobID)
		}

		text := event.Narrative
		if text == "" {
			text = event.Summary
		}
		if text == "" {
			continue
		}

		o.store.SetDigestNarrative(zoneID, text)
		level := types.RiskLow
		if zone, ok := o.store.Zone(zoneID); ok {
			level = zone.Risk.Level
		}
		o.store.AddAlert(zoneID, newAlert(zoneID, types.AlertDigest, level, "Scene digest", text))
	}

	o.store.SetJobID(zoneID, types.JobLiveDigest, "")
	o.logger.InfoContext(ctx, "digest stream ended", "zone_id", zoneID)
}
