package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"shorewatch/internal/types"
)

// VisionClient talks to the Trio vision analysis API. Three call families:
// single-shot condition checks (check-once), continuous webhook-driven jobs
// (live-monitor), and streaming digest jobs delivered over SSE (live-digest).
type VisionClient struct {
	base    *BaseClient
	baseURL string
	apiKey  types.SecretString
}

// VisionClientConfig configures a VisionClient.
type VisionClientConfig struct {
	BaseURL string
	APIKey  types.SecretString
	Timeout time.Duration
}

// NewVisionClient creates a vision API client with its own circuit breaker.
func NewVisionClient(cfg VisionClientConfig, opts ...BaseClientOption) *VisionClient {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	return &VisionClient{
		base:    NewBaseClient(httpClient, "vision-api", "shorewatch/1.0", opts...),
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}
}

func (c *VisionClient) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalUnexpected,
				"failed to encode vision request body", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected,
			"failed to build vision request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey.Unmask())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// doJSON executes the request and decodes a JSON response into out. Non-2xx
// responses that survived the retry layer (4xx) are mapped to AppErrors here.
func (c *VisionClient) doJSON(req *http.Request, out any) error {
	resp, err := c.base.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return types.NewAppError(types.ErrCodeUpstreamVision,
			fmt.Sprintf("vision API returned %d: %s", resp.StatusCode, string(snippet)), nil)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return types.NewAppError(types.ErrCodeUpstreamVision,
			"failed to decode vision API response", err)
	}
	return nil
}

type checkOnceRequest struct {
	StreamURL string `json:"stream_url"`
	Condition string `json:"condition"`
}

// CheckOnce performs a single-shot condition check against a stream. It does
// not consume a remote job slot; the caller accounts for quota usage.
func (c *VisionClient) CheckOnce(ctx context.Context, streamURL, condition string) (*types.VisionCheckResult, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/check-once", checkOnceRequest{
		StreamURL: streamURL,
		Condition: condition,
	})
	if err != nil {
		return nil, err
	}

	var result types.VisionCheckResult
	if err := c.doJSON(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type liveMonitorRequest struct {
	StreamURL     string `json:"stream_url"`
	Condition     string `json:"condition"`
	WebhookURL    string `json:"webhook_url"`
	CheckInterval int    `json:"check_interval_seconds,omitempty"`
}

// StartLiveMonitor registers a continuous condition-watch job. The remote
// service delivers trigger and lifecycle events to webhookURL; nothing is
// returned inline beyond the job handle.
func (c *VisionClient) StartLiveMonitor(ctx context.Context, streamURL, condition, webhookURL string) (*types.VisionJobHandle, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/live-monitor", liveMonitorRequest{
		StreamURL:  streamURL,
		Condition:  condition,
		WebhookURL: webhookURL,
	})
	if err != nil {
		return nil, err
	}

	var handle types.VisionJobHandle
	if err := c.doJSON(req, &handle); err != nil {
		return nil, err
	}
	if handle.JobID == "" {
		return nil, types.NewAppError(types.ErrCodeUpstreamVision,
			"live-monitor response carried no job id", nil)
	}
	return &handle, nil
}

type liveDigestRequest struct {
	StreamURL              string `json:"stream_url"`
	WindowMinutes          int    `json:"window_minutes,omitempty"`
	CaptureIntervalSeconds int    `json:"capture_interval_seconds,omitempty"`
}

// StartLiveDigest opens a scene-narration job and returns the raw SSE body.
// The caller owns the reader and must close it; closing it terminates the
// stream client-side. Digest jobs bypass the retry layer because a half-read
// event stream cannot be replayed.
func (c *VisionClient) StartLiveDigest(ctx context.Context, streamURL string, opts types.DigestOptions) (io.ReadCloser, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/live-digest", liveDigestRequest{
		StreamURL:              streamURL,
		WindowMinutes:          opts.WindowMinutes,
		CaptureIntervalSeconds: opts.CaptureIntervalSeconds,
	})
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	// Streaming responses have no overall deadline; rely on ctx cancellation.
	streamClient := &http.Client{Timeout: 0}
	resp, err := streamClient.Do(req)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamUnavailable,
			"failed to open live-digest stream", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, types.NewAppError(types.ErrCodeUpstreamVision,
			fmt.Sprintf("live-digest returned %d: %s", resp.StatusCode, string(snippet)), nil)
	}
	return resp.Body, nil
}

// GetJob fetches the current status of one remote job.
func (c *VisionClient) GetJob(ctx context.Context, jobID string) (*types.VisionJobInfo, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/jobs/"+url.PathEscape(jobID), nil)
	if err != nil {
		return nil, err
	}

	var info types.VisionJobInfo
	if err := c.doJSON(req, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

type jobListResponse struct {
	Jobs []types.VisionJobInfo `json:"jobs"`
}

// ListJobs returns the jobs the remote service knows about for this API key,
// narrowed by the filter's status/type/limit when set.
func (c *VisionClient) ListJobs(ctx context.Context, filter types.VisionJobFilter) ([]types.VisionJobInfo, error) {
	params := url.Values{}
	if filter.Status != "" {
		params.Set("status", filter.Status)
	}
	if filter.Type != "" {
		params.Set("type", filter.Type)
	}
	if filter.Limit > 0 {
		params.Set("limit", strconv.Itoa(filter.Limit))
	}
	path := "/jobs"
	if q := params.Encode(); q != "" {
		path += "?" + q
	}

	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var list jobListResponse
	if err := c.doJSON(req, &list); err != nil {
		return nil, err
	}
	return list.Jobs, nil
}

// CancelJob stops one remote job. Cancelling an already-stopped job is not
// an error from the caller's perspective.
func (c *VisionClient) CancelJob(ctx context.Context, jobID string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/jobs/"+url.PathEscape(jobID), nil)
	if err != nil {
		return err
	}
	return c.doJSON(req, nil)
}

// CancelAllRunning cancels every pending or running remote job. Used at
// startup and shutdown to reclaim orphaned job slots. Individual failures
// are collected, not fatal; the count of successfully cancelled jobs is
// returned alongside the first error.
func (c *VisionClient) CancelAllRunning(ctx context.Context) (int, error) {
	cancelled := 0
	var firstErr error
	for _, status := range []string{"running", "pending"} {
		jobs, err := c.ListJobs(ctx, types.VisionJobFilter{Status: status})
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		for _, job := range jobs {
			if err := c.CancelJob(ctx, job.JobID); err != nil {
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			cancelled++
		}
	}
	return cancelled, firstErr
}

type validateStreamRequest struct {
	StreamURL string `json:"stream_url"`
}

// ValidateStream checks whether a stream locator points at a live,
// analyzable stream.
func (c *VisionClient) ValidateStream(ctx context.Context, streamURL string) (*types.StreamValidation, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/validate-stream", validateStreamRequest{StreamURL: streamURL})
	if err != nil {
		return nil, err
	}

	var result types.StreamValidation
	if err := c.doJSON(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// PrepareStream asks the remote service to cache the stream for analysis and
// returns embed information for the dashboard.
func (c *VisionClient) PrepareStream(ctx context.Context, streamURL string) (*types.PrepareStreamResult, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/prepare-stream", validateStreamRequest{StreamURL: streamURL})
	if err != nil {
		return nil, err
	}

	var result types.PrepareStreamResult
	if err := c.doJSON(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
