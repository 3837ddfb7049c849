// Package orchestrator drives the monitoring lifecycle: starting and
// stopping the system, the condition-poll and environmental refresh loops,
// continuous vision jobs, and inbound webhook dispatch. It owns its timers
// and goroutines; all state lives in the store, all scoring in the risk
// engine. One orchestrator instance exists per process.
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"shorewatch/internal/config"
	"shorewatch/internal/metrics"
	"shorewatch/internal/store"
	"shorewatch/internal/types"
)

// Digest job tuning: a short rolling window with sparse captures keeps the
// narrative current without burning the job's auto-expiry budget on frames.
const (
	digestWindowMinutes          = 3
	digestCaptureIntervalSeconds = 30
)

// VisionAPI is the subset of the vision client the orchestrator depends on.
type VisionAPI interface {
	CheckOnce(ctx context.Context, streamURL, condition string) (*types.VisionCheckResult, error)
	StartLiveMonitor(ctx context.Context, streamURL, condition, webhookURL string) (*types.VisionJobHandle, error)
	StartLiveDigest(ctx context.Context, streamURL string, opts types.DigestOptions) (io.ReadCloser, error)
	ListJobs(ctx context.Context, filter types.VisionJobFilter) ([]types.VisionJobInfo, error)
	CancelJob(ctx context.Context, jobID string) error
	CancelAllRunning(ctx context.Context) (int, error)
}

// EnvironmentalAPI is the subset of the NOAA client the orchestrator
// depends on.
type EnvironmentalAPI interface {
	FetchEnvironmental(ctx context.Context, zone types.ZoneConfig) (*types.EnvironmentalData, error)
}

// Config wires an Orchestrator's collaborators and tuning.
type Config struct {
	Store         *store.Store
	Vision        VisionAPI
	Environmental EnvironmentalAPI
	Metrics       metrics.Collector
	Logger        *slog.Logger
	// WebhookURL is the externally reachable callback URL registered with
	// continuous vision jobs.
	WebhookURL string
	Polling    config.PollingConfig
	Budget     config.BudgetConfig
}

// Orchestrator coordinates polling, continuous jobs, and webhook events.
// The zero value is not usable; construct with New. All exported methods are
// safe for concurrent use.
type Orchestrator struct {
	store      *store.Store
	vision     VisionAPI
	env        EnvironmentalAPI
	metrics    metrics.Collector
	logger     *slog.Logger
	webhookURL string
	polling    config.PollingConfig
	budget     config.BudgetConfig

	mu      sync.Mutex
	running bool
	// pollStop and envStop close to terminate the respective loop goroutine.
	pollStop chan struct{}
	envStop  chan struct{}
	// digestCancel tears down the active digest stream consumer, if any.
	digestCancel context.CancelFunc
	wg           sync.WaitGroup

	// rotation alternates the polled condition between cycles; rrIndex walks
	// zones round-robin in conservative mode.
	rotation int
	rrIndex  int

	sleepFn func(time.Duration) // injectable for tests
}

// New creates an Orchestrator in the stopped state.
func New(cfg Config) *Orchestrator {
	m := cfg.Metrics
	if m == nil {
		m = metrics.Noop{}
	}
	return &Orchestrator{
		store:      cfg.Store,
		vision:     cfg.Vision,
		env:        cfg.Environmental,
		metrics:    m,
		logger:     cfg.Logger,
		webhookURL: cfg.WebhookURL,
		polling:    cfg.Polling,
		budget:     cfg.Budget,
		sleepFn:    time.Sleep,
	}
}

// Running reports whether the monitoring loops are active.
func (o *Orchestrator) Running() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.running
}

// StartAll brings the system from stopped to running: marks the store
// initialized, marks streamable zones online, runs one environmental fetch,
// best-effort starts one continuous monitor on the first online zone, and
// installs the poll and environmental tickers. Idempotent; calling on a
// running system is a no-op.
func (o *Orchestrator) StartAll(ctx context.Context) ([]string, string, error) {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return nil, "monitoring already running", nil
	}
	o.running = true
	o.pollStop = make(chan struct{})
	o.envStop = make(chan struct{})
	o.mu.Unlock()

	o.store.MarkInitialized()

	online := 0
	for _, z := range o.store.EnabledZones() {
		if z.Config.StreamURL != "" {
			o.store.SetStreamOnline(z.Config.ID, true)
			online++
		}
	}

	// Prime sensor data before the first poll so scores reflect conditions
	// immediately. Failures are logged inside the cycle.
	o.runEnvironmentalCycle(ctx)

	// One continuous monitor on the first online zone; the rest are covered
	// by polling. Best effort: a vision outage must not block startup.
	var jobIDs []string
	for _, z := range o.store.EnabledZones() {
		if !z.StreamOnline {
			continue
		}
		jobID, err := o.startLiveMonitorJob(ctx, z.Config)
		if err != nil {
			o.logger.ErrorContext(ctx, "startup live monitor failed",
				"zone_id", z.Config.ID,
				"error", err.Error(),
			)
			o.store.AddError(fmt.Sprintf("startup live monitor failed for %s: %v", z.Config.ID, err))
			break
		}
		jobIDs = append(jobIDs, jobID)
		break
	}

	o.mu.Lock()
	pollStop, envStop := o.pollStop, o.envStop
	o.mu.Unlock()

	o.wg.Add(2)
	go o.pollLoop(pollStop, o.pollInterval())
	go o.envLoop(envStop)

	msg := fmt.Sprintf("monitoring started: %d zones online, %d live jobs", online, len(jobIDs))
	o.logger.InfoContext(ctx, "monitoring started",
		"zones_online", online,
		"live_jobs", len(jobIDs),
		"mode", string(o.store.Budget().Mode),
	)
	return jobIDs, msg, nil
}

// StopAll tears the system down: stops the loops, cancels all remote jobs
// best-effort, and resets the store. Idempotent and safe when stopped.
func (o *Orchestrator) StopAll(ctx context.Context) error {
	o.mu.Lock()
	wasRunning := o.running
	o.running = false
	pollStop, envStop := o.pollStop, o.envStop
	o.pollStop, o.envStop = nil, nil
	digestCancel := o.digestCancel
	o.digestCancel = nil
	o.mu.Unlock()

	if pollStop != nil {
		close(pollStop)
	}
	if envStop != nil {
		close(envStop)
	}
	if digestCancel != nil {
		digestCancel()
	}
	if wasRunning {
		o.wg.Wait()
	}

	if cancelled, err := o.vision.CancelAllRunning(ctx); err != nil {
		o.logger.ErrorContext(ctx, "failed to cancel remote jobs on stop",
			"cancelled", cancelled,
			"error", err.Error(),
		)
	} else if cancelled > 0 {
		o.logger.InfoContext(ctx, "cancelled remote jobs", "count", cancelled)
	}

	o.store.Reset()
	o.logger.InfoContext(ctx, "monitoring stopped")
	return nil
}

// EnableDemoMode switches condition polling to broad, fast-cadence demo
// mode. Only the poll ticker is reinstalled; system state and the
// environmental ticker are untouched. Fails when the system is stopped.
func (o *Orchestrator) EnableDemoMode(ctx context.Context) error {
	return o.switchMode(ctx, types.ModeDemo)
}

// DisableDemoMode demotes polling back to conservative mode. This is a mode
// change, not a system stop; monitoring continues at the slower cadence.
func (o *Orchestrator) DisableDemoMode(ctx context.Context) error {
	return o.switchMode(ctx, types.ModeConservative)
}

func (o *Orchestrator) switchMode(ctx context.Context, mode types.MonitorMode) error {
	o.mu.Lock()
	if !o.running {
		o.mu.Unlock()
		return types.NewAppError(types.ErrCodeConflictNotRunning,
			"cannot change polling mode while monitoring is stopped", nil)
	}
	oldStop := o.pollStop
	o.pollStop = make(chan struct{})
	newStop := o.pollStop
	o.mu.Unlock()

	o.store.SetMode(mode)
	close(oldStop)

	o.wg.Add(1)
	go o.pollLoop(newStop, o.pollInterval())

	o.logger.InfoContext(ctx, "polling mode changed", "mode", string(mode))
	return nil
}

// pollInterval returns the condition-poll cadence for the current mode.
func (o *Orchestrator) pollInterval() time.Duration {
	if o.store.Budget().Mode == types.ModeDemo {
		return o.polling.DemoInterval
	}
	return o.polling.ConservativeInterval
}

// TriggerLiveMonitor starts (or restarts) the continuous condition-watch job
// for a zone, charging the fixed per-trigger minute cost. Rejected when the
// live-minutes quota would be exceeded.
func (o *Orchestrator) TriggerLiveMonitor(ctx context.Context, zoneID string) (string, error) {
	zone, ok := o.store.Zone(zoneID)
	if !ok {
		return "", types.NewAppError(types.ErrCodeNotFoundZone,
			fmt.Sprintf("unknown zone %q", zoneID), nil)
	}
	if zone.Config.StreamURL == "" {
		return "", types.NewAppError(types.ErrCodeConflictStreamOffline,
			fmt.Sprintf("zone %q has no live stream", zoneID), nil)
	}
	if err := o.checkLiveBudget(); err != nil {
		return "", err
	}

	// The remote API allows one concurrent job: release whatever is tracked,
	// in any zone, before requesting a new slot.
	o.cancelTrackedJobs(ctx)

	jobID, err := o.startLiveMonitorJob(ctx, zone.Config)
	if err != nil {
		return "", err
	}
	o.refreshActiveJobCount(ctx)
	return jobID, nil
}

// startLiveMonitorJob registers the remote job, records the handle, and
// charges the fixed minute cost. The charge is a deliberate approximation
// matching the remote service's auto-expiry window, not metered usage.
func (o *Orchestrator) startLiveMonitorJob(ctx context.Context, zone types.ZoneConfig) (string, error) {
	handle, err := o.vision.StartLiveMonitor(ctx, zone.StreamURL, config.ConditionCrowd, o.webhookURL)
	if err != nil {
		return "", err
	}

	o.store.SetJobID(zone.ID, types.JobLiveMonitor, handle.JobID)
	o.store.AddLiveMinutes(o.budget.LiveMinuteCharge)

	budget := o.store.Budget()
	o.metrics.RecordBudgetUsage(ctx, budget.CheckOnceUsed, budget.LiveMinutesUsed)
	o.logger.InfoContext(ctx, "live monitor started",
		"zone_id", zone.ID,
		"job_id", handle.JobID,
		"live_minutes_used", budget.LiveMinutesUsed,
	)
	return handle.JobID, nil
}

// TriggerLiveDigest starts (or restarts) the scene-narration stream for a
// zone, charging the fixed per-trigger minute cost.
func (o *Orchestrator) TriggerLiveDigest(ctx context.Context, zoneID string) error {
	zone, ok := o.store.Zone(zoneID)
	if !ok {
		return types.NewAppError(types.ErrCodeNotFoundZone,
			fmt.Sprintf("unknown zone %q", zoneID), nil)
	}
	if zone.Config.StreamURL == "" {
		return types.NewAppError(types.ErrCodeConflictStreamOffline,
			fmt.Sprintf("zone %q has no live stream", zoneID), nil)
	}
	if err := o.checkLiveBudget(); err != nil {
		return err
	}

	// Same single-slot rule as TriggerLiveMonitor.
	o.cancelTrackedJobs(ctx)

	body, err := o.vision.StartLiveDigest(ctx, zone.Config.StreamURL, types.DigestOptions{
		WindowMinutes:          digestWindowMinutes,
		CaptureIntervalSeconds: digestCaptureIntervalSeconds,
	})
	if err != nil {
		return err
	}

	o.mu.Lock()
	if o.digestCancel != nil {
		o.digestCancel()
	}
	digestCtx, cancel := context.WithCancel(context.Background())
	o.digestCancel = cancel
	o.mu.Unlock()

	o.store.AddLiveMinutes(o.budget.LiveMinuteCharge)

	o.wg.Add(1)
	go o.consumeDigest(digestCtx, zoneID, body)

	o.logger.InfoContext(ctx, "live digest started", "zone_id", zoneID)
	return nil
}

// cancelTrackedJobs releases every remote job the store is tracking, across
// all zones and both job types, and clears the handles so stale ids can no
// longer correlate webhooks. Handles are cleared even when the cancel call
// fails; the shutdown sweep reclaims anything left running remotely.
func (o *Orchestrator) cancelTrackedJobs(ctx context.Context) {
	for _, z := range o.store.AllZones() {
		if z.LiveMonitorJobID != "" {
			o.releaseJob(ctx, z.Config.ID, types.JobLiveMonitor, z.LiveMonitorJobID)
		}
		if z.LiveDigestJobID != "" {
			o.releaseJob(ctx, z.Config.ID, types.JobLiveDigest, z.LiveDigestJobID)
		}
	}
}

func (o *Orchestrator) releaseJob(ctx context.Context, zoneID string, jobType types.JobType, jobID string) {
	if err := o.vision.CancelJob(ctx, jobID); err != nil {
		o.logger.ErrorContext(ctx, "failed to cancel tracked job",
			"zone_id", zoneID,
			"job_id", jobID,
			"error", err.Error(),
		)
	}
	o.store.SetJobID(zoneID, jobType, "")
}

// checkLiveBudget rejects a live-job trigger when charging the fixed cost
// would exceed the daily live-minutes quota.
func (o *Orchestrator) checkLiveBudget() error {
	budget := o.store.Budget()
	if budget.LiveMinutesUsed+o.budget.LiveMinuteCharge > o.budget.DailyLiveMinutes {
		return types.NewAppError(types.ErrCodeLimitLiveMinutes,
			fmt.Sprintf("daily live-minutes quota exhausted (%d/%d used)",
				budget.LiveMinutesUsed, o.budget.DailyLiveMinutes), nil)
	}
	return nil
}

// refreshActiveJobCount asks the remote service how many jobs are live and
// records the count. Best effort; failures are only logged.
func (o *Orchestrator) refreshActiveJobCount(ctx context.Context) {
	jobs, err := o.vision.ListJobs(ctx, types.VisionJobFilter{})
	if err != nil {
		o.logger.ErrorContext(ctx, "failed to refresh active job count", "error", err.Error())
		return
	}
	active := 0
	for _, j := range jobs {
		if j.Status == "running" || j.Status == "pending" {
			active++
		}
	}
	o.store.SetActiveJobCount(active)
}

// newAlert builds an alert feed entry stamped now.
func newAlert(zoneID string, alertType types.AlertType, level types.RiskLevel, title, description string) types.AlertEntry {
	return types.AlertEntry{
		ID:          uuid.NewString(),
		ZoneID:      zoneID,
		Timestamp:   time.Now().UTC(),
		Type:        alertType,
		Title:       title,
		Description: description,
		RiskLevel:   level,
	}
}
