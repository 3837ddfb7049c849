// Package metrics publishes operational counters for the monitoring loop.
// The default collector is a no-op; the CloudWatch publisher is enabled via
// configuration so local development needs no AWS credentials.
package metrics

import (
	"context"
	"time"
)

// Collector receives operational measurements from the orchestrator. All
// implementations must be safe for concurrent use and must never block the
// caller on network I/O failures.
type Collector interface {
	// CountChecks records single-shot vision checks performed.
	CountChecks(ctx context.Context, n int)
	// CountTriggers records vision conditions that evaluated true.
	CountTriggers(ctx context.Context, n int)
	// RecordBudgetUsage records current daily quota consumption.
	RecordBudgetUsage(ctx context.Context, checksUsed, liveMinutesUsed int)
	// RecordCycleDuration records how long one condition-poll cycle took.
	RecordCycleDuration(ctx context.Context, d time.Duration)
}

// Noop is a Collector that discards all measurements.
type Noop struct{}

func (Noop) CountChecks(context.Context, int)                   {}
func (Noop) CountTriggers(context.Context, int)                 {}
func (Noop) RecordBudgetUsage(context.Context, int, int)        {}
func (Noop) RecordCycleDuration(context.Context, time.Duration) {}
