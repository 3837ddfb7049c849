package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// CloudWatchClient abstracts the CloudWatch PutMetricData operation for
// testability.
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Compile-time assertion that CloudWatchCollector implements Collector.
var _ Collector = (*CloudWatchCollector)(nil)

// CloudWatchCollector publishes monitoring counters to AWS CloudWatch.
// Publish failures are logged and swallowed; metrics are never worth
// failing a poll cycle over.
//
// Metrics emitted:
//   - ChecksPerformed: Count -- single-shot vision checks
//   - TriggersFired: Count -- conditions that evaluated true
//   - CheckBudgetUsed / LiveMinutesUsed: Count -- daily quota consumption
//   - PollCycleDuration: Milliseconds -- wall time of one condition cycle
type CloudWatchCollector struct {
	client    CloudWatchClient
	namespace string
	logger    *slog.Logger
}

// NewCloudWatchCollector creates a collector publishing to the given
// CloudWatch namespace.
func NewCloudWatchCollector(client CloudWatchClient, namespace string, logger *slog.Logger) *CloudWatchCollector {
	return &CloudWatchCollector{
		client:    client,
		namespace: namespace,
		logger:    logger,
	}
}

func (m *CloudWatchCollector) put(ctx context.Context, data ...cwtypes.MetricDatum) {
	input := &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: data,
	}
	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		m.logger.ErrorContext(ctx, "failed to publish metrics",
			"error", err.Error(),
			"namespace", m.namespace,
		)
	}
}

func (m *CloudWatchCollector) CountChecks(ctx context.Context, n int) {
	if n == 0 {
		return
	}
	m.put(ctx, cwtypes.MetricDatum{
		MetricName: aws.String("ChecksPerformed"),
		Value:      aws.Float64(float64(n)),
		Unit:       cwtypes.StandardUnitCount,
	})
}

func (m *CloudWatchCollector) CountTriggers(ctx context.Context, n int) {
	if n == 0 {
		return
	}
	m.put(ctx, cwtypes.MetricDatum{
		MetricName: aws.String("TriggersFired"),
		Value:      aws.Float64(float64(n)),
		Unit:       cwtypes.StandardUnitCount,
	})
}

func (m *CloudWatchCollector) RecordBudgetUsage(ctx context.Context, checksUsed, liveMinutesUsed int) {
	m.put(ctx,
		cwtypes.MetricDatum{
			MetricName: aws.String("CheckBudgetUsed"),
			Value:      aws.Float64(float64(checksUsed)),
			Unit:       cwtypes.StandardUnitCount,
		},
		cwtypes.MetricDatum{
			MetricName: aws.String("LiveMinutesUsed"),
			Value:      aws.Float64(float64(liveMinutesUsed)),
			Unit:       cwtypes.StandardUnitCount,
		},
	)
}

func (m *CloudWatchCollector) RecordCycleDuration(ctx context.Context, d time.Duration) {
	m.put(ctx, cwtypes.MetricDatum{
		MetricName: aws.String("PollCycleDuration"),
		Value:      aws.Float64(float64(d.Milliseconds())),
		Unit:       cwtypes.StandardUnitMilliseconds,
	})
}
