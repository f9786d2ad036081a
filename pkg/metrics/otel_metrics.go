package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics OpenTelemetry 指标集合
type OTelMetrics struct {
	// 打卡相关指标
	PunchRecordedTotal  metric.Int64Counter
	PunchClosedTotal    metric.Int64Counter
	StaleOpenTotal      metric.Int64Counter
	EventPublishedTotal metric.Int64Counter
	EventConsumedTotal  metric.Int64Counter
}

var (
	// 全局指标实例
	metrics *OTelMetrics
	// meter 用于创建指标
	meter = otel.Meter("punchclock")
)

// InitMetrics 初始化 OpenTelemetry 指标
func InitMetrics() error {
	var err error

	metrics = &OTelMetrics{}

	metrics.PunchRecordedTotal, err = meter.Int64Counter(
		"punch_recorded_total",
		metric.WithDescription("Total number of punch records created"),
		metric.WithUnit("{punch}"),
	)
	if err != nil {
		return err
	}

	metrics.PunchClosedTotal, err = meter.Int64Counter(
		"punch_closed_total",
		metric.WithDescription("Total number of punch-ins closed by a punch-out"),
		metric.WithUnit("{punch}"),
	)
	if err != nil {
		return err
	}

	metrics.StaleOpenTotal, err = meter.Int64Counter(
		"punch_stale_open_total",
		metric.WithDescription("Total number of stale open punch-ins detected by the sweeper"),
		metric.WithUnit("{punch}"),
	)
	if err != nil {
		return err
	}

	metrics.EventPublishedTotal, err = meter.Int64Counter(
		"punch_event_published_total",
		metric.WithDescription("Total number of punch events published to the broker"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return err
	}

	metrics.EventConsumedTotal, err = meter.Int64Counter(
		"punch_event_consumed_total",
		metric.WithDescription("Total number of punch events consumed by the worker"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return err
	}

	return nil
}

// PunchRecorded 打卡写入计数
func PunchRecorded(ctx context.Context, kind string) {
	if metrics == nil {
		return
	}
	metrics.PunchRecordedTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// PunchClosed 打卡关闭计数
func PunchClosed(ctx context.Context) {
	if metrics == nil {
		return
	}
	metrics.PunchClosedTotal.Add(ctx, 1)
}

// StaleOpenDetected 遗留未关闭打卡计数
func StaleOpenDetected(ctx context.Context, count int64) {
	if metrics == nil {
		return
	}
	metrics.StaleOpenTotal.Add(ctx, count)
}

// EventPublished 事件发布计数
func EventPublished(ctx context.Context, eventKey string) {
	if metrics == nil {
		return
	}
	metrics.EventPublishedTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("event_key", eventKey)))
}

// EventConsumed 事件消费计数
func EventConsumed(ctx context.Context, eventKey string) {
	if metrics == nil {
		return
	}
	metrics.EventConsumedTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("event_key", eventKey)))
}
