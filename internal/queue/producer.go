package queue

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"PunchClock/internal/model"
	"PunchClock/pkg/logger"
	"PunchClock/pkg/metrics"
	"PunchClock/pkg/snowflake"
	"PunchClock/storage/mq"
)

// Exchange 与 routing key 约定：事件按 event_key 路由，
// 审计 worker 绑定 punch.* 全量消费
const (
	PunchExchange   = "punch.topic"
	AuditQueue      = "punch.audit"
	AuditBindingKey = "punch.*"
)

// PublishPunchEvent 发布打卡事件。消息持久化投递，MessageID 缺省时补一个
// 雪花 ID 供消费端幂等去重。
func PublishPunchEvent(msg model.PunchEventMessage) error {
	if msg.MessageID == "" {
		id, err := snowflake.NextID()
		if err != nil {
			logger.Logger.Error("Failed to generate message ID",
				zap.String("event_key", msg.EventKey),
				zap.Error(err),
			)
			return fmt.Errorf("failed to generate message ID: %w", err)
		}
		msg.MessageID = fmt.Sprintf("punch_evt_%d", id)
	}

	err := mq.PublishMessage(
		PunchExchange, // exchange
		msg.EventKey,  // routing key
		msg,           // body
	)

	if err != nil {
		logger.Logger.Error("Failed to publish punch event",
			zap.String("message_id", msg.MessageID),
			zap.String("event_key", msg.EventKey),
			zap.Int64("punch_id", msg.PunchID),
			zap.Error(err),
		)
		return err
	}

	metrics.EventPublished(context.Background(), msg.EventKey)

	logger.Logger.Info("Published punch event",
		zap.String("message_id", msg.MessageID),
		zap.String("event_key", msg.EventKey),
		zap.Int64("punch_id", msg.PunchID),
	)

	return nil
}
