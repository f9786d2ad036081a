package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"PunchClock/internal/cache"
	"PunchClock/internal/model"
	"PunchClock/internal/store"
	"PunchClock/pkg/logger"
	"PunchClock/pkg/metrics"
	"PunchClock/pkg/snowflake"
	"PunchClock/storage/mq"
	"PunchClock/utils"
)

var auditStore store.AuditStore

// SetAuditStore 注入审计存储，worker 启动时调用
func SetAuditStore(s store.AuditStore) {
	auditStore = s
}

// StartAllConsumers 启动全部消费者，阻塞到 ctx 结束
func StartAllConsumers(ctx context.Context) {
	go func() {
		if err := mq.Consume(mq.ConsumeOptions{
			Queue:         AuditQueue,
			ConsumerTag:   "punchclock-audit",
			PrefetchCount: 16,
			Handler:       handlePunchEventMessage,
		}); err != nil {
			logger.Logger.Error("Audit consumer stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
}

// handlePunchEventMessage 消费打卡事件：按 message_id 幂等去重后写审计表
func handlePunchEventMessage(body []byte) error {
	var msg model.PunchEventMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		// 无法解析的消息重投也不会成功，记日志后吞掉
		logger.Logger.Error("Failed to unmarshal punch event message",
			zap.ByteString("body", body),
			zap.Error(err),
		)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	first, err := cache.TryMarkMessageProcessing(ctx, msg.MessageID, 0)
	if err != nil {
		return fmt.Errorf("failed to check message dedupe mark: %w", err)
	}
	if !first {
		logger.Logger.Debug("Skipping duplicate punch event message",
			zap.String("message_id", msg.MessageID),
		)
		return nil
	}

	if err := appendAuditEvent(ctx, &msg); err != nil {
		// 处理失败释放标记，允许重投
		if unmarkErr := cache.UnmarkMessageProcessing(ctx, msg.MessageID); unmarkErr != nil {
			logger.Logger.Error("Failed to unmark message after failure",
				zap.String("message_id", msg.MessageID),
				zap.Error(unmarkErr),
			)
		}
		return err
	}

	if err := cache.MarkMessageProcessed(ctx, msg.MessageID, 0); err != nil {
		logger.Logger.Warn("Failed to mark message as processed",
			zap.String("message_id", msg.MessageID),
			zap.Error(err),
		)
	}

	metrics.EventConsumed(ctx, msg.EventKey)
	return nil
}

func appendAuditEvent(ctx context.Context, msg *model.PunchEventMessage) error {
	if auditStore == nil {
		return fmt.Errorf("audit store is not configured")
	}

	occurredAt, err := utils.ParseTimestamp(msg.OccurredAt)
	if err != nil {
		logger.Logger.Warn("Punch event message carries unparseable occurred_at, using now",
			zap.String("message_id", msg.MessageID),
			zap.String("occurred_at", msg.OccurredAt),
		)
		occurredAt = time.Now().UTC()
	}

	id, err := snowflake.NextID()
	if err != nil {
		return fmt.Errorf("failed to generate audit event ID: %w", err)
	}

	event := &model.PunchEvent{
		ID:         id,
		EventKey:   msg.EventKey,
		PunchID:    msg.PunchID,
		Identity:   msg.Identity,
		Kind:       msg.Kind,
		OccurredAt: occurredAt,
		RecordedAt: time.Now().UTC(),
	}

	if err := auditStore.Append(ctx, event); err != nil {
		return fmt.Errorf("failed to append audit event: %w", err)
	}

	logger.Logger.Info("Recorded punch audit event",
		zap.String("message_id", msg.MessageID),
		zap.String("event_key", msg.EventKey),
		zap.Int64("punch_id", msg.PunchID),
	)

	return nil
}
