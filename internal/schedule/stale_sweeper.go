package schedule

// 遗留打卡扫描：周期性找出开着太久没关的 punch_in，发 punch.stale 事件提醒下游

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"PunchClock/config"
	"PunchClock/internal/cache"
	"PunchClock/internal/model"
	"PunchClock/internal/queue"
	"PunchClock/internal/store"
	"PunchClock/pkg/logger"
	"PunchClock/pkg/metrics"
	"PunchClock/storage/database"
)

const (
	sweepLockKey  = "stale:sweep"
	sweepLockTTL  = 5 * time.Minute
	sweepPageSize = 500
)

var (
	sweeperOnce sync.Once
	sweeperInst *StaleSweeper
)

// StaleSweeper 扫描超过最大开卡时长仍未关闭的 punch_in
type StaleSweeper struct {
	logger *zap.Logger
	store  store.PunchStore

	sweepRunning  bool
	sweepMu       sync.Mutex
	lastSweepTime time.Time
}

func GetStaleSweeper() *StaleSweeper {
	sweeperOnce.Do(func() {
		sweeperInst = &StaleSweeper{
			logger: logger.Logger,
			store:  store.NewGormStore(database.DB()),
		}
	})
	return sweeperInst
}

// NewStaleSweeper 用显式依赖构造，测试用
func NewStaleSweeper(st store.PunchStore) *StaleSweeper {
	return &StaleSweeper{
		logger: logger.Logger,
		store:  st,
	}
}

// SweepStaleOpenPunches 扫描一轮遗留开卡并发布 punch.stale 事件。
// 通过分布式锁保证多实例部署时一轮只扫一份。
func (s *StaleSweeper) SweepStaleOpenPunches(ctx context.Context) error {
	s.sweepMu.Lock()
	if s.sweepRunning {
		s.sweepMu.Unlock()
		s.logger.Info("Stale sweep already running, skipping")
		return nil
	}
	s.sweepRunning = true
	s.sweepMu.Unlock()

	defer func() {
		s.sweepMu.Lock()
		s.sweepRunning = false
		s.sweepMu.Unlock()
	}()

	locked, err := cache.TryLock(ctx, sweepLockKey, sweepLockTTL)
	if err != nil {
		s.logger.Warn("Failed to acquire sweep lock", zap.Error(err))
		return fmt.Errorf("failed to acquire sweep lock: %w", err)
	}
	if !locked {
		s.logger.Info("Another instance holds the sweep lock, skipping")
		return nil
	}
	defer func() {
		if err := cache.Unlock(context.Background(), sweepLockKey); err != nil {
			s.logger.Warn("Failed to release sweep lock", zap.Error(err))
		}
	}()

	startTime := time.Now()
	s.lastSweepTime = startTime

	cutoff := startTime.Add(-config.Cfg.PunchMaxOpenAge).UTC()
	batchID := uuid.NewString()

	s.logger.Info("Starting stale open punch sweep",
		zap.Time("cutoff", cutoff),
		zap.String("batch_id", batchID),
	)

	stale, err := s.store.ListOpenBefore(ctx, cutoff, sweepPageSize)
	if err != nil {
		s.logger.Error("Failed to query stale open punches", zap.Error(err))
		return fmt.Errorf("failed to query stale open punches: %w", err)
	}

	if len(stale) == 0 {
		s.logger.Info("No stale open punches found")
		return nil
	}

	published := 0
	for i := range stale {
		rec := &stale[i]

		msg := model.PunchEventMessage{
			// 同一批次内消息 ID 可复算，重复扫描由消费端按 message_id 去重
			MessageID:   fmt.Sprintf("punch_stale_%d", rec.ID),
			EventKey:    model.EventKeyPunchStale,
			PunchID:     rec.ID,
			Identity:    rec.Identity,
			Kind:        rec.Kind,
			OccurredAt:  rec.OccurredAt.Format(time.RFC3339),
			Note:        rec.Note,
			BatchID:     batchID,
			PublishedAt: time.Now().UTC().Format(time.RFC3339),
		}

		if err := queue.PublishPunchEvent(msg); err != nil {
			s.logger.Error("Failed to publish stale punch event",
				zap.Int64("punch_id", rec.ID),
				zap.Error(err),
			)
			continue
		}

		metrics.StaleOpenDetected(ctx, 1)
		published++
	}

	s.logger.Info("Stale open punch sweep finished",
		zap.Int("found", len(stale)),
		zap.Int("published", published),
		zap.Duration("elapsed", time.Since(startTime)),
	)

	return nil
}
