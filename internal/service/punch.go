package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"PunchClock/config"
	"PunchClock/internal/model"
	"PunchClock/internal/queue"
	"PunchClock/internal/store"
	pkgerrors "PunchClock/pkg/errors"
	"PunchClock/pkg/logger"
	"PunchClock/pkg/metrics"
	"PunchClock/pkg/snowflake"
	"PunchClock/storage/database"
	"PunchClock/utils"
)

// EventPublisher 推送打卡事件，失败不影响请求本身
type EventPublisher func(msg model.PunchEventMessage) error

// Options 打卡策略，从配置快照而来，测试可自由构造
type Options struct {
	PairedMode          bool
	AllowMultipleOpen   bool
	RequireAuthForWrite bool
	DefaultListLimit    int
	MaxListLimit        int
}

// PunchService 打卡生命周期编排：写入校验、单开卡不变量、乐观关闭与列表查询
type PunchService struct {
	store   store.PunchStore
	publish EventPublisher
	opts    Options
}

var (
	punchService *PunchService
	punchOnce    sync.Once
)

// Punch 返回进程级单例，按配置接线 Postgres 存储与事件流
func Punch() *PunchService {
	punchOnce.Do(func() {
		punchService = NewPunchService(
			store.NewGormStore(database.DB()),
			queue.PublishPunchEvent,
			Options{
				PairedMode:          config.Cfg.PunchPairedMode,
				AllowMultipleOpen:   config.Cfg.AllowMultipleOpenPunches,
				RequireAuthForWrite: config.Cfg.RequireAuthForWrite,
				DefaultListLimit:    config.Cfg.ListDefaultLimit,
				MaxListLimit:        config.Cfg.ListMaxLimit,
			},
		)
	})

	return punchService
}

func NewPunchService(st store.PunchStore, publish EventPublisher, opts Options) *PunchService {
	return &PunchService{
		store:   st,
		publish: publish,
		opts:    opts,
	}
}

// RecordPunchIn 记录一次打卡。occurredAt 为调用方给出的事件时间；
// recorded_at 与 id 由本方法分配。identity 为空表示匿名打卡。
func (s *PunchService) RecordPunchIn(
	ctx context.Context,
	identity string,
	occurredAt string,
	note string,
) (*model.PunchRecord, error) {
	t, err := utils.ParseTimestamp(occurredAt)
	if err != nil {
		return nil, pkgerrors.InvalidTimestamp
	}

	if identity == "" && s.opts.RequireAuthForWrite {
		return nil, pkgerrors.Unauthorized
	}

	kind := model.PunchKindSingle
	if s.opts.PairedMode {
		kind = model.PunchKindIn

		if !s.opts.AllowMultipleOpen {
			_, err := s.store.FindMostRecentOpen(ctx, identity)
			switch {
			case err == nil:
				return nil, pkgerrors.PunchAlreadyOpen
			case !errors.Is(err, store.ErrNotFound):
				logger.Logger.Error("Failed to check open punch before punch-in",
					zap.String("identity", identity),
					zap.Error(err),
				)
				return nil, pkgerrors.StoreUnavailable
			}
		}
	}

	id, err := snowflake.NextID()
	if err != nil {
		return nil, pkgerrors.StoreUnavailable
	}

	rec := &model.PunchRecord{
		ID:         id,
		Kind:       kind,
		OccurredAt: t,
		RecordedAt: time.Now().UTC(),
		Note:       note,
		Identity:   identity,
	}

	if err := s.store.Insert(ctx, rec); err != nil {
		logger.Logger.Error("Failed to insert punch record",
			zap.Int64("punch_id", rec.ID),
			zap.Error(err),
		)
		return nil, pkgerrors.StoreUnavailable
	}

	metrics.PunchRecorded(ctx, string(kind))
	s.publishEvent(model.EventKeyPunchRecorded, rec)

	return rec, nil
}

// RecordPunchOut 关闭最近一次未关闭的 punch_in 并写入对应的 punch_out 记录。
// 关闭以“记录仍 open”为条件执行，两次并发 punch-out 至多一次成功，输掉的一方观察到 NoOpenPunch。
func (s *PunchService) RecordPunchOut(
	ctx context.Context,
	identity string,
	occurredAt string,
) (*model.PunchRecord, error) {
	if !s.opts.PairedMode {
		return nil, pkgerrors.PunchOutDisabled
	}

	t, err := utils.ParseTimestamp(occurredAt)
	if err != nil {
		return nil, pkgerrors.InvalidTimestamp
	}

	if identity == "" && s.opts.RequireAuthForWrite {
		return nil, pkgerrors.Unauthorized
	}

	open, err := s.store.FindMostRecentOpen(ctx, identity)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, pkgerrors.NoOpenPunch
		}
		logger.Logger.Error("Failed to locate open punch",
			zap.String("identity", identity),
			zap.Error(err),
		)
		return nil, pkgerrors.StoreUnavailable
	}

	outID, err := snowflake.NextID()
	if err != nil {
		return nil, pkgerrors.StoreUnavailable
	}

	open.ClosedBy = &outID
	open.ClosedAt = &t

	if err := s.store.Replace(ctx, open.ID, open); err != nil {
		if errors.Is(err, store.ErrConflict) {
			// 并发的另一次 punch-out 抢先关闭了这条记录
			return nil, pkgerrors.NoOpenPunch
		}
		logger.Logger.Error("Failed to close punch record",
			zap.Int64("punch_id", open.ID),
			zap.Error(err),
		)
		return nil, pkgerrors.StoreUnavailable
	}

	out := &model.PunchRecord{
		ID:         outID,
		Kind:       model.PunchKindOut,
		OccurredAt: t,
		RecordedAt: time.Now().UTC(),
		Identity:   identity,
	}

	if err := s.store.Insert(ctx, out); err != nil {
		// punch_in 已关闭但 punch_out 落库失败，closed_by 会悬空；记录现场供人工对账
		logger.Logger.Error("Failed to insert punch-out record after close",
			zap.Int64("punch_id", open.ID),
			zap.Int64("punch_out_id", outID),
			zap.Error(err),
		)
		return nil, pkgerrors.StoreUnavailable
	}

	metrics.PunchClosed(ctx)
	s.publishEvent(model.EventKeyPunchClosed, open)

	return open, nil
}

// ListPunches 按 recorded_at 降序（id 降序兜底）返回最近的打卡记录。
// limit 非正用默认值，超过上限被截断，调用方无法请求无界结果。
func (s *PunchService) ListPunches(
	ctx context.Context,
	limit int,
	identityFilter string,
) ([]model.PunchRecord, error) {
	if limit <= 0 {
		limit = s.opts.DefaultListLimit
	}
	if limit > s.opts.MaxListLimit {
		limit = s.opts.MaxListLimit
	}

	records, err := s.store.ListRecent(ctx, limit, identityFilter)
	if err != nil {
		logger.Logger.Error("Failed to list punch records", zap.Error(err))
		return nil, pkgerrors.StoreUnavailable
	}

	return records, nil
}

func (s *PunchService) publishEvent(eventKey string, rec *model.PunchRecord) {
	if s.publish == nil {
		return
	}

	msg := model.PunchEventMessage{
		EventKey:    eventKey,
		PunchID:     rec.ID,
		Identity:    rec.Identity,
		Kind:        rec.Kind,
		OccurredAt:  rec.OccurredAt.Format(time.RFC3339),
		Note:        rec.Note,
		PublishedAt: time.Now().UTC().Format(time.RFC3339),
	}

	if err := s.publish(msg); err != nil {
		logger.Logger.Warn("Failed to publish punch event",
			zap.String("event_key", eventKey),
			zap.Int64("punch_id", rec.ID),
			zap.Error(err),
		)
	}
}
