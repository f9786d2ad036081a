package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"PunchClock/internal/model"
)

// GormStore 基于 gorm/Postgres 的打卡存储实现
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Insert(ctx context.Context, rec *model.PunchRecord) error {
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to insert punch record: %w", err)
	}
	return nil
}

func (s *GormStore) FindMostRecentOpen(ctx context.Context, identity string) (*model.PunchRecord, error) {
	q := s.db.WithContext(ctx).
		Where("kind = ? AND closed_by IS NULL", model.PunchKindIn)

	if identity != "" {
		q = q.Where("identity = ?", identity)
	}

	var rec model.PunchRecord
	err := q.Order("recorded_at DESC, id DESC").First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query open punch: %w", err)
	}

	return &rec, nil
}

func (s *GormStore) Replace(ctx context.Context, id int64, rec *model.PunchRecord) error {
	// closed_by IS NULL 作为替换守卫：并发的第二次 punch-out 会命中 0 行
	res := s.db.WithContext(ctx).
		Model(&model.PunchRecord{}).
		Where("id = ? AND closed_by IS NULL", id).
		Updates(map[string]interface{}{
			"closed_by": rec.ClosedBy,
			"closed_at": rec.ClosedAt,
		})

	if res.Error != nil {
		return fmt.Errorf("failed to replace punch record: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		return ErrConflict
	}

	return nil
}

func (s *GormStore) ListRecent(ctx context.Context, limit int, identity string) ([]model.PunchRecord, error) {
	q := s.db.WithContext(ctx).Model(&model.PunchRecord{})

	if identity != "" {
		q = q.Where("identity = ?", identity)
	}

	var records []model.PunchRecord
	// id 降序兜底，recorded_at 相同的记录也有全序
	err := q.Order("recorded_at DESC, id DESC").Limit(limit).Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list punch records: %w", err)
	}

	return records, nil
}

func (s *GormStore) ListOpenBefore(ctx context.Context, cutoff time.Time, limit int) ([]model.PunchRecord, error) {
	var records []model.PunchRecord
	err := s.db.WithContext(ctx).
		Where("kind = ? AND closed_by IS NULL AND recorded_at < ?", model.PunchKindIn, cutoff).
		Order("recorded_at ASC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list stale open punches: %w", err)
	}

	return records, nil
}

// GormAuditStore 审计事件的 gorm 实现
type GormAuditStore struct {
	db *gorm.DB
}

func NewGormAuditStore(db *gorm.DB) *GormAuditStore {
	return &GormAuditStore{db: db}
}

func (s *GormAuditStore) Append(ctx context.Context, event *model.PunchEvent) error {
	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to append punch event: %w", err)
	}
	return nil
}
