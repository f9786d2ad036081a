package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"PunchClock/internal/model"
)

// MemoryStore 内存实现，供测试与本地演示注入。
// 语义与 GormStore 对齐：条件替换以记录仍 open 为前置。
type MemoryStore struct {
	mu      sync.Mutex
	records []model.PunchRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Insert(ctx context.Context, rec *model.PunchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, *rec)
	return nil
}

func (s *MemoryStore) FindMostRecentOpen(ctx context.Context, identity string) (*model.PunchRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var best *model.PunchRecord
	for i := range s.records {
		rec := &s.records[i]
		if !rec.IsOpen() {
			continue
		}
		if identity != "" && rec.Identity != identity {
			continue
		}
		if best == nil || moreRecent(rec, best) {
			best = rec
		}
	}

	if best == nil {
		return nil, ErrNotFound
	}

	out := *best
	return &out, nil
}

func (s *MemoryStore) Replace(ctx context.Context, id int64, rec *model.PunchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ID != id {
			continue
		}
		if !s.records[i].IsOpen() {
			return ErrConflict
		}
		s.records[i].ClosedBy = rec.ClosedBy
		s.records[i].ClosedAt = rec.ClosedAt
		return nil
	}

	return ErrConflict
}

func (s *MemoryStore) ListRecent(ctx context.Context, limit int, identity string) ([]model.PunchRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.PunchRecord, 0, len(s.records))
	for _, rec := range s.records {
		if identity != "" && rec.Identity != identity {
			continue
		}
		out = append(out, rec)
	}

	sort.Slice(out, func(i, j int) bool {
		return moreRecent(&out[i], &out[j])
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func (s *MemoryStore) ListOpenBefore(ctx context.Context, cutoff time.Time, limit int) ([]model.PunchRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.PunchRecord
	for _, rec := range s.records {
		if rec.IsOpen() && rec.RecordedAt.Before(cutoff) {
			out = append(out, rec)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].RecordedAt.Before(out[j].RecordedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

// Len 当前记录条数，测试用
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// recorded_at 降序，相同时按 id 降序保证全序
func moreRecent(a, b *model.PunchRecord) bool {
	if a.RecordedAt.Equal(b.RecordedAt) {
		return a.ID > b.ID
	}
	return a.RecordedAt.After(b.RecordedAt)
}

// MemoryAuditStore 审计事件的内存实现，测试用
type MemoryAuditStore struct {
	mu     sync.Mutex
	events []model.PunchEvent
}

func NewMemoryAuditStore() *MemoryAuditStore {
	return &MemoryAuditStore{}
}

func (s *MemoryAuditStore) Append(ctx context.Context, event *model.PunchEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, *event)
	return nil
}

// Events 返回已写入事件的副本
func (s *MemoryAuditStore) Events() []model.PunchEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.PunchEvent, len(s.events))
	copy(out, s.events)
	return out
}
