package store

import (
	"context"
	"errors"
	"time"

	"PunchClock/internal/model"
)

var (
	// ErrNotFound 查询无匹配记录
	ErrNotFound = errors.New("punch record not found")
	// ErrConflict 条件替换失败：目标记录已不处于 open 状态
	ErrConflict = errors.New("punch record was closed concurrently")
)

// PunchStore 打卡存储契约。service 只依赖该接口，
// 生产环境走 Postgres，测试注入内存实现。
//
// 一致性要求：Insert 确认后对后续读立即可见；Replace 仅作用于
// FindMostRecentOpen 返回过的记录，并以“记录仍处于 open 状态”为前置条件，
// 条件不满足返回 ErrConflict（乐观并发，防止两次并发 punch-out 关闭同一条记录）。
type PunchStore interface {
	Insert(ctx context.Context, rec *model.PunchRecord) error

	// FindMostRecentOpen 返回 identity 范围内最近创建的未关闭 punch_in；
	// identity 为空表示全局（匿名部署）。无匹配返回 ErrNotFound。
	FindMostRecentOpen(ctx context.Context, identity string) (*model.PunchRecord, error)

	// Replace 按 id 整体替换仍处于 open 状态的记录
	Replace(ctx context.Context, id int64, rec *model.PunchRecord) error

	// ListRecent 按 recorded_at 降序返回至多 limit 条记录，
	// recorded_at 相同时按 id 降序保证全序。identity 为空则不过滤。
	ListRecent(ctx context.Context, limit int, identity string) ([]model.PunchRecord, error)

	// ListOpenBefore 返回 recorded_at 早于 cutoff 且仍未关闭的 punch_in，供遗留扫描使用
	ListOpenBefore(ctx context.Context, cutoff time.Time, limit int) ([]model.PunchRecord, error)
}

// AuditStore 审计事件存储契约
type AuditStore interface {
	Append(ctx context.Context, event *model.PunchEvent) error
}
