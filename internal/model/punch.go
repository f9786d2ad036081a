package model

import "time"

// PunchKind 打卡类型枚举
type PunchKind string

const (
	PunchKindSingle PunchKind = "single"    // 单次打卡，无配对
	PunchKindIn     PunchKind = "punch_in"  // 上班打卡
	PunchKindOut    PunchKind = "punch_out" // 下班打卡
)

// PunchRecord 打卡记录模型。记录只追加，唯一允许的变更是配对模式下
// punch_out 关闭 punch_in 时写入 closed_by/closed_at。
type PunchRecord struct {
	ID         int64      `gorm:"primaryKey" json:"id,string"`
	Kind       PunchKind  `gorm:"type:varchar(16);not null;index:idx_punches_kind_closed" json:"kind"`
	OccurredAt time.Time  `gorm:"type:timestamptz;not null" json:"occurred_at"`
	RecordedAt time.Time  `gorm:"type:timestamptz;not null;index:idx_punches_recorded_at,sort:desc" json:"recorded_at"`
	Note       string     `gorm:"type:text" json:"note,omitempty"`
	Identity   string     `gorm:"type:varchar(255);index:idx_punches_identity" json:"identity,omitempty"`
	ClosedBy   *int64     `gorm:"index:idx_punches_kind_closed" json:"closed_by,string,omitempty"`
	ClosedAt   *time.Time `gorm:"type:timestamptz" json:"closed_at,omitempty"`
}

// TableName 指定表名
func (PunchRecord) TableName() string {
	return "punches"
}

// IsOpen 是否为尚未关闭的 punch_in
func (p *PunchRecord) IsOpen() bool {
	return p.Kind == PunchKindIn && p.ClosedBy == nil
}
