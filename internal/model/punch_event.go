package model

import "time"

// 审计事件类型
const (
	EventKeyPunchRecorded = "punch.recorded"
	EventKeyPunchClosed   = "punch.closed"
	EventKeyPunchStale    = "punch.stale"
)

// PunchEvent 打卡审计事件，由 worker 消费事件流后落库
type PunchEvent struct {
	ID         int64     `gorm:"primaryKey" json:"id,string"`
	EventKey   string    `gorm:"type:varchar(32);not null;index:idx_punch_events_key" json:"event_key"`
	PunchID    int64     `gorm:"not null;index:idx_punch_events_punch" json:"punch_id,string"`
	Identity   string    `gorm:"type:varchar(255)" json:"identity,omitempty"`
	Kind       PunchKind `gorm:"type:varchar(16)" json:"kind,omitempty"`
	OccurredAt time.Time `gorm:"type:timestamptz;not null" json:"occurred_at"`
	RecordedAt time.Time `gorm:"type:timestamptz;not null" json:"recorded_at"`
}

// TableName 指定表名
func (PunchEvent) TableName() string {
	return "punch_events"
}
