package model

// PunchEventMessage 打卡事件消息体，推送到 punch.topic 交换机
type PunchEventMessage struct {
	MessageID   string    `json:"message_id"`
	EventKey    string    `json:"event_key"`
	PunchID     int64     `json:"punch_id,string"`
	Identity    string    `json:"identity,omitempty"`
	Kind        PunchKind `json:"kind"`
	OccurredAt  string    `json:"occurred_at"` // RFC3339
	Note        string    `json:"note,omitempty"`
	BatchID     string    `json:"batch_id,omitempty"` // 仅 punch.stale 扫描批次使用
	PublishedAt string    `json:"published_at"`
}
