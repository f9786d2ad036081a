package dto

import (
	"time"

	"PunchClock/internal/model"
)

// ========== Punch 相关 DTO ==========

// PunchInRequest 打卡请求体。Time 为调用方时钟（或手工录入）的事件时间，
// 与服务端写入时间 recorded_at 是两个不同语义。
type PunchInRequest struct {
	Time string `json:"time"`
	Note string `json:"note,omitempty"`
}

// PunchOutRequest 下班打卡请求体
type PunchOutRequest struct {
	Time string `json:"time"`
}

// ListPunchesQuery 列表查询参数
type ListPunchesQuery struct {
	Limit    int    `query:"limit"`
	Identity string `query:"identity"`
}

// PunchResponse 打卡记录在线格式
type PunchResponse struct {
	ID         string     `json:"id"`
	Kind       string     `json:"kind"`
	OccurredAt time.Time  `json:"occurred_at"`
	RecordedAt time.Time  `json:"recorded_at"`
	Note       string     `json:"note,omitempty"`
	Identity   string     `json:"identity,omitempty"`
	ClosedBy   string     `json:"closed_by,omitempty"`
	ClosedAt   *time.Time `json:"closed_at,omitempty"`
}

// NewPunchResponse 将存储模型转为在线格式。
// exposeIdentity 为 false 时抹去 identity，避免未鉴权的读路径泄露邮箱。
func NewPunchResponse(rec *model.PunchRecord, exposeIdentity bool) PunchResponse {
	resp := PunchResponse{
		ID:         formatID(rec.ID),
		Kind:       string(rec.Kind),
		OccurredAt: rec.OccurredAt,
		RecordedAt: rec.RecordedAt,
		Note:       rec.Note,
		ClosedAt:   rec.ClosedAt,
	}

	if rec.ClosedBy != nil {
		resp.ClosedBy = formatID(*rec.ClosedBy)
	}

	if exposeIdentity {
		resp.Identity = rec.Identity
	}

	return resp
}

// NewPunchListResponse 批量转换，保持存储层给出的顺序
func NewPunchListResponse(records []model.PunchRecord, exposeIdentity bool) []PunchResponse {
	out := make([]PunchResponse, 0, len(records))
	for i := range records {
		out = append(out, NewPunchResponse(&records[i], exposeIdentity))
	}
	return out
}
