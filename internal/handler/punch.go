package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"PunchClock/config"
	"PunchClock/internal/middleware"
	"PunchClock/internal/model/dto"
	"PunchClock/internal/service"
	"PunchClock/pkg/response"
)

// PunchIn 记录一次打卡
// POST /api/punch, POST /api/punch-in
func PunchIn(ctx context.Context, c *app.RequestContext) {
	var req dto.PunchInRequest
	if err := c.Bind(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	identity, _ := middleware.GetIdentity(ctx, c)

	rec, err := service.Punch().RecordPunchIn(ctx, identity, req.Time, req.Note)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Created(ctx, c, dto.NewPunchResponse(rec, true))
}

// PunchOut 关闭最近一次未关闭的打卡
// POST /api/punch-out
func PunchOut(ctx context.Context, c *app.RequestContext) {
	var req dto.PunchOutRequest
	if err := c.Bind(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	identity, _ := middleware.GetIdentity(ctx, c)

	rec, err := service.Punch().RecordPunchOut(ctx, identity, req.Time)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.OK(ctx, c, dto.NewPunchResponse(rec, true))
}

// ListPunches 按时间倒序返回最近的打卡记录
// GET /api/punches
func ListPunches(ctx context.Context, c *app.RequestContext) {
	var query dto.ListPunchesQuery
	if err := c.Bind(&query); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	records, err := service.Punch().ListPunches(ctx, query.Limit, query.Identity)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	// 开放读路径不回传 identity，避免把邮箱之类的主体标识泄露给匿名调用方
	exposeIdentity := config.Cfg.RequireAuthForRead
	response.OK(ctx, c, dto.NewPunchListResponse(records, exposeIdentity))
}

// Health 存活探针
// GET /healthz
func Health(ctx context.Context, c *app.RequestContext) {
	response.OK(ctx, c, map[string]string{"status": "ok"})
}
