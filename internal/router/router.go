package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"PunchClock/config"
	"PunchClock/internal/handler"
	"PunchClock/internal/middleware"
)

func Register(h *server.Hertz) {

	h.Use(middleware.RecoverMiddleware())
	h.Use(middleware.RequestIDMiddleware())
	h.Use(middleware.CORSMiddleware())
	h.Use(middleware.OpenTelemetryMiddleware())

	h.GET("/healthz", handler.Health)

	api := h.Group("/api")
	if config.Cfg.RateLimitEnabled {
		api.Use(middleware.GeneralRateLimitMiddleware())
	}

	// 写路径。按配置决定强制认证还是匿名可写
	writeAuth := middleware.OptionalAuth()
	if config.Cfg.RequireAuthForWrite {
		writeAuth = middleware.RequireAuth()
	}

	writes := api.Group("", writeAuth)
	if config.Cfg.RateLimitEnabled {
		writes.Use(middleware.WriteRateLimitMiddleware())
	}
	{
		writes.POST("/punch", handler.PunchIn)
		writes.POST("/punch-in", handler.PunchIn)
		if config.Cfg.PunchPairedMode {
			writes.POST("/punch-out", handler.PunchOut)
		}
	}

	// 读路径
	readAuth := middleware.OptionalAuth()
	if config.Cfg.RequireAuthForRead {
		readAuth = middleware.RequireAuth()
	}

	reads := api.Group("", readAuth)
	{
		reads.GET("/punches", handler.ListPunches)
	}
}
