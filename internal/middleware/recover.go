package middleware

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"go.uber.org/zap"

	"PunchClock/config"
	"PunchClock/pkg/errors"
	"PunchClock/pkg/logger"
	"PunchClock/pkg/response"
)

// RecoverMiddleware 捕获 handler panic，记录日志并返回统一错误响应
func RecoverMiddleware() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		defer func() {
			if err := recover(); err != nil {
				handlePanic(ctx, c, err)
			}
		}()

		c.Next(ctx)
	}
}

// handlePanic 记录 panic 现场并写出响应
func handlePanic(ctx context.Context, c *app.RequestContext, err interface{}) {
	stack := getFormattedStack(debug.Stack())

	fields := []zap.Field{
		zap.String("panic", fmt.Sprintf("%v", err)),
		zap.String("path", string(c.Path())),
		zap.String("method", string(c.Method())),
		zap.String("client_ip", c.ClientIP()),
		zap.String("request_id", string(c.GetHeader("X-Request-Id"))),
		zap.ByteString("stack", stack),
	}

	if identity, exists := GetIdentity(ctx, c); exists {
		fields = append(fields, zap.String("identity", identity))
	}

	logger.Logger.Error("[PANIC RECOVERED]", fields...)

	if config.Cfg.IsProduction() {
		// 生产环境不暴露 panic 详情
		response.Error(ctx, c, &errors.Definition{
			Code:    "INTERNAL_SERVER_ERROR",
			Message: "internal server error",
		})
		return
	}

	response.ErrorWithDetails(ctx, c, errors.Definition{
		Code:    "INTERNAL_SERVER_ERROR",
		Message: fmt.Sprintf("internal error: %v", err),
	}, map[string]interface{}{
		"panic":     fmt.Sprintf("%v", err),
		"timestamp": time.Now().Format(time.RFC3339),
		"stack":     string(stack),
	})
}

// getFormattedStack 过滤 runtime 相关的冗余堆栈行
func getFormattedStack(stack []byte) []byte {
	if len(stack) == 0 {
		return nil
	}

	lines := strings.Split(string(stack), "\n")
	var filtered []string

	for i, line := range lines {
		if strings.Contains(line, "runtime/panic.go") ||
			strings.Contains(line, "runtime/debug/stack.go") {
			continue
		}
		if !strings.Contains(line, "/runtime/") && !strings.Contains(line, "src/runtime/") {
			if i < len(lines)-1 && strings.Contains(lines[i+1], "\tsrc/runtime/") {
				continue
			}
			filtered = append(filtered, line)
		}
	}

	return []byte(strings.Join(filtered, "\n"))
}
