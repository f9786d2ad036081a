package response

import (
	"context"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"

	"PunchClock/pkg/errors"
)

// ErrorResponse 统一的错误响应格式
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Details map[string]interface{} `json:"details,omitempty"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
}

// definitionOf 取出业务错误定义，值和指针两种传法都认
func definitionOf(err error) (errors.Definition, bool) {
	switch v := err.(type) {
	case errors.Definition:
		return v, true
	case *errors.Definition:
		return *v, true
	default:
		return errors.Definition{}, false
	}
}

func errorToHTTPStatus(err error) int {
	def, ok := definitionOf(err)
	if !ok {
		return http.StatusInternalServerError
	}

	// 根据错误码映射 HTTP 状态码
	switch def.Code {
	case "INVALID_INPUT":
		return http.StatusBadRequest // 400
	case "UNAUTHORIZED", "INVALID_CREDENTIAL":
		return http.StatusUnauthorized // 401
	case "NO_OPEN_PUNCH", "PUNCH_OUT_DISABLED":
		return http.StatusNotFound // 404
	case "PUNCH_ALREADY_OPEN":
		return http.StatusConflict // 409
	case "TOO_MANY_REQUESTS":
		return http.StatusTooManyRequests // 429
	case "STORE_UNAVAILABLE", "VERIFICATION_UNAVAILABLE":
		return http.StatusInternalServerError // 500，调用方退避后可重试
	default:
		return http.StatusInternalServerError // 500
	}
}

// Error 返回错误响应
func Error(ctx context.Context, c *app.RequestContext, err error) {
	ErrorWithDetails(ctx, c, err, nil)
}

func ErrorWithDetails(ctx context.Context, c *app.RequestContext, err error, details map[string]interface{}) {
	statusCode := errorToHTTPStatus(err)

	var code, message string
	if def, ok := definitionOf(err); ok {
		code = def.Code
		message = def.Message
	} else {
		code = "INTERNAL_ERROR"
		message = err.Error()
	}

	c.JSON(statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// OK 返回 200，body 为数据本身（打卡记录在线格式不包壳）
func OK(ctx context.Context, c *app.RequestContext, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created 返回 201 及新建的记录
func Created(ctx context.Context, c *app.RequestContext, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

func BindError(ctx context.Context, c *app.RequestContext, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: ErrorDetail{
			Code:    "INVALID_INPUT",
			Message: err.Error(),
		},
	})
}

// NoContent 返回 204 No Content
func NoContent(ctx context.Context, c *app.RequestContext) {
	c.Status(http.StatusNoContent)
}
