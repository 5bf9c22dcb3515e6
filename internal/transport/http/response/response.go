package response

import (
	"github.com/gin-gonic/gin"
)

// Resp 统一响应包：{success, message, data, meta, stack}
type Resp struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Meta    any    `json:"meta,omitempty"`
	Stack   string `json:"stack,omitempty"` // 仅非生产环境
}

// OK 成功响应（msg 为空时使用 "OK"）
func OK(msg string, data any) Resp {
	return Resp{Success: true, Message: msgOf(200, msg), Data: data}
}

// Page 带分页信息的成功响应
func Page(msg string, data, meta any) Resp {
	r := OK(msg, data)
	r.Meta = meta
	return r
}

// Error 失败响应（可以传自定义 msg 覆盖默认）
func Error(code int, customMsg string) Resp {
	return Resp{Success: false, Message: msgOf(code, customMsg)}
}

// Abort 以真实 HTTP 状态码写出失败响应并终止后续 handler
func Abort(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, Error(code, msg))
}
