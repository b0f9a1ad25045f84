package heartbeat

import (
	"net/http"

	"github.com/danielolaviobr/ubio/internal/model/system"
	"github.com/danielolaviobr/ubio/internal/pkg/logger"

	"github.com/gin-gonic/gin"
)

// StatusCode 错误分类对应的 HTTP 状态码
func StatusCode(err error) int {
	switch {
	case system.IsBadRequest(err):
		return http.StatusBadRequest
	case system.IsPreconditionFailed(err):
		return http.StatusPreconditionFailed
	case system.IsStoreUnavailable(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError 记录日志并返回错误响应
// 4xx 记业务日志，5xx 记错误日志；5xx 不向客户端返回底层错误
func writeError(c *gin.Context, err error, requestID, clientIP, pathUrl string, extra map[string]interface{}) {
	code := StatusCode(err)
	resp := system.APIResponse{
		Code:    code,
		Status:  "failed",
		Message: system.PublicMessage(err),
	}

	if code >= http.StatusInternalServerError {
		logger.LogError(err, requestID, clientIP, pathUrl, c.Request.Method, extra)
	} else {
		logger.LogBusinessError(err, requestID, clientIP, pathUrl, c.Request.Method, extra)
		resp.Error = err.Error()
	}

	c.JSON(code, resp)
}
