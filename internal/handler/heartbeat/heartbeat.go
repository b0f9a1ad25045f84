/**
 * 心跳接口
 * @date: 2026.10.14
 * @description: 心跳的刷新、删除与查询接口
 * @func:
 *   - ListActive  GET    /api/v1/heartbeats、/api/v1/heartbeats/:group
 *   - Refresh     POST   /api/v1/heartbeats/:group/:id
 *   - Delete      DELETE /api/v1/heartbeats/:group/:id
 */
package heartbeat

import (
	"context"
	"errors"
	"io"
	"net/http"

	hbModel "github.com/danielolaviobr/ubio/internal/model/heartbeat"
	"github.com/danielolaviobr/ubio/internal/model/system"
	"github.com/danielolaviobr/ubio/internal/pkg/logger"
	"github.com/danielolaviobr/ubio/internal/pkg/utils"

	"github.com/gin-gonic/gin"
)

// LifecycleService 心跳生命周期服务
type LifecycleService interface {
	Refresh(ctx context.Context, group, id string, meta hbModel.Meta) (*hbModel.HeartbeatView, error)
	Delete(ctx context.Context, group, id string) (*hbModel.HeartbeatView, error)
	ListActive(ctx context.Context, group string) ([]*hbModel.HeartbeatView, error)
}

// HeartbeatHandler 处理心跳相关的 HTTP 请求
type HeartbeatHandler struct {
	service LifecycleService
}

// NewHeartbeatHandler 创建 HeartbeatHandler 实例
func NewHeartbeatHandler(service LifecycleService) *HeartbeatHandler {
	return &HeartbeatHandler{service: service}
}

// ListActive 查询活跃心跳
// 路由: GET /api/v1/heartbeats 与 GET /api/v1/heartbeats/:group
func (h *HeartbeatHandler) ListActive(c *gin.Context) {
	clientIP := utils.GetClientIP(c)
	XRequestID := c.GetHeader("X-Request-ID")
	pathUrl := c.Request.URL.String()
	group := c.Param("group")

	views, err := h.service.ListActive(c.Request.Context(), group)
	if err != nil {
		writeError(c, err, XRequestID, clientIP, pathUrl, map[string]interface{}{
			"operation": "list_active",
			"group":     group,
		})
		return
	}

	c.JSON(http.StatusOK, system.APIResponse{
		Code:    http.StatusOK,
		Status:  "success",
		Message: "Heartbeats fetched successfully",
		Data: system.ListResponse{
			Total: len(views),
			Items: views,
		},
	})
}

// Refresh 创建或刷新心跳
// 路由: POST /api/v1/heartbeats/:group/:id
// 请求体: {"meta": {...}}，meta 可省略，默认为 {}
func (h *HeartbeatHandler) Refresh(c *gin.Context) {
	clientIP := utils.GetClientIP(c)
	XRequestID := c.GetHeader("X-Request-ID")
	pathUrl := c.Request.URL.String()
	group, id := c.Param("group"), c.Param("id")

	meta, err := parseRefreshBody(c)
	if err != nil {
		logger.LogBusinessError(err, XRequestID, clientIP, pathUrl, c.Request.Method, map[string]interface{}{
			"operation": "refresh",
			"option":    "paramValidation",
			"group":     group,
			"id":        id,
		})
		c.JSON(http.StatusBadRequest, system.APIResponse{
			Code:    http.StatusBadRequest,
			Status:  "failed",
			Message: system.ErrInvalidRequestBody.Message,
			Error:   err.Error(),
		})
		return
	}

	view, err := h.service.Refresh(c.Request.Context(), group, id, meta)
	if err != nil {
		writeError(c, err, XRequestID, clientIP, pathUrl, map[string]interface{}{
			"operation": "refresh",
			"group":     group,
			"id":        id,
		})
		return
	}

	logger.LogBusinessOperation("refresh", clientIP, XRequestID, "success", "Heartbeat refreshed", map[string]interface{}{
		"group": group,
		"id":    id,
	})
	c.JSON(http.StatusOK, system.APIResponse{
		Code:    http.StatusOK,
		Status:  "success",
		Message: "Heartbeat refreshed successfully",
		Data:    view,
	})
}

// Delete 软删除心跳
// 路由: DELETE /api/v1/heartbeats/:group/:id
func (h *HeartbeatHandler) Delete(c *gin.Context) {
	clientIP := utils.GetClientIP(c)
	XRequestID := c.GetHeader("X-Request-ID")
	pathUrl := c.Request.URL.String()
	group, id := c.Param("group"), c.Param("id")

	view, err := h.service.Delete(c.Request.Context(), group, id)
	if err != nil {
		writeError(c, err, XRequestID, clientIP, pathUrl, map[string]interface{}{
			"operation": "delete",
			"group":     group,
			"id":        id,
		})
		return
	}

	logger.LogBusinessOperation("delete", clientIP, XRequestID, "success", "Heartbeat deleted", map[string]interface{}{
		"group": group,
		"id":    id,
	})
	c.JSON(http.StatusOK, system.APIResponse{
		Code:    http.StatusOK,
		Status:  "success",
		Message: "Heartbeat deleted successfully",
		Data:    view,
	})
}

// parseRefreshBody 解析刷新请求体
// 空请求体与缺省/null 的 meta 交给服务层按 {} 处理；非对象的 meta 绑定失败
func parseRefreshBody(c *gin.Context) (hbModel.Meta, error) {
	var req hbModel.RefreshRequest
	if c.Request.Body == nil {
		return nil, nil
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	return req.Meta, nil
}
