package heartbeat

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielolaviobr/ubio/internal/model/system"
	"github.com/danielolaviobr/ubio/internal/pkg/logger"
	"github.com/danielolaviobr/ubio/internal/pkg/utils"
	hbService "github.com/danielolaviobr/ubio/internal/service/heartbeat"

	"github.com/gin-gonic/gin"
)

// SweepRunner 立即执行一次过期清理
type SweepRunner interface {
	RunOnce(ctx context.Context) (*hbService.SweepResult, error)
}

// SweepHandler 手动触发过期清理
type SweepHandler struct {
	runner SweepRunner
}

// NewSweepHandler 创建 SweepHandler 实例
func NewSweepHandler(runner SweepRunner) *SweepHandler {
	return &SweepHandler{runner: runner}
}

// Run 立即执行一次清理
// 路由: POST /api/v1/sweeps
// 已有清理在执行时返回 409
func (h *SweepHandler) Run(c *gin.Context) {
	clientIP := utils.GetClientIP(c)
	XRequestID := c.GetHeader("X-Request-ID")
	pathUrl := c.Request.URL.String()

	result, err := h.runner.RunOnce(c.Request.Context())
	if err != nil {
		if errors.Is(err, hbService.ErrSweepInProgress) {
			logger.LogBusinessError(err, XRequestID, clientIP, pathUrl, c.Request.Method, map[string]interface{}{
				"operation": "sweep",
			})
			c.JSON(http.StatusConflict, system.APIResponse{
				Code:    http.StatusConflict,
				Status:  "failed",
				Message: err.Error(),
			})
			return
		}
		writeError(c, err, XRequestID, clientIP, pathUrl, map[string]interface{}{
			"operation": "sweep",
		})
		return
	}

	logger.LogBusinessOperation("sweep", clientIP, XRequestID, "success", "Sweep completed", map[string]interface{}{
		"swept":      result.Swept,
		"candidates": result.Candidates,
	})
	c.JSON(http.StatusOK, system.APIResponse{
		Code:    http.StatusOK,
		Status:  "success",
		Message: "Sweep completed successfully",
		Data:    result,
	})
}
