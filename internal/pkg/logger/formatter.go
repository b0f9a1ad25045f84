// 日志格式化与分类记录
package logger

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// FormatTimestamp 格式化时间戳为统一的毫秒精度格式
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampFormat)
}

// NowFormatted 返回当前时间的格式化字符串
func NowFormatted() string {
	return FormatTimestamp(time.Now())
}

// LogType 日志类型枚举
type LogType string

const (
	// AccessLog 访问日志 - 记录HTTP请求
	AccessLog LogType = "access"
	// BusinessLog 业务日志 - 记录心跳刷新、删除等操作
	BusinessLog LogType = "business"
	// ErrorLog 错误日志 - 记录系统错误和异常
	ErrorLog LogType = "error"
	// SystemLog 系统日志 - 记录启动、关闭、组件状态
	SystemLog LogType = "system"
	// SweepLog 清理日志 - 记录过期清理任务的执行过程
	SweepLog LogType = "sweep"
)

// AccessEntry HTTP访问日志条目
type AccessEntry struct {
	TraceID       string        // 请求追踪ID
	Method        string        // HTTP方法
	URL           string        // 请求地址
	StatusCode    int           // 响应状态码
	ContentLength int           // 响应体大小
	UserAgent     string        // 用户代理
	ClientIP      string        // 客户端IP
	Duration      time.Duration // 处理耗时
}

// LogAccessStart 记录请求进入
func LogAccessStart(traceID, method, url, userAgent, clientIP string) {
	if LoggerInstance == nil {
		return
	}

	LoggerInstance.logger.WithFields(logrus.Fields{
		"type":       AccessLog,
		"trace_id":   traceID,
		"method":     method,
		"url":        url,
		"user_agent": userAgent,
		"client_ip":  clientIP,
	}).Info(fmt.Sprintf("[%s] %s %s %s %s", traceID, method, url, userAgent, clientIP))
}

// LogAccessDone 记录请求完成，包含状态码、响应大小和耗时
func LogAccessDone(entry AccessEntry) {
	if LoggerInstance == nil {
		return
	}

	fields := logrus.Fields{
		"type":           AccessLog,
		"trace_id":       entry.TraceID,
		"method":         entry.Method,
		"url":            entry.URL,
		"status_code":    entry.StatusCode,
		"content_length": entry.ContentLength,
		"user_agent":     entry.UserAgent,
		"client_ip":      entry.ClientIP,
		"duration":       entry.Duration.Milliseconds(),
	}

	msg := fmt.Sprintf("[%s] %s %s %d %d - %s %s duration: %dms",
		entry.TraceID, entry.Method, entry.URL, entry.StatusCode, entry.ContentLength,
		entry.UserAgent, entry.ClientIP, entry.Duration.Milliseconds())

	if entry.StatusCode >= 500 {
		LoggerInstance.logger.WithFields(fields).Warn(msg)
		return
	}
	LoggerInstance.logger.WithFields(fields).Info(msg)
}

// LogBusinessOperation 记录业务操作日志
func LogBusinessOperation(operation, clientIP, requestID, result, message string, extraFields map[string]interface{}) {
	if LoggerInstance == nil {
		return
	}

	fields := logrus.Fields{
		"type":       BusinessLog,
		"operation":  operation,
		"client_ip":  clientIP,
		"result":     result,
		"request_id": requestID,
	}
	for k, v := range extraFields {
		fields[k] = v
	}

	if result == "success" {
		LoggerInstance.logger.WithFields(fields).Info(message)
	} else {
		LoggerInstance.logger.WithFields(fields).Warn(message)
	}
}

// LogBusinessError 记录业务失败(参数错误、前置条件不满足等)，级别为 warn
func LogBusinessError(err error, requestID, clientIP, path, method string, extraFields map[string]interface{}) {
	if LoggerInstance == nil || err == nil {
		return
	}

	fields := logrus.Fields{
		"type":       BusinessLog,
		"result":     "failed",
		"error":      err.Error(),
		"request_id": requestID,
		"client_ip":  clientIP,
		"path":       path,
		"method":     method,
	}
	for k, v := range extraFields {
		fields[k] = v
	}

	LoggerInstance.logger.WithFields(fields).Warnf("Business operation failed: %s", err.Error())
}

// LogError 记录错误日志
// 用于记录存储不可用、内部异常等系统错误
func LogError(err error, requestID, clientIP, path, method string, extraFields map[string]interface{}) {
	if LoggerInstance == nil || err == nil {
		return
	}

	fields := logrus.Fields{
		"type":       ErrorLog,
		"error":      err.Error(),
		"request_id": requestID,
		"client_ip":  clientIP,
		"path":       path,
		"method":     method,
	}
	for k, v := range extraFields {
		fields[k] = v
	}

	LoggerInstance.logger.WithFields(fields).Errorf("System error occurred: %s", err.Error())
}

// LogSystemEvent 记录系统事件日志
// 用于记录系统启动、关闭、组件状态变化等系统级事件
func LogSystemEvent(component, event, message string, level logrus.Level, extraFields map[string]interface{}) {
	if LoggerInstance == nil {
		return
	}

	fields := logrus.Fields{
		"type":      SystemLog,
		"component": component,
		"event":     event,
	}
	for k, v := range extraFields {
		fields[k] = v
	}

	LoggerInstance.logger.WithFields(fields).Log(level, message)
}

// LogSweep 记录清理任务日志
func LogSweep(message string, extraFields map[string]interface{}) {
	if LoggerInstance == nil {
		return
	}

	fields := logrus.Fields{"type": SweepLog}
	for k, v := range extraFields {
		fields[k] = v
	}

	LoggerInstance.logger.WithFields(fields).Info(message)
}

// LogInfo 记录带来源信息的普通日志
func LogInfo(message, requestID, path, method string, extraFields map[string]interface{}) {
	if LoggerInstance == nil {
		return
	}

	fields := logrus.Fields{
		"type":       SystemLog,
		"request_id": requestID,
		"path":       path,
		"method":     method,
	}
	for k, v := range extraFields {
		fields[k] = v
	}

	LoggerInstance.logger.WithFields(fields).Info(message)
}

// LogWarn 记录带来源信息的警告日志
func LogWarn(message, requestID, path, method string, extraFields map[string]interface{}) {
	if LoggerInstance == nil {
		return
	}

	fields := logrus.Fields{
		"type":       SystemLog,
		"request_id": requestID,
		"path":       path,
		"method":     method,
	}
	for k, v := range extraFields {
		fields[k] = v
	}

	LoggerInstance.logger.WithFields(fields).Warn(message)
}
