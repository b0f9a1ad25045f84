/**
 * 模型:错误定义
 * @date: 2026.10.12
 * @description: 心跳服务的错误分类，供 handler 映射 HTTP 状态码
 * @func:
 *   - HeartbeatError 带分类的业务错误
 *   - IsBadRequest / IsPreconditionFailed / IsStoreUnavailable 分类判断
 */
package system

import (
	"errors"
	"fmt"
)

// ErrorKind 错误分类
type ErrorKind string

const (
	// KindBadRequest 请求引用了不存在的记录或参数不合法
	KindBadRequest ErrorKind = "bad_request"
	// KindPreconditionFailed 对终态(已删除)记录执行刷新
	KindPreconditionFailed ErrorKind = "precondition_failed"
	// KindStoreUnavailable 存储访问失败，原样向上传递，不做重试
	KindStoreUnavailable ErrorKind = "store_unavailable"
)

// HeartbeatError 带分类的错误
type HeartbeatError struct {
	Kind    ErrorKind // 错误分类
	Message string    // 对外错误信息
	Err     error     // 底层错误
}

// Error 实现error接口
func (e *HeartbeatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap 支持 errors.Is / errors.As 穿透到底层错误
func (e *HeartbeatError) Unwrap() error {
	return e.Err
}

// NewBadRequestError 创建参数错误
func NewBadRequestError(message string) *HeartbeatError {
	return &HeartbeatError{Kind: KindBadRequest, Message: message}
}

// NewPreconditionFailedError 创建前置条件错误
func NewPreconditionFailedError(message string) *HeartbeatError {
	return &HeartbeatError{Kind: KindPreconditionFailed, Message: message}
}

// NewStoreUnavailableError 包装存储层错误
func NewStoreUnavailableError(op string, err error) *HeartbeatError {
	return &HeartbeatError{Kind: KindStoreUnavailable, Message: "store unavailable: " + op, Err: err}
}

// 心跳相关错误
var (
	// ErrHeartbeatDeleted 刷新已删除的心跳
	ErrHeartbeatDeleted = NewPreconditionFailedError("heartbeat deleted")
	// ErrInvalidGroupOrID group/id 为空、超长或记录不存在
	ErrInvalidGroupOrID = NewBadRequestError("invalid group or id")
	// ErrInvalidRequestBody 请求体不是合法的 JSON 或 meta 不是对象
	ErrInvalidRequestBody = NewBadRequestError("invalid request body")
)

// kindOf 提取错误分类，非 HeartbeatError 返回空
func kindOf(err error) ErrorKind {
	var he *HeartbeatError
	if errors.As(err, &he) {
		return he.Kind
	}
	return ""
}

// IsBadRequest 检查是否为参数错误
func IsBadRequest(err error) bool {
	return kindOf(err) == KindBadRequest
}

// IsPreconditionFailed 检查是否为前置条件错误
func IsPreconditionFailed(err error) bool {
	return kindOf(err) == KindPreconditionFailed
}

// IsStoreUnavailable 检查是否为存储不可用错误
func IsStoreUnavailable(err error) bool {
	return kindOf(err) == KindStoreUnavailable
}

// PublicMessage 返回可以直接返回给客户端的错误信息
// 未分类错误统一返回 internal server error，避免泄漏内部细节
func PublicMessage(err error) string {
	var he *HeartbeatError
	if errors.As(err, &he) {
		return he.Message
	}
	return "internal server error"
}
