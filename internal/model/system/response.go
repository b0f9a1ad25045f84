/**
 * 模型:响应模型
 * @date: 2026.10.12
 * @description: API 通用响应结构
 */
package system

// APIResponse 通用API响应结构
type APIResponse struct {
	Code    int         `json:"code,omitempty"`  // 响应状态码，可选
	Status  string      `json:"status"`          // 响应状态："success" 或 "failed"
	Message string      `json:"message"`         // 响应消息
	Data    interface{} `json:"data,omitempty"`  // 响应数据，可选
	Error   string      `json:"error,omitempty"` // 错误信息，可选
}

// ListResponse 列表响应数据
type ListResponse struct {
	Total int         `json:"total"` // 记录数
	Items interface{} `json:"items"` // 记录列表
}
