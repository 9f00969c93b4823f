/*
Package response - API 层统一响应处理

设计原则:
1. HTTP 状态码映射放在 API 层，不污染领域层和应用层
2. 错误响应不暴露内部细节（堆栈、内部错误消息等）
3. 所有响应携带 RequestID 用于日志追踪

下单接口使用独立的 OrderResponse:
前端只看 success 字段，HTTP 状态码只在字段校验失败时为 400。

	受理: { success: true, message: "...", clientRequestId: "...", row: 12, request_id: "..." }
	重复: { success: true, message: "already processed", clientRequestId: "...", request_id: "..." }
	待确认: { success: true, message: "...(pending)", request_id: "..." }
	校验失败: { success: false, error: "本地化消息", field: "phone", request_id: "..." }

其他接口使用通用 Response:

	成功: { success: true, data: {...}, message: "...", code: 200, request_id: "..." }
	失败: { success: false, error: "ERROR_CODE", message: "用户可见消息", code: 4xx/5xx, request_id: "..." }
*/
package response

// RequestIDKey gin context key for request id propagation
const RequestIDKey = "request_id"

// Response 通用响应结构
type Response struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`      // 错误码，不是错误详情
	Code      int         `json:"code"`                 // HTTP 状态码
	Message   string      `json:"message"`              // 用户可见消息
	RequestID string      `json:"request_id,omitempty"` // 请求追踪 ID
}

// OrderResponse 下单接口响应
type OrderResponse struct {
	Success         bool   `json:"success"`
	Message         string `json:"message,omitempty"`
	Error           string `json:"error,omitempty"` // 本地化的校验消息
	Field           string `json:"field,omitempty"`
	ClientRequestID string `json:"clientRequestId,omitempty"`
	Row             *int   `json:"row,omitempty"` // 受理时总是出现，表格写入失败为 0
	RequestID       string `json:"request_id,omitempty"`
}
