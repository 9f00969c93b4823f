package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"watchbox/domain/order"
)

// HandleSuccess 处理成功响应 (200 OK)
func HandleSuccess(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, &Response{
		Success:   true,
		Data:      data,
		Message:   message,
		Code:      http.StatusOK,
		RequestID: getRequestID(c),
	})
}

// HandleAccepted 订单已受理；row 为表格行号，写入失败时为 0
func HandleAccepted(c *gin.Context, clientRequestID string, row int, msgs order.Messages) {
	c.JSON(http.StatusOK, &OrderResponse{
		Success:         true,
		Message:         msgs.Accepted,
		ClientRequestID: clientRequestID,
		Row:             &row,
		RequestID:       getRequestID(c),
	})
}

// HandleDuplicate 重复提交，不再派发副作用
func HandleDuplicate(c *gin.Context, clientRequestID string, msgs order.Messages) {
	c.JSON(http.StatusOK, &OrderResponse{
		Success:         true,
		Message:         msgs.AlreadyProcessed,
		ClientRequestID: clientRequestID,
		RequestID:       getRequestID(c),
	})
}

// HandlePending 请求无法解析或处理中出现意外：仍然返回 200，提示等待确认
func HandlePending(c *gin.Context, msgs order.Messages) {
	c.JSON(http.StatusOK, &OrderResponse{
		Success:   true,
		Message:   msgs.Pending,
		RequestID: getRequestID(c),
	})
}
