package response

import (
	"errors"
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"watchbox/domain/order"
	"watchbox/domain/shared"
	apperrors "watchbox/pkg/errors"
	"watchbox/pkg/logger"
)

func getRequestID(c *gin.Context) string {
	if requestID, exists := c.Get(RequestIDKey); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return ""
}

// GetRequestID 从 gin 上下文获取请求 ID
func GetRequestID(c *gin.Context) string {
	return getRequestID(c)
}

// captureStack 捕获调用栈（用于错误日志）
func captureStack(skip int) []string {
	var pcs [16]uintptr
	n := runtime.Callers(skip, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var stack []string
	for i := 0; i < 5; i++ { // 只取前 5 帧
		frame, more := frames.Next()
		if frame.Function != "" {
			stack = append(stack, frame.Function)
		}
		if !more {
			break
		}
	}
	return stack
}

// HandleError 处理普通错误（非应用错误）
func HandleError(c *gin.Context, err error, message string, code int) {
	requestID := getRequestID(c)

	logger.Error(message,
		zap.String("request_id", requestID),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.Int("status", code),
		zap.Error(err))

	c.JSON(code, &Response{
		Success:   false,
		Error:     string(apperrors.CodeBadRequest),
		Message:   message,
		Code:      code,
		RequestID: requestID,
	})
}

// HandleAppError 处理应用层错误
// 自动映射 HTTP 状态码，记录完整错误日志，但不暴露内部细节给客户端
func HandleAppError(c *gin.Context, err error) {
	requestID := getRequestID(c)
	appErr := apperrors.FromDomainError(err)
	httpStatus := appErr.HTTPStatusCode()

	fields := []zap.Field{
		zap.String("request_id", requestID),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.String("error_code", string(appErr.Code)),
		zap.Int("http_status", httpStatus),
		zap.Strings("stack", extractStack(err)),
	}
	if appErr.Err != nil {
		fields = append(fields, zap.Error(appErr.Err))
	}
	logger.Error(appErr.Message, fields...)

	userMessage := appErr.Message
	if appErr.Code == apperrors.CodeInternal {
		userMessage = "internal server error"
	}
	c.JSON(httpStatus, &Response{
		Success:   false,
		Error:     string(appErr.Code),
		Message:   userMessage,
		Code:      httpStatus,
		RequestID: requestID,
	})
}

// HandleValidationError 字段校验失败 (400)，错误消息按 locale 本地化
func HandleValidationError(c *gin.Context, err error, msgs order.Messages) {
	requestID := getRequestID(c)
	appErr := apperrors.FromDomainError(err)

	logger.Warn("Order rejected by validation",
		zap.String("request_id", requestID),
		zap.String("field", appErr.Field),
		zap.Strings("stack", extractStack(err)),
		zap.Error(err))

	c.JSON(http.StatusBadRequest, &OrderResponse{
		Success:   false,
		Error:     msgs.ForError(err),
		Field:     appErr.Field,
		RequestID: requestID,
	})
}

// extractStack 优先提取"错误发生点"堆栈，否则在此处捕获"错误处理点"堆栈作为兜底
func extractStack(err error) []string {
	var stacker shared.Stacker
	if errors.As(err, &stacker) {
		if stack := stacker.Stack(); len(stack) > 0 {
			return stack
		}
	}
	return captureStack(4) // skip: Callers, captureStack, extractStack, Handle*
}
