/*
Package shared - 领域层共享错误定义

设计原则:
1. 领域层定义哨兵错误(sentinel errors)，用于 errors.Is() 类型安全判断
2. DomainError 在创建时捕获堆栈，但延迟格式化（按需打印）
3. 领域错误不包含 HTTP 状态码等传输层概念
*/
package shared

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

var (
	// ErrInvalidInput 无效输入（参数校验失败）
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotConfigured 外部依赖缺少配置
	ErrNotConfigured = errors.New("not configured")

	// ErrUnavailable 外部依赖暂不可用（熔断、超时）
	ErrUnavailable = errors.New("unavailable")
)

// DomainError 领域错误 - 携带业务上下文和堆栈的结构化错误
type DomainError struct {
	Err     error
	Entity  string
	Message string
	Field   string

	stack []uintptr
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Stack 按需格式化堆栈（只在打印日志时调用）
func (e *DomainError) Stack() []string {
	return FormatStack(e.stack)
}

// CaptureStack 捕获当前调用栈
// skip: 跳过的帧数（通常为 3：Callers, CaptureStack, NewXxxError）
func CaptureStack(skip int) []uintptr {
	var pcs [32]uintptr
	n := runtime.Callers(skip, pcs[:])
	return pcs[:n]
}

// FormatStack 格式化堆栈帧为字符串切片，过滤 runtime 内部帧，最多 10 帧
func FormatStack(stack []uintptr) []string {
	if len(stack) == 0 {
		return nil
	}

	frames := runtime.CallersFrames(stack)
	var result []string
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			result = append(result, fmt.Sprintf("%s:%d %s", frame.File, frame.Line, frame.Function))
		}
		if !more || len(result) >= 10 {
			break
		}
	}
	return result
}

// NewNotConfiguredError 外部依赖缺少必要配置
func NewNotConfiguredError(entity, message string) error {
	return &DomainError{
		Err:     ErrNotConfigured,
		Entity:  entity,
		Message: message,
		stack:   CaptureStack(3),
	}
}

// NewUnavailableError 外部依赖不可用
func NewUnavailableError(entity string, cause error) error {
	return &DomainError{
		Err:     errors.Join(ErrUnavailable, cause),
		Entity:  entity,
		Message: entity + " unavailable: " + cause.Error(),
		stack:   CaptureStack(3),
	}
}

// Stacker 可提供堆栈的错误接口，API 层统一提取堆栈
type Stacker interface {
	Stack() []string
}
