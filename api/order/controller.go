/*
Package order - 订单 API 控制器

职责:
1. 接收 HTTP 请求，解析参数
2. 调用应用服务处理业务逻辑
3. 使用 response 包统一处理响应和错误

错误处理原则 (下单接口):
1. 请求体无法解析: 返回 200 + "待确认" 消息，不暴露解析错误
2. 字段校验失败: response.HandleValidationError 返回 400 + 本地化消息
3. 其他任何意外（包括 panic）: 同样返回 200 + "待确认"，错误只记录日志
4. 校验通过后总是 success=true，表格和邮件的失败只出现在日志里
*/
package order

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"watchbox/api/response"
	orderapp "watchbox/application/order"
	"watchbox/domain/order"
	"watchbox/pkg/logger"
)

// MaxBodyBytes 请求体上限
const MaxBodyBytes = 64 << 10

// Intake 下单应用服务
type Intake interface {
	Submit(ctx context.Context, req orderapp.SubmitOrderRequest) (*orderapp.SubmitOrderResult, error)
}

// Controller 订单控制器
type Controller struct {
	intake  Intake
	matcher language.Matcher
	now     func() time.Time
}

// NewController 创建订单控制器；defaultLocale 用于没有 Accept-Language 或无法匹配的请求
func NewController(intake Intake, defaultLocale string) *Controller {
	supported := []language.Tag{language.Arabic, language.English}
	if order.MessagesFor(defaultLocale).Locale == order.LocaleEnglish {
		supported = []language.Tag{language.English, language.Arabic}
	}
	return &Controller{
		intake:  intake,
		matcher: language.NewMatcher(supported),
		now:     time.Now,
	}
}

// RegisterRoutes 注册订单路由
func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/submit-order", c.SubmitOrder)
	router.GET("/submit-order", c.Probe)
}

// messages 按 ?lang= 或 Accept-Language 选择消息语言
func (c *Controller) messages(ctx *gin.Context) order.Messages {
	tag, _ := language.MatchStrings(c.matcher, ctx.Query("lang"), ctx.GetHeader("Accept-Language"))
	base, _ := tag.Base()
	return order.MessagesFor(base.String())
}

// SubmitOrder 提交订单
// POST /api/submit-order
func (c *Controller) SubmitOrder(ctx *gin.Context) {
	msgs := c.messages(ctx)
	log := logger.WithRequestID(response.GetRequestID(ctx))

	defer func() {
		if r := recover(); r != nil {
			log.Error("Order submission panicked, answering pending",
				zap.Any("panic", r),
				zap.Stack("stack"))
			if !ctx.Writer.Written() {
				response.HandlePending(ctx, msgs)
			}
		}
	}()

	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, MaxBodyBytes)

	var req orderapp.SubmitOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn("Unreadable order body, answering pending", zap.Error(err))
		response.HandlePending(ctx, msgs)
		return
	}

	res, err := c.intake.Submit(ctx.Request.Context(), req)
	if err != nil {
		var fe *order.FieldError
		if errors.As(err, &fe) {
			response.HandleValidationError(ctx, err, msgs)
			return
		}
		log.Error("Order submission failed, answering pending", zap.Error(err))
		response.HandlePending(ctx, msgs)
		return
	}

	if res.Duplicate {
		response.HandleDuplicate(ctx, res.ClientRequestID, msgs)
		return
	}
	response.HandleAccepted(ctx, res.ClientRequestID, res.Row, msgs)
}

// ProbeStatus GET /api/submit-order 固定返回的状态
const ProbeStatus = "API is working"

// ProbeResponse GET /api/submit-order 的响应
type ProbeResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// Probe 简单探活
// GET /api/submit-order
func (c *Controller) Probe(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, ProbeResponse{
		Status:    ProbeStatus,
		Timestamp: c.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	})
}
