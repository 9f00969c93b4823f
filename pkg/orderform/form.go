/*
Package orderform 下单表单控制器

一次页面加载对应一个 Form:

	Idle ──(字段填齐)──> Ready ──Submit──> Submitting ──success──> Success ──(延时)──> Idle
	                       ^                   │
	                       └──(失败 / 网络错误)─┘

校验规则与服务端共用 order.Validate，价格来自 order.QuoteFor。
幂等 token 只在缺失时生成，同一次加载内的重试复用同一个 token；Reset 相当于刷新页面。
*/
package orderform

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	orderapp "watchbox/application/order"
	"watchbox/domain/order"
	"watchbox/domain/shared"
)

// DefaultResetDelay 提交成功后多久恢复为空表单
const DefaultResetDelay = 10 * time.Second

var (
	ErrSubmitInProgress = errors.New("orderform: submission already in progress")
	ErrAlreadySubmitted = errors.New("orderform: order already submitted")
)

// State 表单状态
type State int

const (
	StateIdle State = iota
	StateReady
	StateSubmitting
	StateSuccess
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReady:
		return "ready"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// Submitter 发送一次下单请求；HTTP 实现见 Client
type Submitter interface {
	Submit(ctx context.Context, req orderapp.SubmitOrderRequest) (*Reply, error)
}

// Option 表单选项
type Option func(*Form)

// WithResetDelay 成功后的重置延时；<=0 表示不自动重置
func WithResetDelay(d time.Duration) Option {
	return func(f *Form) { f.resetDelay = d }
}

// WithMessages 提示语言
func WithMessages(m order.Messages) Option {
	return func(f *Form) { f.msgs = m }
}

// WithTokenGenerator 替换幂等 token 生成器
func WithTokenGenerator(gen func() string) Option {
	return func(f *Form) { f.newToken = gen }
}

// Form 表单控制器，并发安全
type Form struct {
	mu sync.Mutex

	submitter  Submitter
	msgs       order.Messages
	resetDelay time.Duration
	newToken   func() string

	draft        order.Draft
	state        State
	errs         []*order.FieldError
	notice       string // 表单上方显示的错误
	confirmation string
	lastRow      int

	generation int
	resetTimer *time.Timer
}

// New 创建表单
func New(submitter Submitter, opts ...Option) *Form {
	f := &Form{
		submitter:  submitter,
		msgs:       order.MessagesFor(order.LocaleArabic),
		resetDelay: DefaultResetDelay,
		newToken:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Form) edit(fn func(d *order.Draft)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(&f.draft)
	f.refresh()
}

func (f *Form) SetFullName(v string) { f.edit(func(d *order.Draft) { d.FullName = v }) }
func (f *Form) SetPhone(v string)    { f.edit(func(d *order.Draft) { d.Phone = v }) }
func (f *Form) SetWilaya(v string)   { f.edit(func(d *order.Draft) { d.Wilaya = v }) }
func (f *Form) SetBaladiya(v string) { f.edit(func(d *order.Draft) { d.Baladiya = v }) }
func (f *Form) SetNotes(v string)    { f.edit(func(d *order.Draft) { d.Notes = v }) }

// SelectProduct 选择一个款式
func (f *Form) SelectProduct(id string) { f.edit(func(d *order.Draft) { d.ProductID = id }) }

// SelectDelivery 选择配送方式
func (f *Form) SelectDelivery(opt order.DeliveryOption) {
	f.edit(func(d *order.Draft) { d.Delivery = opt })
}

// refresh Idle <-> Ready；其他状态不受输入影响
func (f *Form) refresh() {
	if f.state != StateIdle && f.state != StateReady {
		return
	}
	if complete(f.draft) {
		f.state = StateReady
	} else {
		f.state = StateIdle
	}
}

func complete(d order.Draft) bool {
	for _, v := range []string{d.FullName, d.Phone, d.Wilaya, d.Baladiya, d.ProductID, string(d.Delivery)} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// Submit 校验并提交。
// 校验失败返回第一个 *order.FieldError，不发请求；
// 网络错误原样返回，表单回到 Ready；服务端 success=false 不算 error，由 Reply 和 Notice 体现。
func (f *Form) Submit(ctx context.Context) (*Reply, error) {
	f.mu.Lock()
	switch f.state {
	case StateSubmitting:
		f.mu.Unlock()
		return nil, ErrSubmitInProgress
	case StateSuccess:
		f.mu.Unlock()
		return nil, ErrAlreadySubmitted
	}

	f.errs = order.ValidateAll(f.draft)
	if len(f.errs) > 0 {
		first := f.errs[0]
		f.notice = f.msgs.FieldMessage(first.Field())
		f.mu.Unlock()
		return nil, first
	}

	if f.draft.ClientRequestID == "" {
		f.draft.ClientRequestID = f.newToken()
	}
	req := orderapp.FromDraft(f.draft)
	f.state = StateSubmitting
	f.notice = ""
	f.mu.Unlock()

	reply, err := f.submitter.Submit(ctx, req)

	f.mu.Lock()
	defer f.mu.Unlock()

	if err != nil {
		f.backToReady(f.msgs.Connectivity)
		return nil, err
	}
	if !reply.Success {
		msg := reply.Error
		if msg == "" {
			msg = f.msgs.Generic
		}
		f.backToReady(msg)
		return reply, nil
	}

	f.state = StateSuccess
	f.confirmation = reply.Message
	f.lastRow = reply.Row
	f.scheduleReset()
	return reply, nil
}

func (f *Form) backToReady(notice string) {
	f.state = StateReady
	f.notice = notice
	f.refresh()
}

func (f *Form) scheduleReset() {
	if f.resetDelay <= 0 {
		return
	}
	gen := f.generation
	f.resetTimer = time.AfterFunc(f.resetDelay, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.generation == gen {
			f.clear()
		}
	})
}

// Reset 恢复为空表单并丢弃 token，相当于重新加载页面
func (f *Form) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clear()
}

func (f *Form) clear() {
	if f.resetTimer != nil {
		f.resetTimer.Stop()
		f.resetTimer = nil
	}
	f.generation++
	f.draft = order.Draft{}
	f.state = StateIdle
	f.errs = nil
	f.notice = ""
	f.confirmation = ""
	f.lastRow = 0
}

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Errors 最近一次提交时的字段错误，按表单顺序
func (f *Form) Errors() []*order.FieldError {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*order.FieldError(nil), f.errs...)
}

// Focus 应获得焦点的字段（第一个错误字段）
func (f *Form) Focus() (order.Field, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.errs) == 0 {
		return "", false
	}
	return f.errs[0].Field(), true
}

// Notice 表单级提示（校验、服务端或网络错误）
func (f *Form) Notice() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.notice
}

// Confirmation 成功提示
func (f *Form) Confirmation() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.confirmation
}

// Token 当前页面加载的幂等 token，首次提交前为空
func (f *Form) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft.ClientRequestID
}

// Quote 当前价格；未选配送方式时只有盒子价格
func (f *Form) Quote() order.Quote {
	f.mu.Lock()
	defer f.mu.Unlock()
	return order.QuoteFor(f.draft.Delivery)
}

// Row 成功提交后表格的行号，0 表示未知
func (f *Form) Row() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastRow
}

func (f *Form) Total() shared.Money {
	return f.Quote().Total
}

// Draft 当前输入的副本
func (f *Form) Draft() order.Draft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}
