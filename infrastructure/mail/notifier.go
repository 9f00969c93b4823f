// Package mail sends the shop owner an HTML notification per accepted order.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/time/rate"
	"gopkg.in/gomail.v2"

	"watchbox/config"
	"watchbox/domain/order"
	"watchbox/pkg/logger"
)

// Sender delivers composed messages; *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type Notifier struct {
	sender       Sender
	from         string
	fromName     string
	recipients   []string
	assetBaseURL string
	messages     order.Messages
	limiter      *rate.Limiter
	printer      *message.Printer
}

var _ order.Notifier = (*Notifier)(nil)

// New dials SMTP per message. Without credentials the notifier is inert and
// NotifyOrder returns nil.
func New(cfg config.SMTPConfig, messages order.Messages) *Notifier {
	var sender Sender
	if cfg.MailConfigured() {
		sender = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	} else {
		logger.Info("SMTP credentials not configured, order notifications disabled")
	}
	return NewWithSender(sender, cfg, messages)
}

// NewWithSender builds a notifier around an arbitrary Sender.
func NewWithSender(sender Sender, cfg config.SMTPConfig, messages order.Messages) *Notifier {
	limit := rate.Inf
	if cfg.SendRate > 0 {
		limit = rate.Limit(cfg.SendRate)
	}
	burst := cfg.SendBurst
	if burst <= 0 {
		burst = 1
	}
	fromName := cfg.FromName
	if fromName == "" {
		fromName = messages.Mail.FromName
	}

	return &Notifier{
		sender:       sender,
		from:         cfg.Username,
		fromName:     fromName,
		recipients:   cfg.Recipients,
		assetBaseURL: cfg.AssetBaseURL,
		messages:     messages,
		limiter:      rate.NewLimiter(limit, burst),
		printer:      message.NewPrinter(language.English),
	}
}

// Configured reports whether NotifyOrder will actually send.
func (n *Notifier) Configured() bool {
	return n.sender != nil && len(n.recipients) > 0
}

func (n *Notifier) NotifyOrder(ctx context.Context, o *order.Order) error {
	if !n.Configured() {
		logger.Debug("Notification skipped, SMTP not configured", zap.String("client_request_id", o.RequestID()))
		return nil
	}

	msg, err := n.Compose(o)
	if err != nil {
		return err
	}

	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("mail pacing: %w", err)
	}

	// gomail has no context support; the send keeps running if ctx expires
	done := make(chan error, 1)
	start := time.Now()
	go func() {
		done <- n.sender.DialAndSend(msg)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("send notification: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send notification: %w", err)
		}
	}

	logger.Debug("Notification sent",
		zap.String("client_request_id", o.RequestID()),
		zap.Int("recipients", len(n.recipients)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// Compose builds the message without sending it.
func (n *Notifier) Compose(o *order.Order) (*gomail.Message, error) {
	body, err := n.Render(o)
	if err != nil {
		return nil, err
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", n.from, n.fromName)
	m.SetHeader("To", n.recipients...)
	m.SetHeader("Subject", n.Subject(o))
	m.SetBody("text/html", body)
	return m, nil
}

// Subject "<title> #<last 6 of token> - <name>".
func (n *Notifier) Subject(o *order.Order) string {
	return fmt.Sprintf("%s #%s - %s", n.messages.Mail.Title, o.ShortRef(), o.FullName())
}

type view struct {
	Dir          string
	L            order.MailLabels
	Ref          string
	ProductID    string
	ImageURL     string
	FullName     string
	Phone        string
	Wilaya       string
	Baladiya     string
	Delivery     string
	BoxPrice     string
	DeliveryCost string
	Total        string
	Notes        string
}

// Render the HTML body. Buyer-supplied text is escaped by html/template.
func (n *Notifier) Render(o *order.Order) (string, error) {
	v := view{
		Dir:          n.messages.Direction,
		L:            n.messages.Mail,
		Ref:          o.ShortRef(),
		ProductID:    o.Product().ID,
		ImageURL:     order.ImageURL(n.assetBaseURL, o.Product().ID),
		FullName:     o.FullName(),
		Phone:        o.Phone(),
		Wilaya:       o.Wilaya(),
		Baladiya:     o.Baladiya(),
		Delivery:     n.messages.DeliveryLabel(o.Delivery()),
		BoxPrice:     n.amount(o.BoxPrice().Amount()),
		DeliveryCost: n.amount(o.DeliveryCost().Amount()),
		Total:        n.amount(o.Total().Amount()),
		Notes:        o.Notes(),
	}

	var buf bytes.Buffer
	if err := bodyTemplate.Execute(&buf, v); err != nil {
		return "", fmt.Errorf("render notification: %w", err)
	}
	return buf.String(), nil
}

// amount formats with thousands separators, e.g. "3,300 دج".
func (n *Notifier) amount(v int64) string {
	return n.printer.Sprintf("%d", v) + " " + n.messages.Mail.Currency
}
