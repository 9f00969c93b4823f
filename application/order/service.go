/*
Package order Application Layer - order intake orchestration

Submit runs the intake steps in a fixed order:
 1. resolve the client request id (generated when absent) and its registry key
 2. idempotency lookup; a known id short-circuits as a duplicate
 3. server-side validation and pricing
 4. register the id before any side effect
 5. fan out to the spreadsheet and the notification concurrently

Side-effect failures are reported in the result and logged, never returned as
errors: once an order is valid and registered the buyer is told it was received.
*/
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"

	"watchbox/config"
	"watchbox/domain/order"
	"watchbox/infrastructure/resilience"
	"watchbox/pkg/logger"
	"watchbox/pkg/metrics"
	"watchbox/pkg/reqctx"
)

const (
	SinkSheets = "sheets"
	SinkMail   = "mail"
)

// Dependencies wiring for IntakeService. Guards and Metrics are optional.
type Dependencies struct {
	Registry    order.Registry
	Appender    order.RowAppender
	Notifier    order.Notifier
	SheetsGuard *resilience.Guard
	MailGuard   *resilience.Guard
	Metrics     *metrics.Metrics
}

// IntakeService Order application service - accepts storefront submissions
type IntakeService struct {
	registry    order.Registry
	appender    order.RowAppender
	notifier    order.Notifier
	sheetsGuard *resilience.Guard
	mailGuard   *resilience.Guard
	metrics     *metrics.Metrics

	now   func() time.Time
	newID func() string
}

// NewIntakeService Create order intake service
func NewIntakeService(deps Dependencies) *IntakeService {
	s := &IntakeService{
		registry:    deps.Registry,
		appender:    deps.Appender,
		notifier:    deps.Notifier,
		sheetsGuard: deps.SheetsGuard,
		mailGuard:   deps.MailGuard,
		metrics:     deps.Metrics,
		now:         time.Now,
		newID:       uuid.NewString,
	}
	if s.sheetsGuard == nil {
		s.sheetsGuard = resilience.NewGuard(SinkSheets, 0, config.DispatchConfig{}, deps.Metrics)
	}
	if s.mailGuard == nil {
		s.mailGuard = resilience.NewGuard(SinkMail, 0, config.DispatchConfig{}, deps.Metrics)
	}
	return s
}

// Submit processes one submission. The only error it returns is a
// validation failure (*order.FieldError); nothing is registered or dispatched then.
func (s *IntakeService) Submit(ctx context.Context, req SubmitOrderRequest) (*SubmitOrderResult, error) {
	log := logger.WithRequestID(reqctx.RequestID(ctx))

	if req.ClientRequestID == "" {
		req.ClientRequestID = s.newID()
	}
	token := req.ClientRequestID
	key := order.RegistryKey(token)
	log = log.With(zap.String("client_request_id", key))

	if s.seen(ctx, log, key) {
		s.metrics.RecordOrder(metrics.OutcomeDuplicate)
		log.Info("Duplicate submission ignored")
		return &SubmitOrderResult{ClientRequestID: token, Duplicate: true}, nil
	}

	o, err := order.New(toDraft(req), s.now())
	if err != nil {
		s.metrics.RecordOrder(metrics.OutcomeInvalid)
		return nil, err
	}
	s.checkPrices(log, req, o)

	first, err := s.registry.Register(ctx, key)
	switch {
	case err != nil:
		s.metrics.RecordRegistryError("register")
		log.Error("Idempotency registration failed, dispatching anyway", zap.Error(err))
	case !first:
		s.metrics.RecordOrder(metrics.OutcomeDuplicate)
		log.Info("Concurrent duplicate submission ignored")
		return &SubmitOrderResult{ClientRequestID: token, Duplicate: true}, nil
	}

	// side effects outlive a disconnected buyer; the guards bound them instead
	report, row := s.dispatch(context.WithoutCancel(ctx), log, o)

	s.metrics.RecordOrder(metrics.OutcomeAccepted)
	log.Info("Order accepted",
		zap.String("product", o.Product().ID),
		zap.String("delivery", string(o.Delivery())),
		zap.Int64("total", o.Total().Amount()),
		zap.Int("row", row),
		zap.Bool("sheet_ok", report.SheetErr == nil),
		zap.Bool("mail_ok", report.MailErr == nil),
	)
	return &SubmitOrderResult{ClientRequestID: token, Row: row, Dispatch: report}, nil
}

func (s *IntakeService) seen(ctx context.Context, log *zap.Logger, token string) bool {
	seen, err := s.registry.Seen(ctx, token)
	if err != nil {
		s.metrics.RecordRegistryError("seen")
		log.Error("Idempotency lookup failed, treating request as new", zap.Error(err))
		return false
	}
	return seen
}

func (s *IntakeService) checkPrices(log *zap.Logger, req SubmitOrderRequest, o *order.Order) {
	if !declaresPrices(req) {
		return
	}
	quote := order.Quote{BoxPrice: o.BoxPrice(), DeliveryCost: o.DeliveryCost(), Total: o.Total()}
	if quote.Matches(int64(req.BoxPrice), int64(req.DeliveryCost), int64(req.Total)) {
		return
	}
	s.metrics.RecordPriceMismatch()
	log.Warn("Declared prices differ from price table, recording server prices",
		zap.Int64("declared_box_price", int64(req.BoxPrice)),
		zap.Int64("declared_delivery_cost", int64(req.DeliveryCost)),
		zap.Int64("declared_total", int64(req.Total)),
		zap.Int64("box_price", o.BoxPrice().Amount()),
		zap.Int64("delivery_cost", o.DeliveryCost().Amount()),
		zap.Int64("total", o.Total().Amount()),
	)
}

func (s *IntakeService) dispatch(ctx context.Context, log *zap.Logger, o *order.Order) (DispatchReport, int) {
	var (
		report DispatchReport
		row    int
		wg     conc.WaitGroup
	)

	wg.Go(func() {
		report.SheetErr = s.runSink(ctx, log, SinkSheets, s.sheetsGuard, func(ctx context.Context) error {
			n, err := s.appender.AppendOrder(ctx, o)
			row = n
			return err
		})
	})

	wg.Go(func() {
		if c, ok := s.notifier.(interface{ Configured() bool }); ok && !c.Configured() {
			s.metrics.RecordDispatch(SinkMail, metrics.ResultSkipped, 0)
			return
		}
		report.MailErr = s.runSink(ctx, log, SinkMail, s.mailGuard, func(ctx context.Context) error {
			return s.notifier.NotifyOrder(ctx, o)
		})
	})

	wg.Wait()
	if report.SheetErr != nil {
		row = 0
	}
	return report, row
}

// runSink isolates one side effect: a panic becomes an error and is logged like any failure.
func (s *IntakeService) runSink(ctx context.Context, log *zap.Logger, name string, guard *resilience.Guard, fn func(context.Context) error) error {
	start := time.Now()

	var err error
	var pc panics.Catcher
	pc.Try(func() {
		err = guard.Do(ctx, fn)
	})
	if r := pc.Recovered(); r != nil {
		err = fmt.Errorf("%s dispatch panicked: %w", name, r.AsError())
	}

	elapsed := time.Since(start)
	if err != nil {
		s.metrics.RecordDispatch(name, metrics.ResultFailure, elapsed)
		fields := []zap.Field{zap.String("sink", name), zap.Duration("elapsed", elapsed), zap.Error(err)}
		if errors.Is(err, context.DeadlineExceeded) {
			fields = append(fields, zap.Bool("timeout", true))
		}
		log.Error("Order dispatch failed", fields...)
		return err
	}
	s.metrics.RecordDispatch(name, metrics.ResultSuccess, elapsed)
	return nil
}
