package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"watchbox/config"
	"watchbox/domain/order"
	"watchbox/domain/shared"
	"watchbox/infrastructure/persistence/memory"
	"watchbox/infrastructure/persistence/mocks"
	"watchbox/infrastructure/resilience"
	"watchbox/pkg/logger"
	"watchbox/pkg/metrics"
)

type fixture struct {
	svc      *IntakeService
	registry *mocks.Registry
	appender *mocks.RecordingAppender
	notifier *mocks.RecordingNotifier
	metrics  *metrics.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		registry: mocks.NewRegistry(),
		appender: mocks.NewRecordingAppender(),
		notifier: &mocks.RecordingNotifier{},
		metrics:  metrics.New("test"),
	}
	f.svc = NewIntakeService(Dependencies{
		Registry: f.registry,
		Appender: f.appender,
		Notifier: f.notifier,
		Metrics:  f.metrics,
	})
	return f
}

func exampleRequest() SubmitOrderRequest {
	return SubmitOrderRequest{
		FullName:        "Ahmed Ali",
		Phone:           "0555123456",
		Wilaya:          "Algiers",
		Baladiya:        "Bab Ezzouar",
		SelectedWatchID: "model-3",
		BoxPrice:        2500,
		DeliveryOption:  "home",
		DeliveryCost:    800,
		Total:           3300,
		ClientRequestID: "req-0001",
	}
}

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	t.Cleanup(logger.Replace(zap.New(core)))
	return logs
}

func TestSubmit_ExampleOrderAccepted(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Submit(context.Background(), exampleRequest())
	require.NoError(t, err)
	assert.False(t, res.Duplicate)
	assert.Equal(t, "req-0001", res.ClientRequestID)
	assert.Equal(t, 2, res.Row)

	require.Equal(t, 1, f.appender.Calls())
	o := f.appender.Orders()[0]
	assert.Equal(t, int64(3300), o.Total().Amount())
	assert.Equal(t, 1, f.notifier.Calls())
	assert.True(t, f.registry.Registered("req-0001"))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.OrdersTotal.WithLabelValues(metrics.OutcomeAccepted)))
}

func TestSubmit_SameTokenTwiceAppendsOnce(t *testing.T) {
	f := newFixture(t)

	first, err := f.svc.Submit(context.Background(), exampleRequest())
	require.NoError(t, err)
	second, err := f.svc.Submit(context.Background(), exampleRequest())
	require.NoError(t, err)

	assert.False(t, first.Duplicate)
	assert.True(t, second.Duplicate)
	assert.Equal(t, first.ClientRequestID, second.ClientRequestID)
	assert.Equal(t, 1, f.appender.Calls())
	assert.Equal(t, 1, f.notifier.Calls())
}

func TestSubmit_ConcurrentDuplicatesDispatchOnce(t *testing.T) {
	registry, err := memory.NewRegistry(time.Hour)
	require.NoError(t, err)
	defer registry.Close()

	appender := mocks.NewRecordingAppender()
	appender.Delay = 10 * time.Millisecond
	svc := NewIntakeService(Dependencies{
		Registry: registry,
		Appender: appender,
		Notifier: &mocks.RecordingNotifier{},
	})

	var duplicates atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.Submit(context.Background(), exampleRequest())
			if assert.NoError(t, err) && res.Duplicate {
				duplicates.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, appender.Calls())
	assert.Equal(t, int32(15), duplicates.Load())
}

func TestSubmit_GeneratesMissingToken(t *testing.T) {
	f := newFixture(t)
	f.svc.newID = func() string { return "generated-1" }

	req := exampleRequest()
	req.ClientRequestID = ""
	res, err := f.svc.Submit(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "generated-1", res.ClientRequestID)
	assert.True(t, f.registry.Registered("generated-1"))
}

func TestSubmit_UnusualTokensStillDeduplicate(t *testing.T) {
	tokens := []string{
		"order 42/abc+==",
		strings.Repeat("k", order.MaxRequestIDLength+1),
	}
	for _, token := range tokens {
		t.Run(fmt.Sprintf("len=%d", len(token)), func(t *testing.T) {
			f := newFixture(t)
			f.svc.newID = func() string { t.Fatal("token must not be replaced"); return "" }

			req := exampleRequest()
			req.ClientRequestID = token
			first, err := f.svc.Submit(context.Background(), req)
			require.NoError(t, err)
			second, err := f.svc.Submit(context.Background(), req)
			require.NoError(t, err)

			assert.Equal(t, token, first.ClientRequestID)
			assert.Equal(t, token, second.ClientRequestID)
			assert.False(t, first.Duplicate)
			assert.True(t, second.Duplicate)
			assert.Equal(t, 1, f.appender.Calls())
			assert.True(t, f.registry.Registered(order.RegistryKey(token)))
		})
	}
}

func TestSubmit_InvalidNameRejectedWithoutSideEffects(t *testing.T) {
	f := newFixture(t)

	req := exampleRequest()
	req.FullName = "A"
	res, err := f.svc.Submit(context.Background(), req)

	assert.Nil(t, res)
	assert.ErrorIs(t, err, order.ErrInvalidFullName)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	assert.Zero(t, f.registry.Len())
	assert.Zero(t, f.appender.Calls())
	assert.Zero(t, f.notifier.Calls())
}

func TestSubmit_BothSinksFailingStillAccepted(t *testing.T) {
	f := newFixture(t)
	f.appender.Err = shared.NewNotConfiguredError("sheets", "missing spreadsheet id")
	f.notifier.Err = errors.New("smtp down")
	logs := observeLogs(t)

	res, err := f.svc.Submit(context.Background(), exampleRequest())
	require.NoError(t, err)
	assert.False(t, res.Duplicate)
	assert.Zero(t, res.Row)
	assert.ErrorIs(t, res.Dispatch.SheetErr, shared.ErrNotConfigured)
	assert.ErrorContains(t, res.Dispatch.MailErr, "smtp down")

	assert.Equal(t, 2, logs.FilterMessage("Order dispatch failed").Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.DispatchTotal.WithLabelValues(SinkSheets, metrics.ResultFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.DispatchTotal.WithLabelValues(SinkMail, metrics.ResultFailure)))
}

func TestSubmit_PanickingSinkDoesNotBlockTheOther(t *testing.T) {
	f := newFixture(t)
	f.appender.Panic = true

	res, err := f.svc.Submit(context.Background(), exampleRequest())
	require.NoError(t, err)
	assert.Zero(t, res.Row)
	assert.ErrorContains(t, res.Dispatch.SheetErr, "panicked")
	assert.NoError(t, res.Dispatch.MailErr)
	assert.Equal(t, 1, f.notifier.Calls())
}

func TestSubmit_RegistryFailuresDoNotBlockOrders(t *testing.T) {
	f := newFixture(t)
	f.registry.SeenErr = errors.New("redis down")
	f.registry.RegisterErr = errors.New("redis down")
	logs := observeLogs(t)

	res, err := f.svc.Submit(context.Background(), exampleRequest())
	require.NoError(t, err)
	assert.False(t, res.Duplicate)
	assert.Equal(t, 1, f.appender.Calls())
	assert.Equal(t, 1, logs.FilterMessage("Idempotency lookup failed, treating request as new").Len())
	assert.Equal(t, 1, logs.FilterMessage("Idempotency registration failed, dispatching anyway").Len())
}

func TestSubmit_LostRegistrationRaceIsDuplicate(t *testing.T) {
	f := newFixture(t)
	f.registry.RaceLost = true

	res, err := f.svc.Submit(context.Background(), exampleRequest())
	require.NoError(t, err)
	assert.True(t, res.Duplicate)
	assert.Zero(t, f.appender.Calls())
}

func TestSubmit_PriceMismatchRecordsServerPrices(t *testing.T) {
	f := newFixture(t)
	logs := observeLogs(t)

	req := exampleRequest()
	req.Total = 100
	_, err := f.svc.Submit(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, int64(3300), f.appender.Orders()[0].Total().Amount())
	entries := logs.FilterMessage("Declared prices differ from price table, recording server prices").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(100), entries[0].ContextMap()["declared_total"])
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.PriceMismatches))
}

func TestSubmit_DispatchTimeoutAndBreaker(t *testing.T) {
	appender := mocks.NewRecordingAppender()
	appender.Delay = time.Second
	cfg := config.DispatchConfig{BreakerEnabled: true, FailureThreshold: 1, OpenTimeout: time.Minute, HalfOpenRequests: 1}
	svc := NewIntakeService(Dependencies{
		Registry:    mocks.NewRegistry(),
		Appender:    appender,
		Notifier:    &mocks.RecordingNotifier{},
		SheetsGuard: resilience.NewGuard(SinkSheets, 10*time.Millisecond, cfg, nil),
	})

	res, err := svc.Submit(context.Background(), exampleRequest())
	require.NoError(t, err)
	assert.ErrorIs(t, res.Dispatch.SheetErr, context.DeadlineExceeded)

	req := exampleRequest()
	req.ClientRequestID = "req-0002"
	res, err = svc.Submit(context.Background(), req)
	require.NoError(t, err)
	assert.ErrorIs(t, res.Dispatch.SheetErr, resilience.ErrCircuitOpen)
	assert.Equal(t, 1, appender.Calls(), "open breaker skips the spreadsheet")
}

func TestSubmit_CancelledRequestStillDispatches(t *testing.T) {
	f := newFixture(t)
	f.appender.Delay = 20 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := f.svc.Submit(ctx, exampleRequest())
	require.NoError(t, err)
	assert.NoError(t, res.Dispatch.SheetErr)
	assert.Equal(t, 2, res.Row)
}

func TestFromDraft(t *testing.T) {
	req := FromDraft(order.Draft{
		FullName:        " Ahmed Ali ",
		ProductID:       "model-1",
		Delivery:        order.DeliveryDesk,
		ClientRequestID: "tok",
	})
	assert.Equal(t, "Ahmed Ali", req.FullName)
	assert.Equal(t, DeclaredAmount(2500), req.BoxPrice)
	assert.Equal(t, DeclaredAmount(500), req.DeliveryCost)
	assert.Equal(t, DeclaredAmount(3000), req.Total)
	assert.Equal(t, "desk", req.DeliveryOption)
}
