package cmd

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"watchbox/api"
	"watchbox/api/health"
	apiorder "watchbox/api/order"
	orderapp "watchbox/application/order"
	"watchbox/config"
	"watchbox/domain/order"
	"watchbox/infrastructure/mail"
	"watchbox/infrastructure/resilience"
	"watchbox/infrastructure/sheets"
	"watchbox/pkg/logger"
	"watchbox/pkg/metrics"
)

// AppBuilder builds an App with customizable components
type AppBuilder struct {
	cfg      *config.Config
	registry order.Registry
	appender order.RowAppender
	notifier order.Notifier
	metrics  *metrics.Metrics
}

// NewBuilder creates a new AppBuilder
func NewBuilder(cfg *config.Config) *AppBuilder {
	return &AppBuilder{cfg: cfg}
}

// WithRegistry replaces the configured idempotency backend
func (b *AppBuilder) WithRegistry(r order.Registry) *AppBuilder {
	b.registry = r
	return b
}

// WithRowAppender replaces the Google Sheets appender
func (b *AppBuilder) WithRowAppender(a order.RowAppender) *AppBuilder {
	b.appender = a
	return b
}

// WithNotifier replaces the SMTP notifier
func (b *AppBuilder) WithNotifier(n order.Notifier) *AppBuilder {
	b.notifier = n
	return b
}

// WithMetrics uses an existing metrics set instead of creating one
func (b *AppBuilder) WithMetrics(m *metrics.Metrics) *AppBuilder {
	b.metrics = m
	return b
}

// Build creates the App instance. The logger must be initialized first.
func (b *AppBuilder) Build(ctx context.Context) (*App, error) {
	cfg := b.cfg
	logger.Info("Starting application",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("env", cfg.App.Env))

	m := b.metrics
	if m == nil && cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics.Namespace)
	}
	msgs := order.MessagesFor(cfg.App.Locale)

	app := &App{config: cfg}

	registry := b.registry
	if registry == nil {
		bundle, err := openRegistry(ctx, cfg, m)
		if err != nil {
			return nil, err
		}
		registry = bundle.registry
		app.janitor = bundle.janitor
		app.closers = append(app.closers, bundle.closers...)
	}

	appender := b.appender
	if appender == nil {
		a, err := sheets.New(ctx, cfg.Sheets, msgs)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to create sheets appender: %w", err)
		}
		appender = a
	}

	notifier := b.notifier
	if notifier == nil {
		n := mail.New(cfg.SMTP, msgs)
		if !n.Configured() {
			logger.Warn("SMTP not configured, order notifications are disabled")
		}
		notifier = n
	}

	intake := orderapp.NewIntakeService(orderapp.Dependencies{
		Registry:    registry,
		Appender:    appender,
		Notifier:    notifier,
		SheetsGuard: resilience.NewGuard(orderapp.SinkSheets, cfg.Sheets.Timeout, cfg.Dispatch, m),
		MailGuard:   resilience.NewGuard(orderapp.SinkMail, cfg.SMTP.Timeout, cfg.Dispatch, m),
		Metrics:     m,
	})

	var pingers []health.Pinger
	if p, ok := registry.(health.Pinger); ok {
		pingers = append(pingers, p)
	}

	app.router = api.NewRouter(cfg, m,
		health.NewController(cfg, pingers...),
		apiorder.NewController(intake, cfg.App.Locale),
	)
	app.router.SetupRoutes()

	app.server = &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app.router.GetEngine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return app, nil
}
