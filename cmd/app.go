package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"

	"watchbox/api"
	"watchbox/config"
	"watchbox/infrastructure/persistence/mysql"
	"watchbox/pkg/logger"
)

// App 应用程序结构体
type App struct {
	config  *config.Config
	router  *api.Router
	server  *http.Server
	janitor *mysql.Janitor
	closers []func() error
}

// Run 启动 HTTP 服务，收到 SIGINT/SIGTERM 或 ctx 结束后优雅关闭
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg conc.WaitGroup
	if a.janitor != nil {
		wg.Go(func() {
			if err := a.janitor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Registry janitor stopped", zap.Error(err))
			}
		})
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting",
			zap.String("addr", a.server.Addr),
			zap.String("backend", a.config.Idempotency.Backend),
			zap.String("locale", a.config.App.Locale),
		)
		serveErr <- a.server.ListenAndServe()
	}()

	var runErr error
	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("http server: %w", err)
		}
		stop()
	case <-ctx.Done():
		logger.Info("Shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	wg.Wait()
	a.Close()
	logger.Info("Server stopped")
	return runErr
}

// Close 释放注册表连接等资源
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Warn("Failed to close resource", zap.Error(err))
		}
	}
	a.closers = nil
}

// Handler 获取 HTTP handler（用于测试）
func (a *App) Handler() http.Handler {
	return a.router.GetEngine()
}
