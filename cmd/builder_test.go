package cmd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watchbox/config"
	"watchbox/infrastructure/persistence/mocks"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.App.Env = "test"
	cfg.App.Locale = "en"
	cfg.Server.Port = "0"
	cfg.Server.ShutdownTimeout = time.Second
	return cfg
}

const body = `{"fullName":"Ahmed Ali","phone":"0555123456","wilaya":"Algiers","baladiya":"Bab Ezzouar","selectedWatchId":"model-3","deliveryOption":"home","clientRequestId":"req-42"}`

func submit(h http.Handler) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/submit-order", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(w, req)
	return w
}

func TestBuild_DefaultMemoryBackend(t *testing.T) {
	appender := mocks.NewRecordingAppender()
	app, err := NewBuilder(testConfig(t)).
		WithRowAppender(appender).
		WithNotifier(&mocks.RecordingNotifier{}).
		Build(context.Background())
	require.NoError(t, err)
	defer app.Close()

	first := submit(app.Handler())
	second := submit(app.Handler())
	assert.Contains(t, first.Body.String(), `"row":2`)
	assert.Contains(t, second.Body.String(), `"message":"already processed"`)
	assert.Equal(t, 1, appender.Calls())

	w := httptest.NewRecorder()
	app.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBuild_UnconfiguredSinksStillAccept(t *testing.T) {
	app, err := NewBuilder(testConfig(t)).Build(context.Background())
	require.NoError(t, err)
	defer app.Close()

	w := submit(app.Handler())
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
	assert.Contains(t, w.Body.String(), `"row":0`)
}

func TestBuild_RedisBackend(t *testing.T) {
	srv := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Idempotency.Backend = BackendRedis
	cfg.Idempotency.Redis.Addr = srv.Addr()

	app, err := NewBuilder(cfg).
		WithRowAppender(mocks.NewRecordingAppender()).
		WithNotifier(&mocks.RecordingNotifier{}).
		Build(context.Background())
	require.NoError(t, err)
	defer app.Close()

	submit(app.Handler())
	assert.True(t, srv.Exists("watchbox:submit-order:req-42"))
}

func TestBuild_UnknownBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Idempotency.Backend = "etcd"

	_, err := NewBuilder(cfg).Build(context.Background())
	assert.ErrorContains(t, err, `unknown idempotency backend "etcd"`)
}

func TestApp_RunStopsOnContextCancel(t *testing.T) {
	app, err := NewBuilder(testConfig(t)).
		WithRegistry(mocks.NewRegistry()).
		Build(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}
