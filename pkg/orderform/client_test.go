package orderform

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderapi "watchbox/api/order"
	orderapp "watchbox/application/order"
	"watchbox/infrastructure/persistence/mocks"
)

func newServer(t *testing.T) (*httptest.Server, *mocks.RecordingAppender) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	appender := mocks.NewRecordingAppender()
	svc := orderapp.NewIntakeService(orderapp.Dependencies{
		Registry: mocks.NewRegistry(),
		Appender: appender,
		Notifier: &mocks.RecordingNotifier{},
	})
	engine := gin.New()
	orderapi.NewController(svc, "ar").RegisterRoutes(engine.Group("/api"))

	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	return srv, appender
}

func TestClient_EndToEnd(t *testing.T) {
	srv, appender := newServer(t)
	client := NewClient(srv.URL+"/", WithLanguage("en"))
	f := New(client, WithResetDelay(0))
	fill(f)

	reply, err := f.Submit(context.Background())
	require.NoError(t, err)
	assert.True(t, reply.Success)
	assert.Equal(t, http.StatusOK, reply.StatusCode)
	assert.Equal(t, 2, reply.Row)
	assert.Equal(t, f.Token(), reply.ClientRequestID)
	assert.Equal(t, 1, appender.Calls())

	// 刷新页面前重放同一请求：服务端识别为重复
	dup, err := client.Submit(context.Background(), orderapp.FromDraft(f.Draft()))
	require.NoError(t, err)
	assert.True(t, dup.Success)
	assert.Equal(t, "already processed", dup.Message)
	assert.Equal(t, 1, appender.Calls())
}

func TestClient_DecodesBadRequestBody(t *testing.T) {
	srv, _ := newServer(t)
	client := NewClient(srv.URL)

	reply, err := client.Submit(context.Background(), orderapp.SubmitOrderRequest{FullName: "A"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, reply.StatusCode)
	assert.False(t, reply.Success)
	assert.Equal(t, "يرجى اختيار موديل الساعة", reply.Error)
	assert.Equal(t, "selectedWatchId", reply.Field)
}

func TestClient_NetworkAndDecodeErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Submit(context.Background(), orderapp.SubmitOrderRequest{})
	assert.ErrorContains(t, err, "status 502")

	srv.Close()
	_, err = NewClient(srv.URL).Submit(context.Background(), orderapp.SubmitOrderRequest{})
	assert.ErrorContains(t, err, "post order")
}
