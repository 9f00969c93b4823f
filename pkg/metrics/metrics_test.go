package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordHTTPRequest("GET", "/", 200, time.Millisecond)
		m.IncInFlight()
		m.DecInFlight()
		m.RecordOrder(OutcomeAccepted)
		m.RecordDispatch("sheets", ResultSuccess, time.Second)
		m.RecordRegistryError("seen")
		m.RecordPriceMismatch()
		m.SetCircuitBreakerState("sheets", 2)
		m.RecordPurged(3)
	})
}

func TestRecordOrderAndDispatch(t *testing.T) {
	m := New("test")
	m.RecordOrder(OutcomeAccepted)
	m.RecordOrder(OutcomeAccepted)
	m.RecordOrder(OutcomeDuplicate)
	m.RecordDispatch("mail", ResultSkipped, 0)
	m.RecordPurged(4)
	m.RecordPurged(-1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.OrdersTotal.WithLabelValues(OutcomeAccepted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrdersTotal.WithLabelValues(OutcomeDuplicate)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DispatchTotal.WithLabelValues("mail", ResultSkipped)))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.RegistryPurgedTotal))
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New("watchbox")
	m.RecordHTTPRequest("POST", "/api/submit-order", 200, 20*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `watchbox_http_requests_total{method="POST",path="/api/submit-order",status="200"} 1`))
	assert.True(t, strings.Contains(body, "go_goroutines"))
}
