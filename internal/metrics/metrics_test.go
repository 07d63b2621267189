package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
)

func TestHTTPMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewHTTPMetrics(reg)
	require.NoError(t, err)

	m.Observe(http.MethodGet, "/order/:id", http.StatusOK, 200*time.Millisecond)
	m.Observe(http.MethodGet, "/order/:id", http.StatusOK, 2*time.Second)
	m.Observe(http.MethodPost, "/order", http.StatusConflict, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues(http.MethodGet, "/order/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues(http.MethodPost, "/order", "409")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.Duration))

	_, err = NewHTTPMetrics(reg)
	assert.Error(t, err, "duplicate registration must fail")
}

func TestConsumerMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewConsumerMetrics(reg)
	require.NoError(t, err)

	m.Record(OutcomeProcessed)
	m.Record(OutcomeProcessed)
	m.Record(OutcomeIgnored)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Messages.WithLabelValues(OutcomeProcessed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Messages.WithLabelValues(OutcomeIgnored)))

	_, err = NewConsumerMetrics(reg)
	assert.Error(t, err)
}

func TestNilMetricsAreNoops(t *testing.T) {
	var h *HTTPMetrics
	var c *ConsumerMetrics
	assert.NotPanics(t, func() {
		h.Observe(http.MethodGet, "/", http.StatusOK, time.Second)
		c.Record(OutcomeFailed)
	})
}

func TestHandlerServesRegistry(t *testing.T) {
	reg := NewRegistry()
	m, err := NewConsumerMetrics(reg)
	require.NoError(t, err)
	m.Record(OutcomeFailed)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `orders_payment_messages_total{outcome="failed"} 1`))
	assert.True(t, strings.Contains(string(body), "go_goroutines"))
}

func TestModuleProvidesCollectors(t *testing.T) {
	var (
		httpMetrics     *HTTPMetrics
		consumerMetrics *ConsumerMetrics
		gatherer        prometheus.Gatherer
	)
	app := fx.New(
		fx.NopLogger,
		Module,
		fx.Populate(&httpMetrics, &consumerMetrics, &gatherer),
	)
	require.NoError(t, app.Err())
	assert.NotNil(t, httpMetrics)
	assert.NotNil(t, consumerMetrics)
	assert.NotNil(t, gatherer)
}
