package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/polkiloo/orders/internal/domain/errors"
	"github.com/polkiloo/orders/internal/metrics"
	testhelpers "github.com/polkiloo/orders/internal/test"
)

const (
	testSender = "payments"
	testTarget = "orders"
)

func newTestConsumer(t *testing.T, reader MessageReader, reconciler Reconciler, attempts int) (*PaymentResultConsumer, *metrics.ConsumerMetrics) {
	t.Helper()
	m, err := metrics.NewConsumerMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	opts := ConsumerOptions{
		Sender:        testSender,
		Target:        testTarget,
		RetryInterval: 5 * time.Millisecond,
		MaxAttempts:   attempts,
	}
	return NewPaymentResultConsumer(reader, reconciler, opts, m, logger), m
}

func paymentMessage(offset int64, body string) kafka.Message {
	return kafka.Message{Topic: "payment-results", Offset: offset, Value: []byte(body)}
}

func waitCommits(t *testing.T, reader *testhelpers.MessageReaderStub, n int) {
	t.Helper()
	deadline := time.After(time.Second)
	for i := 0; i < n; i++ {
		select {
		case <-reader.Commits():
		case <-deadline:
			t.Fatalf("timeout waiting for %d commits, got %d", n, i)
		}
	}
}

func outcome(m *metrics.ConsumerMetrics, name string) float64 {
	return testutil.ToFloat64(m.Messages.WithLabelValues(name))
}

func TestNewPaymentResultConsumerDefaults(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	c := NewPaymentResultConsumer(testhelpers.NewMessageReaderStub(), &testhelpers.ReconcilerStub{}, ConsumerOptions{}, nil, logger)
	assert.Equal(t, 1, c.maxAttempts)
	assert.Equal(t, time.Second, c.retry)
}

func TestPaymentResultConsumerAppliesPaymentOutcome(t *testing.T) {
	tests := []struct {
		name    string
		msgType string
		success bool
	}{
		{"success", "MSG_PAYMENT_SUCCESS", true},
		{"fail", "MSG_PAYMENT_FAIL", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			reader := testhelpers.NewMessageReaderStub(paymentMessage(7,
				`{"type":"`+tc.msgType+`","sender":"payments","target":"orders","payload":{"orderId":"o-1"}}`))
			reconciler := &testhelpers.ReconcilerStub{}
			c, m := newTestConsumer(t, reader, reconciler, 1)

			c.Start(context.Background())
			waitCommits(t, reader, 1)
			require.NoError(t, c.Stop())

			require.Equal(t, 1, reconciler.CallCount())
			assert.Equal(t, testhelpers.ReconcileCall{OrderID: "o-1", Success: tc.success}, reconciler.Calls[0])
			assert.Equal(t, []int64{7}, reader.CommittedOffsets())
			assert.Equal(t, 1.0, outcome(m, metrics.OutcomeProcessed))
		})
	}
}

func TestPaymentResultConsumerCommitsUnactionableMessages(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		errs    []error
		calls   int
		outcome string
	}{
		{
			name:    "malformed json",
			body:    `{"type":`,
			outcome: metrics.OutcomeMalformed,
		},
		{
			name:    "foreign sender",
			body:    `{"type":"MSG_PAYMENT_SUCCESS","sender":"kitchen","target":"orders","payload":{"orderId":"o-1"}}`,
			outcome: metrics.OutcomeIgnored,
		},
		{
			name:    "foreign target",
			body:    `{"type":"MSG_PAYMENT_SUCCESS","sender":"payments","target":"delivery","payload":{"orderId":"o-1"}}`,
			outcome: metrics.OutcomeIgnored,
		},
		{
			name:    "unknown type",
			body:    `{"type":"MSG_PAYMENT_REFUND","sender":"payments","target":"orders","payload":{"orderId":"o-1"}}`,
			outcome: metrics.OutcomeIgnored,
		},
		{
			name:    "already processed",
			body:    `{"type":"MSG_PAYMENT_SUCCESS","sender":"payments","target":"orders","payload":{"orderId":"o-1"}}`,
			errs:    []error{domainErrors.New(domainErrors.ErrInvalidPaymentOrderStatus, "Order status is not payment pending")},
			calls:   1,
			outcome: metrics.OutcomeAlreadyProcessed,
		},
		{
			name:    "order not found",
			body:    `{"type":"MSG_PAYMENT_FAIL","sender":"payments","target":"orders","payload":{"orderId":"missing"}}`,
			errs:    []error{domainErrors.New(domainErrors.ErrOrderNotFound, "Order not found")},
			calls:   1,
			outcome: metrics.OutcomeOrderNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			reader := testhelpers.NewMessageReaderStub(paymentMessage(1, tc.body))
			reconciler := &testhelpers.ReconcilerStub{Errs: tc.errs}
			c, m := newTestConsumer(t, reader, reconciler, 3)

			c.Start(context.Background())
			waitCommits(t, reader, 1)
			require.NoError(t, c.Stop())

			assert.Equal(t, tc.calls, reconciler.CallCount())
			assert.Equal(t, 1.0, outcome(m, tc.outcome))
			assert.Len(t, reader.CommittedOffsets(), 1)
		})
	}
}

func TestPaymentResultConsumerRetriesTransientFailures(t *testing.T) {
	body := `{"type":"MSG_PAYMENT_SUCCESS","sender":"payments","target":"orders","payload":{"orderId":"o-2"}}`
	dbErr := domainErrors.Wrap(domainErrors.ErrDatabase, "Failed to update order status", errors.New("conn reset"))

	t.Run("recovers", func(t *testing.T) {
		reader := testhelpers.NewMessageReaderStub(paymentMessage(3, body))
		reconciler := &testhelpers.ReconcilerStub{Errs: []error{dbErr, dbErr}}
		c, m := newTestConsumer(t, reader, reconciler, 3)

		c.Start(context.Background())
		waitCommits(t, reader, 1)
		_ = c.Stop()

		assert.Equal(t, 3, reconciler.CallCount())
		assert.Equal(t, 1.0, outcome(m, metrics.OutcomeProcessed))
	})

	t.Run("gives up", func(t *testing.T) {
		reader := testhelpers.NewMessageReaderStub(paymentMessage(4, body))
		reconciler := &testhelpers.ReconcilerStub{Errs: []error{dbErr, dbErr, dbErr}}
		c, m := newTestConsumer(t, reader, reconciler, 2)

		c.Start(context.Background())
		waitCommits(t, reader, 1)
		_ = c.Stop()

		assert.Equal(t, 2, reconciler.CallCount())
		assert.Equal(t, 1.0, outcome(m, metrics.OutcomeFailed))
		assert.Equal(t, []int64{4}, reader.CommittedOffsets())
	})
}

func TestPaymentResultConsumerContinuesAfterFetchError(t *testing.T) {
	reader := testhelpers.NewMessageReaderStub(paymentMessage(9,
		`{"type":"MSG_PAYMENT_SUCCESS","sender":"payments","target":"orders","payload":{"orderId":"o-3"}}`))
	reader.FetchErrs = []error{errors.New("broker unavailable")}
	reconciler := &testhelpers.ReconcilerStub{}
	c, _ := newTestConsumer(t, reader, reconciler, 1)

	c.Start(context.Background())
	waitCommits(t, reader, 1)
	_ = c.Stop()

	assert.Equal(t, 1, reconciler.CallCount())
}

func TestPaymentResultConsumerStopLeavesInFlightMessageUncommitted(t *testing.T) {
	reader := testhelpers.NewMessageReaderStub(paymentMessage(5,
		`{"type":"MSG_PAYMENT_SUCCESS","sender":"payments","target":"orders","payload":{"orderId":"o-4"}}`))
	reconciler := &testhelpers.ReconcilerStub{
		Errs:   []error{errors.New("boom"), errors.New("boom")},
		Called: make(chan testhelpers.ReconcileCall, 1),
	}
	m, _ := metrics.NewConsumerMetrics(prometheus.NewRegistry())
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	c := NewPaymentResultConsumer(reader, reconciler, ConsumerOptions{
		Sender:        testSender,
		Target:        testTarget,
		RetryInterval: time.Hour,
		MaxAttempts:   5,
	}, m, logger)

	c.Start(context.Background())
	select {
	case <-reconciler.Called:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for reconciliation")
	}

	done := make(chan error, 1)
	go func() { done <- c.Stop() }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("stop did not interrupt retry wait")
	}

	assert.Empty(t, reader.CommittedOffsets())
	assert.True(t, reader.IsClosed())
}

// blockingReconciler fails only once its context has been cancelled.
type blockingReconciler struct {
	called chan struct{}
}

func (r *blockingReconciler) ReconcilePayment(ctx context.Context, _ string, _ bool) error {
	close(r.called)
	<-ctx.Done()
	return domainErrors.Wrap(domainErrors.ErrDatabase, "Failed to update order status", ctx.Err())
}

func TestPaymentResultConsumerStopDuringLastAttemptKeepsMessage(t *testing.T) {
	reader := testhelpers.NewMessageReaderStub(paymentMessage(6,
		`{"type":"MSG_PAYMENT_SUCCESS","sender":"payments","target":"orders","payload":{"orderId":"o-5"}}`))
	reconciler := &blockingReconciler{called: make(chan struct{})}
	c, m := newTestConsumer(t, reader, reconciler, 1)

	c.Start(context.Background())
	select {
	case <-reconciler.called:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for reconciliation")
	}

	require.NoError(t, c.Stop())

	assert.Equal(t, 0.0, outcome(m, metrics.OutcomeFailed))
	assert.Empty(t, reader.CommittedOffsets())
}

func TestPaymentResultConsumerStartIsIdempotent(t *testing.T) {
	reader := testhelpers.NewMessageReaderStub()
	c, _ := newTestConsumer(t, reader, &testhelpers.ReconcilerStub{}, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Start(ctx)
	c.Start(ctx)

	require.NoError(t, c.Stop())
	assert.True(t, reader.IsClosed())
}
