package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/polkiloo/orders/internal/adapter/broker"
	domainErrors "github.com/polkiloo/orders/internal/domain/errors"
	"github.com/polkiloo/orders/internal/domain/model"
	"github.com/polkiloo/orders/internal/metrics"
)

const tracerName = "github.com/polkiloo/orders/internal/worker"

// MessageReader is the subset of *kafka.Reader used by the consumer.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Reconciler applies a payment outcome to an order.
type Reconciler interface {
	ReconcilePayment(ctx context.Context, orderID string, success bool) error
}

// ConsumerOptions configures message filtering and retries.
type ConsumerOptions struct {
	Sender        string
	Target        string
	RetryInterval time.Duration
	MaxAttempts   int
}

// PaymentResultConsumer drains payment result messages one at a time and
// commits each offset only after the message has been handled.
type PaymentResultConsumer struct {
	reader      MessageReader
	reconciler  Reconciler
	sender      string
	target      string
	retry       time.Duration
	maxAttempts int
	metrics     *metrics.ConsumerMetrics
	logger      *slog.Logger
	propagator  propagation.TextMapPropagator
	tracer      trace.Tracer

	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewPaymentResultConsumer constructs the consumer.
func NewPaymentResultConsumer(reader MessageReader, reconciler Reconciler, opts ConsumerOptions, m *metrics.ConsumerMetrics, logger *slog.Logger) *PaymentResultConsumer {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = time.Second
	}
	return &PaymentResultConsumer{
		reader:      reader,
		reconciler:  reconciler,
		sender:      opts.Sender,
		target:      opts.Target,
		retry:       opts.RetryInterval,
		maxAttempts: opts.MaxAttempts,
		metrics:     m,
		logger:      logger,
		propagator:  propagation.TraceContext{},
		tracer:      otel.Tracer(tracerName),
	}
}

// Start launches the poll loop.
func (c *PaymentResultConsumer) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go c.run(runCtx)
}

// Stop cancels the poll loop, waits for the in-flight message and closes the reader.
func (c *PaymentResultConsumer) Stop() error {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.mu.Unlock()

	c.wg.Wait()
	return c.reader.Close()
}

func (c *PaymentResultConsumer) run(ctx context.Context) {
	defer c.wg.Done()
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.ErrorContext(ctx, "fetch payment message failed", slog.String("error", err.Error()))
			if !c.sleep(ctx, c.retry) {
				return
			}
			continue
		}

		if !c.handle(ctx, msg) {
			return
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.ErrorContext(ctx, "commit payment message failed",
				slog.Int64("offset", msg.Offset),
				slog.String("error", err.Error()),
			)
		}
	}
}

// handle applies a single message. It returns false when ctx was cancelled
// before the message was fully handled, leaving it uncommitted.
func (c *PaymentResultConsumer) handle(ctx context.Context, msg kafka.Message) bool {
	carrier := broker.HeaderCarrier(msg.Headers)
	ctx = c.propagator.Extract(ctx, &carrier)
	ctx, span := c.tracer.Start(ctx, "payment_result.handle",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", msg.Topic),
			attribute.Int("messaging.kafka.partition", msg.Partition),
			attribute.Int64("messaging.kafka.offset", msg.Offset),
		),
	)
	defer span.End()

	var payload model.PaymentMessage
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		c.logger.WarnContext(ctx, "malformed payment message",
			slog.Int64("offset", msg.Offset),
			slog.String("error", err.Error()),
		)
		c.metrics.Record(metrics.OutcomeMalformed)
		return true
	}

	if payload.Sender != c.sender || payload.Target != c.target {
		c.logger.InfoContext(ctx, "ignoring message",
			slog.String("sender", payload.Sender),
			slog.String("target", payload.Target),
		)
		c.metrics.Record(metrics.OutcomeIgnored)
		return true
	}

	var success bool
	switch payload.Type {
	case model.MessageTypePaymentSuccess:
		success = true
	case model.MessageTypePaymentFail:
		success = false
	default:
		c.logger.WarnContext(ctx, "unknown payment message type", slog.String("type", payload.Type))
		c.metrics.Record(metrics.OutcomeIgnored)
		return true
	}

	orderID := payload.Payload.OrderID
	span.SetAttributes(attribute.String("order.id", orderID), attribute.Bool("payment.success", success))

	for attempt := 1; ; attempt++ {
		err := c.reconciler.ReconcilePayment(ctx, orderID, success)
		switch {
		case err == nil:
			c.logger.InfoContext(ctx, "payment result applied",
				slog.String("order_id", orderID),
				slog.Bool("success", success),
			)
			c.metrics.Record(metrics.OutcomeProcessed)
			return true
		case errors.Is(err, domainErrors.ErrInvalidPaymentOrderStatus):
			c.logger.InfoContext(ctx, "payment message already processed", slog.String("order_id", orderID))
			c.metrics.Record(metrics.OutcomeAlreadyProcessed)
			return true
		case errors.Is(err, domainErrors.ErrOrderNotFound), errors.Is(err, domainErrors.ErrNotFound):
			c.logger.WarnContext(ctx, "payment message for unknown order", slog.String("order_id", orderID))
			c.metrics.Record(metrics.OutcomeOrderNotFound)
			return true
		}

		if ctx.Err() != nil {
			return false
		}

		if attempt >= c.maxAttempts {
			c.logger.ErrorContext(ctx, "payment message dropped after retries",
				slog.String("order_id", orderID),
				slog.Int("attempts", attempt),
				slog.String("error", err.Error()),
			)
			c.metrics.Record(metrics.OutcomeFailed)
			return true
		}

		c.logger.WarnContext(ctx, "reconcile payment failed, retrying",
			slog.String("order_id", orderID),
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()),
		)
		if !c.sleep(ctx, c.retry) {
			return false
		}
	}
}

func (c *PaymentResultConsumer) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
