package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/segmentio/kafka-go"
	"go.uber.org/fx"

	"github.com/polkiloo/orders/internal/config"
	"github.com/polkiloo/orders/internal/metrics"
	"github.com/polkiloo/orders/internal/server/http/handlers"
	"github.com/polkiloo/orders/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		NewOrdersFacade,
		func(f *OrdersFacade) handlers.OrdersFacade { return f },
		func(r *kafka.Reader) worker.MessageReader { return r },
		newHTTPServer,
		newPaymentConsumer,
	),
	fx.Invoke(registerLifecycle),
)

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type consumerParams struct {
	fx.In

	Reader  worker.MessageReader
	Facade  *OrdersFacade
	Config  *config.Config
	Metrics *metrics.ConsumerMetrics
	Logger  *slog.Logger
}

func newPaymentConsumer(p consumerParams) *worker.PaymentResultConsumer {
	return worker.NewPaymentResultConsumer(
		p.Reader,
		p.Facade,
		worker.ConsumerOptions{
			Sender:        p.Config.PaymentSender,
			Target:        p.Config.OrdersTarget,
			RetryInterval: p.Config.ConsumerRetryInterval,
			MaxAttempts:   p.Config.ConsumerMaxAttempts,
		},
		p.Metrics,
		p.Logger,
	)
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Consumer   *worker.PaymentResultConsumer
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting orders service",
				slog.String("addr", p.Server.Addr),
				slog.String("topic", p.Config.PaymentResultsTopic),
			)
			// The start context expires once startup completes.
			p.Consumer.Start(context.WithoutCancel(ctx))
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := p.Consumer.Stop(); err != nil {
				p.Logger.Warn("payment consumer close failed", slog.String("error", err.Error()))
			}

			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("orders service stopped")
			return nil
		},
	})
}
