package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/orders/internal/adapter/broker"
	"github.com/polkiloo/orders/internal/adapter/catalog"
	"github.com/polkiloo/orders/internal/adapter/payment"
	"github.com/polkiloo/orders/internal/app"
	"github.com/polkiloo/orders/internal/config"
	"github.com/polkiloo/orders/internal/logger"
	"github.com/polkiloo/orders/internal/metrics"
	"github.com/polkiloo/orders/internal/pkg/auth"
	"github.com/polkiloo/orders/internal/server/http/router"
	"github.com/polkiloo/orders/internal/storage/postgres"
	"github.com/polkiloo/orders/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		metrics.Module,
		auth.Module,
		postgres.Module,
		catalog.Module,
		payment.Module,
		broker.Module,
		usecase.Module,
		fx.Provide(func(s *postgres.Storage) app.HealthChecker { return s }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
