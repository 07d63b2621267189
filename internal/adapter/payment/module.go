package payment

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/orders/internal/config"
	"github.com/polkiloo/orders/internal/domain/gateway"
)

// Module exposes the payments client to fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (gateway.PaymentCreator, error) {
	return NewHTTPClient(p.Config.PaymentsAPIBaseURL, p.Config.PaymentsAPIKey, p.Config.UpstreamTimeout, p.Logger)
}
