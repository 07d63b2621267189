package catalog

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/orders/internal/config"
	"github.com/polkiloo/orders/internal/domain/gateway"
)

// Module exposes the catalog reservation client to fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (gateway.ProductReserver, error) {
	return NewHTTPClient(p.Config.CatalogAPIBaseURL, p.Config.CatalogAPIKey, p.Config.UpstreamTimeout, p.Logger)
}
