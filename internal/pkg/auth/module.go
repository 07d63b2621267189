package auth

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/orders/internal/config"
)

// Module provides the identity token strategy via fx.
var Module = fx.Provide(newTokenStrategy)

type strategyParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newTokenStrategy(p strategyParams) Strategy {
	if p.Config.JWKSURL != "" {
		return NewJWKSStrategy(p.Config.JWKSURL, p.Logger)
	}
	return NewHMACStrategy(p.Config.JWTSecret, Options{})
}
