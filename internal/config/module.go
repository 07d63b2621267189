package config

import "go.uber.org/fx"

// Module loads service configuration from flags and environment.
var Module = fx.Provide(Load)
