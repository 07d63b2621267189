package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Module provides a private registry and the collectors registered on it.
var Module = fx.Options(
	fx.Provide(NewRegistry),
	fx.Provide(
		func(r *prometheus.Registry) prometheus.Registerer { return r },
		func(r *prometheus.Registry) prometheus.Gatherer { return r },
	),
	fx.Provide(NewHTTPMetrics, NewConsumerMetrics),
)
