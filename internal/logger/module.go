package logger

import "go.uber.org/fx"

// Module provides the trace-correlated JSON logger.
var Module = fx.Provide(New)
