package broker

import (
	"go.uber.org/fx"
)

// Module provides the payment results reader.
var Module = fx.Provide(NewReader)
