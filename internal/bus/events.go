package bus

import "coreengine/pkg/types"

// Type aliases keep this package's public API (Sender[MarketEventT], ...)
// readable without forcing every caller to import pkg/types under a bus
// alias as well.
type (
	MarketEventT    = types.MarketEvent
	SignalEventT    = types.SignalEvent
	OrderEventT     = types.OrderEvent
	ExecutionEventT = types.ExecutionEvent
	RiskEventT      = types.RiskEvent
)
