package bridge

import (
	"context"

	"github.com/shopspring/decimal"

	"coreengine/pkg/types"
)

// MockClient is an in-memory ExchangeClient reference implementation:
// it immediately reports every submitted order as filled. Useful for
// tests and for running the bridge without a real venue adapter wired
// in.
type MockClient struct {
	Submitted []types.OrderEvent
}

func NewMockClient() *MockClient { return &MockClient{} }

func (m *MockClient) SubmitOrder(_ context.Context, order types.OrderEvent) (types.ExecutionEvent, error) {
	m.Submitted = append(m.Submitted, order)
	return types.ExecutionEvent{
		ClientOrderID: order.ClientOrderID,
		Exchange:      order.Exchange,
		Status:        types.OrderFilled,
		Fills: []types.Fill{{
			Price:    derivePrice(order),
			Quantity: order.Quantity,
		}},
	}, nil
}

// derivePrice uses the order's limit price when set, otherwise zero —
// a real venue adapter reports whatever price it actually filled at.
func derivePrice(order types.OrderEvent) decimal.Decimal {
	if order.LimitPrice != nil {
		return *order.LimitPrice
	}
	return decimal.Zero
}
