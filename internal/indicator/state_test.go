package indicator

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestStateUpdateFeedsEveryIndicator(t *testing.T) {
	t.Parallel()

	st := NewState(10)
	st.Add(NewSMA(2)).Add(NewEMA(2))

	if got := len(st.Indicators()); got != 2 {
		t.Fatalf("Indicators() len = %d, want 2", got)
	}

	st.Update(Candle{Close: decimal.NewFromInt(100)})
	values := st.Update(Candle{Close: decimal.NewFromInt(110)})

	if len(values) != 2 {
		t.Fatalf("Update returned %d values, want 2", len(values))
	}
	if st.Buffer.Len() != 2 {
		t.Errorf("Buffer.Len() = %d, want 2", st.Buffer.Len())
	}
}

func TestStateBufferEvictsOldest(t *testing.T) {
	t.Parallel()

	st := NewState(2)
	st.Update(Candle{Close: decimal.NewFromInt(1)})
	st.Update(Candle{Close: decimal.NewFromInt(2)})
	st.Update(Candle{Close: decimal.NewFromInt(3)})

	if st.Buffer.Len() != 2 {
		t.Fatalf("Buffer.Len() = %d, want capped at 2", st.Buffer.Len())
	}
	latest, ok := st.Buffer.Latest()
	if !ok || !latest.Close.Equal(decimal.NewFromInt(3)) {
		t.Errorf("Latest().Close = %v, want 3", latest.Close)
	}
}
