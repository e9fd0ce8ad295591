package indicator

// State is the strategy-owned indicator state: a candle buffer plus the
// set of indicators that are fed from it. A strategy holds exactly one
// State and never shares it across strategy instances.
type State struct {
	Buffer     *Buffer
	indicators []Indicator
}

// NewState creates a State whose candle buffer holds at most bufferDepth
// candles.
func NewState(bufferDepth int) *State {
	return &State{Buffer: NewBuffer(bufferDepth)}
}

// Add registers indicator against this state and returns the State for
// chaining, e.g. state.Add(NewSMA(20)).Add(NewRSI(14)).
func (s *State) Add(ind Indicator) *State {
	s.indicators = append(s.indicators, ind)
	return s
}

// Update pushes candle onto the buffer and feeds it to every registered
// indicator, returning their updated values in registration order.
func (s *State) Update(c Candle) []Value {
	s.Buffer.Push(c)
	values := make([]Value, len(s.indicators))
	for i, ind := range s.indicators {
		values[i] = ind.UpdateOHLCV(c)
	}
	return values
}

// Indicators returns the registered indicators in registration order.
func (s *State) Indicators() []Indicator { return s.indicators }
