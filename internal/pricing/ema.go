package pricing

// Fixed is a constant fair value.
type Fixed float64

// FairValue returns the constant.
func (f Fixed) FairValue() float64 {
	return float64(f)
}

// EMA is an exponential moving average of mid-prices.
type EMA struct {
	Alpha float64 `json:"alpha" yaml:"alpha"`
	Last  float64 `json:"last" yaml:"last"`
	Ready bool    `json:"ready" yaml:"ready"`
}

// NewEMA creates an uninitialized average with smoothing factor alpha.
func NewEMA(alpha float64) EMA {
	return EMA{Alpha: alpha}
}

// Update folds mid into the average and returns the new value.
// The first sample initializes the average without smoothing.
func (e *EMA) Update(mid float64) float64 {
	if !e.Ready {
		e.Last = mid
		e.Ready = true
		return e.Last
	}
	e.Last = e.Alpha*mid + (1-e.Alpha)*e.Last
	return e.Last
}

// Value returns the current average.
func (e EMA) Value() (float64, bool) {
	return e.Last, e.Ready
}
