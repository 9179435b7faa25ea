package pricing

import "math"

// BlackScholes prices a European call with constants calibrated offline.
type BlackScholes struct {
	Strike float64
	Rate   float64
	Vol    float64
	Expiry float64
}

// NormCDF is the standard normal cumulative distribution function.
func NormCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// D1D2 returns the d1 and d2 terms for spot.
func (bs BlackScholes) D1D2(spot float64) (float64, float64) {
	volT := bs.Vol * math.Sqrt(bs.Expiry)
	d1 := (math.Log(spot/bs.Strike) + (bs.Rate+0.5*bs.Vol*bs.Vol)*bs.Expiry) / volT
	return d1, d1 - volT
}

// Call returns the call value for spot. It reports false when the inputs
// would not produce a finite price.
func (bs BlackScholes) Call(spot float64) (float64, bool) {
	if spot <= 0 || bs.Strike <= 0 || bs.Vol <= 0 || bs.Expiry <= 0 {
		return 0, false
	}
	d1, d2 := bs.D1D2(spot)
	price := spot*NormCDF(d1) - bs.Strike*math.Exp(-bs.Rate*bs.Expiry)*NormCDF(d2)
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, false
	}
	return price, true
}
