// Package offsets finds repeating sky dither patterns in p/q offset series.
package offsets

import "gonum.org/v1/gonum/floats"

const (
	// MinProminence is the minimum prominence of an autocorrelation peak.
	MinProminence = 0.25
	// MinHeight is the minimum height of an autocorrelation peak.
	MinHeight = 0.0
)

// Pattern is the result of offset pattern detection.
type Pattern struct {
	PLag int `json:"p_lag"`
	QLag int `json:"q_lag"`
	// Lag is the combined pattern length used for splitting. 0 means no
	// usable repeating pattern.
	Lag int `json:"lag"`
}

// Autocorrelation returns the autocorrelation of x for lags 0..len(x)-1,
// normalized by the zero-lag value unless that value is zero.
func Autocorrelation(x []float64) []float64 {
	n := len(x)
	out := make([]float64, n)
	for k := 0; k < n; k++ {
		out[k] = floats.Dot(x[:n-k], x[k:])
	}
	if n > 0 && out[0] != 0 {
		floats.Scale(1/out[0], out)
	}
	return out
}

// Lag returns the lag of the first prominent autocorrelation peak of x, or
// 0 when there is none.
func Lag(x []float64) int {
	if len(x) < 2 {
		return 0
	}
	peaks := FindPeaks(Autocorrelation(x), MinHeight, MinProminence)
	if len(peaks) == 0 {
		return 0
	}
	return peaks[0]
}

// Detect runs lag detection on the p and q series, applies the short-series
// overrides and combines the two lags.
func Detect(p, q []float64) Pattern {
	var pat Pattern
	pat.PLag = Lag(p)
	pat.QLag = Lag(q)

	switch {
	case pat.PLag == 0 && pat.QLag == 0 && len(q) == 4:
		// A single ABBA is invisible to the autocorrelation.
		if q[0] == q[3] && q[1] == q[2] {
			pat.QLag = 4
		}
	case len(q) == 2:
		pat.QLag = 2
	}

	pat.Lag = pat.QLag
	if pat.PLag > 0 && pat.PLag != pat.QLag {
		pat.Lag = 0
	}
	return pat
}

// Disabled returns the pattern used when offset splitting is turned off for
// a sequence of n steps.
func Disabled(n int) Pattern { return Pattern{Lag: n} }
