package offsets

// FindPeaks returns the indices of the local maxima of x whose height is at
// least minHeight and whose prominence is at least minProminence. Flat
// peaks report their middle sample, rounded down. The first and last samples
// are never peaks.
func FindPeaks(x []float64, minHeight, minProminence float64) []int {
	var peaks []int
	for _, p := range localMaxima(x) {
		if x[p] < minHeight {
			continue
		}
		if prominence(x, p) < minProminence {
			continue
		}
		peaks = append(peaks, p)
	}
	return peaks
}

func localMaxima(x []float64) []int {
	var out []int
	last := len(x) - 1
	for i := 1; i < last; i++ {
		if x[i-1] >= x[i] {
			continue
		}
		ahead := i + 1
		for ahead < last && x[ahead] == x[i] {
			ahead++
		}
		if x[ahead] < x[i] {
			out = append(out, (i+ahead-1)/2)
			i = ahead
		}
	}
	return out
}

// prominence measures how far peak p stands above the higher of the lowest
// points on either side before a higher sample is reached.
func prominence(x []float64, p int) float64 {
	leftMin := x[p]
	for i := p; i >= 0 && x[i] <= x[p]; i-- {
		if x[i] < leftMin {
			leftMin = x[i]
		}
	}
	rightMin := x[p]
	for i := p; i < len(x) && x[i] <= x[p]; i++ {
		if x[i] < rightMin {
			rightMin = x[i]
		}
	}
	return x[p] - max(leftMin, rightMin)
}
