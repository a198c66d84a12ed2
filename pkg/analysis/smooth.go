package analysis

// Smooth applies a centered moving average of windowSize bins. Within half a
// window of either end the window shrinks to the bins that exist, so the
// output has the same length as the input.
func Smooth(response []float64, windowSize int) ([]float64, error) {
	if windowSize <= 0 {
		return nil, ErrInvalidWindow
	}

	n := len(response)
	prefix := make([]float64, n+1)
	for i, v := range response {
		prefix[i+1] = prefix[i] + v
	}

	half := windowSize / 2
	out := make([]float64, n)
	for i := range out {
		lo := max(0, i-half)
		hi := min(n, i-half+windowSize)
		out[i] = (prefix[hi] - prefix[lo]) / float64(hi-lo)
	}
	return out, nil
}
