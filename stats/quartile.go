package stats

// QuartileSet holds the three quartile cut points of a sample.
type QuartileSet struct {
	Q1 float64 `json:"q1"`
	Q2 float64 `json:"q2"`
	Q3 float64 `json:"q3"`
}

// Quartiles computes quartiles with the exclusive-median method: Q2 is the
// median of the full sorted sample, Q1 the median of the elements strictly
// below the midpoint index, and Q3 the median of the elements above it. For
// odd-length samples the middle element belongs to neither half. This is
// deliberately not Tukey's hinge method or an interpolating method.
func Quartiles(s Sample) (QuartileSet, bool) {
	n := len(s)
	if n == 0 {
		return QuartileSet{}, false
	}
	if n == 1 {
		v := s[0]
		return QuartileSet{Q1: v, Q2: v, Q3: v}, true
	}

	sorted := s.sorted()
	mid := n / 2

	lower := sorted[:mid]
	upper := sorted[mid:]
	if n%2 == 1 {
		upper = sorted[mid+1:]
	}

	return QuartileSet{
		Q1: medianSorted(lower),
		Q2: medianSorted(sorted),
		Q3: medianSorted(upper),
	}, true
}

// IQR returns the interquartile range Q3 - Q1.
func IQR(s Sample) (float64, bool) {
	q, ok := Quartiles(s)
	if !ok {
		return 0, false
	}
	return q.Q3 - q.Q1, true
}
