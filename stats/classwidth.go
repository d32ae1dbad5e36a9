package stats

import "math"

// SturgesClasses derives a histogram class count from the sample size:
// ceil(1 + 3.322*log10(n)). Returns 1 for n < 1.
func SturgesClasses(n int) int {
	if n < 1 {
		return 1
	}
	return int(math.Ceil(1 + 3.322*math.Log10(float64(n))))
}

// ClassWidth returns the histogram class width for the requested class
// count: range/classes, rounded up at the second decimal place. A class
// count below 1 falls back to Sturges' rule. The resolved class count is
// returned alongside the width.
func ClassWidth(s Sample, classes int) (float64, int, bool) {
	rng, ok := Range(s)
	if !ok {
		return 0, 0, false
	}
	if classes < 1 {
		classes = SturgesClasses(len(s))
	}
	width := math.Ceil(rng/float64(classes)*100) / 100
	return width, classes, true
}

// Bin is a single histogram class: the half-open interval [Lower, Upper)
// and the number of observations falling in it. The last bin is closed so
// the maximum is counted.
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Histogram groups the sample into classes of equal width starting at the
// minimum. A class count below 1 falls back to Sturges' rule.
func Histogram(s Sample, classes int) ([]Bin, bool) {
	width, classes, ok := ClassWidth(s, classes)
	if !ok {
		return nil, false
	}
	min, _ := Min(s)
	max, _ := Max(s)

	if width == 0 {
		// all observations identical
		return []Bin{{Lower: min, Upper: max, Count: len(s)}}, true
	}

	bins := make([]Bin, classes)
	for i := range bins {
		bins[i].Lower = min + float64(i)*width
		bins[i].Upper = min + float64(i+1)*width
	}
	for _, v := range s {
		idx := int((v - min) / width)
		if idx >= classes {
			idx = classes - 1
		}
		bins[idx].Count++
	}
	return bins, true
}
