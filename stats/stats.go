// Package stats implements the descriptive-statistics engine: parsing
// free-form numeric input into samples and computing central tendency,
// dispersion, quartiles and histogram class widths over them. Every
// operation is a pure function; statistics that are mathematically
// inapplicable for a given sample size report ok=false rather than zero.
package stats

import "sort"

// Sum returns the sum of all observations.
func Sum(s Sample) float64 {
	sum := 0.0
	for _, v := range s {
		sum += v
	}
	return sum
}

// Min returns the smallest observation.
func Min(s Sample) (float64, bool) {
	if len(s) == 0 {
		return 0, false
	}
	min := s[0]
	for _, v := range s[1:] {
		if v < min {
			min = v
		}
	}
	return min, true
}

// Max returns the largest observation.
func Max(s Sample) (float64, bool) {
	if len(s) == 0 {
		return 0, false
	}
	max := s[0]
	for _, v := range s[1:] {
		if v > max {
			max = v
		}
	}
	return max, true
}

// Range returns max - min.
func Range(s Sample) (float64, bool) {
	if len(s) == 0 {
		return 0, false
	}
	min, _ := Min(s)
	max, _ := Max(s)
	return max - min, true
}

// Mean returns the arithmetic average of the sample.
func Mean(s Sample) (float64, bool) {
	if len(s) == 0 {
		return 0, false
	}
	return Sum(s) / float64(len(s)), true
}

// Median returns the middle observation of the sorted sample, or the
// average of the two central observations for even-length samples.
func Median(s Sample) (float64, bool) {
	if len(s) == 0 {
		return 0, false
	}
	return medianSorted(s.sorted()), true
}

// medianSorted computes the median of an already-sorted slice.
func medianSorted(sorted []float64) float64 {
	n := len(sorted)
	mid := n / 2
	if n%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// Mode returns every value whose frequency equals the maximum observed
// frequency, in ascending order. ok is false when no value repeats: a
// sample of all-distinct values has no mode, which is not the same as an
// empty result.
func Mode(s Sample) ([]float64, bool) {
	if len(s) == 0 {
		return nil, false
	}

	freq := make(map[float64]int, len(s))
	maxFreq := 0
	for _, v := range s {
		freq[v]++
		if freq[v] > maxFreq {
			maxFreq = freq[v]
		}
	}
	if maxFreq < 2 {
		return nil, false
	}

	modes := make([]float64, 0, len(freq))
	for v, c := range freq {
		if c == maxFreq {
			modes = append(modes, v)
		}
	}
	sort.Float64s(modes)
	return modes, true
}
