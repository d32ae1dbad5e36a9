package stats

import "math"

// PopulationVariance returns the mean of squared deviations from the sample
// mean, dividing by n. Defined for any non-empty sample; a single
// observation has zero population variance.
func PopulationVariance(s Sample) (float64, bool) {
	if len(s) == 0 {
		return 0, false
	}
	return sumSquaredDeviations(s) / float64(len(s)), true
}

// SampleVariance returns the squared-deviation sum divided by n-1
// (Bessel's correction). Undefined below two observations.
func SampleVariance(s Sample) (float64, bool) {
	if len(s) < 2 {
		return 0, false
	}
	return sumSquaredDeviations(s) / float64(len(s)-1), true
}

// PopulationStdDev returns the square root of the population variance.
func PopulationStdDev(s Sample) (float64, bool) {
	v, ok := PopulationVariance(s)
	if !ok {
		return 0, false
	}
	return math.Sqrt(v), true
}

// SampleStdDev returns the square root of the sample variance.
func SampleStdDev(s Sample) (float64, bool) {
	v, ok := SampleVariance(s)
	if !ok {
		return 0, false
	}
	return math.Sqrt(v), true
}

func sumSquaredDeviations(s Sample) float64 {
	mean, _ := Mean(s)
	sum := 0.0
	for _, v := range s {
		diff := v - mean
		sum += diff * diff
	}
	return sum
}
