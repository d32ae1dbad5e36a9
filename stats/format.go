package stats

import (
	"strconv"
	"strings"
)

const (
	// DefaultPrecision is the display precision for non-integral values.
	DefaultPrecision = 4

	// Missing marks a statistic that is undefined for the given sample.
	// Rendering undefined results as "0" or "" would conflate no-data
	// with a zero value.
	Missing = "n/a"

	// NoMode marks a sample in which every value occurs exactly once.
	NoMode = "no mode"
)

// FormatValue renders v for display: integral values as plain integers,
// everything else with at most prec decimals and no trailing zeros.
func FormatValue(v float64, prec int) string {
	if prec < 0 {
		prec = DefaultPrecision
	}
	s := strconv.FormatFloat(v, 'f', prec, 64)
	if strings.ContainsRune(s, '.') {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}

// FormatOptional renders a possibly-undefined statistic, using the Missing
// marker for nil.
func FormatOptional(v *float64, prec int) string {
	if v == nil {
		return Missing
	}
	return FormatValue(*v, prec)
}

// FormatModes renders a mode set, using the NoMode sentinel when the
// sample had no repeated value.
func FormatModes(modes []float64, prec int) string {
	if len(modes) == 0 {
		return NoMode
	}
	parts := make([]string, len(modes))
	for i, m := range modes {
		parts[i] = FormatValue(m, prec)
	}
	return strings.Join(parts, ", ")
}
