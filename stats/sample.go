package stats

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Sample is an ordered sequence of finite numeric observations. Duplicates
// and input order are preserved; operations that need sorted data work on a
// copy.
type Sample []float64

// delimiters accepted between tokens in free-form input.
func isDelimiter(r rune) bool {
	switch r {
	case ',', ';', ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// Parse extracts a Sample from free-form text. Tokens are separated by any
// run of commas, semicolons or whitespace. A token survives only if the
// whole token parses as a finite number; everything else is filtered, not
// rejected. Empty input yields an empty Sample.
func Parse(raw string) Sample {
	if raw == "" {
		return Sample{}
	}

	tokens := strings.FieldsFunc(raw, isDelimiter)
	sample := make(Sample, 0, len(tokens))

	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		v, err := strconv.ParseFloat(token, 64)
		if err != nil {
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		sample = append(sample, v)
	}

	return sample
}

// ParseValues builds a Sample from an already-structured collection,
// dropping any non-finite values while preserving order.
func ParseValues(values []float64) Sample {
	sample := make(Sample, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		sample = append(sample, v)
	}
	return sample
}

// sorted returns an ascending copy of the sample.
func (s Sample) sorted() Sample {
	cp := make(Sample, len(s))
	copy(cp, s)
	sort.Float64s(cp)
	return cp
}

// Join renders the sample back to delimited text using display formatting.
func (s Sample) Join(sep string) string {
	parts := make([]string, len(s))
	for i, v := range s {
		parts[i] = FormatValue(v, DefaultPrecision)
	}
	return strings.Join(parts, sep)
}
