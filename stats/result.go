package stats

import "errors"

// ErrEmptyInput is returned when a computation is requested over a sample
// with no valid numeric data. It is the only failure mode of the engine;
// malformed tokens are filtered during parsing, never reported.
var ErrEmptyInput = errors.New("no valid numeric data in input")

// Result bundles every statistic computed over a sample. A Result is
// immutable once produced; recomputing yields a new Result. Statistics
// that are undefined for the sample size are nil and marshal as JSON null.
type Result struct {
	Count int     `json:"count"`
	Sum   float64 `json:"sum"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Range float64 `json:"range"`

	Mean   float64   `json:"mean"`
	Median float64   `json:"median"`
	Modes  []float64 `json:"modes"`

	PopulationVariance float64  `json:"population_variance"`
	PopulationStdDev   float64  `json:"population_std_dev"`
	SampleVariance     *float64 `json:"sample_variance"`
	SampleStdDev       *float64 `json:"sample_std_dev"`

	Q1  float64 `json:"q1"`
	Q2  float64 `json:"q2"`
	Q3  float64 `json:"q3"`
	IQR float64 `json:"iqr"`

	ClassWidth float64 `json:"class_width"`
	Classes    int     `json:"classes"`

	Sample Sample `json:"sample"`
}

// ComputeAll computes the full statistics bundle for the sample. classes
// below 1 falls back to Sturges' rule. The sole failure is ErrEmptyInput
// for an empty sample; with at least one observation every field is
// defined except sample variance and stddev, which need two.
func ComputeAll(s Sample, classes int) (*Result, error) {
	if len(s) == 0 {
		return nil, ErrEmptyInput
	}

	min, _ := Min(s)
	max, _ := Max(s)
	mean, _ := Mean(s)
	median, _ := Median(s)
	modes, _ := Mode(s)
	popVar, _ := PopulationVariance(s)
	popStd, _ := PopulationStdDev(s)
	quartiles, _ := Quartiles(s)
	width, classes, _ := ClassWidth(s, classes)

	res := &Result{
		Count:              len(s),
		Sum:                Sum(s),
		Min:                min,
		Max:                max,
		Range:              max - min,
		Mean:               mean,
		Median:             median,
		Modes:              modes,
		PopulationVariance: popVar,
		PopulationStdDev:   popStd,
		Q1:                 quartiles.Q1,
		Q2:                 quartiles.Q2,
		Q3:                 quartiles.Q3,
		IQR:                quartiles.Q3 - quartiles.Q1,
		ClassWidth:         width,
		Classes:            classes,
		Sample:             s,
	}

	if v, ok := SampleVariance(s); ok {
		sd, _ := SampleStdDev(s)
		res.SampleVariance = &v
		res.SampleStdDev = &sd
	}

	return res, nil
}
