package v1

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/emperance/statify/history"
	"github.com/emperance/statify/stats"
)

const (
	// StatusAvailable reflects a healthy service.
	StatusAvailable = "available"
)

type healthZResponse struct {
	Status   string `json:"status"`
	LastSync string `json:"last_sync,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// calculateResponse is the POST /statistics body: the persisted entry plus
// the same statistics rendered with the configured display precision.
type calculateResponse struct {
	history.Entry
	Display map[string]string `json:"display"`
}

// displayFields renders each statistic with prec decimal places, using the
// null markers for undefined values.
func displayFields(res *stats.Result, prec int) map[string]string {
	return map[string]string{
		"sum":                 stats.FormatValue(res.Sum, prec),
		"min":                 stats.FormatValue(res.Min, prec),
		"max":                 stats.FormatValue(res.Max, prec),
		"range":               stats.FormatValue(res.Range, prec),
		"mean":                stats.FormatValue(res.Mean, prec),
		"median":              stats.FormatValue(res.Median, prec),
		"mode":                stats.FormatModes(res.Modes, prec),
		"population_variance": stats.FormatValue(res.PopulationVariance, prec),
		"population_std_dev":  stats.FormatValue(res.PopulationStdDev, prec),
		"sample_variance":     stats.FormatOptional(res.SampleVariance, prec),
		"sample_std_dev":      stats.FormatOptional(res.SampleStdDev, prec),
		"q1":                  stats.FormatValue(res.Q1, prec),
		"q2":                  stats.FormatValue(res.Q2, prec),
		"q3":                  stats.FormatValue(res.Q3, prec),
		"iqr":                 stats.FormatValue(res.IQR, prec),
		"class_width":         stats.FormatValue(res.ClassWidth, prec),
	}
}

func writeJSON(logger zerolog.Logger, w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Err(err).Msg("failed to encode response body")
	}
}

func writeError(logger zerolog.Logger, w http.ResponseWriter, status int, err error) {
	writeJSON(logger, w, status, errorResponse{Error: err.Error()})
}
