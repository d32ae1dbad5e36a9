package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/emperance/statify/stats"
)

const (
	flagClasses   = "classes"
	flagOutput    = "output"
	flagPrecision = "precision"

	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

func getCalcCmd() *cobra.Command {
	calcCmd := &cobra.Command{
		Use:   "calc [data...]",
		Args:  cobra.MinimumNArgs(1),
		Short: "Computes descriptive statistics over the given values",
		Long: `Computes descriptive statistics over free-form numeric input.
Values may be separated by commas, semicolons or whitespace; tokens that do
not parse as numbers are ignored.`,
		Example: `  statify calc "1, 2, 3, 4, 5"
  statify calc 2 4 4 4 5 5 7 9 --classes 3 --output json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			classes, err := cmd.Flags().GetInt(flagClasses)
			if err != nil {
				return err
			}
			output, err := cmd.Flags().GetString(flagOutput)
			if err != nil {
				return err
			}
			precision, err := cmd.Flags().GetInt(flagPrecision)
			if err != nil {
				return err
			}

			sample := stats.Parse(strings.Join(args, " "))

			res, err := stats.ComputeAll(sample, classes)
			if err != nil {
				return err
			}

			rendered, err := renderResult(res, output, precision)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return nil
		},
	}

	calcCmd.Flags().Int(flagClasses, 0, "histogram class count; below 1 uses Sturges' rule")
	calcCmd.Flags().String(flagOutput, outputText, "output format; must be text, json or yaml")
	calcCmd.Flags().Int(flagPrecision, stats.DefaultPrecision, "decimal places used for text output")

	return calcCmd
}

func renderResult(res *stats.Result, output string, prec int) (string, error) {
	switch strings.ToLower(output) {
	case outputJSON:
		bz, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return "", err
		}
		return string(bz), nil

	case outputYAML:
		bz, err := yaml.Marshal(res)
		if err != nil {
			return "", err
		}
		return strings.TrimRight(string(bz), "\n"), nil

	case outputText:
		return renderResultText(res, prec), nil

	default:
		return "", fmt.Errorf("invalid output format: %s", output)
	}
}

func renderResultText(res *stats.Result, prec int) string {
	lines := []string{
		fmt.Sprintf("count:               %d", res.Count),
		fmt.Sprintf("sum:                 %s", stats.FormatValue(res.Sum, prec)),
		fmt.Sprintf("min:                 %s", stats.FormatValue(res.Min, prec)),
		fmt.Sprintf("max:                 %s", stats.FormatValue(res.Max, prec)),
		fmt.Sprintf("range:               %s", stats.FormatValue(res.Range, prec)),
		fmt.Sprintf("mean:                %s", stats.FormatValue(res.Mean, prec)),
		fmt.Sprintf("median:              %s", stats.FormatValue(res.Median, prec)),
		fmt.Sprintf("mode:                %s", stats.FormatModes(res.Modes, prec)),
		fmt.Sprintf("population variance: %s", stats.FormatValue(res.PopulationVariance, prec)),
		fmt.Sprintf("population std dev:  %s", stats.FormatValue(res.PopulationStdDev, prec)),
		fmt.Sprintf("sample variance:     %s", stats.FormatOptional(res.SampleVariance, prec)),
		fmt.Sprintf("sample std dev:      %s", stats.FormatOptional(res.SampleStdDev, prec)),
		fmt.Sprintf("q1:                  %s", stats.FormatValue(res.Q1, prec)),
		fmt.Sprintf("q2:                  %s", stats.FormatValue(res.Q2, prec)),
		fmt.Sprintf("q3:                  %s", stats.FormatValue(res.Q3, prec)),
		fmt.Sprintf("iqr:                 %s", stats.FormatValue(res.IQR, prec)),
		fmt.Sprintf("class width:         %s (%d classes)", stats.FormatValue(res.ClassWidth, prec), res.Classes),
	}
	return strings.Join(lines, "\n")
}
