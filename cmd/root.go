package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const (
	flagLogLevel  = "log-level"
	flagLogFormat = "log-format"

	logFormatJSON = "json"
	logFormatText = "text"
)

var rootCmd = &cobra.Command{
	Use:   "statify",
	Short: "statify is a descriptive-statistics calculator and market statistics service",
	Long: `statify parses free-form numeric input into samples and computes
descriptive statistics over them. It can run as a one-shot calculator or as
an HTTP service with calculation history and live stock-market statistics.`,
}

func init() {
	rootCmd.PersistentFlags().String(flagLogLevel, zerolog.InfoLevel.String(), "log level")
	rootCmd.PersistentFlags().String(flagLogFormat, logFormatText, "log format; must be either json or text")

	rootCmd.AddCommand(
		getServeCmd(),
		getCalcCmd(),
		getVersionCmd(),
	)
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// getCmdLogger builds a zerolog logger from the persistent logging flags.
func getCmdLogger(cmd *cobra.Command) (zerolog.Logger, error) {
	logLvlStr, err := cmd.Flags().GetString(flagLogLevel)
	if err != nil {
		return zerolog.Nop(), err
	}

	logLvl, err := zerolog.ParseLevel(logLvlStr)
	if err != nil {
		return zerolog.Nop(), err
	}

	logFormatStr, err := cmd.Flags().GetString(flagLogFormat)
	if err != nil {
		return zerolog.Nop(), err
	}

	var logWriter io.Writer
	switch strings.ToLower(logFormatStr) {
	case logFormatJSON:
		logWriter = os.Stderr

	case logFormatText:
		logWriter = zerolog.ConsoleWriter{Out: os.Stderr}

	default:
		return zerolog.Nop(), fmt.Errorf("invalid logging format: %s", logFormatStr)
	}

	return zerolog.New(logWriter).Level(logLvl).With().Timestamp().Logger(), nil
}

// trapSignal will listen for SIGTERM or SIGINT and cancel the main
// context allowing the main process to gracefully exit.
func trapSignal(cancel context.CancelFunc, logger zerolog.Logger) {
	sigCh := make(chan os.Signal, 1)

	signal.Notify(sigCh, syscall.SIGTERM)
	signal.Notify(sigCh, syscall.SIGINT)

	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("received signal; shutting down...")
		cancel()
	}()
}
