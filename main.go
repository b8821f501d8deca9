// Command precip extracts the monthly precipitation series nearest a
// coordinate from a directory of gridded NetCDF files and charts, summarises
// or exports it.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rtm0/precip/internal/config"
	"github.com/rtm0/precip/internal/observability"
	"github.com/rtm0/precip/internal/precip"
)

var cfg = config.Default()

var rootCmd = &cobra.Command{
	Use:           "precip",
	Short:         "Point precipitation series from gridded monthly files",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.Float64Var(&cfg.Latitude, "lat", 0, "latitude of the target point")
	f.Float64Var(&cfg.Longitude, "lon", 0, "longitude of the target point")
	f.StringVar(&cfg.DataDirectory, "data-directory", "", "directory holding the "+precip.FilePrefix+"*"+precip.FileSuffix+" files")
	f.StringVar(&cfg.Field, "variable", cfg.Field, "name of the precipitation variable in the files")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")
	f.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: text or json")
	f.StringVar(&cfg.MetricsFile, "metrics-file", cfg.MetricsFile, "write run metrics to this Prometheus textfile")
	for _, name := range []string{"lat", "lon", "data-directory"} {
		if err := rootCmd.MarkPersistentFlagRequired(name); err != nil {
			panic(err)
		}
	}

	rootCmd.AddCommand(monthlyCmd, yearlyCmd, exportCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// run carries what every subcommand needs after flag parsing.
type run struct {
	logger  *slog.Logger
	metrics *observability.Metrics
	result  *precip.Result
}

// extract validates the configuration, builds the logger and metrics and
// reads the series.
func extract() (*run, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger, err := observability.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	metrics := observability.NewMetrics()

	ex := precip.NewExtractor(logger, metrics, precip.WithField(cfg.Field))
	res, err := ex.Extract(cfg.DataDirectory, cfg.Latitude, cfg.Longitude)
	if err != nil {
		return nil, err
	}
	for _, f := range res.Failures {
		logger.Error("Could not read file", "file", f.File, "err", f.Err)
	}
	if len(res.Series) > 0 {
		logger.Info("series",
			"from", res.Series[0].Period.String(),
			"to", res.Series[len(res.Series)-1].Period.String(),
			"points", len(res.Series),
		)
	}
	return &run{logger: logger, metrics: metrics, result: res}, nil
}

// finish writes the metrics textfile when one was requested.
func (r *run) finish() error {
	if cfg.MetricsFile == "" {
		return nil
	}
	if err := r.metrics.WriteTextfile(cfg.MetricsFile); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
