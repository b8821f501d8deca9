package main

import (
	"github.com/spf13/cobra"

	"github.com/rtm0/precip/internal/precip"
	"github.com/rtm0/precip/internal/report"
	"github.com/rtm0/precip/internal/vm"
)

var (
	exportYearly bool
	metricPrefix string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the series as CSV to stdout and optionally push it to Victoria Metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := extract()
		if err != nil {
			return err
		}
		series := r.result.Series

		out := cmd.OutOrStdout()
		rows := len(series)
		if exportYearly {
			yearly := precip.AggregateByYear(series)
			rows = len(yearly)
			err = report.WriteYearly(out, yearly)
		} else {
			err = report.WriteSeries(out, series)
		}
		if err != nil {
			return err
		}
		r.metrics.PointsExported.WithLabelValues("csv", "success").Add(float64(rows))

		if cfg.VMInsertURL != "" {
			vmCli, err := vm.NewClient(r.logger, cfg.VMInsertURL, cfg.Concurrency, metricPrefix, cfg.Latitude, cfg.Longitude)
			if err != nil {
				return err
			}
			// Missing values have no line representation.
			points := series.Valid()
			if skipped := len(series) - len(points); skipped > 0 {
				r.logger.Warn("skipping missing values", "count", skipped)
			}
			n, err := vm.Export(cmd.Context(), r.logger, vmCli, points, cfg.Concurrency, cfg.RecsPerInsert)
			r.metrics.PointsExported.WithLabelValues("vm", "success").Add(float64(n))
			r.metrics.PointsExported.WithLabelValues("vm", "error").Add(float64(len(points) - n))
			if err != nil {
				return err
			}
		}
		return r.finish()
	},
}

func init() {
	f := exportCmd.Flags()
	f.BoolVar(&exportYearly, "yearly", false, "write yearly totals instead of the monthly series")
	f.StringVar(&cfg.VMInsertURL, "vm-insert-url", cfg.VMInsertURL, "Victoria Metrics insert API URL, e.g. http://localhost:8428/write; empty disables the push")
	f.IntVar(&cfg.Concurrency, "concurrency", cfg.Concurrency, "number of concurrent requests to Victoria Metrics")
	f.IntVar(&cfg.RecsPerInsert, "recs-per-insert", cfg.RecsPerInsert, "number of records sent to Victoria Metrics in one batch")
	f.StringVar(&metricPrefix, "metric-prefix", "precip", "prefix of the exported metric names")
}
