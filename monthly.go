package main

import (
	"github.com/spf13/cobra"

	"github.com/rtm0/precip/internal/chart"
)

var monthlyCmd = &cobra.Command{
	Use:   "monthly",
	Short: "Chart the monthly series and its per-month contribution to each year",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := extract()
		if err != nil {
			return err
		}
		series := r.result.Series

		path, err := chart.MonthlyWithHistogram(".", series, cfg.Latitude, cfg.Longitude)
		if err != nil {
			return err
		}
		r.logger.Info("chart saved", "file", path)

		path, err = chart.StackedByMonth(".", series, cfg.Latitude, cfg.Longitude)
		if err != nil {
			return err
		}
		r.logger.Info("chart saved", "file", path)
		return r.finish()
	},
}
