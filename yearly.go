package main

import (
	"github.com/spf13/cobra"

	"github.com/rtm0/precip/internal/chart"
	"github.com/rtm0/precip/internal/precip"
)

var yearlyCmd = &cobra.Command{
	Use:   "yearly",
	Short: "Summarise and chart yearly precipitation totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := extract()
		if err != nil {
			return err
		}
		yearly := precip.AggregateByYear(r.result.Series)
		summary, err := precip.Describe(yearly)
		if err != nil {
			return err
		}
		r.logger.Info("yearly precipitation", summary.LogAttrs()...)

		path, err := chart.YearlyWithHistogram(".", yearly, cfg.Latitude, cfg.Longitude)
		if err != nil {
			return err
		}
		r.logger.Info("chart saved", "file", path)
		return r.finish()
	},
}
