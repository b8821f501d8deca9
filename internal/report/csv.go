// Package report writes extracted series as CSV.
package report

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/rtm0/precip/internal/precip"
)

// WriteSeries writes one "period,value" row per observation.
func WriteSeries(w io.Writer, series precip.TimeSeries) error {
	rows := []precip.ObservationPoint(series)
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("write series csv: %w", err)
	}
	return nil
}

// WriteYearly writes one "year,total" row per year.
func WriteYearly(w io.Writer, yearly precip.Yearly) error {
	rows := []precip.YearlyAggregate(yearly)
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("write yearly csv: %w", err)
	}
	return nil
}
