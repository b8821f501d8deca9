// Package chart renders the exploratory precipitation charts as PNG files.
package chart

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/rtm0/precip/internal/precip"
)

// File names of the rendered charts.
const (
	MonthlyHistogramFile = "monthly_precipitation_with_histogram.png"
	MonthlyStackedFile   = "yearly_precipitation_per_month.png"
	YearlyHistogramFile  = "yearly_precipitation_with_histogram.png"
)

const histBins = 30

var (
	pageWidth  = 16 * vg.Inch
	pageHeight = 9 * vg.Inch
	barColor   = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	curveColor = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
)

// monthColors follows the seasons: blues for winter, greens for spring,
// reds for summer and browns for autumn.
var monthColors = [12]color.RGBA{
	{R: 0x00, G: 0x00, B: 0xff, A: 0xff},
	{R: 0x33, G: 0x99, B: 0xff, A: 0xff},
	{R: 0x22, G: 0x8b, B: 0x22, A: 0xff},
	{R: 0x32, G: 0xcd, B: 0x32, A: 0xff},
	{R: 0x3c, G: 0xb3, B: 0x71, A: 0xff},
	{R: 0xff, G: 0x63, B: 0x47, A: 0xff},
	{R: 0xff, G: 0x45, B: 0x00, A: 0xff},
	{R: 0xff, G: 0x00, B: 0x00, A: 0xff},
	{R: 0xff, G: 0xa5, B: 0x00, A: 0xff},
	{R: 0xd2, G: 0x69, B: 0x1e, A: 0xff},
	{R: 0x8b, G: 0x45, B: 0x13, A: 0xff},
	{R: 0x00, G: 0x00, B: 0x80, A: 0xff},
}

// MonthlyWithHistogram draws the monthly series next to the histogram of
// its values.
func MonthlyWithHistogram(dir string, series precip.TimeSeries, lat, lon float64) (string, error) {
	xys, vals := monthlyPoints(series)
	if len(xys) == 0 {
		return "", precip.ErrNoData
	}

	left := plot.New()
	left.Title.Text = fmt.Sprintf("Monthly Precipitation at Latitude %v, Longitude %v", lat, lon)
	left.X.Label.Text = "Date"
	left.Y.Label.Text = "Precipitation (mm)"
	left.X.Tick.Marker = januaryTicks(series)
	left.Add(plotter.NewGrid())
	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return "", err
	}
	line.Color = barColor
	points.Color = barColor
	points.Radius = vg.Points(2)
	left.Add(line, points)

	right := plot.New()
	right.Title.Text = "Precipitation Histogram"
	right.X.Label.Text = "Precipitation (mm)"
	right.Y.Label.Text = "Frequency"
	hist, err := plotter.NewHist(vals, histBins)
	if err != nil {
		return "", err
	}
	hist.FillColor = barColor
	right.Add(plotter.NewGrid(), hist)

	path := filepath.Join(dir, MonthlyHistogramFile)
	return path, saveSideBySide(path, left, right)
}

// StackedByMonth draws one bar per year split into its monthly
// contributions.
func StackedByMonth(dir string, series precip.TimeSeries, lat, lon float64) (string, error) {
	years := series.Years()
	if len(years) == 0 {
		return "", precip.ErrNoData
	}
	layers := monthLayers(series, years)

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Yearly Precipitation at Latitude %v, Longitude %v, monthly contribution", lat, lon)
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Precipitation (mm)"
	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	p.Legend.Left = true

	width := (pageWidth - 2*vg.Inch) / vg.Length(len(years)+1)
	var below *plotter.BarChart
	for m, values := range layers {
		bars, err := plotter.NewBarChart(values, width)
		if err != nil {
			return "", err
		}
		bars.Color = monthColors[m]
		bars.LineStyle.Width = 0
		if below != nil {
			bars.StackOn(below)
		}
		p.Add(bars)
		p.Legend.Add(time.Month(m+1).String(), bars)
		below = bars
	}
	p.NominalX(yearLabels(years)...)

	path := filepath.Join(dir, MonthlyStackedFile)
	return path, p.Save(pageWidth, pageHeight/1.5, path)
}

// YearlyWithHistogram draws the yearly totals next to their density
// histogram and the fitted normal curve.
func YearlyWithHistogram(dir string, yearly precip.Yearly, lat, lon float64) (string, error) {
	if len(yearly) == 0 {
		return "", precip.ErrNoData
	}
	totals := plotter.Values(yearly.Totals())

	left := plot.New()
	left.Title.Text = fmt.Sprintf("Yearly Accumulated Precipitation at (%v,%v)", lat, lon)
	left.X.Label.Text = "Year"
	left.Y.Label.Text = "Accumulated Precipitation (mm)"
	left.Add(plotter.NewGrid())
	bars, err := plotter.NewBarChart(totals, (pageWidth*3/4)/vg.Length(len(yearly)+2))
	if err != nil {
		return "", err
	}
	bars.Color = barColor
	bars.LineStyle.Width = 0
	left.Add(bars)
	left.NominalX(yearLabels(yearly.Years())...)

	right := plot.New()
	right.Title.Text = "Probability Density"
	right.X.Label.Text = "Accumulated Precipitation (mm)"
	hist, err := plotter.NewHist(totals, histBins)
	if err != nil {
		return "", err
	}
	hist.Normalize(1)
	hist.FillColor = barColor
	right.Add(plotter.NewGrid(), hist)
	right.Legend.Add("Yearly totals", hist)

	if mu, sigma := yearly.Mean(), yearly.StdDev(); sigma > 0 && !math.IsNaN(sigma) {
		normal := distuv.Normal{Mu: mu, Sigma: sigma}
		curve := plotter.NewFunction(normal.Prob)
		curve.Color = curveColor
		curve.Width = vg.Points(1.5)
		right.Add(curve)
		right.Legend.Add("Normal fit", curve)
		right.X.Min = math.Min(right.X.Min, mu-3*sigma)
		right.X.Max = math.Max(right.X.Max, mu+3*sigma)
	}

	path := filepath.Join(dir, YearlyHistogramFile)
	return path, saveSideBySide(path, left, right)
}

// monthlyPoints returns the non-missing observations as (index, value)
// pairs and as plain values.
func monthlyPoints(series precip.TimeSeries) (plotter.XYs, plotter.Values) {
	xys := make(plotter.XYs, 0, len(series))
	vals := make(plotter.Values, 0, len(series))
	for i, p := range series {
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			continue
		}
		xys = append(xys, plotter.XY{X: float64(i), Y: p.Value})
		vals = append(vals, p.Value)
	}
	return xys, vals
}

// monthLayers sums the series into a [month][year] grid. Missing months
// contribute zero height.
func monthLayers(series precip.TimeSeries, years []int) [12]plotter.Values {
	col := make(map[int]int, len(years))
	for i, y := range years {
		col[y] = i
	}
	var layers [12]plotter.Values
	for m := range layers {
		layers[m] = make(plotter.Values, len(years))
	}
	for _, p := range series {
		if math.IsNaN(p.Value) {
			continue
		}
		layers[p.Period.Month()-1][col[p.Period.Year()]] += p.Value
	}
	return layers
}

func yearLabels(years []int) []string {
	labels := make([]string, len(years))
	for i, y := range years {
		labels[i] = strconv.Itoa(y)
	}
	return labels
}

// januaryTicks labels the first observation of every year on an index axis.
func januaryTicks(series precip.TimeSeries) plot.Ticker {
	var ticks []plot.Tick
	for i, p := range series {
		if i == 0 || p.Period.Year() != series[i-1].Period.Year() {
			ticks = append(ticks, plot.Tick{Value: float64(i), Label: p.Period.String()})
		}
	}
	return plot.ConstantTicks(ticks)
}

func saveSideBySide(path string, left, right *plot.Plot) error {
	img := vgimg.New(pageWidth, pageHeight)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: 1,
		Cols: 2,
		PadX: vg.Millimeter,
		PadY: vg.Millimeter,
	}
	canvases := plot.Align([][]*plot.Plot{{left, right}}, tiles, dc)
	left.Draw(canvases[0][0])
	right.Draw(canvases[0][1])

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
