package vm

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rtm0/precip/internal/precip"
)

// Client is a Victoria Metrics client capable of inserting monthly
// precipitation samples via various protocols.
type Client struct {
	logger       *slog.Logger
	httpCli      *http.Client
	insertURL    string
	metricPrefix string
	lat          float64
	lon          float64
	pointToText  pointToTextFunc
}

const metricPrefixRE = "^[a-zA-Z0-9_]+$"

// NewClient creates a new VM client. Samples are labelled with the requested
// coordinate.
func NewClient(logger *slog.Logger, insertURL string, maxConns int, metricPrefix string, lat, lon float64) (*Client, error) {
	url, err := url.Parse(insertURL)
	if err != nil {
		return nil, err
	}

	matches, err := regexp.MatchString(metricPrefixRE, metricPrefix)
	if err != nil {
		return nil, err
	}
	if !matches {
		return nil, fmt.Errorf("metric prefix %q does not match %q regular expression", metricPrefix, metricPrefixRE)
	}

	apiParams := apiParamsFuncs[url.Path]
	if apiParams == nil {
		return nil, fmt.Errorf("inserting into %q is not supported", insertURL)
	}
	q := url.Query()
	for name, value := range apiParams(metricPrefix) {
		q.Add(name, value)
	}
	url.RawQuery = q.Encode()

	return &Client{
		logger: logger,
		httpCli: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   30 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        maxConns,
				IdleConnTimeout:     30 * time.Second,
				MaxIdleConnsPerHost: maxConns,
				MaxConnsPerHost:     maxConns,
			},
		},
		insertURL:    url.String(),
		metricPrefix: metricPrefix,
		lat:          lat,
		lon:          lon,
		pointToText:  pointToTextFuncs[url.Path],
	}, nil
}

// Insert posts a batch of observations to Victoria Metrics.
func (c *Client) Insert(ctx context.Context, points []precip.ObservationPoint) error {
	body := pointsToText(points, c.metricPrefix, c.lat, c.lon, c.pointToText)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.insertURL, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "text/plain")
	res, err := c.httpCli.Do(req)
	if err != nil {
		return fmt.Errorf("post samples: %w", err)
	}
	defer res.Body.Close()
	if _, err := io.Copy(io.Discard, res.Body); err != nil {
		c.logger.Error("Failed to drain response body", "err", err)
	}
	if res.StatusCode != http.StatusNoContent && res.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", res.StatusCode)
	}
	return nil
}

type apiParamsFunc func(string) map[string]string

var apiParamsFuncs = map[string]apiParamsFunc{
	"/influx/write":        influxDBAPIParams,
	"/influx/api/v2/write": influxDBAPIParams,
	"/write":               influxDBAPIParams,
	"/api/v2/write":        influxDBAPIParams,
	"/api/v1/import/csv":   csvAPIParams,
}

func influxDBAPIParams(metricPrefix string) map[string]string {
	return map[string]string{"precision": "ms"}
}

func csvAPIParams(metricPrefix string) map[string]string {
	return map[string]string{
		"format": fmt.Sprintf(""+
			"1:time:unix_ms,"+
			"2:label:lat,"+
			"3:label:lon,"+
			"4:metric:%s_value", metricPrefix),
	}
}

type pointToTextFunc func(*strings.Builder, *precip.ObservationPoint, string, float64, float64)

// pointsToText converts observations to a request body, one line each.
func pointsToText(points []precip.ObservationPoint, metricPrefix string, lat, lon float64, pointToText pointToTextFunc) io.Reader {
	var sb strings.Builder
	for _, p := range points {
		// Neither protocol can carry a missing value.
		if math.IsNaN(p.Value) {
			continue
		}
		pointToText(&sb, &p, metricPrefix, lat, lon)
		sb.WriteString("\n")
	}
	return strings.NewReader(sb.String())
}

var pointToTextFuncs = map[string]pointToTextFunc{
	"/influx/write":        pointToInfluxDB,
	"/influx/api/v2/write": pointToInfluxDB,
	"/write":               pointToInfluxDB,
	"/api/v2/write":        pointToInfluxDB,
	"/api/v1/import/csv":   pointToCSV,
}

var influxDBFmt = "%s,lat=%.2f,lon=%.2f value=%g %d"

// pointToInfluxDB writes an observation in InfluxDB line protocol with a
// millisecond timestamp at the start of its month.
func pointToInfluxDB(sb *strings.Builder, p *precip.ObservationPoint, metricPrefix string, lat, lon float64) {
	fmt.Fprintf(sb, influxDBFmt, metricPrefix, lat, lon, p.Value, p.Period.Time().UnixMilli())
}

var csvFmt = "%d,%.2f,%.2f,%g"

// pointToCSV writes an observation as a CSV record.
func pointToCSV(sb *strings.Builder, p *precip.ObservationPoint, _ string, lat, lon float64) {
	fmt.Fprintf(sb, csvFmt, p.Period.Time().UnixMilli(), lat, lon, p.Value)
}
