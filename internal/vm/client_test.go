package vm

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rtm0/precip/internal/precip"
)

func testPoints() []precip.ObservationPoint {
	return []precip.ObservationPoint{
		{Period: precip.NewYearMonth(1951, time.March), Value: 42.5},
		{Period: precip.NewYearMonth(1951, time.April), Value: math.NaN()},
		{Period: precip.NewYearMonth(1951, time.May), Value: 3},
	}
}

func TestPointsToText_InfluxDB(t *testing.T) {
	body, err := io.ReadAll(pointsToText(testPoints(), "precip", 37.24, -8.7, pointToInfluxDB))
	require.NoError(t, err)

	march := time.Date(1951, time.March, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	may := time.Date(1951, time.May, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "precip,lat=37.24,lon=-8.70 value=42.5 "+itoa(march), lines[0])
	assert.Equal(t, "precip,lat=37.24,lon=-8.70 value=3 "+itoa(may), lines[1])
}

func TestPointsToText_CSV(t *testing.T) {
	body, err := io.ReadAll(pointsToText(testPoints()[:1], "precip", 37.24, -8.7, pointToCSV))
	require.NoError(t, err)

	march := time.Date(1951, time.March, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	assert.Equal(t, itoa(march)+",37.24,-8.70,42.5\n", string(body))
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(slog.Default(), "http://localhost:8428/nope", 1, "precip", 0, 0)
	assert.ErrorContains(t, err, "not supported")

	_, err = NewClient(slog.Default(), "http://localhost:8428/write", 1, "bad prefix", 0, 0)
	assert.ErrorContains(t, err, "metric prefix")

	c, err := NewClient(slog.Default(), "http://localhost:8428/api/v1/import/csv", 1, "precip", 0, 0)
	require.NoError(t, err)
	assert.Contains(t, c.insertURL, "format=")
	assert.Contains(t, c.insertURL, "precip_value")
}

func TestClient_Insert(t *testing.T) {
	var (
		mu    sync.Mutex
		query string
		body  string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		query, body = r.URL.RawQuery, string(b)
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c, err := NewClient(slog.Default(), srv.URL+"/write", 2, "precip", 37.24, -8.7)
	require.NoError(t, err)
	require.NoError(t, c.Insert(context.Background(), testPoints()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "precision=ms", query)
	assert.Equal(t, 2, strings.Count(body, "\n"))
}

func TestClient_InsertUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c, err := NewClient(slog.Default(), srv.URL+"/write", 1, "precip", 0, 0)
	require.NoError(t, err)
	err = c.Insert(context.Background(), testPoints())
	assert.ErrorContains(t, err, "unexpected status 400")
}

type recordingInserter struct {
	mu      sync.Mutex
	batches [][]precip.ObservationPoint
	failOn  precip.YearMonth
}

func (r *recordingInserter) Insert(_ context.Context, points []precip.ObservationPoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if points[0].Period == r.failOn {
		return errors.New("boom")
	}
	r.batches = append(r.batches, points)
	return nil
}

func series(n int) []precip.ObservationPoint {
	points := make([]precip.ObservationPoint, n)
	start := precip.NewYearMonth(1950, time.January)
	for i := range points {
		points[i] = precip.ObservationPoint{Period: start + precip.YearMonth(i), Value: float64(i)}
	}
	return points
}

func TestExport_Batches(t *testing.T) {
	ins := &recordingInserter{failOn: -1}
	n, err := Export(context.Background(), slog.Default(), ins, series(25), 3, 10)
	require.NoError(t, err)
	assert.Equal(t, 25, n)

	sizes := make(map[int]int)
	for _, b := range ins.batches {
		sizes[len(b)]++
	}
	assert.Equal(t, map[int]int{10: 2, 5: 1}, sizes)
}

func TestExport_ReportsFailedBatches(t *testing.T) {
	points := series(30)
	ins := &recordingInserter{failOn: points[10].Period}
	n, err := Export(context.Background(), slog.Default(), ins, points, 2, 10)
	require.Error(t, err)
	assert.Equal(t, 20, n)
	assert.Len(t, ins.batches, 2)
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
