package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "warn", "json")
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("skipping file", "file", "PRECIP_PT_mensal_1950.nc")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "skipping file", line["msg"])
	assert.Equal(t, "PRECIP_PT_mensal_1950.nc", line["file"])
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "debug", "text")
	require.NoError(t, err)

	logger.Debug("reading file", "steps", 12)
	assert.Contains(t, buf.String(), "steps=12")
}

func TestNewLogger_Invalid(t *testing.T) {
	_, err := NewLogger(&bytes.Buffer{}, "loud", "text")
	assert.ErrorContains(t, err, "log level")

	_, err = NewLogger(&bytes.Buffer{}, "info", "xml")
	assert.ErrorContains(t, err, "log format")
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("ERROR")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelError, lvl)
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.FilesMatched.Add(3)
	m.FilesFailed.Inc()
	m.PointsExtracted.Add(24)
	m.PointsExported.WithLabelValues("csv", "success").Add(24)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.FilesMatched))

	path := filepath.Join(t.TempDir(), "precip.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "precip_files_matched_total 3")
	assert.Contains(t, string(data), "precip_files_failed_total 1")
	assert.Contains(t, string(data), `precip_points_exported_total{outcome="success",sink="csv"} 24`)
}

func TestNewMetrics_IndependentRegistries(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()
	a.FilesMatched.Inc()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.FilesMatched))
}
