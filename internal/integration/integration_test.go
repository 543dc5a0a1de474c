//go:build integration

package integration_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/couchcryptid/lightning-pulse-api/internal/api"
	"github.com/couchcryptid/lightning-pulse-api/internal/config"
	"github.com/couchcryptid/lightning-pulse-api/internal/explorer"
	"github.com/couchcryptid/lightning-pulse-api/internal/model"
	"github.com/couchcryptid/lightning-pulse-api/internal/observability"
	"github.com/couchcryptid/lightning-pulse-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const contentJSON = "application/json"

// Two overlapping exports: beta repeats one alpha row and adds two more.
const (
	alphaCSV = `timestamp,latitude,longitude,peakcurrent,icheight,type
2024-04-26T12:00:05Z,35.10,-97.60,-25000,,0
2024-04-26T12:30:00Z,35.20,-97.40,15000,,0
2024-04-26T12:59:59Z,35.30,-97.20,30000,4000,1
`
	betaCSV = `timestamp,latitude,longitude,peakcurrent,icheight,type
2024-04-26T12:59:59Z,35.30,-97.20,30000,4000,1
2024-04-26T13:15:00Z,35.40,-97.10,-40000,,0
2024-04-26T13:45:00Z,35.50,-97.00,22000,9500,1
`
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := &config.Config{
		DefaultCellSizeDeg: 0.25,
		MaxScatterPoints:   5000,
		HistogramBuckets:   20,
		MaxUploadBytes:     1 << 20,
		QueryConcurrency:   4,
		AggregationWorkers: 4,
	}
	m := observability.NewTestMetrics()
	ex := explorer.New(store.New(m), cfg, m, discardLogger())
	srv := httptest.NewServer(api.NewRouter(ex, cfg, m, discardLogger()))
	t.Cleanup(srv.Close)
	return srv
}

func uploadCSV(t *testing.T, srv *httptest.Server, name, content string) model.MergeResult {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("files", name)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	resp, err := http.Post(srv.URL+"/sources", w.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res model.MergeResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	return res
}

func runQuery(t *testing.T, srv *httptest.Server, body string) model.ResultBundle {
	t.Helper()
	resp, err := http.Post(srv.URL+"/query", contentJSON, strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var bundle model.ResultBundle
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&bundle))
	return bundle
}

func TestUploadQueryRoundTrip(t *testing.T) {
	srv := startServer(t)

	first := uploadCSV(t, srv, "alpha.csv", alphaCSV)
	assert.Equal(t, 3, first.Added)

	second := uploadCSV(t, srv, "beta.csv", betaCSV)
	assert.Equal(t, 2, second.Added)
	assert.Equal(t, 1, second.Duplicates, "the shared strike merges once")

	bundle := runQuery(t, srv, `{}`)
	assert.Equal(t, 5, bundle.Summary.Total)
	assert.Equal(t, 3, bundle.Summary.CGCount)
	assert.Equal(t, 2, bundle.Summary.ICCount)

	// Hour bins: 12:00 has 3 pulses, 13:00 has 2.
	require.Len(t, bundle.TimeSeries, 2)
	assert.Equal(t, 3, bundle.TimeSeries[0].Count)
	assert.Equal(t, 2, bundle.TimeSeries[1].Count)
}

func TestFilteredQueryOverHTTP(t *testing.T) {
	srv := startServer(t)
	uploadCSV(t, srv, "alpha.csv", alphaCSV)
	uploadCSV(t, srv, "beta.csv", betaCSV)

	bundle := runQuery(t, srv, `{
		"filter": {
			"classes": ["INTRACLOUD"],
			"min_peak_current_ka": 25
		},
		"aggregation": {"granularity": "MINUTE"}
	}`)

	// 30 kA IC qualifies, 22 kA IC does not.
	assert.Equal(t, 1, bundle.Summary.Total)
	assert.InDelta(t, 1.0, bundle.Summary.ICShare, 1e-9)
	assert.Equal(t, 1, bundle.ICHeight.Total())
}

func TestQueryValidationOverHTTP(t *testing.T) {
	srv := startServer(t)

	resp, err := http.Post(srv.URL+"/query", contentJSON, strings.NewReader(
		`{"aggregation": {"granularity": "WEEK"}}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "unknown granularity")
}

func TestSourcesAndReset(t *testing.T) {
	srv := startServer(t)
	uploadCSV(t, srv, "alpha.csv", alphaCSV)

	resp, err := http.Get(srv.URL + "/sources")
	require.NoError(t, err)
	var listed struct {
		Sources []model.SourceInfo `json:"sources"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	resp.Body.Close()
	require.Len(t, listed.Sources, 1)
	assert.Equal(t, "alpha.csv", listed.Sources[0].Name)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/sources", nil)
	require.NoError(t, err)
	delResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	delResp.Body.Close()
	assert.Equal(t, http.StatusNoContent, delResp.StatusCode)

	bundle := runQuery(t, srv, `{}`)
	assert.Zero(t, bundle.Summary.Total)
}

func TestHealthEndpoints(t *testing.T) {
	srv := startServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}
