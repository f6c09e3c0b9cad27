package api

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/vikor/internal/config"
	"github.com/MikeSquared-Agency/vikor/internal/ranker"
	"github.com/MikeSquared-Agency/vikor/internal/report"
	"github.com/MikeSquared-Agency/vikor/internal/vikor"
)

const goldenBody = `{
	"alternatives": ["A", "B", "C"],
	"criteria": [
		{"name": "quality", "type": "benefit", "weight": 0.6},
		{"name": "speed", "type": "benefit", "weight": 0.4}
	],
	"matrix": [[8, 7], [5, 9], [6, 6]]
}`

const dataCSV = `Alternative,Quality,Speed
A,8,7
B,5,9
C,6,6
`

const criteriaCSV = `Criterion,Type,Weight
Quality,Benefit,0.6
Speed,benefit,0.4
`

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{AdminToken: "secret"},
		Engine: config.EngineConfig{V: 0.5, Degenerate: "zero", MaxParallel: 2},
		Limits: config.LimitsConfig{
			MaxAlternatives:    10,
			MaxCriteria:        5,
			RateLimitPerMinute: 1000,
			MaxUploadBytes:     1 << 20,
			MaxBatchSize:       3,
		},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config) (http.Handler, *ranker.Service) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts, err := cfg.EngineOptions()
	require.NoError(t, err)
	svc := ranker.New(vikor.NewEngine(opts, logger), nil, cfg, logger)
	return NewRouter(svc, cfg, logger), svc
}

func post(h http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestRankEndpoint(t *testing.T) {
	h, svc := newTestRouter(t, testConfig())

	w := post(h, "/api/v1/rank", goldenBody)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var run ranker.Run
	decodeBody(t, w, &run)

	require.Len(t, run.Scores, 3)
	ranks := []int{run.Scores[0].Rank, run.Scores[1].Rank, run.Scores[2].Rank}
	assert.Equal(t, []int{3, 2, 1}, ranks)
	assert.InDelta(t, 0.4375, run.Scores[1].Q, 1e-6)
	assert.Equal(t, 0.5, run.V)
	assert.NotEmpty(t, run.RequestID, "request id should come from the middleware")
	require.NotNil(t, run.Report)
	assert.Equal(t, report.SheetFinalScores, run.Report.FinalScores.Name)
	assert.Equal(t, []string{"C", "B"}, run.Compromise.Alternatives)
	assert.Equal(t, []string{"B", "C"}, run.Frontier)

	assert.Equal(t, int64(1), svc.Stats().Completed)
}

func TestRankEndpointKeepsCallerRequestID(t *testing.T) {
	h, _ := newTestRouter(t, testConfig())

	body := strings.Replace(goldenBody, `"alternatives"`, `"request_id": "mine", "alternatives"`, 1)
	w := post(h, "/api/v1/rank", body)
	require.Equal(t, http.StatusOK, w.Code)

	var run ranker.Run
	decodeBody(t, w, &run)
	assert.Equal(t, "mine", run.RequestID)
}

func TestRankEndpointErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		policy string
		status int
		kind   string
		field  string
	}{
		{"malformed json", `{"alternatives":`, "zero", http.StatusBadRequest, "", ""},
		{"bad type", strings.Replace(goldenBody, `"type": "benefit"`, `"type": "better"`, 1), "zero", http.StatusBadRequest, ranker.KindInvalidInput, "criterion type"},
		{"v out of range", strings.Replace(goldenBody, `"alternatives"`, `"v": 1.5, "alternatives"`, 1), "zero", http.StatusBadRequest, ranker.KindInvalidInput, "v"},
		{"negative weight", strings.Replace(goldenBody, `"weight": 0.4`, `"weight": -0.4`, 1), "zero", http.StatusBadRequest, ranker.KindInvalidInput, "weight"},
		{"ragged matrix", strings.Replace(goldenBody, `[5, 9]`, `[5]`, 1), "zero", http.StatusBadRequest, ranker.KindInvalidInput, "matrix"},
		{"degenerate column", strings.Replace(goldenBody, `[[8, 7], [5, 9], [6, 6]]`, `[[8, 7], [8, 9], [8, 6]]`, 1), "fail", http.StatusUnprocessableEntity, ranker.KindDegenerate, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Engine.Degenerate = tt.policy
			h, _ := newTestRouter(t, cfg)

			w := post(h, "/api/v1/rank", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())

			var body map[string]interface{}
			decodeBody(t, w, &body)
			assert.NotEmpty(t, body["error"])
			if tt.kind != "" {
				assert.Equal(t, tt.kind, body["kind"])
			}
			if tt.field != "" {
				assert.Equal(t, tt.field, body["field"])
			}
		})
	}
}

func TestRankEndpointEnforcesLimits(t *testing.T) {
	cfg := testConfig()
	cfg.Limits.MaxAlternatives = 2
	h, _ := newTestRouter(t, cfg)

	w := post(h, "/api/v1/rank", goldenBody)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]interface{}
	decodeBody(t, w, &body)
	assert.Equal(t, ranker.KindInvalidInput, body["kind"])
}

func TestBatchEndpoint(t *testing.T) {
	h, _ := newTestRouter(t, testConfig())

	bad := strings.Replace(goldenBody, `"type": "benefit"`, `"type": "better"`, 1)
	w := post(h, "/api/v1/rank/batch", `{"problems": [`+goldenBody+`,`+bad+`]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp BatchResponse
	decodeBody(t, w, &resp)
	require.Len(t, resp.Items, 2)

	assert.Equal(t, 0, resp.Items[0].Index)
	require.NotNil(t, resp.Items[0].Run)
	assert.Equal(t, "C", resp.Items[0].Run.Compromise.Alternatives[0])

	assert.Equal(t, 1, resp.Items[1].Index)
	assert.Nil(t, resp.Items[1].Run)
	assert.Equal(t, ranker.KindInvalidInput, resp.Items[1].Kind)
	assert.NotEmpty(t, resp.Items[1].Error)
}

func TestBatchEndpointLimits(t *testing.T) {
	h, _ := newTestRouter(t, testConfig())

	w := post(h, "/api/v1/rank/batch", `{"problems": []}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	many := strings.Repeat(goldenBody+",", 3) + goldenBody
	w = post(h, "/api/v1/rank/batch", `{"problems": [`+many+`]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func multipartRequest(t *testing.T, files map[string]string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		fw, err := mw.CreateFormFile(name, name+".csv")
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	for name, value := range fields {
		require.NoError(t, mw.WriteField(name, value))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/v1/rank/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadEndpoint(t *testing.T) {
	h, _ := newTestRouter(t, testConfig())

	req := multipartRequest(t, map[string]string{"data": dataCSV, "criteria": criteriaCSV}, map[string]string{"v": "1"})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var run ranker.Run
	decodeBody(t, w, &run)
	assert.Equal(t, 1.0, run.V)
	require.Len(t, run.Scores, 3)
	assert.Equal(t, "A", run.Scores[0].Alternative)
	assert.InDelta(t, 0.375, run.Scores[1].Q, 1e-6)
	assert.Equal(t, []string{"Quality", "Speed"}, run.Report.RawData.Columns)
}

func TestUploadEndpointErrors(t *testing.T) {
	tests := []struct {
		name   string
		files  map[string]string
		fields map[string]string
		field  string
	}{
		{"missing criteria", map[string]string{"data": dataCSV}, nil, ""},
		{"missing data", map[string]string{"criteria": criteriaCSV}, nil, ""},
		{"bad v", map[string]string{"data": dataCSV, "criteria": criteriaCSV}, map[string]string{"v": "half"}, ""},
		{"non numeric cell", map[string]string{"data": "Alt,X,Y\nA,1,two\nB,2,3\n", "criteria": criteriaCSV}, nil, "cell"},
		{"criteria without weight", map[string]string{"data": dataCSV, "criteria": "Criterion,Type\nQuality,benefit\n"}, nil, "criteria header"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestRouter(t, testConfig())

			w := httptest.NewRecorder()
			h.ServeHTTP(w, multipartRequest(t, tt.files, tt.fields))
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

			if tt.field != "" {
				var body map[string]interface{}
				decodeBody(t, w, &body)
				assert.Equal(t, tt.field, body["field"])
			}
		})
	}
}

func TestUploadEndpointReportsRowAndColumn(t *testing.T) {
	h, _ := newTestRouter(t, testConfig())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, multipartRequest(t, map[string]string{
		"data":     "Alt,X,Y\nA,1,two\nB,2,3\n",
		"criteria": criteriaCSV,
	}, nil))
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]interface{}
	decodeBody(t, w, &body)
	assert.Equal(t, float64(0), body["row"])
	assert.Equal(t, float64(1), body["column"])
}

func TestExportEndpoint(t *testing.T) {
	h, _ := newTestRouter(t, testConfig())

	w := post(h, "/api/v1/rank/export", goldenBody)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/zip", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "vikor_results.zip")
	assert.NotEmpty(t, w.Header().Get("X-Run-ID"))

	zr, err := zip.NewReader(bytes.NewReader(w.Body.Bytes()), int64(w.Body.Len()))
	require.NoError(t, err)

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{
		report.SheetRawData + ".csv",
		report.SheetNormalized + ".csv",
		report.SheetWeighted + ".csv",
		report.SheetFinalScores + ".csv",
	}, names)
}

func TestExportEndpointError(t *testing.T) {
	h, _ := newTestRouter(t, testConfig())

	w := post(h, "/api/v1/rank/export", strings.Replace(goldenBody, `"type": "benefit"`, `"type": "better"`, 1))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

func TestStatsEndpoint(t *testing.T) {
	h, _ := newTestRouter(t, testConfig())

	req := httptest.NewRequest("GET", "/api/v1/stats", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	post(h, "/api/v1/rank", goldenBody)
	post(h, "/api/v1/rank", `{"matrix": []}`)

	req = httptest.NewRequest("GET", "/api/v1/stats", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var stats ranker.Stats
	decodeBody(t, w, &stats)
	assert.Equal(t, int64(1), stats.Completed)
	assert.Equal(t, int64(1), stats.Failed)
	assert.NotEmpty(t, stats.LastRunID)
}

func TestMetricsRouter(t *testing.T) {
	h := NewMetricsRouter()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "vikor_run_duration_seconds")
}

func TestRankEndpointExtremeMagnitudes(t *testing.T) {
	h, svc := newTestRouter(t, testConfig())

	extreme := strings.Replace(goldenBody, `[[8, 7], [5, 9], [6, 6]]`, `[[1e308, 7], [-1e308, 9], [0, 6]]`, 1)
	w := post(h, "/api/v1/rank", extreme)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var run ranker.Run
	decodeBody(t, w, &run)
	assert.NotEmpty(t, run.Compromise.Alternatives)

	overflow := strings.Replace(goldenBody, `"weight": 0.6`, `"weight": 1.7976931348623157e308`, 1)
	overflow = strings.Replace(overflow, `"weight": 0.4`, `"weight": 1.7976931348623157e308`, 1)
	overflow = strings.Replace(overflow, `[[8, 7], [5, 9], [6, 6]]`, `[[8, 9], [5, 7], [6, 6]]`, 1)
	w = post(h, "/api/v1/rank", overflow)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	var body map[string]interface{}
	decodeBody(t, w, &body)
	assert.Equal(t, ranker.KindInvalidInput, body["kind"])
	assert.Equal(t, "weights", body["field"])

	stats := svc.Stats()
	assert.Equal(t, int64(1), stats.Completed)
	assert.Equal(t, int64(1), stats.Failed)
}

func TestUploadEndpointRejectsWorkbook(t *testing.T) {
	h, _ := newTestRouter(t, testConfig())

	var book bytes.Buffer
	zw := zip.NewWriter(&book)
	_, err := zw.Create("xl/workbook.xml")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, multipartRequest(t, map[string]string{
		"data":     book.String(),
		"criteria": criteriaCSV,
	}, nil))
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]interface{}
	decodeBody(t, w, &body)
	assert.Equal(t, "data: "+report.ErrWorkbook.Error(), body["error"])
}
