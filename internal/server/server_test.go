package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edaqa/internal/quality"
)

func newTestServer(t *testing.T) (*Server, *Metrics) {
	t.Helper()
	m := NewMetrics("quality", "quality-from-csv", "quality-flags-from-csv")
	return New(quality.DefaultOptions(), m, zerolog.Nop()), m
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func csvUpload(t *testing.T, contentType, csvBody string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="data.csv"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write([]byte(csvBody))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func doUpload(t *testing.T, h http.Handler, path, contentType, csvBody string) *httptest.ResponseRecorder {
	t.Helper()
	body, formCT := csvUpload(t, contentType, csvBody)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", formCT)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s.Router(), http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "edaqa", body["service"])
	assert.Equal(t, Version, body["version"])
}

func TestQualityEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	router := s.Router()

	payload := `{"n_rows":5000,"n_cols":12,"max_missing_share":0.1,"numeric_cols":8,"categorical_cols":4}`
	rec := doJSON(t, router, http.MethodPost, "/quality", payload)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		OKForModel   bool            `json:"ok_for_model"`
		QualityScore float64         `json:"quality_score"`
		Message      string          `json:"message"`
		Flags        map[string]bool `json:"flags"`
		DatasetShape map[string]int  `json:"dataset_shape"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.OKForModel)
	assert.InDelta(t, 0.9, body.QualityScore, 1e-9)
	assert.NotEmpty(t, body.Message)
	assert.False(t, body.Flags["too_few_rows"])
	assert.Equal(t, 5000, body.DatasetShape["n_rows"])
	assert.Equal(t, 12, body.DatasetShape["n_cols"])
}

func TestQualityEndpointBadJSON(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s.Router(), http.MethodPost, "/quality", "{not json")

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Detail, "JSON")
}

func TestQualityEndpointValidation(t *testing.T) {
	s, _ := newTestServer(t)
	router := s.Router()

	tests := []struct {
		name    string
		payload string
	}{
		{"NegativeRows", `{"n_rows":-1,"n_cols":5,"max_missing_share":0,"numeric_cols":3,"categorical_cols":2}`},
		{"ShareAboveOne", `{"n_rows":100,"n_cols":5,"max_missing_share":1.5,"numeric_cols":3,"categorical_cols":2}`},
		{"NegativeNumericCols", `{"n_rows":100,"n_cols":5,"max_missing_share":0,"numeric_cols":-3,"categorical_cols":2}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/quality", tt.payload)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		})
	}
}

func TestQualityFromCSV(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doUpload(t, s.Router(), "/quality-from-csv", "text/csv", "a,b\n1,x\n2,y\n3,z\n")

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		OKForModel   bool            `json:"ok_for_model"`
		QualityScore float64         `json:"quality_score"`
		Flags        map[string]bool `json:"flags"`
		DatasetShape map[string]int  `json:"dataset_shape"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.OKForModel)
	assert.Equal(t, 1.0, body.QualityScore)
	assert.False(t, body.Flags["has_duplicates"])
	assert.Equal(t, 3, body.DatasetShape["n_rows"])
}

func TestQualityFromCSVDegraded(t *testing.T) {
	// Duplicates (-15) and a constant column (-10): score 0.75, still ok.
	s, _ := newTestServer(t)
	csv := "a,b\n1,k\n1,k\n2,k\n"
	rec := doUpload(t, s.Router(), "/quality-from-csv", "text/csv", csv)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		OKForModel   bool            `json:"ok_for_model"`
		QualityScore float64         `json:"quality_score"`
		Flags        map[string]bool `json:"flags"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.OKForModel)
	assert.InDelta(t, 0.75, body.QualityScore, 1e-9)
	assert.True(t, body.Flags["has_duplicates"])
	assert.True(t, body.Flags["has_constant_columns"])
}

func TestQualityFromCSVRejectsWrongContentType(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doUpload(t, s.Router(), "/quality-from-csv", "application/pdf", "a\n1\n")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQualityFromCSVRejectsHeaderOnly(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doUpload(t, s.Router(), "/quality-from-csv", "text/csv", "a,b\n")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQualityFromCSVRequiresFileField(t *testing.T) {
	s, _ := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("other", "value"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/quality-from-csv", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQualityFlagsFromCSV(t *testing.T) {
	s, _ := newTestServer(t)
	csv := "a,b\n1,k\n1,k\n2,k\n"
	rec := doUpload(t, s.Router(), "/quality-flags-from-csv", "text/csv", csv)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Flags struct {
			HasDuplicates      bool               `json:"has_duplicates"`
			DuplicateCount     int                `json:"duplicate_count"`
			HasConstantColumns bool               `json:"has_constant_columns"`
			ConstantColumns    []string           `json:"constant_columns"`
			ZeroShares         map[string]float64 `json:"zero_shares"`
		} `json:"flags"`
		QualityScore int            `json:"quality_score"`
		DatasetShape map[string]int `json:"dataset_shape"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Flags.HasDuplicates)
	assert.Equal(t, 1, body.Flags.DuplicateCount)
	assert.Equal(t, []string{"b"}, body.Flags.ConstantColumns)
	assert.Equal(t, 75, body.QualityScore)
	assert.Contains(t, body.Flags.ZeroShares, "a")

	// The score lives at the top level only, never inside the flags object.
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	var flagsObj map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw["flags"], &flagsObj))
	assert.NotContains(t, flagsObj, "quality_score")
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	router := s.Router()

	doJSON(t, router, http.MethodPost, "/quality",
		`{"n_rows":5000,"n_cols":10,"max_missing_share":0,"numeric_cols":5,"categorical_cols":5}`)
	doJSON(t, router, http.MethodPost, "/quality", "{bad")
	doUpload(t, router, "/quality-from-csv", "text/csv", "a\n1\n2\n")

	rec := doJSON(t, router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, int64(3), snap.TotalRequests)
	assert.Equal(t, int64(1), snap.Errors)
	assert.Equal(t, int64(2), snap.EndpointCalls["quality"])
	assert.Equal(t, int64(1), snap.EndpointCalls["quality-from-csv"])
	require.NotNil(t, snap.LastOKForModel)
	assert.True(t, *snap.LastOKForModel)
}

func TestMetricsCollector(t *testing.T) {
	m := NewMetrics("a", "b")

	snap := m.Snapshot()
	assert.Zero(t, snap.TotalRequests)
	assert.Nil(t, snap.LastOKForModel, "verdict starts unset")

	m.Record("a", 10*time.Millisecond, false)
	m.Record("a", 20*time.Millisecond, true)
	m.Record("unknown", 5*time.Millisecond, false)
	m.SetLastVerdict(false)

	snap = m.Snapshot()
	assert.Equal(t, int64(3), snap.TotalRequests)
	assert.Equal(t, int64(1), snap.Errors)
	assert.Equal(t, int64(2), snap.EndpointCalls["a"])
	assert.Equal(t, int64(0), snap.EndpointCalls["b"])
	assert.InDelta(t, 11.67, snap.AvgLatencyMs, 0.01)
	require.NotNil(t, snap.LastOKForModel)
	assert.False(t, *snap.LastOKForModel)
}

func TestStatusFromError(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, statusFromError(quality.ErrInvalidArgument))
}
