package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vvengine/domain/engine"
	"vvengine/internal"
)

func newTestServer() *Server {
	return NewServer(internal.NewLogger(internal.LogLevelError))
}

func postJSON(t *testing.T, s *Server, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) engine.EngineResult {
	t.Helper()
	var res engine.EngineResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

func TestHealth(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAttributeSampleSize(t *testing.T) {
	s := newTestServer()

	rec := postJSON(t, s, "/api/attribute/sample-size", map[string]interface{}{
		"confidence": 0.95, "reliability": 0.90, "allowable_failures": 0,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	res := decodeResult(t, rec)
	assert.Equal(t, engine.MethodSuccessRun, res.Method)
	require.NotNil(t, res.Attribute)
	assert.Equal(t, 29, res.Attribute.SampleSize)
}

func TestAttributeSampleSize_RequiresFailures(t *testing.T) {
	s := newTestServer()

	rec := postJSON(t, s, "/api/attribute/sample-size", map[string]interface{}{
		"confidence": 0.95, "reliability": 0.90,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_INPUT")
}

func TestAttributeSweep(t *testing.T) {
	s := newTestServer()

	rec := postJSON(t, s, "/api/attribute/sweep", map[string]interface{}{
		"confidence": 0.95, "reliability": 0.90,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	res := decodeResult(t, rec)
	assert.Equal(t, engine.MethodAttributeSweep, res.Method)
	require.Len(t, res.AttributeSweep, 4)
	assert.Equal(t, 76, res.AttributeSweep[3].SampleSize)
}

func TestToleranceFactors(t *testing.T) {
	s := newTestServer()

	rec := postJSON(t, s, "/api/tolerance/factors", map[string]interface{}{
		"sample_size": 10, "confidence": 0.95, "reliability": 0.90, "sidedness": "two",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var factor engine.ToleranceFactorResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &factor))
	assert.InDelta(t, 2.8382, factor.Factor, 1e-3)
	assert.Equal(t, 10, factor.SampleSize)
}

func TestToleranceAnalyze(t *testing.T) {
	s := newTestServer()

	rec := postJSON(t, s, "/api/tolerance/analyze", map[string]interface{}{
		"values":      []float64{9, 9.5, 10, 10.5, 11, 10, 10.2, 9.8, 10.1, 9.9},
		"confidence":  0.95,
		"reliability": 0.90,
		"sidedness":   "two",
		"spec_limits": map[string]float64{"lsl": 5, "usl": 15},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	res := decodeResult(t, rec)
	require.NotNil(t, res.Tolerance)
	require.NotNil(t, res.Tolerance.Comparison)
	assert.True(t, res.Tolerance.Comparison.Pass)
}

func TestPipelineAnalyze_FallbackSurfacesMethod(t *testing.T) {
	s := newTestServer()

	rec := postJSON(t, s, "/api/pipeline/analyze", map[string]interface{}{
		"values":      []float64{1, 1.01, 1.02, 1.03, 100, 100.01, 100.02, 100.03},
		"confidence":  0.95,
		"reliability": 0.90,
		"sidedness":   "two",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	res := decodeResult(t, rec)
	assert.Equal(t, engine.MethodNonParametricWilks, res.Method)
	require.NotNil(t, res.Pipeline)
	assert.Len(t, res.Pipeline.Attempts, 3)
}

func TestReliabilityEndpoints(t *testing.T) {
	s := newTestServer()

	rec := postJSON(t, s, "/api/reliability/zero-failure", map[string]interface{}{
		"confidence": 0.95, "unit_multiplier": 1,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	res := decodeResult(t, rec)
	require.NotNil(t, res.Reliability)
	assert.InDelta(t, 2.996, res.Reliability.Value, 0.01)

	rec = postJSON(t, s, "/api/reliability/acceleration", map[string]interface{}{
		"activation_energy_ev": 0.7, "t_use_k": 298, "t_test_k": 358,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	res = decodeResult(t, rec)
	require.NotNil(t, res.Reliability)
	assert.InDelta(t, 96.4, res.Reliability.Value, 0.5)
}

func TestErrorMapping(t *testing.T) {
	s := newTestServer()

	// Out-of-range parameter: 422 with DOMAIN_ERROR
	rec := postJSON(t, s, "/api/attribute/sweep", map[string]interface{}{
		"confidence": 1.5, "reliability": 0.90,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "DOMAIN_ERROR")
	assert.Contains(t, rec.Body.String(), "confidence")

	// Too-small sample: 422 with INSUFFICIENT_DATA
	rec = postJSON(t, s, "/api/pipeline/analyze", map[string]interface{}{
		"values": []float64{1, 2}, "confidence": 0.95, "reliability": 0.90, "sidedness": "two",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "INSUFFICIENT_DATA")

	// Malformed body: 400 with INVALID_INPUT
	req := httptest.NewRequest(http.MethodPost, "/api/attribute/sweep", bytes.NewReader([]byte("{not json")))
	recRaw := httptest.NewRecorder()
	s.Handler().ServeHTTP(recRaw, req)
	assert.Equal(t, http.StatusBadRequest, recRaw.Code)
	assert.Contains(t, recRaw.Body.String(), "INVALID_INPUT")

	// Unknown fields are rejected, not ignored
	rec = postJSON(t, s, "/api/reliability/zero-failure", map[string]interface{}{
		"confidence": 0.95, "unit_multiplier": 1, "surprise": true,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
