package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psych-instrument-server/internal/catalog"
	"github.com/psych-instrument-server/internal/domain"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	cat, err := catalog.Load()
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := &domain.Config{
		RateLimit: domain.RateLimitConfig{Enabled: false},
		Cache:     domain.CacheConfig{StructureEntries: 16},
		Logging:   domain.LoggingConfig{Level: "error", Format: "text"},
	}

	server, err := NewServer(cfg, logger, cat)
	require.NoError(t, err)
	return server
}

func doJSON(t *testing.T, server *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealthEndpoint(t *testing.T) {
	server := testServer(t)

	w := doJSON(t, server, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, float64(14), body["instruments"])
	assert.NotEmpty(t, w.Header().Get("X-Correlation-ID"))
}

func TestListInstruments(t *testing.T) {
	server := testServer(t)

	w := doJSON(t, server, http.MethodGet, "/api/v1/instruments", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	instruments := body["instruments"].([]any)
	assert.Len(t, instruments, 14)

	first := instruments[0].(map[string]any)
	assert.Equal(t, "phq9", first["id"])
	assert.NotEmpty(t, first["name"])
}

func TestGetStructureUnknownInstrument(t *testing.T) {
	server := testServer(t)

	w := doJSON(t, server, http.MethodGet, "/api/v1/instruments/mmpi", nil)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, domain.ErrInstrumentMissing, decode(t, w)["code"])
}

func TestGetStructureAppliesContext(t *testing.T) {
	server := testServer(t)

	w := doJSON(t, server, http.MethodGet, "/api/v1/instruments/asex?gender=M", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	active := body["active_items"].([]any)
	assert.Contains(t, active, "asex_3m")
	assert.NotContains(t, active, "asex_3f")

	// Same request again is served from the structure cache.
	w = doJSON(t, server, http.MethodGet, "/api/v1/instruments/asex?gender=M", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, body["active_items"], decode(t, w)["active_items"])
}

func TestStructureCacheKeyEscapesSeparators(t *testing.T) {
	// A context value containing the separator characters must not
	// collide with a differently shaped context.
	smuggled := structureCacheKey("asex", domain.Context{"g": "F|h=1"})
	split := structureCacheKey("asex", domain.Context{"g": "F", "h": "1"})
	assert.NotEqual(t, smuggled, split)

	// Identical contexts still share a key.
	assert.Equal(t,
		structureCacheKey("asex", domain.Context{"g": "F", "h": "1"}),
		split)
}

func TestValidateAlwaysReturnsOK(t *testing.T) {
	server := testServer(t)

	w := doJSON(t, server, http.MethodPost, "/api/v1/instruments/cage/validate", map[string]any{
		"answers": map[string]float64{"cage_1": 1},
	})

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["valid"])
	assert.NotEmpty(t, body["errors"])
}

func TestScoreMalformedBody(t *testing.T) {
	server := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/instruments/cage/score", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, domain.ErrInvalidInput, decode(t, w)["code"])
}

func TestScoreInvalidAnswers(t *testing.T) {
	server := testServer(t)

	w := doJSON(t, server, http.MethodPost, "/api/v1/instruments/cage/score", map[string]any{
		"answers": map[string]float64{"cage_1": 1, "cage_2": 5, "cage_3": 0, "cage_4": 0},
	})

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode(t, w)
	assert.Equal(t, domain.ErrValidation, body["code"])

	validation := body["validation"].(map[string]any)
	assert.Equal(t, false, validation["valid"])
}

func TestScoreWithInterpretation(t *testing.T) {
	server := testServer(t)

	w := doJSON(t, server, http.MethodPost, "/api/v1/instruments/cage/score", map[string]any{
		"answers": map[string]float64{"cage_1": 1, "cage_2": 1, "cage_3": 0, "cage_4": 1},
	})

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)

	score := body["score"].(map[string]any)
	assert.Equal(t, float64(3), score["total"])
	assert.Equal(t, "clinically significant", score["category"])
	assert.Contains(t, body["interpretation"], "alcohol")
}

func TestScoreUnknownInstrument(t *testing.T) {
	server := testServer(t)

	w := doJSON(t, server, http.MethodPost, "/api/v1/instruments/mmpi/score", map[string]any{
		"answers": map[string]float64{},
	})

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestScoreWarningsTravelWithScore(t *testing.T) {
	server := testServer(t)

	answers := map[string]float64{}
	for _, id := range []string{"gad7_1", "gad7_2", "gad7_3", "gad7_4", "gad7_5", "gad7_6", "gad7_7"} {
		answers[id] = 2
	}

	w := doJSON(t, server, http.MethodPost, "/api/v1/instruments/gad7/score", map[string]any{
		"answers": answers,
	})

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.NotEmpty(t, body["warnings"])

	score := body["score"].(map[string]any)
	assert.Equal(t, float64(14), score["total"])
}
