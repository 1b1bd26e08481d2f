package httpapi

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R3E-Network/item_service/internal/app/metrics"
	"github.com/R3E-Network/item_service/pkg/logger"
)

func newPipeline(t *testing.T, route http.Handler) (http.Handler, *metrics.Recorder, *bytes.Buffer) {
	t.Helper()

	logs := &bytes.Buffer{}
	log := logger.New(logger.LoggingConfig{Level: "info", Format: "json"})
	log.SetOutput(logs)

	recorder := metrics.New("")
	h := &handler{log: log}
	router := mux.NewRouter()
	router.Handle("/work", route).Methods(http.MethodGet)

	return withRequestPipeline(log, recorder, router, h.withRecovery(router)), recorder, logs
}

func requestRecords(t *testing.T, logs *bytes.Buffer) []map[string]any {
	t.Helper()

	var out []map[string]any
	scanner := bufio.NewScanner(bytes.NewReader(logs.Bytes()))
	for scanner.Scan() {
		var rec map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		if rec["msg"] == "request" {
			out = append(out, rec)
		}
	}
	return out
}

func TestPipelineCompletesAbortedRequest(t *testing.T) {
	pipeline, recorder, logs := newPipeline(t, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		pipeline.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/work", nil))
	})

	assert.Zero(t, testutil.ToFloat64(recorder.InFlight()))
	assert.Equal(t, float64(1), testutil.ToFloat64(recorder.Requests().WithLabelValues("GET", "/work", "2xx")))
	records := requestRecords(t, logs)
	require.Len(t, records, 1)
	assert.Equal(t, "/work", records[0]["path"])
}

func TestRecoveryAfterResponseStarted(t *testing.T) {
	pipeline, recorder, logs := newPipeline(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("partial"))
		panic("late failure")
	}))

	resp := httptest.NewRecorder()
	pipeline.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/work", nil))

	assert.Equal(t, http.StatusAccepted, resp.Code)
	assert.Equal(t, "partial", resp.Body.String())
	assert.Contains(t, logs.String(), "panic after response started")
	assert.Contains(t, logs.String(), "late failure")
	assert.Zero(t, testutil.ToFloat64(recorder.InFlight()))

	records := requestRecords(t, logs)
	require.Len(t, records, 1)
	assert.Equal(t, float64(http.StatusAccepted), records[0]["status"])
}

func TestRecoveryBeforeResponseStarted(t *testing.T) {
	pipeline, recorder, _ := newPipeline(t, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("early failure")
	}))

	resp := httptest.NewRecorder()
	pipeline.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/work", nil))

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.JSONEq(t, `{"status":"error","error":"Internal Server Error"}`, resp.Body.String())
	assert.Equal(t, float64(1), testutil.ToFloat64(recorder.Requests().WithLabelValues("GET", "/work", "5xx")))
}
