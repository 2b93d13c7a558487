// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package observability

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return rec.Code, string(body)
}

func TestPrometheusMetrics_Records(t *testing.T) {
	m, err := InitMetrics()
	require.NoError(t, err)
	defer m.Shutdown(context.Background())

	ctx := context.Background()
	m.RecordToolExecution(ctx, "search_tv_series_tvdb", 20*time.Millisecond, nil)
	m.RecordToolExecution(ctx, "search_tv_series_tvdb", 5*time.Millisecond, errors.New("boom"))
	m.RecordLLMCall(ctx, "gemini-test", time.Second, 12, 3, nil)

	code, body := scrape(t, NewMetricsRouter(m), "/metrics")
	require.Equal(t, http.StatusOK, code)

	assert.Contains(t, body, "moviesbuddy_tool_calls_total")
	assert.Contains(t, body, "moviesbuddy_tool_errors_total")
	assert.Contains(t, body, `tool="search_tv_series_tvdb"`)
	assert.Contains(t, body, "moviesbuddy_llm_tokens_input_total")
	assert.Contains(t, body, `model="gemini-test"`)
}

func TestMetricsRouter_Health(t *testing.T) {
	m, err := InitMetrics()
	require.NoError(t, err)

	code, body := scrape(t, NewMetricsRouter(m), "/health")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"ok"}`, body)

	code, _ = scrape(t, NewMetricsRouter(m), "/nope")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestGlobalMetrics(t *testing.T) {
	SetGlobalMetrics(nil)
	RecordToolExecution(context.Background(), "noop", time.Millisecond, nil)

	m, err := InitMetrics()
	require.NoError(t, err)
	SetGlobalMetrics(m)
	t.Cleanup(func() { SetGlobalMetrics(nil) })

	assert.Same(t, m, GetGlobalMetrics())
	RecordLLMCall(context.Background(), "global-model", time.Millisecond, 1, 1, nil)

	_, body := scrape(t, m.Handler(), "/metrics")
	assert.Contains(t, body, `model="global-model"`)
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *PrometheusMetrics
	m.RecordToolExecution(context.Background(), "x", time.Millisecond, nil)
	m.RecordLLMCall(context.Background(), "x", time.Millisecond, 0, 0, nil)
	assert.NoError(t, m.Shutdown(context.Background()))
}

func TestServeMetrics(t *testing.T) {
	m, err := InitMetrics()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr, err := ServeMetrics(ctx, "127.0.0.1:0", m)
	require.NoError(t, err)

	resp, err := http.Get("http://" + addr.String() + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, err = ServeMetrics(ctx, "256.0.0.1:bad", m)
	assert.Error(t, err)
}
