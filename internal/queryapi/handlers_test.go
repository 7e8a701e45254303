// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tatstore.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package queryapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fau-itc/tatstore/internal/obs"
	"github.com/fau-itc/tatstore/internal/registry"
	"github.com/fau-itc/tatstore/internal/telemetry"
)

func newTestServer(t *testing.T) (*Server, *registry.Registry) {
	t.Helper()
	reg := registry.New(4, 2)
	s := NewServer("127.0.0.1:0", reg, telemetry.New())
	return s, reg
}

func seedScalars(t *testing.T, reg *registry.Registry, name string, values ...float64) {
	t.Helper()
	for i, v := range values {
		require.NoError(t, reg.Append(name, obs.Observation{Timestamp: float64(i), Value: obs.Scalar(v)}))
	}
}

func doRequest(s *Server, method, target string) *httptest.ResponseRecorder {
	rw := httptest.NewRecorder()
	s.handler.ServeHTTP(rw, httptest.NewRequest(method, target, nil))
	return rw
}

func TestHandleSignalsEmpty(t *testing.T) {
	s, _ := newTestServer(t)
	rw := doRequest(s, http.MethodGet, "/api/signals")
	require.Equal(t, http.StatusOK, rw.Code)

	var out []nameAndKindJSON
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &out))
	assert.Empty(t, out)
}

func TestHandleSignalsListsCreatedSignals(t *testing.T) {
	s, reg := newTestServer(t)
	seedScalars(t, reg, "cpu", 1, 2, 3)

	rw := doRequest(s, http.MethodGet, "/api/signals")
	require.Equal(t, http.StatusOK, rw.Code)

	var out []nameAndKindJSON
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "cpu", out[0].Name)
	assert.Equal(t, "scalar", out[0].Kind)
}

func TestHandleSummaryRequiresName(t *testing.T) {
	s, _ := newTestServer(t)
	rw := doRequest(s, http.MethodGet, "/api/summary")
	assert.Equal(t, http.StatusBadRequest, rw.Code)
}

func TestHandleSummaryUnknownSignal(t *testing.T) {
	s, _ := newTestServer(t)
	rw := doRequest(s, http.MethodGet, "/api/summary?name=nope")
	assert.Equal(t, http.StatusNotFound, rw.Code)
}

func TestHandleSummaryWholeSeries(t *testing.T) {
	s, reg := newTestServer(t)
	seedScalars(t, reg, "cpu", 1, 2, 3)

	rw := doRequest(s, http.MethodGet, "/api/summary?name=cpu")
	require.Equal(t, http.StatusOK, rw.Code)

	var out aggregationJSON
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &out))
	assert.Equal(t, "scalar", out.Metric.Kind)
	assert.Equal(t, int64(3), out.Metric.Count)
	require.NotNil(t, out.Metric.Mean)
	assert.InDelta(t, 2.0, *out.Metric.Mean, 1e-9)
}

func TestHandleQueryRequiresBeginAndEnd(t *testing.T) {
	s, reg := newTestServer(t)
	seedScalars(t, reg, "cpu", 1, 2, 3)

	rw := doRequest(s, http.MethodGet, "/api/query?name=cpu")
	assert.Equal(t, http.StatusBadRequest, rw.Code)
}

func TestHandleQueryReturnsObservationsUnderMinCount(t *testing.T) {
	s, reg := newTestServer(t)
	seedScalars(t, reg, "cpu", 1, 2, 3, 4, 5)

	rw := doRequest(s, http.MethodGet, "/api/query?name=cpu&begin=0&end=4&min_count=1000000")
	require.Equal(t, http.StatusOK, rw.Code)

	var out queryResultJSON
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &out))
	assert.Equal(t, "observations", out.Kind)
	assert.Len(t, out.Observations, 5)
}

func TestHandleValueRequiresParams(t *testing.T) {
	s, _ := newTestServer(t)
	assert.Equal(t, http.StatusBadRequest, doRequest(s, http.MethodGet, "/api/value").Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(s, http.MethodGet, "/api/value?name=cpu").Code)
}

func TestHandleValueReturnsNearestObservation(t *testing.T) {
	s, reg := newTestServer(t)
	seedScalars(t, reg, "cpu", 10, 20, 30)

	rw := doRequest(s, http.MethodGet, "/api/value?name=cpu&t=1.5")
	require.Equal(t, http.StatusOK, rw.Code)

	var out observationJSON
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &out))
	assert.Equal(t, 1.0, out.T)
}

func TestHandleChangesReportsChangedFalseOnTimeout(t *testing.T) {
	s, _ := newTestServer(t)
	rw := doRequest(s, http.MethodGet, "/api/changes?timeout=10ms")
	require.Equal(t, http.StatusOK, rw.Code)

	var out changesResponseJSON
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &out))
	assert.False(t, out.Changed)
}

func TestMetricsEndpointServesPrometheusFormat(t *testing.T) {
	s, _ := newTestServer(t)
	rw := doRequest(s, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rw.Code)
	assert.Contains(t, rw.Body.String(), "tatstore_")
}
