// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tatstore.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package queryapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/fau-itc/tatstore/internal/aggregation"
	"github.com/fau-itc/tatstore/internal/metric"
	"github.com/fau-itc/tatstore/internal/obs"
	"github.com/fau-itc/tatstore/internal/tat"
	"github.com/fau-itc/tatstore/pkg/log"
)

// errorResponse mirrors the {status, error} envelope used for every 4xx/5xx
// response so clients can parse failures the same way regardless of route.
type errorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

func handleError(rw http.ResponseWriter, err error, statusCode int) {
	log.Warnf("queryapi: %s", err)
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(statusCode)
	json.NewEncoder(rw).Encode(errorResponse{
		Status: http.StatusText(statusCode),
		Error:  err.Error(),
	})
}

func writeJSON(rw http.ResponseWriter, v any) {
	rw.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(rw).Encode(v); err != nil {
		log.Errorf("queryapi: encoding response: %s", err)
	}
}

// nameAndKindJSON is the wire shape for one entry of /api/signals.
type nameAndKindJSON struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

func (s *Server) handleSignals(rw http.ResponseWriter, r *http.Request) {
	all := s.reg.NamesAndKinds()
	out := make([]nameAndKindJSON, len(all))
	for i, nk := range all {
		out[i] = nameAndKindJSON{Name: nk.Name, Kind: nk.Kind.String()}
	}
	writeJSON(rw, out)
}

// metricJSON is the wire shape of a metric.Metric, rendered according to
// its own Kind; fields that do not apply to that kind are omitted.
type metricJSON struct {
	Kind     string   `json:"kind"`
	Count    int64    `json:"count"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	First    *float64 `json:"first,omitempty"`
	Last     *float64 `json:"last,omitempty"`
	Mean     *float64 `json:"mean,omitempty"`
	Stddev   *float64 `json:"stddev,omitempty"`
	Info     *int64   `json:"info,omitempty"`
	Warning  *int64   `json:"warning,omitempty"`
	ErrorCnt *int64   `json:"error,omitempty"`
}

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }

func renderMetric(m metric.Metric) metricJSON {
	out := metricJSON{Kind: m.Kind().String(), Count: m.Count()}
	switch m.Kind() {
	case obs.KindScalar:
		out.Min = f64(m.Min())
		out.Max = f64(m.Max())
		out.First = f64(m.First())
		out.Last = f64(m.Last())
		out.Mean = f64(m.Mean())
		out.Stddev = f64(m.Stddev())
	case obs.KindLogger:
		out.Info = i64(m.CountByLevel(obs.LevelInfo))
		out.Warning = i64(m.CountByLevel(obs.LevelWarning))
		out.ErrorCnt = i64(m.CountByLevel(obs.LevelError))
	}
	return out
}

type aggregationJSON struct {
	Begin  float64    `json:"begin"`
	End    float64    `json:"end"`
	Metric metricJSON `json:"metric"`
}

func renderAggregation(a aggregation.Aggregation) aggregationJSON {
	return aggregationJSON{Begin: a.Span.Begin, End: a.Span.End, Metric: renderMetric(a.Metric)}
}

func parseSpan(r *http.Request) (obs.Timespan, bool, error) {
	beginStr := r.URL.Query().Get("begin")
	endStr := r.URL.Query().Get("end")
	if beginStr == "" && endStr == "" {
		return obs.Timespan{}, false, nil
	}
	begin, err := strconv.ParseFloat(beginStr, 64)
	if err != nil {
		return obs.Timespan{}, false, errors.New("invalid 'begin' query parameter")
	}
	end, err := strconv.ParseFloat(endStr, 64)
	if err != nil {
		return obs.Timespan{}, false, errors.New("invalid 'end' query parameter")
	}
	return obs.Timespan{Begin: begin, End: end}, true, nil
}

func (s *Server) handleSummary(rw http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		handleError(rw, errors.New("'name' is a required query parameter"), http.StatusBadRequest)
		return
	}

	span, hasSpan, err := parseSpan(r)
	if err != nil {
		handleError(rw, err, http.StatusBadRequest)
		return
	}

	var agg aggregation.Aggregation
	var ok bool
	if hasSpan {
		agg, ok = s.reg.Summary(name, &span)
	} else {
		agg, ok = s.reg.Summary(name, nil)
	}
	if !ok {
		handleError(rw, errors.New("unknown signal or empty range"), http.StatusNotFound)
		return
	}
	writeJSON(rw, renderAggregation(agg))
}

type queryResultJSON struct {
	Kind         string            `json:"kind"`
	Observations []observationJSON `json:"observations,omitempty"`
	Aggregations []aggregationJSON `json:"aggregations,omitempty"`
}

type observationJSON struct {
	T     float64 `json:"t"`
	Value any     `json:"value"`
}

func renderObservation(o obs.Observation) observationJSON {
	out := observationJSON{T: o.Timestamp}
	switch o.Value.Kind() {
	case obs.KindScalar:
		out.Value = o.Value.ScalarValue()
	case obs.KindLogger:
		out.Value = map[string]any{"level": o.Value.Level().String(), "message": o.Value.Message()}
	case obs.KindEvent:
		out.Value = o.Value.Attributes()
	}
	return out
}

func (s *Server) handleQuery(rw http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		handleError(rw, errors.New("'name' is a required query parameter"), http.StatusBadRequest)
		return
	}

	span, hasSpan, err := parseSpan(r)
	if err != nil || !hasSpan {
		handleError(rw, errors.New("'begin' and 'end' are required query parameters"), http.StatusBadRequest)
		return
	}

	minCount := 0
	if mc := r.URL.Query().Get("min_count"); mc != "" {
		minCount, err = strconv.Atoi(mc)
		if err != nil {
			handleError(rw, errors.New("invalid 'min_count' query parameter"), http.StatusBadRequest)
			return
		}
	}

	result, ok := s.reg.Query(name, span, minCount)
	if !ok {
		handleError(rw, errors.New("unknown signal"), http.StatusNotFound)
		return
	}

	out := queryResultJSON{}
	switch result.Kind {
	case tat.ResultObservations:
		out.Kind = "observations"
		out.Observations = make([]observationJSON, len(result.Observations))
		for i, o := range result.Observations {
			out.Observations[i] = renderObservation(o)
		}
	case tat.ResultAggregations:
		out.Kind = "aggregations"
		out.Aggregations = make([]aggregationJSON, len(result.Aggregations))
		for i, a := range result.Aggregations {
			out.Aggregations[i] = renderAggregation(a)
		}
	}
	writeJSON(rw, out)
}

func (s *Server) handleValue(rw http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		handleError(rw, errors.New("'name' is a required query parameter"), http.StatusBadRequest)
		return
	}
	tStr := r.URL.Query().Get("t")
	if tStr == "" {
		handleError(rw, errors.New("'t' is a required query parameter"), http.StatusBadRequest)
		return
	}
	t, err := strconv.ParseFloat(tStr, 64)
	if err != nil {
		handleError(rw, errors.New("invalid 't' query parameter"), http.StatusBadRequest)
		return
	}

	o, ok := s.reg.ValueAt(name, t)
	if !ok {
		handleError(rw, errors.New("unknown signal or no observation at-or-before 't'"), http.StatusNotFound)
		return
	}
	writeJSON(rw, renderObservation(o))
}

const defaultChangesTimeout = 30 * time.Second

type changesResponseJSON struct {
	Changed bool  `json:"changed"`
	Events  int64 `json:"events"`
}

// handleChanges long-polls until the registry is appended to after the
// request arrives, or timeout elapses, whichever comes first. A fresh Subscription is used per request; there is no notion of a
// resumable cursor across requests.
func (s *Server) handleChanges(rw http.ResponseWriter, r *http.Request) {
	timeout := defaultChangesTimeout
	if ts := r.URL.Query().Get("timeout"); ts != "" {
		d, err := time.ParseDuration(ts)
		if err != nil {
			handleError(rw, errors.New("invalid 'timeout' query parameter"), http.StatusBadRequest)
			return
		}
		timeout = d
	}

	sub := s.reg.Subscribe()
	defer sub.Unsubscribe()

	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	err := sub.Drain(ctx)
	writeJSON(rw, changesResponseJSON{Changed: err == nil, Events: s.reg.EventCount()})
}
