// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tatstore.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package telemetry holds the process's Prometheus counters and gauges, so
// the registry, the ingest server and the query API all publish to the
// same private registry without importing one another.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is the full set of counters/gauges exposed on /metrics. A private
// prometheus.Registry is used (never prometheus.DefaultRegisterer) so more
// than one Metrics can coexist in the same process, which matters for
// tests that construct one per case.
type Metrics struct {
	Registry *prometheus.Registry

	ObservationsIngested prometheus.Counter
	FramesDropped        *prometheus.CounterVec
	HTTPRequests         *prometheus.CounterVec
}

// New constructs an empty, registered set of metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		ObservationsIngested: f.NewCounter(prometheus.CounterOpts{
			Name: "tatstore_observations_ingested_total",
			Help: "Total observations successfully routed into the registry.",
		}),
		FramesDropped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tatstore_frames_dropped_total",
			Help: "Total ingest frames dropped, by reason (framing, unknown_type, kind_mismatch, non_finite).",
		}, []string{"reason"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tatstore_http_requests_total",
			Help: "Total HTTP requests served by the query API, by route and status.",
		}, []string{"route", "status"}),
	}
}

// GaugeFunc registers a gauge backed by fn, evaluated on every scrape.
func (m *Metrics) GaugeFunc(name, help string, fn func() float64) {
	promauto.With(m.Registry).NewGaugeFunc(prometheus.GaugeOpts{
		Name: name,
		Help: help,
	}, fn)
}
