// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tatstore.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package queryapi

import (
	"io"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fau-itc/tatstore/internal/telemetry"
)

func metricsHandler(m *telemetry.Metrics) http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// requestMetricsFormatter adapts gorilla/handlers' CustomLoggingHandler
// hook to increment a Prometheus counter instead of writing an access log
// line.
func requestMetricsFormatter(m *telemetry.Metrics) handlers.LogFormatter {
	return func(_ io.Writer, params handlers.LogFormatterParams) {
		m.HTTPRequests.WithLabelValues(params.URL.Path, http.StatusText(params.StatusCode)).Inc()
	}
}
