// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tatstore.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package queryapi exposes the registry's read surface (signal listing,
// summaries, range queries, point lookups, change notifications) and a
// Prometheus metrics endpoint over HTTP.
package queryapi

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/fau-itc/tatstore/internal/registry"
	"github.com/fau-itc/tatstore/internal/telemetry"
)

// Server is the HTTP front door onto a registry: the query surface plus a
// /metrics endpoint, behind a compression/recovery/CORS middleware chain.
type Server struct {
	addr    string
	reg     *registry.Registry
	metrics *telemetry.Metrics
	handler http.Handler
}

// NewServer builds a Server bound to reg, listening on addr once Run is
// called. m's registry is served at /metrics alongside reg's own query
// surface.
func NewServer(addr string, reg *registry.Registry, m *telemetry.Metrics) *Server {
	s := &Server{addr: addr, reg: reg, metrics: m}

	r := mux.NewRouter()
	r.HandleFunc("/api/signals", s.handleSignals).Methods(http.MethodGet)
	r.HandleFunc("/api/summary", s.handleSummary).Methods(http.MethodGet)
	r.HandleFunc("/api/query", s.handleQuery).Methods(http.MethodGet)
	r.HandleFunc("/api/value", s.handleValue).Methods(http.MethodGet)
	r.HandleFunc("/api/changes", s.handleChanges).Methods(http.MethodGet)
	r.Handle("/metrics", metricsHandler(m))

	r.Use(handlers.CompressHandler)
	r.Use(handlers.RecoveryHandler(handlers.PrintRecoveryStack(true)))
	r.Use(handlers.CORS(
		handlers.AllowedHeaders([]string{"Content-Type"}),
		handlers.AllowedMethods([]string{http.MethodGet}),
		handlers.AllowedOrigins([]string{"*"})))

	s.handler = handlers.CustomLoggingHandler(io.Discard, r, requestMetricsFormatter(m))
	return s
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.handler}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
