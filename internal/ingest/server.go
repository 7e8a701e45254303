// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tatstore.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ingest

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/fau-itc/tatstore/internal/registry"
	"github.com/fau-itc/tatstore/internal/telemetry"
	"github.com/fau-itc/tatstore/pkg/log"
)

// Server accepts producer connections and feeds decoded observations into a
// registry. Grounded on cmd/cc-backend/main.go's listener-plus-WaitGroup
// shutdown block, generalized from a single HTTP listener to a raw TCP
// accept loop with one goroutine per connection.
type Server struct {
	addr    string
	reg     *registry.Registry
	metrics *telemetry.Metrics

	wg sync.WaitGroup
}

// NewServer constructs a Server listening on addr (host:port, or :port for
// all interfaces) and routing every decoded observation into reg. m records
// dropped-frame counts; pass telemetry.New() if the caller has no other use
// for a shared registry.
func NewServer(addr string, reg *registry.Registry, m *telemetry.Metrics) *Server {
	return &Server{addr: addr, reg: reg, metrics: m}
}

// Run listens on s.addr and accepts connections until ctx is cancelled.
// Each connection is served on its own goroutine; Run does not return until
// every in-flight connection handler has exited.
func (s *Server) Run(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("ingest: listen on %s: %w", s.addr, err)
	}

	log.Infof("ingest: listening on %s", ln.Addr())

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				s.wg.Wait()
				return nil
			default:
				log.Errorf("ingest: accept: %s", err)
				s.wg.Wait()
				return err
			}
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			handleConnection(ctx, conn, s.reg, s.metrics)
		}()
	}
}
