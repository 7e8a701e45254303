// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tatstore.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ingest

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/fau-itc/tatstore/internal/registry"
	"github.com/fau-itc/tatstore/internal/telemetry"
	"github.com/fau-itc/tatstore/pkg/log"
)

// maxFrameSize bounds the length prefix so a malicious or buggy peer
// cannot make a connection allocate an unbounded payload buffer; it never
// bounds how much data the registry itself may hold, which grows only with
// observations actually ingested.
const maxFrameSize = 16 << 20 // 16 MiB

// handleConnection runs the per-connection protocol loop: read a 4-byte
// big-endian length prefix, read that many payload bytes, decode, route
// into reg, repeat. A framing error or unknown message type is logged and
// only that connection is affected; the server keeps accepting others.
func handleConnection(ctx context.Context, conn net.Conn, reg *registry.Registry, m *telemetry.Metrics) {
	defer conn.Close()

	// Closing conn on cancellation unblocks a pending read, so shutdown does
	// not wait for an idle peer to send or hang up.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	remote := conn.RemoteAddr()
	r := bufio.NewReader(conn)
	var lenBuf [4]byte

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
				log.Warnf("ingest: %s: reading length prefix: %s", remote, err)
			}
			return
		}

		length := binary.BigEndian.Uint32(lenBuf[:])
		if length > maxFrameSize {
			log.Warnf("ingest: %s: frame of %d bytes exceeds limit, closing connection", remote, length)
			m.FramesDropped.WithLabelValues("framing").Inc()
			return
		}

		payload := make([]byte, length)
		if _, err := io.ReadFull(r, payload); err != nil {
			log.Warnf("ingest: %s: reading payload: %s", remote, err)
			return
		}

		if err := dispatch(reg, payload); err != nil {
			if errors.Is(err, ErrUnknownMessageType) {
				log.Warnf("ingest: %s: %s", remote, err)
				m.FramesDropped.WithLabelValues("unknown_type").Inc()
				continue
			}
			log.Warnf("ingest: %s: framing error, closing connection: %s", remote, err)
			m.FramesDropped.WithLabelValues("framing").Inc()
			return
		}
	}
}

// dispatch decodes one payload and routes it into the registry. Framing
// errors and unknown types never reach the registry; kind mismatches and
// non-finite values are logged and dropped by the registry itself (and
// counted there), not surfaced as a connection-level error.
func dispatch(reg *registry.Registry, payload []byte) error {
	msg, err := decodeFrame(payload)
	if err != nil {
		return err
	}

	if err := reg.AppendBatch(msg.Name, msg.Observations); err != nil {
		if errors.Is(err, registry.ErrKindMismatch) || errors.Is(err, registry.ErrNonFiniteValue) {
			log.Warnf("ingest: signal %q: %s", msg.Name, err)
			return nil
		}
		return fmt.Errorf("ingest: routing %q: %w", msg.Name, err)
	}
	return nil
}
