// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tatstore.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ingest implements the producer-facing wire protocol and the TCP
// server that decodes it into the registry: a stream of
//
//	frame := uint32_be length ; length bytes of payload
//	payload := self-describing CBOR map
//
// Every payload carries at least "name" and "type"; the rest of the keys
// depend on type (sample / samples / batch / event). Unknown types are
// logged and the payload dropped; the connection continues.
package ingest

// envelope is decoded first, from every payload, just to read "type" and
// dispatch to the concrete frame shape -- mirroring the FSM described for
// the per-connection loop (ReadingLen -> ReadingPayload -> Dispatch ->
// ReadingLen).
type envelope struct {
	Name string `cbor:"name"`
	Type string `cbor:"type"`
}

// sampleFrame carries a single scalar observation at time T.
type sampleFrame struct {
	Name  string  `cbor:"name"`
	Type  string  `cbor:"type"`
	T     float64 `cbor:"t"`
	Value float64 `cbor:"value"`
}

// samplesFrame carries uniformly spaced scalars starting at T, step Dt.
type samplesFrame struct {
	Name   string    `cbor:"name"`
	Type   string    `cbor:"type"`
	T      float64   `cbor:"t"`
	Dt     float64   `cbor:"dt"`
	Values []float64 `cbor:"values"`
}

// batchFrame carries a list of heterogeneously-timed (t, value) pairs.
type batchFrame struct {
	Name  string       `cbor:"name"`
	Type  string       `cbor:"type"`
	Batch [][2]float64 `cbor:"batch"`
}

// eventFrame carries a single event with attribute bindings.
type eventFrame struct {
	Name       string            `cbor:"name"`
	Type       string            `cbor:"type"`
	T          float64           `cbor:"t"`
	Attributes map[string]string `cbor:"attributes"`
}
