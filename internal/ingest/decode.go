// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tatstore.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ingest

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/fau-itc/tatstore/internal/obs"
)

// ErrFraming is returned when a payload cannot be parsed as the
// self-describing CBOR map the wire format requires.
var ErrFraming = errors.New("ingest: malformed frame")

// ErrUnknownMessageType is returned for a decodable payload whose "type"
// is none of sample/samples/batch/event.
var ErrUnknownMessageType = errors.New("ingest: unknown message type")

// Message is a decoded frame, ready to route into the registry.
type Message struct {
	Name         string
	Observations []obs.Observation
}

// decodeFrame decodes one CBOR payload into a Message. Unknown message
// types surface as ErrUnknownMessageType so the caller can log and
// continue without closing the connection; every other decode failure
// surfaces as ErrFraming, which the caller treats as fatal to the
// connection (but never to the server).
func decodeFrame(payload []byte) (Message, error) {
	var env envelope
	if err := cbor.Unmarshal(payload, &env); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrFraming, err)
	}
	if env.Name == "" {
		return Message{}, fmt.Errorf("%w: missing or empty name", ErrFraming)
	}

	switch env.Type {
	case "sample":
		var f sampleFrame
		if err := cbor.Unmarshal(payload, &f); err != nil {
			return Message{}, fmt.Errorf("%w: sample: %v", ErrFraming, err)
		}
		return Message{
			Name:         f.Name,
			Observations: []obs.Observation{{Timestamp: f.T, Value: obs.Scalar(f.Value)}},
		}, nil

	case "samples":
		var f samplesFrame
		if err := cbor.Unmarshal(payload, &f); err != nil {
			return Message{}, fmt.Errorf("%w: samples: %v", ErrFraming, err)
		}
		out := make([]obs.Observation, len(f.Values))
		for i, v := range f.Values {
			out[i] = obs.Observation{Timestamp: f.T + float64(i)*f.Dt, Value: obs.Scalar(v)}
		}
		return Message{Name: f.Name, Observations: out}, nil

	case "batch":
		var f batchFrame
		if err := cbor.Unmarshal(payload, &f); err != nil {
			return Message{}, fmt.Errorf("%w: batch: %v", ErrFraming, err)
		}
		out := make([]obs.Observation, len(f.Batch))
		for i, pair := range f.Batch {
			out[i] = obs.Observation{Timestamp: pair[0], Value: obs.Scalar(pair[1])}
		}
		return Message{Name: f.Name, Observations: out}, nil

	case "event":
		var f eventFrame
		if err := cbor.Unmarshal(payload, &f); err != nil {
			return Message{}, fmt.Errorf("%w: event: %v", ErrFraming, err)
		}
		return Message{
			Name:         f.Name,
			Observations: []obs.Observation{{Timestamp: f.T, Value: obs.Event(f.Attributes)}},
		}, nil

	default:
		return Message{}, fmt.Errorf("%w: %q", ErrUnknownMessageType, env.Type)
	}
}
