// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tatstore.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package registry is the process-wide signal table: a name -> TAT map
// that creates a signal's tree on first write and fixes its kind from the
// first observation ever appended to it. A read-mostly map with
// create-on-demand children, generalized from a fixed-frequency ring
// buffer per metric/host to one TAT per named signal.
package registry

import (
	"errors"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/fau-itc/tatstore/internal/aggregation"
	"github.com/fau-itc/tatstore/internal/obs"
	"github.com/fau-itc/tatstore/internal/tat"
	"github.com/fau-itc/tatstore/internal/telemetry"
)

var (
	// ErrKindMismatch is returned when an observation's variant does not
	// match the kind the signal's first observation already fixed.
	ErrKindMismatch = errors.New("registry: observation kind does not match signal's established kind")
	// ErrNonFiniteValue is returned for a scalar observation whose value is
	// NaN or +/-Inf: non-finite values are rejected at this edge so the
	// tree and metric algebra never have to special-case them.
	ErrNonFiniteValue = errors.New("registry: scalar value must be finite")
	// ErrEmptyName is returned for an observation addressed to the empty
	// signal name.
	ErrEmptyName = errors.New("registry: signal name must not be empty")
)

// NameAndKind pairs a signal's name with its established kind.
type NameAndKind struct {
	Name string
	Kind obs.Kind
}

type signal struct {
	kind obs.Kind
	tree *tat.Root
}

// Registry is the top-level, process-wide state: constructed at server
// start, dropped (along with every signal it owns) at server stop.
type Registry struct {
	mu      sync.RWMutex
	signals map[string]*signal
	leafCap int
	fanout  int

	subsMu         sync.Mutex
	subs           []*Subscription
	events         atomic.Int64
	notifyInterval time.Duration

	metrics *telemetry.Metrics
}

// New constructs an empty registry. leafCap/fanout are forwarded to every
// TAT created from then on; pass 0 for either to use the package defaults.
// Subscribers are rate-limited to DefaultNotifyInterval until
// SetNotifyInterval is called.
func New(leafCap, fanout int) *Registry {
	return &Registry{
		signals:        make(map[string]*signal),
		leafCap:        leafCap,
		fanout:         fanout,
		notifyInterval: DefaultNotifyInterval,
	}
}

// SetNotifyInterval changes the rate limit applied to every Subscription
// created from then on; existing subscriptions keep the interval they were
// created with.
func (r *Registry) SetNotifyInterval(d time.Duration) {
	if d <= 0 {
		d = DefaultNotifyInterval
	}
	r.subsMu.Lock()
	r.notifyInterval = d
	r.subsMu.Unlock()
}

// AttachMetrics registers r's signal-count and event-count gauges on m and
// starts incrementing m.ObservationsIngested on every successful Append.
// Call at most once, before the registry starts serving traffic.
func (r *Registry) AttachMetrics(m *telemetry.Metrics) {
	r.metrics = m
	m.GaugeFunc("tatstore_signals", "Number of distinct signals known to the registry.", func() float64 {
		return float64(r.SignalCount())
	})
	m.GaugeFunc("tatstore_events_total", "Total observations ever appended across all signals.", func() float64 {
		return float64(r.EventCount())
	})
	m.GaugeFunc("tatstore_size_bytes", "Approximate memory held by raw observations across all signals.", func() float64 {
		return float64(r.SizeInBytes())
	})
}

// NamesAndKinds reports every known signal, sorted by name.
func (r *Registry) NamesAndKinds() []NameAndKind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]NameAndKind, 0, len(r.signals))
	for name, s := range r.signals {
		out = append(out, NameAndKind{Name: name, Kind: s.kind})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Append routes one observation into the named signal, creating it on
// first write. The observation is dropped (and ErrKindMismatch returned)
// if it does not match the signal's established kind.
func (r *Registry) Append(name string, o obs.Observation) error {
	if name == "" {
		return ErrEmptyName
	}
	if o.Value.Kind() == obs.KindScalar {
		v := o.Value.ScalarValue()
		if math.IsNaN(v) || math.IsInf(v, 0) {
			r.dropped("non_finite")
			return ErrNonFiniteValue
		}
	}

	s, err := r.getOrCreate(name, o.Value.Kind())
	if err != nil {
		if errors.Is(err, ErrKindMismatch) {
			r.dropped("kind_mismatch")
		}
		return err
	}

	s.tree.Append(o)
	r.notifyChanged()
	if r.metrics != nil {
		r.metrics.ObservationsIngested.Inc()
	}
	return nil
}

func (r *Registry) dropped(reason string) {
	if r.metrics != nil {
		r.metrics.FramesDropped.WithLabelValues(reason).Inc()
	}
}

// AppendBatch appends every observation to name, in order, stopping (but
// not reverting earlier successful appends) at the first kind mismatch.
func (r *Registry) AppendBatch(name string, observations []obs.Observation) error {
	for _, o := range observations {
		if err := r.Append(name, o); err != nil {
			return err
		}
	}
	return nil
}

// getOrCreate returns the signal, creating it with kind k if this is the
// first time name has been written. Mirrors findLevelOrCreate's
// optimistic-read-then-locked-insert shape: take the read lock first, only
// escalate to the write lock for the rare case of a brand new signal.
func (r *Registry) getOrCreate(name string, k obs.Kind) (*signal, error) {
	r.mu.RLock()
	s, ok := r.signals[name]
	r.mu.RUnlock()
	if ok {
		if s.kind != k {
			return nil, ErrKindMismatch
		}
		return s, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok = r.signals[name]; ok {
		if s.kind != k {
			return nil, ErrKindMismatch
		}
		return s, nil
	}

	s = &signal{kind: k, tree: tat.New(r.leafCap, r.fanout)}
	r.signals[name] = s
	return s, nil
}

func (r *Registry) lookup(name string) (*signal, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.signals[name]
	return s, ok
}

// Summary returns the whole-series aggregation, or the range aggregation
// when span is non-nil. Returns ok=false if the signal is unknown or the
// intersection with span is empty.
func (r *Registry) Summary(name string, span *obs.Timespan) (aggregation.Aggregation, bool) {
	s, ok := r.lookup(name)
	if !ok {
		return aggregation.Aggregation{}, false
	}
	if span == nil {
		agg := s.tree.Aggregation()
		return agg, s.tree.Len() > 0
	}
	return s.tree.QueryMetrics(*span)
}

// Query runs a resolution-bound range query against the named signal.
// Returns ok=false if the signal is unknown; an empty span (begin > end)
// returns ok=true with an empty result rather than an error -- callers that
// need to reject an empty span outright should check span themselves
// before calling Query.
func (r *Registry) Query(name string, span obs.Timespan, minCount int) (tat.QueryResult, bool) {
	s, ok := r.lookup(name)
	if !ok {
		return tat.QueryResult{}, false
	}
	if span.Begin > span.End {
		return tat.QueryResult{Kind: tat.ResultObservations}, true
	}
	return s.tree.Query(span, minCount), true
}

// ValueAt finds the nearest observation at-or-before t in the named signal.
func (r *Registry) ValueAt(name string, t float64) (obs.Observation, bool) {
	s, ok := r.lookup(name)
	if !ok {
		return obs.Observation{}, false
	}
	return s.tree.QueryValue(t)
}

// SignalCount reports how many distinct signals have been created.
func (r *Registry) SignalCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.signals)
}

// observationSize is the per-observation footprint used by SizeInBytes: an
// obs.Observation is a float64 timestamp plus a Value, which carries the
// fields of all three variants whichever one it holds.
const observationSize = int64(unsafe.Sizeof(obs.Observation{}))

// SizeInBytes is a rough estimate of memory held by every TAT's raw
// observations (count * observationSize, across every signal); it does not
// account for internal-node aggregation caches or map/slice overhead.
func (r *Registry) SizeInBytes() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var total int64
	for _, s := range r.signals {
		total += s.tree.Len() * observationSize
	}
	return total
}
