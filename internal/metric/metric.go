// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tatstore.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package metric implements the associative-but-not-commutative
// summary algebra described by the system: one Metric variant per obs.Kind,
// combined with Welford's parallel-variance update for scalars so that
// repeated combine calls stay numerically equivalent to a single batch
// computation (see the population-stddev identities this must satisfy).
package metric

import (
	"math"

	"github.com/fau-itc/tatstore/internal/obs"
)

// Metric is the variant-specific summary over a run of observations of a
// single obs.Kind. The zero value is not a valid Metric; use Empty.
type Metric struct {
	kind  obs.Kind
	count int64

	// scalar fields
	min, max, first, last, mean, m2 float64

	// logger fields: per-level counters, indexed by obs.LogLevel
	levelCounts [3]int64
}

// Empty returns the identity element for kind: Combine(m, Empty(kind)) == m.
func Empty(kind obs.Kind) Metric {
	return Metric{
		kind: kind,
		min:  math.Inf(1),
		max:  math.Inf(-1),
	}
}

// Of returns the singleton metric summarizing a single observation value.
// Panics if v's kind does not match... it cannot mismatch, since Of derives
// kind from v itself.
func Of(v obs.Value) Metric {
	switch v.Kind() {
	case obs.KindScalar:
		x := v.ScalarValue()
		return Metric{
			kind: obs.KindScalar, count: 1,
			min: x, max: x, first: x, last: x, mean: x, m2: 0,
		}
	case obs.KindLogger:
		m := Metric{kind: obs.KindLogger, count: 1}
		m.levelCounts[v.Level()]++
		return m
	case obs.KindEvent:
		return Metric{kind: obs.KindEvent, count: 1}
	default:
		panic("metric: Of called with unknown obs.Kind")
	}
}

// Kind reports which variant this metric summarizes.
func (m Metric) Kind() obs.Kind { return m.kind }

// Count is the number of observations folded into m.
func (m Metric) Count() int64 { return m.count }

// Combine folds b into a, in that order (order matters for First/Last on
// scalars). Combining metrics of different kinds is a programmer error and
// panics, matching the "undefined behavior is not permitted" rule for TAT
// invariant violations.
func Combine(a, b Metric) Metric {
	if a.count == 0 {
		if b.count == 0 && a.kind != b.kind {
			// Both empty: kind is ambiguous only when both sides are
			// identities for different kinds; prefer a's kind, as an
			// identity combined with anything yields the other side.
			return a
		}
		return b
	}
	if b.count == 0 {
		return a
	}
	if a.kind != b.kind {
		panic("metric: Combine called on metrics of different kinds")
	}

	switch a.kind {
	case obs.KindScalar:
		return combineScalar(a, b)
	case obs.KindLogger:
		r := Metric{kind: obs.KindLogger, count: a.count + b.count}
		for i := range r.levelCounts {
			r.levelCounts[i] = a.levelCounts[i] + b.levelCounts[i]
		}
		return r
	case obs.KindEvent:
		return Metric{kind: obs.KindEvent, count: a.count + b.count}
	default:
		panic("metric: Combine called on unknown obs.Kind")
	}
}

// combineScalar combines two scalar metrics: count/min/max/first/last are
// immediate; mean/m2 use Welford's parallel combination so variance stays
// numerically stable across many combines.
func combineScalar(a, b Metric) Metric {
	count := a.count + b.count
	delta := b.mean - a.mean
	fa, fb := float64(a.count), float64(b.count)
	mean := (fa*a.mean + fb*b.mean) / float64(count)
	m2 := a.m2 + b.m2 + delta*delta*fa*fb/float64(count)

	return Metric{
		kind:  obs.KindScalar,
		count: count,
		min:   math.Min(a.min, b.min),
		max:   math.Max(a.max, b.max),
		first: a.first,
		last:  b.last,
		mean:  mean,
		m2:    m2,
	}
}

// Min is the smallest scalar value folded into m.
func (m Metric) Min() float64 { m.mustKind(obs.KindScalar); return m.min }

// Max is the largest scalar value folded into m.
func (m Metric) Max() float64 { m.mustKind(obs.KindScalar); return m.max }

// First is the value of the left-most combined observation.
func (m Metric) First() float64 { m.mustKind(obs.KindScalar); return m.first }

// Last is the value of the right-most combined observation.
func (m Metric) Last() float64 { m.mustKind(obs.KindScalar); return m.last }

// Mean is the arithmetic mean of every scalar folded into m.
func (m Metric) Mean() float64 { m.mustKind(obs.KindScalar); return m.mean }

// Variance is the population variance (m2/count) -- this is not the
// sample variance.
func (m Metric) Variance() float64 {
	m.mustKind(obs.KindScalar)
	if m.count == 0 {
		return 0
	}
	return m.m2 / float64(m.count)
}

// Stddev is the population standard deviation, sqrt(Variance()).
func (m Metric) Stddev() float64 {
	return math.Sqrt(m.Variance())
}

// CountByLevel is the number of log records at the given severity.
func (m Metric) CountByLevel(level obs.LogLevel) int64 {
	m.mustKind(obs.KindLogger)
	return m.levelCounts[level]
}

func (m Metric) mustKind(k obs.Kind) {
	if m.kind != k {
		panic("metric: accessor called on metric of wrong kind")
	}
}
