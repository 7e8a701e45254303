// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tatstore.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package aggregation pairs a metric.Metric with the obs.Timespan it
// summarizes. This pair is the monoid cached at every node of the TAT: a
// single sample aggregates to a degenerate timespan and a singleton metric,
// and combining two aggregations combines both halves independently.
package aggregation

import (
	"github.com/fau-itc/tatstore/internal/metric"
	"github.com/fau-itc/tatstore/internal/obs"
)

// Aggregation is the cached summary value stored by every TAT node.
type Aggregation struct {
	Span   obs.Timespan
	Metric metric.Metric
}

// FromSample builds the single-observation aggregation.
func FromSample(o obs.Observation) Aggregation {
	return Aggregation{
		Span:   obs.Single(o.Timestamp),
		Metric: metric.Of(o.Value),
	}
}

// FromSamples folds a (non-empty) slice of observations, in order, into one
// aggregation. Order matters: First()/Last() on the resulting scalar metric
// reflect the order of obs, not timestamp order.
func FromSamples(samples []obs.Observation) Aggregation {
	agg := FromSample(samples[0])
	for _, o := range samples[1:] {
		agg = Combine(agg, FromSample(o))
	}
	return agg
}

// FromAggregations folds a (non-empty) slice of already-computed
// aggregations, left to right.
func FromAggregations(aggs []Aggregation) Aggregation {
	result := aggs[0]
	for _, a := range aggs[1:] {
		result = Combine(result, a)
	}
	return result
}

// Combine folds b into a, in that order.
func Combine(a, b Aggregation) Aggregation {
	return Aggregation{
		Span:   obs.CombineTimespans(a.Span, b.Span),
		Metric: metric.Combine(a.Metric, b.Metric),
	}
}
