// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tatstore.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package aggregation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fau-itc/tatstore/internal/obs"
)

func obsAt(t, v float64) obs.Observation {
	return obs.Observation{Timestamp: t, Value: obs.Scalar(v)}
}

func TestFromSample(t *testing.T) {
	a := FromSample(obsAt(5, 2))
	assert.Equal(t, obs.Single(5), a.Span)
	assert.Equal(t, int64(1), a.Metric.Count())
	assert.Equal(t, 2.0, a.Metric.Mean())
}

func TestFromSamplesSpanUnion(t *testing.T) {
	samples := []obs.Observation{obsAt(1, 10), obsAt(5, 20), obsAt(3, 30)}
	a := FromSamples(samples)
	require.Equal(t, int64(3), a.Metric.Count())
	assert.Equal(t, obs.Timespan{Begin: 1, End: 5}, a.Span)
	assert.Equal(t, 10.0, a.Metric.First())
	assert.Equal(t, 30.0, a.Metric.Last())
}

func TestFromAggregationsReduces(t *testing.T) {
	a1 := FromSample(obsAt(0, 1))
	a2 := FromSample(obsAt(10, 2))
	a3 := FromSample(obsAt(5, 3))

	whole := FromAggregations([]Aggregation{a1, a2, a3})
	assert.Equal(t, obs.Timespan{Begin: 0, End: 10}, whole.Span)
	assert.Equal(t, int64(3), whole.Metric.Count())
}

func TestCombineOrderMatters(t *testing.T) {
	a := FromSample(obsAt(0, 100))
	b := FromSample(obsAt(1, 200))
	ab := Combine(a, b)
	ba := Combine(b, a)
	assert.Equal(t, 100.0, ab.Metric.First())
	assert.Equal(t, 200.0, ab.Metric.Last())
	assert.Equal(t, 200.0, ba.Metric.First())
	assert.Equal(t, 100.0, ba.Metric.Last())
}
