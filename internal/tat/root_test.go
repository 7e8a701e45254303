// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tatstore.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fau-itc/tatstore/internal/obs"
)

func sample(ts, v float64) obs.Observation {
	return obs.Observation{Timestamp: ts, Value: obs.Scalar(v)}
}

func TestNewUsesDefaultsWhenNonPositive(t *testing.T) {
	r := New(0, 0)
	assert.Equal(t, DefaultLeafCap, r.leafCap)
	assert.Equal(t, DefaultFanout, r.fanout)
}

func TestAppendAndLen(t *testing.T) {
	r := New(4, 2)
	for i := 0; i < 10; i++ {
		r.Append(sample(float64(i), float64(i)*10))
	}
	assert.Equal(t, int64(10), r.Len())
}

// TestTreeGrowsOnlyAtRoot verifies the root grows taller only once the
// current top node saturates, never by inserting height below an existing
// root (invariant: "grows only at the root").
func TestTreeGrowsOnlyAtRoot(t *testing.T) {
	leafCap, fanout := 2, 2
	r := New(leafCap, fanout)

	// leafCap*fanout = 4 observations saturate exactly one level-1 internal
	// node; the 5th forces the root to grow to height 2.
	for i := 0; i < 4; i++ {
		r.Append(sample(float64(i), float64(i)))
	}
	_, isInternal := r.top.(*internalNode)
	require.True(t, isInternal)
	assert.Equal(t, 1, r.top.(*internalNode).height)

	r.Append(sample(4, 4))
	require.IsType(t, &internalNode{}, r.top)
	assert.Equal(t, 2, r.top.(*internalNode).height)
}

func TestIterPreservesInsertionOrder(t *testing.T) {
	r := New(2, 2)
	ts := []float64{5, 1, 9, 3, 7, 2, 8}
	for _, tv := range ts {
		r.Append(sample(tv, tv))
	}
	out := r.Iter()
	require.Len(t, out, len(ts))
	for i, o := range out {
		assert.Equal(t, ts[i], o.Timestamp)
	}
}

func TestAggregationOfEmptyTree(t *testing.T) {
	r := New(4, 2)
	assert.Equal(t, int64(0), r.Aggregation().Metric.Count())
}

func TestLastFollowsRightmostSpine(t *testing.T) {
	r := New(2, 2)
	for i := 0; i < 9; i++ {
		r.Append(sample(float64(i), float64(i)))
	}
	last, ok := r.Last()
	require.True(t, ok)
	assert.Equal(t, 8.0, last.Timestamp)
}

func TestLastOnEmptyTree(t *testing.T) {
	r := New(4, 2)
	_, ok := r.Last()
	assert.False(t, ok)
}

func TestQueryValueNearestAtOrBefore(t *testing.T) {
	r := New(3, 2)
	for _, tv := range []float64{0, 2, 4, 6, 8, 10} {
		r.Append(sample(tv, tv*100))
	}

	o, ok := r.QueryValue(5)
	require.True(t, ok)
	assert.Equal(t, 4.0, o.Timestamp)

	o, ok = r.QueryValue(10)
	require.True(t, ok)
	assert.Equal(t, 10.0, o.Timestamp)

	_, ok = r.QueryValue(-1)
	assert.False(t, ok)
}

func TestQueryMetricsExactRange(t *testing.T) {
	r := New(3, 2)
	for i := 0; i < 20; i++ {
		r.Append(sample(float64(i), float64(i)))
	}

	agg, ok := r.QueryMetrics(obs.Timespan{Begin: 5, End: 14})
	require.True(t, ok)
	assert.Equal(t, int64(10), agg.Metric.Count())
	assert.Equal(t, 5.0, agg.Metric.Min())
	assert.Equal(t, 14.0, agg.Metric.Max())
}

func TestQueryMetricsEmptyIntersection(t *testing.T) {
	r := New(3, 2)
	for i := 0; i < 5; i++ {
		r.Append(sample(float64(i), float64(i)))
	}
	_, ok := r.QueryMetrics(obs.Timespan{Begin: 100, End: 200})
	assert.False(t, ok)
}

// TestQueryResolutionBound verifies that a range query returns raw
// observations when fewer than minCount nodes overlap (forcing a descent
// all the way to the leaves), and aggregations once minCount is satisfied
// at a coarser level.
func TestQueryResolutionBound(t *testing.T) {
	r := New(4, 4)
	for i := 0; i < 200; i++ {
		r.Append(sample(float64(i), float64(i)))
	}

	span := obs.Timespan{Begin: 0, End: 199}

	coarse := r.Query(span, 1)
	assert.Equal(t, ResultAggregations, coarse.Kind)

	fine := r.Query(span, 100000)
	assert.Equal(t, ResultObservations, fine.Kind)
	assert.Len(t, fine.Observations, 200)
}

func TestQueryOnEmptyTree(t *testing.T) {
	r := New(4, 2)
	result := r.Query(obs.Timespan{Begin: 0, End: 10}, 1)
	assert.Equal(t, ResultObservations, result.Kind)
	assert.Empty(t, result.Observations)
}

func TestExtendAppendsInOrder(t *testing.T) {
	r := New(4, 2)
	batch := []obs.Observation{sample(1, 1), sample(2, 2), sample(3, 3)}
	r.Extend(batch)
	assert.Equal(t, int64(3), r.Len())
	last, _ := r.Last()
	assert.Equal(t, 3.0, last.Timestamp)
}
