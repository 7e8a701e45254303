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

func TestLeafAppendWithinCapacity(t *testing.T) {
	l := newLeaf(3)
	assert.Nil(t, l.append(sample(1, 10)))
	assert.Nil(t, l.append(sample(2, 20)))
	assert.Len(t, l.values, 2)
	assert.Equal(t, int64(2), l.aggregation().Metric.Count())
}

func TestLeafAppendOverflowReturnsSibling(t *testing.T) {
	l := newLeaf(2)
	require.Nil(t, l.append(sample(1, 1)))
	require.Nil(t, l.append(sample(2, 2)))

	sibling := l.append(sample(3, 3))
	require.NotNil(t, sibling)
	assert.Len(t, l.values, 2, "original leaf is never mutated once full")
	assert.Len(t, sibling.values, 1)
	assert.Equal(t, 3.0, sibling.values[0].Timestamp)
}

func TestLeafSelectRange(t *testing.T) {
	l := newLeaf(5)
	for _, ts := range []float64{1, 5, 3, 9, 2} {
		l.append(sample(ts, ts))
	}

	got := l.selectRange(obs.Timespan{Begin: 2, End: 5})
	var timestamps []float64
	for _, o := range got {
		timestamps = append(timestamps, o.Timestamp)
	}
	assert.ElementsMatch(t, []float64{5, 3, 2}, timestamps)
}

func TestLeafSelectRangeNoOverlapIsEmpty(t *testing.T) {
	l := newLeaf(5)
	l.append(sample(1, 1))
	l.append(sample(2, 2))
	assert.Empty(t, l.selectRange(obs.Timespan{Begin: 100, End: 200}))
}

func TestLeafSelectAllPreservesInsertionOrder(t *testing.T) {
	l := newLeaf(5)
	order := []float64{7, 1, 4}
	for _, ts := range order {
		l.append(sample(ts, ts))
	}
	all := l.selectAll()
	require.Len(t, all, 3)
	for i, o := range all {
		assert.Equal(t, order[i], o.Timestamp)
	}
}

func TestLeafLast(t *testing.T) {
	l := newLeaf(5)
	_, ok := l.last()
	assert.False(t, ok)

	l.append(sample(1, 1))
	l.append(sample(2, 2))
	last, ok := l.last()
	require.True(t, ok)
	assert.Equal(t, 2.0, last.Timestamp)
}
