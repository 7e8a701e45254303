// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tatstore.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInternalNodeAppendLazyCreatesLeafChild(t *testing.T) {
	n := newInternalNode(2, 1)
	sibling := n.append(sample(1, 1), 4)
	assert.Nil(t, sibling)
	require.Len(t, n.children, 1)
	assert.IsType(t, &leaf{}, n.children[0])
}

func TestInternalNodeAppendChildSealsAtFanout(t *testing.T) {
	n := newInternalNode(2, 1)
	first := newLeaf(1)
	second := newLeaf(1)

	assert.Nil(t, n.appendChild(first))
	assert.Nil(t, n.appendChild(second))
	assert.False(t, n.sealed)

	third := newLeaf(1)
	sibling := n.appendChild(third)
	require.NotNil(t, sibling)
	assert.True(t, n.sealed)
	assert.Len(t, n.children, 2, "sealed node keeps the children it already had")
	assert.Len(t, sibling.children, 1)
	assert.Equal(t, n.height, sibling.height)
}

func TestInternalNodeAggregationUnsealedRecomputes(t *testing.T) {
	n := newInternalNode(4, 1)
	n.append(sample(1, 10), 4)
	n.append(sample(2, 20), 4)
	assert.Equal(t, int64(2), n.aggregation().Metric.Count())

	n.append(sample(3, 30), 4)
	assert.Equal(t, int64(3), n.aggregation().Metric.Count())
}
