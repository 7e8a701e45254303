// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tatstore.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tat

import (
	"github.com/fau-itc/tatstore/internal/aggregation"
	"github.com/fau-itc/tatstore/internal/obs"
)

// internalNode holds an ordered vector of same-height children (all leaves
// or all internal) of length <= fanout, and the cached aggregation covering
// every descendant once the node is sealed. A node is "full-to-the-left":
// children are appended only to the rightmost spine, and a saturated right
// sibling is never rebalanced.
type internalNode struct {
	fanout    int
	height    int // 1 + children's height; 1 means children are leaves
	children  []node
	sealed    bool
	cachedAgg aggregation.Aggregation
}

func newInternalNode(fanout, height int) *internalNode {
	return &internalNode{fanout: fanout, height: height}
}

// aggregation returns the cached value once sealed; otherwise it is
// recomputed from the current children on every call, since a non-sealed
// node's rightmost child is still being written to.
func (n *internalNode) aggregation() aggregation.Aggregation {
	if n.sealed {
		return n.cachedAgg
	}
	return n.computeAggregation()
}

func (n *internalNode) computeAggregation() aggregation.Aggregation {
	if len(n.children) == 0 {
		return aggregation.Aggregation{}
	}
	aggs := make([]aggregation.Aggregation, len(n.children))
	for i, c := range n.children {
		aggs[i] = c.aggregation()
	}
	return aggregation.FromAggregations(aggs)
}

// append recursively appends o into the rightmost child, creating that
// child lazily if this is the first observation this node has ever seen.
// If the recursive call produces a new sibling (the child saturated),
// appendChild is called to attach it.
func (n *internalNode) append(o obs.Observation, leafCap int) *internalNode {
	if len(n.children) == 0 {
		if n.height == 1 {
			n.children = append(n.children, newLeaf(leafCap))
		} else {
			n.children = append(n.children, newInternalNode(n.fanout, n.height-1))
		}
	}

	last := n.children[len(n.children)-1]
	var sibling node
	switch c := last.(type) {
	case *leaf:
		if nl := c.append(o); nl != nil {
			sibling = nl
		}
	case *internalNode:
		if nl := c.append(o, leafCap); nl != nil {
			sibling = nl
		}
	}

	if sibling != nil {
		return n.appendChild(sibling)
	}
	return nil
}

// appendChild attaches child as the new rightmost child. If this node is
// already at fanout capacity, it seals itself (caching its aggregation,
// after which it never accepts further children) and returns a brand new
// sibling node, of the same height, holding only child.
func (n *internalNode) appendChild(child node) *internalNode {
	if len(n.children) < n.fanout {
		n.children = append(n.children, child)
		return nil
	}

	n.cachedAgg = n.computeAggregation()
	n.sealed = true

	sibling := newInternalNode(n.fanout, n.height)
	sibling.children = append(sibling.children, child)
	return sibling
}

// selectRangeChildren returns every child whose own timespan overlaps span,
// preserving order; empty if this node's own aggregation doesn't overlap.
func (n *internalNode) selectRangeChildren(span obs.Timespan) []node {
	if len(n.children) == 0 || !n.aggregation().Span.Overlaps(span) {
		return nil
	}
	var out []node
	for _, c := range n.children {
		if c.aggregation().Span.Overlaps(span) {
			out = append(out, c)
		}
	}
	return out
}

func (n *internalNode) selectAllChildren() []node {
	out := make([]node, len(n.children))
	copy(out, n.children)
	return out
}
