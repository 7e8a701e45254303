// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tatstore.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tat

import (
	"github.com/fau-itc/tatstore/internal/aggregation"
	"github.com/fau-itc/tatstore/internal/obs"
)

// ResultKind tags whether a Query returned raw observations or aggregations.
type ResultKind int

const (
	ResultObservations ResultKind = iota
	ResultAggregations
)

// QueryResult is the outcome of a range query: either the raw observations
// in span (when the tree had to be descended all the way to the leaves to
// reach minCount elements) or a list of node aggregations at whatever
// resolution satisfied minCount first.
type QueryResult struct {
	Kind         ResultKind
	Observations []obs.Observation
	Aggregations []aggregation.Aggregation
}

// query implements the core resolution-bound descent: start from the
// children one level below top, then keep descending one level at a time
// while the current list is still nodes (not observations) and shorter than
// minCount. See the range-query algorithm description this follows.
func query(top node, span obs.Timespan, minCount int) QueryResult {
	if lf, ok := top.(*leaf); ok {
		return QueryResult{Kind: ResultObservations, Observations: lf.selectRange(span)}
	}

	nodes := top.(*internalNode).selectRangeChildren(span)
	for len(nodes) > 0 && len(nodes) < minCount {
		if _, atLeaves := nodes[0].(*leaf); atLeaves {
			return QueryResult{Kind: ResultObservations, Observations: descendLeaves(nodes, span)}
		}
		nodes = descendInternal(nodes, span)
	}

	return QueryResult{Kind: ResultAggregations, Aggregations: aggregationsOf(nodes)}
}

// descendInternal replaces each element of nodes (all *internalNode, same
// height) with its children: the first and last are refined with
// selectRangeChildren since they only partially overlap span, every middle
// element is fully covered by construction and expanded with
// selectAllChildren.
func descendInternal(nodes []node, span obs.Timespan) []node {
	var out []node
	last := len(nodes) - 1
	for i, n := range nodes {
		in := n.(*internalNode)
		if i == 0 || i == last {
			out = append(out, in.selectRangeChildren(span)...)
		} else {
			out = append(out, in.selectAllChildren()...)
		}
	}
	return out
}

// descendLeaves is descendInternal's counterpart for the final step past a
// list of leaves: the result is raw observations, not nodes.
func descendLeaves(nodes []node, span obs.Timespan) []obs.Observation {
	var out []obs.Observation
	last := len(nodes) - 1
	for i, n := range nodes {
		lf := n.(*leaf)
		if i == 0 || i == last {
			out = append(out, lf.selectRange(span)...)
		} else {
			out = append(out, lf.selectAll()...)
		}
	}
	return out
}

func aggregationsOf(nodes []node) []aggregation.Aggregation {
	out := make([]aggregation.Aggregation, len(nodes))
	for i, n := range nodes {
		out[i] = n.aggregation()
	}
	return out
}

// queryMetrics implements the exact range aggregation used for autoscale:
// collect whole sub-aggregations fully covered by span as-is, and filter
// partially-overlapping leaves observation by observation, then combine
// every collected piece. Returns ok=false on an empty intersection.
func queryMetrics(top node, span obs.Timespan) (aggregation.Aggregation, bool) {
	pieces := collectMetrics(top, span, nil)
	if len(pieces) == 0 {
		return aggregation.Aggregation{}, false
	}
	return aggregation.FromAggregations(pieces), true
}

func collectMetrics(n node, span obs.Timespan, into []aggregation.Aggregation) []aggregation.Aggregation {
	agg := n.aggregation()
	if !agg.Span.Overlaps(span) {
		return into
	}
	if span.Covers(agg.Span) {
		return append(into, agg)
	}

	switch t := n.(type) {
	case *leaf:
		partial := t.selectRange(span)
		if len(partial) == 0 {
			return into
		}
		return append(into, aggregation.FromSamples(partial))
	case *internalNode:
		for _, c := range t.children {
			into = collectMetrics(c, span, into)
		}
		return into
	default:
		return into
	}
}
