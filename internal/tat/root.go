// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tatstore.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tat

import (
	"sync"

	"github.com/fau-itc/tatstore/internal/aggregation"
	"github.com/fau-itc/tatstore/internal/obs"
)

// Root owns the current top node of one signal's tree plus the growth
// policy that adds height to the tree as it fills up. It is the only type
// in this package callers outside the tree touch directly.
//
// Root serializes writers and allows concurrent readers with its own
// sync.RWMutex: each signal's TAT owns an independent exclusive-for-writers,
// shared-for-readers lock, so signals never contend with each other.
type Root struct {
	mu      sync.RWMutex
	top     node
	count   int64
	leafCap int
	fanout  int
}

// New creates an empty TAT with the given leaf capacity and fanout.
func New(leafCap, fanout int) *Root {
	if leafCap <= 0 {
		leafCap = DefaultLeafCap
	}
	if fanout <= 0 {
		fanout = DefaultFanout
	}
	return &Root{leafCap: leafCap, fanout: fanout}
}

// Append adds one observation in arrival order. If the current root
// saturates, a fresh internal node one level taller is installed above the
// old root and the returned sibling, becoming the new root.
func (r *Root) Append(o obs.Observation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appendLocked(o)
}

func (r *Root) appendLocked(o obs.Observation) {
	if r.top == nil {
		r.top = newLeaf(r.leafCap)
	}

	var sibling node
	switch t := r.top.(type) {
	case *leaf:
		if nl := t.append(o); nl != nil {
			sibling = nl
		}
	case *internalNode:
		if nl := t.append(o, r.leafCap); nl != nil {
			sibling = nl
		}
	}

	if sibling != nil {
		taller := newInternalNode(r.fanout, heightOf(r.top)+1)
		taller.children = []node{r.top, sibling}
		r.top = taller
	}

	r.count++
}

// Extend appends every observation in obsList, in order.
func (r *Root) Extend(obsList []obs.Observation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range obsList {
		r.appendLocked(o)
	}
}

func heightOf(n node) int {
	switch t := n.(type) {
	case *leaf:
		return 0
	case *internalNode:
		return t.height
	default:
		return 0
	}
}

// Len returns the total number of observations ever appended.
func (r *Root) Len() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.count
}

// Iter returns every observation in insertion order.
func (r *Root) Iter() []obs.Observation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.top == nil {
		return nil
	}
	return iterNode(r.top)
}

func iterNode(n node) []obs.Observation {
	switch t := n.(type) {
	case *leaf:
		return t.selectAll()
	case *internalNode:
		var out []obs.Observation
		for _, c := range t.children {
			out = append(out, iterNode(c)...)
		}
		return out
	default:
		return nil
	}
}

// Aggregation returns the whole-tree aggregation, or the zero value if the
// tree is empty.
func (r *Root) Aggregation() aggregation.Aggregation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.top == nil {
		return aggregation.Aggregation{}
	}
	return r.top.aggregation()
}

// Query runs the resolution-bound range query: the result holds
// aggregations once minCount is satisfied before reaching the leaves, or
// raw observations if the tree had to be descended all the way.
func (r *Root) Query(span obs.Timespan, minCount int) QueryResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.top == nil {
		return QueryResult{Kind: ResultObservations}
	}
	return query(r.top, span, minCount)
}

// QueryMetrics returns the exact aggregation of every observation whose
// timestamp lies in span, or ok=false if nothing in the tree intersects it.
func (r *Root) QueryMetrics(span obs.Timespan) (aggregation.Aggregation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.top == nil {
		return aggregation.Aggregation{}, false
	}
	return queryMetrics(r.top, span)
}

// Last returns the most recently appended observation, following the
// rightmost spine of the tree.
func (r *Root) Last() (obs.Observation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.top == nil {
		return obs.Observation{}, false
	}
	n := r.top
	for {
		switch t := n.(type) {
		case *leaf:
			return t.last()
		case *internalNode:
			if len(t.children) == 0 {
				return obs.Observation{}, false
			}
			n = t.children[len(t.children)-1]
		default:
			return obs.Observation{}, false
		}
	}
}

// QueryValue finds the nearest observation at-or-before t, descending along
// the child whose timespan contains t (or the rightmost one preceding it),
// then linear-scanning the reached leaf.
func (r *Root) QueryValue(t float64) (obs.Observation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.top == nil {
		return obs.Observation{}, false
	}

	n := r.top
	for {
		switch nd := n.(type) {
		case *leaf:
			return nearestAtOrBefore(nd, t)
		case *internalNode:
			next := pickChildFor(nd, t)
			if next == nil {
				return obs.Observation{}, false
			}
			n = next
		default:
			return obs.Observation{}, false
		}
	}
}

func pickChildFor(n *internalNode, t float64) node {
	var best node
	var bestBegin float64
	for _, c := range n.children {
		span := c.aggregation().Span
		if span.Contains(t) {
			return c
		}
		if span.Begin <= t && (best == nil || span.Begin > bestBegin) {
			best = c
			bestBegin = span.Begin
		}
	}
	return best
}

func nearestAtOrBefore(l *leaf, t float64) (obs.Observation, bool) {
	var best obs.Observation
	found := false
	for _, o := range l.values {
		if o.Timestamp <= t && (!found || o.Timestamp > best.Timestamp) {
			best = o
			found = true
		}
	}
	return best, found
}
