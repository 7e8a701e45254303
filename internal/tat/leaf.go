// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tatstore.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tat

import (
	"github.com/fau-itc/tatstore/internal/aggregation"
	"github.com/fau-itc/tatstore/internal/obs"
)

// leaf is an ordered, append-only vector of observations of length <= cap,
// plus a cached aggregation covering them. Leaves never shrink and never
// reorder: the left-to-right order of a leaf's observations is insertion
// order, not timestamp order.
type leaf struct {
	cap    int
	values []obs.Observation
	agg    aggregation.Aggregation
	hasAgg bool
}

func newLeaf(cap int) *leaf {
	return &leaf{cap: cap, values: make([]obs.Observation, 0, cap)}
}

func (l *leaf) aggregation() aggregation.Aggregation {
	return l.agg
}

// append pushes o onto l if there is room, updating the cached aggregation,
// and returns nil. If l is full, it creates a new leaf, appends o to it, and
// returns that new leaf to the caller -- self is never mutated on this path.
func (l *leaf) append(o obs.Observation) *leaf {
	if len(l.values) >= l.cap {
		sibling := newLeaf(l.cap)
		sibling.append(o)
		return sibling
	}

	l.values = append(l.values, o)
	single := aggregation.FromSample(o)
	if l.hasAgg {
		l.agg = aggregation.Combine(l.agg, single)
	} else {
		l.agg = single
		l.hasAgg = true
	}
	return nil
}

// selectRange returns, in insertion order, every observation whose
// timestamp lies in span. An empty result is returned immediately if the
// leaf's cached timespan does not overlap span at all.
func (l *leaf) selectRange(span obs.Timespan) []obs.Observation {
	if !l.hasAgg || !l.agg.Span.Overlaps(span) {
		return nil
	}
	var out []obs.Observation
	for _, o := range l.values {
		if span.Contains(o.Timestamp) {
			out = append(out, o)
		}
	}
	return out
}

// selectAll returns every observation in insertion order.
func (l *leaf) selectAll() []obs.Observation {
	out := make([]obs.Observation, len(l.values))
	copy(out, l.values)
	return out
}

func (l *leaf) last() (obs.Observation, bool) {
	if len(l.values) == 0 {
		return obs.Observation{}, false
	}
	return l.values[len(l.values)-1], true
}
