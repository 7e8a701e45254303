// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tatstore.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package tat implements the time-indexed aggregating tree: an
// append-optimized, multi-resolution summary tree that stores raw
// observations in leaves and precomputed aggregations in every internal
// node, so a range query at any zoom level costs time proportional to the
// number of elements requested rather than the number of samples stored.
//
// The node family is modeled as a small closed interface with two
// implementations (*leaf, *internalNode) instead of an abstract base class
// with subclasses -- a tagged-variant-by-interface idiom.
package tat

import "github.com/fau-itc/tatstore/internal/aggregation"

const (
	DefaultLeafCap = 32
	DefaultFanout  = 5
)

// node is implemented by *leaf and *internalNode. Every polymorphic call in
// the tree goes through a type switch on this interface rather than runtime
// type inspection of the payload -- the payload's obs.Kind never needs to be
// rediscovered once a signal's kind is fixed.
type node interface {
	aggregation() aggregation.Aggregation
}
