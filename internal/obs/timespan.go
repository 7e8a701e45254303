// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tatstore.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package obs

// Timespan is a closed interval [Begin, End] of real-valued timestamps.
type Timespan struct {
	Begin float64
	End   float64
}

// Single returns the degenerate timespan covering exactly one instant.
func Single(t float64) Timespan {
	return Timespan{Begin: t, End: t}
}

// CombineTimespans returns the smallest timespan covering both a and b.
func CombineTimespans(a, b Timespan) Timespan {
	return Timespan{
		Begin: min(a.Begin, b.Begin),
		End:   max(a.End, b.End),
	}
}

// Overlaps reports whether the two closed intervals share at least one point.
func (t Timespan) Overlaps(o Timespan) bool {
	return t.Begin <= o.End && o.Begin <= t.End
}

// Covers reports whether o lies entirely within t.
func (t Timespan) Covers(o Timespan) bool {
	return t.Begin <= o.Begin && o.End <= t.End
}

// Contains reports whether timestamp ts lies within the closed interval.
func (t Timespan) Contains(ts float64) bool {
	return t.Begin <= ts && ts <= t.End
}
