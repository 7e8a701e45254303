// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tatstore.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeDrainWakesOnAppend(t *testing.T) {
	r := New(4, 2)
	sub := r.Subscribe()
	defer sub.Unsubscribe()

	require.NoError(t, r.Append("sig", scalarObs(0, 1)))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, sub.Drain(ctx))
}

func TestSubscribeDrainTimesOutWithoutAppend(t *testing.T) {
	r := New(4, 2)
	sub := r.Subscribe()
	defer sub.Unsubscribe()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, sub.Drain(ctx))
}

func TestSubscribeCoalescesBacklog(t *testing.T) {
	r := New(4, 2)
	r.SetNotifyInterval(time.Hour) // force every burst past the first into backlog
	sub := r.Subscribe()
	defer sub.Unsubscribe()

	for i := 0; i < 5; i++ {
		require.NoError(t, r.Append("sig", scalarObs(float64(i), float64(i))))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, sub.Drain(ctx))

	// the coalesced backlog means a second Drain returns immediately too
	ctx2, cancel2 := context.WithTimeout(context.Background(), time.Second)
	defer cancel2()
	assert.NoError(t, sub.Drain(ctx2))
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	r := New(4, 2)
	sub := r.Subscribe()
	sub.Unsubscribe()
	sub.Unsubscribe() // safe to call twice

	require.NoError(t, r.Append("sig", scalarObs(0, 1)))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, sub.Drain(ctx), "an unsubscribed listener is never notified again")
}

func TestEventCountTracksEveryAppend(t *testing.T) {
	r := New(4, 2)
	for i := 0; i < 3; i++ {
		require.NoError(t, r.Append("sig", scalarObs(float64(i), float64(i))))
	}
	assert.Equal(t, int64(3), r.EventCount())
}

func TestSetNotifyIntervalFallsBackOnNonPositive(t *testing.T) {
	r := New(4, 2)
	r.SetNotifyInterval(0)
	assert.Equal(t, DefaultNotifyInterval, r.notifyInterval)
	r.SetNotifyInterval(-time.Second)
	assert.Equal(t, DefaultNotifyInterval, r.notifyInterval)
}
