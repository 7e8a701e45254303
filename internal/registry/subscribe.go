// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tatstore.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package registry

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// DefaultNotifyInterval bounds how often a single subscriber is woken for
// "registry changed" -- bursty writers cannot flood a slow consumer past
// this rate; everything in between is coalesced into Subscription.backlog.
const DefaultNotifyInterval = 50 * time.Millisecond

// Subscription is a listener handle returned by Registry.Subscribe. Drain
// blocks until at least one append has happened since the last Drain,
// coalescing any number of intervening appends into a single wakeup.
type Subscription struct {
	registry *Registry
	ch       chan struct{}
	backlog  atomic.Bool
	limiter  *rate.Limiter
}

// Subscribe registers a new listener. The caller must eventually call
// Unsubscribe to stop receiving notifications and let the registry release
// the handle.
func (r *Registry) Subscribe() *Subscription {
	r.subsMu.Lock()
	interval := r.notifyInterval
	if interval <= 0 {
		interval = DefaultNotifyInterval
	}
	sub := &Subscription{
		registry: r,
		ch:       make(chan struct{}, 1),
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
	}
	r.subs = append(r.subs, sub)
	r.subsMu.Unlock()
	return sub
}

// Unsubscribe removes sub from the registry's listener list. Safe to call
// more than once.
func (s *Subscription) Unsubscribe() {
	r := s.registry
	r.subsMu.Lock()
	defer r.subsMu.Unlock()
	for i, other := range r.subs {
		if other == s {
			r.subs = append(r.subs[:i], r.subs[i+1:]...)
			return
		}
	}
}

// Drain blocks until an append has occurred since the last successful
// Drain (or until ctx is done), then returns. At most one wakeup is ever
// pending per subscriber regardless of how many appends occurred meanwhile.
func (s *Subscription) Drain(ctx context.Context) error {
	select {
	case <-s.ch:
	default:
		// An append suppressed by the rate limiter while no wakeup was
		// pending is recorded only in backlog; it still counts as a change.
		if !s.backlog.Swap(false) {
			select {
			case <-s.ch:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	// If events kept arriving while this drain was being served, make sure
	// the next Drain call returns immediately instead of blocking again.
	if s.backlog.Swap(false) {
		select {
		case s.ch <- struct{}{}:
		default:
		}
	}
	return nil
}

// notify is called on every registry append. It is rate-limited per
// subscriber: events arriving faster than the subscription's notify
// interval (DefaultNotifyInterval unless SetNotifyInterval changed it), or while a
// notification is already pending in ch, are coalesced into backlog rather
// than queued.
func (s *Subscription) notify() {
	if !s.limiter.Allow() {
		s.backlog.Store(true)
		return
	}
	select {
	case s.ch <- struct{}{}:
	default:
		s.backlog.Store(true)
	}
}

// notifyChanged increments the raw event counter and wakes every current
// subscriber (subject to each one's own rate limit).
func (r *Registry) notifyChanged() {
	r.events.Add(1)

	r.subsMu.Lock()
	subs := make([]*Subscription, len(r.subs))
	copy(subs, r.subs)
	r.subsMu.Unlock()

	for _, s := range subs {
		s.notify()
	}
}

// EventCount reports the total number of appends ever observed by the
// registry, regardless of whether any subscriber was notified of them.
func (r *Registry) EventCount() int64 {
	return r.events.Load()
}
