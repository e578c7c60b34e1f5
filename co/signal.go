// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"sync"
)

// Waiter yields a channel closed on the next broadcast.
type Waiter interface {
	C() <-chan struct{}
}

// Signal announces events to any number of waiters. The zero value is ready to use.
// Unlike sync.Cond it is channel based, so waiting can be part of a select.
type Signal struct {
	mu sync.Mutex
	ch chan struct{}
}

func (s *Signal) current() chan struct{} {
	if s.ch == nil {
		s.ch = make(chan struct{})
	}
	return s.ch
}

// Broadcast wakes all waiters.
func (s *Signal) Broadcast() {
	s.mu.Lock()
	defer s.mu.Unlock()

	close(s.current())
	s.ch = make(chan struct{})
}

// NewWaiter creates a waiter. Broadcasts made before this call are not observed.
func (s *Signal) NewWaiter() Waiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	return &waiter{sig: s, ch: s.current()}
}

type waiter struct {
	sig *Signal
	ch  chan struct{}
}

// C returns the channel captured by the previous call and captures the current one,
// so a broadcast between two calls is never missed.
func (w *waiter) C() <-chan struct{} {
	ch := w.ch

	w.sig.mu.Lock()
	w.ch = w.sig.current()
	w.sig.mu.Unlock()
	return ch
}
