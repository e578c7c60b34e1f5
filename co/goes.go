// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"context"
	"sync"
)

// Goes tracks a group of go routines.
type Goes struct {
	wg sync.WaitGroup
}

// Go runs f in a new go routine.
func (g *Goes) Go(f func()) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		f()
	}()
}

// Wait blocks until every routine started by Go has returned.
func (g *Goes) Wait() {
	g.wg.Wait()
}

// Done returns a channel closed once every routine has returned.
func (g *Goes) Done() <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		g.wg.Wait()
	}()
	return done
}

// Choes is Goes with a shared cancellation context, for long running loops.
type Choes struct {
	goes   Goes
	ctx    context.Context
	cancel context.CancelFunc
}

// NewChoes creates a Choes whose routines are cancelled with parent or by Stop.
func NewChoes(parent context.Context) *Choes {
	ctx, cancel := context.WithCancel(parent)
	return &Choes{ctx: ctx, cancel: cancel}
}

// Go runs f in a new go routine. f should return once ctx is done.
func (c *Choes) Go(f func(ctx context.Context)) {
	c.goes.Go(func() { f(c.ctx) })
}

// Stop cancels all routines and waits for them. It is safe to call more than once.
func (c *Choes) Stop() {
	c.cancel()
	c.goes.Wait()
}
