// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"runtime"
)

// Parallel runs the works queued by cb on as many goroutines as CPUs.
// The returned channel is closed once cb returned and every queued work is done.
func Parallel(cb func(queue chan<- func())) <-chan struct{} {
	n := runtime.NumCPU()
	queue := make(chan func(), n*2)
	done := make(chan struct{})

	var goes Goes
	for range n {
		goes.Go(func() {
			for work := range queue {
				work()
			}
		})
	}
	go func() {
		defer close(done)
		cb(queue)
		close(queue)
		goes.Wait()
	}()
	return done
}
