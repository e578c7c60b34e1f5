// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vechain/oraclenet/co"
)

func fired(w co.Waiter) bool {
	select {
	case <-w.C():
		return true
	default:
		return false
	}
}

func TestSignalBroadcastBeforeWaiter(t *testing.T) {
	var sig co.Signal
	sig.Broadcast()

	for range 5 {
		assert.False(t, fired(sig.NewWaiter()))
	}
}

func TestSignalBroadcastWakesAll(t *testing.T) {
	var sig co.Signal
	ws := make([]co.Waiter, 10)
	for i := range ws {
		ws[i] = sig.NewWaiter()
	}

	sig.Broadcast()

	for _, w := range ws {
		select {
		case <-w.C():
		case <-time.After(time.Second):
			t.Fatal("waiter not woken")
		}
	}
}

func TestSignalWaiterAdvances(t *testing.T) {
	var sig co.Signal
	w := sig.NewWaiter()

	sig.Broadcast()
	assert.True(t, fired(w))
	// consumed
	assert.False(t, fired(w))

	sig.Broadcast()
	assert.True(t, fired(w))
}
