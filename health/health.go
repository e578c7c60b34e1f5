// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"sync"
	"time"

	"github.com/vechain/oraclenet/runtime"
)

type Ledger struct {
	Sequence uint32 `json:"sequence"`
	Time     uint64 `json:"time"`
}

type Clock struct {
	Checked   bool       `json:"checked"`
	DriftMs   int64      `json:"driftMs"`
	CheckedAt *time.Time `json:"checkedAt"`
}

type Status struct {
	Healthy bool    `json:"healthy"`
	Ledger  *Ledger `json:"ledger"`
	Clock   *Clock  `json:"clock"`
}

// Health reports whether the node can be trusted to timestamp reports.
// The local clock is checked against ntp by the node, a drifting clock makes staleness checks wrong.
type Health struct {
	lock      sync.RWMutex
	rt        *runtime.Runtime
	drift     time.Duration
	checkedAt time.Time
}

func New(rt *runtime.Runtime) *Health {
	return &Health{rt: rt}
}

// ClockDrift records the offset of the local clock from the network time.
func (h *Health) ClockDrift(drift time.Duration) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.drift = drift
	h.checkedAt = time.Now()
}

// Status is healthy while the last clock check drifts less than maxDrift.
// A never checked clock is trusted.
func (h *Health) Status(maxDrift time.Duration) (*Status, error) {
	h.lock.RLock()
	defer h.lock.RUnlock()

	head := h.rt.Head()
	clock := &Clock{Checked: !h.checkedAt.IsZero()}
	healthy := true
	if clock.Checked {
		checkedAt := h.checkedAt
		clock.CheckedAt = &checkedAt
		clock.DriftMs = h.drift.Milliseconds()
		healthy = h.drift.Abs() <= maxDrift
	}

	return &Status{
		Healthy: healthy,
		Ledger:  &Ledger{Sequence: head.Sequence, Time: head.Time},
		Clock:   clock,
	}, nil
}
