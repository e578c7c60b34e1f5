// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import "sync/atomic"

// Stats counts cache lookups. The zero value is ready to use.
type Stats struct {
	hit, miss atomic.Int64
}

func (cs *Stats) Hit()  { cs.hit.Add(1) }
func (cs *Stats) Miss() { cs.miss.Add(1) }

// Counts returns the number of hits and misses.
func (cs *Stats) Counts() (hit, miss int64) {
	return cs.hit.Load(), cs.miss.Load()
}

// HitRate returns the share of lookups served by the cache, 0 before any lookup.
func (cs *Stats) HitRate() float64 {
	hit, miss := cs.Counts()
	if hit+miss == 0 {
		return 0
	}
	return float64(hit) / float64(hit+miss)
}
