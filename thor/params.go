// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

// Constants of the oracle network.
const (
	DefaultHeartbeat  uint64 = 60   // (unit: second) used when a feed is created with a zero heartbeat.
	MaxDeviationBps   uint32 = 5000 // upper bound of a feed's deviation threshold.
	MaxOraclesPerFeed uint32 = 16

	MaxFeedIDLength = 32
)
