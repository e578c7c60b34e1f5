// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

import (
	"github.com/vechain/oraclenet/builtin/oracle/feeds"
	"github.com/vechain/oraclenet/builtin/oracle/rounds"
	"github.com/vechain/oraclenet/thor"
)

type (
	FeedID     = feeds.ID
	FeedType   = feeds.Type
	FeedConfig = feeds.Config
	FeedState  = feeds.State
	Round      = rounds.Round
	Report     = rounds.Report
)

const (
	FeedTypePrice     = feeds.TypePrice
	FeedTypeEvent     = feeds.TypeEvent
	FeedTypeStatistic = feeds.TypeStatistic
)

// NetworkConfig is the network wide setup. Zero addresses mean not set.
type NetworkConfig struct {
	Admin        thor.Address
	StakingToken thor.Address
	RewardToken  thor.Address
}

// Initialized reports whether an admin was stored.
func (c *NetworkConfig) Initialized() bool {
	return !c.Admin.IsZero()
}
