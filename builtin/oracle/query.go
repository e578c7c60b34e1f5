// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

import (
	"math/big"

	"github.com/vechain/oraclenet/thor"
)

// GetLatest returns the latest finalized state of a feed.
// ok is false if the feed is unknown or has no finalized round yet.
func (o *Oracle) GetLatest(id FeedID) (st *FeedState, ok bool, err error) {
	st, err = o.feedService.State(id)
	if err != nil || st == nil || st.LatestRoundID == 0 {
		return nil, false, err
	}
	return st, true, nil
}

// GetLatestSafe is GetLatest, also absent when the reported timestamp is more than maxAge seconds before now.
// A reported timestamp ahead of now is never stale.
func (o *Oracle) GetLatestSafe(now uint64, id FeedID, maxAge uint64) (*FeedState, bool, error) {
	st, ok, err := o.GetLatest(id)
	if err != nil || !ok {
		return nil, false, err
	}
	if saturatingSub(now, st.LatestTimestamp) > maxAge {
		return nil, false, nil
	}
	return st, true, nil
}

// GetLatestWithFallback tries primary then fallback, each with its own max age.
// It returns the id of the feed the state was taken from.
func (o *Oracle) GetLatestWithFallback(now uint64, primary, fallback FeedID, maxAgePrimary, maxAgeFallback uint64) (*FeedState, FeedID, bool, error) {
	st, ok, err := o.GetLatestSafe(now, primary, maxAgePrimary)
	if err != nil {
		return nil, "", false, err
	}
	if ok {
		return st, primary, true, nil
	}
	st, ok, err = o.GetLatestSafe(now, fallback, maxAgeFallback)
	if err != nil || !ok {
		return nil, "", false, err
	}
	return st, fallback, true, nil
}

// GetStake returns the stake of oracle, 0 if unknown.
func (o *Oracle) GetStake(oracle thor.Address) (*big.Int, error) {
	return o.stakeService.Stake(oracle)
}

// GetTotalStake returns the collateral staked by all oracles.
func (o *Oracle) GetTotalStake() (*big.Int, error) {
	return o.stakeService.TotalStake()
}

// GetPendingRewards returns the unclaimed rewards of oracle, 0 if unknown.
func (o *Oracle) GetPendingRewards(oracle thor.Address) (*big.Int, error) {
	return o.stakeService.PendingRewards(oracle)
}

// GetNetworkConfig returns the admin and tokens, zero when not set.
func (o *Oracle) GetNetworkConfig() (*NetworkConfig, error) {
	admin, err := o.admin.Get()
	if err != nil {
		return nil, err
	}
	staking, err := o.stakingToken.Get()
	if err != nil {
		return nil, err
	}
	reward, err := o.rewardToken.Get()
	if err != nil {
		return nil, err
	}
	return &NetworkConfig{Admin: admin, StakingToken: staking, RewardToken: reward}, nil
}

// GetFeedConfig returns the config of a feed, nil if unknown.
func (o *Oracle) GetFeedConfig(id FeedID) (*FeedConfig, error) {
	return o.feedService.Config(id)
}

// GetFeedOracles returns the oracle set of a feed, empty if unknown.
func (o *Oracle) GetFeedOracles(id FeedID) ([]thor.Address, error) {
	return o.feedService.Oracles(id)
}

// GetRound returns the in-flight round of a feed, nil if no report is pending.
func (o *Oracle) GetRound(id FeedID) (*Round, error) {
	return o.roundService.Get(id)
}

// ListFeeds returns all feed ids in creation order.
func (o *Oracle) ListFeeds() ([]FeedID, error) {
	return o.feedService.IDs()
}

func saturatingSub(a, b uint64) uint64 {
	if a < b {
		return 0
	}
	return a - b
}
