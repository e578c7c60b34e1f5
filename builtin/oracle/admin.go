// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/oraclenet/builtin/reverts"
	"github.com/vechain/oraclenet/thor"
	"github.com/vechain/oraclenet/xenv"
)

// RequireAdmin checks admin is the stored admin and signed the call.
func (o *Oracle) RequireAdmin(env *xenv.Environment, admin thor.Address) error {
	stored, err := o.admin.Get()
	if err != nil {
		return err
	}
	if stored.IsZero() {
		return errNotInitialized
	}
	if stored != admin {
		return errUnauthorized
	}
	return env.RequireAuth(admin)
}

// Initialize stores the admin. Later calls are no-ops, the admin never changes.
func (o *Oracle) Initialize(env *xenv.Environment, admin thor.Address) error {
	stored, err := o.admin.Get()
	if err != nil {
		return err
	}
	if !stored.IsZero() {
		logger.Info("network already initialized", "admin", stored)
		return nil
	}
	if err := env.RequireAuth(admin); err != nil {
		return err
	}
	o.admin.Set(&admin)
	logger.Info("network initialized", "admin", admin)
	return nil
}

// SetTokens sets the staking and reward tokens, overwriting previous ones.
func (o *Oracle) SetTokens(env *xenv.Environment, admin, stakingToken, rewardToken thor.Address) error {
	if err := o.RequireAdmin(env, admin); err != nil {
		return err
	}
	cfg, err := o.GetNetworkConfig()
	if err != nil {
		return err
	}
	if !cfg.StakingToken.IsZero() || !cfg.RewardToken.IsZero() {
		if cfg.StakingToken != stakingToken || cfg.RewardToken != rewardToken {
			logger.Warn("overwriting network tokens",
				"oldStaking", cfg.StakingToken, "newStaking", stakingToken,
				"oldReward", cfg.RewardToken, "newReward", rewardToken,
			)
			metricTokensReset().Add(1)
		}
	}
	o.stakingToken.Set(&stakingToken)
	o.rewardToken.Set(&rewardToken)
	return nil
}

func validateOracles(oracles []thor.Address) error {
	if len(oracles) == 0 {
		return errNoOracles
	}
	if len(oracles) > int(thor.MaxOraclesPerFeed) {
		return errTooManyOracles
	}
	return nil
}

// CreateFeed registers a feed with a normalized config.
func (o *Oracle) CreateFeed(env *xenv.Environment, admin thor.Address, id FeedID, cfg *FeedConfig, oracles []thor.Address) error {
	if err := o.RequireAdmin(env, admin); err != nil {
		return err
	}
	if err := id.Validate(); err != nil {
		return reverts.NewRequireError(err.Error())
	}
	if !cfg.Type.Valid() {
		return errInvalidFeedType
	}
	if err := validateOracles(oracles); err != nil {
		return err
	}
	exists, err := o.feedService.Exists(id)
	if err != nil {
		return err
	}
	if exists {
		return errFeedExists
	}

	normalized := cfg.Normalize()
	if err := o.feedService.Add(id, normalized, oracles); err != nil {
		return errors.WithMessage(err, "add feed")
	}
	logger.Info("feed created", "feed", id, "type", normalized.Type, "oracles", len(oracles), "minOracles", normalized.MinOracles)

	return o.emit(env, EventFeedCreated, FeedTopic(id), &FeedCreated{id, normalized.Type})
}

// UpdateFeedOracles replaces the oracle set of a feed. Reports already in
// the in-flight round are kept.
func (o *Oracle) UpdateFeedOracles(env *xenv.Environment, admin thor.Address, id FeedID, oracles []thor.Address) error {
	if err := o.RequireAdmin(env, admin); err != nil {
		return err
	}
	if err := validateOracles(oracles); err != nil {
		return err
	}
	exists, err := o.feedService.Exists(id)
	if err != nil {
		return err
	}
	if !exists {
		return errUnknownFeed
	}
	return o.feedService.SetOracles(id, oracles)
}

// Slash removes up to amount of the oracle's stake. The collateral stays with the network.
func (o *Oracle) Slash(env *xenv.Environment, admin, oracle thor.Address, amount *big.Int) error {
	if err := o.RequireAdmin(env, admin); err != nil {
		return err
	}
	if amount.Sign() <= 0 {
		return errAmount
	}
	stake, err := o.stakeService.Stake(oracle)
	if err != nil {
		return err
	}
	if stake.Sign() <= 0 {
		return nil
	}
	actual := amount
	if stake.Cmp(amount) < 0 {
		actual = stake
	}
	if err := o.stakeService.SubStake(oracle, actual); err != nil {
		return err
	}
	metricOracleSlashed().Add(1)
	logger.Info("oracle slashed", "oracle", oracle, "amount", actual)

	return o.emit(env, EventOracleSlashed, OracleTopic(oracle), &OracleAmount{oracle, new(big.Int).Set(actual)})
}
