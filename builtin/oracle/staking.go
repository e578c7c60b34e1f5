// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

import (
	"math/big"

	"github.com/vechain/oraclenet/thor"
	"github.com/vechain/oraclenet/xenv"
)

// Stake moves amount of staking tokens from oracle to the network.
func (o *Oracle) Stake(env *xenv.Environment, oracle thor.Address, amount *big.Int) error {
	if err := env.RequireAuth(oracle); err != nil {
		return err
	}
	if amount.Sign() <= 0 {
		return errAmount
	}
	tkn, err := o.token(o.stakingToken, errStakingTokenUnset)
	if err != nil {
		return err
	}
	if err := tkn.Transfer(env, oracle, o.addr, amount); err != nil {
		return err
	}
	if err := o.stakeService.AddStake(oracle, amount); err != nil {
		return err
	}
	logger.Debug("oracle staked", "oracle", oracle, "amount", amount)

	return o.emit(env, EventOracleStaked, OracleTopic(oracle), &OracleAmount{oracle, new(big.Int).Set(amount)})
}

// Unstake returns amount of staked tokens to oracle.
func (o *Oracle) Unstake(env *xenv.Environment, oracle thor.Address, amount *big.Int) error {
	if err := env.RequireAuth(oracle); err != nil {
		return err
	}
	if amount.Sign() <= 0 {
		return errAmount
	}
	stake, err := o.stakeService.Stake(oracle)
	if err != nil {
		return err
	}
	if stake.Cmp(amount) < 0 {
		return errInsufficientStake
	}
	if err := o.stakeService.SubStake(oracle, amount); err != nil {
		return err
	}
	tkn, err := o.token(o.stakingToken, errStakingTokenUnset)
	if err != nil {
		return err
	}
	if err := env.Call(o.addr, func() error {
		return tkn.Transfer(env, o.addr, oracle, amount)
	}); err != nil {
		return err
	}
	logger.Debug("oracle unstaked", "oracle", oracle, "amount", amount)

	return o.emit(env, EventOracleUnstaked, OracleTopic(oracle), &OracleAmount{oracle, new(big.Int).Set(amount)})
}

// ClaimRewards pays out all pending rewards of oracle and returns the amount paid.
// Nothing pending is not an error, it returns 0.
func (o *Oracle) ClaimRewards(env *xenv.Environment, oracle thor.Address) (*big.Int, error) {
	if err := env.RequireAuth(oracle); err != nil {
		return nil, err
	}
	pending, err := o.stakeService.PendingRewards(oracle)
	if err != nil {
		return nil, err
	}
	if pending.Sign() <= 0 {
		return new(big.Int), nil
	}
	tkn, err := o.token(o.rewardToken, errRewardTokenUnset)
	if err != nil {
		return nil, err
	}
	if err := env.Call(o.addr, func() error {
		return tkn.Transfer(env, o.addr, oracle, pending)
	}); err != nil {
		return nil, err
	}
	o.stakeService.ClearPendingRewards(oracle)
	logger.Debug("rewards claimed", "oracle", oracle, "amount", pending)

	return pending, nil
}
