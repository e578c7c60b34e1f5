// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package oracle implements the oracle network contract. Staked oracles
// report values for named feeds, and each round is finalized to the
// upper median once a feed's quorum of reports is reached.
package oracle

import (
	"github.com/vechain/oraclenet/builtin/oracle/feeds"
	"github.com/vechain/oraclenet/builtin/oracle/rounds"
	"github.com/vechain/oraclenet/builtin/oracle/stakes"
	"github.com/vechain/oraclenet/builtin/reverts"
	"github.com/vechain/oraclenet/builtin/solidity"
	"github.com/vechain/oraclenet/builtin/token"
	"github.com/vechain/oraclenet/log"
	"github.com/vechain/oraclenet/metrics"
	"github.com/vechain/oraclenet/state"
	"github.com/vechain/oraclenet/thor"
)

var (
	logger = log.WithContext("pkg", "oracle")

	metricRoundFinalized = metrics.LazyLoadCounterVec("feed_round_finalized_count", []string{"feed"})
	metricOracleSlashed  = metrics.LazyLoadCounter("oracle_slashed_count")
	metricTokensReset    = metrics.LazyLoadCounter("tokens_reset_count")

	slotAdmin        = thor.BytesToBytes32([]byte("admin"))
	slotStakingToken = thor.BytesToBytes32([]byte("staking-token"))
	slotRewardToken  = thor.BytesToBytes32([]byte("reward-token"))
)

var (
	errNotInitialized    = reverts.New(reverts.KindAuthorization, "not initialized")
	errUnauthorized      = reverts.New(reverts.KindAuthorization, "unauthorized")
	errNotOracle         = reverts.New(reverts.KindAuthorization, "not oracle")
	errUnknownFeed       = reverts.New(reverts.KindNotFound, "unknown feed")
	errStakingTokenUnset = reverts.New(reverts.KindNotFound, "staking token not set")
	errRewardTokenUnset  = reverts.New(reverts.KindNotFound, "reward token not set")
	errNoOracles         = reverts.NewRequireError("no oracles")
	errTooManyOracles    = reverts.NewRequireError("too many oracles")
	errFeedExists        = reverts.NewRequireError("feed exists")
	errInvalidFeedType   = reverts.NewRequireError("invalid feed type")
	errAmount            = reverts.NewRequireError("amount")
	errInsufficientStake = reverts.NewRequireError("insufficient stake")
	errTimestampSkew     = reverts.NewRequireError("timestamp skew")
	errDuplicate         = reverts.NewRequireError("duplicate")
)

// Oracle implements the methods of the oracle network contract.
type Oracle struct {
	addr  thor.Address
	state *state.State

	admin        *solidity.Address
	stakingToken *solidity.Address
	rewardToken  *solidity.Address

	feedService  *feeds.Service
	roundService *rounds.Service
	stakeService *stakes.Service
}

// New create a new instance.
func New(addr thor.Address, state *state.State) *Oracle {
	sctx := solidity.NewContext(addr, state)

	return &Oracle{
		addr:  addr,
		state: state,

		admin:        solidity.NewAddress(sctx, slotAdmin),
		stakingToken: solidity.NewAddress(sctx, slotStakingToken),
		rewardToken:  solidity.NewAddress(sctx, slotRewardToken),

		feedService:  feeds.New(sctx),
		roundService: rounds.New(sctx),
		stakeService: stakes.New(sctx),
	}
}

// Address returns the network address, which holds staked collateral and reward funds.
func (o *Oracle) Address() thor.Address {
	return o.addr
}

// token returns the ledger at the address stored in slot, or unset if no address is stored.
func (o *Oracle) token(slot *solidity.Address, unset error) (*token.Token, error) {
	addr, err := slot.Get()
	if err != nil {
		return nil, err
	}
	if addr.IsZero() {
		return nil, unset
	}
	return token.New(addr, "", o.state), nil
}
