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

// Event names.
const (
	EventFeedCreated    = "FeedCreated"
	EventFeedUpdated    = "FeedUpdated"
	EventOracleStaked   = "OracleStaked"
	EventOracleUnstaked = "OracleUnstaked"
	EventOracleSlashed  = "OracleSlashed"
)

type FeedCreated struct {
	FeedID   FeedID   `json:"feedId"`
	FeedType FeedType `json:"feedType"`
}

type FeedUpdated struct {
	FeedID    FeedID   `json:"feedId"`
	Value     *big.Int `json:"value"`
	RoundID   uint64   `json:"roundId"`
	Timestamp uint64   `json:"timestamp"`
}

// OracleAmount is the payload of staked, unstaked and slashed events.
type OracleAmount struct {
	Oracle thor.Address `json:"oracle"`
	Amount *big.Int     `json:"amount"`
}

// FeedTopic is the second topic of feed events, for filtering by feed.
func FeedTopic(id FeedID) thor.Bytes32 {
	return thor.Blake2b(id.Bytes())
}

// OracleTopic is the second topic of staking events.
func OracleTopic(oracle thor.Address) thor.Bytes32 {
	return thor.BytesToBytes32(oracle.Bytes())
}

func (o *Oracle) emit(env *xenv.Environment, name string, topic thor.Bytes32, data any) error {
	return env.Call(o.addr, func() error {
		return env.Log(name, []thor.Bytes32{topic}, data)
	})
}
