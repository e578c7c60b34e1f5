// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package types

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"

	"github.com/vechain/oraclenet/builtin/oracle"
	"github.com/vechain/oraclenet/builtin/oracle/feeds"
	"github.com/vechain/oraclenet/runtime"
	"github.com/vechain/oraclenet/thor"
	"github.com/vechain/oraclenet/xenv"
)

// Event is an event emitted by a call.
type Event struct {
	Address thor.Address    `json:"address"`
	Topics  []thor.Bytes32  `json:"topics"`
	Data    json.RawMessage `json:"data"`
}

// Transfer is a token movement made by a call.
type Transfer struct {
	Token     thor.Address          `json:"token"`
	Sender    thor.Address          `json:"sender"`
	Recipient thor.Address          `json:"recipient"`
	Amount    *math.HexOrDecimal256 `json:"amount"`
}

// Receipt is the response of a committed call.
type Receipt struct {
	LedgerSeq  uint32          `json:"ledgerSeq"`
	LedgerTime uint64          `json:"ledgerTime"`
	CallID     thor.Bytes32    `json:"callId"`
	Origin     thor.Address    `json:"origin"`
	StateHash  thor.Bytes32    `json:"stateHash"`
	Events     []*Event        `json:"events"`
	Transfers  []*Transfer     `json:"transfers"`
	Result     json.RawMessage `json:"result,omitempty"`
}

func convertEvent(e *xenv.Event) *Event {
	return &Event{
		Address: e.Address,
		Topics:  e.Topics,
		Data:    e.Data,
	}
}

func convertTransfer(t *xenv.Transfer) *Transfer {
	return &Transfer{
		Token:     t.Token,
		Sender:    t.Sender,
		Recipient: t.Recipient,
		Amount:    (*math.HexOrDecimal256)(t.Amount),
	}
}

// NewReceipt converts a runtime receipt. result is attached if not nil.
func NewReceipt(r *runtime.Receipt, result any) (*Receipt, error) {
	receipt := &Receipt{
		LedgerSeq:  r.LedgerSeq,
		LedgerTime: r.LedgerTime,
		CallID:     r.CallID,
		Origin:     r.Origin,
		StateHash:  r.StateHash,
		Events:     make([]*Event, 0, len(r.Events)),
		Transfers:  make([]*Transfer, 0, len(r.Transfers)),
	}
	for _, e := range r.Events {
		receipt.Events = append(receipt.Events, convertEvent(e))
	}
	for _, t := range r.Transfers {
		receipt.Transfers = append(receipt.Transfers, convertTransfer(t))
	}
	if result != nil {
		data, err := json.Marshal(result)
		if err != nil {
			return nil, errors.Wrap(err, "encode result")
		}
		receipt.Result = data
	}
	return receipt, nil
}

// Network is the network wide config.
type Network struct {
	Initialized  bool                  `json:"initialized"`
	Admin        thor.Address          `json:"admin"`
	StakingToken thor.Address          `json:"stakingToken"`
	RewardToken  thor.Address          `json:"rewardToken"`
	TotalStake   *math.HexOrDecimal256 `json:"totalStake"`
}

// InitializeRequest sets the network admin.
type InitializeRequest struct {
	Admin thor.Address `json:"admin"`
}

// TokensRequest sets the staking and reward tokens.
type TokensRequest struct {
	Admin        thor.Address `json:"admin"`
	StakingToken thor.Address `json:"stakingToken"`
	RewardToken  thor.Address `json:"rewardToken"`
}

// FeedConfig is the configuration of a feed.
type FeedConfig struct {
	Type                string   `json:"type"`
	Description         string   `json:"description"`
	Decimals            uint32   `json:"decimals"`
	HeartbeatSeconds    uint64   `json:"heartbeatSeconds"`
	DeviationBps        uint32   `json:"deviationBps"`
	MinOracles          uint32   `json:"minOracles"`
	MaxOracles          uint32   `json:"maxOracles"`
	RewardPerSubmission *big.Int `json:"rewardPerSubmission"`
}

// NewFeedConfig converts a stored feed config.
func NewFeedConfig(cfg *oracle.FeedConfig) *FeedConfig {
	return &FeedConfig{
		Type:                cfg.Type.String(),
		Description:         cfg.Description,
		Decimals:            cfg.Decimals,
		HeartbeatSeconds:    cfg.HeartbeatSeconds,
		DeviationBps:        cfg.DeviationBps,
		MinOracles:          cfg.MinOracles,
		MaxOracles:          cfg.MaxOracles,
		RewardPerSubmission: cfg.RewardPerSubmission,
	}
}

// Config converts to the stored form. Defaults are applied by the oracle.
func (c *FeedConfig) Config() (*oracle.FeedConfig, error) {
	typ, err := feeds.ParseType(c.Type)
	if err != nil {
		return nil, err
	}
	return &oracle.FeedConfig{
		Type:                typ,
		Description:         c.Description,
		Decimals:            c.Decimals,
		HeartbeatSeconds:    c.HeartbeatSeconds,
		DeviationBps:        c.DeviationBps,
		MinOracles:          c.MinOracles,
		MaxOracles:          c.MaxOracles,
		RewardPerSubmission: c.RewardPerSubmission,
	}, nil
}

// Feed is a feed with its config and oracle set.
type Feed struct {
	ID      oracle.FeedID  `json:"id"`
	Config  *FeedConfig    `json:"config"`
	Oracles []thor.Address `json:"oracles"`
}

// CreateFeedRequest creates a feed.
type CreateFeedRequest struct {
	Admin   thor.Address   `json:"admin"`
	ID      oracle.FeedID  `json:"id"`
	Config  *FeedConfig    `json:"config"`
	Oracles []thor.Address `json:"oracles"`
}

// OraclesRequest replaces the oracle set of a feed.
type OraclesRequest struct {
	Admin   thor.Address   `json:"admin"`
	Oracles []thor.Address `json:"oracles"`
}

// ReportRequest submits a value for the in-flight round of a feed.
type ReportRequest struct {
	Oracle    thor.Address `json:"oracle"`
	Value     *big.Int     `json:"value"`
	Timestamp uint64       `json:"timestamp"`
}

// FeedState is the latest finalized value of a feed.
type FeedState struct {
	Value           *big.Int `json:"value"`
	RoundID         uint64   `json:"roundId"`
	Timestamp       uint64   `json:"timestamp"`
	UpdatedAtLedger uint64   `json:"updatedAtLedger"`
}

// NewFeedState converts a stored feed state, nil stays nil.
func NewFeedState(st *oracle.FeedState) *FeedState {
	if st == nil {
		return nil
	}
	return &FeedState{
		Value:           st.LatestValue,
		RoundID:         st.LatestRoundID,
		Timestamp:       st.LatestTimestamp,
		UpdatedAtLedger: st.LatestUpdatedAtLedger,
	}
}

// Latest is a feed value read, possibly served by a fallback feed.
type Latest struct {
	FeedID oracle.FeedID `json:"feedId"`
	*FeedState
}

// Report is a report of the in-flight round.
type Report struct {
	Oracle thor.Address `json:"oracle"`
	Value  *big.Int     `json:"value"`
}

// Round is the in-flight round of a feed.
type Round struct {
	RoundID uint64    `json:"roundId"`
	Reports []*Report `json:"reports"`
}

// NewRound converts a stored round.
func NewRound(r *oracle.Round) *Round {
	round := &Round{RoundID: r.RoundID, Reports: make([]*Report, 0, len(r.Reports))}
	for _, rep := range r.Reports {
		round.Reports = append(round.Reports, &Report{Oracle: rep.Oracle, Value: rep.Value})
	}
	return round
}

// Stake is the staking account of an oracle.
type Stake struct {
	Oracle         thor.Address          `json:"oracle"`
	Stake          *math.HexOrDecimal256 `json:"stake"`
	PendingRewards *math.HexOrDecimal256 `json:"pendingRewards"`
}

// StakeRequest stakes or unstakes an amount.
type StakeRequest struct {
	Oracle thor.Address          `json:"oracle"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// ClaimRequest claims the pending rewards of an oracle.
type ClaimRequest struct {
	Oracle thor.Address `json:"oracle"`
}

// SlashRequest removes stake of a misbehaving oracle.
type SlashRequest struct {
	Admin  thor.Address          `json:"admin"`
	Oracle thor.Address          `json:"oracle"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// Amount is a single amount result.
type Amount struct {
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// Balance is the balance of an owner.
type Balance struct {
	Token   thor.Address          `json:"token"`
	Owner   thor.Address          `json:"owner"`
	Balance *math.HexOrDecimal256 `json:"balance"`
}

// TransferRequest moves tokens from the signer.
type TransferRequest struct {
	From   thor.Address          `json:"from"`
	To     thor.Address          `json:"to"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// MintRequest creates tokens, admin only.
type MintRequest struct {
	Admin  thor.Address          `json:"admin"`
	To     thor.Address          `json:"to"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// Node describes the ledger head.
type Node struct {
	Version    string `json:"version"`
	LedgerSeq  uint32 `json:"ledgerSeq"`
	LedgerTime uint64 `json:"ledgerTime"`
	Now        uint64 `json:"now"`
}

// Nonce is the last nonce accepted from a signer.
type Nonce struct {
	Signer thor.Address `json:"signer"`
	Nonce  uint64       `json:"nonce"`
}

// FeedMessage is pushed to feed subscribers on every finalized round.
type FeedMessage struct {
	FeedID     oracle.FeedID `json:"feedId"`
	Value      *big.Int      `json:"value"`
	RoundID    uint64        `json:"roundId"`
	Timestamp  uint64        `json:"timestamp"`
	LedgerSeq  uint32        `json:"ledgerSeq"`
	LedgerTime uint64        `json:"ledgerTime"`
	CallID     thor.Bytes32  `json:"callId"`
}

// AmountOf converts a required amount.
func AmountOf(a *math.HexOrDecimal256) (*big.Int, error) {
	if a == nil {
		return nil, errors.New("amount: required")
	}
	return (*big.Int)(a), nil
}

// Token is a builtin token.
type Token struct {
	Address     thor.Address          `json:"address"`
	Name        string                `json:"name"`
	TotalSupply *math.HexOrDecimal256 `json:"totalSupply"`
}
