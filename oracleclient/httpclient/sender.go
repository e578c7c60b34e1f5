// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package httpclient

import (
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"sync"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/vechain/oraclenet/api/types"
	"github.com/vechain/oraclenet/builtin/oracle"
	"github.com/vechain/oraclenet/oracleclient/common"
	"github.com/vechain/oraclenet/thor"
)

// Sender signs mutating requests with a private key.
// Nonces are fetched from the node once, then tracked locally.
type Sender struct {
	*Client
	key  *ecdsa.PrivateKey
	addr thor.Address

	lock  sync.Mutex
	nonce *uint64
}

// NewSender creates a Sender over c signing with key.
func NewSender(c *Client, key *ecdsa.PrivateKey) *Sender {
	return &Sender{
		Client: c,
		key:    key,
		addr:   thor.Address(crypto.PubkeyToAddress(key.PublicKey)),
	}
}

// Address returns the signer address.
func (s *Sender) Address() thor.Address {
	return s.addr
}

// ResetNonce drops the tracked nonce, the next call refetches it.
func (s *Sender) ResetNonce() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.nonce = nil
}

// Call signs payload and sends it to path. out receives the receipt result, it may be nil.
func (s *Sender) Call(method, path string, payload, out any) (*types.Receipt, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.nonce == nil {
		nonce, err := s.GetNonce(s.addr)
		if err != nil {
			return nil, err
		}
		s.nonce = &nonce
	}
	next := *s.nonce + 1

	env, err := types.NewEnvelope(s.key, method, s.url2path(path), next, payload)
	if err != nil {
		return nil, err
	}
	var receipt types.Receipt
	if err := s.send(method, path, env, &receipt); err != nil {
		var statusErr *common.StatusError
		if errors.As(err, &statusErr) {
			// rejected calls do not consume the nonce
			return nil, err
		}
		// the call may have been committed
		s.nonce = nil
		return nil, err
	}
	s.nonce = &next

	if out != nil && len(receipt.Result) > 0 {
		if err := json.Unmarshal(receipt.Result, out); err != nil {
			return nil, fmt.Errorf("unable to decode result - %w", err)
		}
	}
	return &receipt, nil
}

// url2path returns the path as seen by the node, including any base path of the client url.
func (s *Sender) url2path(path string) string {
	u, err := url.Parse(s.url)
	if err != nil {
		return path
	}
	return u.Path + path
}

func amount(v *big.Int) *math.HexOrDecimal256 {
	return (*math.HexOrDecimal256)(v)
}

// Initialize sets admin as the network admin.
func (s *Sender) Initialize(admin thor.Address) (*types.Receipt, error) {
	return s.Call(http.MethodPost, "/network/initialize", &types.InitializeRequest{Admin: admin}, nil)
}

// SetTokens sets the staking and reward tokens.
func (s *Sender) SetTokens(stakingToken, rewardToken thor.Address) (*types.Receipt, error) {
	return s.Call(http.MethodPost, "/network/tokens", &types.TokensRequest{
		Admin:        s.addr,
		StakingToken: stakingToken,
		RewardToken:  rewardToken,
	}, nil)
}

// CreateFeed creates a feed.
func (s *Sender) CreateFeed(id oracle.FeedID, cfg *types.FeedConfig, oracles []thor.Address) (*types.Receipt, error) {
	return s.Call(http.MethodPost, "/feeds", &types.CreateFeedRequest{
		Admin:   s.addr,
		ID:      id,
		Config:  cfg,
		Oracles: oracles,
	}, nil)
}

// UpdateOracles replaces the oracle set of a feed.
func (s *Sender) UpdateOracles(id oracle.FeedID, oracles []thor.Address) (*types.Receipt, error) {
	return s.Call(http.MethodPut, "/feeds/"+url.PathEscape(string(id))+"/oracles", &types.OraclesRequest{
		Admin:   s.addr,
		Oracles: oracles,
	}, nil)
}

// SubmitReport reports value for the in-flight round of a feed.
// The returned state is nil unless the report finalized the round.
func (s *Sender) SubmitReport(id oracle.FeedID, value *big.Int, timestamp uint64) (*types.FeedState, *types.Receipt, error) {
	var st *types.FeedState
	receipt, err := s.Call(http.MethodPost, "/feeds/"+url.PathEscape(string(id))+"/reports", &types.ReportRequest{
		Oracle:    s.addr,
		Value:     value,
		Timestamp: timestamp,
	}, &st)
	if err != nil {
		return nil, nil, err
	}
	return st, receipt, nil
}

// Stake locks staking tokens.
func (s *Sender) Stake(v *big.Int) (*types.Receipt, error) {
	return s.Call(http.MethodPost, "/staking/stake", &types.StakeRequest{Oracle: s.addr, Amount: amount(v)}, nil)
}

// Unstake releases staking tokens.
func (s *Sender) Unstake(v *big.Int) (*types.Receipt, error) {
	return s.Call(http.MethodPost, "/staking/unstake", &types.StakeRequest{Oracle: s.addr, Amount: amount(v)}, nil)
}

// ClaimRewards pays out the pending rewards and returns the claimed amount.
func (s *Sender) ClaimRewards() (*big.Int, *types.Receipt, error) {
	var claimed types.Amount
	receipt, err := s.Call(http.MethodPost, "/staking/claim", &types.ClaimRequest{Oracle: s.addr}, &claimed)
	if err != nil {
		return nil, nil, err
	}
	if claimed.Amount == nil {
		return new(big.Int), receipt, nil
	}
	return (*big.Int)(claimed.Amount), receipt, nil
}

// Slash removes stake of oracle.
func (s *Sender) Slash(oracle thor.Address, v *big.Int) (*types.Receipt, error) {
	return s.Call(http.MethodPost, "/staking/slash", &types.SlashRequest{
		Admin:  s.addr,
		Oracle: oracle,
		Amount: amount(v),
	}, nil)
}

// Transfer moves tokens from the signer to to.
func (s *Sender) Transfer(token, to thor.Address, v *big.Int) (*types.Receipt, error) {
	return s.Call(http.MethodPost, "/tokens/"+token.String()+"/transfers", &types.TransferRequest{
		From:   s.addr,
		To:     to,
		Amount: amount(v),
	}, nil)
}

// Mint creates tokens for to.
func (s *Sender) Mint(token, to thor.Address, v *big.Int) (*types.Receipt, error) {
	return s.Call(http.MethodPost, "/tokens/"+token.String()+"/mint", &types.MintRequest{
		Admin:  s.addr,
		To:     to,
		Amount: amount(v),
	}, nil)
}
