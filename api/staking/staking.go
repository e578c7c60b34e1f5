// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/oraclenet/api/types"
	"github.com/vechain/oraclenet/api/utils"
	"github.com/vechain/oraclenet/builtin"
	"github.com/vechain/oraclenet/runtime"
	"github.com/vechain/oraclenet/thor"
	"github.com/vechain/oraclenet/xenv"
)

type Staking struct {
	rt      *runtime.Runtime
	signers *utils.Signers
}

func New(rt *runtime.Runtime, signers *utils.Signers) *Staking {
	return &Staking{rt, signers}
}

func (s *Staking) handleGetStake(w http.ResponseWriter, req *http.Request) error {
	addr, err := thor.ParseAddress(mux.Vars(req)["oracle"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "oracle"))
	}
	return utils.Query(w, req, s.rt, func(env *xenv.Environment) (any, error) {
		o := builtin.Oracle.WithState(env.State())
		stake, err := o.GetStake(addr)
		if err != nil {
			return nil, err
		}
		pending, err := o.GetPendingRewards(addr)
		if err != nil {
			return nil, err
		}
		return &types.Stake{
			Oracle:         addr,
			Stake:          (*math.HexOrDecimal256)(stake),
			PendingRewards: (*math.HexOrDecimal256)(pending),
		}, nil
	})
}

func (s *Staking) handleStake(w http.ResponseWriter, req *http.Request) error {
	var payload types.StakeRequest
	return utils.Call(w, req, s.rt, s.signers, &payload, func(env *xenv.Environment) (any, error) {
		amount, err := types.AmountOf(payload.Amount)
		if err != nil {
			return nil, utils.BadRequest(err)
		}
		return nil, builtin.Oracle.WithState(env.State()).Stake(env, payload.Oracle, amount)
	})
}

func (s *Staking) handleUnstake(w http.ResponseWriter, req *http.Request) error {
	var payload types.StakeRequest
	return utils.Call(w, req, s.rt, s.signers, &payload, func(env *xenv.Environment) (any, error) {
		amount, err := types.AmountOf(payload.Amount)
		if err != nil {
			return nil, utils.BadRequest(err)
		}
		return nil, builtin.Oracle.WithState(env.State()).Unstake(env, payload.Oracle, amount)
	})
}

func (s *Staking) handleClaim(w http.ResponseWriter, req *http.Request) error {
	var payload types.ClaimRequest
	return utils.Call(w, req, s.rt, s.signers, &payload, func(env *xenv.Environment) (any, error) {
		amount, err := builtin.Oracle.WithState(env.State()).ClaimRewards(env, payload.Oracle)
		if err != nil {
			return nil, err
		}
		return &types.Amount{Amount: (*math.HexOrDecimal256)(amount)}, nil
	})
}

func (s *Staking) handleSlash(w http.ResponseWriter, req *http.Request) error {
	var payload types.SlashRequest
	return utils.Call(w, req, s.rt, s.signers, &payload, func(env *xenv.Environment) (any, error) {
		amount, err := types.AmountOf(payload.Amount)
		if err != nil {
			return nil, utils.BadRequest(err)
		}
		return nil, builtin.Oracle.WithState(env.State()).Slash(env, payload.Admin, payload.Oracle, amount)
	})
}

func (s *Staking) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/stake").
		Methods(http.MethodPost).
		Name("staking_stake").
		HandlerFunc(utils.WrapHandlerFunc(s.handleStake))
	sub.Path("/unstake").
		Methods(http.MethodPost).
		Name("staking_unstake").
		HandlerFunc(utils.WrapHandlerFunc(s.handleUnstake))
	sub.Path("/claim").
		Methods(http.MethodPost).
		Name("staking_claim").
		HandlerFunc(utils.WrapHandlerFunc(s.handleClaim))
	sub.Path("/slash").
		Methods(http.MethodPost).
		Name("staking_slash").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSlash))
	sub.Path("/{oracle}").
		Methods(http.MethodGet).
		Name("staking_get_stake").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetStake))
}
