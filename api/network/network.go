// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package network

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

type Network struct {
	rt      *runtime.Runtime
	signers *utils.Signers
}

func New(rt *runtime.Runtime, signers *utils.Signers) *Network {
	return &Network{rt, signers}
}

func (n *Network) handleGetNetwork(w http.ResponseWriter, req *http.Request) error {
	return utils.Query(w, req, n.rt, func(env *xenv.Environment) (any, error) {
		o := builtin.Oracle.WithState(env.State())
		cfg, err := o.GetNetworkConfig()
		if err != nil {
			return nil, err
		}
		total, err := o.GetTotalStake()
		if err != nil {
			return nil, err
		}
		return &types.Network{
			Initialized:  cfg.Initialized(),
			Admin:        cfg.Admin,
			StakingToken: cfg.StakingToken,
			RewardToken:  cfg.RewardToken,
			TotalStake:   (*math.HexOrDecimal256)(total),
		}, nil
	})
}

func (n *Network) handleInitialize(w http.ResponseWriter, req *http.Request) error {
	var payload types.InitializeRequest
	return utils.Call(w, req, n.rt, n.signers, &payload, func(env *xenv.Environment) (any, error) {
		return nil, builtin.Oracle.WithState(env.State()).Initialize(env, payload.Admin)
	})
}

func (n *Network) handleSetTokens(w http.ResponseWriter, req *http.Request) error {
	var payload types.TokensRequest
	return utils.Call(w, req, n.rt, n.signers, &payload, func(env *xenv.Environment) (any, error) {
		return nil, builtin.Oracle.WithState(env.State()).SetTokens(env, payload.Admin, payload.StakingToken, payload.RewardToken)
	})
}

func (n *Network) handleGetNonce(w http.ResponseWriter, req *http.Request) error {
	signer, err := thor.ParseAddress(mux.Vars(req)["signer"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "signer"))
	}
	nonce, err := n.rt.Nonce(signer)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &types.Nonce{Signer: signer, Nonce: nonce})
}

func (n *Network) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("network_get").
		HandlerFunc(utils.WrapHandlerFunc(n.handleGetNetwork))
	sub.Path("/initialize").
		Methods(http.MethodPost).
		Name("network_initialize").
		HandlerFunc(utils.WrapHandlerFunc(n.handleInitialize))
	sub.Path("/tokens").
		Methods(http.MethodPost).
		Name("network_set_tokens").
		HandlerFunc(utils.WrapHandlerFunc(n.handleSetTokens))
	sub.Path("/nonces/{signer}").
		Methods(http.MethodGet).
		Name("network_get_nonce").
		HandlerFunc(utils.WrapHandlerFunc(n.handleGetNonce))
}
