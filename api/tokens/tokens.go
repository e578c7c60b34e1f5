// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tokens

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/oraclenet/api/types"
	"github.com/vechain/oraclenet/api/utils"
	"github.com/vechain/oraclenet/builtin"
	"github.com/vechain/oraclenet/builtin/token"
	"github.com/vechain/oraclenet/runtime"
	"github.com/vechain/oraclenet/thor"
	"github.com/vechain/oraclenet/xenv"
)

type Tokens struct {
	rt      *runtime.Runtime
	signers *utils.Signers
}

func New(rt *runtime.Runtime, signers *utils.Signers) *Tokens {
	return &Tokens{rt, signers}
}

// tokenOf resolves the {token} route variable to a builtin token.
func tokenOf(req *http.Request, env *xenv.Environment) (*token.Token, error) {
	addr, err := thor.ParseAddress(mux.Vars(req)["token"])
	if err != nil {
		return nil, utils.BadRequest(errors.WithMessage(err, "token"))
	}
	t, ok := builtin.TokenByAddress(addr)
	if !ok {
		return nil, utils.NotFound(errors.New("token not found"))
	}
	return t.WithState(env.State()), nil
}

func tokenInfo(t *token.Token) (*types.Token, error) {
	supply, err := t.TotalSupply()
	if err != nil {
		return nil, err
	}
	return &types.Token{Address: t.Address(), Name: t.Name(), TotalSupply: (*math.HexOrDecimal256)(supply)}, nil
}

func (t *Tokens) handleListTokens(w http.ResponseWriter, req *http.Request) error {
	return utils.Query(w, req, t.rt, func(env *xenv.Environment) (any, error) {
		var list []*types.Token
		for _, c := range builtin.Tokens() {
			info, err := tokenInfo(c.WithState(env.State()))
			if err != nil {
				return nil, err
			}
			list = append(list, info)
		}
		return list, nil
	})
}

func (t *Tokens) handleGetToken(w http.ResponseWriter, req *http.Request) error {
	return utils.Query(w, req, t.rt, func(env *xenv.Environment) (any, error) {
		tok, err := tokenOf(req, env)
		if err != nil {
			return nil, err
		}
		return tokenInfo(tok)
	})
}

func (t *Tokens) handleGetBalance(w http.ResponseWriter, req *http.Request) error {
	owner, err := thor.ParseAddress(mux.Vars(req)["owner"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "owner"))
	}
	return utils.Query(w, req, t.rt, func(env *xenv.Environment) (any, error) {
		tok, err := tokenOf(req, env)
		if err != nil {
			return nil, err
		}
		bal, err := tok.BalanceOf(owner)
		if err != nil {
			return nil, err
		}
		return &types.Balance{Token: tok.Address(), Owner: owner, Balance: (*math.HexOrDecimal256)(bal)}, nil
	})
}

func (t *Tokens) handleTransfer(w http.ResponseWriter, req *http.Request) error {
	var payload types.TransferRequest
	return utils.Call(w, req, t.rt, t.signers, &payload, func(env *xenv.Environment) (any, error) {
		tok, err := tokenOf(req, env)
		if err != nil {
			return nil, err
		}
		amount, err := types.AmountOf(payload.Amount)
		if err != nil {
			return nil, utils.BadRequest(err)
		}
		return nil, tok.Transfer(env, payload.From, payload.To, amount)
	})
}

func (t *Tokens) handleMint(w http.ResponseWriter, req *http.Request) error {
	var payload types.MintRequest
	return utils.Call(w, req, t.rt, t.signers, &payload, func(env *xenv.Environment) (any, error) {
		tok, err := tokenOf(req, env)
		if err != nil {
			return nil, err
		}
		amount, err := types.AmountOf(payload.Amount)
		if err != nil {
			return nil, utils.BadRequest(err)
		}
		if err := builtin.Oracle.WithState(env.State()).RequireAdmin(env, payload.Admin); err != nil {
			return nil, err
		}
		return nil, tok.Mint(env, payload.To, amount)
	})
}

func (t *Tokens) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("tokens_list").
		HandlerFunc(utils.WrapHandlerFunc(t.handleListTokens))
	sub.Path("/{token}").
		Methods(http.MethodGet).
		Name("tokens_get").
		HandlerFunc(utils.WrapHandlerFunc(t.handleGetToken))
	sub.Path("/{token}/balances/{owner}").
		Methods(http.MethodGet).
		Name("tokens_get_balance").
		HandlerFunc(utils.WrapHandlerFunc(t.handleGetBalance))
	sub.Path("/{token}/transfers").
		Methods(http.MethodPost).
		Name("tokens_transfer").
		HandlerFunc(utils.WrapHandlerFunc(t.handleTransfer))
	sub.Path("/{token}/mint").
		Methods(http.MethodPost).
		Name("tokens_mint").
		HandlerFunc(utils.WrapHandlerFunc(t.handleMint))
}
