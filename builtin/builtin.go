// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/vechain/oraclenet/builtin/oracle"
	"github.com/vechain/oraclenet/builtin/token"
	"github.com/vechain/oraclenet/state"
	"github.com/vechain/oraclenet/thor"
)

// Builtin contracts binding.
var (
	Oracle       = &oracleContract{newContract("Oracle")}
	StakingToken = &tokenContract{newContract("StakingToken")}
	RewardToken  = &tokenContract{newContract("RewardToken")}
)

type (
	oracleContract struct{ *contract }
	tokenContract  struct{ *contract }
)

func (o *oracleContract) WithState(state *state.State) *oracle.Oracle {
	return oracle.New(o.Address, state)
}

func (t *tokenContract) WithState(state *state.State) *token.Token {
	return token.New(t.Address, t.name, state)
}

// Tokens returns the builtin tokens.
func Tokens() []*tokenContract {
	return []*tokenContract{StakingToken, RewardToken}
}

// TokenByAddress returns the builtin token deployed at addr.
func TokenByAddress(addr thor.Address) (*tokenContract, bool) {
	for _, t := range Tokens() {
		if t.Address == addr {
			return t, true
		}
	}
	return nil, false
}
