// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/oraclenet/builtin/reverts"
	"github.com/vechain/oraclenet/lvldb"
	"github.com/vechain/oraclenet/state"
	"github.com/vechain/oraclenet/test/datagen"
	"github.com/vechain/oraclenet/thor"
	"github.com/vechain/oraclenet/xenv"
)

func newToken(t *testing.T) (*Token, *state.State) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	st := state.New(db, nil)
	return New(thor.BytesToAddress([]byte("tkn")), "TKN", st), st
}

func TestMint(t *testing.T) {
	tkn, st := newToken(t)
	owner := datagen.RandAddress()
	env := xenv.New(st, nil, nil)

	assert.Equal(t, "TKN", tkn.Name())
	require.NoError(t, tkn.Mint(env, owner, big.NewInt(100)))
	require.NoError(t, tkn.Mint(nil, owner, big.NewInt(50)))

	bal, err := tkn.BalanceOf(owner)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(150), bal)

	supply, err := tkn.TotalSupply()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(150), supply)

	require.Len(t, env.Transfers(), 1)
	assert.True(t, env.Transfers()[0].Sender.IsZero())

	assert.ErrorIs(t, tkn.Mint(env, owner, big.NewInt(0)), errAmount)

	huge := new(big.Int).Lsh(big.NewInt(1), 256)
	assert.ErrorIs(t, tkn.Mint(env, owner, huge), errOverflow)
	nearMax := new(big.Int).Sub(huge, big.NewInt(100))
	assert.ErrorIs(t, tkn.Mint(env, owner, nearMax), errOverflow)
}

func TestTransfer(t *testing.T) {
	tkn, st := newToken(t)
	alice := datagen.RandAddress()
	bob := datagen.RandAddress()
	require.NoError(t, tkn.Mint(nil, alice, big.NewInt(100)))

	env := xenv.New(st, nil, &xenv.CallContext{Origin: alice, Signers: []thor.Address{alice}})

	require.NoError(t, tkn.Transfer(env, alice, bob, big.NewInt(40)))
	bal, _ := tkn.BalanceOf(alice)
	assert.Equal(t, big.NewInt(60), bal)
	bal, _ = tkn.BalanceOf(bob)
	assert.Equal(t, big.NewInt(40), bal)

	require.Len(t, env.Transfers(), 1)
	tr := env.Transfers()[0]
	assert.Equal(t, alice, tr.Sender)
	assert.Equal(t, bob, tr.Recipient)
	assert.Equal(t, big.NewInt(40), tr.Amount)

	err := tkn.Transfer(env, alice, bob, big.NewInt(61))
	assert.EqualError(t, err, "insufficient balance")
	kind, _ := reverts.KindOf(err)
	assert.Equal(t, reverts.KindValidation, kind)

	// bob did not sign
	err = tkn.Transfer(env, bob, alice, big.NewInt(1))
	assert.EqualError(t, err, "unauthorized")

	assert.ErrorIs(t, tkn.Transfer(env, alice, bob, big.NewInt(-1)), errAmount)

	// zero amount and self transfers record nothing
	require.NoError(t, tkn.Transfer(env, alice, bob, big.NewInt(0)))
	require.NoError(t, tkn.Transfer(env, alice, alice, big.NewInt(10)))
	assert.Len(t, env.Transfers(), 1)

	// drained balances are cleared
	require.NoError(t, tkn.Transfer(env, alice, bob, big.NewInt(60)))
	raw, err := st.GetRawStorage(tkn.Address(), thor.Blake2b(alice.Bytes(), slotBalances.Bytes()))
	require.NoError(t, err)
	assert.Empty(t, raw)

	supply, _ := tkn.TotalSupply()
	assert.Equal(t, big.NewInt(100), supply)
}

func TestTransferByContract(t *testing.T) {
	tkn, st := newToken(t)
	network := datagen.RandAddress()
	oracle := datagen.RandAddress()
	require.NoError(t, tkn.Mint(nil, network, big.NewInt(10)))

	env := xenv.New(st, nil, &xenv.CallContext{Origin: oracle, Signers: []thor.Address{oracle}})
	assert.Error(t, tkn.Transfer(env, network, oracle, big.NewInt(5)))

	require.NoError(t, env.Call(network, func() error {
		return tkn.Transfer(env, network, oracle, big.NewInt(5))
	}))
	bal, _ := tkn.BalanceOf(oracle)
	assert.Equal(t, big.NewInt(5), bal)
}
