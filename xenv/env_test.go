// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package xenv

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/oraclenet/builtin/reverts"
	"github.com/vechain/oraclenet/test/datagen"
	"github.com/vechain/oraclenet/thor"
)

func TestRequireAuth(t *testing.T) {
	signer := datagen.RandAddress()
	other := datagen.RandAddress()
	contract := datagen.RandAddress()

	env := New(nil, &BlockContext{Number: 1, Time: 100}, &CallContext{Origin: signer, Signers: []thor.Address{signer}})

	assert.NoError(t, env.RequireAuth(signer))
	err := env.RequireAuth(other)
	assert.True(t, reverts.IsRevertErr(err))
	assert.EqualError(t, err, "unauthorized")

	// the executing contract may act for itself
	assert.Error(t, env.RequireAuth(contract))
	require.NoError(t, env.Call(contract, func() error {
		return env.RequireAuth(contract)
	}))
	assert.True(t, env.Contract().IsZero(), "contract restored after call")

	// zero address is never authorized
	assert.Error(t, New(nil, nil, nil).RequireAuth(thor.Address{}))
}

func TestCallPropagatesError(t *testing.T) {
	env := New(nil, nil, nil)
	fail := errors.New("fail")
	assert.Equal(t, fail, env.Call(datagen.RandAddress(), func() error { return fail }))
}

func TestLogAndTransfer(t *testing.T) {
	contract := datagen.RandAddress()
	env := New(nil, nil, nil)

	topic := datagen.RandomHash()
	require.NoError(t, env.Call(contract, func() error {
		return env.Log("FeedUpdated", []thor.Bytes32{topic}, map[string]any{"round": 1})
	}))
	require.Len(t, env.Events(), 1)

	ev := env.Events()[0]
	assert.Equal(t, contract, ev.Address)
	assert.Equal(t, []thor.Bytes32{EventID("FeedUpdated"), topic}, ev.Topics)
	assert.JSONEq(t, `{"round":1}`, string(ev.Data))

	assert.Error(t, env.Log("bad", nil, make(chan int)))

	env.Transfer(&Transfer{Token: contract, Amount: big.NewInt(1)})
	assert.Len(t, env.Transfers(), 1)
}
