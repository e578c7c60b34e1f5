// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/oraclenet/test/datagen"
	"github.com/vechain/oraclenet/thor"
)

func TestAddress(t *testing.T) {
	ctx := newContext(t)
	address := NewAddress(ctx, thor.Bytes32{1})

	value := datagen.RandAddress()
	address.Set(&value)

	got, err := address.Get()
	assert.NoError(t, err)
	assert.Equal(t, value, got)

	address.Set(nil)
	got, err = address.Get()
	assert.NoError(t, err)
	assert.True(t, got.IsZero())

	assert.Equal(t, thor.Address{1}, ctx.Address())
}

func TestAddress_NegativeCases(t *testing.T) {
	ctx := newContext(t)
	slot := thor.BytesToBytes32([]byte("slot"))

	// invalid rlp makes GetStorage fail
	ctx.State().SetRawStorage(ctx.Address(), slot, rlp.RawValue{0xFF})

	addr, err := NewAddress(ctx, slot).Get()
	assert.Equal(t, thor.Address{}, addr)
	assert.Error(t, err)

	_, err = NewUint256(ctx, slot).Get()
	assert.Error(t, err)
}

func TestUint256(t *testing.T) {
	ctx := newContext(t)
	u := NewUint256(ctx, thor.Bytes32{2})

	v, err := u.Get()
	require.NoError(t, err)
	assert.Zero(t, v.Sign())

	u.Set(big.NewInt(10))
	require.NoError(t, u.Add(big.NewInt(5)))

	v, err = u.Get()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(15), v)
}

func TestUint256Underflow(t *testing.T) {
	ctx := newContext(t)
	u := NewUint256(ctx, thor.Bytes32{3})
	u.Set(big.NewInt(7))

	assert.Error(t, u.Sub(big.NewInt(8)))
	v, err := u.Get()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(7), v)

	require.NoError(t, u.Sub(big.NewInt(7)))
	v, err = u.Get()
	require.NoError(t, err)
	assert.Zero(t, v.Sign())
}
