// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/oraclenet/lvldb"
	"github.com/vechain/oraclenet/state"
	"github.com/vechain/oraclenet/test/datagen"
	"github.com/vechain/oraclenet/thor"
)

func TestAddresses(t *testing.T) {
	seen := map[thor.Address]bool{}
	for _, addr := range []thor.Address{Oracle.Address, StakingToken.Address, RewardToken.Address} {
		assert.False(t, addr.IsZero())
		assert.False(t, seen[addr])
		seen[addr] = true
	}
	assert.Equal(t, thor.BytesToAddress([]byte("Oracle")), Oracle.Address)
}

func TestWithState(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()
	st := state.New(db, nil)

	to := datagen.RandAddress()
	require.NoError(t, StakingToken.WithState(st).Mint(nil, to, big.NewInt(5)))

	bal, err := StakingToken.WithState(st).BalanceOf(to)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(5), bal)

	// tokens have separate storage
	bal, err = RewardToken.WithState(st).BalanceOf(to)
	require.NoError(t, err)
	assert.Zero(t, bal.Sign())

	assert.Equal(t, Oracle.Address, Oracle.WithState(st).Address())

	tok, ok := TokenByAddress(RewardToken.Address)
	assert.True(t, ok)
	assert.Equal(t, "RewardToken", tok.Name())
	_, ok = TokenByAddress(Oracle.Address)
	assert.False(t, ok)
}
