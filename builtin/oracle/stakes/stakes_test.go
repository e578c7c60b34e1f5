// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/oraclenet/builtin/solidity"
	"github.com/vechain/oraclenet/lvldb"
	"github.com/vechain/oraclenet/state"
	"github.com/vechain/oraclenet/test/datagen"
	"github.com/vechain/oraclenet/thor"
)

func newService(t *testing.T) *Service {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(solidity.NewContext(thor.Address{1}, state.New(db, nil)))
}

func TestStakes(t *testing.T) {
	svc := newService(t)
	a, b := datagen.RandAddress(), datagen.RandAddress()

	stake, err := svc.Stake(a)
	require.NoError(t, err)
	assert.Zero(t, stake.Sign())

	require.NoError(t, svc.AddStake(a, big.NewInt(100)))
	require.NoError(t, svc.AddStake(b, big.NewInt(50)))
	require.NoError(t, svc.AddStake(a, big.NewInt(5)))

	stake, _ = svc.Stake(a)
	assert.Equal(t, big.NewInt(105), stake)
	total, err := svc.TotalStake()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(155), total)

	require.NoError(t, svc.SubStake(a, big.NewInt(105)))
	stake, _ = svc.Stake(a)
	assert.Zero(t, stake.Sign())
	total, _ = svc.TotalStake()
	assert.Equal(t, big.NewInt(50), total)
}

func TestPendingRewards(t *testing.T) {
	svc := newService(t)
	a := datagen.RandAddress()

	require.NoError(t, svc.AddPendingRewards(a, big.NewInt(7)))
	require.NoError(t, svc.AddPendingRewards(a, big.NewInt(3)))
	pending, err := svc.PendingRewards(a)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(10), pending)

	svc.ClearPendingRewards(a)
	pending, err = svc.PendingRewards(a)
	require.NoError(t, err)
	assert.Zero(t, pending.Sign())

	// rewards do not count as stake
	total, _ := svc.TotalStake()
	assert.Zero(t, total.Sign())
}
