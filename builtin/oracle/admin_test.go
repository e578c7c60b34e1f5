// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/oraclenet/lvldb"
	"github.com/vechain/oraclenet/state"
	"github.com/vechain/oraclenet/test/datagen"
	"github.com/vechain/oraclenet/thor"
	"github.com/vechain/oraclenet/xenv"
)

func TestAdminGate(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	st := state.New(db, nil)
	o := New(thor.BytesToAddress([]byte("oracle")), st)
	admin := datagen.RandAddress()
	other := datagen.RandAddress()
	env := func(signers ...thor.Address) *xenv.Environment {
		return xenv.New(st, &xenv.BlockContext{Time: testNow}, &xenv.CallContext{Signers: signers})
	}
	oracles := []thor.Address{datagen.RandAddress()}

	// before initialize
	assert.EqualError(t, o.SetTokens(env(admin), admin, other, other), "not initialized")
	assert.EqualError(t, o.CreateFeed(env(admin), admin, "BTC", &FeedConfig{}, oracles), "not initialized")
	assert.EqualError(t, o.Slash(env(admin), admin, other, big.NewInt(1)), "not initialized")

	cfg, err := o.GetNetworkConfig()
	require.NoError(t, err)
	assert.False(t, cfg.Initialized())

	// initialize needs the admin's signature
	assert.EqualError(t, o.Initialize(env(other), admin), "unauthorized")
	require.NoError(t, o.Initialize(env(admin), admin))

	// repeat is a no-op, admin unchanged
	require.NoError(t, o.Initialize(env(other), other))
	cfg, err = o.GetNetworkConfig()
	require.NoError(t, err)
	assert.Equal(t, admin, cfg.Admin)

	// wrong admin, or the right admin without signature
	assert.EqualError(t, o.CreateFeed(env(other), other, "BTC", &FeedConfig{}, oracles), "unauthorized")
	assert.EqualError(t, o.CreateFeed(env(other), admin, "BTC", &FeedConfig{}, oracles), "unauthorized")
	assert.EqualError(t, o.UpdateFeedOracles(env(other), other, "BTC", oracles), "unauthorized")

	require.NoError(t, o.SetTokens(env(admin), admin, other, other))
	cfg, err = o.GetNetworkConfig()
	require.NoError(t, err)
	assert.Equal(t, other, cfg.StakingToken)
	assert.Equal(t, other, cfg.RewardToken)

	// overwrite is allowed
	stk := datagen.RandAddress()
	require.NoError(t, o.SetTokens(env(admin), admin, stk, other))
	cfg, err = o.GetNetworkConfig()
	require.NoError(t, err)
	assert.Equal(t, stk, cfg.StakingToken)
}

func TestCreateFeedValidation(t *testing.T) {
	ts := newSetup(t)
	env := ts.env(ts.admin)

	tooMany := make([]thor.Address, 17)
	for i := range tooMany {
		tooMany[i] = datagen.RandAddress()
	}

	assert.EqualError(t, ts.oracle.CreateFeed(env, ts.admin, "BTC", &FeedConfig{}, nil), "no oracles")
	assert.EqualError(t, ts.oracle.CreateFeed(env, ts.admin, "BTC", &FeedConfig{}, tooMany), "too many oracles")
	assert.EqualError(t, ts.oracle.CreateFeed(env, ts.admin, "BTC", &FeedConfig{Type: 7}, tooMany[:1]), "invalid feed type")
	assert.Error(t, ts.oracle.CreateFeed(env, ts.admin, "BTC-USD", &FeedConfig{}, tooMany[:1]))
	assert.Error(t, ts.oracle.CreateFeed(env, ts.admin, "", &FeedConfig{}, tooMany[:1]))

	require.NoError(t, ts.oracle.CreateFeed(env, ts.admin, "BTC", &FeedConfig{}, tooMany[:16]))
	assert.EqualError(t, ts.oracle.CreateFeed(env, ts.admin, "BTC", &FeedConfig{}, tooMany[:1]), "feed exists")
}

func TestSlash(t *testing.T) {
	ts := newSetup(t)
	oracle := datagen.RandAddress()
	require.NoError(t, ts.staking.Mint(nil, oracle, big.NewInt(100)))

	// nothing staked, nothing happens
	env := ts.env(ts.admin)
	require.NoError(t, ts.oracle.Slash(env, ts.admin, oracle, big.NewInt(10)))
	assert.Empty(t, env.Events())

	require.NoError(t, ts.oracle.Stake(ts.env(oracle), oracle, big.NewInt(100)))
	assert.EqualError(t, ts.oracle.Slash(ts.env(ts.admin), ts.admin, oracle, big.NewInt(0)), "amount")

	require.NoError(t, ts.oracle.Slash(ts.env(ts.admin), ts.admin, oracle, big.NewInt(30)))
	stake, err := ts.oracle.GetStake(oracle)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(70), stake)

	// floors at zero
	env = ts.env(ts.admin)
	require.NoError(t, ts.oracle.Slash(env, ts.admin, oracle, big.NewInt(1000)))
	stake, err = ts.oracle.GetStake(oracle)
	require.NoError(t, err)
	assert.Zero(t, stake.Sign())

	require.Len(t, env.Events(), 1)
	assert.JSONEq(t, `{"oracle":"`+oracle.String()+`","amount":70}`, string(env.Events()[0].Data))

	// slashed collateral stays with the network
	bal, err := ts.staking.BalanceOf(ts.oracle.Address())
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), bal)

	total, err := ts.oracle.GetTotalStake()
	require.NoError(t, err)
	assert.Zero(t, total.Sign())
}
