// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vechain/oraclenet/builtin/token"
	"github.com/vechain/oraclenet/lvldb"
	"github.com/vechain/oraclenet/state"
	"github.com/vechain/oraclenet/test/datagen"
	"github.com/vechain/oraclenet/thor"
	"github.com/vechain/oraclenet/xenv"
)

const testNow = uint64(1_700_000_000)

type testSetup struct {
	st      *state.State
	oracle  *Oracle
	admin   thor.Address
	staking *token.Token
	reward  *token.Token
	now     uint64
}

// newSetup returns an initialized network with tokens set and the network funded with rewards.
func newSetup(t *testing.T) *testSetup {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.New(db, nil)
	ts := &testSetup{
		st:      st,
		oracle:  New(thor.BytesToAddress([]byte("oracle")), st),
		admin:   datagen.RandAddress(),
		staking: token.New(thor.BytesToAddress([]byte("stk")), "STK", st),
		reward:  token.New(thor.BytesToAddress([]byte("rwd")), "RWD", st),
		now:     testNow,
	}
	require.NoError(t, ts.oracle.Initialize(ts.env(ts.admin), ts.admin))
	require.NoError(t, ts.oracle.SetTokens(ts.env(ts.admin), ts.admin, ts.staking.Address(), ts.reward.Address()))
	require.NoError(t, ts.reward.Mint(nil, ts.oracle.Address(), big.NewInt(1_000_000)))
	return ts
}

func (ts *testSetup) env(signers ...thor.Address) *xenv.Environment {
	var origin thor.Address
	if len(signers) > 0 {
		origin = signers[0]
	}
	return xenv.New(ts.st,
		&xenv.BlockContext{Number: 1, Time: ts.now},
		&xenv.CallContext{Origin: origin, Signers: signers},
	)
}

// createFeed creates a feed with n fresh oracles and returns them.
func (ts *testSetup) createFeed(t *testing.T, id FeedID, cfg FeedConfig, n int) []thor.Address {
	oracles := make([]thor.Address, n)
	for i := range oracles {
		oracles[i] = datagen.RandAddress()
	}
	require.NoError(t, ts.oracle.CreateFeed(ts.env(ts.admin), ts.admin, id, &cfg, oracles))
	return oracles
}

func (ts *testSetup) submit(id FeedID, value int64, reportedTS uint64, oracle thor.Address) (*FeedState, error) {
	return ts.oracle.Submit(ts.env(oracle), id, big.NewInt(value), reportedTS, oracle)
}
