// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime_test

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/oraclenet/builtin"
	"github.com/vechain/oraclenet/logdb"
	"github.com/vechain/oraclenet/lvldb"
	"github.com/vechain/oraclenet/runtime"
	"github.com/vechain/oraclenet/state"
	"github.com/vechain/oraclenet/test/datagen"
	"github.com/vechain/oraclenet/thor"
	"github.com/vechain/oraclenet/xenv"
)

type fixture struct {
	db    *lvldb.LevelDB
	logDB *logdb.LogDB
	now   uint64
	rt    *runtime.Runtime
	admin thor.Address
}

func newFixture(t *testing.T) *fixture {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	logDB, err := logdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() {
		logDB.Close()
		db.Close()
	})
	cache, err := state.NewCache(1024)
	require.NoError(t, err)

	f := &fixture{db: db, logDB: logDB, now: 1000, admin: datagen.RandAddress()}
	f.rt, err = runtime.New(db, cache, logDB, func() uint64 { return f.now })
	require.NoError(t, err)

	_, err = f.rt.Genesis([]thor.Address{f.admin}, func(env *xenv.Environment) error {
		if err := builtin.Oracle.WithState(env.State()).Initialize(env, f.admin); err != nil {
			return err
		}
		return builtin.StakingToken.WithState(env.State()).Mint(env, f.admin, big.NewInt(1000))
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) transfer(nonce uint64, to thor.Address, amount int64) (*runtime.Receipt, error) {
	return f.rt.Execute(context.Background(), &runtime.Call{Method: "transfer", Signer: f.admin, Nonce: nonce},
		func(env *xenv.Environment) error {
			return builtin.StakingToken.WithState(env.State()).Transfer(env, f.admin, to, big.NewInt(amount))
		})
}

func (f *fixture) balance(t *testing.T, owner thor.Address) int64 {
	var bal *big.Int
	require.NoError(t, f.rt.Query(context.Background(), func(env *xenv.Environment) error {
		var err error
		bal, err = builtin.StakingToken.WithState(env.State()).BalanceOf(owner)
		return err
	}))
	return bal.Int64()
}

func TestGenesis(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, runtime.Head{Sequence: 1, Time: 1000}, f.rt.Head())
	assert.Equal(t, int64(1000), f.balance(t, f.admin))

	_, err := f.rt.Genesis(nil, func(*xenv.Environment) error { return nil })
	assert.Error(t, err)

	// genesis does not consume nonces
	nonce, err := f.rt.Nonce(f.admin)
	require.NoError(t, err)
	assert.Zero(t, nonce)
}

func TestExecuteCommits(t *testing.T) {
	f := newFixture(t)
	to := datagen.RandAddress()
	f.now = 1010

	receipt, err := f.transfer(1, to, 10)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), receipt.LedgerSeq)
	assert.Equal(t, uint64(1010), receipt.LedgerTime)
	assert.Equal(t, f.admin, receipt.Origin)
	require.Len(t, receipt.Transfers, 1)
	assert.False(t, receipt.StateHash.IsZero())

	assert.Equal(t, int64(10), f.balance(t, to))
	assert.Equal(t, runtime.Head{Sequence: 2, Time: 1010}, f.rt.Head())

	transfers, err := f.logDB.FilterTransfers(context.Background(), &logdb.TransferFilter{CallID: &receipt.CallID})
	require.NoError(t, err)
	require.Len(t, transfers, 1)
	assert.Equal(t, to, transfers[0].Recipient)
	assert.Equal(t, uint32(2), transfers[0].LedgerSeq)

	// reopen from the same store
	rt, err := runtime.New(f.db, nil, nil, func() uint64 { return 0 })
	require.NoError(t, err)
	assert.Equal(t, runtime.Head{Sequence: 2, Time: 1010}, rt.Head())
}

func TestExecuteRevertsOnError(t *testing.T) {
	f := newFixture(t)
	to := datagen.RandAddress()

	boom := errors.New("boom")
	_, err := f.rt.Execute(context.Background(), &runtime.Call{Method: "partial", Signer: f.admin, Nonce: 1},
		func(env *xenv.Environment) error {
			tok := builtin.StakingToken.WithState(env.State())
			if err := tok.Transfer(env, f.admin, to, big.NewInt(10)); err != nil {
				return err
			}
			return boom
		})
	assert.ErrorIs(t, err, boom)

	assert.Zero(t, f.balance(t, to))
	assert.Equal(t, uint32(1), f.rt.Head().Sequence)

	// a failed call does not consume the nonce
	_, err = f.transfer(1, to, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), f.balance(t, to))

	_, err = f.transfer(2, to, 5000)
	assert.EqualError(t, err, "insufficient balance")
}

func TestNonces(t *testing.T) {
	f := newFixture(t)
	to := datagen.RandAddress()

	_, err := f.transfer(0, to, 1)
	assert.EqualError(t, err, "stale nonce")

	_, err = f.transfer(5, to, 1)
	require.NoError(t, err)

	_, err = f.transfer(5, to, 1)
	assert.EqualError(t, err, "stale nonce")
	_, err = f.transfer(3, to, 1)
	assert.EqualError(t, err, "stale nonce")

	_, err = f.transfer(6, to, 1)
	require.NoError(t, err)

	nonce, err := f.rt.Nonce(f.admin)
	require.NoError(t, err)
	assert.Equal(t, uint64(6), nonce)
	assert.Equal(t, int64(2), f.balance(t, to))
}

func TestAnonymousCall(t *testing.T) {
	f := newFixture(t)

	_, err := f.rt.Execute(context.Background(), &runtime.Call{Method: "transfer"}, func(env *xenv.Environment) error {
		return builtin.StakingToken.WithState(env.State()).Transfer(env, f.admin, datagen.RandAddress(), big.NewInt(1))
	})
	assert.EqualError(t, err, "unauthorized")
}

func TestClockIsMonotonic(t *testing.T) {
	f := newFixture(t)
	f.now = 500
	assert.Equal(t, uint64(1000), f.rt.Now())

	receipt, err := f.transfer(1, datagen.RandAddress(), 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), receipt.LedgerTime)

	require.NoError(t, f.rt.Query(context.Background(), func(env *xenv.Environment) error {
		assert.Equal(t, uint64(1000), env.BlockContext().Time)
		assert.Equal(t, uint32(2), env.BlockContext().Number)
		return nil
	}))
}

func TestCanceledContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.rt.Execute(ctx, &runtime.Call{Method: "noop"}, func(*xenv.Environment) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, f.rt.Query(ctx, func(*xenv.Environment) error { return nil }), context.Canceled)
}

func TestTicker(t *testing.T) {
	f := newFixture(t)
	ticker := f.rt.NewTicker()

	_, err := f.transfer(1, datagen.RandAddress(), 1)
	require.NoError(t, err)

	select {
	case <-ticker.C():
	case <-time.After(time.Second):
		t.Fatal("ticker not signaled")
	}
}

func TestConcurrentExecute(t *testing.T) {
	f := newFixture(t)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			signer := datagen.RandAddress()
			for i := 1; i <= 5; i++ {
				_, err := f.rt.Execute(context.Background(), &runtime.Call{Method: "noop", Signer: signer, Nonce: uint64(i)},
					func(*xenv.Environment) error { return nil })
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, uint32(41), f.rt.Head().Sequence)
}
