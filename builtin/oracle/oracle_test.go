// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/oraclenet/builtin/reverts"
	"github.com/vechain/oraclenet/test/datagen"
	"github.com/vechain/oraclenet/thor"
	"github.com/vechain/oraclenet/xenv"
)

func TestQuorumOfTwo(t *testing.T) {
	ts := newSetup(t)
	oracles := ts.createFeed(t, "XLM_USD", FeedConfig{MinOracles: 2, RewardPerSubmission: big.NewInt(10)}, 2)

	st, err := ts.submit("XLM_USD", 50_0000000, ts.now, oracles[0])
	require.NoError(t, err)
	assert.Nil(t, st)

	_, ok, err := ts.oracle.GetLatest("XLM_USD")
	require.NoError(t, err)
	assert.False(t, ok, "no value before quorum")

	round, err := ts.oracle.GetRound("XLM_USD")
	require.NoError(t, err)
	require.NotNil(t, round)
	assert.Equal(t, uint64(1), round.RoundID)
	assert.Len(t, round.Reports, 1)

	env := ts.env(oracles[1])
	st, err = ts.oracle.Submit(env, "XLM_USD", big.NewInt(51_0000000), ts.now, oracles[1])
	require.NoError(t, err)
	require.NotNil(t, st)

	latest, ok, err := ts.oracle.GetLatest("XLM_USD")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(1), latest.LatestRoundID)
	assert.Equal(t, big.NewInt(51_0000000), latest.LatestValue)
	assert.Equal(t, ts.now, latest.LatestTimestamp)
	assert.Equal(t, ts.now, latest.LatestUpdatedAtLedger)

	for _, o := range oracles {
		pending, err := ts.oracle.GetPendingRewards(o)
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(10), pending)
	}

	round, err = ts.oracle.GetRound("XLM_USD")
	require.NoError(t, err)
	assert.Nil(t, round, "round removed on finalize")

	require.Len(t, env.Events(), 1)
	ev := env.Events()[0]
	assert.Equal(t, ts.oracle.Address(), ev.Address)
	assert.Equal(t, []thor.Bytes32{xenv.EventID(EventFeedUpdated), FeedTopic("XLM_USD")}, ev.Topics)
	var payload FeedUpdated
	require.NoError(t, json.Unmarshal(ev.Data, &payload))
	assert.Equal(t, FeedUpdated{"XLM_USD", big.NewInt(51_0000000), 1, ts.now}, payload)
}

func TestMedianOfThree(t *testing.T) {
	ts := newSetup(t)
	oracles := ts.createFeed(t, "TEMP", FeedConfig{Type: FeedTypeStatistic, MinOracles: 3}, 3)

	for i, v := range []int64{10, 30, 20} {
		_, err := ts.submit("TEMP", v, ts.now, oracles[i])
		require.NoError(t, err)
	}
	latest, ok, err := ts.oracle.GetLatest("TEMP")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, big.NewInt(20), latest.LatestValue)

	// zero reward credits nothing
	pending, err := ts.oracle.GetPendingRewards(oracles[0])
	require.NoError(t, err)
	assert.Zero(t, pending.Sign())
}

func TestCreateFeedNormalizes(t *testing.T) {
	ts := newSetup(t)
	env := ts.env(ts.admin)
	require.NoError(t, ts.oracle.CreateFeed(env, ts.admin, "ETH_USD", &FeedConfig{Description: "eth"}, []thor.Address{datagen.RandAddress()}))

	cfg, err := ts.oracle.GetFeedConfig("ETH_USD")
	require.NoError(t, err)
	assert.Equal(t, uint64(60), cfg.HeartbeatSeconds)
	assert.Equal(t, uint32(5000), cfg.DeviationBps)
	assert.Equal(t, uint32(1), cfg.MinOracles)
	assert.Equal(t, uint32(16), cfg.MaxOracles)
	assert.Equal(t, "eth", cfg.Description)

	require.Len(t, env.Events(), 1)
	var payload FeedCreated
	require.NoError(t, json.Unmarshal(env.Events()[0].Data, &payload))
	assert.Equal(t, FeedCreated{"ETH_USD", FeedTypePrice}, payload)

	// a fresh feed has no latest value
	_, ok, err := ts.oracle.GetLatest("ETH_USD")
	require.NoError(t, err)
	assert.False(t, ok)

	ids, err := ts.oracle.ListFeeds()
	require.NoError(t, err)
	assert.Equal(t, []FeedID{"ETH_USD"}, ids)
}

func TestUnstakeOverStake(t *testing.T) {
	ts := newSetup(t)
	oracle := datagen.RandAddress()
	require.NoError(t, ts.staking.Mint(nil, oracle, big.NewInt(1000)))

	require.NoError(t, ts.oracle.Stake(ts.env(oracle), oracle, big.NewInt(500)))
	err := ts.oracle.Unstake(ts.env(oracle), oracle, big.NewInt(600))
	assert.EqualError(t, err, "insufficient stake")

	stake, err := ts.oracle.GetStake(oracle)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(500), stake)
}

func TestGetLatestSafeBoundary(t *testing.T) {
	ts := newSetup(t)
	oracles := ts.createFeed(t, "BTC", FeedConfig{}, 1)

	reported := ts.now - 11
	_, err := ts.submit("BTC", 42, reported, oracles[0])
	require.NoError(t, err)

	_, ok, err := ts.oracle.GetLatestSafe(ts.now, "BTC", 10)
	require.NoError(t, err)
	assert.False(t, ok)

	st, ok, err := ts.oracle.GetLatestSafe(ts.now, "BTC", 11)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, big.NewInt(42), st.LatestValue)

	// a timestamp ahead of now is fresh
	_, ok, err = ts.oracle.GetLatestSafe(reported-100, "BTC", 0)
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = ts.oracle.GetLatestSafe(ts.now, "NOPE", 1000)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSubmitCheckOrder(t *testing.T) {
	ts := newSetup(t)
	oracles := ts.createFeed(t, "BTC", FeedConfig{MinOracles: 2, HeartbeatSeconds: 30}, 2)
	stranger := datagen.RandAddress()

	tests := []struct {
		name   string
		env    *xenv.Environment
		feed   FeedID
		ts     uint64
		oracle thor.Address
		err    string
		kind   reverts.Kind
	}{
		{"unsigned", ts.env(stranger), "BTC", ts.now, oracles[0], "unauthorized", reverts.KindAuthorization},
		{"unknown feed before membership", ts.env(stranger), "ETH", ts.now, stranger, "unknown feed", reverts.KindNotFound},
		{"not oracle", ts.env(stranger), "BTC", ts.now, stranger, "not oracle", reverts.KindAuthorization},
		{"skew", ts.env(oracles[0]), "BTC", ts.now + 31, oracles[0], "timestamp skew", reverts.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ts.oracle.Submit(tt.env, tt.feed, big.NewInt(1), tt.ts, tt.oracle)
			require.EqualError(t, err, tt.err)
			kind, ok := reverts.KindOf(err)
			assert.True(t, ok)
			assert.Equal(t, tt.kind, kind)
		})
	}

	// at the heartbeat bound and far in the past are both accepted
	_, err := ts.submit("BTC", 1, ts.now+30, oracles[0])
	require.NoError(t, err)
	_, err = ts.submit("BTC", 1, 0, oracles[0])
	assert.EqualError(t, err, "duplicate")
	_, err = ts.submit("BTC", 1, 0, oracles[1])
	require.NoError(t, err)
}

func TestRoundIDsAreMonotonic(t *testing.T) {
	ts := newSetup(t)
	oracles := ts.createFeed(t, "BTC", FeedConfig{MinOracles: 2}, 3)

	for round := uint64(1); round <= 5; round++ {
		r := datagen.RandIntN(3)
		first, second := oracles[r], oracles[(r+1)%3]

		_, err := ts.submit("BTC", int64(round), ts.now, first)
		require.NoError(t, err)
		inflight, err := ts.oracle.GetRound("BTC")
		require.NoError(t, err)
		assert.Equal(t, round, inflight.RoundID)

		// the same oracle may report again once a new round starts
		st, err := ts.submit("BTC", int64(round), ts.now, second)
		require.NoError(t, err)
		assert.Equal(t, round, st.LatestRoundID)
	}
}

func TestNegativeValues(t *testing.T) {
	ts := newSetup(t)
	oracles := ts.createFeed(t, "SPREAD", FeedConfig{MinOracles: 2}, 2)

	_, err := ts.submit("SPREAD", -7, ts.now, oracles[0])
	require.NoError(t, err)
	round, err := ts.oracle.GetRound("SPREAD")
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(-7), round.Reports[0].Value)

	st, err := ts.submit("SPREAD", -9, ts.now, oracles[1])
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(-7), st.LatestValue)

	latest, _, err := ts.oracle.GetLatest("SPREAD")
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(-7), latest.LatestValue)
}

func TestUpdateFeedOraclesKeepsReports(t *testing.T) {
	ts := newSetup(t)
	oracles := ts.createFeed(t, "BTC", FeedConfig{MinOracles: 2}, 2)

	_, err := ts.submit("BTC", 100, ts.now, oracles[0])
	require.NoError(t, err)

	newcomer := datagen.RandAddress()
	require.NoError(t, ts.oracle.UpdateFeedOracles(ts.env(ts.admin), ts.admin, "BTC", []thor.Address{newcomer}))

	set, err := ts.oracle.GetFeedOracles("BTC")
	require.NoError(t, err)
	assert.Equal(t, []thor.Address{newcomer}, set)

	_, err = ts.submit("BTC", 100, ts.now, oracles[1])
	assert.EqualError(t, err, "not oracle")

	// the removed oracle's report still counts
	st, err := ts.submit("BTC", 200, ts.now, newcomer)
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, big.NewInt(200), st.LatestValue)

	err = ts.oracle.UpdateFeedOracles(ts.env(ts.admin), ts.admin, "ETH", []thor.Address{newcomer})
	assert.EqualError(t, err, "unknown feed")
	err = ts.oracle.UpdateFeedOracles(ts.env(ts.admin), ts.admin, "BTC", nil)
	assert.EqualError(t, err, "no oracles")
}

func TestFallback(t *testing.T) {
	ts := newSetup(t)
	p := ts.createFeed(t, "PRIMARY", FeedConfig{}, 1)
	f := ts.createFeed(t, "BACKUP", FeedConfig{}, 1)

	_, _, ok, err := ts.oracle.GetLatestWithFallback(ts.now, "PRIMARY", "BACKUP", 10, 10)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = ts.submit("PRIMARY", 1, ts.now-100, p[0])
	require.NoError(t, err)
	_, err = ts.submit("BACKUP", 2, ts.now-5, f[0])
	require.NoError(t, err)

	st, used, ok, err := ts.oracle.GetLatestWithFallback(ts.now, "PRIMARY", "BACKUP", 10, 10)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, FeedID("BACKUP"), used)
	assert.Equal(t, big.NewInt(2), st.LatestValue)

	_, used, ok, err = ts.oracle.GetLatestWithFallback(ts.now, "PRIMARY", "BACKUP", 100, 10)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, FeedID("PRIMARY"), used)

	_, _, ok, err = ts.oracle.GetLatestWithFallback(ts.now, "PRIMARY", "BACKUP", 10, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}
