// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions_test

import (
	"math/big"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/oraclenet/builtin"
	"github.com/vechain/oraclenet/builtin/oracle"
	"github.com/vechain/oraclenet/genesis"
	"github.com/vechain/oraclenet/oracleclient/common"
	"github.com/vechain/oraclenet/oracleclient/httpclient"
	"github.com/vechain/oraclenet/oracleclient/wsclient"
	"github.com/vechain/oraclenet/test/testnode"
	"github.com/vechain/oraclenet/thor"
	"github.com/vechain/oraclenet/xenv"
)

func startNode(t *testing.T) (testnode.Node, *httpclient.Client, *wsclient.Client) {
	node, err := testnode.NewDefaultNode()
	require.NoError(t, err)
	require.NoError(t, node.Start())
	t.Cleanup(func() { node.Stop() })

	ws, err := wsclient.NewClient(node.APIServer().URL)
	require.NoError(t, err)
	return node, httpclient.New(node.APIServer().URL), ws
}

func finalize(t *testing.T, c *httpclient.Client, id oracle.FeedID, values ...int64) {
	accs := genesis.DevAccounts()
	for i, v := range values {
		_, _, err := httpclient.NewSender(c, accs[i+1].PrivateKey).SubmitReport(id, big.NewInt(v), testnode.DefaultTime)
		require.NoError(t, err)
	}
}

func next[T any](t *testing.T, ch <-chan common.EventWrapper[T]) T {
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "subscription closed")
		require.NoError(t, ev.Error)
		return ev.Data
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
	}
	var zero T
	return zero
}

func TestSubscribeFeed(t *testing.T) {
	_, c, ws := startNode(t)

	sub, err := ws.SubscribeFeed("BTC_USD", nil)
	require.NoError(t, err)
	defer sub.Unsubscribe()

	// other feeds are not delivered
	finalize(t, c, "ETH_USD", 1, 2)
	finalize(t, c, "BTC_USD", 10, 20)

	msg := next(t, sub.EventChan)
	assert.Equal(t, oracle.FeedID("BTC_USD"), msg.FeedID)
	assert.Equal(t, int64(20), msg.Value.Int64())
	assert.Equal(t, uint64(1), msg.RoundID)
	assert.Equal(t, uint32(5), msg.LedgerSeq)

	finalize(t, c, "BTC_USD", 30, 40)
	msg = next(t, sub.EventChan)
	assert.Equal(t, uint64(2), msg.RoundID)
}

func TestSubscribeFeedReplay(t *testing.T) {
	_, c, ws := startNode(t)

	finalize(t, c, "BTC_USD", 10, 20)
	finalize(t, c, "BTC_USD", 30, 40)

	pos := uint32(1)
	sub, err := ws.SubscribeFeed("BTC_USD", &pos)
	require.NoError(t, err)
	defer sub.Unsubscribe()

	assert.Equal(t, uint64(1), next(t, sub.EventChan).RoundID)
	assert.Equal(t, uint64(2), next(t, sub.EventChan).RoundID)
}

func TestSubscribeEvents(t *testing.T) {
	_, c, ws := startNode(t)

	staked := xenv.EventID(oracle.EventOracleStaked)
	sub, err := ws.SubscribeEvents(&wsclient.EventQuery{
		Address: &builtin.Oracle.Address,
		Topics:  [4]*thor.Bytes32{&staked},
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	sender := httpclient.NewSender(c, genesis.DevAccounts()[1].PrivateKey)
	_, err = sender.Stake(big.NewInt(3))
	require.NoError(t, err)

	ev := next(t, sub.EventChan)
	assert.Equal(t, builtin.Oracle.Address, ev.Address)
	assert.Equal(t, oracle.OracleTopic(sender.Address()), *ev.Topics[1])
	assert.Equal(t, sender.Address(), ev.Meta.Origin)
}

func TestBadPosition(t *testing.T) {
	node, _, _ := startNode(t)
	url := node.APIServer().URL

	tests := []struct {
		path   string
		status int
	}{
		{"/subscriptions/feeds/BTC_USD?pos=100", http.StatusBadRequest},
		{"/subscriptions/feeds/BTC_USD?pos=abc", http.StatusBadRequest},
		{"/subscriptions/feeds/BTC-USD", http.StatusBadRequest},
		{"/subscriptions/event?addr=0x01", http.StatusBadRequest},
		{"/subscriptions/event?t0=0x01", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			res, err := http.Get(url + tt.path)
			require.NoError(t, err)
			res.Body.Close()
			assert.Equal(t, tt.status, res.StatusCode)
		})
	}
}
