// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events_test

import (
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/oraclenet/api/types"
	"github.com/vechain/oraclenet/builtin"
	"github.com/vechain/oraclenet/builtin/oracle"
	"github.com/vechain/oraclenet/genesis"
	"github.com/vechain/oraclenet/logdb"
	"github.com/vechain/oraclenet/oracleclient/common"
	"github.com/vechain/oraclenet/oracleclient/httpclient"
	"github.com/vechain/oraclenet/test/testnode"
	"github.com/vechain/oraclenet/xenv"
)

func startNode(t *testing.T) *httpclient.Client {
	node, err := testnode.NewDefaultNode()
	require.NoError(t, err)
	require.NoError(t, node.Start())
	t.Cleanup(func() { node.Stop() })
	return httpclient.New(node.APIServer().URL)
}

func statusOf(t *testing.T, err error) int {
	var statusErr *common.StatusError
	require.True(t, errors.As(err, &statusErr), "unexpected error %v", err)
	return statusErr.StatusCode
}

func ptr[T any](v T) *T { return &v }

func TestFilterGenesisEvents(t *testing.T) {
	c := startNode(t)

	created := xenv.EventID(oracle.EventFeedCreated)
	events, err := c.FilterEvents(&types.EventFilter{
		CriteriaSet: []*types.EventCriteria{{Address: &builtin.Oracle.Address, Topic0: &created}},
		Options:     &types.Options{Limit: 10},
	})
	require.NoError(t, err)
	require.Len(t, events, 2)

	var data oracle.FeedCreated
	require.NoError(t, json.Unmarshal(events[0].Data, &data))
	assert.Equal(t, oracle.FeedID("BTC_USD"), data.FeedID)
	assert.Equal(t, uint32(1), events[0].Meta.LedgerSeq)
	assert.Equal(t, genesis.DevAccounts()[0].Address, events[0].Meta.Origin)

	// by feed topic
	eth := oracle.FeedTopic("ETH_USD")
	events, err = c.FilterEvents(&types.EventFilter{
		CriteriaSet: []*types.EventCriteria{{Topic1: &eth}},
		Options:     &types.Options{Limit: 10},
	})
	require.NoError(t, err)
	require.Len(t, events, 1)

	events, err = c.FilterEvents(&types.EventFilter{
		CriteriaSet: []*types.EventCriteria{{Topic0: &created}},
		Options:     &types.Options{Limit: 10},
		Order:       logdb.DESC,
	})
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.NoError(t, json.Unmarshal(events[0].Data, &data))
	assert.Equal(t, oracle.FeedID("ETH_USD"), data.FeedID)
}

func TestFilterByRange(t *testing.T) {
	c := startNode(t)
	accs := genesis.DevAccounts()
	for _, acc := range accs[1:3] {
		_, _, err := httpclient.NewSender(c, acc.PrivateKey).SubmitReport("BTC_USD", big.NewInt(7), testnode.DefaultTime)
		require.NoError(t, err)
	}

	events, err := c.FilterEvents(&types.EventFilter{
		Range:   &types.Range{From: ptr[uint64](2)},
		Options: &types.Options{Limit: 10},
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, uint32(3), events[0].Meta.LedgerSeq)
	assert.Equal(t, xenv.EventID(oracle.EventFeedUpdated), *events[0].Topics[0])

	events, err = c.FilterEvents(&types.EventFilter{
		Range:   &types.Range{Unit: logdb.Time, From: ptr[uint64](0), To: ptr[uint64](testnode.DefaultTime)},
		Options: &types.Options{Limit: 10},
	})
	require.NoError(t, err)
	assert.Len(t, events, 3)
}

func TestFilterLimits(t *testing.T) {
	c := startNode(t)

	_, err := c.FilterEvents(&types.EventFilter{Options: &types.Options{Limit: 1000}})
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))

	_, err = c.FilterEvents(&types.EventFilter{Options: &types.Options{Limit: 10, Offset: 1 << 63}})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	_, err = c.FilterEvents(&types.EventFilter{
		Range:   &types.Range{From: ptr[uint64](5), To: ptr[uint64](4)},
		Options: &types.Options{Limit: 10},
	})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	_, err = c.FilterEvents(&types.EventFilter{
		Range:   &types.Range{Unit: "block"},
		Options: &types.Options{Limit: 10},
	})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	// no options, default limit applies
	events, err := c.FilterEvents(&types.EventFilter{})
	require.NoError(t, err)
	assert.Len(t, events, 2)

	events, err = c.FilterEvents(&types.EventFilter{Options: &types.Options{Offset: 1, Limit: 10}})
	require.NoError(t, err)
	assert.Len(t, events, 1)
}
