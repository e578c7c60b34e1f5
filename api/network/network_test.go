// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package network_test

import (
	"errors"
	"math/big"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/oraclenet/builtin"
	"github.com/vechain/oraclenet/genesis"
	"github.com/vechain/oraclenet/oracleclient/common"
	"github.com/vechain/oraclenet/oracleclient/httpclient"
	"github.com/vechain/oraclenet/test/testnode"
	"github.com/vechain/oraclenet/thor"
)

func startNode(t *testing.T, builder *testnode.NodeBuilder) *httpclient.Client {
	node, err := builder.Build()
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

func TestGetNetwork(t *testing.T) {
	c := startNode(t, testnode.NewNodeBuilder())

	network, err := c.GetNetwork()
	require.NoError(t, err)
	assert.True(t, network.Initialized)
	assert.Equal(t, genesis.DevAccounts()[0].Address, network.Admin)
	assert.Equal(t, builtin.StakingToken.Address, network.StakingToken)
	assert.Equal(t, builtin.RewardToken.Address, network.RewardToken)
	assert.Equal(t, int64(0), (*big.Int)(network.TotalStake).Int64())
}

func TestInitialize(t *testing.T) {
	accs := genesis.DevAccounts()
	gen := &genesis.Genesis{Name: "bare", Admin: accs[0].Address}
	c := startNode(t, testnode.NewNodeBuilder().WithGenesis(gen))

	network, err := c.GetNetwork()
	require.NoError(t, err)
	assert.False(t, network.Initialized)

	admin := httpclient.NewSender(c, accs[1].PrivateKey)
	other := httpclient.NewSender(c, accs[2].PrivateKey)

	_, err = admin.SetTokens(builtin.StakingToken.Address, builtin.RewardToken.Address)
	assert.Equal(t, http.StatusForbidden, statusOf(t, err), "not initialized")

	// signer must be the admin
	_, err = other.Initialize(admin.Address())
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))

	_, err = admin.Initialize(admin.Address())
	require.NoError(t, err)

	// later calls are no-ops
	_, err = other.Initialize(other.Address())
	require.NoError(t, err)

	network, err = c.GetNetwork()
	require.NoError(t, err)
	assert.True(t, network.Initialized)
	assert.Equal(t, admin.Address(), network.Admin)

	_, err = other.SetTokens(builtin.StakingToken.Address, builtin.RewardToken.Address)
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))

	_, err = admin.SetTokens(builtin.StakingToken.Address, builtin.RewardToken.Address)
	require.NoError(t, err)
	network, err = c.GetNetwork()
	require.NoError(t, err)
	assert.Equal(t, builtin.RewardToken.Address, network.RewardToken)
}

func TestNonces(t *testing.T) {
	c := startNode(t, testnode.NewNodeBuilder())
	admin := httpclient.NewSender(c, genesis.DevAccounts()[0].PrivateKey)

	nonce, err := c.GetNonce(admin.Address())
	require.NoError(t, err)
	assert.Equal(t, uint64(0), nonce)

	for range 3 {
		_, err = admin.Initialize(admin.Address())
		require.NoError(t, err)
	}
	nonce, err = c.GetNonce(admin.Address())
	require.NoError(t, err)
	assert.Equal(t, uint64(3), nonce)

	// a fresh sender picks up the nonce from the node
	again := httpclient.NewSender(c, genesis.DevAccounts()[0].PrivateKey)
	_, err = again.Initialize(admin.Address())
	require.NoError(t, err)

	_, err = c.GetNonce(thor.Address{})
	require.NoError(t, err)

	res, err := http.Get(c.URL() + "/network/nonces/0x01")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}
