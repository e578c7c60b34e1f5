// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package testnode

import (
	"errors"
	"net/http/httptest"
	"sync/atomic"

	"github.com/vechain/oraclenet/api"
	"github.com/vechain/oraclenet/logdb"
	"github.com/vechain/oraclenet/lvldb"
	"github.com/vechain/oraclenet/runtime"
)

// Node represents a runtime served by an API server
type Node interface {
	// Runtime returns the underlying runtime
	Runtime() *runtime.Runtime

	// LogDB returns the log db, nil if built without it
	LogDB() *logdb.LogDB

	// SetTime moves the node clock, in unix seconds
	SetTime(now uint64)

	// Start starts the API server
	Start() error

	// Stop stops the API server and closes the stores
	Stop() error

	// APIServer returns the node api server
	APIServer() *httptest.Server
}

type node struct {
	db              *lvldb.LevelDB
	logDB           *logdb.LogDB
	rt              *runtime.Runtime
	clock           atomic.Uint64
	apiServer       *httptest.Server
	apiServerCloser func()
}

func (n *node) Start() error {
	if n.rt == nil {
		return errors.New("runtime is not initialized")
	}
	if n.apiServer != nil {
		return errors.New("node is already running")
	}

	handler, closer, err := api.New(n.rt, api.Options{
		AllowedOrigins:  "*",
		BacktraceLimit:  100,
		LogsLimit:       100,
		SignerCacheSize: 128,
		EnableMetrics:   true,
		Version:         "test",
	})
	if err != nil {
		return err
	}
	n.apiServer = httptest.NewServer(handler)
	n.apiServerCloser = closer
	return nil
}

func (n *node) Stop() error {
	if n.apiServer == nil {
		return errors.New("node is not running")
	}
	// close the subscriptions before the server waits for hijacked conns
	n.apiServerCloser()
	n.apiServer.Close()
	n.apiServer = nil
	n.close()
	return nil
}

func (n *node) close() {
	if n.logDB != nil {
		n.logDB.Close()
	}
	n.db.Close()
}

func (n *node) Runtime() *runtime.Runtime {
	return n.rt
}

func (n *node) LogDB() *logdb.LogDB {
	return n.logDB
}

func (n *node) SetTime(now uint64) {
	n.clock.Store(now)
}

func (n *node) APIServer() *httptest.Server {
	return n.apiServer
}
