// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package testnode

import (
	"fmt"

	"github.com/vechain/oraclenet/genesis"
	"github.com/vechain/oraclenet/logdb"
	"github.com/vechain/oraclenet/lvldb"
	"github.com/vechain/oraclenet/runtime"
)

// DefaultTime is the clock of a built node, in unix seconds.
const DefaultTime = 1_700_000_000

// NodeBuilder implements the builder pattern for creating a test node instance
type NodeBuilder struct {
	gen        *genesis.Genesis
	withoutLog bool
}

// NewNodeBuilder creates a new NodeBuilder with default configuration
func NewNodeBuilder() *NodeBuilder {
	return &NodeBuilder{}
}

// WithGenesis sets the genesis of the node, the devnet is used by default.
func (b *NodeBuilder) WithGenesis(gen *genesis.Genesis) *NodeBuilder {
	if gen == nil {
		panic("genesis cannot be nil")
	}
	b.gen = gen
	return b
}

// WithoutLogDB builds a node that keeps no logs.
func (b *NodeBuilder) WithoutLogDB() *NodeBuilder {
	b.withoutLog = true
	return b
}

// Build creates a new Node with an in-memory store and the genesis applied.
func (b *NodeBuilder) Build() (Node, error) {
	db, err := lvldb.NewMem()
	if err != nil {
		return nil, fmt.Errorf("failed to create db: %w", err)
	}
	var logDB *logdb.LogDB
	if !b.withoutLog {
		if logDB, err = logdb.NewMem(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create log db: %w", err)
		}
	}

	n := &node{db: db, logDB: logDB}
	n.clock.Store(DefaultTime)

	rt, err := runtime.New(db, nil, logDB, n.clock.Load)
	if err != nil {
		n.close()
		return nil, fmt.Errorf("failed to create runtime: %w", err)
	}
	gen := b.gen
	if gen == nil {
		gen = genesis.NewDevnet()
	}
	if _, err := gen.Build(rt); err != nil {
		n.close()
		return nil, fmt.Errorf("failed to build genesis: %w", err)
	}
	n.rt = rt
	return n, nil
}

// Convenience constructors

// NewDefaultNode creates a new devnet node
func NewDefaultNode() (Node, error) {
	return NewNodeBuilder().Build()
}

