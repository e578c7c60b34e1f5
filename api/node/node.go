// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vechain/oraclenet/api/types"
	"github.com/vechain/oraclenet/api/utils"
	"github.com/vechain/oraclenet/runtime"
)

type Node struct {
	rt      *runtime.Runtime
	version string
}

func New(rt *runtime.Runtime, version string) *Node {
	return &Node{
		rt,
		version,
	}
}

func (n *Node) handleNodeInfo(w http.ResponseWriter, req *http.Request) error {
	head := n.rt.Head()
	return utils.WriteJSON(w, &types.Node{
		Version:    n.version,
		LedgerSeq:  head.Sequence,
		LedgerTime: head.Time,
		Now:        n.rt.Now(),
	})
}

func (n *Node) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("node_get_info").
		HandlerFunc(utils.WrapHandlerFunc(n.handleNodeInfo))
}
