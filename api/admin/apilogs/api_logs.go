// Copyright (c) 2024 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package apilogs

import (
	"net/http"
	"sync/atomic"

	"github.com/gorilla/mux"

	"github.com/vechain/oraclenet/api/utils"
	"github.com/vechain/oraclenet/log"
)

var logger = log.WithContext("pkg", "apilogs")

// LogStatus reports whether the API request logger is on.
type LogStatus struct {
	Enabled bool `json:"enabled"`
}

// APILogs switches the request logger of the public API at runtime.
type APILogs struct {
	enabled *atomic.Bool
}

func New(enabled *atomic.Bool) *APILogs {
	return &APILogs{enabled}
}

func (a *APILogs) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /admin/apilogs").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetStatus))
	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /admin/apilogs").
		HandlerFunc(utils.WrapHandlerFunc(a.handleSetStatus))
}

func (a *APILogs) handleGetStatus(w http.ResponseWriter, _ *http.Request) error {
	return utils.WriteJSON(w, &LogStatus{a.enabled.Load()})
}

func (a *APILogs) handleSetStatus(w http.ResponseWriter, req *http.Request) error {
	var status LogStatus
	if err := utils.ParseJSON(req.Body, &status); err != nil {
		return utils.BadRequest(err)
	}
	if prev := a.enabled.Swap(status.Enabled); prev != status.Enabled {
		logger.Info("api logs toggled", "enabled", status.Enabled)
	}
	return utils.WriteJSON(w, &status)
}
