// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/vechain/oraclenet/api/utils"
	"github.com/vechain/oraclenet/health"
)

const defaultMaxClockDrift = 2 * time.Second

type API struct {
	healthStatus *health.Health
}

func NewAPI(healthStatus *health.Health) *API {
	return &API{
		healthStatus: healthStatus,
	}
}

func (h *API) handleGetHealth(w http.ResponseWriter, r *http.Request) error {
	maxClockDrift := defaultMaxClockDrift
	if query := r.URL.Query().Get("maxClockDrift"); query != "" {
		if parsed, err := time.ParseDuration(query); err == nil {
			maxClockDrift = parsed
		}
	}

	acc, err := h.healthStatus.Status(maxClockDrift)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", utils.JSONContentType)
	if !acc.Healthy {
		w.WriteHeader(http.StatusServiceUnavailable) // Set the status to 503
	} else {
		w.WriteHeader(http.StatusOK) // Set the status to 200
	}
	return utils.WriteJSON(w, acc)
}

func (h *API) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("health").
		HandlerFunc(utils.WrapHandlerFunc(h.handleGetHealth))
}
