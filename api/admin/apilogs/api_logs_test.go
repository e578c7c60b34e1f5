// Copyright (c) 2024 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package apilogs

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(enabled *atomic.Bool, method, body string) *httptest.ResponseRecorder {
	router := mux.NewRouter()
	New(enabled).Mount(router, "/admin/apilogs")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, "/admin/apilogs", strings.NewReader(body)))
	return rec
}

func decodeStatus(t *testing.T, rec *httptest.ResponseRecorder) bool {
	var status LogStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	return status.Enabled
}

func TestAPILogs(t *testing.T) {
	var enabled atomic.Bool

	rec := serve(&enabled, http.MethodGet, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decodeStatus(t, rec))

	rec = serve(&enabled, http.MethodPost, `{"enabled":true}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeStatus(t, rec))
	assert.True(t, enabled.Load())

	// repeated toggle keeps the state
	rec = serve(&enabled, http.MethodPost, `{"enabled":true}`)
	assert.True(t, decodeStatus(t, rec))

	rec = serve(&enabled, http.MethodPost, `{"enabled":false}`)
	assert.False(t, decodeStatus(t, rec))
	assert.False(t, enabled.Load())
}

func TestAPILogsBadBody(t *testing.T) {
	var enabled atomic.Bool
	enabled.Store(true)

	rec := serve(&enabled, http.MethodPost, `{"enabled":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, enabled.Load())

	rec = serve(&enabled, http.MethodPost, `{"enabled":false,"level":"debug"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, enabled.Load())
}
