// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/vechain/oraclenet/builtin/reverts"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"bad request", BadRequest(errors.New("x")), http.StatusBadRequest},
		{"wrapped forbidden", errors.Wrap(Forbidden(errors.New("x")), "ctx"), http.StatusForbidden},
		{"custom", HTTPError(errors.New("x"), http.StatusTeapot), http.StatusTeapot},
		{"authorization revert", reverts.New(reverts.KindAuthorization, "unauthorized"), http.StatusForbidden},
		{"not found revert", errors.WithMessage(reverts.New(reverts.KindNotFound, "unknown feed"), "submit"), http.StatusNotFound},
		{"conflict revert", reverts.New(reverts.KindConflict, "busy"), http.StatusConflict},
		{"validation revert", reverts.NewRequireError("amount"), http.StatusBadRequest},
		{"canceled", errors.Wrap(context.Canceled, "query"), http.StatusServiceUnavailable},
		{"deadline", context.DeadlineExceeded, http.StatusServiceUnavailable},
		{"internal", errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, StatusOf(tt.err))
		})
	}
}

func TestWrapHandlerFunc(t *testing.T) {
	handler := WrapHandlerFunc(func(w http.ResponseWriter, req *http.Request) error {
		switch req.URL.Path {
		case "/ok":
			return WriteJSON(w, M{"ok": true})
		case "/empty":
			return HTTPError(nil, http.StatusNoContent)
		default:
			return reverts.New(reverts.KindNotFound, "unknown feed")
		}
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, JSONContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, `{"ok":true}`, strings.TrimSpace(rec.Body.String()))

	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/empty", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown feed")
}

func TestParseJSON(t *testing.T) {
	var v struct {
		A int `json:"a"`
	}
	assert.NoError(t, ParseJSON(strings.NewReader(`{"a":1}`), &v))
	assert.Equal(t, 1, v.A)
	assert.Error(t, ParseJSON(strings.NewReader(`{"b":1}`), &v))
}
