// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package loglevel

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/oraclenet/api/utils"
	"github.com/vechain/oraclenet/log"
)

var logger = log.WithContext("pkg", "loglevel")

type Request struct {
	Level string `json:"level"`
}

type Response struct {
	CurrentLevel string `json:"currentLevel"`
}

// LogLevel changes the verbosity of the running node.
type LogLevel struct {
	level *slog.LevelVar
}

func New(level *slog.LevelVar) *LogLevel {
	return &LogLevel{level}
}

func (l *LogLevel) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /admin/loglevel").
		HandlerFunc(utils.WrapHandlerFunc(l.handleGetLevel))
	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /admin/loglevel").
		HandlerFunc(utils.WrapHandlerFunc(l.handleSetLevel))
}

func (l *LogLevel) current() *Response {
	return &Response{log.LevelName(l.level.Level())}
}

func (l *LogLevel) handleGetLevel(w http.ResponseWriter, _ *http.Request) error {
	return utils.WriteJSON(w, l.current())
}

func (l *LogLevel) handleSetLevel(w http.ResponseWriter, req *http.Request) error {
	var body Request
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	level, ok := log.ParseLevel(strings.ToLower(strings.TrimSpace(body.Level)))
	if !ok {
		return utils.BadRequest(errors.Errorf("unknown level %q", body.Level))
	}
	l.level.Set(level)
	logger.Info("log level changed", "level", log.LevelName(level))

	return utils.WriteJSON(w, l.current())
}
