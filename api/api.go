// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"net/http/pprof"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/oraclenet/api/events"
	"github.com/vechain/oraclenet/api/feeds"
	"github.com/vechain/oraclenet/api/middleware"
	"github.com/vechain/oraclenet/api/network"
	"github.com/vechain/oraclenet/api/node"
	"github.com/vechain/oraclenet/api/staking"
	"github.com/vechain/oraclenet/api/subscriptions"
	"github.com/vechain/oraclenet/api/tokens"
	"github.com/vechain/oraclenet/api/transfers"
	"github.com/vechain/oraclenet/api/utils"
	"github.com/vechain/oraclenet/log"
	"github.com/vechain/oraclenet/runtime"
)

var logger = log.WithContext("pkg", "api")

const defaultSignerCacheSize = 4096

type Options struct {
	AllowedOrigins       string
	BacktraceLimit       uint32
	LogsLimit            uint64
	SignerCacheSize      int
	PprofOn              bool
	EnableMetrics        bool
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
	Log5xxErrors         bool
	Version              string
}

// New return api router
func New(rt *runtime.Runtime, opts Options) (http.HandlerFunc, func(), error) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	cacheSize := opts.SignerCacheSize
	if cacheSize <= 0 {
		cacheSize = defaultSignerCacheSize
	}
	signers, err := utils.NewSigners(cacheSize)
	if err != nil {
		return nil, nil, err
	}

	router := mux.NewRouter()
	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	network.New(rt, signers).
		Mount(router, "/network")
	feeds.New(rt, signers).
		Mount(router, "/feeds")
	staking.New(rt, signers).
		Mount(router, "/staking")
	tokens.New(rt, signers).
		Mount(router, "/tokens")
	node.New(rt, opts.Version).
		Mount(router, "/node")

	closeFn := func() {}
	if logDB := rt.LogDB(); logDB != nil {
		events.New(logDB, opts.LogsLimit).
			Mount(router, "/logs/event")
		transfers.New(logDB, opts.LogsLimit).
			Mount(router, "/logs/transfer")
		subs := subscriptions.New(rt, logDB, origins, opts.BacktraceLimit)
		subs.Mount(router, "/subscriptions")
		// subscriptions handle hijacked conns, which need to be closed
		closeFn = subs.Close
	}

	if opts.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type", "x-request-id"}),
		handlers.ExposedHeaders([]string{"x-request-id", "x-oraclenet-ver"}),
	)(handler)

	enabled := opts.EnableReqLogger
	if enabled == nil {
		enabled = &atomic.Bool{}
	}
	handler = middleware.RequestLoggerMiddleware(logger, enabled, opts.SlowQueriesThreshold, opts.Log5xxErrors)(handler)
	handler = versionHandler(handler, opts.Version)

	return handler.ServeHTTP, closeFn, nil
}

func versionHandler(h http.Handler, version string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-oraclenet-ver", version)
		h.ServeHTTP(w, r)
	})
}
