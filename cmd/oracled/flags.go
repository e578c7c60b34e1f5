// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/oraclenet/log"
)

var (
	genesisFlag = cli.StringFlag{
		Name:  "genesis",
		Usage: "path to a yaml genesis file (dev network if not set)",
	}
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for ledger and log databases",
	}
	persistFlag = cli.BoolFlag{
		Name:  "persist",
		Usage: "save the dev network state to disk (memory only if not set)",
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8669",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	apiBacktraceLimitFlag = cli.Uint64Flag{
		Name:  "api-backtrace-limit",
		Value: 1000,
		Usage: "limit the distance between 'pos' and the ledger head for subscriptions",
	}
	apiLogsLimitFlag = cli.Uint64Flag{
		Name:  "api-logs-limit",
		Value: 1000,
		Usage: "limit the number of logs returned by /logs API",
	}
	apiSlowQueriesThresholdFlag = cli.Uint64Flag{
		Name:  "api-slow-queries-threshold",
		Value: 0,
		Usage: "all queries with duration longer than this threshold (ms) will be logged",
	}
	apiLog5xxErrorsFlag = cli.BoolFlag{
		Name:  "api-log-5xx-errors",
		Usage: "log all requests resulting in 5xx status codes",
	}
	enableAPILogsFlag = cli.BoolFlag{
		Name:  "enable-api-logs",
		Usage: "enables API requests logging",
	}
	verbosityFlag = cli.Uint64Flag{
		Name:  "verbosity",
		Value: log.LegacyLevelInfo,
		Usage: "log verbosity (0-5)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}
	pprofFlag = cli.BoolFlag{
		Name:  "pprof",
		Usage: "turn on go-pprof",
	}
	skipLogsFlag = cli.BoolFlag{
		Name:  "skip-logs",
		Usage: "skip writing event|transfer logs (/logs and /subscriptions API will be disabled)",
	}
	cacheFlag = cli.Uint64Flag{
		Name:  "cache",
		Usage: "megabytes of ram allocated to the storage cache",
		Value: 1024,
	}
	clockCheckFlag = cli.BoolFlag{
		Name:  "clock-check",
		Usage: "compare the local clock with ntp and report the drift",
	}
	ntpServerFlag = cli.StringFlag{
		Name:   "ntp-server",
		Value:  "pool.ntp.org",
		Hidden: true,
		Usage:  "ntp server queried by --clock-check",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: "localhost:2112",
		Usage: "metrics service listening address",
	}
	enableAdminFlag = cli.BoolFlag{
		Name:  "enable-admin",
		Usage: "enables admin server",
	}
	adminAddrFlag = cli.StringFlag{
		Name:  "admin-addr",
		Value: "localhost:2113",
		Usage: "admin service listening address",
	}

	// client flags
	nodeURLFlag = cli.StringFlag{
		Name:  "node",
		Value: "http://localhost:8669",
		Usage: "API URL of the node",
	}
	keyFlag = cli.StringFlag{
		Name:  "key",
		Usage: "hex encoded private key of the signer",
	}
	devOraclesFlag = cli.BoolFlag{
		Name:  "dev-oracles",
		Usage: "submit from every dev network oracle instead of --key",
	}
	feedFlag = cli.StringFlag{
		Name:  "feed",
		Usage: "feed id",
	}
	valueFlag = cli.StringFlag{
		Name:  "value",
		Usage: "reported value, a scaled decimal or 0x prefixed hex integer",
	}
	timestampFlag = cli.Uint64Flag{
		Name:  "timestamp",
		Usage: "reported timestamp in seconds (node time if not set)",
	}
	amountFlag = cli.StringFlag{
		Name:  "amount",
		Usage: "token amount, a decimal or 0x prefixed hex integer",
	}
	maxAgeFlag = cli.Uint64Flag{
		Name:  "max-age",
		Usage: "reject values older than this (seconds, 0 for no bound)",
	}
)
