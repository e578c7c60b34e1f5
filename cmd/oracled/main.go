// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"math"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/oraclenet/api"
	"github.com/vechain/oraclenet/cmd/oracled/httpserver"
	"github.com/vechain/oraclenet/health"
	"github.com/vechain/oraclenet/log"
	"github.com/vechain/oraclenet/logdb"
	"github.com/vechain/oraclenet/lvldb"
	"github.com/vechain/oraclenet/metrics"
	"github.com/vechain/oraclenet/state"
)

var (
	version   string
	gitCommit string
	gitTag    string
	logger    = log.WithContext("pkg", "oracled")

	defaultNodeFlags = []cli.Flag{
		genesisFlag,
		dataDirFlag,
		persistFlag,
		apiAddrFlag,
		apiCorsFlag,
		apiBacktraceLimitFlag,
		apiLogsLimitFlag,
		apiSlowQueriesThresholdFlag,
		apiLog5xxErrorsFlag,
		enableAPILogsFlag,
		verbosityFlag,
		jsonLogsFlag,
		pprofFlag,
		skipLogsFlag,
		cacheFlag,
		clockCheckFlag,
		ntpServerFlag,
		enableMetricsFlag,
		metricsAddrFlag,
		enableAdminFlag,
		adminAddrFlag,
	}
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func nodeName() string {
	return fmt.Sprintf("oraclenet/%s/%s-%s/%s", fullVersion(), runtime.GOOS, runtime.GOARCH, runtime.Version())
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "oracled",
		Usage:     "Node of the oracle network",
		Copyright: "2025 VeChain Foundation <https://vechain.org/>",
		Flags:     defaultNodeFlags,
		Action:    defaultAction,
		Commands: []cli.Command{
			{
				Name:   "submit",
				Usage:  "submit a report for the in-flight round of a feed",
				Flags:  []cli.Flag{nodeURLFlag, keyFlag, devOraclesFlag, feedFlag, valueFlag, timestampFlag},
				Action: submitAction,
			},
			{
				Name:   "stake",
				Usage:  "stake tokens as an oracle and print the staking account",
				Flags:  []cli.Flag{nodeURLFlag, keyFlag, amountFlag},
				Action: stakeAction,
			},
			{
				Name:   "feed",
				Usage:  "print a feed with its latest value",
				Flags:  []cli.Flag{nodeURLFlag, feedFlag, maxAgeFlag},
				Action: feedAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fatal(err)
	}
}

func defaultAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()

	defer func() { logger.Info("exited") }()

	logLevel, err := initLogger(ctx.Uint64(verbosityFlag.Name), ctx.Bool(jsonLogsFlag.Name))
	if err != nil {
		return err
	}

	// enable metrics as soon as possible
	metricsURL := ""
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
		url, closeFunc, err := httpserver.StartMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return fmt.Errorf("unable to start metrics server - %w", err)
		}
		metricsURL = url
		defer func() { logger.Info("stopping metrics server..."); closeFunc() }()
	}

	gen, isDev, err := selectGenesis(ctx)
	if err != nil {
		return err
	}

	cacheMB, err := readIntFromUInt64Flag(ctx.Uint64(cacheFlag.Name))
	if err != nil {
		return err
	}
	cacheMB = normalizeCacheSize(cacheMB)
	logger.Debug("cache size(MB)", "size", cacheMB)

	var (
		mainDB  *lvldb.LevelDB
		logDB   *logdb.LogDB
		dataDir string
	)
	if isDev && !ctx.Bool(persistFlag.Name) {
		dataDir = "Memory"
		if mainDB, err = openMemMainDB(); err != nil {
			return err
		}
		if !ctx.Bool(skipLogsFlag.Name) {
			if logDB, err = openMemLogDB(); err != nil {
				return err
			}
		}
	} else {
		if dataDir, err = makeInstanceDir(ctx, gen); err != nil {
			return err
		}
		if mainDB, err = openMainDB(cacheMB, dataDir); err != nil {
			return err
		}
		if !ctx.Bool(skipLogsFlag.Name) {
			if logDB, err = openLogDB(dataDir); err != nil {
				return err
			}
		}
	}
	defer func() { logger.Info("closing main database..."); mainDB.Close() }()
	if logDB != nil {
		defer func() { logger.Info("closing log database..."); logDB.Close() }()
	}

	if ctx.Bool(enableMetricsFlag.Name) {
		defer startDBMeter(mainDB)()
	}

	cache, err := state.NewCache(storageCacheSlots(cacheMB))
	if err != nil {
		return err
	}
	rt, err := initRuntime(gen, mainDB, cache, logDB)
	if err != nil {
		return err
	}
	h := health.New(rt)

	apiLogs := &atomic.Bool{}
	apiLogs.Store(ctx.Bool(enableAPILogsFlag.Name))

	apiHandler, apiCloser, err := api.New(rt, api.Options{
		AllowedOrigins:       ctx.String(apiCorsFlag.Name),
		BacktraceLimit:       uint32(min(ctx.Uint64(apiBacktraceLimitFlag.Name), math.MaxUint32)),
		LogsLimit:            ctx.Uint64(apiLogsLimitFlag.Name),
		PprofOn:              ctx.Bool(pprofFlag.Name),
		EnableMetrics:        ctx.Bool(enableMetricsFlag.Name),
		EnableReqLogger:      apiLogs,
		SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		Log5xxErrors:         ctx.Bool(apiLog5xxErrorsFlag.Name),
		Version:              fullVersion(),
	})
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing API..."); apiCloser() }()

	apiURL, srvCloser, err := startAPIServer(ctx.String(apiAddrFlag.Name), apiHandler)
	if err != nil {
		return err
	}
	defer func() { logger.Info("stopping API server..."); srvCloser() }()

	adminURL := ""
	if ctx.Bool(enableAdminFlag.Name) {
		url, closeFunc, err := httpserver.StartAdminServer(ctx.String(adminAddrFlag.Name), logLevel, h, apiLogs)
		if err != nil {
			return fmt.Errorf("unable to start admin server - %w", err)
		}
		adminURL = url
		defer func() { logger.Info("stopping admin server..."); closeFunc() }()
	}

	if ctx.Bool(clockCheckFlag.Name) {
		stopClockCheck := startClockCheck(ctx.String(ntpServerFlag.Name), h)
		defer stopClockCheck()
	}

	printStartupMessage(gen, rt, dataDir, apiURL, adminURL, metricsURL)
	if isDev {
		printDevAccounts(os.Stdout)
	}

	sig := <-exitSignal
	logger.Info("exit signal received", "signal", sig)
	return nil
}
