// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/beevik/ntp"
	"github.com/elastic/gosigar"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/fdlimit"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/oraclenet/co"
	"github.com/vechain/oraclenet/genesis"
	"github.com/vechain/oraclenet/health"
	"github.com/vechain/oraclenet/log"
	"github.com/vechain/oraclenet/logdb"
	"github.com/vechain/oraclenet/lvldb"
	"github.com/vechain/oraclenet/runtime"
	"github.com/vechain/oraclenet/state"
	"github.com/vechain/oraclenet/thor"
)

const (
	clockCheckInterval = 10 * time.Minute
	dbMeterInterval    = 15 * time.Second
)

func initLogger(lvl uint64, jsonLogs bool) (*slog.LevelVar, error) {
	if lvl > log.LegacyLevelTrace {
		return nil, fmt.Errorf("invalid verbosity %d", lvl)
	}

	var handler slog.Handler
	if jsonLogs {
		handler = log.JSONHandler(os.Stdout)
	} else {
		useColor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) &&
			os.Getenv("TERM") != "dumb"
		handler = log.NewTerminalHandler(os.Stderr, useColor)
	}

	level := new(slog.LevelVar)
	level.Set(log.FromLegacyLevel(int(lvl)))
	log.Init(log.LevelHandler(level, handler))
	return level, nil
}

// selectGenesis returns the genesis named by --genesis, the dev network otherwise.
func selectGenesis(ctx *cli.Context) (*genesis.Genesis, bool, error) {
	path := ctx.String(genesisFlag.Name)
	if path == "" {
		return genesis.NewDevnet(), true, nil
	}
	gen, err := genesis.Load(path)
	if err != nil {
		return nil, false, err
	}
	if gen.Name == "" {
		gen.Name = "custom"
	}
	return gen, false, nil
}

func makeInstanceDir(ctx *cli.Context, gen *genesis.Genesis) (string, error) {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		return "", fmt.Errorf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name)
	}
	instanceDir := filepath.Join(dataDir, "instance-"+gen.Name)
	if err := os.MkdirAll(instanceDir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create instance dir [%v]", instanceDir)
	}
	return instanceDir, nil
}

func openMainDB(cacheMB int, dataDir string) (*lvldb.LevelDB, error) {
	// Ensure Go's GC ignores the database cache for trigger percentage
	gogc := math.Max(20, math.Min(100, 100/(float64(cacheMB)/1024)))
	logger.Debug("sanitize Go's GC trigger", "percent", int(gogc))
	debug.SetGCPercent(int(gogc))

	fdCache, err := suggestFDCache()
	if err != nil {
		return nil, err
	}
	logger.Debug("fd cache", "n", fdCache)

	dir := filepath.Join(dataDir, "main.db")
	db, err := lvldb.New(dir, lvldb.Options{
		CacheSize:              cacheMB / 2,
		OpenFilesCacheCapacity: fdCache,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open main database [%v]", dir)
	}
	return db, nil
}

func normalizeCacheSize(sizeMB int) int {
	if sizeMB < 128 {
		sizeMB = 128
	}

	var mem gosigar.Mem
	if err := mem.Get(); err != nil {
		logger.Warn("failed to get total mem:", "err", err)
	} else {
		// limit to 1/2 os physical ram
		limitMB := int(mem.Total / 1024 / 1024 / 2)
		if sizeMB > limitMB {
			sizeMB = limitMB
			logger.Warn("cache size(MB) limited", "limit", limitMB)
		}
	}
	return sizeMB
}

func suggestFDCache() (int, error) {
	limit, err := fdlimit.Current()
	if err != nil {
		return 0, errors.Wrap(err, "get fd limit")
	}
	if limit <= 1024 {
		logger.Warn("low fd limit, increase it if possible", "limit", limit)
	}

	n := limit / 2
	if n > 5120 {
		return 5120, nil
	}
	return n, nil
}

// storageCacheSlots converts megabytes into cached storage slots, about 512 bytes each.
func storageCacheSlots(cacheMB int) int {
	return cacheMB / 2 * 2048
}

func openLogDB(dataDir string) (*logdb.LogDB, error) {
	dir := filepath.Join(dataDir, "logs.db")
	db, err := logdb.New(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "open log database [%v]", dir)
	}
	return db, nil
}

func openMemMainDB() (*lvldb.LevelDB, error) {
	db, err := lvldb.NewMem()
	if err != nil {
		return nil, errors.Wrap(err, "open main database")
	}
	return db, nil
}

func openMemLogDB() (*logdb.LogDB, error) {
	db, err := logdb.NewMem()
	if err != nil {
		return nil, errors.Wrap(err, "open log database")
	}
	return db, nil
}

func wallClock() uint64 {
	return uint64(time.Now().Unix())
}

// initRuntime opens the runtime, building the genesis on an empty ledger.
func initRuntime(gen *genesis.Genesis, db *lvldb.LevelDB, cache *state.Cache, logDB *logdb.LogDB) (*runtime.Runtime, error) {
	rt, err := runtime.New(db, cache, logDB, wallClock)
	if err != nil {
		return nil, err
	}
	if rt.Head().Sequence > 0 {
		return rt, nil
	}
	receipt, err := gen.Build(rt)
	if err != nil {
		return nil, errors.WithMessage(err, "build genesis")
	}
	logger.Info("genesis built", "name", gen.Name, "stateHash", receipt.StateHash)
	return rt, nil
}

func startAPIServer(addr string, handler http.Handler) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen API addr [%v]", addr)
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	var goes co.Goes
	goes.Go(func() {
		srv.Serve(listener)
	})
	return "http://" + listener.Addr().String() + "/", func() {
		srv.Close()
		goes.Wait()
	}, nil
}

// every runs f at once, then on each interval tick until the returned func is called.
func every(interval time.Duration, f func()) func() {
	choes := co.NewChoes(context.Background())
	choes.Go(func(ctx context.Context) {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			f()
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	})
	return choes.Stop
}

// startClockCheck periodically compares the local clock with ntp.
func startClockCheck(server string, h *health.Health) func() {
	return every(clockCheckInterval, func() { checkClockOffset(server, h) })
}

// startDBMeter periodically exports level db stats.
func startDBMeter(db *lvldb.LevelDB) func() {
	return every(dbMeterInterval, func() {
		if err := db.Meter(); err != nil {
			logger.Debug("failed to meter main db", "err", err)
		}
	})
}

func checkClockOffset(server string, h *health.Health) {
	resp, err := ntp.Query(server)
	if err != nil {
		logger.Debug("failed to access NTP", "err", err)
		return
	}
	h.ClockDrift(resp.ClockOffset)
	// honest reports would be rejected as skewed
	if resp.ClockOffset.Abs() > time.Duration(thor.DefaultHeartbeat)*time.Second/2 {
		logger.Warn("clock offset detected", "offset", common.PrettyDuration(resp.ClockOffset))
	}
}

func printStartupMessage(
	gen *genesis.Genesis,
	rt *runtime.Runtime,
	dataDir string,
	apiURL string,
	adminURL string,
	metricsURL string,
) {
	head := rt.Head()
	fmt.Printf(`Starting %v
    Network      [ %v admin %v ]
    Ledger head  [ #%v @%v ]
    Data dir     [ %v ]
    API portal   [ %v ]
    Admin        [ %v ]
    Metrics      [ %v ]
`,
		nodeName(),
		gen.Name, gen.Admin,
		head.Sequence, time.Unix(int64(head.Time), 0),
		dataDir,
		apiURL,
		orDisabled(adminURL),
		orDisabled(metricsURL))
}

func printDevAccounts(w io.Writer) {
	tableHead := `
┌────────────────────────────────────────────┬────────────────────────────────────────────────────────────────────┐
│                   Address                  │                             Private Key                            │`
	tableContent := `
├────────────────────────────────────────────┼────────────────────────────────────────────────────────────────────┤
│ %v │ %v │`
	tableEnd := `
└────────────────────────────────────────────┴────────────────────────────────────────────────────────────────────┘`

	info := tableHead
	for _, a := range genesis.DevAccounts() {
		info += fmt.Sprintf(tableContent,
			a.Address,
			thor.BytesToBytes32(crypto.FromECDSA(a.PrivateKey)),
		)
	}
	info += tableEnd + "\r\n"
	fmt.Fprint(w, info)
}

func orDisabled(url string) string {
	if url == "" {
		return "disabled"
	}
	return url
}
