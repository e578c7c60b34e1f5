// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"crypto/ecdsa"
	"fmt"
	"io"
	"math"
	"math/big"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

func fatal(args ...any) {
	var w io.Writer
	if runtime.GOOS == "windows" {
		// The SameFile check below doesn't work on Windows.
		// stdout is unlikely to get redirected though, so just print there.
		w = os.Stdout
	} else {
		outf, _ := os.Stdout.Stat()
		errf, _ := os.Stderr.Stat()
		if outf != nil && errf != nil && os.SameFile(outf, errf) {
			w = os.Stderr
		} else {
			w = io.MultiWriter(os.Stdout, os.Stderr)
		}
	}
	fmt.Fprint(w, "Fatal: ")
	fmt.Fprintln(w, args...)
	os.Exit(1)
}

func handleExitSignal() <-chan os.Signal {
	exitSignalCh := make(chan os.Signal, 1)
	signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)
	return exitSignalCh
}

func readIntFromUInt64Flag(val uint64) (int, error) {
	if val > math.MaxInt {
		return 0, fmt.Errorf("flag value %d exceeds int range", val)
	}
	return int(val), nil
}

// parseKey decodes a hex private key, with or without 0x prefix.
func parseKey(str string) (*ecdsa.PrivateKey, error) {
	str = strings.TrimPrefix(strings.TrimSpace(str), "0x")
	if str == "" {
		return nil, errors.New("private key required")
	}
	key, err := crypto.HexToECDSA(str)
	if err != nil {
		return nil, errors.Wrap(err, "parse private key")
	}
	return key, nil
}

// parseAmount decodes a non-negative decimal or 0x prefixed hex integer.
func parseAmount(str string) (*big.Int, error) {
	str = strings.TrimSpace(str)
	if str == "" {
		return nil, errors.New("amount required")
	}
	v, ok := new(big.Int).SetString(str, 0)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", str)
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("negative amount %q", str)
	}
	return v, nil
}

// copy from go-ethereum
func defaultDataDir() string {
	// Try to place the data folder in the user's home dir
	if home := homeDir(); home != "" {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, "Library", "Application Support", "org.vechain.oraclenet")
		} else if runtime.GOOS == "windows" {
			return filepath.Join(home, "AppData", "Roaming", "org.vechain.oraclenet")
		} else {
			return filepath.Join(home, ".org.vechain.oraclenet")
		}
	}
	// As we cannot guess a stable location, return empty and handle later
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}
