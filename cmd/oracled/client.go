// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/oraclenet/api/types"
	"github.com/vechain/oraclenet/builtin/oracle"
	"github.com/vechain/oraclenet/co"
	"github.com/vechain/oraclenet/genesis"
	"github.com/vechain/oraclenet/oracleclient/httpclient"
	"github.com/vechain/oraclenet/thor"
)

// submission is the outcome of one report.
type submission struct {
	Oracle    thor.Address     `json:"oracle"`
	LedgerSeq uint32           `json:"ledgerSeq,omitempty"`
	Finalized *types.FeedState `json:"finalized,omitempty"`
	Error     string           `json:"error,omitempty"`
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// parseValue decodes a signed decimal or 0x prefixed hex integer.
func parseValue(str string) (*big.Int, error) {
	str = strings.TrimSpace(str)
	if str == "" {
		return nil, errors.New("value required")
	}
	v, ok := new(big.Int).SetString(str, 0)
	if !ok {
		return nil, fmt.Errorf("invalid value %q", str)
	}
	return v, nil
}

func feedID(ctx *cli.Context) (oracle.FeedID, error) {
	id := oracle.FeedID(ctx.String(feedFlag.Name))
	if id == "" {
		return "", fmt.Errorf("-%s required", feedFlag.Name)
	}
	return id, nil
}

// submitKeys returns the signing keys of a submit command.
func submitKeys(ctx *cli.Context) ([]*ecdsa.PrivateKey, error) {
	if ctx.Bool(devOraclesFlag.Name) {
		var keys []*ecdsa.PrivateKey
		for _, acc := range genesis.DevAccounts()[1:4] {
			keys = append(keys, acc.PrivateKey)
		}
		return keys, nil
	}
	key, err := parseKey(ctx.String(keyFlag.Name))
	if err != nil {
		return nil, err
	}
	return []*ecdsa.PrivateKey{key}, nil
}

func submitAction(ctx *cli.Context) error {
	id, err := feedID(ctx)
	if err != nil {
		return err
	}
	value, err := parseValue(ctx.String(valueFlag.Name))
	if err != nil {
		return err
	}
	keys, err := submitKeys(ctx)
	if err != nil {
		return err
	}

	client := httpclient.New(ctx.String(nodeURLFlag.Name))
	timestamp := ctx.Uint64(timestampFlag.Name)
	if timestamp == 0 {
		node, err := client.GetNode()
		if err != nil {
			return errors.WithMessage(err, "get node time")
		}
		timestamp = node.Now
	}

	results := make([]*submission, len(keys))
	<-co.Parallel(func(queue chan<- func()) {
		for i, key := range keys {
			queue <- func() {
				sender := httpclient.NewSender(client, key)
				res := &submission{Oracle: sender.Address()}
				st, receipt, err := sender.SubmitReport(id, value, timestamp)
				if err != nil {
					res.Error = err.Error()
				} else {
					res.LedgerSeq = receipt.LedgerSeq
					res.Finalized = st
				}
				results[i] = res
			}
		}
	})
	return printJSON(os.Stdout, results)
}

func stakeAction(ctx *cli.Context) error {
	key, err := parseKey(ctx.String(keyFlag.Name))
	if err != nil {
		return err
	}
	amount, err := parseAmount(ctx.String(amountFlag.Name))
	if err != nil {
		return err
	}

	sender := httpclient.NewSender(httpclient.New(ctx.String(nodeURLFlag.Name)), key)
	if _, err := sender.Stake(amount); err != nil {
		return errors.WithMessage(err, "stake")
	}
	stake, err := sender.GetStake(sender.Address())
	if err != nil {
		return err
	}
	return printJSON(os.Stdout, stake)
}

func feedAction(ctx *cli.Context) error {
	id, err := feedID(ctx)
	if err != nil {
		return err
	}
	client := httpclient.New(ctx.String(nodeURLFlag.Name))

	feed, err := client.GetFeed(id)
	if err != nil {
		return err
	}
	if feed == nil {
		return fmt.Errorf("feed %s not found", id)
	}

	var maxAge *uint64
	if ctx.IsSet(maxAgeFlag.Name) {
		v := ctx.Uint64(maxAgeFlag.Name)
		maxAge = &v
	}
	latest, err := client.GetLatest(id, maxAge)
	if err != nil {
		return err
	}
	return printJSON(os.Stdout, struct {
		*types.Feed
		Latest *types.Latest `json:"latest"`
	}{feed, latest})
}
