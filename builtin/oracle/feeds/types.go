// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package feeds

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/oraclenet/thor"
)

// ID names a feed, e.g. "BTC_USD".
type ID string

// Bytes implements solidity.Key.
func (id ID) Bytes() []byte {
	return []byte(id)
}

// Validate checks the id is 1 to 32 chars of [A-Za-z0-9_].
func (id ID) Validate() error {
	if len(id) == 0 || len(id) > thor.MaxFeedIDLength {
		return errors.Errorf("feed id length must be in [1, %d]", thor.MaxFeedIDLength)
	}
	for _, c := range []byte(id) {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
		default:
			return errors.Errorf("invalid char %q in feed id", c)
		}
	}
	return nil
}

// Type tags what a feed reports. It does not change aggregation.
type Type uint32

const (
	TypePrice Type = iota
	TypeEvent
	TypeStatistic
)

func (t Type) Valid() bool {
	return t <= TypeStatistic
}

func (t Type) String() string {
	switch t {
	case TypePrice:
		return "price"
	case TypeEvent:
		return "event"
	case TypeStatistic:
		return "statistic"
	}
	return "unknown"
}

// ParseType parses a type name. An empty name is a price feed.
func ParseType(name string) (Type, error) {
	switch name {
	case "", "price":
		return TypePrice, nil
	case "event":
		return TypeEvent, nil
	case "statistic":
		return TypeStatistic, nil
	}
	return 0, errors.Errorf("unknown feed type %q", name)
}

// Config is the configuration of a feed.
type Config struct {
	Type                Type
	Description         string
	Decimals            uint32
	HeartbeatSeconds    uint64
	DeviationBps        uint32
	MinOracles          uint32
	MaxOracles          uint32
	RewardPerSubmission *big.Int // signed, non-positive means no reward
}

// Normalize returns a copy with defaults and bounds applied.
func (c Config) Normalize() *Config {
	if c.HeartbeatSeconds == 0 {
		c.HeartbeatSeconds = thor.DefaultHeartbeat
	}
	if c.DeviationBps == 0 || c.DeviationBps > thor.MaxDeviationBps {
		c.DeviationBps = thor.MaxDeviationBps
	}
	if c.MinOracles == 0 {
		c.MinOracles = 1
	}
	if c.MaxOracles == 0 || c.MaxOracles > thor.MaxOraclesPerFeed {
		c.MaxOracles = thor.MaxOraclesPerFeed
	}
	if c.MinOracles > c.MaxOracles {
		c.MaxOracles = c.MinOracles
	}
	if c.RewardPerSubmission == nil {
		c.RewardPerSubmission = new(big.Int)
	} else {
		c.RewardPerSubmission = new(big.Int).Set(c.RewardPerSubmission)
	}
	return &c
}

// State is the latest finalized value of a feed.
type State struct {
	LatestValue           *big.Int
	LatestRoundID         uint64
	LatestTimestamp       uint64 // reported by the oracles
	LatestUpdatedAtLedger uint64 // ledger time of finalization
}

// storage forms, rlp has no signed integers

type configEntry struct {
	Type             uint32
	Description      string
	Decimals         uint32
	HeartbeatSeconds uint64
	DeviationBps     uint32
	MinOracles       uint32
	MaxOracles       uint32
	RewardNeg        bool
	Reward           *big.Int
}

func newConfigEntry(c *Config) *configEntry {
	neg, abs := SplitSigned(c.RewardPerSubmission)
	return &configEntry{
		Type:             uint32(c.Type),
		Description:      c.Description,
		Decimals:         c.Decimals,
		HeartbeatSeconds: c.HeartbeatSeconds,
		DeviationBps:     c.DeviationBps,
		MinOracles:       c.MinOracles,
		MaxOracles:       c.MaxOracles,
		RewardNeg:        neg,
		Reward:           abs,
	}
}

func (e *configEntry) config() *Config {
	return &Config{
		Type:                Type(e.Type),
		Description:         e.Description,
		Decimals:            e.Decimals,
		HeartbeatSeconds:    e.HeartbeatSeconds,
		DeviationBps:        e.DeviationBps,
		MinOracles:          e.MinOracles,
		MaxOracles:          e.MaxOracles,
		RewardPerSubmission: JoinSigned(e.RewardNeg, e.Reward),
	}
}

type stateEntry struct {
	ValueNeg  bool
	Value     *big.Int
	RoundID   uint64
	Timestamp uint64
	UpdatedAt uint64
}

func newStateEntry(s *State) *stateEntry {
	neg, abs := SplitSigned(s.LatestValue)
	return &stateEntry{
		ValueNeg:  neg,
		Value:     abs,
		RoundID:   s.LatestRoundID,
		Timestamp: s.LatestTimestamp,
		UpdatedAt: s.LatestUpdatedAtLedger,
	}
}

func (e *stateEntry) state() *State {
	return &State{
		LatestValue:           JoinSigned(e.ValueNeg, e.Value),
		LatestRoundID:         e.RoundID,
		LatestTimestamp:       e.Timestamp,
		LatestUpdatedAtLedger: e.UpdatedAt,
	}
}

// SplitSigned returns the sign and magnitude of v, nil reads as zero.
func SplitSigned(v *big.Int) (neg bool, abs *big.Int) {
	if v == nil {
		return false, new(big.Int)
	}
	return v.Sign() < 0, new(big.Int).Abs(v)
}

// JoinSigned is the inverse of SplitSigned.
func JoinSigned(neg bool, abs *big.Int) *big.Int {
	v := new(big.Int)
	if abs != nil {
		v.Set(abs)
	}
	if neg {
		v.Neg(v)
	}
	return v
}
