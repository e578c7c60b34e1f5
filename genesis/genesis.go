// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/oraclenet/builtin"
	"github.com/vechain/oraclenet/builtin/oracle"
	"github.com/vechain/oraclenet/builtin/oracle/feeds"
	"github.com/vechain/oraclenet/runtime"
	"github.com/vechain/oraclenet/thor"
	"github.com/vechain/oraclenet/xenv"
)

// Genesis describes the initial state of a network.
type Genesis struct {
	Name       string                `yaml:"name"`
	Admin      thor.Address          `yaml:"admin"`
	Initialize bool                  `yaml:"initialize"`
	Tokens     Tokens                `yaml:"tokens"`
	Accounts   []Account             `yaml:"accounts"`
	RewardPool *math.HexOrDecimal256 `yaml:"rewardPool"` // reward tokens held by the network
	Feeds      []Feed                `yaml:"feeds"`
}

// Tokens overrides the token addresses. Builtin tokens are used by default.
type Tokens struct {
	Staking *thor.Address `yaml:"staking"`
	Reward  *thor.Address `yaml:"reward"`
}

// Account is a balance allocation of the builtin tokens.
type Account struct {
	Address thor.Address          `yaml:"address"`
	Staking *math.HexOrDecimal256 `yaml:"staking"`
	Reward  *math.HexOrDecimal256 `yaml:"reward"`
}

// Feed is a preconfigured feed.
type Feed struct {
	ID           oracle.FeedID         `yaml:"id"`
	Type         string                `yaml:"type"`
	Description  string                `yaml:"description"`
	Decimals     uint32                `yaml:"decimals"`
	Heartbeat    uint64                `yaml:"heartbeat"`
	DeviationBps uint32                `yaml:"deviationBps"`
	MinOracles   uint32                `yaml:"minOracles"`
	MaxOracles   uint32                `yaml:"maxOracles"`
	Reward       *math.HexOrDecimal256 `yaml:"reward"`
	Oracles      []thor.Address        `yaml:"oracles"`
}

// Load reads a genesis file.
func Load(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis file")
	}
	return Parse(data)
}

// Parse decodes and validates a yaml genesis.
func Parse(data []byte) (*Genesis, error) {
	var gen Genesis
	if err := yaml.Unmarshal(data, &gen); err != nil {
		return nil, errors.Wrap(err, "decode genesis")
	}
	if err := gen.validate(); err != nil {
		return nil, err
	}
	return &gen, nil
}

func (g *Genesis) validate() error {
	if g.Admin.IsZero() {
		return errors.New("admin must be set")
	}
	if len(g.Feeds) > 0 && !g.Initialize {
		return errors.New("feeds require initialize")
	}
	for _, a := range g.Accounts {
		for _, amount := range []*math.HexOrDecimal256{a.Staking, a.Reward} {
			if amount != nil && (*big.Int)(amount).Sign() < 0 {
				return fmt.Errorf("%s: balance must be a non-negative integer", a.Address)
			}
		}
	}
	for _, f := range g.Feeds {
		if _, err := feeds.ParseType(f.Type); err != nil {
			return fmt.Errorf("feed %s: %w", f.ID, err)
		}
	}
	return nil
}

func (g *Genesis) stakingToken() thor.Address {
	if g.Tokens.Staking != nil {
		return *g.Tokens.Staking
	}
	return builtin.StakingToken.Address
}

func (g *Genesis) rewardToken() thor.Address {
	if g.Tokens.Reward != nil {
		return *g.Tokens.Reward
	}
	return builtin.RewardToken.Address
}

// Build writes the genesis as the first ledger entry of rt.
func (g *Genesis) Build(rt *runtime.Runtime) (*runtime.Receipt, error) {
	return rt.Genesis([]thor.Address{g.Admin}, g.apply)
}

func (g *Genesis) apply(env *xenv.Environment) error {
	st := env.State()
	stakingToken := builtin.StakingToken.WithState(st)
	rewardToken := builtin.RewardToken.WithState(st)

	for _, a := range g.Accounts {
		if a.Staking != nil && (*big.Int)(a.Staking).Sign() > 0 {
			if err := stakingToken.Mint(env, a.Address, (*big.Int)(a.Staking)); err != nil {
				return errors.WithMessagef(err, "mint staking token to %s", a.Address)
			}
		}
		if a.Reward != nil && (*big.Int)(a.Reward).Sign() > 0 {
			if err := rewardToken.Mint(env, a.Address, (*big.Int)(a.Reward)); err != nil {
				return errors.WithMessagef(err, "mint reward token to %s", a.Address)
			}
		}
	}
	if g.RewardPool != nil && (*big.Int)(g.RewardPool).Sign() > 0 {
		if err := rewardToken.Mint(env, builtin.Oracle.Address, (*big.Int)(g.RewardPool)); err != nil {
			return errors.WithMessage(err, "fund reward pool")
		}
	}

	if !g.Initialize {
		return nil
	}
	o := builtin.Oracle.WithState(st)
	if err := o.Initialize(env, g.Admin); err != nil {
		return errors.WithMessage(err, "initialize")
	}
	if err := o.SetTokens(env, g.Admin, g.stakingToken(), g.rewardToken()); err != nil {
		return errors.WithMessage(err, "set tokens")
	}
	for _, f := range g.Feeds {
		typ, _ := feeds.ParseType(f.Type)
		cfg := &oracle.FeedConfig{
			Type:             typ,
			Description:      f.Description,
			Decimals:         f.Decimals,
			HeartbeatSeconds: f.Heartbeat,
			DeviationBps:     f.DeviationBps,
			MinOracles:       f.MinOracles,
			MaxOracles:       f.MaxOracles,
		}
		if f.Reward != nil {
			cfg.RewardPerSubmission = (*big.Int)(f.Reward)
		}
		if err := o.CreateFeed(env, g.Admin, f.ID, cfg, f.Oracles); err != nil {
			return errors.WithMessagef(err, "create feed %s", f.ID)
		}
	}
	return nil
}
