// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package feeds

import (
	"math/big"
	"slices"

	"github.com/vechain/oraclenet/builtin/solidity"
	"github.com/vechain/oraclenet/thor"
)

var (
	slotConfigs = thor.BytesToBytes32([]byte("feed-configs"))
	slotOracles = thor.BytesToBytes32([]byte("feed-oracles"))
	slotStates  = thor.BytesToBytes32([]byte("feed-states"))
	slotIDs     = thor.BytesToBytes32([]byte("feed-ids"))
)

// Service is the feed registry: configs, oracle sets and latest states.
type Service struct {
	configs *solidity.Mapping[ID, *configEntry]
	oracles *solidity.Mapping[ID, []thor.Address]
	states  *solidity.Mapping[ID, *stateEntry]
	ids     *solidity.Value[[]ID]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		configs: solidity.NewMapping[ID, *configEntry](sctx, slotConfigs),
		oracles: solidity.NewMapping[ID, []thor.Address](sctx, slotOracles),
		states:  solidity.NewMapping[ID, *stateEntry](sctx, slotStates),
		ids:     solidity.NewValue[[]ID](sctx, slotIDs),
	}
}

// Exists returns whether the feed is configured.
func (s *Service) Exists(id ID) (bool, error) {
	return s.configs.Exists(id)
}

// Add registers a feed with its config and oracle set, and a zeroed state.
// The config is stored as given, callers normalize it first.
func (s *Service) Add(id ID, cfg *Config, oracles []thor.Address) error {
	if err := s.configs.Set(id, newConfigEntry(cfg)); err != nil {
		return err
	}
	if err := s.oracles.Set(id, oracles); err != nil {
		return err
	}
	if err := s.states.Set(id, newStateEntry(&State{LatestValue: new(big.Int)})); err != nil {
		return err
	}
	ids, err := s.ids.Get()
	if err != nil {
		return err
	}
	return s.ids.Set(append(ids, id))
}

// Config returns the config of a feed, nil if the feed is unknown.
func (s *Service) Config(id ID) (*Config, error) {
	exists, err := s.configs.Exists(id)
	if err != nil || !exists {
		return nil, err
	}
	entry, err := s.configs.Get(id)
	if err != nil {
		return nil, err
	}
	return entry.config(), nil
}

// Oracles returns the authorized reporters of a feed.
func (s *Service) Oracles(id ID) ([]thor.Address, error) {
	return s.oracles.Get(id)
}

// SetOracles replaces the oracle set of a feed.
func (s *Service) SetOracles(id ID, oracles []thor.Address) error {
	return s.oracles.Set(id, oracles)
}

// IsOracle returns whether addr may report for the feed.
func (s *Service) IsOracle(id ID, addr thor.Address) (bool, error) {
	oracles, err := s.oracles.Get(id)
	if err != nil {
		return false, err
	}
	return slices.Contains(oracles, addr), nil
}

// State returns the latest state of a feed, nil if the feed is unknown.
func (s *Service) State(id ID) (*State, error) {
	exists, err := s.states.Exists(id)
	if err != nil || !exists {
		return nil, err
	}
	entry, err := s.states.Get(id)
	if err != nil {
		return nil, err
	}
	return entry.state(), nil
}

func (s *Service) SetState(id ID, st *State) error {
	return s.states.Set(id, newStateEntry(st))
}

// IDs lists the registered feeds in creation order.
func (s *Service) IDs() ([]ID, error) {
	return s.ids.Get()
}
