// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"math/big"

	"github.com/vechain/oraclenet/builtin/solidity"
	"github.com/vechain/oraclenet/thor"
)

var (
	slotStakes  = thor.BytesToBytes32([]byte("oracle-stakes"))
	slotPending = thor.BytesToBytes32([]byte("oracle-pending-rewards"))
	slotTotal   = thor.BytesToBytes32([]byte("total-stake"))
)

// Service keeps the stake and the unclaimed rewards of every oracle.
// Both balances are non-negative, callers check before subtracting.
type Service struct {
	stakes  *solidity.Mapping[thor.Address, *big.Int]
	pending *solidity.Mapping[thor.Address, *big.Int]
	total   *solidity.Uint256
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		stakes:  solidity.NewMapping[thor.Address, *big.Int](sctx, slotStakes),
		pending: solidity.NewMapping[thor.Address, *big.Int](sctx, slotPending),
		total:   solidity.NewUint256(sctx, slotTotal),
	}
}

// Stake returns the stake of oracle, 0 if it never staked.
func (s *Service) Stake(oracle thor.Address) (*big.Int, error) {
	return s.stakes.Get(oracle)
}

// TotalStake returns the sum of all stakes.
func (s *Service) TotalStake() (*big.Int, error) {
	return s.total.Get()
}

func (s *Service) AddStake(oracle thor.Address, amount *big.Int) error {
	if err := add(s.stakes, oracle, amount); err != nil {
		return err
	}
	return s.total.Add(amount)
}

func (s *Service) SubStake(oracle thor.Address, amount *big.Int) error {
	if err := add(s.stakes, oracle, new(big.Int).Neg(amount)); err != nil {
		return err
	}
	return s.total.Sub(amount)
}

// PendingRewards returns the unclaimed rewards of oracle.
func (s *Service) PendingRewards(oracle thor.Address) (*big.Int, error) {
	return s.pending.Get(oracle)
}

func (s *Service) AddPendingRewards(oracle thor.Address, amount *big.Int) error {
	return add(s.pending, oracle, amount)
}

// ClearPendingRewards zeroes the unclaimed rewards of oracle.
func (s *Service) ClearPendingRewards(oracle thor.Address) {
	s.pending.Delete(oracle)
}

func add(m *solidity.Mapping[thor.Address, *big.Int], addr thor.Address, delta *big.Int) error {
	v, err := m.Get(addr)
	if err != nil {
		return err
	}
	v.Add(v, delta)
	if v.Sign() == 0 {
		m.Delete(addr)
		return nil
	}
	return m.Set(addr, v)
}
