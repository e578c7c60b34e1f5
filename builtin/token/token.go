// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/vechain/oraclenet/builtin/reverts"
	"github.com/vechain/oraclenet/builtin/solidity"
	"github.com/vechain/oraclenet/state"
	"github.com/vechain/oraclenet/thor"
	"github.com/vechain/oraclenet/xenv"
)

var (
	slotBalances = thor.BytesToBytes32([]byte("balances"))
	slotSupply   = thor.BytesToBytes32([]byte("total-supply"))

	errAmount              = reverts.NewRequireError("amount")
	errInsufficientBalance = reverts.NewRequireError("insufficient balance")
	errOverflow            = reverts.NewRequireError("overflow")
)

// Token is a fungible token ledger.
type Token struct {
	addr     thor.Address
	name     string
	balances *solidity.Mapping[thor.Address, *big.Int]
	supply   *solidity.Uint256
}

// New create a new instance.
func New(addr thor.Address, name string, state *state.State) *Token {
	sctx := solidity.NewContext(addr, state)
	return &Token{
		addr:     addr,
		name:     name,
		balances: solidity.NewMapping[thor.Address, *big.Int](sctx, slotBalances),
		supply:   solidity.NewUint256(sctx, slotSupply),
	}
}

func (t *Token) Address() thor.Address { return t.addr }
func (t *Token) Name() string          { return t.name }

// BalanceOf returns balance of owner, 0 for unknown owners.
func (t *Token) BalanceOf(owner thor.Address) (*big.Int, error) {
	return t.balances.Get(owner)
}

func (t *Token) TotalSupply() (*big.Int, error) {
	return t.supply.Get()
}

func (t *Token) setBalance(owner thor.Address, bal *uint256.Int) error {
	if bal.IsZero() {
		t.balances.Delete(owner)
		return nil
	}
	return t.balances.Set(owner, bal.ToBig())
}

func (t *Token) balanceOf(owner thor.Address) (*uint256.Int, error) {
	bal, err := t.balances.Get(owner)
	if err != nil {
		return nil, err
	}
	v, overflow := uint256.FromBig(bal)
	if overflow {
		return nil, errOverflow
	}
	return v, nil
}

// Mint creates amount tokens owned by to.
func (t *Token) Mint(env *xenv.Environment, to thor.Address, amount *big.Int) error {
	if amount.Sign() <= 0 {
		return errAmount
	}
	amt, overflow := uint256.FromBig(amount)
	if overflow {
		return errOverflow
	}
	supply, err := t.supply.Get()
	if err != nil {
		return err
	}
	sup, _ := uint256.FromBig(supply)
	if _, overflow := new(uint256.Int).AddOverflow(sup, amt); overflow {
		return errOverflow
	}

	bal, err := t.balanceOf(to)
	if err != nil {
		return err
	}
	// balance never exceeds supply
	bal.Add(bal, amt)
	if err := t.setBalance(to, bal); err != nil {
		return err
	}
	if err := t.supply.Add(amount); err != nil {
		return err
	}
	if env != nil {
		env.Transfer(&xenv.Transfer{
			Token:     t.addr,
			Recipient: to,
			Amount:    new(big.Int).Set(amount),
		})
	}
	return nil
}

// Transfer moves amount from payer to payee. payer must authorize the call.
func (t *Token) Transfer(env *xenv.Environment, payer, payee thor.Address, amount *big.Int) error {
	if err := env.RequireAuth(payer); err != nil {
		return err
	}
	if amount.Sign() < 0 {
		return errAmount
	}
	amt, overflow := uint256.FromBig(amount)
	if overflow {
		return errInsufficientBalance
	}

	from, err := t.balanceOf(payer)
	if err != nil {
		return err
	}
	if from.Lt(amt) {
		return errInsufficientBalance
	}
	if amt.IsZero() || payer == payee {
		return nil
	}

	to, err := t.balanceOf(payee)
	if err != nil {
		return err
	}
	if _, overflow := to.AddOverflow(to, amt); overflow {
		return errOverflow
	}
	from.Sub(from, amt)

	if err := t.setBalance(payer, from); err != nil {
		return err
	}
	if err := t.setBalance(payee, to); err != nil {
		return err
	}
	env.Transfer(&xenv.Transfer{
		Token:     t.addr,
		Sender:    payer,
		Recipient: payee,
		Amount:    new(big.Int).Set(amount),
	})
	return nil
}
