// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package xenv

import (
	"encoding/json"
	"math/big"
	"slices"

	"github.com/pkg/errors"

	"github.com/vechain/oraclenet/builtin/reverts"
	"github.com/vechain/oraclenet/state"
	"github.com/vechain/oraclenet/thor"
)

var errUnauthorized = reverts.New(reverts.KindAuthorization, "unauthorized")

// BlockContext is the ledger context an operation executes in.
type BlockContext struct {
	Number uint32 // ledger sequence
	Time   uint64 // ledger time, in seconds
}

// CallContext describes the authenticated request being executed.
type CallContext struct {
	ID      thor.Bytes32
	Origin  thor.Address
	Signers []thor.Address
}

// Event is a record emitted by a contract.
type Event struct {
	Address thor.Address   // emitting contract
	Topics  []thor.Bytes32 // topics[0] is blake2b of the event name
	Data    []byte         // json encoded payload
}

// Transfer is a token movement.
type Transfer struct {
	Token     thor.Address
	Sender    thor.Address
	Recipient thor.Address
	Amount    *big.Int
}

// Environment an env to execute contract methods.
type Environment struct {
	state     *state.State
	blockCtx  *BlockContext
	callCtx   *CallContext
	contract  thor.Address
	events    []*Event
	transfers []*Transfer
}

// New create a new env.
func New(state *state.State, blockCtx *BlockContext, callCtx *CallContext) *Environment {
	if callCtx == nil {
		callCtx = &CallContext{}
	}
	return &Environment{
		state:    state,
		blockCtx: blockCtx,
		callCtx:  callCtx,
	}
}

func (env *Environment) State() *state.State               { return env.state }
func (env *Environment) BlockContext() *BlockContext       { return env.blockCtx }
func (env *Environment) CallContext() *CallContext         { return env.callCtx }
func (env *Environment) Contract() thor.Address            { return env.contract }
func (env *Environment) Events() []*Event                  { return env.events }
func (env *Environment) Transfers() []*Transfer            { return env.transfers }
func (env *Environment) IsSigner(addr thor.Address) bool   { return slices.Contains(env.callCtx.Signers, addr) }
func (env *Environment) IsContract(addr thor.Address) bool { return !addr.IsZero() && addr == env.contract }

// Call runs fn with contract as the executing contract.
// The executing contract is authorized to act for its own address.
func (env *Environment) Call(contract thor.Address, fn func() error) error {
	prev := env.contract
	env.contract = contract
	defer func() { env.contract = prev }()
	return fn()
}

// RequireAuth fails unless addr signed the call, or addr is the executing contract.
func (env *Environment) RequireAuth(addr thor.Address) error {
	if env.IsSigner(addr) || env.IsContract(addr) {
		return nil
	}
	return errUnauthorized
}

// Log emits an event of the executing contract.
func (env *Environment) Log(name string, topics []thor.Bytes32, data any) error {
	enc, err := json.Marshal(data)
	if err != nil {
		return errors.WithMessage(err, "encode event")
	}
	env.events = append(env.events, &Event{
		Address: env.contract,
		Topics:  append([]thor.Bytes32{EventID(name)}, topics...),
		Data:    enc,
	})
	return nil
}

// Transfer records a token movement.
func (env *Environment) Transfer(t *Transfer) {
	env.transfers = append(env.transfers, t)
}

// EventID returns the first topic of events with name.
func EventID(name string) thor.Bytes32 {
	return thor.Keccak256([]byte(name))
}
