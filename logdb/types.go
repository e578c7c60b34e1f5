// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"math/big"

	"github.com/vechain/oraclenet/thor"
)

// Event represents xenv.Event that can be stored in db.
type Event struct {
	LedgerSeq  uint32
	Index      uint32
	LedgerTime uint64
	CallID     thor.Bytes32
	Origin     thor.Address // call signer
	Address    thor.Address // always a contract address
	Topics     [4]*thor.Bytes32
	Data       []byte
}

// Transfer represents xenv.Transfer that can be stored in db.
type Transfer struct {
	LedgerSeq  uint32
	Index      uint32
	LedgerTime uint64
	CallID     thor.Bytes32
	Origin     thor.Address
	Token      thor.Address
	Sender     thor.Address
	Recipient  thor.Address
	Amount     *big.Int
}

type RangeType string

const (
	Sequence RangeType = "sequence"
	Time     RangeType = "time"
)

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range is inclusive on both ends. To below From means unbounded.
type Range struct {
	Unit RangeType
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

type EventCriteria struct {
	Address *thor.Address // always a contract address
	Topics  [4]*thor.Bytes32
}

// EventFilter matches events meeting any of the criteria.
type EventFilter struct {
	CriteriaSet []*EventCriteria
	Range       *Range
	Options     *Options
	Order       Order // default asc
}

type TransferCriteria struct {
	Origin    *thor.Address // who signed the call
	Token     *thor.Address
	Sender    *thor.Address // who paid
	Recipient *thor.Address // who received
}

type TransferFilter struct {
	CallID      *thor.Bytes32
	CriteriaSet []*TransferCriteria
	Range       *Range
	Options     *Options
	Order       Order // default asc
}
