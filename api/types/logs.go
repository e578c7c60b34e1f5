// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package types

import (
	"encoding/json"
	"math"

	ethmath "github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"

	"github.com/vechain/oraclenet/logdb"
	"github.com/vechain/oraclenet/thor"
)

// LogMeta locates a log in the ledger.
type LogMeta struct {
	LedgerSeq  uint32       `json:"ledgerSeq"`
	LedgerTime uint64       `json:"ledgerTime"`
	CallID     thor.Bytes32 `json:"callId"`
	Origin     thor.Address `json:"origin"`
}

type Range struct {
	Unit logdb.RangeType `json:"unit"`
	From *uint64         `json:"from,omitempty"`
	To   *uint64         `json:"to,omitempty"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

type EventCriteria struct {
	Address *thor.Address `json:"address"`
	Topic0  *thor.Bytes32 `json:"topic0"`
	Topic1  *thor.Bytes32 `json:"topic1"`
	Topic2  *thor.Bytes32 `json:"topic2"`
	Topic3  *thor.Bytes32 `json:"topic3"`
}

type EventFilter struct {
	CriteriaSet []*EventCriteria `json:"criteriaSet"`
	Range       *Range           `json:"range"`
	Options     *Options         `json:"options"`
	Order       logdb.Order      `json:"order"`
}

type FilteredEvent struct {
	Address thor.Address    `json:"address"`
	Topics  []*thor.Bytes32 `json:"topics"`
	Data    json.RawMessage `json:"data"`
	Meta    LogMeta         `json:"meta"`
}

type TransferCriteria struct {
	Origin    *thor.Address `json:"origin"`
	Token     *thor.Address `json:"token"`
	Sender    *thor.Address `json:"sender"`
	Recipient *thor.Address `json:"recipient"`
}

type TransferFilter struct {
	CallID      *thor.Bytes32       `json:"callId"`
	CriteriaSet []*TransferCriteria `json:"criteriaSet"`
	Range       *Range              `json:"range"`
	Options     *Options            `json:"options"`
	Order       logdb.Order         `json:"order"`
}

type FilteredTransfer struct {
	Token     thor.Address             `json:"token"`
	Sender    thor.Address             `json:"sender"`
	Recipient thor.Address             `json:"recipient"`
	Amount    *ethmath.HexOrDecimal256 `json:"amount"`
	Meta      LogMeta                  `json:"meta"`
}

func convertRange(r *Range) (*logdb.Range, error) {
	if r == nil {
		return nil, nil
	}
	unit := r.Unit
	switch unit {
	case "":
		unit = logdb.Sequence
	case logdb.Sequence, logdb.Time:
	default:
		return nil, errors.Errorf("unit: unsupported %q", r.Unit)
	}
	// sqlite integers are signed
	out := &logdb.Range{Unit: unit, To: math.MaxInt64}
	if r.From != nil {
		out.From = min(*r.From, math.MaxInt64)
	}
	if r.To != nil {
		out.To = min(*r.To, math.MaxInt64)
	}
	if out.From > out.To {
		return nil, errors.New("range.to must be greater than or equal to range.from")
	}
	return out, nil
}

func convertOrder(o logdb.Order) (logdb.Order, error) {
	switch o {
	case "", logdb.ASC:
		return logdb.ASC, nil
	case logdb.DESC:
		return logdb.DESC, nil
	}
	return "", errors.Errorf("order: unsupported %q", o)
}

// ConvertEventFilter converts to the logdb form. options are required.
func ConvertEventFilter(f *EventFilter) (*logdb.EventFilter, error) {
	rng, err := convertRange(f.Range)
	if err != nil {
		return nil, err
	}
	order, err := convertOrder(f.Order)
	if err != nil {
		return nil, err
	}
	out := &logdb.EventFilter{
		Range:   rng,
		Options: &logdb.Options{Offset: f.Options.Offset, Limit: f.Options.Limit},
		Order:   order,
	}
	for i, c := range f.CriteriaSet {
		if c == nil {
			return nil, errors.Errorf("criteriaSet[%d]: null not allowed", i)
		}
		out.CriteriaSet = append(out.CriteriaSet, &logdb.EventCriteria{
			Address: c.Address,
			Topics:  [4]*thor.Bytes32{c.Topic0, c.Topic1, c.Topic2, c.Topic3},
		})
	}
	return out, nil
}

// ConvertTransferFilter converts to the logdb form. options are required.
func ConvertTransferFilter(f *TransferFilter) (*logdb.TransferFilter, error) {
	rng, err := convertRange(f.Range)
	if err != nil {
		return nil, err
	}
	order, err := convertOrder(f.Order)
	if err != nil {
		return nil, err
	}
	out := &logdb.TransferFilter{
		CallID:  f.CallID,
		Range:   rng,
		Options: &logdb.Options{Offset: f.Options.Offset, Limit: f.Options.Limit},
		Order:   order,
	}
	for i, c := range f.CriteriaSet {
		if c == nil {
			return nil, errors.Errorf("criteriaSet[%d]: null not allowed", i)
		}
		out.CriteriaSet = append(out.CriteriaSet, &logdb.TransferCriteria{
			Origin:    c.Origin,
			Token:     c.Token,
			Sender:    c.Sender,
			Recipient: c.Recipient,
		})
	}
	return out, nil
}

// ConvertEvent converts a stored event.
func ConvertEvent(e *logdb.Event) *FilteredEvent {
	fe := &FilteredEvent{
		Address: e.Address,
		Data:    e.Data,
		Meta: LogMeta{
			LedgerSeq:  e.LedgerSeq,
			LedgerTime: e.LedgerTime,
			CallID:     e.CallID,
			Origin:     e.Origin,
		},
	}
	for _, topic := range e.Topics {
		if topic != nil {
			fe.Topics = append(fe.Topics, topic)
		}
	}
	if len(fe.Data) == 0 {
		fe.Data = json.RawMessage("null")
	}
	return fe
}

// ConvertTransfer converts a stored transfer.
func ConvertTransfer(t *logdb.Transfer) *FilteredTransfer {
	return &FilteredTransfer{
		Token:     t.Token,
		Sender:    t.Sender,
		Recipient: t.Recipient,
		Amount:    (*ethmath.HexOrDecimal256)(t.Amount),
		Meta: LogMeta{
			LedgerSeq:  t.LedgerSeq,
			LedgerTime: t.LedgerTime,
			CallID:     t.CallID,
			Origin:     t.Origin,
		},
	}
}
