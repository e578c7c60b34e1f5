// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"context"
	"encoding/json"
	"math"

	"github.com/pkg/errors"

	"github.com/vechain/oraclenet/api/types"
	"github.com/vechain/oraclenet/builtin"
	"github.com/vechain/oraclenet/builtin/oracle"
	"github.com/vechain/oraclenet/logdb"
	"github.com/vechain/oraclenet/thor"
	"github.com/vechain/oraclenet/xenv"
)

// readBatch bounds the events read per round trip to the log db.
const readBatch = 256

type msgReader interface {
	// Read returns messages after the current position, and advances it.
	// hasMore is true when another read may return more right away.
	Read(ctx context.Context) (msgs []any, hasMore bool, err error)
}

// eventReader follows the events matching criteria, ledger entry by ledger entry.
type eventReader struct {
	db       *logdb.LogDB
	criteria *logdb.EventCriteria
	pos      uint32 // last ledger sequence read
	convert  func(*logdb.Event) (any, error)
}

func (r *eventReader) Read(ctx context.Context) ([]any, bool, error) {
	events, err := r.db.FilterEvents(ctx, &logdb.EventFilter{
		CriteriaSet: []*logdb.EventCriteria{r.criteria},
		Range:       &logdb.Range{Unit: logdb.Sequence, From: uint64(r.pos) + 1, To: math.MaxUint32},
		Options:     &logdb.Options{Limit: readBatch},
	})
	if err != nil {
		return nil, false, err
	}
	if len(events) == 0 {
		return nil, false, nil
	}

	// never split a ledger entry across reads
	last := events[len(events)-1].LedgerSeq
	hasMore := len(events) == readBatch
	if hasMore && events[0].LedgerSeq != last {
		for len(events) > 0 && events[len(events)-1].LedgerSeq == last {
			events = events[:len(events)-1]
		}
		last = events[len(events)-1].LedgerSeq
	}

	msgs := make([]any, 0, len(events))
	for _, e := range events {
		msg, err := r.convert(e)
		if err != nil {
			return nil, false, err
		}
		msgs = append(msgs, msg)
	}
	r.pos = last
	return msgs, hasMore, nil
}

func newFeedReader(db *logdb.LogDB, id oracle.FeedID, pos uint32) *eventReader {
	addr := builtin.Oracle.Address
	topic0 := xenv.EventID(oracle.EventFeedUpdated)
	topic1 := oracle.FeedTopic(id)
	return &eventReader{
		db: db,
		criteria: &logdb.EventCriteria{
			Address: &addr,
			Topics:  [4]*thor.Bytes32{&topic0, &topic1},
		},
		pos:     pos,
		convert: convertFeedUpdated,
	}
}

func convertFeedUpdated(e *logdb.Event) (any, error) {
	var data oracle.FeedUpdated
	if err := json.Unmarshal(e.Data, &data); err != nil {
		return nil, errors.Wrap(err, "decode feed update")
	}
	return &types.FeedMessage{
		FeedID:     data.FeedID,
		Value:      data.Value,
		RoundID:    data.RoundID,
		Timestamp:  data.Timestamp,
		LedgerSeq:  e.LedgerSeq,
		LedgerTime: e.LedgerTime,
		CallID:     e.CallID,
	}, nil
}

func newEventReader(db *logdb.LogDB, criteria *logdb.EventCriteria, pos uint32) *eventReader {
	return &eventReader{
		db:       db,
		criteria: criteria,
		pos:      pos,
		convert: func(e *logdb.Event) (any, error) {
			return types.ConvertEvent(e), nil
		},
	}
}
