// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"math/big"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/vechain/oraclenet/metrics"
	"github.com/vechain/oraclenet/thor"
	"github.com/vechain/oraclenet/xenv"
)

const (
	eventColumns    = "seq, callID, ledgerTime, origin, address, topic0, topic1, topic2, topic3, data"
	transferColumns = "seq, callID, ledgerTime, origin, token, sender, recipient, amount"
)

type LogDB struct {
	path          string
	db            *sql.DB
	stmtCache     *stmtCache
	driverVersion string
}

// New create or open log db at given path.
func New(path string) (logDB *LogDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "open log db")
	}
	defer func() {
		if logDB == nil {
			db.Close()
		}
	}()
	// a single connection keeps an in-memory db alive and serializes writers
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(eventTableSchema + transferTableSchema); err != nil {
		return nil, errors.Wrap(err, "create tables")
	}

	driverVer, _, _ := sqlite3.Version()
	return &LogDB{
		path,
		db,
		newStmtCache(db),
		driverVer,
	}, nil
}

// NewMem create a log db in ram.
func NewMem() (*LogDB, error) {
	return New(":memory:")
}

// Close close the log db.
func (db *LogDB) Close() error {
	db.stmtCache.Clear()
	return db.db.Close()
}

func (db *LogDB) Path() string {
	return db.path
}

// DriverVersion returns the version of the linked sqlite library.
func (db *LogDB) DriverVersion() string {
	return db.driverVersion
}

// NewestSequence returns the newest ledger sequence that has logs, 0 if none.
func (db *LogDB) NewestSequence() (uint32, error) {
	var seq sql.NullInt64
	row := db.db.QueryRow("SELECT MAX(seq) FROM (SELECT MAX(seq) AS seq FROM event UNION ALL SELECT MAX(seq) AS seq FROM transfer)")
	if err := row.Scan(&seq); err != nil {
		return 0, err
	}
	if !seq.Valid {
		return 0, nil
	}
	return sequence(seq.Int64).LedgerSeq(), nil
}

func (db *LogDB) FilterEvents(ctx context.Context, filter *EventFilter) ([]*Event, error) {
	const query = "SELECT " + eventColumns + " FROM event"
	if filter == nil {
		return db.queryEvents(ctx, query+" ORDER BY seq ASC")
	}
	metricsHandleEventsFilter(filter)

	var args []any
	stmt := query + " WHERE 1"
	stmt, args = appendRange(stmt, args, filter.Range)

	for i, criteria := range filter.CriteriaSet {
		if i == 0 {
			stmt += " AND (( 1"
		} else {
			stmt += " OR ( 1"
		}
		if criteria.Address != nil {
			args = append(args, criteria.Address.Bytes())
			stmt += " AND address = ?"
		}
		for j, topic := range criteria.Topics {
			if topic != nil {
				args = append(args, topic.Bytes())
				stmt += fmt.Sprintf(" AND topic%v = ?", j)
			}
		}
		stmt += " )"
	}
	if len(filter.CriteriaSet) > 0 {
		stmt += " )"
	}

	stmt, args = appendOrderAndLimit(stmt, args, filter.Order, filter.Options)
	return db.queryEvents(ctx, stmt, args...)
}

func (db *LogDB) FilterTransfers(ctx context.Context, filter *TransferFilter) ([]*Transfer, error) {
	const query = "SELECT " + transferColumns + " FROM transfer"
	if filter == nil {
		return db.queryTransfers(ctx, query+" ORDER BY seq ASC")
	}
	metricsHandleCommon(filter.Options, filter.Order, len(filter.CriteriaSet), "transfer")

	var args []any
	stmt := query + " WHERE 1"
	stmt, args = appendRange(stmt, args, filter.Range)

	if filter.CallID != nil {
		args = append(args, filter.CallID.Bytes())
		stmt += " AND callID = ?"
	}
	for i, criteria := range filter.CriteriaSet {
		if i == 0 {
			stmt += " AND (( 1"
		} else {
			stmt += " OR ( 1"
		}
		for _, c := range []struct {
			column string
			value  *thor.Address
		}{
			{"origin", criteria.Origin},
			{"token", criteria.Token},
			{"sender", criteria.Sender},
			{"recipient", criteria.Recipient},
		} {
			if c.value != nil {
				args = append(args, c.value.Bytes())
				stmt += " AND " + c.column + " = ?"
			}
		}
		stmt += " )"
	}
	if len(filter.CriteriaSet) > 0 {
		stmt += " )"
	}

	stmt, args = appendOrderAndLimit(stmt, args, filter.Order, filter.Options)
	return db.queryTransfers(ctx, stmt, args...)
}

func appendRange(stmt string, args []any, r *Range) (string, []any) {
	if r == nil {
		return stmt, args
	}
	if r.Unit == Time {
		args = append(args, r.From)
		stmt += " AND ledgerTime >= ?"
		if r.To >= r.From {
			args = append(args, r.To)
			stmt += " AND ledgerTime <= ?"
		}
		return stmt, args
	}

	from := uint32(min(r.From, math.MaxUint32))
	args = append(args, int64(newSequence(from, 0)))
	stmt += " AND seq >= ?"
	if r.To >= r.From {
		to := uint32(min(r.To, math.MaxUint32))
		args = append(args, int64(newSequence(to, math.MaxInt32)))
		stmt += " AND seq <= ?"
	}
	return stmt, args
}

func appendOrderAndLimit(stmt string, args []any, order Order, opts *Options) (string, []any) {
	if order == DESC {
		stmt += " ORDER BY seq DESC"
	} else {
		stmt += " ORDER BY seq ASC"
	}
	if opts != nil {
		stmt += " LIMIT ?, ?"
		args = append(args, opts.Offset, opts.Limit)
	}
	return stmt, args
}

func (db *LogDB) queryEvents(ctx context.Context, stmt string, args ...any) ([]*Event, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			seq        int64
			callID     []byte
			ledgerTime uint64
			origin     []byte
			address    []byte
			topics     [4][]byte
			data       []byte
		)
		if err := rows.Scan(
			&seq,
			&callID,
			&ledgerTime,
			&origin,
			&address,
			&topics[0],
			&topics[1],
			&topics[2],
			&topics[3],
			&data,
		); err != nil {
			return nil, err
		}
		event := &Event{
			LedgerSeq:  sequence(seq).LedgerSeq(),
			Index:      sequence(seq).Index(),
			LedgerTime: ledgerTime,
			CallID:     thor.BytesToBytes32(callID),
			Origin:     thor.BytesToAddress(origin),
			Address:    thor.BytesToAddress(address),
			Data:       data,
		}
		for i, topic := range topics {
			if len(topic) > 0 {
				h := thor.BytesToBytes32(topic)
				event.Topics[i] = &h
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (db *LogDB) queryTransfers(ctx context.Context, stmt string, args ...any) ([]*Transfer, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transfers []*Transfer
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			seq        int64
			callID     []byte
			ledgerTime uint64
			origin     []byte
			token      []byte
			sender     []byte
			recipient  []byte
			amount     []byte
		)
		if err := rows.Scan(
			&seq,
			&callID,
			&ledgerTime,
			&origin,
			&token,
			&sender,
			&recipient,
			&amount,
		); err != nil {
			return nil, err
		}
		transfers = append(transfers, &Transfer{
			LedgerSeq:  sequence(seq).LedgerSeq(),
			Index:      sequence(seq).Index(),
			LedgerTime: ledgerTime,
			CallID:     thor.BytesToBytes32(callID),
			Origin:     thor.BytesToAddress(origin),
			Token:      thor.BytesToAddress(token),
			Sender:     thor.BytesToAddress(sender),
			Recipient:  thor.BytesToAddress(recipient),
			Amount:     new(big.Int).SetBytes(amount),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return transfers, nil
}

func topicValue(topics []thor.Bytes32, i int) []byte {
	if i >= len(topics) {
		return nil
	}
	return topics[i].Bytes()
}

// Prepare starts a batch of logs produced by one ledger entry.
func (db *LogDB) Prepare(ledgerSeq uint32, ledgerTime uint64) *Batch {
	return &Batch{
		db:         db,
		ledgerSeq:  ledgerSeq,
		ledgerTime: ledgerTime,
	}
}

type pendingEvent struct {
	callID thor.Bytes32
	origin thor.Address
	event  *xenv.Event
}

type pendingTransfer struct {
	callID   thor.Bytes32
	origin   thor.Address
	transfer *xenv.Transfer
}

// Batch accumulates the logs of one ledger entry and writes them in one sql transaction.
type Batch struct {
	db         *LogDB
	ledgerSeq  uint32
	ledgerTime uint64
	events     []pendingEvent
	transfers  []pendingTransfer
}

func (b *Batch) ForCall(callID thor.Bytes32, origin thor.Address) struct {
	Insert func([]*xenv.Event, []*xenv.Transfer) *Batch
} {
	return struct {
		Insert func([]*xenv.Event, []*xenv.Transfer) *Batch
	}{
		func(events []*xenv.Event, transfers []*xenv.Transfer) *Batch {
			for _, ev := range events {
				b.events = append(b.events, pendingEvent{callID, origin, ev})
			}
			for _, tr := range transfers {
				b.transfers = append(b.transfers, pendingTransfer{callID, origin, tr})
			}
			return b
		},
	}
}

// Len returns the number of pending rows.
func (b *Batch) Len() int {
	return len(b.events) + len(b.transfers)
}

func (b *Batch) execInTx(proc func(*sql.Tx) error) (err error) {
	tx, err := b.db.db.Begin()
	if err != nil {
		return err
	}
	if err := proc(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (b *Batch) Commit() error {
	if b.Len() == 0 {
		return nil
	}
	start := time.Now()
	defer func() { metricWriteDuration().Observe(metrics.SinceMs(start)) }()

	eventStmt, err := b.db.stmtCache.Prepare("INSERT OR REPLACE INTO event(" + eventColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return errors.Wrap(err, "prepare event insert")
	}
	transferStmt, err := b.db.stmtCache.Prepare("INSERT OR REPLACE INTO transfer(" + transferColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return errors.Wrap(err, "prepare transfer insert")
	}

	return b.execInTx(func(tx *sql.Tx) error {
		insertEvent := tx.Stmt(eventStmt)
		for i, pe := range b.events {
			ev := pe.event
			if _, err := insertEvent.Exec(
				int64(newSequence(b.ledgerSeq, uint32(i))),
				pe.callID.Bytes(),
				b.ledgerTime,
				pe.origin.Bytes(),
				ev.Address.Bytes(),
				topicValue(ev.Topics, 0),
				topicValue(ev.Topics, 1),
				topicValue(ev.Topics, 2),
				topicValue(ev.Topics, 3),
				ev.Data,
			); err != nil {
				return err
			}
		}

		insertTransfer := tx.Stmt(transferStmt)
		for i, pt := range b.transfers {
			tr := pt.transfer
			if _, err := insertTransfer.Exec(
				int64(newSequence(b.ledgerSeq, uint32(i))),
				pt.callID.Bytes(),
				b.ledgerTime,
				pt.origin.Bytes(),
				tr.Token.Bytes(),
				tr.Sender.Bytes(),
				tr.Recipient.Bytes(),
				tr.Amount.Bytes(),
			); err != nil {
				return err
			}
		}
		return nil
	})
}
