// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"context"
	"encoding/binary"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/vechain/oraclenet/builtin/reverts"
	"github.com/vechain/oraclenet/builtin/solidity"
	"github.com/vechain/oraclenet/co"
	"github.com/vechain/oraclenet/kv"
	"github.com/vechain/oraclenet/log"
	"github.com/vechain/oraclenet/logdb"
	"github.com/vechain/oraclenet/metrics"
	"github.com/vechain/oraclenet/state"
	"github.com/vechain/oraclenet/thor"
	"github.com/vechain/oraclenet/xenv"
)

var (
	logger = log.WithContext("pkg", "runtime")

	metricCallsCount     = metrics.LazyLoadCounterVec("calls_count", []string{"method", "status"})
	metricCallDuration   = metrics.LazyLoadHistogram("call_duration_ms", metrics.BucketCallDuration)
	metricLedgerSequence = metrics.LazyLoadGauge("ledger_sequence")
)

// Address holds the runtime's own bookkeeping in state.
var Address = thor.BytesToAddress([]byte("Runtime"))

var (
	slotHead   = thor.BytesToBytes32([]byte("head"))
	slotNonces = thor.BytesToBytes32([]byte("nonces"))

	errStaleNonce = reverts.New(reverts.KindAuthorization, "stale nonce")
	errGenesisRun = errors.New("genesis already executed")
)

// Head is the latest committed ledger entry.
type Head struct {
	Sequence uint32
	Time     uint64
}

// Call is a request to mutate state.
// A zero Signer makes an anonymous call, which can not pass any auth check.
type Call struct {
	Method string
	Signer thor.Address
	Nonce  uint64
}

// Receipt describes a committed call.
type Receipt struct {
	LedgerSeq  uint32
	LedgerTime uint64
	CallID     thor.Bytes32
	Method     string
	Origin     thor.Address
	StateHash  thor.Bytes32 // digest of the state changes
	Events     []*xenv.Event
	Transfers  []*xenv.Transfer
}

// Runtime serializes mutating calls over the committed state.
// Each successful call commits one ledger entry.
type Runtime struct {
	db     kv.Store
	cache  *state.Cache
	logDB  *logdb.LogDB
	clock  func() uint64
	lock   sync.RWMutex
	head   Head
	ticker co.Signal
}

// New opens a runtime over db. cache and logDB are optional.
func New(db kv.Store, cache *state.Cache, logDB *logdb.LogDB, clock func() uint64) (*Runtime, error) {
	rt := &Runtime{
		db:    db,
		cache: cache,
		logDB: logDB,
		clock: clock,
	}
	head, err := rt.meta(state.New(db, cache)).head.Get()
	if err != nil {
		return nil, errors.Wrap(err, "load head")
	}
	rt.head = head
	metricLedgerSequence().Set(int64(head.Sequence))
	return rt, nil
}

// Head returns the latest committed ledger entry.
func (rt *Runtime) Head() Head {
	rt.lock.RLock()
	defer rt.lock.RUnlock()
	return rt.head
}

// NewTicker returns a waiter signaled on every new ledger entry.
func (rt *Runtime) NewTicker() co.Waiter {
	return rt.ticker.NewWaiter()
}

// LogDB returns the events and transfers index, nil if not configured.
func (rt *Runtime) LogDB() *logdb.LogDB {
	return rt.logDB
}

// Now returns the network time. It never goes behind the head.
func (rt *Runtime) Now() uint64 {
	rt.lock.RLock()
	defer rt.lock.RUnlock()
	return rt.now()
}

func (rt *Runtime) now() uint64 {
	return max(rt.clock(), rt.head.Time)
}

// Query runs fn against the committed state. Changes made by fn are discarded.
func (rt *Runtime) Query(ctx context.Context, fn func(env *xenv.Environment) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rt.lock.RLock()
	defer rt.lock.RUnlock()

	env := xenv.New(
		state.New(rt.db, rt.cache),
		&xenv.BlockContext{Number: rt.head.Sequence, Time: rt.now()},
		nil,
	)
	return fn(env)
}

// Execute runs fn as one atomic call. On error nothing is committed.
func (rt *Runtime) Execute(ctx context.Context, call *Call, fn func(env *xenv.Environment) error) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	rt.lock.Lock()
	receipt, err := rt.execute(call, false, fn)
	rt.lock.Unlock()

	status := "ok"
	switch {
	case reverts.IsRevertErr(err):
		status = "reverted"
	case err != nil:
		status = "error"
	}
	metricCallsCount().AddWithLabel(1, map[string]string{"method": call.Method, "status": status})
	metricCallDuration().Observe(metrics.SinceMs(start))

	if err != nil {
		logger.Debug("call failed", "method", call.Method, "signer", call.Signer, "err", err)
		return nil, err
	}
	rt.ticker.Broadcast()
	return receipt, nil
}

// Genesis runs fn as the first ledger entry with signers authenticated and no nonce check.
// It fails if the ledger is not empty.
func (rt *Runtime) Genesis(signers []thor.Address, fn func(env *xenv.Environment) error) (*Receipt, error) {
	rt.lock.Lock()
	defer rt.lock.Unlock()

	if rt.head.Sequence != 0 {
		return nil, errGenesisRun
	}
	call := &Call{Method: "genesis"}
	if len(signers) > 0 {
		call.Signer = signers[0]
	}
	return rt.execute(call, true, func(env *xenv.Environment) error {
		env.CallContext().Signers = signers
		return fn(env)
	})
}

func (rt *Runtime) execute(call *Call, genesis bool, fn func(env *xenv.Environment) error) (*Receipt, error) {
	var (
		st      = state.New(rt.db, rt.cache)
		meta    = rt.meta(st)
		head    = Head{Sequence: rt.head.Sequence + 1, Time: rt.now()}
		signers []thor.Address
	)
	if !call.Signer.IsZero() {
		signers = []thor.Address{call.Signer}
	}

	callCtx := &xenv.CallContext{
		ID:      callID(head.Sequence, call),
		Origin:  call.Signer,
		Signers: signers,
	}
	env := xenv.New(st, &xenv.BlockContext{Number: head.Sequence, Time: head.Time}, callCtx)

	checkpoint := st.NewCheckpoint()
	if err := rt.run(env, meta, call, genesis, fn); err != nil {
		st.RevertTo(checkpoint)
		return nil, err
	}
	if err := meta.head.Set(head); err != nil {
		return nil, err
	}

	stage := st.Stage()
	if err := stage.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit state")
	}
	rt.head = head
	metricLedgerSequence().Set(int64(head.Sequence))

	receipt := &Receipt{
		LedgerSeq:  head.Sequence,
		LedgerTime: head.Time,
		CallID:     callCtx.ID,
		Method:     call.Method,
		Origin:     call.Signer,
		StateHash:  stage.Hash(),
		Events:     env.Events(),
		Transfers:  env.Transfers(),
	}

	if rt.logDB != nil {
		batch := rt.logDB.Prepare(head.Sequence, head.Time)
		batch.ForCall(receipt.CallID, receipt.Origin).Insert(receipt.Events, receipt.Transfers)
		// state is already committed, the index only lags behind
		if err := batch.Commit(); err != nil {
			logger.Error("failed to write logs", "seq", head.Sequence, "err", err)
		}
	}

	logger.Debug("call committed", "method", call.Method, "seq", head.Sequence, "changes", stage.Len(), "events", len(receipt.Events))
	return receipt, nil
}

func (rt *Runtime) run(env *xenv.Environment, meta *meta, call *Call, genesis bool, fn func(env *xenv.Environment) error) error {
	if !genesis && !call.Signer.IsZero() {
		last, err := meta.nonces.Get(call.Signer)
		if err != nil {
			return err
		}
		if call.Nonce <= last {
			return errStaleNonce
		}
		if err := meta.nonces.Set(call.Signer, call.Nonce); err != nil {
			return err
		}
	}
	return fn(env)
}

// Nonce returns the last nonce accepted from signer, 0 if none.
func (rt *Runtime) Nonce(signer thor.Address) (uint64, error) {
	rt.lock.RLock()
	defer rt.lock.RUnlock()
	return rt.meta(state.New(rt.db, rt.cache)).nonces.Get(signer)
}

type meta struct {
	head   *solidity.Value[Head]
	nonces *solidity.Mapping[thor.Address, uint64]
}

func (rt *Runtime) meta(st *state.State) *meta {
	sctx := solidity.NewContext(Address, st)
	return &meta{
		head:   solidity.NewValue[Head](sctx, slotHead),
		nonces: solidity.NewMapping[thor.Address, uint64](sctx, slotNonces),
	}
}

func callID(seq uint32, call *Call) thor.Bytes32 {
	var b [12]byte
	binary.BigEndian.PutUint32(b[:4], seq)
	binary.BigEndian.PutUint64(b[4:], call.Nonce)
	return thor.Blake2b(b[:], []byte(call.Method), call.Signer.Bytes())
}
