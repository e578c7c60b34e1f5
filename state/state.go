// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/oraclenet/cache"
	"github.com/vechain/oraclenet/kv"
	"github.com/vechain/oraclenet/stackedmap"
	"github.com/vechain/oraclenet/thor"
)

// StorageBucket is the kv bucket holding all contract storage.
const StorageBucket = kv.Bucket("s")

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

type storageKey struct {
	addr thor.Address
	key  thor.Bytes32
}

func (k storageKey) dbKey() []byte {
	return append(k.addr.Bytes(), k.key[:]...)
}

// Cache is the read cache of committed storage. Every state writing to a store
// must share the store's cache, a commit only refreshes the cache of its own state.
type Cache = cache.LRU[storageKey, rlp.RawValue]

// NewCache creates a storage cache holding up to size slots.
func NewCache(size int) (*Cache, error) {
	return cache.NewLRU[storageKey, rlp.RawValue]("storage", size)
}

// State manages contract storage.
// Changes are kept in memory until staged and committed.
type State struct {
	store kv.Store
	cache *Cache
	sm    *stackedmap.StackedMap[storageKey, rlp.RawValue]
}

// New create state object. c is optional.
func New(db kv.Store, c *Cache) *State {
	s := &State{
		store: StorageBucket.NewStore(db),
		cache: c,
	}
	s.sm = stackedmap.New(s.load)
	return s
}

// load implements stackedmap.MapGetter.
func (s *State) load(key storageKey) (rlp.RawValue, bool, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			return v, true, nil
		}
	}
	val, err := s.store.Get(key.dbKey())
	if err != nil {
		if !s.store.IsNotFound(err) {
			return nil, false, err
		}
		val = nil
	}
	if s.cache != nil {
		s.cache.Add(key, val)
	}
	return val, true, nil
}

// GetStorage returns storage value for the given address and key.
func (s *State) GetStorage(addr thor.Address, key thor.Bytes32) (thor.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return thor.Bytes32{}, err
	}
	if len(raw) == 0 {
		return thor.Bytes32{}, nil
	}
	kind, content, _, err := rlp.Split(raw)
	if err != nil {
		return thor.Bytes32{}, &Error{err}
	}
	if kind == rlp.List {
		// special case for rlp list, it should be customized storage value
		// return hash of raw data
		return thor.Blake2b(raw), nil
	}
	return thor.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given address and key.
func (s *State) SetStorage(addr thor.Address, key, value thor.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(addr, key, v)
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr thor.Address, key thor.Bytes32) (rlp.RawValue, error) {
	data, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return data, nil
}

// SetRawStorage set storage value in rlp raw.
func (s *State) SetRawStorage(addr thor.Address, key thor.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by end will be absorbed by State instance.
func (s *State) EncodeStorage(addr thor.Address, key thor.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be absorbed by State instance.
func (s *State) DecodeStorage(addr thor.Address, key thor.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

// Stage collects the cumulative changes, to be committed into the store.
func (s *State) Stage() *Stage {
	changes := make(map[storageKey]rlp.RawValue)
	// later puts override earlier ones
	s.sm.Journal(func(k storageKey, v rlp.RawValue) bool {
		changes[k] = v
		return true
	})
	return &Stage{
		store:   s.store,
		cache:   s.cache,
		changes: changes,
	}
}
