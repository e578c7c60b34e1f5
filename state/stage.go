// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"slices"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/oraclenet/kv"
	"github.com/vechain/oraclenet/thor"
)

// Stage abstracts changes on the storage.
type Stage struct {
	store   kv.Store
	cache   *Cache
	changes map[storageKey]rlp.RawValue
}

// Len returns the number of changed slots.
func (s *Stage) Len() int {
	return len(s.changes)
}

// Hash computes a digest of the changes, independent of the order they were made.
func (s *Stage) Hash() thor.Bytes32 {
	keys := make([]storageKey, 0, len(s.changes))
	for k := range s.changes {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b storageKey) int {
		if c := bytes.Compare(a.addr[:], b.addr[:]); c != 0 {
			return c
		}
		return bytes.Compare(a.key[:], b.key[:])
	})

	h := thor.NewBlake2b()
	for _, k := range keys {
		h.Write(k.dbKey())
		h.Write(s.changes[k])
	}
	var sum thor.Bytes32
	h.Sum(sum[:0])
	return sum
}

// Commit writes all changes atomically.
func (s *Stage) Commit() error {
	if len(s.changes) == 0 {
		return nil
	}
	batch := s.store.NewBatch()
	for k, v := range s.changes {
		var err error
		if len(v) == 0 {
			err = batch.Delete(k.dbKey())
		} else {
			err = batch.Put(k.dbKey(), v)
		}
		if err != nil {
			return &Error{err}
		}
	}
	if err := batch.Write(); err != nil {
		return &Error{err}
	}
	if s.cache != nil {
		for k, v := range s.changes {
			s.cache.Add(k, v)
		}
	}
	return nil
}
