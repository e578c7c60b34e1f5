// Copyright (c) 2021 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"sync"

	"github.com/syndtr/goleveldb/leveldb/util"
)

// Bucket provides logical bucket for kv store.
type Bucket string

// NewGetter creates a bucket getter from the source getter.
func (b Bucket) NewGetter(src Getter) Getter {
	return &bucketGetter{b, src}
}

// NewPutter creates a bucket putter from the source putter.
func (b Bucket) NewPutter(src Putter) Putter {
	return &bucketPutter{b, src}
}

// NewStore creates a bucket store from the source store.
func (b Bucket) NewStore(src Store) Store {
	return &bucketStore{
		bucketGetter{b, src},
		bucketPutter{b, src},
		src,
	}
}

// withKey calls fn with the bucket-prefixed key, reusing pooled buffers.
func (b Bucket) withKey(key []byte, fn func(k []byte) error) error {
	buf := bufPool.Get().(*buf)
	defer bufPool.Put(buf)
	buf.k = append(append(buf.k[:0], b...), key...)
	return fn(buf.k)
}

type bucketGetter struct {
	b   Bucket
	src Getter
}

func (g *bucketGetter) Get(key []byte) (val []byte, err error) {
	err = g.b.withKey(key, func(k []byte) error {
		val, err = g.src.Get(k)
		return err
	})
	return
}

func (g *bucketGetter) Has(key []byte) (has bool, err error) {
	err = g.b.withKey(key, func(k []byte) error {
		has, err = g.src.Has(k)
		return err
	})
	return
}

func (g *bucketGetter) IsNotFound(err error) bool {
	return g.src.IsNotFound(err)
}

type bucketPutter struct {
	b   Bucket
	src Putter
}

func (p *bucketPutter) Put(key, val []byte) error {
	return p.b.withKey(key, func(k []byte) error {
		// copy since the key buffer goes back to the pool
		return p.src.Put(append([]byte(nil), k...), val)
	})
}

func (p *bucketPutter) Delete(key []byte) error {
	return p.b.withKey(key, func(k []byte) error {
		return p.src.Delete(append([]byte(nil), k...))
	})
}

type bucketStore struct {
	bucketGetter
	bucketPutter
	src Store
}

func (s *bucketStore) NewBatch() Batch {
	batch := s.src.NewBatch()
	return &bucketBatch{bucketPutter{s.bucketPutter.b, batch}, batch}
}

func (s *bucketStore) Iterate(r Range) Iterator {
	b := s.bucketGetter.b
	rng := Range{
		Start: append([]byte(b), r.Start...),
	}
	if len(r.Limit) == 0 {
		rng.Limit = util.BytesPrefix([]byte(b)).Limit
	} else {
		rng.Limit = append([]byte(b), r.Limit...)
	}
	return &bucketIterator{s.src.Iterate(rng), len(b)}
}

type bucketBatch struct {
	bucketPutter
	batch Batch
}

func (b *bucketBatch) Len() int     { return b.batch.Len() }
func (b *bucketBatch) Write() error { return b.batch.Write() }

type bucketIterator struct {
	Iterator
	prefixLen int
}

// Key strips the bucket prefix.
func (it *bucketIterator) Key() []byte {
	return it.Iterator.Key()[it.prefixLen:]
}

type buf struct {
	k []byte
}

var bufPool = sync.Pool{
	New: func() any {
		return &buf{}
	},
}
