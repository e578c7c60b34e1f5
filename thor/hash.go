// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"hash"

	"github.com/ethereum/go-ethereum/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// NewBlake2b return blake2b-256 hash.
func NewBlake2b() hash.Hash {
	h, _ := blake2b.New256(nil)
	return h
}

// Blake2b computes the blake2b-256 checksum of the concatenated data.
// Feed storage keys, event topics and signing hashes all derive from it.
func Blake2b(data ...[]byte) (b Bytes32) {
	if len(data) == 1 {
		return blake2b.Sum256(data[0])
	}
	h := NewBlake2b()
	for _, d := range data {
		h.Write(d)
	}
	h.Sum(b[:0])
	return
}

// Keccak256 computes the legacy keccak-256 checksum of the concatenated data,
// as used for event ids.
func Keccak256(data ...[]byte) (b Bytes32) {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	h.Sum(b[:0])
	return
}
