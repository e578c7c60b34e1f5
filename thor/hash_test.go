// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlake2b(t *testing.T) {
	assert.Equal(t, Blake2b([]byte("ab")), Blake2b([]byte("a"), []byte("b")))
	assert.NotEqual(t, Blake2b([]byte("a")), Blake2b([]byte("b")))
	assert.NotEqual(t, Blake2b([]byte("ab")), Blake2b([]byte("ba")))
}

func TestKeccak256(t *testing.T) {
	// keccak256("")
	assert.Equal(t, "0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470", Keccak256().String())
	assert.Equal(t, Keccak256([]byte("FeedUpdated")), Keccak256([]byte("Feed"), []byte("Updated")))
}
