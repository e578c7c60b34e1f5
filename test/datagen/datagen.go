// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package datagen generates random fixtures for tests.
package datagen

import (
	"crypto/ecdsa"
	"crypto/rand"
	"fmt"
	"math/big"
	mathrand "math/rand/v2"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/vechain/oraclenet/thor"
)

// Account is a key pair with its derived address.
type Account struct {
	PrivateKey *ecdsa.PrivateKey
	Address    thor.Address
}

// RandAccount generates a fresh secp256k1 account.
func RandAccount() Account {
	key, err := crypto.GenerateKey()
	if err != nil {
		panic(err)
	}
	return Account{key, thor.Address(crypto.PubkeyToAddress(key.PublicKey))}
}

func RandomHash() (b thor.Bytes32) {
	rand.Read(b[:])
	return
}

func RandAddress() (addr thor.Address) {
	rand.Read(addr[:])
	return
}

// RandFeedID returns a feed id matching [A-Z0-9_]+.
func RandFeedID() string {
	return fmt.Sprintf("FEED_%d", mathrand.Uint32()) //#nosec G404
}

func RandIntN(n int) int {
	return mathrand.N(n) //#nosec G404
}

// RandValue returns a signed value in [-n, n).
func RandValue(n int64) *big.Int {
	return big.NewInt(mathrand.Int64N(2*n) - n) //#nosec G404
}
