// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"crypto/ecdsa"
	"math/big"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/vechain/oraclenet/thor"
)

// DevAccount account for development.
type DevAccount struct {
	Address    thor.Address
	PrivateKey *ecdsa.PrivateKey
}

var devAccounts atomic.Value

// DevAccounts returns pre-alloced accounts for the dev network.
// The first one is the admin, the next three report for the dev feeds.
func DevAccounts() []DevAccount {
	if accs := devAccounts.Load(); accs != nil {
		return accs.([]DevAccount)
	}

	var accs []DevAccount
	privKeys := []string{
		"dce1443bd2ef0c2631adc1c67e5c93f13dc23a41c18b536effbbdcbcdb96fb65",
		"321d6443bc6177273b5abf54210fe806d451d6b7973bccc2384ef78bbcd0bf51",
		"2d7c882bad2a01105e36dda3646693bc1aaaa45b0ed63fb0ce23c060294f3af2",
		"593537225b037191d322c3b1df585fb1e5100811b71a6f7fc7e29cca1333483e",
		"ca7b25fc980c759df5f3ce17a3d881d6e19a38e651fc4315fc08917edab41058",
	}
	for _, str := range privKeys {
		pk, err := crypto.HexToECDSA(str)
		if err != nil {
			panic(err)
		}
		addr := crypto.PubkeyToAddress(pk.PublicKey)
		accs = append(accs, DevAccount{thor.Address(addr), pk})
	}
	devAccounts.Store(accs)
	return accs
}

func amount(v int64) *math.HexOrDecimal256 {
	return (*math.HexOrDecimal256)(new(big.Int).Mul(big.NewInt(v), big.NewInt(1e18)))
}

// NewDevnet creates an initialized network with funded dev accounts and two feeds.
func NewDevnet() *Genesis {
	accs := DevAccounts()

	gen := &Genesis{
		Name:       "devnet",
		Admin:      accs[0].Address,
		Initialize: true,
		RewardPool: amount(1_000_000),
	}
	for _, acc := range accs {
		gen.Accounts = append(gen.Accounts, Account{
			Address: acc.Address,
			Staking: amount(10_000),
		})
	}

	oracles := []thor.Address{accs[1].Address, accs[2].Address, accs[3].Address}
	gen.Feeds = []Feed{
		{
			ID:          "BTC_USD",
			Type:        "price",
			Description: "BTC / USD",
			Decimals:    8,
			MinOracles:  2,
			MaxOracles:  3,
			Reward:      amount(1),
			Oracles:     oracles,
		},
		{
			ID:          "ETH_USD",
			Type:        "price",
			Description: "ETH / USD",
			Decimals:    8,
			MinOracles:  2,
			MaxOracles:  3,
			Reward:      amount(1),
			Oracles:     oracles,
		},
	}
	return gen
}
