// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package types

import (
	"crypto/ecdsa"
	"encoding/binary"
	"encoding/json"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/vechain/oraclenet/thor"
)

// Envelope carries a signed payload of a mutating request.
// The nonce must be greater than the last one accepted from the signer.
type Envelope struct {
	Nonce     uint64          `json:"nonce"`
	Payload   json.RawMessage `json:"payload"`
	Signature hexutil.Bytes   `json:"signature"`
}

// SigningHash is the hash an envelope signature covers.
// A signature is only valid for the method and path it was made for.
func SigningHash(method, path string, nonce uint64, payload []byte) thor.Bytes32 {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], nonce)
	return thor.Blake2b([]byte(method), []byte(path), b[:], payload)
}

// SigningHash returns the hash the envelope signature must cover.
func (e *Envelope) SigningHash(method, path string) thor.Bytes32 {
	return SigningHash(method, path, e.Nonce, e.Payload)
}

// Signer recovers the signer of the envelope.
func (e *Envelope) Signer(method, path string) (thor.Address, error) {
	if err := validateSignature(e.Signature); err != nil {
		return thor.Address{}, err
	}
	return thor.SignerOf(e.SigningHash(method, path), e.Signature)
}

// validateSignature rejects malformed and high-S signatures, so that a signed
// request has exactly one valid encoding.
func validateSignature(sig []byte) error {
	if len(sig) != crypto.SignatureLength {
		return errors.New("invalid signature length")
	}
	var r, s secp256k1.ModNScalar
	if overflow := r.SetByteSlice(sig[:32]); overflow || r.IsZero() {
		return errors.New("invalid signature r")
	}
	if overflow := s.SetByteSlice(sig[32:64]); overflow || s.IsZero() || s.IsOverHalfOrder() {
		return errors.New("invalid signature s")
	}
	if sig[64] > 1 {
		return errors.New("invalid signature recovery id")
	}
	return nil
}

// NewEnvelope encodes payload and signs it with key.
func NewEnvelope(key *ecdsa.PrivateKey, method, path string, nonce uint64, payload any) (*Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "encode payload")
	}
	env := &Envelope{Nonce: nonce, Payload: data}
	hash := env.SigningHash(method, path)
	sig, err := crypto.Sign(hash[:], key)
	if err != nil {
		return nil, errors.Wrap(err, "sign")
	}
	env.Signature = sig
	return env, nil
}
