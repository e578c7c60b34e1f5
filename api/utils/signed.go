// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/oraclenet/api/types"
	"github.com/vechain/oraclenet/cache"
	"github.com/vechain/oraclenet/runtime"
	"github.com/vechain/oraclenet/thor"
	"github.com/vechain/oraclenet/xenv"
)

// Signers recovers the signers of request envelopes.
// Recovered signers are cached by signature, retried requests skip the recovery.
type Signers struct {
	cache *cache.LRU[thor.Bytes32, thor.Address]
}

// NewSigners creates a Signers with a cache of size entries.
func NewSigners(size int) (*Signers, error) {
	c, err := cache.NewLRU[thor.Bytes32, thor.Address]("signers", size)
	if err != nil {
		return nil, err
	}
	return &Signers{cache: c}, nil
}

func (s *Signers) recover(env *types.Envelope, method, path string) (thor.Address, error) {
	hash := env.SigningHash(method, path)
	key := thor.Blake2b(hash[:], env.Signature)
	if signer, ok := s.cache.Get(key); ok {
		return signer, nil
	}
	signer, err := env.Signer(method, path)
	if err != nil {
		return thor.Address{}, err
	}
	s.cache.Add(key, signer)
	return signer, nil
}

// Parse reads a signed envelope from req and decodes the payload into v.
func (s *Signers) Parse(req *http.Request, v any) (signer thor.Address, nonce uint64, err error) {
	var env types.Envelope
	if err := ParseJSON(req.Body, &env); err != nil {
		return thor.Address{}, 0, BadRequest(errors.WithMessage(err, "body"))
	}
	if len(env.Payload) == 0 {
		return thor.Address{}, 0, BadRequest(errors.New("payload: required"))
	}
	signer, err = s.recover(&env, req.Method, req.URL.Path)
	if err != nil {
		return thor.Address{}, 0, Forbidden(errors.WithMessage(err, "signature"))
	}
	if err := ParseJSON(bytes.NewReader(env.Payload), v); err != nil {
		return thor.Address{}, 0, BadRequest(errors.WithMessage(err, "payload"))
	}
	return signer, env.Nonce, nil
}

// Call executes a signed request as one ledger entry and responds with the receipt.
// The value returned by fn is attached as the receipt result.
func Call(
	w http.ResponseWriter,
	req *http.Request,
	rt *runtime.Runtime,
	signers *Signers,
	payload any,
	fn func(env *xenv.Environment) (any, error),
) error {
	signer, nonce, err := signers.Parse(req, payload)
	if err != nil {
		return err
	}
	call := &runtime.Call{
		Method: routeName(req),
		Signer: signer,
		Nonce:  nonce,
	}

	var result any
	receipt, err := rt.Execute(req.Context(), call, func(env *xenv.Environment) error {
		var err error
		result, err = fn(env)
		return err
	})
	if err != nil {
		return err
	}
	resp, err := types.NewReceipt(receipt, result)
	if err != nil {
		return err
	}
	return WriteJSON(w, resp)
}

// Query runs fn against the committed state and responds with its result.
func Query(w http.ResponseWriter, req *http.Request, rt *runtime.Runtime, fn func(env *xenv.Environment) (any, error)) error {
	var result any
	if err := rt.Query(req.Context(), func(env *xenv.Environment) error {
		var err error
		result, err = fn(env)
		return err
	}); err != nil {
		return err
	}
	return WriteJSON(w, result)
}

func routeName(req *http.Request) string {
	if route := mux.CurrentRoute(req); route != nil && route.GetName() != "" {
		return route.GetName()
	}
	return req.URL.Path
}

// MustMarshal is used by tests to build request bodies.
func MustMarshal(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
