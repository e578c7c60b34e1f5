// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
)

// Kind classifies a revert, so callers can map it to a response.
type Kind int

const (
	KindValidation Kind = iota
	KindAuthorization
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not-found"
	case KindConflict:
		return "conflict"
	default:
		return "validation"
	}
}

// ErrRevert is a rejected operation. All state changes of the
// operation are rolled back when it is returned.
type ErrRevert struct {
	kind    Kind
	message string
}

func New(kind Kind, message string) *ErrRevert {
	return &ErrRevert{
		kind:    kind,
		message: message,
	}
}

// NewRequireError creates a validation revert.
func NewRequireError(message string) *ErrRevert {
	return New(KindValidation, message)
}

func (e *ErrRevert) Error() string {
	return e.message
}

func (e *ErrRevert) Kind() Kind {
	return e.kind
}

// Is matches reverts by kind and message, so sentinel reverts work with errors.Is.
func (e *ErrRevert) Is(target error) bool {
	var t *ErrRevert
	if !errors.As(target, &t) || t == nil {
		return false
	}
	return e.kind == t.kind && e.message == t.message
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	if errors.As(e, &ve) {
		return ve != nil
	}
	return false
}

// KindOf returns the kind of a revert error.
// ok is false if err is not a revert.
func KindOf(err error) (kind Kind, ok bool) {
	var ve *ErrRevert
	if errors.As(err, &ve) && ve != nil {
		return ve.kind, true
	}
	return 0, false
}
