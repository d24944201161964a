// Copyright (c) 2026 The Tranchess Go developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reverts holds the revert-style errors raised when a staking
// operation violates one of the ledger's preconditions. A revert aborts the
// whole operation with no state change; it never indicates an
// infrastructure failure.
package reverts

import (
	"errors"
)

type ErrRevert struct {
	message string
}

func New(message string) *ErrRevert {
	return &ErrRevert{
		message: message,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

// IsRevertErr returns whether err is (or wraps) an ErrRevert.
func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// Logic-invariant violations shared across the accounting services.
var (
	// ErrDivisionByZero is raised when a denominator that a collaborator
	// guarantees to be nonzero turns out to be zero.
	ErrDivisionByZero = New("division by zero")

	// ErrStaleRebalanceReplay is raised when epoch catch-up is asked to
	// apply an epoch at or before an account's already settled epoch.
	ErrStaleRebalanceReplay = New("stale rebalance replay")
)
