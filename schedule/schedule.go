// Copyright (c) 2026 The Tranchess Go developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package schedule carries reference implementations of the emission-rate
// and pool-weight collaborators. The core engine only depends on the
// interfaces; these types serve the daemon and the tests.
package schedule

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/tranchess/staking-go/chess"
)

// Weekly is an emission schedule defined by a table of weekly token
// amounts, in wei, starting at a fixed week boundary. Weeks beyond the
// table emit nothing.
type Weekly struct {
	start   uint64
	amounts []*big.Int
}

// NewWeekly builds a weekly schedule. start is aligned down to its week
// boundary. Each table entry is the total amount emitted over that week.
func NewWeekly(start uint64, amounts []*big.Int) (*Weekly, error) {
	for i, amount := range amounts {
		if amount == nil || amount.Sign() < 0 {
			return nil, errors.Errorf("invalid weekly amount at index %d", i)
		}
	}
	return &Weekly{
		start:   chess.StartOfWeek(start),
		amounts: amounts,
	}, nil
}

// Rate returns the per-second emission rate of the week beginning at
// weekStart. Weeks before the schedule start or past the table end rate
// zero.
func (w *Weekly) Rate(weekStart uint64) (*big.Int, error) {
	weekStart = chess.StartOfWeek(weekStart)
	if weekStart < w.start {
		return new(big.Int), nil
	}
	index := (weekStart - w.start) / chess.WeekSeconds
	if index >= uint64(len(w.amounts)) {
		return new(big.Int), nil
	}
	rate := new(big.Int).Set(w.amounts[index])
	return rate.Div(rate, new(big.Int).SetUint64(chess.WeekSeconds)), nil
}

// Fixed is a schedule emitting at a constant per-second rate forever.
type Fixed struct {
	rate *big.Int
}

// NewFixed builds a constant-rate schedule. rate is in wei per second.
func NewFixed(rate *big.Int) *Fixed {
	return &Fixed{rate: new(big.Int).Set(rate)}
}

func (f *Fixed) Rate(_ uint64) (*big.Int, error) {
	return new(big.Int).Set(f.rate), nil
}
