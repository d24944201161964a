// Copyright (c) 2026 The Tranchess Go developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package epoch

import (
	"math/big"
)

// Record captures one rebalance distribution: the total amount of each
// asset bucket handed out and the raw total stake outstanding at that
// moment. Records are immutable once written.
type Record struct {
	AmountQueen  *big.Int
	AmountBishop *big.Int
	AmountRook   *big.Int
	AmountQuote  *big.Int
	TotalStake   *big.Int
}

// IsEmpty returns whether the record was never written.
func (r *Record) IsEmpty() bool {
	return r.TotalStake == nil
}

func (r *Record) normalize() *Record {
	if r.AmountQueen == nil {
		r.AmountQueen = new(big.Int)
	}
	if r.AmountBishop == nil {
		r.AmountBishop = new(big.Int)
	}
	if r.AmountRook == nil {
		r.AmountRook = new(big.Int)
	}
	if r.AmountQuote == nil {
		r.AmountQuote = new(big.Int)
	}
	if r.TotalStake == nil {
		r.TotalStake = new(big.Int)
	}
	return r
}

// Buckets holds an account's carried, unclaimed entitlement of the three
// share assets and the quote asset.
type Buckets struct {
	Queen  *big.Int
	Bishop *big.Int
	Rook   *big.Int
	Quote  *big.Int
}

// NewBuckets returns zeroed buckets.
func NewBuckets() *Buckets {
	return &Buckets{
		Queen:  new(big.Int),
		Bishop: new(big.Int),
		Rook:   new(big.Int),
		Quote:  new(big.Int),
	}
}

// IsZero returns whether all four buckets are zero.
func (b *Buckets) IsZero() bool {
	return b.Queen.Sign() == 0 && b.Bishop.Sign() == 0 && b.Rook.Sign() == 0 && b.Quote.Sign() == 0
}
