// Copyright (c) 2026 The Tranchess Go developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package schedule

import (
	"math/big"
	"sync"

	"github.com/pkg/errors"

	"github.com/tranchess/staking-go/chess"
)

// FixedWeight is a weight oracle reporting the same fraction for every
// pool and week.
type FixedWeight struct {
	weight *big.Int
}

// NewFixedWeight builds a constant-weight oracle. weight is an 18-decimal
// fraction between 0 and 1e18 inclusive.
func NewFixedWeight(weight *big.Int) (*FixedWeight, error) {
	if weight.Sign() < 0 || weight.Cmp(chess.UnitWei()) > 0 {
		return nil, errors.New("weight out of range")
	}
	return &FixedWeight{weight: new(big.Int).Set(weight)}, nil
}

func (f *FixedWeight) RelativeWeight(_ chess.Address, _ uint64) (*big.Int, error) {
	return new(big.Int).Set(f.weight), nil
}

// WeightTable is a weight oracle with per-week entries and a fallback.
// A week's weight becomes immutable once queried, so repeated lookups for
// the same week always agree even if the table changes underneath.
type WeightTable struct {
	mu       sync.Mutex
	entries  map[uint64]*big.Int
	pinned   map[uint64]*big.Int
	fallback *big.Int
}

// NewWeightTable builds an empty table with the given fallback weight.
func NewWeightTable(fallback *big.Int) (*WeightTable, error) {
	if fallback.Sign() < 0 || fallback.Cmp(chess.UnitWei()) > 0 {
		return nil, errors.New("weight out of range")
	}
	return &WeightTable{
		entries:  make(map[uint64]*big.Int),
		pinned:   make(map[uint64]*big.Int),
		fallback: new(big.Int).Set(fallback),
	}, nil
}

// Set assigns the weight of the week beginning at weekStart. Weeks already
// served to a caller cannot be changed.
func (t *WeightTable) Set(weekStart uint64, weight *big.Int) error {
	if weight.Sign() < 0 || weight.Cmp(chess.UnitWei()) > 0 {
		return errors.New("weight out of range")
	}
	weekStart = chess.StartOfWeek(weekStart)

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.pinned[weekStart]; ok {
		return errors.Errorf("weight of week %d already served", weekStart)
	}
	t.entries[weekStart] = new(big.Int).Set(weight)
	return nil
}

func (t *WeightTable) RelativeWeight(_ chess.Address, weekStart uint64) (*big.Int, error) {
	weekStart = chess.StartOfWeek(weekStart)

	t.mu.Lock()
	defer t.mu.Unlock()
	if weight, ok := t.pinned[weekStart]; ok {
		return new(big.Int).Set(weight), nil
	}
	weight, ok := t.entries[weekStart]
	if !ok {
		weight = t.fallback
	}
	t.pinned[weekStart] = new(big.Int).Set(weight)
	return new(big.Int).Set(weight), nil
}
