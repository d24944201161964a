// Copyright (c) 2026 The Tranchess Go developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package epoch keeps the append-only ledger of rebalance distributions and
// replays it to carry an account's stale entitlements forward across any
// number of skipped epochs.
package epoch

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/tranchess/staking-go/chess"
	"github.com/tranchess/staking-go/log"
	"github.com/tranchess/staking-go/solidity"
	"github.com/tranchess/staking-go/staking/reverts"
)

var (
	logger = log.WithContext("pkg", "epoch")

	slotRecords = chess.BytesToBytes32([]byte("epoch-records"))
	slotCounter = chess.BytesToBytes32([]byte("epoch-counter"))
)

// Rebalancer is the externally supplied pure transform mapping carried
// share amounts across one rebalance epoch. The quote bucket is not part of
// the transform.
type Rebalancer interface {
	Rebalance(queen, bishop, rook *big.Int, epoch uint64) (*big.Int, *big.Int, *big.Int, error)
}

// Service manages the epoch record sequence and the per-account catch-up.
type Service struct {
	records    *solidity.Mapping[*big.Int, *Record]
	counter    *solidity.Uint256
	rebalancer Rebalancer
}

// New creates the service.
func New(sctx *solidity.Context, rebalancer Rebalancer) *Service {
	return &Service{
		records:    solidity.NewMapping[*big.Int, *Record](sctx, slotRecords),
		counter:    solidity.NewUint256(sctx, slotCounter),
		rebalancer: rebalancer,
	}
}

// Current returns the current epoch counter, i.e. the number of rebalances
// consumed so far. Records exist at indexes [0, Current).
func (s *Service) Current() (uint64, error) {
	return s.counter.GetUint64()
}

// Get returns the record written for the given epoch index.
func (s *Service) Get(index uint64) (*Record, error) {
	current, err := s.Current()
	if err != nil {
		return nil, err
	}
	if index >= current {
		return nil, errors.Errorf("epoch record %d out of range", index)
	}
	record, err := s.records.Get(new(big.Int).SetUint64(index))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get epoch record")
	}
	return record.normalize(), nil
}

// Append writes the record of one rebalance distribution and bumps the
// epoch counter. Records are never revised afterwards.
func (s *Service) Append(record *Record) (uint64, error) {
	index, err := s.Current()
	if err != nil {
		return 0, err
	}
	if err := s.records.Set(new(big.Int).SetUint64(index), record.normalize()); err != nil {
		return 0, errors.Wrap(err, "failed to set epoch record")
	}
	s.counter.SetUint64(index + 1)

	logger.Info("epoch advanced", "epoch", index+1, "totalStake", record.TotalStake)
	return index, nil
}

// CatchUp replays all epoch records between an account's settled epoch and
// the current epoch, mutating buckets in place.
//
// Every record's totals are denominated in post-rebalance units, so each
// step first passes the carried share buckets through that epoch's
// rebalance transform and then adds the record's pro-rata share. The
// transform is applied uniformly, including at the settled epoch itself;
// an account that settles after every epoch and one that skips and settles
// once replay the same transform sequence and end with the same buckets.
// The quote bucket never passes through the transform.
//
// It returns the new settled epoch, always the current epoch counter.
func (s *Service) CatchUp(stake *big.Int, settled uint64, buckets *Buckets) (uint64, error) {
	current, err := s.Current()
	if err != nil {
		return 0, err
	}
	if settled == current {
		return settled, nil
	}
	if settled > current {
		return 0, reverts.ErrStaleRebalanceReplay
	}

	for index := settled; index < current; index++ {
		queen, bishop, rook, err := s.rebalancer.Rebalance(buckets.Queen, buckets.Bishop, buckets.Rook, index)
		if err != nil {
			return 0, err
		}
		buckets.Queen, buckets.Bishop, buckets.Rook = queen, bishop, rook

		record, err := s.Get(index)
		if err != nil {
			return 0, err
		}
		addProRata(buckets, record, stake)
	}
	return current, nil
}

// addProRata adds the account's stake share of the record's totals to the
// buckets. A record distributed at zero total stake pays nothing.
func addProRata(buckets *Buckets, record *Record, stake *big.Int) {
	if record.TotalStake.Sign() == 0 || stake.Sign() == 0 {
		return
	}
	share := func(total *big.Int) *big.Int {
		v := new(big.Int).Mul(total, stake)
		return v.Div(v, record.TotalStake)
	}
	buckets.Queen.Add(buckets.Queen, share(record.AmountQueen))
	buckets.Bishop.Add(buckets.Bishop, share(record.AmountBishop))
	buckets.Rook.Add(buckets.Rook, share(record.AmountRook))
	buckets.Quote.Add(buckets.Quote, share(record.AmountQuote))
}
