// Copyright (c) 2026 The Tranchess Go developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package passthrough streams an externally sourced reward token to stakers
// in proportion to raw stake. The source has no notion of vote boosting, so
// unlike the emission stream the split ignores boosted stake entirely.
package passthrough

import (
	"math/big"

	"github.com/tranchess/staking-go/chess"
	"github.com/tranchess/staking-go/log"
	"github.com/tranchess/staking-go/solidity"
)

var (
	logger = log.WithContext("pkg", "passthrough")

	slotIntegral = chess.BytesToBytes32([]byte("external-reward-integral"))
)

// Source is the external reward source. Pull transfers any pending reward
// into the pool's custody; the service measures the resulting balance delta
// itself.
type Source interface {
	Pull() error
	Balance() (*big.Int, error)
}

// Service maintains the reward-per-unit-raw-stake integral of the external
// stream, scaled such that an account's accrued amount is
// rawStake * integralDelta / 1e18.
type Service struct {
	integral *solidity.Uint256
	source   Source
}

// New creates the service.
func New(sctx *solidity.Context, source Source) *Service {
	return &Service{
		integral: solidity.NewUint256(sctx, slotIntegral),
		source:   source,
	}
}

// Integral returns the cumulative external reward integral.
func (s *Service) Integral() (*big.Int, error) {
	return s.integral.Get()
}

// Harvest pulls pending rewards from the source and distributes the
// observed balance delta over the raw total stake. It returns the inflow.
//
// When total stake is zero the inflow stays in custody unaccounted; this
// mirrors the source system's behavior and is deliberate (see the
// zero-supply test).
func (s *Service) Harvest(totalStake *big.Int) (*big.Int, error) {
	before, err := s.source.Balance()
	if err != nil {
		return nil, err
	}
	if err := s.source.Pull(); err != nil {
		return nil, err
	}
	after, err := s.source.Balance()
	if err != nil {
		return nil, err
	}

	inflow := new(big.Int).Sub(after, before)
	if inflow.Sign() <= 0 {
		return big.NewInt(0), nil
	}
	if totalStake.Sign() == 0 {
		logger.Warn("external reward received with zero total stake", "inflow", inflow)
		return inflow, nil
	}

	increment := new(big.Int).Mul(inflow, chess.UnitWei())
	increment.Div(increment, totalStake)
	if err := s.integral.Add(increment); err != nil {
		return nil, err
	}
	return inflow, nil
}

// Accrued returns the external reward owed to an account whose raw stake
// was stake over the interval between lastIntegral and integral.
func Accrued(stake, integral, lastIntegral *big.Int) *big.Int {
	delta := new(big.Int).Sub(integral, lastIntegral)
	delta.Mul(delta, stake)
	return delta.Div(delta, chess.UnitWei())
}
