// Copyright (c) 2026 The Tranchess Go developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package emission maintains the global reward-per-unit-boosted-stake
// integral of the protocol emission stream, advanced in whole-week steps.
package emission

import (
	"math/big"

	"github.com/tranchess/staking-go/chess"
	"github.com/tranchess/staking-go/log"
	"github.com/tranchess/staking-go/solidity"
	"github.com/tranchess/staking-go/staking/reverts"
)

var (
	logger = log.WithContext("pkg", "emission")

	slotIntegral       = chess.BytesToBytes32([]byte("reward-integral"))
	slotCheckpointTime = chess.BytesToBytes32([]byte("reward-checkpoint-time"))
)

// RateSchedule yields the emission rate, in token wei per second, for the
// week beginning at the given timestamp. Lookups are pure.
type RateSchedule interface {
	Rate(weekStart uint64) (*big.Int, error)
}

// WeightOracle yields the fraction (18-decimal fixed point, 0 to 1e18) of
// the emission allocated to the pool for the week beginning at the given
// timestamp. Repeated queries for the same week are idempotent.
type WeightOracle interface {
	RelativeWeight(pool chess.Address, weekStart uint64) (*big.Int, error)
}

// Progress reports how far a checkpoint call advanced the ledger.
// CaughtUp false means the per-call step budget ran out before reaching the
// requested time; a later call resumes from To.
type Progress struct {
	From     uint64
	To       uint64
	Steps    uint32
	CaughtUp bool
}

// Service manages the emission accrual ledger.
// The integral is scaled such that an account's accrued amount over an
// interval is boostedStake * integralDelta / 1e18.
type Service struct {
	integral       *solidity.Uint256
	checkpointTime *solidity.Uint256

	schedule RateSchedule
	oracle   WeightOracle
	pool     chess.Address
	maxSteps uint32
}

// New creates the service. maxSteps bounds the whole-week steps a single
// Checkpoint call may take.
func New(sctx *solidity.Context, schedule RateSchedule, oracle WeightOracle, maxSteps uint32) *Service {
	return &Service{
		integral:       solidity.NewUint256(sctx, slotIntegral),
		checkpointTime: solidity.NewUint256(sctx, slotCheckpointTime),
		schedule:       schedule,
		oracle:         oracle,
		pool:           sctx.Address(),
		maxSteps:       maxSteps,
	}
}

// Init writes the initial checkpoint timestamp. Called once at deployment.
func (s *Service) Init(now uint64) error {
	current, err := s.checkpointTime.GetUint64()
	if err != nil {
		return err
	}
	if current != 0 {
		return reverts.New("emission ledger already initialized")
	}
	s.checkpointTime.SetUint64(now)
	return nil
}

// Integral returns the cumulative emission integral.
func (s *Service) Integral() (*big.Int, error) {
	return s.integral.Get()
}

// CheckpointTime returns the last checkpoint timestamp.
func (s *Service) CheckpointTime() (uint64, error) {
	return s.checkpointTime.GetUint64()
}

// Checkpoint advances the integral from the last checkpoint timestamp
// towards now, stepping at end-of-week boundaries and accruing
// rate * weight * elapsed / totalBoosted per step.
//
// At most maxSteps steps are taken per call; when the budget runs out the
// ledger is left partially advanced and the returned progress reports
// CaughtUp false. Callers must not assume a single call fully catches up.
//
// With zero total boosted stake nothing accrues and the timestamp jumps
// straight to now.
func (s *Service) Checkpoint(now uint64, totalBoosted *big.Int) (*Progress, error) {
	last, err := s.checkpointTime.GetUint64()
	if err != nil {
		return nil, err
	}
	if last == 0 {
		return nil, reverts.New("emission ledger not initialized")
	}
	if now <= last {
		return &Progress{From: last, To: last, CaughtUp: true}, nil
	}
	if totalBoosted.Sign() == 0 {
		// nothing staked, nothing accrues
		s.checkpointTime.SetUint64(now)
		return &Progress{From: last, To: now, CaughtUp: true}, nil
	}

	integral, err := s.integral.Get()
	if err != nil {
		return nil, err
	}

	ts := last
	steps := uint32(0)
	for ; steps < s.maxSteps && ts < now; steps++ {
		weekStart := chess.StartOfWeek(ts)
		stepEnd := chess.EndOfWeek(ts)
		if stepEnd > now {
			stepEnd = now
		}

		rate, err := s.schedule.Rate(weekStart)
		if err != nil {
			return nil, err
		}
		weight, err := s.oracle.RelativeWeight(s.pool, weekStart)
		if err != nil {
			return nil, err
		}

		if weight.Sign() > 0 && rate.Sign() > 0 {
			delta := new(big.Int).Mul(rate, weight)
			delta.Mul(delta, new(big.Int).SetUint64(stepEnd-ts))
			delta.Div(delta, totalBoosted)
			integral.Add(integral, delta)
		}
		ts = stepEnd
	}

	s.integral.Set(integral)
	s.checkpointTime.SetUint64(ts)

	progress := &Progress{From: last, To: ts, Steps: steps, CaughtUp: ts >= now}
	if !progress.CaughtUp {
		logger.Debug("checkpoint step budget exhausted", "from", last, "to", ts, "target", now)
	}
	return progress, nil
}

// Accrued returns the emission amount owed to an account whose boosted
// stake was boosted over the interval between lastIntegral and integral.
func Accrued(boosted, integral, lastIntegral *big.Int) *big.Int {
	delta := new(big.Int).Sub(integral, lastIntegral)
	delta.Mul(delta, boosted)
	return delta.Div(delta, chess.UnitWei())
}
