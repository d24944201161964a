// Copyright (c) 2026 The Tranchess Go developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package boost computes the vote-locked bonus applied to raw stake.
// The boosted stake of an account drives its share of the emission stream;
// it is always within [stake, MaxBoostMultiplier*stake].
package boost

import (
	"math/big"

	"github.com/tranchess/staking-go/chess"
	"github.com/tranchess/staking-go/staking/reverts"
)

// Calculate returns the boosted stake for an account.
//
//	stake      the account's raw staked balance
//	totalStake the raw total staked supply
//	votes      the account's locked-vote balance
//	totalVotes the total locked-vote supply
//
// With no locked votes the raw stake passes through unchanged. Otherwise the
// bonus is totalStake * votes * BoostConstant / totalVotes, capped so that
// the result never exceeds MaxBoostMultiplier times the raw stake.
// totalVotes must be nonzero whenever votes is nonzero; the voting escrow
// guarantees this, and a violation reverts with ErrDivisionByZero.
func Calculate(stake, totalStake, votes, totalVotes *big.Int) (*big.Int, error) {
	if votes.Sign() == 0 || stake.Sign() == 0 {
		return new(big.Int).Set(stake), nil
	}
	if totalVotes.Sign() == 0 {
		return nil, reverts.ErrDivisionByZero
	}

	bonus := new(big.Int).Mul(totalStake, votes)
	bonus.Mul(bonus, big.NewInt(chess.BoostConstant))
	bonus.Div(bonus, totalVotes)

	boosted := bonus.Add(bonus, stake)
	ceiling := new(big.Int).Mul(stake, big.NewInt(chess.MaxBoostMultiplier))
	if boosted.Cmp(ceiling) > 0 {
		return ceiling, nil
	}
	return boosted, nil
}
