// Copyright (c) 2026 The Tranchess Go developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chess

import "math/big"

// Constants of the staking pool protocol.
const (
	// WeekSeconds the length of an emission week.
	WeekSeconds uint64 = 7 * 24 * 3600

	// CheckpointIterations the max number of whole-week steps a single
	// reward checkpoint may advance. Longer idle gaps are settled across
	// multiple calls.
	CheckpointIterations uint32 = 500

	// MaxBoostMultiplier the hard cap of boosted stake over raw stake.
	MaxBoostMultiplier int64 = 3

	// BoostConstant the multiplier applied to the locked-vote share in the
	// boosting formula.
	BoostConstant int64 = 2
)

// Keys of governance params. Writing a nonzero value at a key overrides the
// corresponding default, which is mainly useful in tests.
var (
	KeyCheckpointIterations = BytesToBytes32([]byte("checkpoint-iteration-cap"))
)

// UnitWei returns the 18-decimal fixed point unit (1e18) as a new big.Int.
func UnitWei() *big.Int {
	return big.NewInt(1e18)
}

// StartOfWeek returns the timestamp of the beginning of the week that t
// belongs to.
func StartOfWeek(t uint64) uint64 {
	return t - t%WeekSeconds
}

// EndOfWeek returns the timestamp of the end (exclusive) of the week that t
// belongs to.
func EndOfWeek(t uint64) uint64 {
	return StartOfWeek(t) + WeekSeconds
}
