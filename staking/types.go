// Copyright (c) 2026 The Tranchess Go developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/tranchess/staking-go/staking/epoch"
)

// Account is the per-account accrual entry. Raw stake lives in the share
// ledger; everything here is owned exclusively by the pool and recomputed
// on every settlement.
type Account struct {
	Boosted          *big.Int // boosted stake as of the last settlement
	RewardIntegral   *big.Int // last-settled emission integral snapshot
	RewardAccrued    *big.Int // accrued-but-unclaimed emission amount
	ExternalIntegral *big.Int // last-settled external-reward integral snapshot
	ExternalAccrued  *big.Int // accrued-but-unclaimed external reward
	SettledEpoch     uint64   // last epoch whose distribution was applied

	// carried, unclaimed asset entitlements
	Queen  *big.Int
	Bishop *big.Int
	Rook   *big.Int
	Quote  *big.Int
}

// IsEmpty returns whether the entry was never written.
func (a *Account) IsEmpty() bool {
	return a.Boosted == nil
}

func (a *Account) normalize() *Account {
	for _, field := range []**big.Int{
		&a.Boosted, &a.RewardIntegral, &a.RewardAccrued,
		&a.ExternalIntegral, &a.ExternalAccrued,
		&a.Queen, &a.Bishop, &a.Rook, &a.Quote,
	} {
		if *field == nil {
			*field = new(big.Int)
		}
	}
	return a
}

// buckets returns the account's asset buckets as a catch-up view.
// The big.Int values are shared; the caller copies them back after replay.
func (a *Account) buckets() *epoch.Buckets {
	return &epoch.Buckets{
		Queen:  a.Queen,
		Bishop: a.Bishop,
		Rook:   a.Rook,
		Quote:  a.Quote,
	}
}

func (a *Account) setBuckets(b *epoch.Buckets) {
	a.Queen, a.Bishop, a.Rook, a.Quote = b.Queen, b.Bishop, b.Rook, b.Quote
}

// ClaimResult reports what a claim paid out.
type ClaimResult struct {
	Reward   *big.Int
	External *big.Int
	Assets   *epoch.Buckets
}

// Paid returns whether the claim transferred anything at all.
func (c *ClaimResult) Paid() bool {
	return c.Reward.Sign() > 0 || c.External.Sign() > 0 || !c.Assets.IsZero()
}
