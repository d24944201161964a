// Copyright (c) 2026 The Tranchess Go developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/tranchess/staking-go/chess"
	"github.com/tranchess/staking-go/staking/emission"
	"github.com/tranchess/staking-go/staking/epoch"
	"github.com/tranchess/staking-go/staking/passthrough"
)

// Asset identifies one of the four claimable asset buckets.
type Asset uint8

const (
	AssetQueen = Asset(iota)
	AssetBishop
	AssetRook
	AssetQuote
)

func (a Asset) String() string {
	switch a {
	case AssetQueen:
		return "QUEEN"
	case AssetBishop:
		return "BISHOP"
	case AssetRook:
		return "ROOK"
	case AssetQuote:
		return "QUOTE"
	default:
		return "UNKNOWN"
	}
}

// ShareLedger is the LP share token bookkeeping. Balances are owned by the
// ledger; the pool only reads them and forwards deposit/withdraw requests
// after settlement.
type ShareLedger interface {
	BalanceOf(addr chess.Address) (*big.Int, error)
	TotalSupply() (*big.Int, error)
	Deposit(addr chess.Address, amount *big.Int) error
	Withdraw(addr chess.Address, amount *big.Int) error
}

// VotingEscrow exposes the time-locked voting position used by the boost
// formula. Snapshots are instantaneous.
type VotingEscrow interface {
	BalanceOf(addr chess.Address) (*big.Int, error)
	TotalSupply() (*big.Int, error)
}

// RewardMinter mints settled emission rewards on claim. Mint either fully
// succeeds or the whole claim operation fails.
type RewardMinter interface {
	Mint(addr chess.Address, amount *big.Int) error
}

// PayoutSink transfers settled asset buckets and external rewards to the
// claiming account.
type PayoutSink interface {
	TransferAsset(asset Asset, to chess.Address, amount *big.Int) error
	TransferReward(to chess.Address, amount *big.Int) error
}

// Collaborators bundles the external contracts the pool consumes.
type Collaborators struct {
	Shares       ShareLedger
	Votes        VotingEscrow
	Schedule     emission.RateSchedule
	Oracle       emission.WeightOracle
	RewardSource passthrough.Source
	Rebalancer   epoch.Rebalancer
	Minter       RewardMinter
	Payout       PayoutSink
}
