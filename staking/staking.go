// Copyright (c) 2026 The Tranchess Go developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staking implements the incentive accounting of the LP staking
// pool: lazily settled emission accrual weighted by vote-boosted stake, a
// raw-stake-proportional external reward stream, and the epoch ledger that
// carries asset entitlements across rebalances.
//
// Every public state-changing operation settles the touched account before
// applying its own effect, and either completes fully or reverts the state
// to the checkpoint taken at entry.
package staking

import (
	"math/big"

	"github.com/tranchess/staking-go/chess"
	"github.com/tranchess/staking-go/log"
	"github.com/tranchess/staking-go/metrics"
	"github.com/tranchess/staking-go/solidity"
	"github.com/tranchess/staking-go/staking/boost"
	"github.com/tranchess/staking-go/staking/emission"
	"github.com/tranchess/staking-go/staking/epoch"
	"github.com/tranchess/staking-go/staking/passthrough"
	"github.com/tranchess/staking-go/staking/reverts"
	"github.com/tranchess/staking-go/state"
)

var logger = log.WithContext("pkg", "staking")

var (
	metricCheckpoints = metrics.LazyLoad(func() metrics.CountVecMeter {
		return metrics.CounterVec("checkpoint_count", []string{"outcome"})
	})
	metricCheckpointSteps = metrics.LazyLoad(func() metrics.HistogramMeter {
		return metrics.Histogram("checkpoint_steps", metrics.BucketCheckpointSteps)
	})
	metricClaims = metrics.LazyLoad(func() metrics.CountMeter {
		return metrics.Counter("claim_count")
	})
	metricEpoch = metrics.LazyLoad(func() metrics.GaugeMeter {
		return metrics.Gauge("epoch_current")
	})
	metricTotalBoosted = metrics.LazyLoad(func() metrics.GaugeMeter {
		return metrics.Gauge("total_boosted_tokens")
	})
)

// Staking implements the staking pool's accounting engine.
type Staking struct {
	state   *state.State
	storage *storage

	emission *emission.Service
	external *passthrough.Service
	epochs   *epoch.Service

	shares ShareLedger
	votes  VotingEscrow
	minter RewardMinter
	payout PayoutSink
}

// New creates a pool instance bound to the given contract address.
func New(addr chess.Address, st *state.State, collab *Collaborators) *Staking {
	sctx := solidity.NewContext(addr, st)
	stor := newStorage(sctx)

	// debug overrides for testing
	maxSteps := chess.CheckpointIterations
	stor.debugOverride(&maxSteps, chess.KeyCheckpointIterations)

	return &Staking{
		state:    st,
		storage:  stor,
		emission: emission.New(sctx, collab.Schedule, collab.Oracle, maxSteps),
		external: passthrough.New(sctx, collab.RewardSource),
		epochs:   epoch.New(sctx, collab.Rebalancer),
		shares:   collab.Shares,
		votes:    collab.Votes,
		minter:   collab.Minter,
		payout:   collab.Payout,
	}
}

// run executes fn as one atomic operation: any error reverts every state
// change made since entry.
func (s *Staking) run(fn func() error) error {
	checkpoint := s.state.NewCheckpoint()
	if err := fn(); err != nil {
		s.state.RevertTo(checkpoint)
		return err
	}
	return nil
}

//
// Getters - no state change
//

// Initialized checks whether Init has been called.
func (s *Staking) Initialized() (bool, error) {
	ts, err := s.emission.CheckpointTime()
	if err != nil {
		return false, err
	}
	return ts != 0, nil
}

// TotalBoosted returns the recorded total boosted stake.
func (s *Staking) TotalBoosted() (*big.Int, error) {
	return s.storage.TotalBoosted()
}

// RewardIntegral returns the cumulative emission integral.
func (s *Staking) RewardIntegral() (*big.Int, error) {
	return s.emission.Integral()
}

// CheckpointTime returns the emission ledger's last checkpoint timestamp.
func (s *Staking) CheckpointTime() (uint64, error) {
	return s.emission.CheckpointTime()
}

// CurrentEpoch returns the current epoch counter.
func (s *Staking) CurrentEpoch() (uint64, error) {
	return s.epochs.Current()
}

// EpochRecord returns the immutable record of the given epoch.
func (s *Staking) EpochRecord(index uint64) (*epoch.Record, error) {
	return s.epochs.Get(index)
}

// GetAccount returns the stored accrual entry of an account, as of its last
// settlement.
func (s *Staking) GetAccount(addr chess.Address) (*Account, error) {
	return s.storage.GetAccount(addr)
}

// BoostedBalance returns the account's boosted stake as of its last
// settlement.
func (s *Staking) BoostedBalance(addr chess.Address) (*big.Int, error) {
	acc, err := s.storage.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	return acc.Boosted, nil
}

//
// Views - projected settlement, no persistent state change
//

// ClaimableRewards projects the emission amount a claim at time now would
// mint for the account.
func (s *Staking) ClaimableRewards(now uint64, addr chess.Address) (*big.Int, error) {
	acc, err := s.project(now, addr)
	if err != nil {
		return nil, err
	}
	return acc.RewardAccrued, nil
}

// ClaimableExternal projects the external reward a claim at time now would
// transfer to the account.
func (s *Staking) ClaimableExternal(now uint64, addr chess.Address) (*big.Int, error) {
	acc, err := s.project(now, addr)
	if err != nil {
		return nil, err
	}
	return acc.ExternalAccrued, nil
}

// ClaimableAssets projects the four asset bucket amounts a claim at time
// now would transfer to the account.
func (s *Staking) ClaimableAssets(now uint64, addr chess.Address) (*epoch.Buckets, error) {
	acc, err := s.project(now, addr)
	if err != nil {
		return nil, err
	}
	return acc.buckets(), nil
}

// project runs a settlement on a throwaway checkpoint and returns the
// settled in-memory entry. All state changes are reverted.
//
// Note the projection is only as current as one checkpoint call can reach;
// after a very long idle gap it underestimates until the ledger is caught
// up (see emission.Progress).
func (s *Staking) project(now uint64, addr chess.Address) (acc *Account, err error) {
	checkpoint := s.state.NewCheckpoint()
	defer s.state.RevertTo(checkpoint)

	acc, _, err = s.settle(now, addr)
	return
}

//
// Setters - state change
//

// Init performs the one-shot initialization, recording the deployment
// timestamp as the first emission checkpoint.
func (s *Staking) Init(now uint64) error {
	return s.run(func() error {
		if err := s.emission.Init(now); err != nil {
			logger.Info("init failed", "error", err)
			return err
		}
		logger.Info("pool initialized", "timestamp", now)
		return nil
	})
}

// Checkpoint advances the global emission ledger without touching any
// account. Anyone may poke it; after a long idle gap repeated pokes are
// required to fully catch up because of the per-call step budget.
func (s *Staking) Checkpoint(now uint64) (progress *emission.Progress, err error) {
	err = s.run(func() error {
		total, err := s.storage.TotalBoosted()
		if err != nil {
			return err
		}
		progress, err = s.emission.Checkpoint(now, total)
		if err != nil {
			return err
		}
		observeCheckpoint(progress)
		return nil
	})
	return
}

// Sync settles the account and refreshes its boosted stake. Useful after a
// voting-escrow change, which the pool cannot observe by itself.
func (s *Staking) Sync(now uint64, addr chess.Address) error {
	return s.run(func() error {
		logger.Debug("sync", "account", addr, "timestamp", now)

		acc, _, err := s.settle(now, addr)
		if err != nil {
			logger.Info("sync failed", "account", addr, "error", err)
			return err
		}
		return s.updateBoost(addr, acc)
	})
}

// Deposit settles the account, then stakes amount through the share ledger
// and recomputes the boosted stake. The elapsed interval is paid at the
// pre-deposit boosted stake.
func (s *Staking) Deposit(now uint64, addr chess.Address, amount *big.Int) error {
	return s.run(func() error {
		logger.Debug("deposit", "account", addr, "amount", amount)

		if amount == nil || amount.Sign() <= 0 {
			return reverts.New("stake amount must be positive")
		}
		acc, _, err := s.settle(now, addr)
		if err != nil {
			logger.Info("deposit failed", "account", addr, "error", err)
			return err
		}
		if err := s.shares.Deposit(addr, amount); err != nil {
			return err
		}
		if err := s.updateBoost(addr, acc); err != nil {
			return err
		}
		logger.Info("deposited", "account", addr, "amount", amount)
		return nil
	})
}

// Withdraw settles the account, then unstakes amount through the share
// ledger and recomputes the boosted stake.
func (s *Staking) Withdraw(now uint64, addr chess.Address, amount *big.Int) error {
	return s.run(func() error {
		logger.Debug("withdraw", "account", addr, "amount", amount)

		if amount == nil || amount.Sign() <= 0 {
			return reverts.New("stake amount must be positive")
		}
		acc, _, err := s.settle(now, addr)
		if err != nil {
			logger.Info("withdraw failed", "account", addr, "error", err)
			return err
		}
		stake, err := s.shares.BalanceOf(addr)
		if err != nil {
			return err
		}
		if stake.Cmp(amount) < 0 {
			return reverts.New("insufficient staked balance")
		}
		if err := s.shares.Withdraw(addr, amount); err != nil {
			return err
		}
		if err := s.updateBoost(addr, acc); err != nil {
			return err
		}
		logger.Info("withdrawn", "account", addr, "amount", amount)
		return nil
	})
}

// ClaimRewards settles the account and pays out everything it is owed:
// the emission amount is minted, the external reward and the four asset
// buckets are transferred, and all accrued fields are zeroed. Claiming
// with nothing accrued is a no-op, not an error.
func (s *Staking) ClaimRewards(now uint64, addr chess.Address) (result *ClaimResult, err error) {
	err = s.run(func() error {
		logger.Debug("claim", "account", addr, "timestamp", now)

		acc, _, err := s.settle(now, addr)
		if err != nil {
			logger.Info("claim failed", "account", addr, "error", err)
			return err
		}

		result = &ClaimResult{
			Reward:   acc.RewardAccrued,
			External: acc.ExternalAccrued,
			Assets:   acc.buckets(),
		}

		if result.Reward.Sign() > 0 {
			if err := s.minter.Mint(addr, result.Reward); err != nil {
				return err
			}
		}
		if result.External.Sign() > 0 {
			if err := s.payout.TransferReward(addr, result.External); err != nil {
				return err
			}
		}
		amounts := map[Asset]*big.Int{
			AssetQueen:  result.Assets.Queen,
			AssetBishop: result.Assets.Bishop,
			AssetRook:   result.Assets.Rook,
			AssetQuote:  result.Assets.Quote,
		}
		for _, asset := range []Asset{AssetQueen, AssetBishop, AssetRook, AssetQuote} {
			if amount := amounts[asset]; amount.Sign() > 0 {
				if err := s.payout.TransferAsset(asset, addr, amount); err != nil {
					return err
				}
			}
		}

		acc.RewardAccrued = new(big.Int)
		acc.ExternalAccrued = new(big.Int)
		acc.setBuckets(epoch.NewBuckets())

		if err := s.updateBoost(addr, acc); err != nil {
			return err
		}

		metricClaims().Add(1)
		if result.Paid() {
			logger.Info("claimed", "account", addr,
				"reward", result.Reward,
				"external", result.External,
			)
		}
		return nil
	})
	return
}

// AdvanceEpoch consumes one external rebalance trigger: it records the
// distributed asset totals together with the raw total stake at this
// instant and bumps the epoch counter. The pool never decides when or how
// much; it only consumes the resulting record sequence.
func (s *Staking) AdvanceEpoch(now uint64, queen, bishop, rook, quote *big.Int) (index uint64, err error) {
	err = s.run(func() error {
		logger.Debug("advance epoch", "timestamp", now)

		for _, amount := range []*big.Int{queen, bishop, rook, quote} {
			if amount != nil && amount.Sign() < 0 {
				return reverts.New("negative distribution amount")
			}
		}

		// bring the emission ledger current before the boundary
		total, err := s.storage.TotalBoosted()
		if err != nil {
			return err
		}
		progress, err := s.emission.Checkpoint(now, total)
		if err != nil {
			return err
		}
		observeCheckpoint(progress)

		totalStake, err := s.shares.TotalSupply()
		if err != nil {
			return err
		}
		index, err = s.epochs.Append(&epoch.Record{
			AmountQueen:  queen,
			AmountBishop: bishop,
			AmountRook:   rook,
			AmountQuote:  quote,
			TotalStake:   totalStake,
		})
		if err != nil {
			return err
		}
		metricEpoch().Set(int64(index + 1))
		return nil
	})
	return
}

//
// settlement internals
//

// settle brings the global ledgers current and then the account's own
// snapshots: emission accrual at the pre-change boosted stake, external
// reward accrual at the pre-change raw stake, and the epoch catch-up.
// The caller applies its own effect afterwards and persists the entry via
// updateBoost.
func (s *Staking) settle(now uint64, addr chess.Address) (*Account, *emission.Progress, error) {
	total, err := s.storage.TotalBoosted()
	if err != nil {
		return nil, nil, err
	}
	progress, err := s.emission.Checkpoint(now, total)
	if err != nil {
		return nil, nil, err
	}
	observeCheckpoint(progress)

	acc, err := s.storage.GetAccount(addr)
	if err != nil {
		return nil, nil, err
	}

	integral, err := s.emission.Integral()
	if err != nil {
		return nil, nil, err
	}
	acc.RewardAccrued.Add(acc.RewardAccrued, emission.Accrued(acc.Boosted, integral, acc.RewardIntegral))
	acc.RewardIntegral = integral

	stake, err := s.shares.BalanceOf(addr)
	if err != nil {
		return nil, nil, err
	}
	totalStake, err := s.shares.TotalSupply()
	if err != nil {
		return nil, nil, err
	}

	if _, err := s.external.Harvest(totalStake); err != nil {
		return nil, nil, err
	}
	externalIntegral, err := s.external.Integral()
	if err != nil {
		return nil, nil, err
	}
	acc.ExternalAccrued.Add(acc.ExternalAccrued, passthrough.Accrued(stake, externalIntegral, acc.ExternalIntegral))
	acc.ExternalIntegral = externalIntegral

	buckets := acc.buckets()
	settledEpoch, err := s.epochs.CatchUp(stake, acc.SettledEpoch, buckets)
	if err != nil {
		return nil, nil, err
	}
	acc.SettledEpoch = settledEpoch
	acc.setBuckets(buckets)

	return acc, progress, nil
}

// updateBoost recomputes the account's boosted stake from the current raw
// stake and voting position, shifts the global total accordingly and
// persists the entry.
func (s *Staking) updateBoost(addr chess.Address, acc *Account) error {
	stake, err := s.shares.BalanceOf(addr)
	if err != nil {
		return err
	}
	totalStake, err := s.shares.TotalSupply()
	if err != nil {
		return err
	}
	votes, err := s.votes.BalanceOf(addr)
	if err != nil {
		return err
	}
	totalVotes, err := s.votes.TotalSupply()
	if err != nil {
		return err
	}

	boosted, err := boost.Calculate(stake, totalStake, votes, totalVotes)
	if err != nil {
		return err
	}
	if err := s.storage.ShiftTotalBoosted(acc.Boosted, boosted); err != nil {
		return err
	}
	acc.Boosted = boosted

	if total, err := s.storage.TotalBoosted(); err == nil {
		metricTotalBoosted().Set(new(big.Int).Div(total, chess.UnitWei()).Int64())
	}
	return s.storage.SetAccount(addr, acc)
}

func observeCheckpoint(progress *emission.Progress) {
	outcome := "complete"
	if !progress.CaughtUp {
		outcome = "capped"
	}
	metricCheckpoints().AddWithLabel(1, map[string]string{"outcome": outcome})
	metricCheckpointSteps().Observe(int64(progress.Steps))
}
