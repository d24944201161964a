// Copyright (c) 2026 The Tranchess Go developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranchess/staking-go/chess"
	"github.com/tranchess/staking-go/kv"
	"github.com/tranchess/staking-go/schedule"
	"github.com/tranchess/staking-go/staking/epoch"
	"github.com/tranchess/staking-go/staking/reverts"
	"github.com/tranchess/staking-go/state"
)

const (
	halfWeek = chess.WeekSeconds / 2
	oneWeek  = chess.WeekSeconds
)

func TestSoleStakerEarnsFullEmission(t *testing.T) {
	pool := newTestPool(t) // 10 tokens per second
	alice := randAddress()

	NewSequence(pool).
		Deposit(startTime, alice, wei(100)).
		Run(t)

	// 10 tokens/s over one week, nobody else staked
	AssertAccount(pool, startTime+oneWeek, alice).
		Boosted(wei(100)).
		Reward(wei(10 * 604800)).
		Assert(t)
}

func TestEmissionSplitsByBoostedStake(t *testing.T) {
	pool := newTestPool(t)
	alice := randAddress()
	bob := randAddress()

	NewSequence(pool).
		Deposit(startTime, alice, wei(100)).
		Deposit(startTime, bob, wei(900)).
		Vote(startTime, alice, wei(1)). // sole voter, boost caps at 3x
		Run(t)

	AssertAccount(pool, startTime, alice).Boosted(wei(300)).Assert(t)
	AssertAccount(pool, startTime, bob).Boosted(wei(900)).Assert(t)

	// alice holds 300 of 1200 boosted units
	AssertAccount(pool, startTime+oneWeek, alice).
		Reward(wei(1_512_000)).
		Assert(t)
	AssertAccount(pool, startTime+oneWeek, bob).
		Reward(wei(4_536_000)).
		Assert(t)
}

func TestSettleBeforeStakeChange(t *testing.T) {
	pool := newTestPool(t)
	alice := randAddress()
	bob := randAddress()

	NewSequence(pool).
		Deposit(startTime, alice, wei(100)).
		Deposit(startTime, bob, wei(100)).
		// first half week at 100/200, second half at 300/400
		Deposit(startTime+halfWeek, alice, wei(200)).
		Run(t)

	AssertAccount(pool, startTime+oneWeek, alice).
		Reward(wei(1_512_000 + 2_268_000)).
		Assert(t)
	AssertAccount(pool, startTime+oneWeek, bob).
		Reward(wei(1_512_000 + 756_000)).
		Assert(t)
}

func TestExternalRewardProportionalToRawStake(t *testing.T) {
	pool := newTestPool(t)
	alice := randAddress()
	bob := randAddress()

	NewSequence(pool).
		Deposit(startTime, alice, wei(250)).
		Deposit(startTime, bob, wei(750)).
		External(wei(500)).
		Run(t)

	// raw-stake proportional, boost plays no part
	AssertAccount(pool, startTime, alice).External(wei(125)).Assert(t)
	AssertAccount(pool, startTime, bob).External(wei(375)).Assert(t)
}

func TestEpochCatchUpAppliesTransformBeforeShare(t *testing.T) {
	pool := newTestPool(t)
	alice := randAddress()
	bob := randAddress()

	NewSequence(pool).
		Deposit(startTime, alice, wei(100)).
		Deposit(startTime, bob, wei(300)).
		AdvanceEpoch(startTime+10, wei(40), wei(80), wei(120), wei(400)).
		Run(t)

	// queen bucket doubles across the second rebalance
	pool.rebalancer.setTransform(1, func(queen, bishop, rook *big.Int) (*big.Int, *big.Int, *big.Int) {
		return new(big.Int).Mul(queen, big.NewInt(2)), bishop, rook
	})

	NewSequence(pool).
		AdvanceEpoch(startTime+20, wei(400), wei(0), wei(0), wei(0)).
		Run(t)

	// record 0 share (10,20,30,100), queen doubled to 20, then record 1
	// share adds 100 queen; quote is never transformed
	AssertAccount(pool, startTime+30, alice).
		Assets(&epoch.Buckets{
			Queen:  wei(120),
			Bishop: wei(20),
			Rook:   wei(30),
			Quote:  wei(100),
		}).
		Assert(t)
}

func TestEpochCatchUpIndependentOfSettlementTiming(t *testing.T) {
	pool := newTestPool(t)
	eager := randAddress()
	lazy := randAddress()

	NewSequence(pool).
		Deposit(startTime, eager, wei(100)).
		Deposit(startTime, lazy, wei(100)).
		AdvanceEpoch(startTime+10, wei(100), wei(0), wei(0), wei(0)).
		Sync(startTime+20, eager).
		Run(t)

	// the second rebalance halves the queen bucket; eager's carried share
	// must pass through it the same as lazy's replayed share
	pool.rebalancer.setTransform(1, func(queen, bishop, rook *big.Int) (*big.Int, *big.Int, *big.Int) {
		return new(big.Int).Div(queen, big.NewInt(2)), bishop, rook
	})

	NewSequence(pool).
		AdvanceEpoch(startTime+30, wei(0), wei(0), wei(0), wei(0)).
		Run(t)

	expected := &epoch.Buckets{
		Queen:  wei(25),
		Bishop: wei(0),
		Rook:   wei(0),
		Quote:  wei(0),
	}
	AssertAccount(pool, startTime+40, eager).Assets(expected).Assert(t)
	AssertAccount(pool, startTime+40, lazy).Assets(expected).Assert(t)
}

func TestClaimPaysAndZeroes(t *testing.T) {
	pool := newTestPool(t)
	alice := randAddress()

	NewSequence(pool).
		Deposit(startTime, alice, wei(100)).
		External(wei(40)).
		AdvanceEpoch(startTime+10, wei(7), wei(0), wei(0), wei(0)).
		Claim(startTime+oneWeek, alice).
		Run(t)

	assertAmount(t, wei(10*604800), pool.minter.minted[alice], "minted reward")
	assertAmount(t, wei(40), pool.payout.rewards[alice], "external payout")
	assertAmount(t, wei(7), pool.payout.assets[AssetQueen][alice], "queen payout")

	AssertAccount(pool, startTime+oneWeek, alice).
		Reward(wei(0)).
		External(wei(0)).
		Assets(epoch.NewBuckets()).
		Assert(t)

	// claiming again right away pays nothing more
	result, err := pool.ClaimRewards(startTime+oneWeek, alice)
	require.NoError(t, err)
	assert.False(t, result.Paid())
}

func TestClaimTransfersAssetsInFixedOrder(t *testing.T) {
	pool := newTestPool(t)
	alice := randAddress()

	NewSequence(pool).
		Deposit(startTime, alice, wei(100)).
		AdvanceEpoch(startTime+10, wei(1), wei(2), wei(3), wei(4)).
		Claim(startTime+20, alice).
		Run(t)

	assert.Equal(t, []Asset{AssetQueen, AssetBishop, AssetRook, AssetQuote}, pool.payout.order)
}

func TestClaimFailureLeavesStateUntouched(t *testing.T) {
	pool := newTestPool(t)
	alice := randAddress()

	NewSequence(pool).
		Deposit(startTime, alice, wei(100)).
		Run(t)

	owed := wei(10 * 604800)
	pool.minter.failNext = errors.New("mint refused")
	_, err := pool.ClaimRewards(startTime+oneWeek, alice)
	assert.Error(t, err)

	// nothing minted, nothing lost
	assert.Nil(t, pool.minter.minted[alice])
	AssertAccount(pool, startTime+oneWeek, alice).Reward(owed).Assert(t)

	result, err := pool.ClaimRewards(startTime+oneWeek, alice)
	require.NoError(t, err)
	assertAmount(t, owed, result.Reward, "claimed reward after retry")
}

func TestCheckpointStepBudgetResumes(t *testing.T) {
	pool := newTestPool(t, withMaxSteps(5))
	alice := randAddress()

	NewSequence(pool).
		Deposit(startTime, alice, wei(100)).
		Run(t)

	progress, err := pool.Staking.Checkpoint(startTime + 10*oneWeek)
	require.NoError(t, err)
	assert.False(t, progress.CaughtUp)
	assert.Equal(t, uint32(5), progress.Steps)
	assert.Equal(t, startTime+5*oneWeek, progress.To)

	progress, err = pool.Staking.Checkpoint(startTime + 10*oneWeek)
	require.NoError(t, err)
	assert.True(t, progress.CaughtUp)

	// the two partial advances accumulate exactly the full span
	AssertAccount(pool, startTime+10*oneWeek, alice).
		Reward(wei(10 * 604800 * 10)).
		Assert(t)
}

func TestSyncIsIdempotent(t *testing.T) {
	pool := newTestPool(t)
	alice := randAddress()

	NewSequence(pool).
		Deposit(startTime, alice, wei(100)).
		Sync(startTime+oneWeek, alice).
		Sync(startTime+oneWeek, alice).
		Run(t)

	AssertAccount(pool, startTime+oneWeek, alice).
		Reward(wei(10 * 604800)).
		Assert(t)

	total, err := pool.TotalBoosted()
	require.NoError(t, err)
	assertAmount(t, wei(100), total, "total boosted stake")
}

func TestTotalBoostedMatchesAccountSum(t *testing.T) {
	pool := newTestPool(t)
	accounts := []chess.Address{randAddress(), randAddress(), randAddress()}

	seq := NewSequence(pool)
	seq.Deposit(startTime, accounts[0], wei(100)).
		Deposit(startTime, accounts[1], wei(250)).
		Deposit(startTime, accounts[2], wei(650)).
		Vote(startTime, accounts[0], wei(3)).
		Vote(startTime+100, accounts[1], wei(1)).
		Withdraw(startTime+200, accounts[2], wei(400)).
		Run(t)

	sum := new(big.Int)
	for _, addr := range accounts {
		boosted, err := pool.BoostedBalance(addr)
		require.NoError(t, err)
		sum.Add(sum, boosted)
	}
	total, err := pool.TotalBoosted()
	require.NoError(t, err)
	assertAmount(t, sum, total, "total boosted vs account sum")
}

func TestDepositValidation(t *testing.T) {
	pool := newTestPool(t)
	alice := randAddress()

	err := pool.Deposit(startTime, alice, wei(0))
	assert.True(t, reverts.IsRevertErr(err))

	err = pool.Deposit(startTime, alice, nil)
	assert.True(t, reverts.IsRevertErr(err))
}

func TestWithdrawMoreThanStakedReverts(t *testing.T) {
	pool := newTestPool(t)
	alice := randAddress()

	NewSequence(pool).
		Deposit(startTime, alice, wei(100)).
		Run(t)

	err := pool.Withdraw(startTime+10, alice, wei(101))
	assert.True(t, reverts.IsRevertErr(err))

	assert.NoError(t, pool.Withdraw(startTime+10, alice, wei(100)))
}

func TestVoteWithoutEscrowSupplyReverts(t *testing.T) {
	pool := newTestPool(t)
	alice := randAddress()

	NewSequence(pool).
		Deposit(startTime, alice, wei(100)).
		Run(t)

	// corrupt escrow: the account votes but total supply reads zero
	pool.votes.set(alice, wei(1))
	pool.votes.setTotalOnly(new(big.Int))

	err := pool.Sync(startTime+10, alice)
	assert.ErrorIs(t, err, reverts.ErrDivisionByZero)
}

func TestInitGuards(t *testing.T) {
	pool := newTestPool(t)

	// second init reverts
	assert.True(t, reverts.IsRevertErr(pool.Init(startTime+1)))

	initialized, err := pool.Initialized()
	require.NoError(t, err)
	assert.True(t, initialized)
}

func TestNegativeEpochAmountReverts(t *testing.T) {
	pool := newTestPool(t)

	_, err := pool.Staking.AdvanceEpoch(startTime+10, big.NewInt(-1), wei(0), wei(0), wei(0))
	assert.True(t, reverts.IsRevertErr(err))
}

func TestLedgerSurvivesCommit(t *testing.T) {
	store := kv.NewMemLevelDB()
	defer store.Close()

	st := state.New(store)
	poolAddr := chess.BytesToAddress([]byte("pool"))
	oracle, err := schedule.NewFixedWeight(chess.UnitWei())
	require.NoError(t, err)
	collab := &Collaborators{
		Shares:       newMemShares(),
		Votes:        newMemVotes(),
		Schedule:     schedule.NewFixed(wei(10)),
		Oracle:       oracle,
		RewardSource: newMemSource(),
		Rebalancer:   newFakeRebalancer(),
		Minter:       newMemMinter(),
		Payout:       newMemPayout(),
	}
	engine := New(poolAddr, st, collab)
	alice := randAddress()

	require.NoError(t, engine.Init(startTime))
	require.NoError(t, engine.Deposit(startTime, alice, wei(100)))
	_, err = engine.AdvanceEpoch(startTime+10, wei(1), wei(2), wei(3), wei(4))
	require.NoError(t, err)
	require.NoError(t, st.Stage().Commit(store))

	// reload from the store into a fresh state
	reloaded := New(poolAddr, state.New(store), collab)
	total, err := reloaded.TotalBoosted()
	require.NoError(t, err)
	assertAmount(t, wei(100), total, "total boosted after reload")

	current, err := reloaded.CurrentEpoch()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), current)

	record, err := reloaded.EpochRecord(0)
	require.NoError(t, err)
	assertAmount(t, wei(1), record.AmountQueen, "queen total after reload")
	assertAmount(t, wei(100), record.TotalStake, "record stake after reload")
}
