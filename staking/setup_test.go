package staking

import (
	"math/big"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranchess/staking-go/chess"
	"github.com/tranchess/staking-go/schedule"
	"github.com/tranchess/staking-go/solidity"
	"github.com/tranchess/staking-go/staking/epoch"
	"github.com/tranchess/staking-go/state"
)

// startTime is week aligned so scenario math lines up with week boundaries.
const startTime = chess.WeekSeconds * 1000

func randAddress() (addr chess.Address) {
	rand.Read(addr[:]) //nolint:gosec
	return
}

func wei(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), chess.UnitWei())
}

type memShares struct {
	balances map[chess.Address]*big.Int
	total    *big.Int
}

func newMemShares() *memShares {
	return &memShares{balances: make(map[chess.Address]*big.Int), total: new(big.Int)}
}

func (m *memShares) BalanceOf(addr chess.Address) (*big.Int, error) {
	if balance, ok := m.balances[addr]; ok {
		return new(big.Int).Set(balance), nil
	}
	return new(big.Int), nil
}

func (m *memShares) TotalSupply() (*big.Int, error) {
	return new(big.Int).Set(m.total), nil
}

func (m *memShares) Deposit(addr chess.Address, amount *big.Int) error {
	balance, _ := m.BalanceOf(addr)
	m.balances[addr] = balance.Add(balance, amount)
	m.total.Add(m.total, amount)
	return nil
}

func (m *memShares) Withdraw(addr chess.Address, amount *big.Int) error {
	balance, _ := m.BalanceOf(addr)
	m.balances[addr] = balance.Sub(balance, amount)
	m.total.Sub(m.total, amount)
	return nil
}

type memVotes struct {
	balances map[chess.Address]*big.Int
	total    *big.Int
}

func newMemVotes() *memVotes {
	return &memVotes{balances: make(map[chess.Address]*big.Int), total: new(big.Int)}
}

func (m *memVotes) BalanceOf(addr chess.Address) (*big.Int, error) {
	if balance, ok := m.balances[addr]; ok {
		return new(big.Int).Set(balance), nil
	}
	return new(big.Int), nil
}

func (m *memVotes) TotalSupply() (*big.Int, error) {
	return new(big.Int).Set(m.total), nil
}

func (m *memVotes) set(addr chess.Address, amount *big.Int) {
	current, _ := m.BalanceOf(addr)
	m.total.Sub(m.total, current)
	m.total.Add(m.total, amount)
	m.balances[addr] = new(big.Int).Set(amount)
}

// setTotalOnly unbalances the escrow on purpose, for invariant violation tests.
func (m *memVotes) setTotalOnly(total *big.Int) {
	m.total = new(big.Int).Set(total)
}

type memMinter struct {
	minted   map[chess.Address]*big.Int
	failNext error
}

func newMemMinter() *memMinter {
	return &memMinter{minted: make(map[chess.Address]*big.Int)}
}

func (m *memMinter) Mint(to chess.Address, amount *big.Int) error {
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	if _, ok := m.minted[to]; !ok {
		m.minted[to] = new(big.Int)
	}
	m.minted[to].Add(m.minted[to], amount)
	return nil
}

type memPayout struct {
	rewards map[chess.Address]*big.Int
	assets  map[Asset]map[chess.Address]*big.Int
	// assets in the order TransferAsset was called
	order []Asset
}

func newMemPayout() *memPayout {
	assets := make(map[Asset]map[chess.Address]*big.Int)
	for asset := AssetQueen; asset <= AssetQuote; asset++ {
		assets[asset] = make(map[chess.Address]*big.Int)
	}
	return &memPayout{rewards: make(map[chess.Address]*big.Int), assets: assets}
}

func (m *memPayout) TransferAsset(asset Asset, to chess.Address, amount *big.Int) error {
	m.order = append(m.order, asset)
	if _, ok := m.assets[asset][to]; !ok {
		m.assets[asset][to] = new(big.Int)
	}
	m.assets[asset][to].Add(m.assets[asset][to], amount)
	return nil
}

func (m *memPayout) TransferReward(to chess.Address, amount *big.Int) error {
	if _, ok := m.rewards[to]; !ok {
		m.rewards[to] = new(big.Int)
	}
	m.rewards[to].Add(m.rewards[to], amount)
	return nil
}

// memSource holds a pending inflow that the next Pull moves into custody,
// mirroring an external stream releasing on demand.
type memSource struct {
	custody *big.Int
	pending *big.Int
}

func newMemSource() *memSource {
	return &memSource{custody: new(big.Int), pending: new(big.Int)}
}

func (m *memSource) add(amount *big.Int) {
	m.pending.Add(m.pending, amount)
}

func (m *memSource) Pull() error {
	m.custody.Add(m.custody, m.pending)
	m.pending = new(big.Int)
	return nil
}

func (m *memSource) Balance() (*big.Int, error) {
	return new(big.Int).Set(m.custody), nil
}

type transformFunc func(queen, bishop, rook *big.Int) (*big.Int, *big.Int, *big.Int)

type fakeRebalancer struct {
	transforms map[uint64]transformFunc
}

func newFakeRebalancer() *fakeRebalancer {
	return &fakeRebalancer{transforms: make(map[uint64]transformFunc)}
}

func (r *fakeRebalancer) setTransform(epoch uint64, fn transformFunc) {
	r.transforms[epoch] = fn
}

func (r *fakeRebalancer) Rebalance(queen, bishop, rook *big.Int, epoch uint64) (*big.Int, *big.Int, *big.Int, error) {
	if fn, ok := r.transforms[epoch]; ok {
		q, b, rk := fn(queen, bishop, rook)
		return q, b, rk, nil
	}
	return queen, bishop, rook, nil
}

type poolOptions struct {
	rate     *big.Int
	weight   *big.Int
	maxSteps uint64
}

type poolOption func(*poolOptions)

func withRate(rate *big.Int) poolOption {
	return func(o *poolOptions) { o.rate = rate }
}

func withWeight(weight *big.Int) poolOption {
	return func(o *poolOptions) { o.weight = weight }
}

func withMaxSteps(steps uint64) poolOption {
	return func(o *poolOptions) { o.maxSteps = steps }
}

type testPool struct {
	*Staking

	st         *state.State
	shares     *memShares
	votes      *memVotes
	minter     *memMinter
	payout     *memPayout
	source     *memSource
	rebalancer *fakeRebalancer
}

func newTestPool(t *testing.T, opts ...poolOption) *testPool {
	options := poolOptions{
		rate:   wei(10), // 10 tokens per second
		weight: chess.UnitWei(),
	}
	for _, opt := range opts {
		opt(&options)
	}

	st := state.New(nil)
	poolAddr := chess.BytesToAddress([]byte("pool"))

	if options.maxSteps != 0 {
		sctx := solidity.NewContext(poolAddr, st)
		solidity.NewUint256(sctx, chess.KeyCheckpointIterations).SetUint64(options.maxSteps)
	}

	oracle, err := schedule.NewFixedWeight(options.weight)
	require.NoError(t, err)

	pool := &testPool{
		st:         st,
		shares:     newMemShares(),
		votes:      newMemVotes(),
		minter:     newMemMinter(),
		payout:     newMemPayout(),
		source:     newMemSource(),
		rebalancer: newFakeRebalancer(),
	}
	pool.Staking = New(poolAddr, st, &Collaborators{
		Shares:       pool.shares,
		Votes:        pool.votes,
		Schedule:     schedule.NewFixed(options.rate),
		Oracle:       oracle,
		RewardSource: pool.source,
		Rebalancer:   pool.rebalancer,
		Minter:       pool.minter,
		Payout:       pool.payout,
	})
	require.NoError(t, pool.Init(startTime))
	return pool
}

type TestFunc func(t *testing.T)

type TestSequence struct {
	pool *testPool

	funcs []TestFunc
	mu    sync.Mutex
}

func NewSequence(pool *testPool) *TestSequence {
	return &TestSequence{funcs: make([]TestFunc, 0), pool: pool}
}

func (ts *TestSequence) AddFunc(f TestFunc) *TestSequence {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	ts.funcs = append(ts.funcs, f)
	return ts
}

func (ts *TestSequence) Deposit(at uint64, addr chess.Address, amount *big.Int) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		if err := ts.pool.Deposit(at, addr, amount); err != nil {
			t.Fatalf("failed to deposit for %s: %v", addr, err)
		}
	})
}

func (ts *TestSequence) Withdraw(at uint64, addr chess.Address, amount *big.Int) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		if err := ts.pool.Withdraw(at, addr, amount); err != nil {
			t.Fatalf("failed to withdraw for %s: %v", addr, err)
		}
	})
}

func (ts *TestSequence) Claim(at uint64, addr chess.Address) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		if _, err := ts.pool.ClaimRewards(at, addr); err != nil {
			t.Fatalf("failed to claim for %s: %v", addr, err)
		}
	})
}

func (ts *TestSequence) Sync(at uint64, addr chess.Address) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		if err := ts.pool.Sync(at, addr); err != nil {
			t.Fatalf("failed to sync %s: %v", addr, err)
		}
	})
}

// Vote adjusts the fake escrow and refreshes the account's boost.
func (ts *TestSequence) Vote(at uint64, addr chess.Address, amount *big.Int) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		ts.pool.votes.set(addr, amount)
		if err := ts.pool.Sync(at, addr); err != nil {
			t.Fatalf("failed to sync %s after vote: %v", addr, err)
		}
	})
}

// External queues an inflow the next harvest will observe.
func (ts *TestSequence) External(amount *big.Int) *TestSequence {
	return ts.AddFunc(func(*testing.T) {
		ts.pool.source.add(amount)
	})
}

func (ts *TestSequence) Checkpoint(at uint64) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		if _, err := ts.pool.Staking.Checkpoint(at); err != nil {
			t.Fatalf("failed to checkpoint at %d: %v", at, err)
		}
	})
}

func (ts *TestSequence) AdvanceEpoch(at uint64, queen, bishop, rook, quote *big.Int) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		if _, err := ts.pool.Staking.AdvanceEpoch(at, queen, bishop, rook, quote); err != nil {
			t.Fatalf("failed to advance epoch at %d: %v", at, err)
		}
	})
}

func (ts *TestSequence) Run(t *testing.T) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	for _, f := range ts.funcs {
		f(t)
	}
}

type AccountAssertions struct {
	pool *testPool
	at   uint64
	addr chess.Address

	boosted  *big.Int
	reward   *big.Int
	external *big.Int
	buckets  *epoch.Buckets
}

func AssertAccount(pool *testPool, at uint64, addr chess.Address) *AccountAssertions {
	return &AccountAssertions{pool: pool, at: at, addr: addr}
}

func (aa *AccountAssertions) Boosted(expected *big.Int) *AccountAssertions {
	aa.boosted = expected
	return aa
}

func (aa *AccountAssertions) Reward(expected *big.Int) *AccountAssertions {
	aa.reward = expected
	return aa
}

func (aa *AccountAssertions) External(expected *big.Int) *AccountAssertions {
	aa.external = expected
	return aa
}

func (aa *AccountAssertions) Assets(expected *epoch.Buckets) *AccountAssertions {
	aa.buckets = expected
	return aa
}

func (aa *AccountAssertions) Assert(t *testing.T) {
	if aa.boosted != nil {
		boosted, err := aa.pool.BoostedBalance(aa.addr)
		assert.NoError(t, err, "failed to get boosted balance of %s", aa.addr)
		assertAmount(t, aa.boosted, boosted, "account %s boosted stake", aa.addr)
	}
	if aa.reward != nil {
		reward, err := aa.pool.ClaimableRewards(aa.at, aa.addr)
		assert.NoError(t, err, "failed to get claimable rewards of %s", aa.addr)
		assertAmount(t, aa.reward, reward, "account %s claimable rewards", aa.addr)
	}
	if aa.external != nil {
		external, err := aa.pool.ClaimableExternal(aa.at, aa.addr)
		assert.NoError(t, err, "failed to get claimable external of %s", aa.addr)
		assertAmount(t, aa.external, external, "account %s claimable external", aa.addr)
	}
	if aa.buckets != nil {
		assets, err := aa.pool.ClaimableAssets(aa.at, aa.addr)
		assert.NoError(t, err, "failed to get claimable assets of %s", aa.addr)
		assertAmount(t, aa.buckets.Queen, assets.Queen, "account %s queen bucket", aa.addr)
		assertAmount(t, aa.buckets.Bishop, assets.Bishop, "account %s bishop bucket", aa.addr)
		assertAmount(t, aa.buckets.Rook, assets.Rook, "account %s rook bucket", aa.addr)
		assertAmount(t, aa.buckets.Quote, assets.Quote, "account %s quote bucket", aa.addr)
	}
}

// assertAmount compares big.Int values numerically; reflect equality trips
// over zero values with differently shaped backing slices.
func assertAmount(t *testing.T, expected, actual *big.Int, format string, args ...any) {
	t.Helper()
	if expected.Cmp(actual) != 0 {
		t.Errorf(format+": expected %s, got %s", append(args, expected, actual)...)
	}
}
