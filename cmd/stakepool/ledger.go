// Copyright (c) 2026 The Tranchess Go developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"math/big"

	"github.com/tranchess/staking-go/chess"
	"github.com/tranchess/staking-go/solidity"
	"github.com/tranchess/staking-go/staking"
)

// The daemon keeps its collaborator ledgers in the same journaled state as
// the pool, each rooted at its own contract address, so one Stage commit
// persists everything consistently.
var (
	sharesAddr  = chess.BytesToAddress([]byte("sim-share-ledger"))
	votesAddr   = chess.BytesToAddress([]byte("sim-voting-escrow"))
	minterAddr  = chess.BytesToAddress([]byte("sim-reward-minter"))
	payoutAddr  = chess.BytesToAddress([]byte("sim-payout-sink"))
	sourceAddr  = chess.BytesToAddress([]byte("sim-reward-source"))
	slotBalance = chess.BytesToBytes32([]byte("balances"))
	slotTotal   = chess.BytesToBytes32([]byte("total-supply"))
	slotCustody = chess.BytesToBytes32([]byte("custody"))
	slotPullAt  = chess.BytesToBytes32([]byte("pulled-at"))
)

// balanceLedger is a state-backed balance book shared by the share ledger,
// the voting escrow and the reward minter.
type balanceLedger struct {
	balances *solidity.Mapping[chess.Address, *big.Int]
	total    *solidity.Uint256
}

func newBalanceLedger(addr chess.Address, st *stateHolder) *balanceLedger {
	sctx := solidity.NewContext(addr, st.state)
	return &balanceLedger{
		balances: solidity.NewMapping[chess.Address, *big.Int](sctx, slotBalance),
		total:    solidity.NewUint256(sctx, slotTotal),
	}
}

func (l *balanceLedger) BalanceOf(addr chess.Address) (*big.Int, error) {
	return l.balances.Get(addr)
}

func (l *balanceLedger) TotalSupply() (*big.Int, error) {
	return l.total.Get()
}

func (l *balanceLedger) add(addr chess.Address, amount *big.Int) error {
	balance, err := l.balances.Get(addr)
	if err != nil {
		return err
	}
	balance.Add(balance, amount)
	if err := l.balances.Set(addr, balance); err != nil {
		return err
	}
	return l.total.Add(amount)
}

func (l *balanceLedger) sub(addr chess.Address, amount *big.Int) error {
	balance, err := l.balances.Get(addr)
	if err != nil {
		return err
	}
	balance.Sub(balance, amount)
	if err := l.balances.Set(addr, balance); err != nil {
		return err
	}
	return l.total.Sub(amount)
}

// simShares implements staking.ShareLedger.
type simShares struct{ *balanceLedger }

func (s *simShares) Deposit(addr chess.Address, amount *big.Int) error {
	return s.add(addr, amount)
}

func (s *simShares) Withdraw(addr chess.Address, amount *big.Int) error {
	return s.sub(addr, amount)
}

// simVotes implements staking.VotingEscrow, with a scenario-scriptable
// setter.
type simVotes struct{ *balanceLedger }

func (v *simVotes) SetBalance(addr chess.Address, amount *big.Int) error {
	current, err := v.balances.Get(addr)
	if err != nil {
		return err
	}
	if amount.Cmp(current) >= 0 {
		return v.add(addr, new(big.Int).Sub(amount, current))
	}
	return v.sub(addr, new(big.Int).Sub(current, amount))
}

// simMinter implements staking.RewardMinter by crediting a balance book.
type simMinter struct{ *balanceLedger }

func (m *simMinter) Mint(to chess.Address, amount *big.Int) error {
	return m.add(to, amount)
}

// simPayout implements staking.PayoutSink, recording per-asset transfers.
type simPayout struct {
	transfers *solidity.Mapping[chess.Address, *big.Int]
	byAsset   [4]*solidity.Mapping[chess.Address, *big.Int]
}

func newSimPayout(st *stateHolder) *simPayout {
	sctx := solidity.NewContext(payoutAddr, st.state)
	p := &simPayout{
		transfers: solidity.NewMapping[chess.Address, *big.Int](sctx, chess.BytesToBytes32([]byte("reward"))),
	}
	for asset := staking.AssetQueen; asset <= staking.AssetQuote; asset++ {
		slot := chess.BytesToBytes32([]byte("asset-" + asset.String()))
		p.byAsset[asset] = solidity.NewMapping[chess.Address, *big.Int](sctx, slot)
	}
	return p
}

func (p *simPayout) credit(book *solidity.Mapping[chess.Address, *big.Int], to chess.Address, amount *big.Int) error {
	paid, err := book.Get(to)
	if err != nil {
		return err
	}
	paid.Add(paid, amount)
	return book.Set(to, paid)
}

func (p *simPayout) TransferAsset(asset staking.Asset, to chess.Address, amount *big.Int) error {
	return p.credit(p.byAsset[asset], to, amount)
}

func (p *simPayout) TransferReward(to chess.Address, amount *big.Int) error {
	return p.credit(p.transfers, to, amount)
}

// dripSource implements passthrough.Source as a constant-rate stream into
// the pool's custody.
type dripSource struct {
	custody  *solidity.Uint256
	pulledAt *solidity.Uint256
	rate     *big.Int
	now      func() uint64
}

func newDripSource(st *stateHolder, rate *big.Int, now func() uint64) *dripSource {
	sctx := solidity.NewContext(sourceAddr, st.state)
	return &dripSource{
		custody:  solidity.NewUint256(sctx, slotCustody),
		pulledAt: solidity.NewUint256(sctx, slotPullAt),
		rate:     rate,
		now:      now,
	}
}

func (d *dripSource) Pull() error {
	now := d.now()
	last, err := d.pulledAt.GetUint64()
	if err != nil {
		return err
	}
	if last != 0 && now > last && d.rate.Sign() > 0 {
		inflow := new(big.Int).SetUint64(now - last)
		inflow.Mul(inflow, d.rate)
		if err := d.custody.Add(inflow); err != nil {
			return err
		}
	}
	d.pulledAt.SetUint64(now)
	return nil
}

func (d *dripSource) Balance() (*big.Int, error) {
	return d.custody.Get()
}

// identityRebalancer leaves the buckets unchanged across epochs. Real
// rebalance transforms live on the collaborator side.
type identityRebalancer struct{}

func (identityRebalancer) Rebalance(queen, bishop, rook *big.Int, _ uint64) (*big.Int, *big.Int, *big.Int, error) {
	return queen, bishop, rook, nil
}
