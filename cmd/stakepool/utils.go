// Copyright (c) 2026 The Tranchess Go developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"log/slog"
	"math/big"
	"os"
	"sync"

	"github.com/mattn/go-isatty"

	"github.com/tranchess/staking-go/chess"
	"github.com/tranchess/staking-go/log"
	"github.com/tranchess/staking-go/staking"
	"github.com/tranchess/staking-go/staking/epoch"
)

func initLogger(verbosity int) {
	var level slog.LevelVar
	level.Set(log.FromLegacyLevel(verbosity))
	useColor := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	handler := log.NewTerminalHandlerWithLevel(os.Stderr, &level, useColor)
	log.SetDefault(log.NewLogger(handler))
}

// lockedBackend serializes api access to the engine, which shares one
// journaled state with the scenario runner.
type lockedBackend struct {
	mu     sync.Mutex
	engine *staking.Staking
}

func (b *lockedBackend) Initialized() (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.engine.Initialized()
}

func (b *lockedBackend) TotalBoosted() (*big.Int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.engine.TotalBoosted()
}

func (b *lockedBackend) RewardIntegral() (*big.Int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.engine.RewardIntegral()
}

func (b *lockedBackend) CheckpointTime() (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.engine.CheckpointTime()
}

func (b *lockedBackend) CurrentEpoch() (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.engine.CurrentEpoch()
}

func (b *lockedBackend) EpochRecord(index uint64) (*epoch.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.engine.EpochRecord(index)
}

func (b *lockedBackend) BoostedBalance(addr chess.Address) (*big.Int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.engine.BoostedBalance(addr)
}

func (b *lockedBackend) ClaimableRewards(now uint64, addr chess.Address) (*big.Int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.engine.ClaimableRewards(now, addr)
}

func (b *lockedBackend) ClaimableExternal(now uint64, addr chess.Address) (*big.Int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.engine.ClaimableExternal(now, addr)
}

func (b *lockedBackend) ClaimableAssets(now uint64, addr chess.Address) (*epoch.Buckets, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.engine.ClaimableAssets(now, addr)
}
