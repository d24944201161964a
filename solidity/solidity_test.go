// Copyright (c) 2026 The Tranchess Go developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranchess/staking-go/chess"
	"github.com/tranchess/staking-go/state"
)

func newContext() *Context {
	return NewContext(chess.BytesToAddress([]byte("contract")), state.New(nil))
}

func TestUint256(t *testing.T) {
	sctx := newContext()
	counter := NewUint256(sctx, chess.BytesToBytes32([]byte("counter")))

	value, err := counter.Get()
	require.NoError(t, err)
	assert.Zero(t, value.Sign())

	counter.Set(big.NewInt(100))
	require.NoError(t, counter.Add(big.NewInt(20)))
	require.NoError(t, counter.Sub(big.NewInt(50)))

	value, err = counter.Get()
	require.NoError(t, err)
	assert.Zero(t, big.NewInt(70).Cmp(value))

	// underflow refuses instead of wrapping
	assert.Error(t, counter.Sub(big.NewInt(71)))

	counter.SetUint64(42)
	u, err := counter.GetUint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), u)
}

func TestUint256DistinctSlots(t *testing.T) {
	sctx := newContext()
	a := NewUint256(sctx, chess.BytesToBytes32([]byte("a")))
	b := NewUint256(sctx, chess.BytesToBytes32([]byte("b")))

	a.SetUint64(1)
	b.SetUint64(2)

	av, err := a.GetUint64()
	require.NoError(t, err)
	bv, err := b.GetUint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), av)
	assert.Equal(t, uint64(2), bv)
}

type entry struct {
	Amount *big.Int
	Flag   uint64
}

func TestMapping(t *testing.T) {
	sctx := newContext()
	m := NewMapping[chess.Address, *entry](sctx, chess.BytesToBytes32([]byte("entries")))

	key := chess.BytesToAddress([]byte("holder"))

	// a never written key yields an allocated zero value
	got, err := m.Get(key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.Amount)
	assert.Zero(t, got.Flag)

	require.NoError(t, m.Set(key, &entry{Amount: big.NewInt(7), Flag: 1}))

	got, err = m.Get(key)
	require.NoError(t, err)
	assert.Zero(t, big.NewInt(7).Cmp(got.Amount))
	assert.Equal(t, uint64(1), got.Flag)

	// other keys stay untouched
	other, err := m.Get(chess.BytesToAddress([]byte("other")))
	require.NoError(t, err)
	assert.Nil(t, other.Amount)
}

func TestMappingBigIntKeys(t *testing.T) {
	sctx := newContext()
	m := NewMapping[*big.Int, *big.Int](sctx, chess.BytesToBytes32([]byte("by-index")))

	require.NoError(t, m.Set(big.NewInt(0), big.NewInt(10)))
	require.NoError(t, m.Set(big.NewInt(1), big.NewInt(20)))

	v, err := m.Get(big.NewInt(1))
	require.NoError(t, err)
	assert.Zero(t, big.NewInt(20).Cmp(v))
}

func TestContextAddress(t *testing.T) {
	addr := chess.BytesToAddress([]byte("contract"))
	sctx := NewContext(addr, state.New(nil))
	assert.Equal(t, addr, sctx.Address())
}
