// Copyright (c) 2026 The Tranchess Go developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/tranchess/staking-go/chess"
)

// Uint256 is a wrapper for storage and retrieval of an unsigned 256-bit
// integer, similar to storing an uint256 in a smart contract.
// Values exceeding 256 bits are truncated to fit into chess.Bytes32.
type Uint256 struct {
	context *Context
	pos     chess.Bytes32
}

// NewUint256 creates an uint256 slot wrapper.
func NewUint256(context *Context, slot chess.Bytes32) *Uint256 {
	return &Uint256{context: context, pos: slot}
}

// Get loads the stored value. A never written slot yields zero.
func (u *Uint256) Get() (*big.Int, error) {
	storage, err := u.context.state.GetStorage(u.context.address, u.pos)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(storage.Bytes()), nil
}

// Set stores the given value.
func (u *Uint256) Set(value *big.Int) {
	storage := chess.BytesToBytes32(value.Bytes())
	u.context.state.SetStorage(u.context.address, u.pos, storage)
}

// Add increases the stored value by the given amount.
func (u *Uint256) Add(value *big.Int) error {
	storage, err := u.Get()
	if err != nil {
		return err
	}
	storage.Add(storage, value)
	u.Set(storage)
	return nil
}

// Sub decreases the stored value by the given amount.
// Underflow is an invariant violation and returns an error.
func (u *Uint256) Sub(value *big.Int) error {
	storage, err := u.Get()
	if err != nil {
		return err
	}
	storage.Sub(storage, value)
	if storage.Sign() < 0 {
		return errors.New("uint256 underflow")
	}
	u.Set(storage)
	return nil
}

// GetUint64 loads the stored value as an uint64.
func (u *Uint256) GetUint64() (uint64, error) {
	val, err := u.Get()
	if err != nil {
		return 0, err
	}
	return val.Uint64(), nil
}

// SetUint64 stores the given uint64 value.
func (u *Uint256) SetUint64(value uint64) {
	u.Set(new(big.Int).SetUint64(value))
}
