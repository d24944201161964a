// Copyright (c) 2026 The Tranchess Go developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/tranchess/staking-go/chess"
	"github.com/tranchess/staking-go/solidity"
)

var (
	slotAccounts     = nameToSlot("accounts")
	slotTotalBoosted = nameToSlot("total-boosted-stake")
)

func nameToSlot(name string) chess.Bytes32 {
	return chess.BytesToBytes32([]byte(name))
}

// storage represents the root storage of the staking pool.
type storage struct {
	context      *solidity.Context
	accounts     *solidity.Mapping[chess.Address, *Account]
	totalBoosted *solidity.Uint256
}

// newStorage creates a new instance of storage.
func newStorage(context *solidity.Context) *storage {
	return &storage{
		context:      context,
		accounts:     solidity.NewMapping[chess.Address, *Account](context, slotAccounts),
		totalBoosted: solidity.NewUint256(context, slotTotalBoosted),
	}
}

func (s *storage) GetAccount(addr chess.Address) (*Account, error) {
	acc, err := s.accounts.Get(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get account")
	}
	return acc.normalize(), nil
}

func (s *storage) SetAccount(addr chess.Address, entry *Account) error {
	if err := s.accounts.Set(addr, entry); err != nil {
		return errors.Wrap(err, "failed to set account")
	}
	return nil
}

func (s *storage) TotalBoosted() (*big.Int, error) {
	return s.totalBoosted.Get()
}

// ShiftTotalBoosted moves the global boosted total from an account's old
// boosted stake to its new one.
func (s *storage) ShiftTotalBoosted(oldBoosted, newBoosted *big.Int) error {
	if oldBoosted.Cmp(newBoosted) == 0 {
		return nil
	}
	if err := s.totalBoosted.Sub(oldBoosted); err != nil {
		return errors.Wrap(err, "failed to release boosted total")
	}
	if err := s.totalBoosted.Add(newBoosted); err != nil {
		return errors.Wrap(err, "failed to add boosted total")
	}
	return nil
}

// debugOverride replaces *ptr with a nonzero uint stored at the given slot.
// Used by tests to shrink protocol constants.
func (s *storage) debugOverride(ptr *uint32, slot chess.Bytes32) {
	if num, err := solidity.NewUint256(s.context, slot).Get(); err == nil {
		numUint64 := num.Uint64()
		if numUint64 != 0 {
			o := uint32(numUint64)
			logger.Warn("overrode state value", "variable", slot.String(), "value", o)
			*ptr = o
		}
	}
}
