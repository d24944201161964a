// Copyright (c) 2026 The Tranchess Go developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/tranchess/staking-go/kv"
)

// Stage is the squashed set of state changes, ready to be committed
// atomically to a backing store.
type Stage struct {
	changes map[storageKey]rlp.RawValue
}

// Len returns the number of changed slots.
func (st *Stage) Len() int {
	return len(st.changes)
}

// Commit writes all changes into the given store in one batch.
func (st *Stage) Commit(store kv.Store) error {
	batch := store.NewBatch()
	for k, v := range st.changes {
		if len(v) == 0 {
			if err := batch.Delete(makeStoreKey(k)); err != nil {
				return &Error{err}
			}
			continue
		}
		if err := batch.Put(makeStoreKey(k), v); err != nil {
			return &Error{err}
		}
	}
	if err := batch.Write(); err != nil {
		return &Error{err}
	}
	return nil
}
