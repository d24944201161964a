// Copyright (c) 2026 The Tranchess Go developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/tranchess/staking-go/chess"
	"github.com/tranchess/staking-go/kv"
	"github.com/tranchess/staking-go/stackedmap"
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

type storageKey struct {
	addr chess.Address
	key  chess.Bytes32
}

// State manages the ledger state as a journaled flat storage keyed by
// (address, slot). All mutations live in an in-memory journal until staged
// and committed to the backing store; checkpoints allow reverting an
// operation without touching anything written before it.
type State struct {
	store kv.Getter // backing store, may be nil for a transient state
	sm    *stackedmap.StackedMap[storageKey, rlp.RawValue]
}

// New creates a state instance on top of the given backing store.
// A nil store yields a transient, all-empty state.
func New(store kv.Getter) *State {
	st := &State{store: store}
	st.sm = stackedmap.New(st.storeGetter)
	st.sm.Push() // base layer holding all mutations
	return st
}

func (s *State) storeGetter(k storageKey) (rlp.RawValue, bool, error) {
	if s.store == nil {
		return nil, true, nil
	}
	raw, err := s.store.Get(makeStoreKey(k))
	if err != nil {
		if s.store.IsNotFound(err) {
			return nil, true, nil
		}
		return nil, false, &Error{err}
	}
	return raw, true, nil
}

func makeStoreKey(k storageKey) []byte {
	buf := make([]byte, 0, chess.AddressLength+32)
	return append(append(buf, k.addr.Bytes()...), k.key.Bytes()...)
}

// GetRawStorage gets the RLP encoded storage value for the given key.
func (s *State) GetRawStorage(addr chess.Address, key chess.Bytes32) (rlp.RawValue, error) {
	raw, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// SetRawStorage sets the RLP encoded storage value for the given key.
func (s *State) SetRawStorage(addr chess.Address, key chess.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// GetStorage returns storage value for the given key.
func (s *State) GetStorage(addr chess.Address, key chess.Bytes32) (chess.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return chess.Bytes32{}, err
	}
	if len(raw) == 0 {
		return chess.Bytes32{}, nil
	}
	_, content, _, err := rlp.Split(raw)
	if err != nil {
		return chess.Bytes32{}, &Error{err}
	}
	return chess.BytesToBytes32(content), nil
}

// SetStorage sets storage value for the given key.
// Zero value is stored as empty, which deletes the slot on commit.
func (s *State) SetStorage(addr chess.Address, key, value chess.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(trimLeadingZeros(value.Bytes()))
	s.SetRawStorage(addr, key, v)
}

// EncodeStorage sets storage value encoded by given enc method.
// An empty encoded value deletes the slot on commit.
func (s *State) EncodeStorage(addr chess.Address, key chess.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage gets and decodes storage value by given dec method.
func (s *State) DecodeStorage(addr chess.Address, key chess.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns the checkpoint to be passed to RevertTo.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo reverts the state to the given checkpoint.
// Passing a checkpoint that was never returned by NewCheckpoint breaks the
// journal and panics.
func (s *State) RevertTo(checkpoint int) {
	if checkpoint == 0 {
		panic("state: checkpoint out of range")
	}
	s.sm.PopTo(checkpoint)
}

// Stage squashes the journal into a stage ready to be committed.
func (s *State) Stage() *Stage {
	changes := make(map[storageKey]rlp.RawValue)
	s.sm.Journal(func(k storageKey, v rlp.RawValue) bool {
		changes[k] = v
		return true
	})
	return &Stage{changes: changes}
}

func trimLeadingZeros(b []byte) []byte {
	i := 0
	for i < len(b) && b[i] == 0 {
		i++
	}
	return b[i:]
}
