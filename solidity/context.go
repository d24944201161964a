// Copyright (c) 2026 The Tranchess Go developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package solidity provides typed storage wrappers that mimic the layout
// primitives of the original Solidity contracts: value slots and mappings
// addressed by hashed positions.
package solidity

import (
	"github.com/tranchess/staking-go/chess"
	"github.com/tranchess/staking-go/state"
)

// Context binds storage wrappers to a contract address within a state.
type Context struct {
	address chess.Address
	state   *state.State
}

// NewContext creates a storage context.
func NewContext(address chess.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

// Address returns the bound contract address.
func (c *Context) Address() chess.Address {
	return c.address
}

// State returns the underlying state.
func (c *Context) State() *state.State {
	return c.state
}
