// Copyright (c) 2026 The Tranchess Go developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/tranchess/staking-go/chess"
	"github.com/tranchess/staking-go/staking"
)

// runScenario replays the scripted operations from the config against the
// engine. It stops at the first failing step.
func runScenario(engine *staking.Staking, votes *simVotes, steps []Step) error {
	for i, step := range steps {
		if err := runStep(engine, votes, &step); err != nil {
			return errors.WithMessagef(err, "scenario step %d (%s)", i, step.Op)
		}
	}
	if len(steps) > 0 {
		logger.Info("scenario replayed", "steps", len(steps))
	}
	return nil
}

func runStep(engine *staking.Staking, votes *simVotes, step *Step) error {
	switch step.Op {
	case "deposit":
		addr, amount, err := accountAmount(step)
		if err != nil {
			return err
		}
		return engine.Deposit(step.At, addr, amount)

	case "withdraw":
		addr, amount, err := accountAmount(step)
		if err != nil {
			return err
		}
		return engine.Withdraw(step.At, addr, amount)

	case "claim":
		addr, err := account(step)
		if err != nil {
			return err
		}
		_, err = engine.ClaimRewards(step.At, addr)
		return err

	case "sync":
		addr, err := account(step)
		if err != nil {
			return err
		}
		return engine.Sync(step.At, addr)

	case "vote":
		// adjust the simulated voting escrow, then refresh the boost
		addr, amount, err := accountAmount(step)
		if err != nil {
			return err
		}
		if err := votes.SetBalance(addr, amount); err != nil {
			return err
		}
		return engine.Sync(step.At, addr)

	case "checkpoint":
		_, err := engine.Checkpoint(step.At)
		return err

	case "advance-epoch":
		queen, err := parseAmount(orZero(step.Queen))
		if err != nil {
			return errors.WithMessage(err, "queen")
		}
		bishop, err := parseAmount(orZero(step.Bishop))
		if err != nil {
			return errors.WithMessage(err, "bishop")
		}
		rook, err := parseAmount(orZero(step.Rook))
		if err != nil {
			return errors.WithMessage(err, "rook")
		}
		quote, err := parseAmount(orZero(step.Quote))
		if err != nil {
			return errors.WithMessage(err, "quote")
		}
		_, err = engine.AdvanceEpoch(step.At, queen, bishop, rook, quote)
		return err

	default:
		return errors.Errorf("unknown op %q", step.Op)
	}
}

func account(step *Step) (chess.Address, error) {
	addr, err := chess.ParseAddress(step.Account)
	if err != nil {
		return chess.Address{}, errors.WithMessage(err, "account")
	}
	return *addr, nil
}

func accountAmount(step *Step) (chess.Address, *big.Int, error) {
	addr, err := account(step)
	if err != nil {
		return chess.Address{}, nil, err
	}
	amount, err := parseAmount(step.Amount)
	if err != nil {
		return chess.Address{}, nil, errors.WithMessage(err, "amount")
	}
	return addr, amount, nil
}

func orZero(raw string) string {
	if raw == "" {
		return "0"
	}
	return raw
}
