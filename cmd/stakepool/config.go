// Copyright (c) 2026 The Tranchess Go developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"math/big"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/tranchess/staking-go/chess"
	"github.com/tranchess/staking-go/schedule"
)

// Config describes the pool the daemon runs: the emission schedule, the
// pool weight, the external drip, and an optional scenario of operations
// replayed at startup.
type Config struct {
	Pool     string         `yaml:"pool"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Weight   string         `yaml:"weight"`
	DripRate string         `yaml:"dripRate"`
	Scenario []Step         `yaml:"scenario"`
}

type ScheduleConfig struct {
	Start  uint64   `yaml:"start"`
	Weekly []string `yaml:"weekly"`
}

// Step is one scripted pool operation.
type Step struct {
	Op      string `yaml:"op"` // deposit|withdraw|claim|sync|checkpoint|advance-epoch
	At      uint64 `yaml:"at"`
	Account string `yaml:"account"`
	Amount  string `yaml:"amount"`
	Queen   string `yaml:"queen"`
	Bishop  string `yaml:"bishop"`
	Rook    string `yaml:"rook"`
	Quote   string `yaml:"quote"`
}

func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithMessage(err, "read config")
	}
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.WithMessage(err, "parse config")
	}
	if config.Pool == "" {
		return nil, errors.New("config: pool address required")
	}
	return &config, nil
}

func (c *Config) poolAddress() (chess.Address, error) {
	addr, err := chess.ParseAddress(c.Pool)
	if err != nil {
		return chess.Address{}, errors.WithMessage(err, "config: pool")
	}
	return *addr, nil
}

func (c *Config) buildSchedule() (*schedule.Weekly, error) {
	amounts := make([]*big.Int, 0, len(c.Schedule.Weekly))
	for i, raw := range c.Schedule.Weekly {
		amount, err := parseAmount(raw)
		if err != nil {
			return nil, errors.WithMessagef(err, "config: schedule.weekly[%d]", i)
		}
		amounts = append(amounts, amount)
	}
	return schedule.NewWeekly(c.Schedule.Start, amounts)
}

func (c *Config) buildWeight() (*schedule.FixedWeight, error) {
	if c.Weight == "" {
		return schedule.NewFixedWeight(chess.UnitWei())
	}
	weight, err := parseAmount(c.Weight)
	if err != nil {
		return nil, errors.WithMessage(err, "config: weight")
	}
	return schedule.NewFixedWeight(weight)
}

func (c *Config) dripRate() (*big.Int, error) {
	if c.DripRate == "" {
		return new(big.Int), nil
	}
	rate, err := parseAmount(c.DripRate)
	if err != nil {
		return nil, errors.WithMessage(err, "config: dripRate")
	}
	return rate, nil
}

func parseAmount(raw string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, errors.Errorf("invalid amount %q", raw)
	}
	if amount.Sign() < 0 {
		return nil, errors.Errorf("negative amount %q", raw)
	}
	return amount, nil
}
