// Copyright (c) 2026 The Tranchess Go developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"

	"github.com/tranchess/staking-go/api/utils"
)

// Backend exposes the pool-level totals of the staking engine.
type Backend interface {
	Initialized() (bool, error)
	TotalBoosted() (*big.Int, error)
	RewardIntegral() (*big.Int, error)
	CheckpointTime() (uint64, error)
	CurrentEpoch() (uint64, error)
}

type Pool struct {
	backend Backend
}

func New(backend Backend) *Pool {
	return &Pool{backend}
}

func (p *Pool) handleGetSummary(w http.ResponseWriter, _ *http.Request) error {
	initialized, err := p.backend.Initialized()
	if err != nil {
		return err
	}
	totalBoosted, err := p.backend.TotalBoosted()
	if err != nil {
		return err
	}
	integral, err := p.backend.RewardIntegral()
	if err != nil {
		return err
	}
	checkpointTime, err := p.backend.CheckpointTime()
	if err != nil {
		return err
	}
	epoch, err := p.backend.CurrentEpoch()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Summary{
		Initialized:    initialized,
		TotalBoosted:   (*math.HexOrDecimal256)(totalBoosted),
		RewardIntegral: (*math.HexOrDecimal256)(integral),
		CheckpointTime: checkpointTime,
		CurrentEpoch:   epoch,
	})
}

func (p *Pool) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /pool").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetSummary))
}

// Summary is the pool-level view of the engine.
type Summary struct {
	Initialized    bool                  `json:"initialized"`
	TotalBoosted   *math.HexOrDecimal256 `json:"totalBoosted"`
	RewardIntegral *math.HexOrDecimal256 `json:"rewardIntegral"`
	CheckpointTime uint64                `json:"checkpointTime"`
	CurrentEpoch   uint64                `json:"currentEpoch"`
}
