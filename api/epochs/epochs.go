// Copyright (c) 2026 The Tranchess Go developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package epochs

import (
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/tranchess/staking-go/api/utils"
	"github.com/tranchess/staking-go/staking/epoch"
)

// Backend enumerates the append-only epoch record sequence.
type Backend interface {
	CurrentEpoch() (uint64, error)
	EpochRecord(index uint64) (*epoch.Record, error)
}

type Epochs struct {
	backend Backend
}

func New(backend Backend) *Epochs {
	return &Epochs{backend}
}

func (e *Epochs) handleList(w http.ResponseWriter, _ *http.Request) error {
	current, err := e.backend.CurrentEpoch()
	if err != nil {
		return err
	}
	records := make([]*Record, 0, current)
	for index := uint64(0); index < current; index++ {
		record, err := e.backend.EpochRecord(index)
		if err != nil {
			return err
		}
		records = append(records, convertRecord(index, record))
	}
	return utils.WriteJSON(w, &List{
		CurrentEpoch: current,
		Records:      records,
	})
}

func (e *Epochs) handleGet(w http.ResponseWriter, req *http.Request) error {
	index, err := strconv.ParseUint(mux.Vars(req)["index"], 10, 64)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "index"))
	}
	current, err := e.backend.CurrentEpoch()
	if err != nil {
		return err
	}
	if index >= current {
		return utils.NotFound(errors.New("no record for epoch"))
	}
	record, err := e.backend.EpochRecord(index)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertRecord(index, record))
}

func (e *Epochs) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /epochs").
		HandlerFunc(utils.WrapHandlerFunc(e.handleList))
	sub.Path("/{index}").
		Methods(http.MethodGet).
		Name("GET /epochs/{index}").
		HandlerFunc(utils.WrapHandlerFunc(e.handleGet))
}

func convertRecord(index uint64, record *epoch.Record) *Record {
	return &Record{
		Index:        index,
		AmountQueen:  (*math.HexOrDecimal256)(record.AmountQueen),
		AmountBishop: (*math.HexOrDecimal256)(record.AmountBishop),
		AmountRook:   (*math.HexOrDecimal256)(record.AmountRook),
		AmountQuote:  (*math.HexOrDecimal256)(record.AmountQuote),
		TotalStake:   (*math.HexOrDecimal256)(record.TotalStake),
	}
}

// Record is one settled distribution epoch.
type Record struct {
	Index        uint64                `json:"index"`
	AmountQueen  *math.HexOrDecimal256 `json:"amountQueen"`
	AmountBishop *math.HexOrDecimal256 `json:"amountBishop"`
	AmountRook   *math.HexOrDecimal256 `json:"amountRook"`
	AmountQuote  *math.HexOrDecimal256 `json:"amountQuote"`
	TotalStake   *math.HexOrDecimal256 `json:"totalStake"`
}

// List enumerates the recorded epochs.
type List struct {
	CurrentEpoch uint64    `json:"currentEpoch"`
	Records      []*Record `json:"records"`
}
