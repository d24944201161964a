// Copyright (c) 2026 The Tranchess Go developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"math/big"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/tranchess/staking-go/api/utils"
	"github.com/tranchess/staking-go/chess"
	"github.com/tranchess/staking-go/staking/epoch"
)

// Backend projects account-level settlements without mutating state.
type Backend interface {
	BoostedBalance(addr chess.Address) (*big.Int, error)
	ClaimableRewards(now uint64, addr chess.Address) (*big.Int, error)
	ClaimableExternal(now uint64, addr chess.Address) (*big.Int, error)
	ClaimableAssets(now uint64, addr chess.Address) (*epoch.Buckets, error)
}

type Accounts struct {
	backend Backend
	now     func() uint64
}

// New creates the handler group. now supplies the projection time when the
// request carries no explicit timestamp.
func New(backend Backend, now func() uint64) *Accounts {
	return &Accounts{backend, now}
}

func (a *Accounts) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	parsed, err := chess.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	addr := *parsed
	now, err := a.parseTimestamp(req.URL.Query().Get("timestamp"))
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "timestamp"))
	}

	boosted, err := a.backend.BoostedBalance(addr)
	if err != nil {
		return err
	}
	reward, err := a.backend.ClaimableRewards(now, addr)
	if err != nil {
		return err
	}
	external, err := a.backend.ClaimableExternal(now, addr)
	if err != nil {
		return err
	}
	assets, err := a.backend.ClaimableAssets(now, addr)
	if err != nil {
		return err
	}

	return utils.WriteJSON(w, &Account{
		Address:           addr,
		BoostedBalance:    (*math.HexOrDecimal256)(boosted),
		ClaimableRewards:  (*math.HexOrDecimal256)(reward),
		ClaimableExternal: (*math.HexOrDecimal256)(external),
		ClaimableAssets: AssetAmounts{
			Queen:  (*math.HexOrDecimal256)(assets.Queen),
			Bishop: (*math.HexOrDecimal256)(assets.Bishop),
			Rook:   (*math.HexOrDecimal256)(assets.Rook),
			Quote:  (*math.HexOrDecimal256)(assets.Quote),
		},
		Timestamp: now,
	})
}

func (a *Accounts) parseTimestamp(raw string) (uint64, error) {
	if raw == "" {
		return a.now(), nil
	}
	return strconv.ParseUint(raw, 10, 64)
}

func (a *Accounts) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /accounts/{address}").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetAccount))
}

// Account is the settled projection of one account.
type Account struct {
	Address           chess.Address         `json:"address"`
	BoostedBalance    *math.HexOrDecimal256 `json:"boostedBalance"`
	ClaimableRewards  *math.HexOrDecimal256 `json:"claimableRewards"`
	ClaimableExternal *math.HexOrDecimal256 `json:"claimableExternal"`
	ClaimableAssets   AssetAmounts          `json:"claimableAssets"`
	Timestamp         uint64                `json:"timestamp"`
}

// AssetAmounts carries one amount per distributed asset.
type AssetAmounts struct {
	Queen  *math.HexOrDecimal256 `json:"queen"`
	Bishop *math.HexOrDecimal256 `json:"bishop"`
	Rook   *math.HexOrDecimal256 `json:"rook"`
	Quote  *math.HexOrDecimal256 `json:"quote"`
}
