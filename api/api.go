// Copyright (c) 2026 The Tranchess Go developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package api serves the read-only HTTP surface of the staking pool:
// pool totals, projected account settlements, epoch records and metrics.
package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/tranchess/staking-go/api/accounts"
	"github.com/tranchess/staking-go/api/epochs"
	"github.com/tranchess/staking-go/api/pool"
	"github.com/tranchess/staking-go/log"
	"github.com/tranchess/staking-go/metrics"
)

var logger = log.WithContext("pkg", "api")

// Backend is the engine surface the API reads from. Implementations must
// serialize access; the engine itself is not safe for concurrent use.
type Backend interface {
	pool.Backend
	accounts.Backend
	epochs.Backend
}

type Options struct {
	AllowedOrigins  string
	EnableReqLogger bool
	EnableMetrics   bool
}

// New returns the api handler. now supplies the projection timestamp for
// account views when the request carries none.
func New(backend Backend, now func() uint64, opts Options) http.HandlerFunc {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	pool.New(backend).
		Mount(router, "/pool")
	accounts.New(backend, now).
		Mount(router, "/accounts")
	epochs.New(backend).
		Mount(router, "/epochs")

	if opts.EnableMetrics {
		router.Path("/metrics").Handler(metrics.HTTPHandler())
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)

	if opts.EnableReqLogger {
		handler = RequestLoggerHandler(handler, logger)
	}

	return handler.ServeHTTP
}
