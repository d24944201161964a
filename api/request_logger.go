// Copyright (c) 2026 The Tranchess Go developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"time"

	"github.com/tranchess/staking-go/log"
)

// RequestLoggerHandler returns a http handler logging every served request.
func RequestLoggerHandler(handler http.Handler, logger log.Logger) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		handler.ServeHTTP(w, r)
		logger.Info("api request",
			"uri", r.URL.String(),
			"method", r.Method,
			"elapsed", time.Since(started),
		)
	}
	return http.HandlerFunc(fn)
}
