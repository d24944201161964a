// Copyright (c) 2026 The Tranchess Go developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/tranchess/staking-go/api"
	"github.com/tranchess/staking-go/kv"
	"github.com/tranchess/staking-go/log"
	"github.com/tranchess/staking-go/metrics"
	"github.com/tranchess/staking-go/staking"
	"github.com/tranchess/staking-go/state"
)

var (
	version   string
	gitCommit string
	logger    = log.WithContext("pkg", "stakepool")
)

func fullVersion() string {
	if gitCommit == "" {
		return version + "-dev"
	}
	return fmt.Sprintf("%s-%s", version, gitCommit)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "stakepool",
		Usage:     "LP staking pool accounting daemon",
		Copyright: "2026 Tranchess",
		Flags: []cli.Flag{
			configFlag,
			dataDirFlag,
			apiAddrFlag,
			apiCorsFlag,
			verbosityFlag,
			enableMetricsFlag,
		},
		Action: defaultAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// stateHolder pairs the journaled state with its backing store so scripted
// operations and periodic commits share one view.
type stateHolder struct {
	store kv.Store
	state *state.State
}

func (h *stateHolder) commit() error {
	return h.state.Stage().Commit(h.store)
}

func defaultAction(ctx *cli.Context) error {
	defer func() { logger.Info("exited") }()

	initLogger(ctx.Int(verbosityFlag.Name))
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	config, err := loadConfig(ctx.String(configFlag.Name))
	if err != nil {
		return err
	}
	poolAddr, err := config.poolAddress()
	if err != nil {
		return err
	}

	store, err := openStore(ctx.String(dataDirFlag.Name))
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing ledger database..."); store.Close() }()

	holder := &stateHolder{store: store, state: state.New(store)}
	now := func() uint64 { return uint64(time.Now().Unix()) }

	emissionSchedule, err := config.buildSchedule()
	if err != nil {
		return err
	}
	weight, err := config.buildWeight()
	if err != nil {
		return err
	}
	rate, err := config.dripRate()
	if err != nil {
		return err
	}

	votes := &simVotes{newBalanceLedger(votesAddr, holder)}
	engine := staking.New(poolAddr, holder.state, &staking.Collaborators{
		Shares:       &simShares{newBalanceLedger(sharesAddr, holder)},
		Votes:        votes,
		Schedule:     emissionSchedule,
		Oracle:       weight,
		RewardSource: newDripSource(holder, rate, now),
		Rebalancer:   identityRebalancer{},
		Minter:       &simMinter{newBalanceLedger(minterAddr, holder)},
		Payout:       newSimPayout(holder),
	})

	initialized, err := engine.Initialized()
	if err != nil {
		return err
	}
	if !initialized {
		if err := engine.Init(now()); err != nil {
			return err
		}
	}

	if err := runScenario(engine, votes, config.Scenario); err != nil {
		return err
	}
	if err := holder.commit(); err != nil {
		return err
	}

	backend := &lockedBackend{engine: engine}
	srv, apiURL, err := startAPIServer(ctx, api.New(backend, now, api.Options{
		AllowedOrigins:  ctx.String(apiCorsFlag.Name),
		EnableReqLogger: true,
		EnableMetrics:   ctx.Bool(enableMetricsFlag.Name),
	}))
	if err != nil {
		return err
	}
	defer func() {
		logger.Info("stopping API server...")
		srv.Shutdown(context.Background())
	}()

	logger.Info("pool daemon started",
		"version", fullVersion(),
		"pool", poolAddr,
		"api", apiURL,
	)

	<-handleExitSignal()
	return nil
}

func openStore(dataDir string) (kv.StoreCloser, error) {
	if dataDir == "" {
		logger.Warn("no data directory, ledger state will not persist")
		return kv.NewMemLevelDB(), nil
	}
	return kv.NewLevelDB(dataDir, 128, 512)
}

func startAPIServer(ctx *cli.Context, handler http.HandlerFunc) (*http.Server, string, error) {
	addr := ctx.String(apiAddrFlag.Name)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, "", err
	}
	srv := &http.Server{Handler: handler}
	go func() {
		if err := srv.Serve(listener); err != http.ErrServerClosed {
			logger.Error("api server stopped", "error", err)
		}
	}()
	return srv, "http://" + listener.Addr().String() + "/", nil
}

func handleExitSignal() <-chan struct{} {
	done := make(chan struct{})
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		sig := <-ch
		logger.Info("exit signal received", "signal", sig)
		close(done)
	}()
	return done
}
