// Copyright (c) 2025 The Lodepool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/lodepool/lodepool/api"
	"github.com/lodepool/lodepool/api/subscriptions"
	"github.com/lodepool/lodepool/co"
	"github.com/lodepool/lodepool/eventdb"
	"github.com/lodepool/lodepool/kv"
	"github.com/lodepool/lodepool/log"
	"github.com/lodepool/lodepool/lvldb"
	"github.com/lodepool/lodepool/metrics"
	"github.com/lodepool/lodepool/staking"
	"github.com/lodepool/lodepool/staking/reverts"
	"github.com/lodepool/lodepool/token/memledger"
)

var (
	version   = "1.0.0"
	gitCommit string
	release   = "dev"

	logger = log.WithContext("pkg", "main")
)

func fullVersion() string {
	if gitCommit == "" {
		return fmt.Sprintf("%s-%s", version, release)
	}
	return fmt.Sprintf("%s-%s-%.8s", version, release, gitCommit)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "Lodepool",
		Usage:     "Token staking pool with tiered time weighted rewards",
		Copyright: "2025 The Lodepool developers",
		Flags: []cli.Flag{
			dataDirFlag,
			genesisFlag,
			persistFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiLogsLimitFlag,
			verbosityFlag,
			jsonLogsFlag,
			enableAPILogsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			pprofFlag,
		},
		Action: runAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runAction(ctx *cli.Context) error {
	initLogger(ctx)
	logger.Info("starting pool service", "version", fullVersion())
	checkClockOffset()

	gene, err := loadGenesis(ctx)
	if err != nil {
		return err
	}

	var (
		mainDB *lvldb.LevelDB
		evDB   *eventdb.EventDB
	)
	if ctx.Bool(persistFlag.Name) {
		dataDir, err := makeDataDir(ctx)
		if err != nil {
			return err
		}
		if mainDB, err = openMainDB(dataDir); err != nil {
			return err
		}
		if evDB, err = openEventDB(dataDir); err != nil {
			mainDB.Close()
			return err
		}
		logger.Info("opened databases", "dir", dataDir)
	} else {
		if mainDB, err = lvldb.NewMem(); err != nil {
			return err
		}
		if evDB, err = eventdb.NewMem(); err != nil {
			mainDB.Close()
			return err
		}
	}
	defer func() {
		evDB.Close()
		mainDB.Close()
		logger.Info("databases closed")
	}()

	tok := memledger.New(gene.Pool)
	for _, acc := range gene.Accounts {
		tok.Mint(acc.Address, acc.Balance)
	}

	if err := initializePool(mainDB, gene); err != nil {
		return err
	}

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
		url, closeMetrics, err := startMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return err
		}
		defer closeMetrics()
		logger.Info("metrics service started", "url", url)
	}

	subs := subscriptions.New(splitOrigins(ctx.String(apiCorsFlag.Name)))
	staker, err := staking.Open(mainDB, tok, staking.Options{
		PoolAddress: gene.Pool,
		Sink:        staking.MultiSink{evDB, subs},
	})
	if err != nil {
		return err
	}

	handler, closeAPI := api.New(staker, evDB, subs, api.Options{
		AllowedOrigins:  ctx.String(apiCorsFlag.Name),
		PprofOn:         ctx.Bool(pprofFlag.Name),
		EnableReqLogger: ctx.Bool(enableAPILogsFlag.Name),
		EnableMetrics:   ctx.Bool(enableMetricsFlag.Name),
		LogsLimit:       ctx.Uint64(apiLogsLimitFlag.Name),
		Depositor:       tok,
	})
	defer closeAPI()

	apiURL, closeServer, err := startAPIServer(ctx, handler)
	if err != nil {
		return err
	}
	defer closeServer()

	printStartupMessage(gene, apiURL)

	done := make(chan struct{})
	var goes co.Goes
	goes.Go(func() { staker.Run(done) })
	goes.Go(func() { evDB.Run(done) })

	exitSignal := handleExitSignal()
	<-exitSignal.Done()

	close(done)
	goes.Wait()
	logger.Info("exited")
	return nil
}

// initializePool writes the genesis state on first run. Reopening an
// already initialized database keeps the stored state and ignores the
// genesis file.
func initializePool(db kv.GetPutter, gene *genesis) error {
	err := staking.Initialize(db, &staking.Genesis{
		Owner:        gene.Owner,
		RewardCap:    gene.RewardCap,
		LockDuration: gene.LockDuration,
	}, uint64(time.Now().Unix()))
	if err != nil {
		if !reverts.IsPrecondition(err) {
			return err
		}
		logger.Info("existing pool state found, genesis skipped")
	}
	return nil
}

func splitOrigins(corsFlag string) []string {
	if corsFlag == "" {
		return nil
	}
	var origins []string
	for _, origin := range strings.Split(corsFlag, ",") {
		origins = append(origins, strings.ToLower(strings.TrimSpace(origin)))
	}
	return origins
}

func printStartupMessage(gene *genesis, apiURL string) {
	fmt.Printf(`Starting %v
    Owner         [ %v ]
    Pool account  [ %v ]
    Reward cap    [ %v ]
    API portal    [ %v ]
`,
		"Lodepool "+fullVersion(),
		gene.Owner,
		gene.Pool,
		gene.RewardCap,
		apiURL,
	)
}
