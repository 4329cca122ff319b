// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/tierpool/tierpool/api"
	"github.com/tierpool/tierpool/attest"
	"github.com/tierpool/tierpool/builtin"
	"github.com/tierpool/tierpool/cry"
	"github.com/tierpool/tierpool/health"
	"github.com/tierpool/tierpool/log"
	"github.com/tierpool/tierpool/metrics"
	"github.com/tierpool/tierpool/pool"
	rt "github.com/tierpool/tierpool/runtime"
	"github.com/tierpool/tierpool/tier"
)

var (
	version   string
	gitCommit string
	gitTag    string

	logger = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "TierPool",
		Usage:     "NFT staking reward pool",
		Copyright: "2025 The VeChainThor developers",
		Flags: []cli.Flag{
			genesisFlag,
			dataDirFlag,
			persistFlag,
			cacheFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiLogsLimitFlag,
			apiBacktraceLimitFlag,
			enableAPILogsFlag,
			apiSlowQueriesThresholdFlag,
			pprofFlag,
			verbosityFlag,
			jsonLogsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			ntpServerFlag,
		},
		Action: serveAction,
		Commands: []cli.Command{
			{
				Name:   "attest",
				Usage:  "sign a rarity attestation for a collection token",
				Flags:  []cli.Flag{keyFlag, tokenIDFlag, rarityFlag},
				Action: attestAction,
			},
			{
				Name:   "verify",
				Usage:  "check a rarity attestation against a signer",
				Flags:  []cli.Flag{signerFlag, tokenIDFlag, rarityFlag, signatureFlag},
				Action: verifyAction,
			},
			{
				Name:  "inspect",
				Usage: "dump the pool state, or a single staked token",
				Flags: []cli.Flag{
					genesisFlag,
					dataDirFlag,
					persistFlag,
					cacheFlag,
					tokenIDFlag,
				},
				Action: inspectAction,
			},
			{
				Name:   "dev-accounts",
				Usage:  "print the accounts funded by the dev network genesis",
				Action: func(*cli.Context) error { printDevAccounts(os.Stdout); return nil },
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fatal(err)
	}
}

func serveAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { logger.Info("exited") }()

	if _, err := initLogger(ctx); err != nil {
		return err
	}

	metricsURL := ""
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	gene, err := selectGenesis(ctx)
	if err != nil {
		return err
	}
	mainDB, logDB, dataDir, err := openDatabases(ctx, gene)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing main database..."); mainDB.Close() }()
	defer func() { logger.Info("closing log database..."); logDB.Close() }()

	runtime, err := rt.New(mainDB, logDB, gene)
	if err != nil {
		return err
	}

	healthStatus := health.New()
	logsLimit := ctx.Uint64(apiLogsLimitFlag.Name)
	enableReqLogger := &atomic.Bool{}
	enableReqLogger.Store(ctx.Bool(enableAPILogsFlag.Name))

	handler, closeSubs := api.New(runtime, api.Options{
		AllowedOrigins:       ctx.String(apiCorsFlag.Name),
		LogsLimit:            logsLimit,
		PprofOn:              ctx.Bool(pprofFlag.Name),
		EnableMetrics:        ctx.Bool(enableMetricsFlag.Name),
		EnableReqLogger:      enableReqLogger,
		SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		BacktraceLimit:       uint32(ctx.Uint64(apiBacktraceLimitFlag.Name)),
		Health:               healthStatus,
	})
	defer func() { logger.Info("closing subscriptions..."); closeSubs() }()

	apiURL, apiSrv, apiListener, err := startServer(ctx.String(apiAddrFlag.Name), handler)
	if err != nil {
		return err
	}

	group, gctx := errgroup.WithContext(exitSignal)
	group.Go(func() error { return serve(gctx, apiSrv, apiListener) })

	if ctx.Bool(enableMetricsFlag.Name) {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.HTTPHandler())
		url, srv, listener, err := startServer(ctx.String(metricsAddrFlag.Name), mux)
		if err != nil {
			apiSrv.Close()
			return err
		}
		metricsURL = url + "metrics"
		group.Go(func() error { return serve(gctx, srv, listener) })
	}

	group.Go(func() error { healthStatus.Run(gctx, runtime); return nil })
	group.Go(func() error { return syncLoop(gctx, runtime, healthStatus) })
	group.Go(func() error {
		return clockLoop(gctx, ctx.String(ntpServerFlag.Name), gene.BlockInterval())
	})

	printStartupMessage(os.Stdout, gene, runtime, dataDir, apiURL, metricsURL)

	return group.Wait()
}

func serve(ctx context.Context, srv *http.Server, listener net.Listener) error {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(listener) }()

	select {
	case <-ctx.Done():
		logger.Info("stopping server...", "addr", listener.Addr())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func handleExitSignal() context.Context {
	ctx, _ := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return ctx
}

func attestAction(ctx *cli.Context) error {
	return runAttest(os.Stdout, ctx.String(keyFlag.Name), ctx.String(tokenIDFlag.Name), ctx.String(rarityFlag.Name))
}

func runAttest(w io.Writer, keyHex, tokenID, rarity string) error {
	key, err := cry.HexToKey(strings.TrimPrefix(keyHex, "0x"))
	if err != nil {
		return fmt.Errorf("parse key: %w", err)
	}
	id, err := parseTokenID(tokenID)
	if err != nil {
		return err
	}
	r, err := tier.ParseRarity(rarity)
	if err != nil {
		return err
	}
	a, err := attest.Sign(id, r, key)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(a)
}

func verifyAction(ctx *cli.Context) error {
	return runVerify(os.Stdout,
		ctx.String(signerFlag.Name),
		ctx.String(tokenIDFlag.Name),
		ctx.String(rarityFlag.Name),
		ctx.String(signatureFlag.Name),
	)
}

func runVerify(w io.Writer, signer, tokenID, rarity, signature string) error {
	addr, err := tier.ParseAddress(signer)
	if err != nil {
		return fmt.Errorf("parse signer: %w", err)
	}
	id, err := parseTokenID(tokenID)
	if err != nil {
		return err
	}
	r, err := tier.ParseRarity(rarity)
	if err != nil {
		return err
	}
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return fmt.Errorf("parse signature: %w", err)
	}
	if !attest.NewVerifier().Verify(id, r, sig, addr) {
		fmt.Fprintln(w, "invalid")
		return errors.New("attestation not signed by signer")
	}
	fmt.Fprintln(w, "valid")
	return nil
}

func inspectAction(ctx *cli.Context) error {
	log.SetDefault(log.NewLogger(log.DiscardHandler()))

	var id *big.Int
	if s := ctx.String(tokenIDFlag.Name); s != "" {
		var err error
		if id, err = parseTokenID(s); err != nil {
			return err
		}
	}

	gene, err := selectGenesis(ctx)
	if err != nil {
		return err
	}
	mainDB, logDB, _, err := openDatabases(ctx, gene)
	if err != nil {
		return err
	}
	defer mainDB.Close()
	defer logDB.Close()

	runtime, err := rt.New(mainDB, logDB, gene)
	if err != nil {
		return err
	}
	return runInspect(os.Stdout, runtime, id)
}

type poolState struct {
	Head                    uint32
	Block                   uint32
	Owner                   tier.Address
	TrustedSigner           tier.Address
	MaxSupply               *big.Int
	DistributeTokenPerBlock *big.Int
	Boosts                  [tier.NumRarities]uint64
	Staked                  [tier.NumRarities]uint64
	AccRewardPerNFT         [tier.NumRarities]*big.Int
	LastRewardBlock         uint32
	VaultBalance            *big.Int
}

type tokenState struct {
	*pool.StakedNFT
	Reward  *big.Int
	Pending *big.Int
}

func runInspect(w io.Writer, runtime *rt.Runtime, id *big.Int) error {
	block := runtime.BlockNumber()
	if head := runtime.Head(); head > block {
		block = head
	}

	cfg := &spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true, SortKeys: true}

	return runtime.View(func(c *builtin.Contracts) error {
		if id != nil {
			nft, err := c.Pool.StakedNFT(id)
			if err != nil {
				return err
			}
			if nft == nil {
				return fmt.Errorf("token %v is not staked", id)
			}
			reward, err := c.Pool.GetUserRewardByNFT(id)
			if err != nil {
				return err
			}
			pending, err := c.Pool.PendingReward(id, block)
			if err != nil {
				return err
			}
			cfg.Fdump(w, &tokenState{StakedNFT: nft, Reward: reward, Pending: pending})
			return nil
		}

		st := &poolState{Head: runtime.Head(), Block: block}
		var err error
		if st.Owner, err = c.Pool.Owner(); err != nil {
			return err
		}
		if st.TrustedSigner, err = c.Pool.TrustedSigner(); err != nil {
			return err
		}
		if st.MaxSupply, err = c.Pool.MaxSupply(); err != nil {
			return err
		}
		if st.DistributeTokenPerBlock, err = c.Pool.DistributeTokenPerBlock(); err != nil {
			return err
		}
		if st.Boosts, err = c.Pool.Boosts(); err != nil {
			return err
		}
		if st.LastRewardBlock, err = c.Pool.LastRewardBlock(); err != nil {
			return err
		}
		if st.Staked[tier.Common], err = c.Pool.TotalNftCommon(); err != nil {
			return err
		}
		if st.Staked[tier.Rare], err = c.Pool.TotalNftRare(); err != nil {
			return err
		}
		if st.Staked[tier.SuperRare], err = c.Pool.TotalNftSuperRare(); err != nil {
			return err
		}
		if st.AccRewardPerNFT[tier.Common], err = c.Pool.CommonReward(); err != nil {
			return err
		}
		if st.AccRewardPerNFT[tier.Rare], err = c.Pool.RareReward(); err != nil {
			return err
		}
		if st.AccRewardPerNFT[tier.SuperRare], err = c.Pool.SuperRareReward(); err != nil {
			return err
		}
		if st.VaultBalance, err = c.Token.BalanceOf(c.Vault.Address()); err != nil {
			return err
		}
		cfg.Fdump(w, st)
		return nil
	})
}
