// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/beevik/ntp"
	"github.com/elastic/gosigar"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/fdlimit"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mattn/go-isatty"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/tierpool/tierpool/builtin"
	"github.com/tierpool/tierpool/genesis"
	"github.com/tierpool/tierpool/health"
	"github.com/tierpool/tierpool/log"
	"github.com/tierpool/tierpool/logdb"
	"github.com/tierpool/tierpool/lvldb"
	rt "github.com/tierpool/tierpool/runtime"
	"github.com/tierpool/tierpool/tier"
)

func initLogger(ctx *cli.Context) (*slog.LevelVar, error) {
	verbosity, err := readIntFromUInt64Flag(ctx.Uint64(verbosityFlag.Name))
	if err != nil {
		return nil, err
	}
	lvl := &slog.LevelVar{}
	lvl.Set(log.FromLegacyLevel(verbosity))

	var handler slog.Handler
	if ctx.Bool(jsonLogsFlag.Name) {
		handler = log.JSONHandlerWithLevel(os.Stderr, lvl)
	} else {
		useColor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
		handler = log.NewTerminalHandlerWithLevel(os.Stderr, lvl, useColor)
	}
	log.SetDefault(log.NewLogger(handler))
	return lvl, nil
}

func selectGenesis(ctx *cli.Context) (*genesis.Genesis, error) {
	path := ctx.String(genesisFlag.Name)
	if path == "" {
		return genesis.NewDevnet(), nil
	}
	return genesis.Load(path)
}

func makeDataDir(ctx *cli.Context) (string, error) {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		return "", fmt.Errorf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name)
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return "", fmt.Errorf("create data dir [%v]: %w", dataDir, err)
	}
	return dataDir, nil
}

func makeInstanceDir(ctx *cli.Context, gene *genesis.Genesis) (string, error) {
	dataDir, err := makeDataDir(ctx)
	if err != nil {
		return "", err
	}
	instanceDir := filepath.Join(dataDir, fmt.Sprintf("instance-%x", gene.ID().Bytes()[24:]))
	if err := os.MkdirAll(instanceDir, 0o700); err != nil {
		return "", fmt.Errorf("create instance dir [%v]: %w", instanceDir, err)
	}
	return instanceDir, nil
}

func openMainDB(ctx *cli.Context, dir string) (*lvldb.LevelDB, error) {
	cacheMB, err := readIntFromUInt64Flag(ctx.Uint64(cacheFlag.Name))
	if err != nil {
		return nil, err
	}
	cacheMB = normalizeCacheSize(cacheMB)
	logger.Debug("cache size(MB)", "size", cacheMB)

	// Ensure Go's GC ignores the database cache for trigger percentage
	gogc := math.Max(20, math.Min(100, 100/(float64(cacheMB)/1024)))
	logger.Debug("sanitize Go's GC trigger", "percent", int(gogc))
	debug.SetGCPercent(int(gogc))

	fdCache, err := suggestFDCache()
	if err != nil {
		return nil, err
	}
	logger.Debug("fd cache", "n", fdCache)

	path := filepath.Join(dir, "main.db")
	db, err := lvldb.New(path, lvldb.Options{
		CacheSize:              cacheMB / 2,
		OpenFilesCacheCapacity: fdCache,
	})
	if err != nil {
		return nil, fmt.Errorf("open main database [%v]: %w", path, err)
	}
	return db, nil
}

func normalizeCacheSize(sizeMB int) int {
	if sizeMB < 128 {
		sizeMB = 128
	}

	var mem gosigar.Mem
	if err := mem.Get(); err != nil {
		logger.Warn("failed to get total mem", "err", err)
	} else {
		// limit to 1/2 os physical ram
		limitMB := int(mem.Total / 1024 / 1024 / 2)
		if sizeMB > limitMB {
			sizeMB = limitMB
			logger.Warn("cache size(MB) limited", "limit", limitMB)
		}
	}
	return sizeMB
}

func suggestFDCache() (int, error) {
	limit, err := fdlimit.Current()
	if err != nil {
		return 0, fmt.Errorf("get fd limit: %w", err)
	}
	if limit <= 1024 {
		logger.Warn("low fd limit, increase it if possible", "limit", limit)
	}

	n := limit / 2
	if n > 5120 {
		return 5120, nil
	}
	return n, nil
}

func openLogDB(dir string) (*logdb.LogDB, error) {
	path := filepath.Join(dir, "logs.db")
	db, err := logdb.New(path)
	if err != nil {
		return nil, fmt.Errorf("open log database [%v]: %w", path, err)
	}
	return db, nil
}

// openDatabases opens the main and log databases, on disk when persist is set
// and in memory otherwise. The returned string names where the data lives.
func openDatabases(ctx *cli.Context, gene *genesis.Genesis) (*lvldb.LevelDB, *logdb.LogDB, string, error) {
	if !ctx.Bool(persistFlag.Name) {
		logDB, err := logdb.NewMem()
		if err != nil {
			return nil, nil, "", err
		}
		return lvldb.NewMem(), logDB, "Memory", nil
	}

	instanceDir, err := makeInstanceDir(ctx, gene)
	if err != nil {
		return nil, nil, "", err
	}
	mainDB, err := openMainDB(ctx, instanceDir)
	if err != nil {
		return nil, nil, "", err
	}
	logDB, err := openLogDB(instanceDir)
	if err != nil {
		mainDB.Close()
		return nil, nil, "", err
	}
	return mainDB, logDB, instanceDir, nil
}

func startServer(addr string, handler http.Handler) (string, *http.Server, net.Listener, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, nil, fmt.Errorf("listen addr [%v]: %w", addr, err)
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
	}
	return "http://" + listener.Addr().String() + "/", srv, listener, nil
}

func checkClockOffset(server string, interval uint64) {
	resp, err := ntp.Query(server)
	if err != nil {
		logger.Debug("failed to access NTP", "err", err)
		return
	}
	if resp.ClockOffset > time.Duration(interval)*time.Second/2 {
		logger.Warn("clock offset detected", "offset", common.PrettyDuration(resp.ClockOffset))
	}
}

// syncLoop brings the reward accumulators up to the clock block, once at
// start and then once per block interval.
func syncLoop(ctx context.Context, runtime *rt.Runtime, status *health.Health) error {
	interval := time.Duration(runtime.Genesis().BlockInterval()) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := syncPool(runtime); err != nil {
			logger.Warn("failed to sync pool", "err", err)
		} else {
			status.BootstrapStatus(true)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func syncPool(runtime *rt.Runtime) error {
	block := runtime.BlockNumber()
	if block <= runtime.Head() {
		return nil
	}
	if err := runtime.Exec(block, func(c *builtin.Contracts) error {
		return c.Pool.UpdatePool(block)
	}); err != nil {
		return err
	}
	logger.Debug("pool synced", "block", block)
	return nil
}

func clockLoop(ctx context.Context, server string, interval uint64) error {
	if server == "" {
		return nil
	}
	checkClockOffset(server, interval)

	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			checkClockOffset(server, interval)
		}
	}
}

func printStartupMessage(w io.Writer, gene *genesis.Genesis, runtime *rt.Runtime, dataDir, apiURL, metricsURL string) {
	head := runtime.Head()
	metricsInfo := "Disabled"
	if metricsURL != "" {
		metricsInfo = metricsURL
	}
	fmt.Fprintf(w, `Starting %v
    Network     [ %v %v ]
    Head block  [ #%v @%v ]
    Data dir    [ %v ]
    API portal  [ %v ]
    Metrics     [ %v ]
`,
		"TierPool/"+fullVersion(),
		gene.ID(), gene.Name(),
		head, time.Unix(int64(gene.LaunchTime()+uint64(head)*gene.BlockInterval()), 0),
		dataDir,
		apiURL,
		metricsInfo,
	)
	if gene.Name() == "devnet" {
		printDevAccounts(w)
	}
}

func printDevAccounts(w io.Writer) {
	tableHead := `┌────────────────────────────────────────────┬────────────────────────────────────────────────────────────────────┐
│                   Address                  │                             Private Key                            │`
	tableContent := `
├────────────────────────────────────────────┼────────────────────────────────────────────────────────────────────┤
│ %v │ %v │`
	tableEnd := `
└────────────────────────────────────────────┴────────────────────────────────────────────────────────────────────┘`

	info := tableHead
	for _, a := range genesis.DevAccounts() {
		info += fmt.Sprintf(tableContent,
			a.Address,
			tier.BytesToBytes32(crypto.FromECDSA(a.PrivateKey)),
		)
	}
	fmt.Fprintln(w, info+tableEnd)
}
