// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	genesisFlag = cli.StringFlag{
		Name:  "genesis",
		Usage: "path to a genesis yaml file, the dev network is used if omitted",
	}
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for databases",
	}
	persistFlag = cli.BoolFlag{
		Name:  "persist",
		Usage: "save state to disk in data-dir instead of memory",
	}
	cacheFlag = cli.Uint64Flag{
		Name:  "cache",
		Usage: "megabytes of ram allocated to the main database",
		Value: 1024,
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8670",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	apiLogsLimitFlag = cli.Uint64Flag{
		Name:  "api-logs-limit",
		Value: 1000,
		Usage: "limit the number of events returned by /events api",
	}
	apiBacktraceLimitFlag = cli.Uint64Flag{
		Name:  "api-backtrace-limit",
		Value: 1000,
		Usage: "limit the distance between 'position' and best block for subscriptions APIs",
	}
	enableAPILogsFlag = cli.BoolFlag{
		Name:  "enable-api-logs",
		Usage: "enables API requests logging",
	}
	apiSlowQueriesThresholdFlag = cli.Uint64Flag{
		Name:  "api-slow-queries-threshold",
		Usage: "all queries with duration (ms) above the threshold will be logged",
	}
	pprofFlag = cli.BoolFlag{
		Name:  "pprof",
		Usage: "turn on go-pprof",
	}
	verbosityFlag = cli.Uint64Flag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0 crit, 3 info, 5 trace)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: "localhost:2113",
		Usage: "metrics service listening address",
	}
	ntpServerFlag = cli.StringFlag{
		Name:  "ntp-server",
		Value: "pool.ntp.org",
		Usage: "NTP server used to check the clock offset, empty to disable",
	}

	// attest and verify flags
	keyFlag = cli.StringFlag{
		Name:  "key",
		Usage: "hex encoded private key of the trusted signer",
	}
	signerFlag = cli.StringFlag{
		Name:  "signer",
		Usage: "address of the trusted signer",
	}
	tokenIDFlag = cli.StringFlag{
		Name:  "token-id",
		Usage: "collection token id, decimal or 0x prefixed hex",
	}
	rarityFlag = cli.StringFlag{
		Name:  "rarity",
		Usage: "rarity tier (common|rare|super-rare)",
	}
	signatureFlag = cli.StringFlag{
		Name:  "signature",
		Usage: "hex encoded 65 byte signature",
	}
)
