// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"net/http/pprof"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/tierpool/tierpool/api/events"
	apihealth "github.com/tierpool/tierpool/api/health"
	"github.com/tierpool/tierpool/api/middleware"
	"github.com/tierpool/tierpool/api/pool"
	"github.com/tierpool/tierpool/api/subscriptions"
	"github.com/tierpool/tierpool/api/vault"
	"github.com/tierpool/tierpool/health"
	"github.com/tierpool/tierpool/log"
	"github.com/tierpool/tierpool/metrics"
	"github.com/tierpool/tierpool/runtime"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins       string
	LogsLimit            uint64
	PprofOn              bool
	EnableMetrics        bool
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
	BacktraceLimit       uint32
	Health               *health.Health
}

// New return api router and a func closing open subscriptions
func New(rt *runtime.Runtime, opts Options) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	pool.New(rt).
		Mount(router, "/pool")
	vault.New(rt).
		Mount(router, "/vault")
	events.New(rt.LogDB(), opts.LogsLimit).
		Mount(router, "/events")
	subs := subscriptions.New(rt, origins, opts.BacktraceLimit)
	subs.Mount(router, "/subscriptions")
	if opts.Health != nil {
		interval := time.Duration(rt.Genesis().BlockInterval()) * time.Second
		apihealth.New(opts.Health, 2*interval+5*time.Second).
			Mount(router, "/health")
	}

	if opts.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	if opts.EnableMetrics {
		router.Path("/metrics").
			Methods(http.MethodGet).
			Name("GET /metrics").
			Handler(metrics.HTTPHandler())
		router.Use(metricsMiddleware)
	}

	if opts.EnableReqLogger == nil {
		opts.EnableReqLogger = &atomic.Bool{}
	}
	router.Use(middleware.RequestLoggerMiddleware(logger, opts.EnableReqLogger, opts.SlowQueriesThreshold))

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type", "x-genesis-id"}),
		handlers.ExposedHeaders([]string{"x-genesis-id"}),
	)(handler)

	genesisID := rt.Genesis().ID().String()
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-genesis-id", genesisID)
		handler.ServeHTTP(w, r)
	}, subs.Close
}
