// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package middleware

import (
	"bufio"
	"bytes"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/tierpool/tierpool/log"
)

// maxLoggedBody caps how much of a request body ends up in a log line.
const maxLoggedBody = 1024

// statusRecorder remembers the response code. It keeps http.Hijacker so
// websocket upgrades pass through.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// RequestLoggerMiddleware logs every request when enabled is set, and requests
// slower than slowQueriesThreshold regardless. A zero threshold with logging
// disabled bypasses the middleware.
func RequestLoggerMiddleware(logger log.Logger, enabled *atomic.Bool, slowQueriesThreshold time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled.Load() && slowQueriesThreshold == 0 {
				next.ServeHTTP(w, r)
				return
			}

			var body []byte
			if r.Body != nil {
				var err error
				if body, err = io.ReadAll(r.Body); err != nil {
					logger.Warn("failed to read request body", "uri", r.URL.String(), "err", err)
					http.Error(w, "unreadable body", http.StatusBadRequest)
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))
			}

			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()
			next.ServeHTTP(rec, r)
			elapsed := time.Since(start)

			slow := slowQueriesThreshold > 0 && elapsed > slowQueriesThreshold
			if !enabled.Load() && !slow {
				return
			}

			route := "unknown"
			if cr := mux.CurrentRoute(r); cr != nil && cr.GetName() != "" {
				route = cr.GetName()
			}
			if len(body) > maxLoggedBody {
				body = append(body[:maxLoggedBody:maxLoggedBody], "..."...)
			}
			ctx := []any{
				"route", route,
				"method", r.Method,
				"uri", r.URL.String(),
				"status", rec.status,
				"durationMs", elapsed.Milliseconds(),
				"body", string(body),
			}
			if slow {
				logger.Warn("slow api request", ctx...)
			} else {
				logger.Info("api request", ctx...)
			}
		})
	}
}
