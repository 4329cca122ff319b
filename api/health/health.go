// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/tierpool/tierpool/api/restutil"
	"github.com/tierpool/tierpool/health"
)

type API struct {
	health       *health.Health
	defaultDelay time.Duration
}

// New serves h; a head older than defaultDelay is reported unhealthy unless
// the request sets maxTimeBetweenBlocks.
func New(h *health.Health, defaultDelay time.Duration) *API {
	return &API{health: h, defaultDelay: defaultDelay}
}

func (a *API) handleGetHealth(w http.ResponseWriter, req *http.Request) error {
	maxDelay := a.defaultDelay
	if s := req.URL.Query().Get("maxTimeBetweenBlocks"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return restutil.BadRequest(errors.WithMessage(err, "maxTimeBetweenBlocks"))
		}
		if d <= 0 {
			return restutil.BadRequest(errors.New("maxTimeBetweenBlocks: must be positive"))
		}
		maxDelay = d
	}

	status := a.health.Status(maxDelay)
	if !status.Healthy {
		w.Header().Set("Content-Type", restutil.JSONContentType)
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	return restutil.WriteJSON(w, status)
}

func (a *API) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /health").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGetHealth))
}
