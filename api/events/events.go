// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	ethmath "github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/tierpool/tierpool/api/restutil"
	"github.com/tierpool/tierpool/logdb"
)

type Events struct {
	db    *logdb.LogDB
	limit uint64
}

func New(db *logdb.LogDB, logsLimit uint64) *Events {
	return &Events{
		db,
		logsLimit,
	}
}

// Filter query events with option
func (e *Events) filter(ctx context.Context, ef *EventFilter) ([]*FilteredEvent, error) {
	events, err := e.db.FilterEvents(ctx, ConvertEventFilter(ef))
	if err != nil {
		return nil, err
	}
	fes := make([]*FilteredEvent, len(events))
	for i, e := range events {
		fes[i] = ConvertEvent(e)
	}
	return fes, nil
}

func (e *Events) respond(w http.ResponseWriter, req *http.Request, filter *EventFilter) error {
	if err := filter.Validate(e.limit); err != nil {
		return err
	}
	fes, err := e.filter(req.Context(), filter)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, fes)
}

func (e *Events) handleFilter(w http.ResponseWriter, req *http.Request) error {
	var filter EventFilter
	if err := restutil.ParseJSON(req.Body, &filter); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	return e.respond(w, req, &filter)
}

func (e *Events) handleQuery(w http.ResponseWriter, req *http.Request) error {
	filter, err := ParseQuery(req.URL.Query())
	if err != nil {
		return err
	}
	return e.respond(w, req, filter)
}

func parseUint(q url.Values, name string, bits int) (*uint64, error) {
	s := q.Get(name)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(s, 10, bits)
	if err != nil {
		return nil, restutil.BadRequest(errors.WithMessage(err, name))
	}
	return &v, nil
}

// ParseQuery builds a single criteria filter from query parameters.
func ParseQuery(q url.Values) (*EventFilter, error) {
	var (
		filter   EventFilter
		criteria EventCriteria
		set      bool
	)
	if s := q.Get("address"); s != "" {
		addr, err := restutil.ParseAddress("address", s)
		if err != nil {
			return nil, err
		}
		criteria.Address, set = &addr, true
	}
	if s := q.Get("actor"); s != "" {
		addr, err := restutil.ParseAddress("actor", s)
		if err != nil {
			return nil, err
		}
		criteria.Actor, set = &addr, true
	}
	if s := q.Get("tokenId"); s != "" {
		id, err := restutil.ParseTokenID("tokenId", s)
		if err != nil {
			return nil, err
		}
		criteria.TokenID, set = (*ethmath.HexOrDecimal256)(id), true
	}
	if s := q.Get("name"); s != "" {
		criteria.Name, set = s, true
	}
	if set {
		filter.CriteriaSet = []*EventCriteria{&criteria}
	}

	from, err := parseUint(q, "from", 32)
	if err != nil {
		return nil, err
	}
	to, err := parseUint(q, "to", 32)
	if err != nil {
		return nil, err
	}
	if from != nil || to != nil {
		filter.Range = &Range{}
		if from != nil {
			v := uint32(*from)
			filter.Range.From = &v
		}
		if to != nil {
			v := uint32(*to)
			filter.Range.To = &v
		}
	}

	offset, err := parseUint(q, "offset", 64)
	if err != nil {
		return nil, err
	}
	limit, err := parseUint(q, "limit", 64)
	if err != nil {
		return nil, err
	}
	if offset != nil || limit != nil {
		filter.Options = &Options{Limit: limit}
		if offset != nil {
			filter.Options.Offset = *offset
		}
	}
	filter.Order = logdb.Order(q.Get("order"))
	return &filter, nil
}

func (e *Events) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /events").
		HandlerFunc(restutil.WrapHandlerFunc(e.handleQuery))
	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /events").
		HandlerFunc(restutil.WrapHandlerFunc(e.handleFilter))
}
