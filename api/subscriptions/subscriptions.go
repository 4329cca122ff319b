// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/tierpool/tierpool/api/events"
	"github.com/tierpool/tierpool/api/restutil"
	"github.com/tierpool/tierpool/log"
	"github.com/tierpool/tierpool/runtime"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 7) / 10
)

type Subscriptions struct {
	rt             *runtime.Runtime
	backtraceLimit uint32
	upgrader       *websocket.Upgrader
	done           chan struct{}
	wg             sync.WaitGroup
}

// New serves event subscriptions. A subscription may not start more than
// backtraceLimit blocks behind the head.
func New(rt *runtime.Runtime, allowedOrigins []string, backtraceLimit uint32) *Subscriptions {
	return &Subscriptions{
		rt:             rt,
		backtraceLimit: backtraceLimit,
		upgrader: &websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == "*" || allowed == origin {
						return true
					}
				}
				return false
			},
		},
		done: make(chan struct{}),
	}
}

func (s *Subscriptions) parsePosition(value string) (uint32, error) {
	head := s.rt.Head()
	if value == "" {
		return head, nil
	}
	pos, err := strconv.ParseUint(value, 0, 32)
	if err != nil {
		return 0, restutil.BadRequest(errors.WithMessage(err, "pos"))
	}
	if head > uint32(pos) && head-uint32(pos) > s.backtraceLimit {
		return 0, restutil.Forbidden(fmt.Errorf("pos: backtrace limit exceeded, head %d", head))
	}
	return uint32(pos), nil
}

func (s *Subscriptions) handleSubjectEvent(w http.ResponseWriter, req *http.Request) error {
	pos, err := s.parsePosition(req.URL.Query().Get("pos"))
	if err != nil {
		return err
	}
	filter, err := events.ParseQuery(req.URL.Query())
	if err != nil {
		return err
	}
	criteria := events.ConvertEventFilter(&events.EventFilter{
		CriteriaSet: filter.CriteriaSet,
		Options:     &events.Options{Limit: new(uint64)},
	}).CriteriaSet

	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		// the upgrader already replied
		logger.Debug("upgrade failed", "err", err)
		return nil
	}

	s.wg.Add(1)
	defer s.wg.Done()
	defer conn.Close()

	reader := newEventReader(s.rt.LogDB(), pos, criteria)
	if err := s.pipe(req.Context(), conn, reader); err != nil {
		logger.Debug("subscription closed", "err", err)
		msg := websocket.FormatCloseMessage(websocket.CloseInternalServerErr, err.Error())
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	}
	return nil
}

func (s *Subscriptions) pipe(ctx context.Context, conn *websocket.Conn, reader *eventReader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	closed := make(chan struct{})
	// the read loop only handles control frames
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		waiter := s.rt.NewHeadWaiter()
		msgs, err := reader.Read(ctx, s.rt.Head())
		if err != nil {
			return err
		}
		for _, msg := range msgs {
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				return nil
			}
		}

		select {
		case <-s.done:
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
			return nil
		case <-closed:
			return nil
		case <-ctx.Done():
			return nil
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return nil
			}
		case <-waiter:
		}
	}
}

// Close ends all subscriptions and waits for them to return.
func (s *Subscriptions) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/event").
		Methods(http.MethodGet).
		Name("WS /subscriptions/event").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleSubjectEvent))
}
