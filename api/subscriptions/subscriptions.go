// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/vechain/oraclenet/api/utils"
	"github.com/vechain/oraclenet/builtin/oracle"
	"github.com/vechain/oraclenet/log"
	"github.com/vechain/oraclenet/logdb"
	"github.com/vechain/oraclenet/metrics"
	"github.com/vechain/oraclenet/runtime"
	"github.com/vechain/oraclenet/thor"
)

var (
	logger = log.WithContext("pkg", "subscriptions")

	metricActiveCount = metrics.LazyLoadGauge("api_active_websocket_count")
)

const (
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 7) / 10
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
)

type Subscriptions struct {
	backtraceLimit uint32
	rt             *runtime.Runtime
	logDB          *logdb.LogDB
	upgrader       *websocket.Upgrader
	done           chan struct{}
	wg             sync.WaitGroup
}

func New(rt *runtime.Runtime, logDB *logdb.LogDB, allowedOrigins []string, backtraceLimit uint32) *Subscriptions {
	return &Subscriptions{
		backtraceLimit: backtraceLimit,
		rt:             rt,
		logDB:          logDB,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == origin || allowed == "*" {
						return true
					}
				}
				return false
			},
		},
		done: make(chan struct{}),
	}
}

// parsePosition reads the ledger sequence to follow from, default the head.
func (s *Subscriptions) parsePosition(posStr string) (uint32, error) {
	head := s.rt.Head().Sequence
	if posStr == "" {
		return head, nil
	}
	pos, err := strconv.ParseUint(posStr, 10, 32)
	if err != nil {
		return 0, utils.BadRequest(errors.WithMessage(err, "pos"))
	}
	if uint32(pos) > head {
		return 0, utils.BadRequest(errors.New("pos: out of range"))
	}
	if head-uint32(pos) > s.backtraceLimit {
		return 0, utils.Forbidden(errors.New("pos: backtrace limit exceeded"))
	}
	return uint32(pos), nil
}

func parseOptionalAddress(s string) (*thor.Address, error) {
	if s == "" {
		return nil, nil
	}
	addr, err := thor.ParseAddress(s)
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

func parseOptionalBytes32(s string) (*thor.Bytes32, error) {
	if s == "" {
		return nil, nil
	}
	b, err := thor.ParseBytes32(s)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Subscriptions) handleFeedReader(req *http.Request) (msgReader, error) {
	id := oracle.FeedID(mux.Vars(req)["id"])
	if err := id.Validate(); err != nil {
		return nil, utils.BadRequest(errors.WithMessage(err, "id"))
	}
	pos, err := s.parsePosition(req.URL.Query().Get("pos"))
	if err != nil {
		return nil, err
	}
	return newFeedReader(s.logDB, id, pos), nil
}

func (s *Subscriptions) handleEventReader(req *http.Request) (msgReader, error) {
	query := req.URL.Query()
	pos, err := s.parsePosition(query.Get("pos"))
	if err != nil {
		return nil, err
	}
	criteria := &logdb.EventCriteria{}
	if criteria.Address, err = parseOptionalAddress(query.Get("addr")); err != nil {
		return nil, utils.BadRequest(errors.WithMessage(err, "addr"))
	}
	for i := range criteria.Topics {
		name := "t" + strconv.Itoa(i)
		if criteria.Topics[i], err = parseOptionalBytes32(query.Get(name)); err != nil {
			return nil, utils.BadRequest(errors.WithMessage(err, name))
		}
	}
	return newEventReader(s.logDB, criteria, pos), nil
}

func (s *Subscriptions) handleSubject(subject string, newReader func(*http.Request) (msgReader, error)) utils.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) error {
		s.wg.Add(1)
		defer s.wg.Done()

		reader, err := newReader(req)
		if err != nil {
			return err
		}

		conn, err := s.upgrader.Upgrade(w, req, nil)
		// since the connection is hijacked, errors can not be responded any more
		if err != nil {
			logger.Debug("upgrade to websocket", "err", err)
			return nil
		}
		metricActiveCount().Add(1)
		defer metricActiveCount().Add(-1)

		closed := make(chan struct{})
		// start read loop to handle close and pong
		go func() {
			defer close(closed)
			conn.SetReadDeadline(time.Now().Add(pongWait))
			conn.SetPongHandler(func(string) error {
				conn.SetReadDeadline(time.Now().Add(pongWait))
				return nil
			})
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					logger.Debug("websocket read", "subject", subject, "err", err)
					return
				}
			}
		}()

		err = s.pipe(req.Context(), conn, reader, closed)
		if err != nil {
			logger.Debug("websocket pipe", "subject", subject, "err", err)
			msg := websocket.FormatCloseMessage(websocket.CloseInternalServerErr, err.Error())
			conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		} else {
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		}
		conn.Close()
		return nil
	}
}

func (s *Subscriptions) pipe(ctx context.Context, conn *websocket.Conn, reader msgReader, closed <-chan struct{}) error {
	ticker := s.rt.NewTicker()
	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	for {
		msgs, hasMore, err := reader.Read(ctx)
		if err != nil {
			return err
		}
		for _, msg := range msgs {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				return err
			}
		}
		if hasMore {
			select {
			case <-s.done:
				return nil
			case <-closed:
				return nil
			default:
			}
			continue
		}
		select {
		case <-s.done:
			return nil
		case <-closed:
			return nil
		case <-ticker.C():
		case <-pingTicker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}
		}
	}
}

// Close stops all subscriptions and waits for them to return.
func (s *Subscriptions) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/feeds/{id}").
		Methods(http.MethodGet).
		Name("subscriptions_feed").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSubject("feed", s.handleFeedReader)))
	sub.Path("/event").
		Methods(http.MethodGet).
		Name("subscriptions_event").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSubject("event", s.handleEventReader)))
}
