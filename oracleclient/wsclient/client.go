// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package wsclient

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/vechain/oraclenet/api/types"
	"github.com/vechain/oraclenet/builtin/oracle"
	"github.com/vechain/oraclenet/oracleclient/common"
	"github.com/vechain/oraclenet/thor"
)

type Client struct {
	host   string
	scheme string
}

// Subscription is used to handle the active subscription
type Subscription[T any] struct {
	EventChan   <-chan common.EventWrapper[T]
	Unsubscribe func() error
}

func NewClient(url string) (*Client, error) {
	var host string
	var scheme string

	if strings.Contains(url, "https://") || strings.Contains(url, "wss://") {
		host = strings.TrimPrefix(strings.TrimPrefix(url, "https://"), "wss://")
		scheme = "wss"
	} else if strings.Contains(url, "http://") || strings.Contains(url, "ws://") {
		host = strings.TrimPrefix(strings.TrimPrefix(url, "http://"), "ws://")
		scheme = "ws"
	} else {
		return nil, fmt.Errorf("invalid url")
	}

	return &Client{
		host:   strings.TrimSuffix(host, "/"),
		scheme: scheme,
	}, nil
}

// EventQuery selects the events to subscribe. Nil fields match anything.
type EventQuery struct {
	Pos     *uint32
	Address *thor.Address
	Topics  [4]*thor.Bytes32
}

func (q *EventQuery) encode() string {
	values := url.Values{}
	if q == nil {
		return ""
	}
	if q.Pos != nil {
		values.Set("pos", strconv.FormatUint(uint64(*q.Pos), 10))
	}
	if q.Address != nil {
		values.Set("addr", q.Address.String())
	}
	for i, t := range q.Topics {
		if t != nil {
			values.Set("t"+strconv.Itoa(i), t.String())
		}
	}
	return values.Encode()
}

// SubscribeFeed streams the finalized values of a feed.
// A nil pos starts at the head, older values are replayed from pos otherwise.
func (c *Client) SubscribeFeed(id oracle.FeedID, pos *uint32) (*Subscription[*types.FeedMessage], error) {
	query := url.Values{}
	if pos != nil {
		query.Set("pos", strconv.FormatUint(uint64(*pos), 10))
	}
	conn, err := c.connect("/subscriptions/feeds/"+url.PathEscape(string(id)), query.Encode())
	if err != nil {
		return nil, fmt.Errorf("unable to connect - %w", err)
	}
	return subscribe[types.FeedMessage](conn), nil
}

// SubscribeEvents streams the events matching q.
func (c *Client) SubscribeEvents(q *EventQuery) (*Subscription[*types.FilteredEvent], error) {
	conn, err := c.connect("/subscriptions/event", q.encode())
	if err != nil {
		return nil, fmt.Errorf("unable to connect - %w", err)
	}
	return subscribe[types.FilteredEvent](conn), nil
}

// subscribe reads JSON messages of type T from conn until it fails or is unsubscribed.
func subscribe[T any](conn *websocket.Conn) *Subscription[*T] {
	eventChan := make(chan common.EventWrapper[*T])
	done := make(chan struct{})

	go func() {
		defer close(eventChan)
		defer conn.Close()

		for {
			var data T
			err := conn.ReadJSON(&data)
			if err != nil {
				select {
				case eventChan <- common.EventWrapper[*T]{Error: fmt.Errorf("%w: %w", common.ErrUnexpectedMsg, err)}:
				case <-done:
				}
				return
			}
			select {
			case eventChan <- common.EventWrapper[*T]{Data: &data}:
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return &Subscription[*T]{
		EventChan: eventChan,
		Unsubscribe: func() error {
			var err error
			once.Do(func() {
				close(done)
				err = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			})
			return err
		},
	}
}

func (c *Client) connect(endpoint, rawQuery string) (*websocket.Conn, error) {
	u := url.URL{
		Scheme:   c.scheme,
		Host:     c.host,
		Path:     endpoint,
		RawQuery: rawQuery,
	}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
