// Copyright (c) 2025 The Lodepool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package subscriptions streams engine events to websocket clients.
package subscriptions

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/lodepool/lodepool/api/utils"
	"github.com/lodepool/lodepool/co"
	"github.com/lodepool/lodepool/log"
	"github.com/lodepool/lodepool/staking"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	subBufferSize = 64
	pingPeriod    = 10 * time.Second
	writeTimeout  = 10 * time.Second
)

type Subscriptions struct {
	upgrader websocket.Upgrader

	mu   sync.Mutex
	subs map[chan *staking.Event]struct{}
	done chan struct{}
	goes co.Goes
}

func New(allowedOrigins []string) *Subscriptions {
	return &Subscriptions{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(req *http.Request) bool {
				origin := req.Header.Get("Origin")
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
		subs: make(map[chan *staking.Event]struct{}),
		done: make(chan struct{}),
	}
}

var _ staking.EventSink = (*Subscriptions)(nil)

// PostEvent fans ev out to all connected clients. Never blocks; a client
// that cannot keep up loses events.
func (s *Subscriptions) PostEvent(ev *staking.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (s *Subscriptions) subscribe() chan *staking.Event {
	ch := make(chan *staking.Event, subBufferSize)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

func (s *Subscriptions) unsubscribe(ch chan *staking.Event) {
	s.mu.Lock()
	delete(s.subs, ch)
	s.mu.Unlock()
}

func (s *Subscriptions) handleSubscribeEvents(w http.ResponseWriter, req *http.Request) error {
	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		// the upgrader has already responded
		return nil
	}

	ch := s.subscribe()
	closed := make(chan struct{})

	s.goes.Go(func() {
		defer conn.Close()
		defer s.unsubscribe(ch)

		pinger := time.NewTicker(pingPeriod)
		defer pinger.Stop()

		for {
			select {
			case ev := <-ch:
				conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := conn.WriteJSON(ev); err != nil {
					return
				}
			case <-pinger.C:
				conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-closed:
				return
			case <-s.done:
				conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
		}
	})

	// reader detects the peer closing the connection
	s.goes.Go(func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	return nil
}

// Close disconnects all clients and waits for their loops to finish.
func (s *Subscriptions) Close() {
	close(s.done)
	s.goes.Wait()
	logger.Debug("all subscriptions closed")
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/events").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(s.handleSubscribeEvents))
}
