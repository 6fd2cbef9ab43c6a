// Copyright (c) 2025 The Lodepool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions_test

import (
	"math/big"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lodepool/lodepool/api/subscriptions"
	"github.com/lodepool/lodepool/lode"
	"github.com/lodepool/lodepool/staking"
)

func TestSubscribeEvents(t *testing.T) {
	subs := subscriptions.New([]string{"*"})
	router := mux.NewRouter()
	subs.Mount(router, "/subscriptions")
	ts := httptest.NewServer(router)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/subscriptions/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	acct := lode.BytesToAddress([]byte("alice"))
	ev := &staking.Event{
		Time:    42,
		Kind:    staking.EventDeposit,
		Account: acct,
		Amount:  big.NewInt(100),
		Reward:  new(big.Int),
	}

	// the server registers the subscription concurrently with the dial
	// returning, so keep posting until the client sees a message
	posting := make(chan struct{})
	go func() {
		for {
			select {
			case <-posting:
				return
			default:
				subs.PostEvent(ev)
				time.Sleep(10 * time.Millisecond)
			}
		}
	}()
	defer close(posting)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got staking.Event
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, uint64(42), got.Time)
	assert.Equal(t, staking.EventDeposit, got.Kind)
	assert.Equal(t, acct, got.Account)
	assert.Equal(t, big.NewInt(100), got.Amount)

	subs.Close()
}
