// Copyright (c) 2025 The Lodepool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events_test

import (
	"bytes"
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lodepool/lodepool/api/events"
	"github.com/lodepool/lodepool/eventdb"
	"github.com/lodepool/lodepool/lode"
	"github.com/lodepool/lodepool/staking"
)

func newTestServer(t *testing.T) (*httptest.Server, *eventdb.EventDB) {
	db, err := eventdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(db.Close)

	router := mux.NewRouter()
	events.New(db, 100).Mount(router, "/events")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts, db
}

func filterEvents(t *testing.T, ts *httptest.Server, filter interface{}) (int, []*events.FilteredEvent) {
	data, err := json.Marshal(filter)
	require.NoError(t, err)
	res, err := http.Post(ts.URL+"/events", "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return res.StatusCode, nil
	}
	var out []*events.FilteredEvent
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	return res.StatusCode, out
}

func TestFilterEvents(t *testing.T) {
	ts, db := newTestServer(t)
	alice := lode.BytesToAddress([]byte("alice"))
	bob := lode.BytesToAddress([]byte("bob"))

	require.NoError(t, db.Append(context.Background(), []*staking.Event{
		{Time: 1, Kind: staking.EventDeposit, Account: alice, Amount: big.NewInt(100), Reward: new(big.Int)},
		{Time: 2, Kind: staking.EventDeposit, Account: bob, Amount: big.NewInt(200), Reward: new(big.Int)},
		{Time: 3, Kind: staking.EventUnstakeSettled, Account: alice, Amount: big.NewInt(100), Reward: big.NewInt(7)},
	}))

	code, got := filterEvents(t, ts, map[string]interface{}{})
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, got, 3)

	code, got = filterEvents(t, ts, map[string]interface{}{"account": alice.String()})
	require.Equal(t, http.StatusOK, code)
	require.Len(t, got, 2)
	assert.Equal(t, staking.EventUnstakeSettled, got[1].Kind)
	assert.Equal(t, big.NewInt(7), (*big.Int)(got[1].Reward))

	code, got = filterEvents(t, ts, map[string]interface{}{"kinds": []string{"deposit"}})
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, got, 2)

	code, _ = filterEvents(t, ts, map[string]interface{}{
		"options": map[string]uint64{"offset": 0, "limit": 1000},
	})
	assert.Equal(t, http.StatusForbidden, code)
}

func TestFilterEventsBadBody(t *testing.T) {
	ts, _ := newTestServer(t)
	res, err := http.Post(ts.URL+"/events", "application/json", bytes.NewReader([]byte(`{"bogus": 1}`)))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}
