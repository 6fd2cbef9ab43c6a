// Copyright (c) 2025 The Lodepool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api_test

import (
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lodepool/lodepool/api"
	"github.com/lodepool/lodepool/api/pool"
	"github.com/lodepool/lodepool/api/subscriptions"
	"github.com/lodepool/lodepool/eventdb"
	"github.com/lodepool/lodepool/lode"
	"github.com/lodepool/lodepool/lvldb"
	"github.com/lodepool/lodepool/staking"
	"github.com/lodepool/lodepool/token/memledger"
)

const anchor = uint64(1_700_000_000)

func newService(t *testing.T) *httptest.Server {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	owner := lode.BytesToAddress([]byte("owner"))
	poolAddr := lode.BytesToAddress([]byte("pool"))
	tok := memledger.New(poolAddr)
	require.NoError(t, staking.Initialize(db, &staking.Genesis{Owner: owner, RewardCap: big.NewInt(1000)}, anchor))

	evDB, err := eventdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(evDB.Close)

	subs := subscriptions.New([]string{"*"})
	staker, err := staking.Open(db, tok, staking.Options{
		PoolAddress: poolAddr,
		Now:         func() uint64 { return anchor },
		Sink:        staking.MultiSink{evDB, subs},
	})
	require.NoError(t, err)

	handler, closer := api.New(staker, evDB, subs, api.Options{
		AllowedOrigins: "*",
		LogsLimit:      100,
	})
	t.Cleanup(closer)

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return ts
}

func TestPoolStatusEndpoint(t *testing.T) {
	ts := newService(t)

	res, err := http.Get(ts.URL + "/pool")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var status pool.Status
	require.NoError(t, json.NewDecoder(res.Body).Decode(&status))
	assert.Equal(t, lode.BytesToAddress([]byte("owner")), status.Owner)
	assert.False(t, status.Paused)
	assert.Equal(t, lode.DefaultLockDuration, status.LockDuration)
	assert.Equal(t, anchor, status.Schedule.Anchor)
	assert.Equal(t, lode.TierRates, status.Schedule.TierRates)
	assert.Equal(t, lode.TailRate, status.Schedule.TailRate)
	assert.Equal(t, big.NewInt(1000), (*big.Int)(status.RewardCap))
}

func TestUnknownRoute(t *testing.T) {
	ts := newService(t)

	res, err := http.Get(ts.URL + "/nosuchroute")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}
