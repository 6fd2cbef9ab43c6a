// Copyright (c) 2025 The Lodepool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lodepool/lodepool/api/admin"
	"github.com/lodepool/lodepool/lode"
	"github.com/lodepool/lodepool/lvldb"
	"github.com/lodepool/lodepool/staking"
	"github.com/lodepool/lodepool/token/memledger"
)

const anchor = uint64(1_700_000_000)

type testServer struct {
	*httptest.Server
	tok    *memledger.Ledger
	staker *staking.Staker
	owner  lode.Address
	pool   lode.Address
}

func newTestServer(t *testing.T) *testServer {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	owner := lode.BytesToAddress([]byte("owner"))
	pool := lode.BytesToAddress([]byte("pool"))
	tok := memledger.New(pool)
	require.NoError(t, staking.Initialize(db, &staking.Genesis{Owner: owner, RewardCap: big.NewInt(1000)}, anchor))

	staker, err := staking.Open(db, tok, staking.Options{
		PoolAddress: pool,
		Now:         func() uint64 { return anchor },
	})
	require.NoError(t, err)

	router := mux.NewRouter()
	admin.New(staker).Mount(router, "/admin")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	return &testServer{Server: ts, tok: tok, staker: staker, owner: owner, pool: pool}
}

func (ts *testServer) post(t *testing.T, path string, body interface{}) int {
	data, err := json.Marshal(body)
	require.NoError(t, err)
	res, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	res.Body.Close()
	return res.StatusCode
}

func TestSetPaused(t *testing.T) {
	ts := newTestServer(t)
	stranger := lode.BytesToAddress([]byte("mallory"))

	code := ts.post(t, "/admin/paused", map[string]interface{}{
		"caller": stranger.String(), "paused": true,
	})
	assert.Equal(t, http.StatusBadRequest, code, "owner only")

	code = ts.post(t, "/admin/paused", map[string]interface{}{
		"caller": ts.owner.String(), "paused": true,
	})
	require.Equal(t, http.StatusOK, code)

	paused, err := ts.staker.Paused()
	require.NoError(t, err)
	assert.True(t, paused)
}

func TestSetLockDuration(t *testing.T) {
	ts := newTestServer(t)

	code := ts.post(t, "/admin/lockduration", map[string]interface{}{
		"caller": ts.owner.String(), "lockDuration": lode.MaxLockDuration + 1,
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code = ts.post(t, "/admin/lockduration", map[string]interface{}{
		"caller": ts.owner.String(), "lockDuration": lode.WeekSeconds,
	})
	require.Equal(t, http.StatusOK, code)

	lock, err := ts.staker.LockDuration()
	require.NoError(t, err)
	assert.Equal(t, lode.WeekSeconds, lock)
}

func TestSetEndTime(t *testing.T) {
	ts := newTestServer(t)

	code := ts.post(t, "/admin/endtime", map[string]interface{}{
		"caller": ts.owner.String(), "endTime": anchor + lode.WeekSeconds,
	})
	assert.Equal(t, http.StatusBadRequest, code, "requires pause")

	require.Equal(t, http.StatusOK, ts.post(t, "/admin/paused", map[string]interface{}{
		"caller": ts.owner.String(), "paused": true,
	}))
	code = ts.post(t, "/admin/endtime", map[string]interface{}{
		"caller": ts.owner.String(), "endTime": anchor + lode.WeekSeconds,
	})
	require.Equal(t, http.StatusOK, code)

	endTime, err := ts.staker.Cutoff()
	require.NoError(t, err)
	assert.Equal(t, anchor+lode.WeekSeconds, endTime)
}

func TestSetRewardCap(t *testing.T) {
	ts := newTestServer(t)

	code := ts.post(t, "/admin/rewardcap", map[string]interface{}{
		"caller": ts.owner.String(), "rewardCap": "0x0",
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code = ts.post(t, "/admin/rewardcap", map[string]interface{}{
		"caller": ts.owner.String(), "rewardCap": "500",
	})
	require.Equal(t, http.StatusOK, code)

	cap, err := ts.staker.RewardCap()
	require.NoError(t, err)
	assert.Equal(t, int64(500), cap.Int64())
}

func TestTransferOwnership(t *testing.T) {
	ts := newTestServer(t)
	heir := lode.BytesToAddress([]byte("heir"))

	code := ts.post(t, "/admin/owner", map[string]interface{}{
		"caller": ts.owner.String(), "newOwner": heir.String(),
	})
	require.Equal(t, http.StatusOK, code)

	owner, err := ts.staker.Owner()
	require.NoError(t, err)
	assert.Equal(t, heir, owner)
}

func TestWithdraw(t *testing.T) {
	ts := newTestServer(t)
	ts.tok.Mint(ts.pool, big.NewInt(5000))

	code := ts.post(t, "/admin/withdrawals", map[string]interface{}{
		"caller": ts.owner.String(), "amount": "100",
	})
	assert.Equal(t, http.StatusBadRequest, code, "requires pause")

	require.Equal(t, http.StatusOK, ts.post(t, "/admin/paused", map[string]interface{}{
		"caller": ts.owner.String(), "paused": true,
	}))

	// headroom (the full 1000 reward cap) stays frozen
	code = ts.post(t, "/admin/withdrawals", map[string]interface{}{
		"caller": ts.owner.String(), "amount": "4001",
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code = ts.post(t, "/admin/withdrawals", map[string]interface{}{
		"caller": ts.owner.String(), "amount": "4000",
	})
	require.Equal(t, http.StatusOK, code)

	ts.staker.Resolve(<-ts.tok.Results())
	bal, err := ts.tok.BalanceOf(ts.owner)
	require.NoError(t, err)
	assert.Equal(t, int64(4000), bal.Int64())
}

func TestMalformedBody(t *testing.T) {
	ts := newTestServer(t)
	res, err := http.Post(ts.URL+"/admin/paused", "application/json",
		bytes.NewReader([]byte(fmt.Sprintf(`{"caller": %q, "unknown": 1}`, ts.owner))))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode, "unknown fields rejected")
}
