// Copyright (c) 2025 The Lodepool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package memledger

import (
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lodepool/lodepool/lode"
	"github.com/lodepool/lodepool/token"
)

var (
	pool  = lode.BytesToAddress([]byte("pool"))
	alice = lode.BytesToAddress([]byte("alice"))
)

func TestTransferDelivery(t *testing.T) {
	l := New(pool)
	l.Mint(pool, big.NewInt(1000))

	l.RequestTransfer(token.TransferRequest{ID: "t1", To: alice, Amount: big.NewInt(400)})
	res := <-l.Results()
	assert.Equal(t, "t1", res.ID)
	assert.NoError(t, res.Err)

	bal, err := l.BalanceOf(alice)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(400), bal)
	bal, _ = l.BalanceOf(pool)
	assert.Equal(t, big.NewInt(600), bal)
}

func TestTransferFailures(t *testing.T) {
	l := New(pool)
	l.Mint(pool, big.NewInt(100))

	// insufficient pool balance
	l.RequestTransfer(token.TransferRequest{ID: "t1", To: alice, Amount: big.NewInt(500)})
	res := <-l.Results()
	assert.Error(t, res.Err)
	bal, _ := l.BalanceOf(alice)
	assert.Equal(t, 0, bal.Sign())

	// injected failure leaves balances untouched
	l.SetTransferError(errors.New("boom"))
	l.RequestTransfer(token.TransferRequest{ID: "t2", To: alice, Amount: big.NewInt(10)})
	res = <-l.Results()
	assert.Error(t, res.Err)
	bal, _ = l.BalanceOf(pool)
	assert.Equal(t, big.NewInt(100), bal)
}

type fakeReceiver struct {
	unused *big.Int
	err    error
}

func (r *fakeReceiver) OnTokenReceived(_ lode.Address, _ *big.Int, _ string) (*big.Int, error) {
	return r.unused, r.err
}

func TestTransferCall(t *testing.T) {
	l := New(pool)
	l.Mint(alice, big.NewInt(1000))

	// fully consumed deposit
	err := l.TransferCall(alice, big.NewInt(600), "", &fakeReceiver{unused: new(big.Int)})
	require.NoError(t, err)
	bal, _ := l.BalanceOf(pool)
	assert.Equal(t, big.NewInt(600), bal)

	// rejected deposit is fully refunded
	err = l.TransferCall(alice, big.NewInt(100), "", &fakeReceiver{err: errors.New("paused")})
	assert.Error(t, err)
	bal, _ = l.BalanceOf(alice)
	assert.Equal(t, big.NewInt(400), bal)
	bal, _ = l.BalanceOf(pool)
	assert.Equal(t, big.NewInt(600), bal)
}

func TestBalanceErrorInjection(t *testing.T) {
	l := New(pool)
	l.SetBalanceError(errors.New("unreachable"))
	_, err := l.BalanceOf(pool)
	assert.Error(t, err)

	l.SetBalanceError(nil)
	_, err = l.BalanceOf(pool)
	assert.NoError(t, err)
}
