// Copyright (c) 2025 The Lodepool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package memledger is an in-process token ledger for solo mode and tests.
// It implements the full asynchronous transfer contract of token.Ledger and
// supports failure injection to exercise settlement rollback paths.
package memledger

import (
	"math/big"
	"sync"

	"github.com/pkg/errors"

	"github.com/lodepool/lodepool/co"
	"github.com/lodepool/lodepool/lode"
	"github.com/lodepool/lodepool/token"
)

// Ledger keeps balances in memory. The pool's own account is just another
// balance entry; outbound transfers debit it.
type Ledger struct {
	mu       sync.Mutex
	balances map[lode.Address]*big.Int
	pool     lode.Address

	transferErr error // injected; next transfers fail with this
	balanceErr  error // injected; balance queries fail with this

	results chan token.TransferResult
	goes    co.Goes
}

var _ token.Ledger = (*Ledger)(nil)

// New creates a ledger; pool is the staking pool's own account.
func New(pool lode.Address) *Ledger {
	return &Ledger{
		balances: make(map[lode.Address]*big.Int),
		pool:     pool,
		results:  make(chan token.TransferResult, 64),
	}
}

// Mint credits addr with amount out of thin air.
func (l *Ledger) Mint(addr lode.Address, amount *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.credit(addr, amount)
}

func (l *Ledger) credit(addr lode.Address, amount *big.Int) {
	bal, ok := l.balances[addr]
	if !ok {
		bal = new(big.Int)
		l.balances[addr] = bal
	}
	bal.Add(bal, amount)
}

func (l *Ledger) debit(addr lode.Address, amount *big.Int) error {
	bal := l.balances[addr]
	if bal == nil || bal.Cmp(amount) < 0 {
		return errors.New("insufficient balance")
	}
	bal.Sub(bal, amount)
	return nil
}

// BalanceOf returns the balance of addr.
func (l *Ledger) BalanceOf(addr lode.Address) (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balanceErr != nil {
		return nil, l.balanceErr
	}
	if bal, ok := l.balances[addr]; ok {
		return new(big.Int).Set(bal), nil
	}
	return new(big.Int), nil
}

// RequestTransfer moves req.Amount from the pool account to req.To and
// delivers the result asynchronously.
func (l *Ledger) RequestTransfer(req token.TransferRequest) {
	l.mu.Lock()
	err := l.transferErr
	if err == nil {
		err = l.debit(l.pool, req.Amount)
		if err == nil {
			l.credit(req.To, req.Amount)
		}
	}
	l.mu.Unlock()

	// deliver off the caller's goroutine so the requester is never blocked
	// on its own result channel
	l.goes.Go(func() {
		l.results <- token.TransferResult{TransferRequest: req, Err: err}
	})
}

// Results delivers transfer outcomes.
func (l *Ledger) Results() <-chan token.TransferResult {
	return l.results
}

// TransferCall moves amount from sender to the pool account, then notifies the
// receiver, mirroring a transfer-and-call on a real token ledger. If the
// receiver rejects or leaves a remainder, that portion is refunded to sender.
func (l *Ledger) TransferCall(sender lode.Address, amount *big.Int, msg string, receiver token.Receiver) error {
	l.mu.Lock()
	if err := l.debit(sender, amount); err != nil {
		l.mu.Unlock()
		return err
	}
	l.credit(l.pool, amount)
	l.mu.Unlock()

	unused, err := receiver.OnTokenReceived(sender, amount, msg)
	if err != nil {
		unused = amount
	}
	if unused != nil && unused.Sign() > 0 {
		l.mu.Lock()
		if derr := l.debit(l.pool, unused); derr == nil {
			l.credit(sender, unused)
		}
		l.mu.Unlock()
	}
	return err
}

// SetTransferError injects err into subsequent transfers; nil restores normal
// operation.
func (l *Ledger) SetTransferError(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.transferErr = err
}

// SetBalanceError injects err into subsequent balance queries; nil restores
// normal operation.
func (l *Ledger) SetBalanceError(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balanceErr = err
}

// Sync waits for all pending result deliveries.
func (l *Ledger) Sync() {
	l.goes.Wait()
}
