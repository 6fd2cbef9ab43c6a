// Copyright (c) 2025 The Lodepool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token defines the interface to the external fungible token ledger.
//
// The ledger holds all balances; the pool never keeps custody itself. Outbound
// transfers are asynchronous: a request yields exactly one result later, with
// the original request echoed back so the requester never needs to re-read
// mutable state to process the outcome.
package token

import (
	"math/big"

	"github.com/lodepool/lodepool/lode"
)

// TransferRequest asks the ledger to move Amount from the pool account to To.
// ID is opaque to the ledger and echoed back unchanged.
type TransferRequest struct {
	ID     string
	To     lode.Address
	Amount *big.Int
}

// TransferResult reports the outcome of one TransferRequest.
type TransferResult struct {
	TransferRequest
	Err error // nil when the transfer landed
}

// Ledger is the external token ledger.
type Ledger interface {
	// BalanceOf returns the current token balance of addr.
	BalanceOf(addr lode.Address) (*big.Int, error)

	// RequestTransfer submits an outbound transfer. Exactly one TransferResult
	// per request is later delivered on Results.
	RequestTransfer(req TransferRequest)

	// Results delivers transfer outcomes in completion order.
	Results() <-chan TransferResult
}

// Receiver consumes inbound transfer notifications, i.e. deposits into the
// pool made on behalf of sender. It returns the unconsumed portion of amount;
// a non-nil error rejects the whole transfer upstream.
type Receiver interface {
	OnTokenReceived(sender lode.Address, amount *big.Int, msg string) (*big.Int, error)
}
