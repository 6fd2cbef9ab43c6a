// Copyright (c) 2025 The Lodepool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package settlement carries the continuation state of in-flight unstakes.
//
// An unstake optimistically removes the stake record and issues one outbound
// transfer. Everything needed to commit or roll back travels in a Pending
// value snapshotted at request time; the resolution never re-reads mutable
// storage, so correctness does not depend on the ledger staying untouched
// while the transfer is in flight.
package settlement

import (
	"math/big"

	"github.com/lodepool/lodepool/lode"
)

// Pending is the continuation of one in-flight unstake.
type Pending struct {
	ID      string       // transfer request id
	Account lode.Address // the unstaking account

	Principal    *big.Int // principal removed from the ledger
	PayoutReward *big.Int // reward portion of the payout; zero on early unstake

	FirstStakeTime uint64 // preserved for rollback
	StartTime      uint64 // preserved for rollback

	// SnapshotReward is the record's accumulated reward before this attempt
	// added (or forfeited) anything. Rollback restores exactly this value,
	// neither granting nor destroying the disputed increment.
	SnapshotReward *big.Int
}

// TotalPayout returns principal plus the reward portion.
func (p *Pending) TotalPayout() *big.Int {
	return new(big.Int).Add(p.Principal, p.PayoutReward)
}
