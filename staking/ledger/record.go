// Copyright (c) 2025 The Lodepool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
)

// Record holds one account's stake position.
//
// AccumulatedReward reflects all reward earned up through StartTime; reward for
// time past StartTime is computed on demand by the schedule and never stored.
type Record struct {
	Principal         *big.Int // amount staked by the account
	AccumulatedReward *big.Int // reward folded in up to StartTime
	FirstStakeTime    uint64   // timestamp of the account's first ever deposit
	StartTime         uint64   // start of the current accrual window
}

// NewRecord returns an empty record opened at the given time.
func NewRecord(now uint64) *Record {
	return &Record{
		Principal:         new(big.Int),
		AccumulatedReward: new(big.Int),
		FirstStakeTime:    now,
		StartTime:         now,
	}
}

// Copy returns a deep copy.
func (r *Record) Copy() *Record {
	return &Record{
		Principal:         new(big.Int).Set(r.Principal),
		AccumulatedReward: new(big.Int).Set(r.AccumulatedReward),
		FirstStakeTime:    r.FirstStakeTime,
		StartTime:         r.StartTime,
	}
}

func (r *Record) encode() ([]byte, error) {
	return rlp.EncodeToBytes(r)
}

func (r *Record) decode(data []byte) error {
	return rlp.DecodeBytes(data, r)
}
