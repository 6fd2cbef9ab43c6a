// Copyright (c) 2025 The Lodepool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/lodepool/lodepool/lode"
)

// EventKind classifies engine events.
type EventKind string

const (
	EventDeposit            EventKind = "deposit"
	EventUnstakeSettled     EventKind = "unstake-settled"
	EventUnstakeRolledBack  EventKind = "unstake-rolled-back"
	EventTreasuryWithdrawal EventKind = "treasury-withdrawal"
)

// Event describes one completed engine operation.
type Event struct {
	Time    uint64       `json:"time"`
	Kind    EventKind    `json:"kind"`
	Account lode.Address `json:"account"`
	Amount  *big.Int     `json:"amount"` // principal moved
	Reward  *big.Int     `json:"reward"` // reward portion, zero when not applicable
}

// EventSink consumes engine events. Post must not block; slow consumers have
// to buffer internally.
type EventSink interface {
	PostEvent(ev *Event)
}

// MultiSink fans one event out to several sinks.
type MultiSink []EventSink

func (m MultiSink) PostEvent(ev *Event) {
	for _, sink := range m {
		sink.PostEvent(ev)
	}
}
