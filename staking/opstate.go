// Copyright (c) 2025 The Lodepool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import "github.com/lodepool/lodepool/lode"

// OpState guards an account against overlapping mutating requests. An account
// with a state other than OpIdle has an operation in flight; no other deposit
// or unstake against it may proceed until that operation resolves.
//
// The table is transient, not persisted business data. Absence of an entry is
// equivalent to OpIdle.
type OpState byte

const (
	OpIdle OpState = iota
	OpStaking
	OpUnstaking
)

func (s OpState) String() string {
	switch s {
	case OpIdle:
		return "idle"
	case OpStaking:
		return "staking"
	case OpUnstaking:
		return "unstaking"
	default:
		return "unknown"
	}
}

// opStateTable tracks per-account operation states. Callers must hold the
// engine lock.
type opStateTable map[lode.Address]OpState

func (t opStateTable) get(addr lode.Address) OpState {
	return t[addr]
}

func (t opStateTable) set(addr lode.Address, state OpState) {
	if state == OpIdle {
		delete(t, addr)
	} else {
		t[addr] = state
	}
}
