// Copyright (c) 2025 The Lodepool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lode

import "math/big"

// Constants of the staking protocol. Timestamps and durations are in seconds.
const (
	WeekSeconds uint64 = 7 * 24 * 60 * 60       // length of one rate tier window.
	YearSeconds uint64 = 365 * 24 * 60 * 60     // annualization base of all rates.
	RateBase    uint64 = 10000                  // rates are expressed in basis points of this.
	TailRate    uint64 = 800                    // flat annual rate (8%) after the tier windows end.

	DefaultLockDuration uint64 = 2 * WeekSeconds // reward is forfeited when unstaking earlier.
	MaxLockDuration     uint64 = 4 * WeekSeconds

	StateVersion uint32 = 1 // schema version of persisted state.
)

var (
	// TierRates are the front-loaded annual rates of the first weeks after the
	// schedule anchor, in basis points. Week 1 and 2 pay 500%, decaying to the
	// flat TailRate afterwards.
	TierRates = []uint64{50000, 50000, 10000, 5000, 5000}

	// MaxTotalReward bounds the configurable reward cap.
	MaxTotalReward = new(big.Int).Mul(big.NewInt(1e8), big.NewInt(1e18))
)
