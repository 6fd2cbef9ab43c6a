// Copyright (c) 2025 The Lodepool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package schedule implements the tiered reward rate curve.
//
// Reward accrues against a fixed anchor timestamp T0. The first len(TierRates)
// weeks after T0 each carry their own annual rate; any time after the last tier
// window accrues at the flat tail rate. Rates are annualized basis points, so a
// position of `amount` held over `d` seconds inside one window earns
// amount*rate*d/(year*base), truncating toward zero.
package schedule

import (
	"math/big"

	"github.com/lodepool/lodepool/lode"
)

// Config parameterizes a schedule.
type Config struct {
	Anchor    uint64   // T0, the fixed timestamp all tier windows are measured from.
	TierRates []uint64 // annual rates of consecutive week windows, basis points.
	TailRate  uint64   // annual rate after the last tier window, basis points.
	Week      uint64
	Year      uint64
	RateBase  uint64
}

// DefaultConfig returns the protocol schedule anchored at the given timestamp.
func DefaultConfig(anchor uint64) Config {
	return Config{
		Anchor:    anchor,
		TierRates: lode.TierRates,
		TailRate:  lode.TailRate,
		Week:      lode.WeekSeconds,
		Year:      lode.YearSeconds,
		RateBase:  lode.RateBase,
	}
}

// Schedule computes time-weighted reward over the tiered-then-flat rate curve.
// It is pure; all state is the immutable config.
type Schedule struct {
	cfg     Config
	divisor *big.Int // year * rateBase
}

// New creates a schedule from config.
func New(cfg Config) *Schedule {
	divisor := new(big.Int).Mul(
		new(big.Int).SetUint64(cfg.Year),
		new(big.Int).SetUint64(cfg.RateBase),
	)
	return &Schedule{cfg: cfg, divisor: divisor}
}

// Anchor returns T0.
func (s *Schedule) Anchor() uint64 {
	return s.cfg.Anchor
}

// TierRates returns the configured week-window rates.
func (s *Schedule) TierRates() []uint64 {
	rates := make([]uint64, len(s.cfg.TierRates))
	copy(rates, s.cfg.TierRates)
	return rates
}

// TailRate returns the flat rate applied after the tier windows.
func (s *Schedule) TailRate() uint64 {
	return s.cfg.TailRate
}

// Reward returns the reward earned by `amount` over [intervalStart, intervalEnd].
// The caller must ensure intervalStart <= intervalEnd; use ClampInterval for the
// cutoff handling.
func (s *Schedule) Reward(amount *big.Int, intervalEnd, intervalStart uint64) *big.Int {
	sum := new(big.Int)
	if amount.Sign() == 0 || intervalEnd <= intervalStart {
		return sum
	}

	for i, rate := range s.cfg.TierRates {
		windowStart := s.cfg.Anchor + uint64(i)*s.cfg.Week
		windowEnd := s.cfg.Anchor + uint64(i+1)*s.cfg.Week
		if intervalEnd < windowStart || intervalStart >= windowEnd {
			continue
		}
		duration := min(intervalEnd, windowEnd) - max(intervalStart, windowStart)
		sum.Add(sum, term(amount, rate, duration))
	}

	tailStart := s.cfg.Anchor + uint64(len(s.cfg.TierRates))*s.cfg.Week
	if intervalEnd >= tailStart {
		duration := intervalEnd - max(intervalStart, tailStart)
		sum.Add(sum, term(amount, s.cfg.TailRate, duration))
	}

	// truncating division, never rounds in the staker's favor
	return sum.Quo(sum, s.divisor)
}

func term(amount *big.Int, rate, duration uint64) *big.Int {
	x := new(big.Int).SetUint64(rate)
	x.Mul(x, new(big.Int).SetUint64(duration))
	return x.Mul(x, amount)
}

// ClampInterval bounds an accrual interval against the optional reward cutoff.
// cutoff == 0 means open-ended. When the clamped end falls before the stored
// start, the start is pulled down to the end so the interval degenerates to
// zero duration instead of going negative.
func ClampInterval(now, cutoff, start uint64) (intervalEnd, intervalStart uint64) {
	intervalEnd = now
	if cutoff != 0 && cutoff < intervalEnd {
		intervalEnd = cutoff
	}
	intervalStart = start
	if intervalEnd < intervalStart {
		intervalStart = intervalEnd
	}
	return
}
