// Copyright (c) 2025 The Lodepool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package schedule

import (
	"math/big"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"

	"github.com/lodepool/lodepool/lode"
)

const (
	week = lode.WeekSeconds
	year = lode.YearSeconds
)

func newDefault(anchor uint64) *Schedule {
	return New(DefaultConfig(anchor))
}

func TestRewardAcrossAllTiers(t *testing.T) {
	s := newDefault(0)
	amount := big.NewInt(1_000_000)

	// exactly the 5 tier windows
	tierSum := uint64(0)
	for _, r := range lode.TierRates {
		tierSum += r
	}
	expected := new(big.Int).SetUint64(tierSum)
	expected.Mul(expected, new(big.Int).SetUint64(week))
	expected.Mul(expected, amount)
	expected.Quo(expected, new(big.Int).SetUint64(year*lode.RateBase))
	assert.Equal(t, expected, s.Reward(amount, 5*week, 0))

	// one further year at the tail rate
	tail := new(big.Int).SetUint64(lode.TailRate)
	tail.Mul(tail, new(big.Int).SetUint64(year))
	tail.Mul(tail, amount)
	tail.Quo(tail, new(big.Int).SetUint64(year*lode.RateBase))
	expected.Add(expected, tail)
	assert.Equal(t, expected, s.Reward(amount, 5*week+year, 0))
}

func TestRewardStakedAfterTiers(t *testing.T) {
	// a position opened after all tier windows accrues at the flat tail rate only
	s := newDefault(0)
	amount := big.NewInt(1_000_000)

	got := s.Reward(amount, 5*week+year, 5*week)
	expected := new(big.Int).SetUint64(lode.TailRate)
	expected.Mul(expected, amount)
	expected.Quo(expected, big.NewInt(int64(lode.RateBase)))
	assert.Equal(t, expected, got)
}

func TestRewardPartialWindowOverlap(t *testing.T) {
	s := newDefault(1000)
	amount := big.NewInt(500_000)

	// interval straddling the boundary of tier 0 and tier 1
	start := uint64(1000) + week/2
	end := uint64(1000) + week + week/4
	got := s.Reward(amount, end, start)

	sum := new(big.Int)
	sum.Add(sum, term(amount, lode.TierRates[0], week/2))
	sum.Add(sum, term(amount, lode.TierRates[1], week/4))
	sum.Quo(sum, new(big.Int).SetUint64(year*lode.RateBase))
	assert.Equal(t, sum, got)
}

func TestRewardDegenerateIntervals(t *testing.T) {
	s := newDefault(0)
	amount := big.NewInt(1_000_000)

	assert.Equal(t, int64(0), s.Reward(amount, 100, 100).Int64())
	assert.Equal(t, int64(0), s.Reward(amount, 100, 200).Int64())
	assert.Equal(t, int64(0), s.Reward(new(big.Int), year, 0).Int64())
}

func TestRewardTruncates(t *testing.T) {
	s := newDefault(0)

	// 1 token for 1 second in tier 0: 1*50000*1/(31536000*10000) is far below 1
	got := s.Reward(big.NewInt(1), 1, 0)
	assert.Equal(t, int64(0), got.Int64())
}

func TestRewardTelescoping(t *testing.T) {
	// splitting an interval at any point must never change the undivided sum;
	// after the truncating division the split sum may only be lower.
	s := newDefault(0)
	f := fuzz.New()

	var raw struct {
		Amount uint32
		A, B   uint32
	}
	for i := 0; i < 200; i++ {
		f.Fuzz(&raw)
		amount := big.NewInt(int64(raw.Amount) + 1)
		start := uint64(raw.A) % (6 * week)
		end := start + uint64(raw.B)%(2*year)
		mid := start + (end-start)/2

		whole := s.Reward(amount, end, start)
		split := new(big.Int).Add(
			s.Reward(amount, mid, start),
			s.Reward(amount, end, mid),
		)
		diff := new(big.Int).Sub(whole, split)
		assert.True(t, diff.Sign() >= 0, "split yields more than whole")
		// each half truncates at most one unit
		assert.True(t, diff.Cmp(big.NewInt(2)) < 0, "truncation error exceeds bound")
	}
}

func TestClampInterval(t *testing.T) {
	// no cutoff
	end, start := ClampInterval(1000, 0, 400)
	assert.Equal(t, uint64(1000), end)
	assert.Equal(t, uint64(400), start)

	// cutoff in the past bounds the end
	end, start = ClampInterval(1000, 800, 400)
	assert.Equal(t, uint64(800), end)
	assert.Equal(t, uint64(400), start)

	// cutoff before the stored start collapses the interval to zero duration
	end, start = ClampInterval(1000, 300, 400)
	assert.Equal(t, uint64(300), end)
	assert.Equal(t, uint64(300), start)
}
