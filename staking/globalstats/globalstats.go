// Copyright (c) 2025 The Lodepool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package globalstats manages pool-wide staking totals.
//
// Totals are maintained incrementally on every deposit and settlement commit,
// never recomputed by scanning records. total claimed reward can never exceed
// the configured reward cap; claims are truncated to Headroom by the engine.
package globalstats

import (
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/lodepool/lodepool/kv"
	"github.com/lodepool/lodepool/lode"
)

var (
	slotTotalStaked  = lode.Bytes32(crypto.Keccak256Hash([]byte("total-staked")))
	slotTotalClaimed = lode.Bytes32(crypto.Keccak256Hash([]byte("total-claimed-reward")))
	slotRewardCap    = lode.Bytes32(crypto.Keccak256Hash([]byte("total-reward")))
)

// Stats persists the global counters.
type Stats struct {
	totalStaked  bigSlot
	totalClaimed bigSlot
	rewardCap    bigSlot
}

// New creates stats over the given kv.
func New(db kv.GetPutter) *Stats {
	return &Stats{
		totalStaked:  bigSlot{db, slotTotalStaked},
		totalClaimed: bigSlot{db, slotTotalClaimed},
		rewardCap:    bigSlot{db, slotRewardCap},
	}
}

// TotalStaked returns the sum of principal over all live records.
func (s *Stats) TotalStaked() (*big.Int, error) {
	return s.totalStaked.get()
}

// AddStaked increases the total staked amount.
func (s *Stats) AddStaked(amount *big.Int) error {
	return s.totalStaked.add(amount)
}

// SubStaked decreases the total staked amount.
func (s *Stats) SubStaked(amount *big.Int) error {
	return s.totalStaked.sub(amount)
}

// TotalClaimed returns the cumulative reward paid out so far.
func (s *Stats) TotalClaimed() (*big.Int, error) {
	return s.totalClaimed.get()
}

// AddClaimed increases the cumulative paid-out reward.
func (s *Stats) AddClaimed(amount *big.Int) error {
	return s.totalClaimed.add(amount)
}

// RewardCap returns the configured total reward pool.
func (s *Stats) RewardCap() (*big.Int, error) {
	return s.rewardCap.get()
}

// SetRewardCap replaces the configured total reward pool.
func (s *Stats) SetRewardCap(cap *big.Int) error {
	return s.rewardCap.set(cap)
}

// Headroom returns max(0, rewardCap - totalClaimed), the reward still claimable
// pool-wide.
func (s *Stats) Headroom() (*big.Int, error) {
	cap, err := s.rewardCap.get()
	if err != nil {
		return nil, err
	}
	claimed, err := s.totalClaimed.get()
	if err != nil {
		return nil, err
	}
	headroom := new(big.Int).Sub(cap, claimed)
	if headroom.Sign() < 0 {
		headroom.SetInt64(0)
	}
	return headroom, nil
}

// bigSlot is one persisted big.Int counter. An absent slot reads as zero.
type bigSlot struct {
	db  kv.GetPutter
	key lode.Bytes32
}

func (s bigSlot) get() (*big.Int, error) {
	data, err := s.db.Get(s.key.Bytes())
	if err != nil {
		if s.db.IsNotFound(err) {
			return new(big.Int), nil
		}
		return nil, errors.Wrap(err, "get counter")
	}
	v := new(big.Int)
	if err := rlp.DecodeBytes(data, v); err != nil {
		return nil, errors.Wrap(err, "decode counter")
	}
	return v, nil
}

func (s bigSlot) set(v *big.Int) error {
	data, err := rlp.EncodeToBytes(v)
	if err != nil {
		return errors.Wrap(err, "encode counter")
	}
	return errors.Wrap(s.db.Put(s.key.Bytes(), data), "put counter")
}

func (s bigSlot) add(amount *big.Int) error {
	v, err := s.get()
	if err != nil {
		return err
	}
	return s.set(v.Add(v, amount))
}

func (s bigSlot) sub(amount *big.Int) error {
	v, err := s.get()
	if err != nil {
		return err
	}
	v.Sub(v, amount)
	if v.Sign() < 0 {
		return errors.New("counter underflow")
	}
	return s.set(v)
}
