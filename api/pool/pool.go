// Copyright (c) 2025 The Lodepool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"

	"github.com/lodepool/lodepool/api/utils"
	"github.com/lodepool/lodepool/lode"
	"github.com/lodepool/lodepool/staking"
)

type Pool struct {
	staker *staking.Staker
}

func New(staker *staking.Staker) *Pool {
	return &Pool{
		staker,
	}
}

// Status is the pool-wide view: configuration plus global counters.
type Status struct {
	Owner        lode.Address          `json:"owner"`
	Paused       bool                  `json:"paused"`
	LockDuration uint64                `json:"lockDuration"`
	EndTime      uint64                `json:"endTime"` // 0 when open-ended
	TotalStaked  *math.HexOrDecimal256 `json:"totalStaked"`
	TotalClaimed *math.HexOrDecimal256 `json:"totalClaimed"`
	RewardCap    *math.HexOrDecimal256 `json:"rewardCap"`
	Schedule     ScheduleInfo          `json:"schedule"`
}

// ScheduleInfo describes the reward rate curve.
type ScheduleInfo struct {
	Anchor    uint64   `json:"anchor"`
	TierRates []uint64 `json:"tierRates"` // basis points, one week each
	TailRate  uint64   `json:"tailRate"`
}

func (p *Pool) handleGetStatus(w http.ResponseWriter, _ *http.Request) error {
	owner, err := p.staker.Owner()
	if err != nil {
		return err
	}
	paused, err := p.staker.Paused()
	if err != nil {
		return err
	}
	lockDuration, err := p.staker.LockDuration()
	if err != nil {
		return err
	}
	endTime, err := p.staker.Cutoff()
	if err != nil {
		return err
	}
	staked, claimed, err := p.staker.Totals()
	if err != nil {
		return err
	}
	rewardCap, err := p.staker.RewardCap()
	if err != nil {
		return err
	}
	sched := p.staker.Schedule()

	return utils.WriteJSON(w, &Status{
		Owner:        owner,
		Paused:       paused,
		LockDuration: lockDuration,
		EndTime:      endTime,
		TotalStaked:  (*math.HexOrDecimal256)(staked),
		TotalClaimed: (*math.HexOrDecimal256)(claimed),
		RewardCap:    (*math.HexOrDecimal256)(rewardCap),
		Schedule: ScheduleInfo{
			Anchor:    sched.Anchor(),
			TierRates: sched.TierRates(),
			TailRate:  sched.TailRate(),
		},
	})
}

func (p *Pool) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(p.handleGetStatus))
}
