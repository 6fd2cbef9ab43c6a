// Copyright (c) 2025 The Lodepool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/lodepool/lodepool/lode"
	"github.com/lodepool/lodepool/staking"
)

// Stake is one account's position as served over http.
type Stake struct {
	Address           lode.Address          `json:"address"`
	Principal         *math.HexOrDecimal256 `json:"principal"`
	AccumulatedReward *math.HexOrDecimal256 `json:"accumulatedReward"`
	FirstStakeTime    uint64                `json:"firstStakeTime"`
	StartTime         uint64                `json:"startTime"`
	OperationState    string                `json:"operationState"`
}

func convertStake(addr lode.Address, info *staking.StakeInfo, state staking.OpState) *Stake {
	return &Stake{
		Address:           addr,
		Principal:         (*math.HexOrDecimal256)(info.Principal),
		AccumulatedReward: (*math.HexOrDecimal256)(info.AccumulatedReward),
		FirstStakeTime:    info.FirstStakeTime,
		StartTime:         info.StartTime,
		OperationState:    state.String(),
	}
}

// UnstakeResult carries the settlement id of an accepted unstake.
type UnstakeResult struct {
	ID string `json:"id"`
}

// DepositRequest is the body of a solo-mode deposit.
type DepositRequest struct {
	Amount *math.HexOrDecimal256 `json:"amount"`
}
