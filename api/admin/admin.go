// Copyright (c) 2025 The Lodepool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package admin exposes the owner-gated configuration surface. Every request
// names the calling account; the engine checks it against the stored owner.
package admin

import (
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/lodepool/lodepool/api/utils"
	"github.com/lodepool/lodepool/lode"
	"github.com/lodepool/lodepool/staking"
)

type Admin struct {
	staker *staking.Staker
}

func New(staker *staking.Staker) *Admin {
	return &Admin{
		staker,
	}
}

type pausedRequest struct {
	Caller lode.Address `json:"caller"`
	Paused bool         `json:"paused"`
}

func (a *Admin) handleSetPaused(w http.ResponseWriter, req *http.Request) error {
	var body pausedRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := a.staker.SetPaused(body.Caller, body.Paused); err != nil {
		return utils.ConvertEngineError(err)
	}
	return utils.WriteJSON(w, utils.M{"paused": body.Paused})
}

type lockDurationRequest struct {
	Caller       lode.Address `json:"caller"`
	LockDuration uint64       `json:"lockDuration"`
}

func (a *Admin) handleSetLockDuration(w http.ResponseWriter, req *http.Request) error {
	var body lockDurationRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := a.staker.SetLockDuration(body.Caller, body.LockDuration); err != nil {
		return utils.ConvertEngineError(err)
	}
	return utils.WriteJSON(w, utils.M{"lockDuration": body.LockDuration})
}

type endTimeRequest struct {
	Caller  lode.Address `json:"caller"`
	EndTime uint64       `json:"endTime"`
}

func (a *Admin) handleSetEndTime(w http.ResponseWriter, req *http.Request) error {
	var body endTimeRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := a.staker.SetCutoff(body.Caller, body.EndTime); err != nil {
		return utils.ConvertEngineError(err)
	}
	return utils.WriteJSON(w, utils.M{"endTime": body.EndTime})
}

type rewardCapRequest struct {
	Caller    lode.Address          `json:"caller"`
	RewardCap *math.HexOrDecimal256 `json:"rewardCap"`
}

func (a *Admin) handleSetRewardCap(w http.ResponseWriter, req *http.Request) error {
	var body rewardCapRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.RewardCap == nil {
		return utils.BadRequest(errors.New("rewardCap: missing"))
	}
	if err := a.staker.SetRewardCap(body.Caller, (*big.Int)(body.RewardCap)); err != nil {
		return utils.ConvertEngineError(err)
	}
	return utils.WriteJSON(w, utils.M{"rewardCap": body.RewardCap})
}

type ownerRequest struct {
	Caller   lode.Address `json:"caller"`
	NewOwner lode.Address `json:"newOwner"`
}

func (a *Admin) handleTransferOwnership(w http.ResponseWriter, req *http.Request) error {
	var body ownerRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := a.staker.TransferOwnership(body.Caller, body.NewOwner); err != nil {
		return utils.ConvertEngineError(err)
	}
	return utils.WriteJSON(w, utils.M{"owner": body.NewOwner})
}

type withdrawRequest struct {
	Caller lode.Address          `json:"caller"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

func (a *Admin) handleWithdraw(w http.ResponseWriter, req *http.Request) error {
	var body withdrawRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Amount == nil {
		return utils.BadRequest(errors.New("amount: missing"))
	}
	id, err := a.staker.WithdrawTreasury(body.Caller, (*big.Int)(body.Amount))
	if err != nil {
		return utils.ConvertEngineError(err)
	}
	return utils.WriteJSON(w, utils.M{"id": id})
}

func (a *Admin) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/paused").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(a.handleSetPaused))
	sub.Path("/lockduration").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(a.handleSetLockDuration))
	sub.Path("/endtime").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(a.handleSetEndTime))
	sub.Path("/rewardcap").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(a.handleSetRewardCap))
	sub.Path("/owner").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(a.handleTransferOwnership))
	sub.Path("/withdrawals").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(a.handleWithdraw))
}
