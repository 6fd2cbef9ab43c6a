// Copyright (c) 2025 The Lodepool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"math/big"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/lodepool/lodepool/api/utils"
	"github.com/lodepool/lodepool/lode"
	"github.com/lodepool/lodepool/staking"
	"github.com/lodepool/lodepool/token"
)

// Depositor submits a token transfer into the pool on behalf of an account.
// Only available in solo mode, where the service owns the token ledger.
type Depositor interface {
	TransferCall(sender lode.Address, amount *big.Int, msg string, receiver token.Receiver) error
}

type Stakes struct {
	staker    *staking.Staker
	depositor Depositor
	limit     uint64 // max page size
}

func New(staker *staking.Staker, depositor Depositor, limit uint64) *Stakes {
	return &Stakes{
		staker,
		depositor,
		limit,
	}
}

func (s *Stakes) handleGetStake(w http.ResponseWriter, req *http.Request) error {
	addr, err := lode.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	info, err := s.staker.GetStakeInfo(*addr)
	if err != nil {
		return utils.ConvertEngineError(err)
	}
	if info == nil {
		return utils.NotFound(errors.New("no stake found for this account"))
	}
	return utils.WriteJSON(w, convertStake(*addr, info, s.staker.OperationState(*addr)))
}

func (s *Stakes) handleListStakes(w http.ResponseWriter, req *http.Request) error {
	offset, limit, err := s.parsePage(req)
	if err != nil {
		return err
	}
	entries, err := s.staker.ListStakes(offset, limit)
	if err != nil {
		return utils.ConvertEngineError(err)
	}
	stakes := make([]*Stake, 0, len(entries))
	for _, e := range entries {
		stakes = append(stakes, convertStake(e.Address, &e.StakeInfo, s.staker.OperationState(e.Address)))
	}
	return utils.WriteJSON(w, stakes)
}

func (s *Stakes) handleUnstake(w http.ResponseWriter, req *http.Request) error {
	addr, err := lode.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	id, err := s.staker.Unstake(*addr)
	if err != nil {
		return utils.ConvertEngineError(err)
	}
	return utils.WriteJSON(w, &UnstakeResult{ID: id})
}

func (s *Stakes) handleDeposit(w http.ResponseWriter, req *http.Request) error {
	addr, err := lode.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	var dr DepositRequest
	if err := utils.ParseJSON(req.Body, &dr); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if dr.Amount == nil {
		return utils.BadRequest(errors.New("amount: missing"))
	}
	if err := s.depositor.TransferCall(*addr, (*big.Int)(dr.Amount), "", s.staker); err != nil {
		if herr := utils.ConvertEngineError(err); herr != err {
			return herr
		}
		return utils.BadRequest(err)
	}
	info, err := s.staker.GetStakeInfo(*addr)
	if err != nil {
		return utils.ConvertEngineError(err)
	}
	return utils.WriteJSON(w, convertStake(*addr, info, s.staker.OperationState(*addr)))
}

func (s *Stakes) parsePage(req *http.Request) (offset, limit uint64, err error) {
	limit = s.limit
	if v := req.URL.Query().Get("offset"); v != "" {
		if offset, err = strconv.ParseUint(v, 10, 64); err != nil {
			return 0, 0, utils.BadRequest(errors.WithMessage(err, "offset"))
		}
	}
	if v := req.URL.Query().Get("limit"); v != "" {
		if limit, err = strconv.ParseUint(v, 10, 64); err != nil {
			return 0, 0, utils.BadRequest(errors.WithMessage(err, "limit"))
		}
		if limit > s.limit {
			return 0, 0, utils.Forbidden(errors.New("limit: exceeds max"))
		}
	}
	return offset, limit, nil
}

func (s *Stakes) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(s.handleListStakes))
	sub.Path("/{address}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(s.handleGetStake))
	sub.Path("/{address}/unstake").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(s.handleUnstake))
	if s.depositor != nil {
		sub.Path("/{address}/deposit").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(s.handleDeposit))
	}
}
