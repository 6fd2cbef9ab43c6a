// Copyright (c) 2025 The Lodepool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/lodepool/lodepool/api/utils"
	"github.com/lodepool/lodepool/eventdb"
	"github.com/lodepool/lodepool/lode"
	"github.com/lodepool/lodepool/staking"
)

type Events struct {
	db    *eventdb.EventDB
	limit uint64
}

func New(db *eventdb.EventDB, limit uint64) *Events {
	return &Events{
		db,
		limit,
	}
}

// FilteredEvent is one stored event as served over http.
type FilteredEvent struct {
	Time    uint64                `json:"time"`
	Kind    staking.EventKind     `json:"kind"`
	Account lode.Address          `json:"account"`
	Amount  *math.HexOrDecimal256 `json:"amount"`
	Reward  *math.HexOrDecimal256 `json:"reward"`
}

func convertEvent(ev *staking.Event) *FilteredEvent {
	return &FilteredEvent{
		Time:    ev.Time,
		Kind:    ev.Kind,
		Account: ev.Account,
		Amount:  (*math.HexOrDecimal256)(ev.Amount),
		Reward:  (*math.HexOrDecimal256)(ev.Reward),
	}
}

func (e *Events) handleFilterEvents(w http.ResponseWriter, req *http.Request) error {
	var filter eventdb.Filter
	if err := utils.ParseJSON(req.Body, &filter); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if filter.Options == nil {
		filter.Options = &eventdb.Options{Offset: 0, Limit: e.limit}
	} else if filter.Options.Limit > e.limit {
		return utils.Forbidden(errors.New("options.limit: exceeds max"))
	}
	found, err := e.db.Filter(req.Context(), &filter)
	if err != nil {
		return err
	}
	out := make([]*FilteredEvent, 0, len(found))
	for _, ev := range found {
		out = append(out, convertEvent(ev))
	}
	return utils.WriteJSON(w, out)
}

func (e *Events) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(e.handleFilterEvents))
}
