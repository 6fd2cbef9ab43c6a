// Copyright (c) 2025 The Lodepool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package eventdb persists the engine's event history in sqlite and answers
// filtered queries over it.
package eventdb

import (
	"context"
	"database/sql"
	"math/big"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/lodepool/lodepool/lode"
	"github.com/lodepool/lodepool/log"
	"github.com/lodepool/lodepool/staking"
)

var logger = log.WithContext("pkg", "eventdb")

const queueSize = 256

// EventDB stores engine events.
type EventDB struct {
	path          string
	db            *sql.DB
	driverVersion string
	queue         chan *staking.Event
}

// New creates or opens an event db at the given path.
func New(path string) (eventDB *EventDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if eventDB == nil {
			db.Close()
		}
	}()
	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, err
	}

	driverVer, _, _ := sqlite3.Version()
	return &EventDB{
		path:          path,
		db:            db,
		driverVersion: driverVer,
		queue:         make(chan *staking.Event, queueSize),
	}, nil
}

// NewMem creates an event db in ram.
func NewMem() (*EventDB, error) {
	return New(":memory:")
}

// Close closes the event db.
func (db *EventDB) Close() {
	db.db.Close()
}

// Path returns the db file path.
func (db *EventDB) Path() string {
	return db.path
}

// Append stores events in one transaction.
func (db *EventDB) Append(ctx context.Context, events []*staking.Event) (err error) {
	if len(events) == 0 {
		return nil
	}
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()
	for _, ev := range events {
		if _, err = tx.ExecContext(ctx,
			"INSERT INTO event(eventTime, kind, account, amount, reward) VALUES ( ?, ?, ?, ?, ?);",
			ev.Time,
			string(ev.Kind),
			ev.Account.Bytes(),
			ev.Amount.Bytes(),
			ev.Reward.Bytes(),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// PostEvent queues ev for storage. It never blocks; when the queue is full the
// event is dropped with a warning. Run must be draining the queue.
func (db *EventDB) PostEvent(ev *staking.Event) {
	select {
	case db.queue <- ev:
	default:
		logger.Warn("event queue full, dropping event", "kind", ev.Kind)
	}
}

var _ staking.EventSink = (*EventDB)(nil)

// Run drains queued events into storage until done is closed.
func (db *EventDB) Run(done <-chan struct{}) {
	for {
		select {
		case ev := <-db.queue:
			if err := db.Append(context.Background(), []*staking.Event{ev}); err != nil {
				logger.Error("store event", "err", err)
			}
		case <-done:
			return
		}
	}
}

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range bounds event time, inclusive on both ends.
type Range struct {
	From uint64 `json:"from"`
	To   uint64 `json:"to"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

// Filter selects stored events.
type Filter struct {
	Kinds   []staking.EventKind `json:"kinds"` // any of, empty matches all
	Account *lode.Address       `json:"account"`
	Range   *Range              `json:"range"`
	Options *Options            `json:"options"`
	Order   Order               `json:"order"` // default asc
}

// Filter returns stored events matching the filter, in insertion order unless
// DESC is requested. A nil filter returns everything.
func (db *EventDB) Filter(ctx context.Context, filter *Filter) ([]*staking.Event, error) {
	const cols = "SELECT eventTime, kind, account, amount, reward FROM event"
	if filter == nil {
		return db.query(ctx, cols+" ORDER BY seq ASC")
	}
	var args []interface{}
	stmt := cols + " WHERE 1"
	if filter.Range != nil {
		args = append(args, filter.Range.From)
		stmt += " AND eventTime >= ? "
		if filter.Range.To >= filter.Range.From {
			args = append(args, filter.Range.To)
			stmt += " AND eventTime <= ? "
		}
	}
	if filter.Account != nil {
		args = append(args, filter.Account.Bytes())
		stmt += " AND account = ? "
	}
	for i, kind := range filter.Kinds {
		if i == 0 {
			stmt += " AND ( kind = ? "
		} else {
			stmt += " OR kind = ? "
		}
		args = append(args, string(kind))
		if i == len(filter.Kinds)-1 {
			stmt += " ) "
		}
	}

	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC "
	} else {
		stmt += " ORDER BY seq ASC "
	}

	if filter.Options != nil {
		stmt += " limit ?, ? "
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.query(ctx, stmt, args...)
}

func (db *EventDB) query(ctx context.Context, stmt string, args ...interface{}) ([]*staking.Event, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*staking.Event
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			eventTime uint64
			kind      string
			account   []byte
			amount    []byte
			reward    []byte
		)
		if err := rows.Scan(
			&eventTime,
			&kind,
			&account,
			&amount,
			&reward,
		); err != nil {
			return nil, err
		}
		events = append(events, &staking.Event{
			Time:    eventTime,
			Kind:    staking.EventKind(kind),
			Account: lode.BytesToAddress(account),
			Amount:  new(big.Int).SetBytes(amount),
			Reward:  new(big.Int).SetBytes(reward),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
