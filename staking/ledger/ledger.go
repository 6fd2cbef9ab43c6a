// Copyright (c) 2025 The Lodepool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger is the sole owner of per-account stake records.
package ledger

import (
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/lodepool/lodepool/kv"
	"github.com/lodepool/lodepool/lode"
)

const cacheSize = 1024

var keyPrefix = []byte("r")

func recordKey(addr lode.Address) []byte {
	return append(append(make([]byte, 0, 1+lode.AddressLength), keyPrefix...), addr.Bytes()...)
}

// Entry pairs an account with its record, for listing.
type Entry struct {
	Address lode.Address
	Record  *Record
}

// Store persists stake records keyed by account address.
type Store struct {
	db    kv.GetPutter
	cache *lru.Cache // addr -> *Record, decoded copies
}

// NewStore creates a record store over the given kv.
func NewStore(db kv.GetPutter) *Store {
	cache, _ := lru.New(cacheSize)
	return &Store{db: db, cache: cache}
}

// Get loads the record of addr, or (nil, nil) when the account has no stake.
// The returned record is a private copy, safe to mutate.
func (s *Store) Get(addr lode.Address) (*Record, error) {
	if cached, ok := s.cache.Get(addr); ok {
		return cached.(*Record).Copy(), nil
	}
	data, err := s.db.Get(recordKey(addr))
	if err != nil {
		if s.db.IsNotFound(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get stake record")
	}
	var rec Record
	if err := rec.decode(data); err != nil {
		return nil, errors.Wrap(err, "decode stake record")
	}
	s.cache.Add(addr, rec.Copy())
	return &rec, nil
}

// Put saves the record of addr.
func (s *Store) Put(addr lode.Address, rec *Record) error {
	data, err := rec.encode()
	if err != nil {
		return errors.Wrap(err, "encode stake record")
	}
	if err := s.db.Put(recordKey(addr), data); err != nil {
		return errors.Wrap(err, "put stake record")
	}
	s.cache.Add(addr, rec.Copy())
	return nil
}

// Delete removes the record of addr. Removing an absent record is a no-op.
func (s *Store) Delete(addr lode.Address) error {
	if err := s.db.Delete(recordKey(addr)); err != nil {
		return errors.Wrap(err, "delete stake record")
	}
	s.cache.Remove(addr)
	return nil
}

// List returns up to limit records ordered by address, skipping offset.
func (s *Store) List(offset, limit uint64) ([]*Entry, error) {
	it := s.db.NewIterator(kv.Range{From: keyPrefix, To: []byte{keyPrefix[0] + 1}})
	defer it.Release()

	entries := make([]*Entry, 0, limit)
	var i uint64
	for it.Next() {
		// the prefix scan may sweep in unrelated keys, e.g. hashed config
		// slots; only exact prefix+address keys are records
		if len(it.Key()) != len(keyPrefix)+lode.AddressLength {
			continue
		}
		if i < offset {
			i++
			continue
		}
		if uint64(len(entries)) >= limit {
			break
		}
		var rec Record
		if err := rec.decode(it.Value()); err != nil {
			return nil, errors.Wrap(err, "decode stake record")
		}
		entries = append(entries, &Entry{
			Address: lode.BytesToAddress(it.Key()[len(keyPrefix):]),
			Record:  &rec,
		})
		i++
	}
	if err := it.Error(); err != nil {
		return nil, errors.Wrap(err, "iterate stake records")
	}
	return entries, nil
}
