// Copyright (c) 2025 The Lodepool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

// Range is a half-open key range [From, To).
type Range struct {
	From []byte
	To   []byte
}

// Getter is the read side of a key-value store.
type Getter interface {
	// Get returns the value stored under key. A missing key yields an
	// error recognized by IsNotFound.
	Get(key []byte) (value []byte, err error)
	Has(key []byte) (bool, error)
	IsNotFound(error) bool

	NewIterator(r Range) Iterator
}

// Putter is the write side of a key-value store.
type Putter interface {
	Put(key, value []byte) error
	Delete(key []byte) error

	NewBatch() Batch
}

// GetPutter combines the read and write sides.
type GetPutter interface {
	Getter
	Putter
}

// GetPutCloser is a closable GetPutter.
type GetPutCloser interface {
	GetPutter
	Close() error
}

// Batch collects writes to be committed atomically.
type Batch interface {
	Putter

	Len() int
	Write() error
}

// Iterator walks keys in ascending order within a range.
type Iterator interface {
	Next() bool
	Release()
	Error() error

	Key() []byte
	Value() []byte
}
