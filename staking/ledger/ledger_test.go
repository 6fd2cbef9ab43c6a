// Copyright (c) 2025 The Lodepool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lodepool/lodepool/lode"
	"github.com/lodepool/lodepool/lvldb"
)

func newTestStore(t *testing.T) *Store {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db)
}

func TestStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	addr := lode.BytesToAddress([]byte("a1"))

	got, err := store.Get(addr)
	assert.Nil(t, err)
	assert.Nil(t, got)

	rec := NewRecord(100)
	rec.Principal.SetInt64(1_000_000)
	rec.AccumulatedReward.SetInt64(42)
	require.NoError(t, store.Put(addr, rec))

	got, err = store.Get(addr)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	require.NoError(t, store.Delete(addr))
	got, err = store.Get(addr)
	assert.Nil(t, err)
	assert.Nil(t, got)
}

func TestStoreReturnsCopies(t *testing.T) {
	store := newTestStore(t)
	addr := lode.BytesToAddress([]byte("a1"))

	rec := NewRecord(100)
	rec.Principal.SetInt64(500)
	require.NoError(t, store.Put(addr, rec))

	first, err := store.Get(addr)
	require.NoError(t, err)
	first.Principal.SetInt64(999)

	second, err := store.Get(addr)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(500), second.Principal)
}

func TestStoreList(t *testing.T) {
	store := newTestStore(t)

	for i := byte(1); i <= 5; i++ {
		rec := NewRecord(uint64(i))
		rec.Principal.SetInt64(int64(i) * 100)
		require.NoError(t, store.Put(lode.BytesToAddress([]byte{i}), rec))
	}

	entries, err := store.List(0, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 5)
	// ordered by address bytes
	assert.Equal(t, lode.BytesToAddress([]byte{1}), entries[0].Address)
	assert.Equal(t, big.NewInt(100), entries[0].Record.Principal)

	entries, err = store.List(2, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, lode.BytesToAddress([]byte{3}), entries[0].Address)
	assert.Equal(t, lode.BytesToAddress([]byte{4}), entries[1].Address)

	entries, err = store.List(10, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 0)
}

func TestStoreListSkipsForeignKeys(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	store := NewStore(db)

	addr := lode.BytesToAddress([]byte{1})
	rec := NewRecord(1)
	rec.Principal.SetInt64(100)
	require.NoError(t, store.Put(addr, rec))

	// a 32-byte hashed slot sharing the record prefix byte must not
	// surface as a record
	slot := make([]byte, 32)
	slot[0] = keyPrefix[0]
	require.NoError(t, db.Put(slot, []byte{0xff}))

	entries, err := store.List(0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, addr, entries[0].Address)
}
