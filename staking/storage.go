// Copyright (c) 2025 The Lodepool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/lodepool/lodepool/kv"
	"github.com/lodepool/lodepool/lode"
)

var (
	slotInitialized   = lode.Bytes32(crypto.Keccak256Hash([]byte("initialized")))
	slotSchemaVersion = lode.Bytes32(crypto.Keccak256Hash([]byte("schema-version")))
	slotOwner         = lode.Bytes32(crypto.Keccak256Hash([]byte("owner")))
	slotAnchor        = lode.Bytes32(crypto.Keccak256Hash([]byte("schedule-anchor")))
	slotLockDuration  = lode.Bytes32(crypto.Keccak256Hash([]byte("lock-duration")))
	slotPaused        = lode.Bytes32(crypto.Keccak256Hash([]byte("stake-paused")))
	slotCutoff        = lode.Bytes32(crypto.Keccak256Hash([]byte("stake-end-time")))
)

// configStore persists the engine configuration state.
type configStore struct {
	db kv.GetPutter
}

func (c *configStore) get(key lode.Bytes32, val any) (bool, error) {
	data, err := c.db.Get(key.Bytes())
	if err != nil {
		if c.db.IsNotFound(err) {
			return false, nil
		}
		return false, errors.Wrap(err, "get config")
	}
	if err := rlp.DecodeBytes(data, val); err != nil {
		return false, errors.Wrap(err, "decode config")
	}
	return true, nil
}

func (c *configStore) set(key lode.Bytes32, val any) error {
	data, err := rlp.EncodeToBytes(val)
	if err != nil {
		return errors.Wrap(err, "encode config")
	}
	return errors.Wrap(c.db.Put(key.Bytes(), data), "put config")
}

func (c *configStore) Initialized() (bool, error) {
	var v bool
	ok, err := c.get(slotInitialized, &v)
	return ok && v, err
}

func (c *configStore) SetInitialized() error {
	return c.set(slotInitialized, true)
}

func (c *configStore) SchemaVersion() (uint32, error) {
	var v uint32
	_, err := c.get(slotSchemaVersion, &v)
	return v, err
}

func (c *configStore) SetSchemaVersion(v uint32) error {
	return c.set(slotSchemaVersion, v)
}

func (c *configStore) Owner() (lode.Address, error) {
	var v lode.Address
	_, err := c.get(slotOwner, &v)
	return v, err
}

func (c *configStore) SetOwner(owner lode.Address) error {
	return c.set(slotOwner, owner)
}

func (c *configStore) Anchor() (uint64, error) {
	var v uint64
	_, err := c.get(slotAnchor, &v)
	return v, err
}

func (c *configStore) SetAnchor(anchor uint64) error {
	return c.set(slotAnchor, anchor)
}

func (c *configStore) LockDuration() (uint64, error) {
	var v uint64
	_, err := c.get(slotLockDuration, &v)
	return v, err
}

func (c *configStore) SetLockDuration(d uint64) error {
	return c.set(slotLockDuration, d)
}

func (c *configStore) Paused() (bool, error) {
	var v bool
	_, err := c.get(slotPaused, &v)
	return v, err
}

func (c *configStore) SetPaused(paused bool) error {
	return c.set(slotPaused, paused)
}

func (c *configStore) Cutoff() (uint64, error) {
	var v uint64
	_, err := c.get(slotCutoff, &v)
	return v, err
}

func (c *configStore) SetCutoff(ts uint64) error {
	return c.set(slotCutoff, ts)
}
