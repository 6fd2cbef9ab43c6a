// Copyright (c) 2025 The Lodepool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/pkg/errors"

	"github.com/lodepool/lodepool/lode"
)

// migrate upgrades persisted state to lode.StateVersion. Opening state written
// by a newer release is refused.
func migrate(cfg *configStore) error {
	from, err := cfg.SchemaVersion()
	if err != nil {
		return err
	}
	if from == lode.StateVersion {
		return nil
	}
	if from > lode.StateVersion {
		return errors.Errorf("state schema %d is newer than supported %d", from, lode.StateVersion)
	}
	for v := from; v < lode.StateVersion; v++ {
		// per-version upgrade steps go here as the schema evolves
		switch v {
		default:
			return errors.Errorf("no migration from state schema %d", v)
		}
	}
	return cfg.SetSchemaVersion(lode.StateVersion)
}
