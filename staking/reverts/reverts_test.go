// Copyright (c) 2025 The Lodepool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestPredicates(t *testing.T) {
	assert.True(t, IsPrecondition(NewPrecondition("staking paused")))
	assert.True(t, IsStateConflict(NewStateConflict("unstake in progress")))
	assert.True(t, IsNotFound(NewNotFound("no stake for account")))
	assert.True(t, IsExternalCall(NewExternalCall(io.EOF, "transfer failed")))

	assert.False(t, IsPrecondition(NewNotFound("x")))
	assert.False(t, IsStateConflict(nil))
	assert.False(t, IsNotFound(io.EOF))
}

func TestWrappedErrorsKeepKind(t *testing.T) {
	err := errors.WithMessage(NewStateConflict("busy"), "deposit rejected")
	assert.True(t, IsStateConflict(err))
	assert.Contains(t, err.Error(), "busy")
}

func TestExternalCallUnwrap(t *testing.T) {
	err := NewExternalCall(io.ErrUnexpectedEOF, "balance query")
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, "balance query: unexpected EOF", err.Error())
}
