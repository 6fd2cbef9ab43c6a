// Copyright (c) 2025 The Lodepool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"math/big"
	"strings"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
)

func TestTerminalHandlerOutput(t *testing.T) {
	var buf bytes.Buffer
	SetRootHandler(NewTerminalHandler(&buf, false))
	defer SetRootHandler(DiscardHandler())

	l := WithContext("pkg", "test")
	l.Info("hello", "amount", big.NewInt(12345), "u", uint256.NewInt(7))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "INFO "))
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "pkg=test")
	assert.Contains(t, out, "amount=12345")
	assert.Contains(t, out, "u=7")
}

func TestTerminalHandlerLevel(t *testing.T) {
	var buf bytes.Buffer
	SetRootHandler(NewTerminalHandlerWithLevel(&buf, LevelWarn, false))
	defer SetRootHandler(DiscardHandler())

	l := Root()
	l.Info("dropped")
	l.Warn("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}

func TestEscapeString(t *testing.T) {
	assert.Equal(t, "plain", escapeString("plain"))
	assert.Equal(t, `"with space"`, escapeString("with space"))
}
