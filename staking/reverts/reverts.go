// Copyright (c) 2025 The Lodepool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reverts defines the typed errors of the staking engine.
//
// Four categories exist: precondition violations (bad request against current
// config), state conflicts (per-account operation already in flight), not-found
// (no stake record), and external call failures (the token ledger reported a
// failed transfer or balance query).
package reverts

import (
	"errors"
	"fmt"
)

type ErrPrecondition struct {
	message string
}

func NewPrecondition(format string, args ...any) *ErrPrecondition {
	return &ErrPrecondition{message: fmt.Sprintf(format, args...)}
}

func (e *ErrPrecondition) Error() string {
	return e.message
}

// IsPrecondition checks if err is a precondition violation.
func IsPrecondition(err error) bool {
	var e *ErrPrecondition
	return errors.As(err, &e)
}

type ErrStateConflict struct {
	message string
}

func NewStateConflict(format string, args ...any) *ErrStateConflict {
	return &ErrStateConflict{message: fmt.Sprintf(format, args...)}
}

func (e *ErrStateConflict) Error() string {
	return e.message
}

// IsStateConflict checks if err is an operation-state conflict.
func IsStateConflict(err error) bool {
	var e *ErrStateConflict
	return errors.As(err, &e)
}

type ErrNotFound struct {
	message string
}

func NewNotFound(format string, args ...any) *ErrNotFound {
	return &ErrNotFound{message: fmt.Sprintf(format, args...)}
}

func (e *ErrNotFound) Error() string {
	return e.message
}

// IsNotFound checks if err reports a missing stake record.
func IsNotFound(err error) bool {
	var e *ErrNotFound
	return errors.As(err, &e)
}

type ErrExternalCall struct {
	message string
	cause   error
}

func NewExternalCall(cause error, message string) *ErrExternalCall {
	return &ErrExternalCall{message: message, cause: cause}
}

func (e *ErrExternalCall) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

func (e *ErrExternalCall) Unwrap() error {
	return e.cause
}

// IsExternalCall checks if err reports a failed token ledger call.
func IsExternalCall(err error) bool {
	var e *ErrExternalCall
	return errors.As(err, &e)
}
