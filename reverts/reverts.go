// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reverts holds the errors a contract call reverts with on its own account.
// Failures raised by collaborating contracts are not converted into these.
package reverts

import (
	"errors"
	"fmt"
)

// InputError reports caller supplied data that breaks a rule of the call.
type InputError struct {
	message string
}

func NewInputError(message string) *InputError {
	return &InputError{message: message}
}

func NewInputErrorf(format string, args ...any) *InputError {
	return &InputError{message: fmt.Sprintf(format, args...)}
}

func (e *InputError) Error() string {
	return e.message
}

// AuthorizationError reports a caller missing the role a call requires.
type AuthorizationError struct {
	message string
}

func NewAuthorizationError(message string) *AuthorizationError {
	return &AuthorizationError{message: message}
}

func (e *AuthorizationError) Error() string {
	return e.message
}

func IsInputErr(err any) bool {
	e, ok := err.(error)
	if !ok || e == nil {
		return false
	}
	var ie *InputError
	return errors.As(e, &ie)
}

func IsUnauthorized(err any) bool {
	e, ok := err.(error)
	if !ok || e == nil {
		return false
	}
	var ae *AuthorizationError
	return errors.As(e, &ae)
}

// IsRevertErr reports whether err is one of the revert kinds of this package.
func IsRevertErr(err any) bool {
	return IsInputErr(err) || IsUnauthorized(err)
}
