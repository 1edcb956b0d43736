// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package floria

import "errors"

// The closed set of execution exceptions. Interpreters report those through
// a Result with status Excepted. They are recoverable at the granularity of a
// transaction: its effects are reverted and its gas is consumed.
const (
	ErrOutOfGas           = ConstError("out of gas")
	ErrInvalidInstruction = ConstError("invalid instruction")
	ErrStackUnderflow     = ConstError("stack underflow")
	ErrStackOverflow      = ConstError("stack overflow")
	ErrInvalidJump        = ConstError("invalid jump destination")
	ErrCallDepthExceeded  = ConstError("max call depth exceeded")
	ErrWriteProtection    = ConstError("write protection")
	ErrPrecompileFailed   = ConstError("precompiled contract failed")
)

var executionExceptions = []error{
	ErrOutOfGas,
	ErrInvalidInstruction,
	ErrStackUnderflow,
	ErrStackOverflow,
	ErrInvalidJump,
	ErrCallDepthExceeded,
	ErrWriteProtection,
	ErrPrecompileFailed,
}

// IsExecutionException reports whether err is (or wraps) one of the
// enumerated execution exceptions.
func IsExecutionException(err error) bool {
	if err == nil {
		return false
	}
	for _, cur := range executionExceptions {
		if errors.Is(err, cur) {
			return true
		}
	}
	return false
}
