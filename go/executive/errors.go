// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package executive

import (
	"fmt"

	"github.com/Fantom-foundation/Floria/go/floria"
)

// Admission errors. Transactions failing admission are rejected without
// touching the world state. The typed errors below carry the details and
// match the respective sentinel through errors.Is.
const (
	ErrInvalidNonce         = floria.ConstError("invalid nonce")
	ErrIntrinsicGas         = floria.ConstError("out of gas for intrinsic costs")
	ErrNotEnoughCash        = floria.ConstError("not enough cash")
	ErrBlockGasLimitReached = floria.ConstError("block gas limit reached")
	ErrInvalidTransaction   = floria.ConstError("invalid transaction")
	ErrInvalidStage         = floria.ConstError("operation not allowed in current stage")
	ErrInternal             = floria.ConstError("internal error")
)

type InvalidNonceError struct {
	Required uint64
	Got      uint64
}

func (e *InvalidNonceError) Error() string {
	return fmt.Sprintf("invalid nonce: require %d got %d", e.Required, e.Got)
}

func (e *InvalidNonceError) Is(target error) bool {
	return target == ErrInvalidNonce
}

type OutOfGasError struct {
	Required floria.Gas
	Got      floria.Gas
}

func (e *OutOfGasError) Error() string {
	return fmt.Sprintf("out of gas: require %d got %d", e.Required, e.Got)
}

func (e *OutOfGasError) Is(target error) bool {
	return target == ErrIntrinsicGas
}

type NotEnoughCashError struct {
	Required  floria.Value
	Available floria.Value
}

func (e *NotEnoughCashError) Error() string {
	return fmt.Sprintf("not enough cash: require %v got %v", e.Required, e.Available)
}

func (e *NotEnoughCashError) Is(target error) bool {
	return target == ErrNotEnoughCash
}

type BlockGasLimitReachedError struct {
	Remaining floria.Gas
	Requested floria.Gas
}

func (e *BlockGasLimitReachedError) Error() string {
	return fmt.Sprintf("block gas limit reached: remaining %d requested %d", e.Remaining, e.Requested)
}

func (e *BlockGasLimitReachedError) Is(target error) bool {
	return target == ErrBlockGasLimitReached
}

// InternalError reports a defect of the executive or its interpreter. The
// state the executive worked on is undefined afterwards and must be dropped.
type InternalError struct {
	Err error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("%v: %v", ErrInternal, e.Err)
}

func (e *InternalError) Is(target error) bool {
	return target == ErrInternal
}

func (e *InternalError) Unwrap() error {
	return e.Err
}
