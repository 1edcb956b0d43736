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

import (
	"testing"

	"go.uber.org/mock/gomock"
)

func TestWorldState_AddBalanceCreditsAmount(t *testing.T) {
	ctrl := gomock.NewController(t)
	state := NewMockWorldState(ctrl)

	state.EXPECT().GetBalance(Address{1}).Return(NewValue(100))
	state.EXPECT().SetBalance(Address{1}, NewValue(142))

	AddBalance(state, Address{1}, NewValue(42))
}

func TestWorldState_SubBalanceDebitsAmount(t *testing.T) {
	ctrl := gomock.NewController(t)
	state := NewMockWorldState(ctrl)

	state.EXPECT().GetBalance(Address{1}).Return(NewValue(100))
	state.EXPECT().SetBalance(Address{1}, NewValue(58))

	SubBalance(state, Address{1}, NewValue(42))
}

func TestWorldState_AddBalanceOfZeroStillWritesTheAccount(t *testing.T) {
	ctrl := gomock.NewController(t)
	state := NewMockWorldState(ctrl)

	state.EXPECT().GetBalance(Address{1}).Return(Value{})
	state.EXPECT().SetBalance(Address{1}, Value{})

	AddBalance(state, Address{1}, NewValue(0))
}

func TestWorldState_SubBalanceOfZeroDoesNotTouchTheState(t *testing.T) {
	ctrl := gomock.NewController(t)
	state := NewMockWorldState(ctrl)

	SubBalance(state, Address{1}, NewValue(0))
}

func TestWorldState_IncrementNonce(t *testing.T) {
	ctrl := gomock.NewController(t)
	state := NewMockWorldState(ctrl)

	state.EXPECT().GetNonce(Address{1}).Return(uint64(9))
	state.EXPECT().SetNonce(Address{1}, uint64(10))

	IncrementNonce(state, Address{1})
}

func TestWorldState_HasCode(t *testing.T) {
	ctrl := gomock.NewController(t)
	state := NewMockWorldState(ctrl)

	state.EXPECT().GetCode(Address{1}).Return(Code{0x00})
	state.EXPECT().GetCode(Address{2}).Return(Code{})

	if !HasCode(state, Address{1}) {
		t.Errorf("account with code not detected")
	}
	if HasCode(state, Address{2}) {
		t.Errorf("account without code reported to have code")
	}
}

func TestWorldState_HashCodeOfEmptyCodeIsEmptyCodeHash(t *testing.T) {
	if HashCode(nil) != EmptyCodeHash {
		t.Errorf("unexpected hash of empty code")
	}
	if HashCode(Code{1}) == EmptyCodeHash {
		t.Errorf("non-empty code must not have the empty code hash")
	}
}

func TestPrecompiled_IsReservedAddress(t *testing.T) {
	tests := map[Address]bool{
		{}:                       true,
		{19: 1}:                  true,
		{16: 0xff, 19: 0xff}:     true,
		{15: 1}:                  false,
		{0: 1, 19: 1}:            false,
		{1, 2, 3, 4, 5, 6, 7, 8}: false,
	}
	for address, want := range tests {
		if got := IsReservedAddress(address); want != got {
			t.Errorf("IsReservedAddress(%v): wanted %t, got %t", address, want, got)
		}
	}
}
