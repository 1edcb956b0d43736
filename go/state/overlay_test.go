// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package state

import (
	"slices"
	"testing"

	"github.com/Fantom-foundation/Floria/go/floria"
	"go.uber.org/mock/gomock"
)

func TestOverlay_ImplementsWorldState(t *testing.T) {
	var _ floria.WorldState = &Overlay{}
}

func TestOverlay_ReadsFallThroughToParent(t *testing.T) {
	addr := floria.Address{1}
	parent := Memory{addr: Account{
		Balance: floria.NewValue(1),
		Nonce:   2,
		Code:    floria.Code{3},
		Storage: Storage{{4}: {5}},
	}}
	overlay := NewOverlay(parent)

	if !overlay.AccountExists(addr) {
		t.Errorf("account should exist")
	}
	if want, got := floria.NewValue(1), overlay.GetBalance(addr); want != got {
		t.Errorf("unexpected balance, wanted %v, got %v", want, got)
	}
	if want, got := uint64(2), overlay.GetNonce(addr); want != got {
		t.Errorf("unexpected nonce, wanted %v, got %v", want, got)
	}
	if want, got := (floria.Code{3}), overlay.GetCode(addr); !slices.Equal(want, got) {
		t.Errorf("unexpected code, wanted %v, got %v", want, got)
	}
	if want, got := parent.GetCodeHash(addr), overlay.GetCodeHash(addr); want != got {
		t.Errorf("unexpected code hash, wanted %v, got %v", want, got)
	}
	if want, got := (floria.Word{5}), overlay.GetStorage(addr, floria.Key{4}); want != got {
		t.Errorf("unexpected storage, wanted %v, got %v", want, got)
	}
}

func TestOverlay_WritesDoNotReachParentBeforeCommit(t *testing.T) {
	addr := floria.Address{1}
	parent := Memory{addr: Account{Balance: floria.NewValue(1)}}
	overlay := NewOverlay(parent)

	overlay.SetBalance(addr, floria.NewValue(10))
	overlay.SetNonce(addr, 11)
	overlay.SetCode(addr, floria.Code{12})
	overlay.SetStorage(addr, floria.Key{13}, floria.Word{14})
	overlay.SetBalance(floria.Address{2}, floria.NewValue(15))

	want := Memory{addr: Account{Balance: floria.NewValue(1)}}
	if !parent.Equal(want) {
		t.Errorf("parent was modified: %v", parent.Diff(want))
	}
	if want, got := floria.NewValue(10), overlay.GetBalance(addr); want != got {
		t.Errorf("unexpected balance, wanted %v, got %v", want, got)
	}
	if !overlay.AccountExists(floria.Address{2}) {
		t.Errorf("account created in overlay should exist")
	}
	if want, got := floria.EmptyCodeHash, overlay.GetCodeHash(floria.Address{2}); want != got {
		t.Errorf("unexpected code hash of new account, wanted %v, got %v", want, got)
	}
}

func TestOverlay_CommitAppliesWritesToParent(t *testing.T) {
	addr := floria.Address{1}
	parent := Memory{addr: Account{Balance: floria.NewValue(1), Storage: Storage{{1}: {1}}}}
	overlay := NewOverlay(parent)

	overlay.SetBalance(addr, floria.NewValue(10))
	overlay.SetNonce(addr, 11)
	overlay.SetCode(addr, floria.Code{12})
	overlay.SetStorage(addr, floria.Key{1}, floria.Word{})
	overlay.SetStorage(addr, floria.Key{2}, floria.Word{2})
	overlay.SetBalance(floria.Address{2}, floria.NewValue(15))
	overlay.Commit()

	want := Memory{
		addr: Account{
			Balance: floria.NewValue(10),
			Nonce:   11,
			Code:    floria.Code{12},
			Storage: Storage{{2}: {2}},
		},
		{2}: Account{Balance: floria.NewValue(15)},
	}
	if !parent.Equal(want) {
		t.Errorf("unexpected parent state: %v", parent.Diff(want))
	}
	if !parent.AccountExists(floria.Address{2}) {
		t.Errorf("committed account should exist in parent")
	}
}

func TestOverlay_DiscardDropsWrites(t *testing.T) {
	addr := floria.Address{1}
	parent := Memory{addr: Account{Balance: floria.NewValue(1)}}
	overlay := NewOverlay(parent)

	overlay.SetBalance(addr, floria.NewValue(10))
	overlay.DeleteAccount(addr)
	overlay.Discard()

	if want, got := floria.NewValue(1), overlay.GetBalance(addr); want != got {
		t.Errorf("unexpected balance after discard, wanted %v, got %v", want, got)
	}
	overlay.Commit()
	if !parent.Equal(Memory{addr: Account{Balance: floria.NewValue(1)}}) {
		t.Errorf("parent was modified by discarded writes")
	}
}

func TestOverlay_DeletedAccountsHideParentContent(t *testing.T) {
	addr := floria.Address{1}
	parent := Memory{addr: Account{
		Balance: floria.NewValue(1),
		Nonce:   2,
		Code:    floria.Code{3},
		Storage: Storage{{4}: {5}},
	}}
	overlay := NewOverlay(parent)
	overlay.DeleteAccount(addr)

	if overlay.AccountExists(addr) {
		t.Errorf("deleted account should not exist")
	}
	if overlay.GetBalance(addr) != (floria.Value{}) || overlay.GetNonce(addr) != 0 ||
		len(overlay.GetCode(addr)) != 0 || overlay.GetStorage(addr, floria.Key{4}) != (floria.Word{}) {
		t.Errorf("deleted account should be empty")
	}
	if overlay.GetCodeHash(addr) != (floria.Hash{}) {
		t.Errorf("deleted account should have zero code hash")
	}

	// Recreation starts from an empty account.
	overlay.SetBalance(addr, floria.NewValue(7))
	if !overlay.AccountExists(addr) {
		t.Errorf("recreated account should exist")
	}
	if overlay.GetStorage(addr, floria.Key{4}) != (floria.Word{}) {
		t.Errorf("recreated account should not see old storage")
	}

	overlay.Commit()
	want := Memory{addr: Account{Balance: floria.NewValue(7)}}
	if !parent.Equal(want) {
		t.Errorf("unexpected parent state: %v", parent.Diff(want))
	}
}

func TestOverlay_NestedOverlaysCommitLayerByLayer(t *testing.T) {
	addr := floria.Address{1}
	base := Memory{}
	outer := NewOverlay(base)
	inner := NewOverlay(outer)

	inner.SetBalance(addr, floria.NewValue(5))
	if outer.AccountExists(addr) {
		t.Fatalf("inner writes leaked into outer overlay")
	}
	inner.Commit()
	if want, got := floria.NewValue(5), outer.GetBalance(addr); want != got {
		t.Errorf("unexpected balance in outer overlay, wanted %v, got %v", want, got)
	}
	if base.AccountExists(addr) {
		t.Fatalf("inner writes leaked into base state")
	}
	outer.Commit()
	if want, got := floria.NewValue(5), base.GetBalance(addr); want != got {
		t.Errorf("unexpected balance in base, wanted %v, got %v", want, got)
	}
}

func TestOverlay_CommitReplaysInAddressOrderWithDeletionsFirst(t *testing.T) {
	ctrl := gomock.NewController(t)
	parent := floria.NewMockWorldState(ctrl)
	overlay := NewOverlay(parent)

	overlay.SetNonce(floria.Address{2}, 1)
	overlay.DeleteAccount(floria.Address{1})
	overlay.SetBalance(floria.Address{1}, floria.NewValue(3))

	gomock.InOrder(
		parent.EXPECT().DeleteAccount(floria.Address{1}),
		parent.EXPECT().SetBalance(floria.Address{1}, floria.NewValue(3)),
		parent.EXPECT().SetNonce(floria.Address{2}, uint64(1)),
	)
	overlay.Commit()
	overlay.Commit() // the overlay is empty after a commit
}
