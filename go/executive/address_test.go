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
	"testing"

	"github.com/Fantom-foundation/Floria/go/floria"
	"github.com/ethereum/go-ethereum/common"
)

func TestContractAddress_KnownValues(t *testing.T) {
	creator := floria.Address(common.HexToAddress("0x970e8128ab834e8eac17ab8e3812f010678cf791"))
	tests := map[uint64]string{
		0: "0x333c3310824b7c685133f2bedb2ca4b8b4df633d",
		1: "0x8bda78331c916a08481428e4b07c96d3e916d165",
		2: "0xc9ddedf451bc62ce88bf9292afb13df35b670699",
	}
	for nonce, want := range tests {
		if got := ContractAddress(creator, nonce); floria.Address(common.HexToAddress(want)) != got {
			t.Errorf("unexpected address for nonce %d, wanted %s, got %v", nonce, want, got)
		}
	}
}

func TestContractAddress_DependsOnlyOnSenderAndNonce(t *testing.T) {
	a := ContractAddress(sender, 7)
	if b := ContractAddress(sender, 7); a != b {
		t.Errorf("address derivation is not deterministic")
	}
	if b := ContractAddress(sender, 8); a == b {
		t.Errorf("different nonces should lead to different addresses")
	}
	if b := ContractAddress(receiver, 7); a == b {
		t.Errorf("different senders should lead to different addresses")
	}
}
