// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package precompiled

import (
	"bytes"
	"testing"

	"github.com/Fantom-foundation/Floria/go/floria"
	"go.uber.org/mock/gomock"
)

func newAddress(i byte) floria.Address {
	return floria.Address{19: i}
}

func TestRegistry_RightNumberOfContractsDependingOnRevision(t *testing.T) {
	tests := []struct {
		revision          floria.Revision
		numberOfContracts int
	}{
		{floria.R00_Frontier, 4},
		{floria.R01_Homestead, 4},
		{floria.R05_Byzantium, 8},
		{floria.R07_Istanbul, 9},
		{floria.R09_Berlin, 9},
		{floria.R10_London, 9},
		{floria.R11_Paris, 9},
		{floria.R12_Shanghai, 9},
		{floria.R13_Cancun, 10},
	}

	for _, test := range tests {
		registry := NewRegistry(test.revision)
		count := 0
		for i := byte(0x01); i < byte(0x42); i++ {
			if _, found := registry.Get(newAddress(i)); found {
				count++
			}
		}
		if count != test.numberOfContracts {
			t.Errorf("unexpected number of precompiled contracts for revision %v, want %v, got %v", test.revision, test.numberOfContracts, count)
		}
		if want, got := test.numberOfContracts, len(registry.Addresses()); want != got {
			t.Errorf("unexpected number of addresses for revision %v, want %v, got %v", test.revision, want, got)
		}
	}
}

func TestRegistry_IdentityContractCopiesInput(t *testing.T) {
	registry := NewRegistry(floria.R00_Frontier)
	contract, found := registry.Get(newAddress(0x04))
	if !found {
		t.Fatalf("identity contract not found")
	}
	input := floria.Data{1, 2, 3}
	if want, got := floria.Gas(18), contract.RequiredGas(input); want != got {
		t.Errorf("unexpected gas costs, want %v, got %v", want, got)
	}
	output, err := contract.Run(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(input, output) {
		t.Errorf("unexpected output, want %x, got %x", input, output)
	}
}

func TestRegistry_NonReservedAddressesAreNeverPrecompiled(t *testing.T) {
	registry := NewRegistry(floria.R13_Cancun)
	if _, found := registry.Get(floria.Address{0: 1, 19: 1}); found {
		t.Errorf("non-reserved address reported as precompiled")
	}
}

func TestRegistry_WithAddsContractsToACopy(t *testing.T) {
	ctrl := gomock.NewController(t)
	contract := floria.NewMockPrecompiledContract(ctrl)

	original := Empty()
	extended := original.With(newAddress(0x42), contract)

	if _, found := original.Get(newAddress(0x42)); found {
		t.Errorf("original registry was modified")
	}
	got, found := extended.Get(newAddress(0x42))
	if !found || got != contract {
		t.Errorf("extended registry does not contain the new contract")
	}
}

func TestRegistry_WithRejectsNonReservedAddresses(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected a panic")
		}
	}()
	Empty().With(floria.Address{1}, nil)
}

func TestRegistry_ImplementsPrecompiles(t *testing.T) {
	var _ floria.Precompiles = &Registry{}
}
