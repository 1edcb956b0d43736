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

//go:generate mockgen -source precompiled.go -destination precompiled_mock.go -package floria

// PrecompiledContract is a built-in function reachable at a reserved address,
// bypassing the interpreter.
type PrecompiledContract interface {
	// RequiredGas computes the gas costs of running the contract on the
	// given input.
	RequiredGas(input Data) Gas
	// Run executes the contract. Errors are only returned for invalid inputs.
	Run(input Data) (Data, error)
}

// Precompiles provides the precompiled contracts available to a transaction.
type Precompiles interface {
	// Get returns the contract registered for the given address, if any.
	Get(Address) (PrecompiledContract, bool)
}

// IsReservedAddress reports whether the address is located in the low address
// range reserved for precompiled contracts, i.e. addresses up to 0xffffffff.
func IsReservedAddress(address Address) bool {
	for i := 0; i < len(address)-4; i++ {
		if address[i] != 0 {
			return false
		}
	}
	return true
}
