// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package precompiled provides the registry of precompiled contracts
// available to the executive. Contracts are taken from go-ethereum's
// implementations, selected by revision.
package precompiled

import (
	"bytes"
	"maps"
	"math"
	"slices"

	"github.com/Fantom-foundation/Floria/go/floria"
	"github.com/ethereum/go-ethereum/common"
	geth "github.com/ethereum/go-ethereum/core/vm"
)

// Registry maps reserved addresses to precompiled contracts. A registry is
// immutable once created.
type Registry struct {
	contracts map[floria.Address]floria.PrecompiledContract
}

// NewRegistry creates a registry containing the precompiled contracts active
// in the given revision.
func NewRegistry(revision floria.Revision) *Registry {
	var precompiles map[common.Address]geth.PrecompiledContract
	switch {
	case revision >= floria.R13_Cancun:
		precompiles = geth.PrecompiledContractsCancun
	case revision >= floria.R09_Berlin:
		precompiles = geth.PrecompiledContractsBerlin
	case revision >= floria.R07_Istanbul:
		precompiles = geth.PrecompiledContractsIstanbul
	case revision >= floria.R05_Byzantium:
		precompiles = geth.PrecompiledContractsByzantium
	default:
		precompiles = geth.PrecompiledContractsHomestead
	}
	contracts := make(map[floria.Address]floria.PrecompiledContract, len(precompiles))
	for address, contract := range precompiles {
		contracts[floria.Address(address)] = adapter{contract}
	}
	return &Registry{contracts: contracts}
}

// Empty returns a registry without any contracts.
func Empty() *Registry {
	return &Registry{contracts: map[floria.Address]floria.PrecompiledContract{}}
}

// With returns a copy of the registry extended by the given contract. The
// address must be in the reserved range.
func (r *Registry) With(address floria.Address, contract floria.PrecompiledContract) *Registry {
	if !floria.IsReservedAddress(address) {
		panic("precompiled contracts must be located at reserved addresses")
	}
	contracts := maps.Clone(r.contracts)
	contracts[address] = contract
	return &Registry{contracts: contracts}
}

// Get looks up the contract at the given address. Only reserved addresses
// can host precompiled contracts.
func (r *Registry) Get(address floria.Address) (floria.PrecompiledContract, bool) {
	if !floria.IsReservedAddress(address) {
		return nil, false
	}
	contract, found := r.contracts[address]
	return contract, found
}

// Addresses lists the addresses of all registered contracts in ascending
// order.
func (r *Registry) Addresses() []floria.Address {
	res := make([]floria.Address, 0, len(r.contracts))
	for address := range r.contracts {
		res = append(res, address)
	}
	slices.SortFunc(res, func(a, b floria.Address) int {
		return bytes.Compare(a[:], b[:])
	})
	return res
}

// adapter exposes a go-ethereum precompiled contract as a
// floria.PrecompiledContract.
type adapter struct {
	contract geth.PrecompiledContract
}

func (a adapter) RequiredGas(input floria.Data) floria.Gas {
	gas := a.contract.RequiredGas(input)
	if gas > math.MaxInt64 {
		return floria.Gas(math.MaxInt64)
	}
	return floria.Gas(gas)
}

func (a adapter) Run(input floria.Data) (floria.Data, error) {
	return a.contract.Run(input)
}
