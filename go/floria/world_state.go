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

import "github.com/ethereum/go-ethereum/crypto"

//go:generate mockgen -source world_state.go -destination world_state_mock.go -package floria

// WorldState is an interface to access and manipulate the state of the block chain.
// The state of the chain is a collection of accounts, each with a balance, a nonce,
// optional code and storage.
type WorldState interface {
	AccountExists(Address) bool

	GetBalance(Address) Value
	SetBalance(Address, Value)

	GetNonce(Address) uint64
	SetNonce(Address, uint64)

	GetCode(Address) Code
	GetCodeHash(Address) Hash
	SetCode(Address, Code)

	GetStorage(Address, Key) Word
	SetStorage(Address, Key, Word)

	// DeleteAccount removes the account including its balance, nonce, code
	// and storage.
	DeleteAccount(Address)
}

// EmptyCodeHash is the hash of an empty code.
var EmptyCodeHash = Hash(crypto.Keccak256Hash(nil))

// HashCode computes the Keccak256 hash of the given code.
func HashCode(code Code) Hash {
	if len(code) == 0 {
		return EmptyCodeHash
	}
	return Hash(crypto.Keccak256Hash(code))
}

// AddBalance credits the given amount to the account. The account is
// created if missing, even for a zero amount.
func AddBalance(state WorldState, address Address, amount Value) {
	state.SetBalance(address, Add(state.GetBalance(address), amount))
}

// SubBalance debits the given amount from the account. Callers need to make
// sure the balance is sufficient.
func SubBalance(state WorldState, address Address, amount Value) {
	if amount.IsZero() {
		return
	}
	state.SetBalance(address, Sub(state.GetBalance(address), amount))
}

// IncrementNonce increases the nonce of the given account by one.
func IncrementNonce(state WorldState, address Address) {
	state.SetNonce(address, state.GetNonce(address)+1)
}

// HasCode reports whether the account at the given address has code.
func HasCode(state WorldState, address Address) bool {
	return len(state.GetCode(address)) > 0
}
