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
	"bytes"
	"fmt"
	"slices"

	"github.com/Fantom-foundation/Floria/go/floria"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	"golang.org/x/exp/maps"
)

// ----------------------------------------------------------------------------
// Memory
// ----------------------------------------------------------------------------

// Memory is a map-backed world state. An account exists if and only if it is
// present in the map. It is used as the base snapshot of transaction
// executions and to describe pre/post states in tests.
type Memory map[floria.Address]Account

// NewMemory creates an empty world state.
func NewMemory() Memory {
	return Memory{}
}

func (m Memory) AccountExists(addr floria.Address) bool {
	_, found := m[addr]
	return found
}

func (m Memory) GetBalance(addr floria.Address) floria.Value {
	return m[addr].Balance
}

func (m Memory) SetBalance(addr floria.Address, value floria.Value) {
	account := m[addr]
	account.Balance = value
	m[addr] = account
}

func (m Memory) GetNonce(addr floria.Address) uint64 {
	return m[addr].Nonce
}

func (m Memory) SetNonce(addr floria.Address, nonce uint64) {
	account := m[addr]
	account.Nonce = nonce
	m[addr] = account
}

func (m Memory) GetCode(addr floria.Address) floria.Code {
	return bytes.Clone(m[addr].Code)
}

// GetCodeHash returns the hash of the account's code, or the zero hash for
// accounts that do not exist.
func (m Memory) GetCodeHash(addr floria.Address) floria.Hash {
	account, found := m[addr]
	if !found {
		return floria.Hash{}
	}
	return floria.HashCode(account.Code)
}

func (m Memory) SetCode(addr floria.Address, code floria.Code) {
	account := m[addr]
	account.Code = bytes.Clone(code)
	m[addr] = account
}

func (m Memory) GetStorage(addr floria.Address, key floria.Key) floria.Word {
	return m[addr].Storage[key]
}

// SetStorage updates a storage slot. Zero words are removed from the storage.
func (m Memory) SetStorage(addr floria.Address, key floria.Key, value floria.Word) {
	account := m[addr]
	if value == (floria.Word{}) {
		delete(account.Storage, key)
		m[addr] = account
		return
	}
	if account.Storage == nil {
		account.Storage = Storage{}
	}
	account.Storage[key] = value
	m[addr] = account
}

func (m Memory) DeleteAccount(addr floria.Address) {
	delete(m, addr)
}

// Storage returns a copy of the non-zero storage slots of the given account.
func (m Memory) Storage(addr floria.Address) map[floria.Key]floria.Word {
	return maps.Clone(m[addr].Storage)
}

// Accounts lists the addresses of all existing accounts in ascending order.
func (m Memory) Accounts() []floria.Address {
	res := make([]floria.Address, 0, len(m))
	for addr := range m {
		res = append(res, addr)
	}
	slices.SortFunc(res, compareAddresses)
	return res
}

// Equal compares the content of two states. Empty accounts are considered
// equal to missing accounts.
func (m Memory) Equal(other Memory) bool {
	return len(m.Diff(other)) == 0
}

func (m Memory) Clone() Memory {
	if m == nil {
		return nil
	}
	res := make(Memory, len(m))
	for k, v := range m {
		res[k] = v.Clone()
	}
	return res
}

// Diff lists human readable differences between two states, ordered by
// address. Missing accounts and storage slots are treated as zero.
func (m Memory) Diff(other Memory) []string {
	var res []string
	for _, addr := range unionOfKeys(m, other, compareAddresses) {
		a, b := m[addr], other[addr]
		res = append(res, a.diff(addr.String(), &b)...)
	}
	return res
}

// ----------------------------------------------------------------------------
// Account
// ----------------------------------------------------------------------------

// Account is a single entry of a Memory world state.
type Account struct {
	Balance floria.Value
	Nonce   uint64
	Code    floria.Code
	Storage Storage
}

func (a *Account) Equal(other *Account) bool {
	return len(a.diff("", other)) == 0
}

func (a *Account) Clone() Account {
	return Account{
		Balance: a.Balance,
		Nonce:   a.Nonce,
		Code:    bytes.Clone(a.Code),
		Storage: maps.Clone(a.Storage),
	}
}

func (a *Account) diff(prefix string, other *Account) []string {
	var res []string
	report := func(field string, want, got any) {
		res = append(res, fmt.Sprintf("%s/%s: %v != %v", prefix, field, want, got))
	}
	if a.Balance != other.Balance {
		report("balance", a.Balance, other.Balance)
	}
	if a.Nonce != other.Nonce {
		report("nonce", a.Nonce, other.Nonce)
	}
	if !bytes.Equal(a.Code, other.Code) {
		report("code", hexutil.Bytes(a.Code), hexutil.Bytes(other.Code))
	}
	for _, key := range unionOfKeys(a.Storage, other.Storage, compareKeys) {
		if x, y := a.Storage[key], other.Storage[key]; x != y {
			report("storage/"+shortHex(key), shortHex(x), shortHex(y))
		}
	}
	return res
}

// Storage is the storage of an account. Zero-valued entries are equivalent
// to missing entries.
type Storage map[floria.Key]floria.Word

// unionOfKeys lists the keys present in any of the two maps in ascending
// byte order.
func unionOfKeys[K comparable, V any](a, b map[K]V, compare func(K, K) int) []K {
	res := maps.Keys(a)
	for k := range b {
		if _, found := a[k]; !found {
			res = append(res, k)
		}
	}
	slices.SortFunc(res, compare)
	return res
}

func compareAddresses(a, b floria.Address) int {
	return bytes.Compare(a[:], b[:])
}

func compareKeys(a, b floria.Key) int {
	return bytes.Compare(a[:], b[:])
}

// shortHex prints a 32 byte value as a number without leading zeros.
func shortHex[T ~[32]byte](value T) string {
	return new(uint256.Int).SetBytes32(value[:]).Hex()
}
