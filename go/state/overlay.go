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
	"slices"

	"github.com/Fantom-foundation/Floria/go/floria"
)

// Overlay is a copy-on-write layer on top of another world state. Reads fall
// through to the parent unless the overlay has recorded a write for the
// requested field; writes are recorded in the overlay only. Commit replays
// the recorded writes on the parent while Discard drops them. Overlays can be
// stacked to model nested calls.
//
// After Commit or Discard the overlay is empty and may be used again.
type Overlay struct {
	parent   floria.WorldState
	accounts map[floria.Address]*overlayAccount
}

type overlayAccount struct {
	deleted bool // the parent's account is removed before applying writes
	written bool // some field was written since the last deletion
	balance *floria.Value
	nonce   *uint64
	code    floria.Code
	codeSet bool
	storage map[floria.Key]floria.Word
}

// NewOverlay creates an empty overlay on top of the given parent.
func NewOverlay(parent floria.WorldState) *Overlay {
	return &Overlay{
		parent:   parent,
		accounts: map[floria.Address]*overlayAccount{},
	}
}

// Parent returns the state this overlay is layered on.
func (o *Overlay) Parent() floria.WorldState {
	return o.parent
}

func (o *Overlay) get(addr floria.Address) *overlayAccount {
	account, found := o.accounts[addr]
	if !found {
		account = &overlayAccount{}
		o.accounts[addr] = account
	}
	return account
}

func (o *Overlay) AccountExists(addr floria.Address) bool {
	account, found := o.accounts[addr]
	if !found {
		return o.parent.AccountExists(addr)
	}
	if account.written {
		return true
	}
	return !account.deleted && o.parent.AccountExists(addr)
}

func (o *Overlay) GetBalance(addr floria.Address) floria.Value {
	account, found := o.accounts[addr]
	if found && account.balance != nil {
		return *account.balance
	}
	if found && account.deleted {
		return floria.Value{}
	}
	return o.parent.GetBalance(addr)
}

func (o *Overlay) SetBalance(addr floria.Address, value floria.Value) {
	account := o.get(addr)
	account.balance = &value
	account.written = true
}

func (o *Overlay) GetNonce(addr floria.Address) uint64 {
	account, found := o.accounts[addr]
	if found && account.nonce != nil {
		return *account.nonce
	}
	if found && account.deleted {
		return 0
	}
	return o.parent.GetNonce(addr)
}

func (o *Overlay) SetNonce(addr floria.Address, nonce uint64) {
	account := o.get(addr)
	account.nonce = &nonce
	account.written = true
}

func (o *Overlay) GetCode(addr floria.Address) floria.Code {
	account, found := o.accounts[addr]
	if found && account.codeSet {
		return bytes.Clone(account.code)
	}
	if found && account.deleted {
		return nil
	}
	return o.parent.GetCode(addr)
}

func (o *Overlay) GetCodeHash(addr floria.Address) floria.Hash {
	if !o.AccountExists(addr) {
		return floria.Hash{}
	}
	account, found := o.accounts[addr]
	if found && (account.codeSet || account.deleted) {
		return floria.HashCode(account.code)
	}
	if !o.parent.AccountExists(addr) {
		return floria.EmptyCodeHash
	}
	return o.parent.GetCodeHash(addr)
}

func (o *Overlay) SetCode(addr floria.Address, code floria.Code) {
	account := o.get(addr)
	account.code = bytes.Clone(code)
	account.codeSet = true
	account.written = true
}

func (o *Overlay) GetStorage(addr floria.Address, key floria.Key) floria.Word {
	account, found := o.accounts[addr]
	if found {
		if value, set := account.storage[key]; set {
			return value
		}
		if account.deleted {
			return floria.Word{}
		}
	}
	return o.parent.GetStorage(addr, key)
}

func (o *Overlay) SetStorage(addr floria.Address, key floria.Key, value floria.Word) {
	account := o.get(addr)
	if account.storage == nil {
		account.storage = map[floria.Key]floria.Word{}
	}
	account.storage[key] = value
	account.written = true
}

// DeleteAccount drops all writes recorded for the account and hides the
// parent's version of it.
func (o *Overlay) DeleteAccount(addr floria.Address) {
	o.accounts[addr] = &overlayAccount{deleted: true}
}

// Commit applies all recorded modifications to the parent and resets the
// overlay. Accounts are processed in address order, deletions first.
func (o *Overlay) Commit() {
	addresses := make([]floria.Address, 0, len(o.accounts))
	for addr := range o.accounts {
		addresses = append(addresses, addr)
	}
	slices.SortFunc(addresses, compareAddresses)

	for _, addr := range addresses {
		account := o.accounts[addr]
		if account.deleted {
			o.parent.DeleteAccount(addr)
		}
		if account.balance != nil {
			o.parent.SetBalance(addr, *account.balance)
		}
		if account.nonce != nil {
			o.parent.SetNonce(addr, *account.nonce)
		}
		if account.codeSet {
			o.parent.SetCode(addr, account.code)
		}
		keys := make([]floria.Key, 0, len(account.storage))
		for key := range account.storage {
			keys = append(keys, key)
		}
		slices.SortFunc(keys, compareKeys)
		for _, key := range keys {
			o.parent.SetStorage(addr, key, account.storage[key])
		}
	}
	o.Discard()
}

// Discard drops all recorded modifications.
func (o *Overlay) Discard() {
	o.accounts = map[floria.Address]*overlayAccount{}
}
