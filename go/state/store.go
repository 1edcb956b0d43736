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
	"fmt"

	"github.com/Fantom-foundation/Floria/go/floria"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

const (
	accountPrefix = 'a' // a<address> -> rlp(storedAccount)
	storagePrefix = 's' // s<address><key> -> word
)

// storedAccount is the RLP encoded record of an account in the store.
type storedAccount struct {
	Balance floria.Value
	Nonce   uint64
	Code    []byte
}

// Store is a LevelDB backed persistent world state snapshot. The snapshot
// is loaded into a Memory state for execution and written back as a whole.
type Store struct {
	db *leveldb.DB
}

// OpenStore opens or creates a store in the given directory. An empty path
// creates an in-memory store.
func OpenStore(path string) (*Store, error) {
	var db *leveldb.DB
	var err error
	if path == "" {
		db, err = leveldb.Open(storage.NewMemStorage(), nil)
	} else {
		db, err = leveldb.OpenFile(path, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open state store at %q: %w", path, err)
	}
	return NewStore(db), nil
}

// NewStore wraps an open database. Closing the store closes the database.
func NewStore(db *leveldb.DB) *Store {
	return &Store{db: db}
}

// Load reads the full snapshot.
func (s *Store) Load() (Memory, error) {
	res := Memory{}

	iter := s.db.NewIterator(util.BytesPrefix([]byte{accountPrefix}), nil)
	for iter.Next() {
		key := iter.Key()
		if len(key) != 1+len(floria.Address{}) {
			iter.Release()
			return nil, fmt.Errorf("invalid account key %x", key)
		}
		var addr floria.Address
		copy(addr[:], key[1:])
		var account storedAccount
		if err := rlp.DecodeBytes(iter.Value(), &account); err != nil {
			iter.Release()
			return nil, fmt.Errorf("failed to decode account %v: %w", addr, err)
		}
		res[addr] = Account{
			Balance: account.Balance,
			Nonce:   account.Nonce,
			Code:    floria.Code(account.Code),
		}
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return nil, err
	}

	iter = s.db.NewIterator(util.BytesPrefix([]byte{storagePrefix}), nil)
	defer iter.Release()
	for iter.Next() {
		key := iter.Key()
		value := iter.Value()
		if len(key) != 1+len(floria.Address{})+len(floria.Key{}) || len(value) != len(floria.Word{}) {
			return nil, fmt.Errorf("invalid storage entry %x", key)
		}
		var addr floria.Address
		var slot floria.Key
		var word floria.Word
		copy(addr[:], key[1:])
		copy(slot[:], key[1+len(addr):])
		copy(word[:], value)

		account, found := res[addr]
		if !found {
			return nil, fmt.Errorf("storage entry for missing account %v", addr)
		}
		if account.Storage == nil {
			account.Storage = Storage{}
		}
		account.Storage[slot] = word
		res[addr] = account
	}
	return res, iter.Error()
}

// Save replaces the stored snapshot by the given state in a single atomic
// write.
func (s *Store) Save(state Memory) error {
	batch := new(leveldb.Batch)

	iter := s.db.NewIterator(nil, nil)
	for iter.Next() {
		batch.Delete(append([]byte(nil), iter.Key()...))
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return err
	}

	for _, addr := range state.Accounts() {
		account := state[addr]
		data, err := rlp.EncodeToBytes(&storedAccount{
			Balance: account.Balance,
			Nonce:   account.Nonce,
			Code:    account.Code,
		})
		if err != nil {
			return fmt.Errorf("failed to encode account %v: %w", addr, err)
		}
		batch.Put(accountKey(addr), data)
		for slot, word := range account.Storage {
			if word != (floria.Word{}) {
				batch.Put(storageKey(addr, slot), word[:])
			}
		}
	}
	return s.db.Write(batch, nil)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func accountKey(addr floria.Address) []byte {
	return append([]byte{accountPrefix}, addr[:]...)
}

func storageKey(addr floria.Address, key floria.Key) []byte {
	res := make([]byte, 0, 1+len(addr)+len(key))
	res = append(res, storagePrefix)
	res = append(res, addr[:]...)
	return append(res, key[:]...)
}
