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
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Fantom-foundation/Floria/go/floria"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// jsonAccount is the file representation of an account:
//
//	{"0x…": {"balance": "0x…", "nonce": 1, "code": "0x…", "storage": {"0x…": "0x…"}}}
type jsonAccount struct {
	Balance floria.Value               `json:"balance"`
	Nonce   uint64                     `json:"nonce"`
	Code    hexutil.Bytes              `json:"code,omitempty"`
	Storage map[floria.Key]floria.Word `json:"storage,omitempty"`
}

// ReadJSON parses a world state from its JSON representation.
func ReadJSON(r io.Reader) (Memory, error) {
	var accounts map[floria.Address]jsonAccount
	if err := json.NewDecoder(r).Decode(&accounts); err != nil {
		return nil, fmt.Errorf("failed to decode world state: %w", err)
	}
	res := make(Memory, len(accounts))
	for addr, account := range accounts {
		storage := Storage{}
		for key, value := range account.Storage {
			if value != (floria.Word{}) {
				storage[key] = value
			}
		}
		res[addr] = Account{
			Balance: account.Balance,
			Nonce:   account.Nonce,
			Code:    floria.Code(account.Code),
			Storage: storage,
		}
	}
	return res, nil
}

// WriteJSON writes the world state as indented JSON. Accounts and storage
// keys are sorted by the encoder.
func WriteJSON(w io.Writer, state Memory) error {
	accounts := make(map[floria.Address]jsonAccount, len(state))
	for addr, account := range state {
		accounts[addr] = jsonAccount{
			Balance: account.Balance,
			Nonce:   account.Nonce,
			Code:    hexutil.Bytes(account.Code),
			Storage: account.Storage,
		}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(accounts); err != nil {
		return fmt.Errorf("failed to encode world state: %w", err)
	}
	return nil
}

// LoadJSON reads a world state from the given file.
func LoadJSON(path string) (Memory, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadJSON(file)
}

// SaveJSON writes the world state to the given file, replacing its content.
func SaveJSON(path string, state Memory) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
	}()
	return WriteJSON(file, state)
}
