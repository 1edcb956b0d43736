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
	"path/filepath"
	"strings"
	"testing"

	"github.com/Fantom-foundation/Floria/go/floria"
)

func TestJSON_ReadParsesHexEncodedAccounts(t *testing.T) {
	input := `{
		"0x0100000000000000000000000000000000000000": {
			"balance": "0x64",
			"nonce": 3,
			"code": "0x6000",
			"storage": {"0x01": "0x02", "0x03": "0x00"}
		},
		"0x0200000000000000000000000000000000000000": {"balance": "0x0", "nonce": 0}
	}`
	state, err := ReadJSON(strings.NewReader(input))
	if err != nil {
		t.Fatalf("failed to read state: %v", err)
	}

	var key, word floria.Key
	key[31], word[31] = 1, 2
	want := Memory{
		{1}: Account{
			Balance: floria.NewValue(100),
			Nonce:   3,
			Code:    floria.Code{0x60, 0x00},
			Storage: Storage{key: floria.Word(word)},
		},
		{2}: Account{},
	}
	if !state.Equal(want) {
		t.Errorf("unexpected state: %v", state.Diff(want))
	}
	if !state.AccountExists(floria.Address{2}) {
		t.Errorf("empty account in file should exist")
	}
	if len(state[floria.Address{1}].Storage) != 1 {
		t.Errorf("zero storage values should be dropped")
	}
}

func TestJSON_InvalidInputIsRejected(t *testing.T) {
	tests := map[string]string{
		"not json":        "hello",
		"invalid address": `{"0x01": {"balance": "0x0"}}`,
		"invalid balance": `{"0x0100000000000000000000000000000000000000": {"balance": "12"}}`,
		"invalid code":    `{"0x0100000000000000000000000000000000000000": {"balance": "0x0", "code": "0xzz"}}`,
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ReadJSON(strings.NewReader(input)); err == nil {
				t.Errorf("expected an error")
			}
		})
	}
}

func TestJSON_WriteAndReadProduceSameState(t *testing.T) {
	state := Memory{
		{1}: Account{
			Balance: floria.NewValue(1, 2),
			Nonce:   3,
			Code:    floria.Code{4, 5},
			Storage: Storage{{6}: {7}},
		},
		{8}: Account{},
	}
	var buffer bytes.Buffer
	if err := WriteJSON(&buffer, state); err != nil {
		t.Fatalf("failed to write state: %v", err)
	}
	restored, err := ReadJSON(&buffer)
	if err != nil {
		t.Fatalf("failed to read state: %v", err)
	}
	if !state.Equal(restored) {
		t.Errorf("unexpected restored state: %v", state.Diff(restored))
	}
	if !restored.AccountExists(floria.Address{8}) {
		t.Errorf("empty account got lost")
	}
}

func TestJSON_SaveAndLoadFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	state := Memory{{1}: Account{Balance: floria.NewValue(42)}}
	if err := SaveJSON(path, state); err != nil {
		t.Fatalf("failed to save state: %v", err)
	}
	restored, err := LoadJSON(path)
	if err != nil {
		t.Fatalf("failed to load state: %v", err)
	}
	if !state.Equal(restored) {
		t.Errorf("unexpected restored state: %v", state.Diff(restored))
	}
	if _, err := LoadJSON(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Errorf("loading a missing file should fail")
	}
}
