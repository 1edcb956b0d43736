// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Fantom-foundation/Floria/go/executive"
	"github.com/Fantom-foundation/Floria/go/floria"
	"github.com/Fantom-foundation/Floria/go/state"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	geth "github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	sender   = floria.Address{0x01}
	receiver = floria.Address{0x02}
	contract = floria.Address{0xcc}
)

func runApp(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &errOut
	err := app.Run(append([]string{"floria"}, args...))
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func saveWorld(t *testing.T, dir string, world state.Memory) string {
	t.Helper()
	path := filepath.Join(dir, "world.json")
	if err := state.SaveJSON(path, world); err != nil {
		t.Fatalf("failed to save world state: %v", err)
	}
	return path
}

func transferFile(t *testing.T, dir string, nonce uint64, gas uint64) string {
	t.Helper()
	to := receiver
	data, err := json.Marshal(jsonTransaction{
		From:     sender,
		To:       &to,
		Nonce:    hexutil.Uint64(nonce),
		Value:    floria.NewValue(10),
		Gas:      hexutil.Uint64(gas),
		GasPrice: floria.NewValue(1),
	})
	if err != nil {
		t.Fatalf("failed to encode transaction: %v", err)
	}
	return writeFile(t, dir, "tx.json", string(data))
}

func signedTransfer(t *testing.T, nonce uint64) (floria.Address, string) {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	to := common.Address(receiver)
	tx, err := types.SignTx(types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    big.NewInt(10),
		Gas:      21_000,
		GasPrice: big.NewInt(1),
	}), types.HomesteadSigner{}, key)
	if err != nil {
		t.Fatalf("failed to sign transaction: %v", err)
	}
	raw, err := tx.MarshalBinary()
	if err != nil {
		t.Fatalf("failed to encode transaction: %v", err)
	}
	return floria.Address(crypto.PubkeyToAddress(key.PublicKey)), hexutil.Encode(raw)
}

func TestAddress_PrintsContractAddress(t *testing.T) {
	out, _, err := runApp(t, "address", "--sender", "0x970e8128ab834e8eac17ab8e3812f010678cf791", "--nonce", "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want, got := "0x8bda78331c916a08481428e4b07c96d3e916d165\n", out; want != got {
		t.Errorf("unexpected output, wanted %q, got %q", want, got)
	}
}

func TestAddress_InvalidSenderIsReported(t *testing.T) {
	if _, _, err := runApp(t, "address", "--sender", "0x1234"); err == nil {
		t.Errorf("expected an error for a short address")
	}
}

func TestRun_TransactionFileIsExecuted(t *testing.T) {
	dir := t.TempDir()
	world := saveWorld(t, dir, state.Memory{sender: {Balance: floria.NewValue(100_000)}})
	out := filepath.Join(dir, "post.json")

	stdout, _, err := runApp(t, "run", "--state", world, "--tx", transferFile(t, dir, 0, 21_000), "--out", out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var receipt jsonReceipt
	if err := json.Unmarshal([]byte(stdout), &receipt); err != nil {
		t.Fatalf("failed to parse receipt %q: %v", stdout, err)
	}
	if !receipt.Success || receipt.GasUsed != 21_000 || receipt.ContractAddress != nil {
		t.Errorf("unexpected receipt: %+v", receipt)
	}

	post, err := state.LoadJSON(out)
	if err != nil {
		t.Fatalf("failed to load post state: %v", err)
	}
	if want, got := floria.NewValue(10), post.GetBalance(receiver); want != got {
		t.Errorf("unexpected receiver balance, wanted %v, got %v", want, got)
	}
	if want, got := floria.NewValue(100_000-10-21_000), post.GetBalance(sender); want != got {
		t.Errorf("unexpected sender balance, wanted %v, got %v", want, got)
	}
	if want, got := floria.NewValue(21_000), post.GetBalance(floria.Address{}); want != got {
		t.Errorf("unexpected coinbase balance, wanted %v, got %v", want, got)
	}
}

func TestRun_InvalidInvocationsAreReported(t *testing.T) {
	dir := t.TempDir()
	world := saveWorld(t, dir, state.Memory{sender: {Balance: floria.NewValue(100_000)}})
	tx := transferFile(t, dir, 0, 21_000)

	tests := map[string][]string{
		"no transaction":   {"run", "--state", world},
		"two transactions": {"run", "--state", world, "--tx", tx, "--raw", "0x01"},
		"two states":       {"run", "--state", world, "--db", dir, "--tx", tx},
		"bad raw":          {"run", "--raw", "xyz"},
		"bad revision":     {"run", "--state", world, "--tx", tx, "--revision", "Unknown"},
		"bad interpreter":  {"run", "--state", world, "--tx", tx, "--interpreter", "unknown"},
		"bad coinbase":     {"run", "--state", world, "--tx", tx, "--coinbase", "0x12"},
		"missing state":    {"run", "--state", filepath.Join(dir, "missing.json"), "--tx", tx},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			if _, _, err := runApp(t, args...); err == nil {
				t.Errorf("expected an error")
			}
		})
	}
}

func TestRun_RejectedTransactionsAreReported(t *testing.T) {
	dir := t.TempDir()
	world := saveWorld(t, dir, state.Memory{sender: {Balance: floria.NewValue(100_000)}})

	_, _, err := runApp(t, "run", "--state", world, "--tx", transferFile(t, dir, 5, 21_000))
	if !errors.Is(err, executive.ErrInvalidNonce) {
		t.Errorf("expected invalid nonce error, got %v", err)
	}
}

func TestRun_RawTransactionIsExecuted(t *testing.T) {
	dir := t.TempDir()
	from, raw := signedTransfer(t, 0)
	world := saveWorld(t, dir, state.Memory{from: {Balance: floria.NewValue(100_000)}})
	out := filepath.Join(dir, "post.json")

	if _, _, err := runApp(t, "run", "--state", world, "--raw", raw, "--out", out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	post, err := state.LoadJSON(out)
	if err != nil {
		t.Fatalf("failed to load post state: %v", err)
	}
	if want, got := uint64(1), post.GetNonce(from); want != got {
		t.Errorf("unexpected nonce, wanted %d, got %d", want, got)
	}
}

func TestRun_ConfigFileAndFlagsAreApplied(t *testing.T) {
	dir := t.TempDir()
	world := saveWorld(t, dir, state.Memory{sender: {Balance: floria.NewValue(100_000)}})
	tx := transferFile(t, dir, 0, 30_000)
	config := writeFile(t, dir, "config.toml", strings.Join([]string{
		`Revision = "Frontier"`,
		`Coinbase = "0x00000000000000000000000000000000000000c0"`,
		`BlockGasLimit = 25000`,
	}, "\n"))

	_, _, err := runApp(t, "--config", config, "run", "--state", world, "--tx", tx)
	if !errors.Is(err, executive.ErrBlockGasLimitReached) {
		t.Errorf("expected block gas limit error, got %v", err)
	}

	out := filepath.Join(dir, "post.json")
	_, _, err = runApp(t, "--config", config, "run", "--state", world, "--tx", tx, "--block-gas-limit", "100000", "--out", out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	post, err := state.LoadJSON(out)
	if err != nil {
		t.Fatalf("failed to load post state: %v", err)
	}
	if want, got := floria.NewValue(21_000), post.GetBalance(floria.Address{19: 0xc0}); want != got {
		t.Errorf("unexpected coinbase balance, wanted %v, got %v", want, got)
	}
}

func TestRun_UnknownConfigFieldsAreReported(t *testing.T) {
	dir := t.TempDir()
	config := writeFile(t, dir, "config.toml", `Unknown = 1`)
	if _, _, err := runApp(t, "--config", config, "run", "--tx", transferFile(t, dir, 0, 21_000)); err == nil {
		t.Errorf("expected an error for an unknown field")
	}
}

func TestRun_TraceLogsExecutedInstructions(t *testing.T) {
	dir := t.TempDir()
	world := saveWorld(t, dir, state.Memory{
		sender:   {Balance: floria.NewValue(100_000)},
		contract: {Code: floria.Code{byte(geth.PUSH1), 1, byte(geth.STOP)}},
	})
	to := contract
	data, err := json.Marshal(jsonTransaction{
		From:     sender,
		To:       &to,
		Gas:      30_000,
		GasPrice: floria.NewValue(1),
	})
	if err != nil {
		t.Fatalf("failed to encode transaction: %v", err)
	}
	tx := writeFile(t, dir, "tx.json", string(data))

	_, logs, err := runApp(t, "run", "--state", world, "--tx", tx, "--trace", "--step-limit", "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want, got := 2, strings.Count(logs, "Step"); want != got {
		t.Errorf("unexpected number of traced steps, wanted %d, got %d:\n%s", want, got, logs)
	}
	if !strings.Contains(logs, "op=PUSH1") || !strings.Contains(logs, "op=STOP") {
		t.Errorf("missing instructions in trace:\n%s", logs)
	}
}

func TestBlock_ExecutesTransactionsOnDatabase(t *testing.T) {
	dir := t.TempDir()
	from, raw := signedTransfer(t, 0)
	db := filepath.Join(dir, "db")
	world := saveWorld(t, dir, state.Memory{from: {Balance: floria.NewValue(100_000)}})
	if _, _, err := runApp(t, "import", "--state", world, "--db", db); err != nil {
		t.Fatalf("failed to import world state: %v", err)
	}

	txs := writeFile(t, dir, "txs", strings.Join([]string{
		"# a block",
		"0x0102",
		"",
		raw,
	}, "\n"))
	stdout, _, err := runApp(t, "block", "--db", db, "--txs", txs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var result jsonBlockResult
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("failed to parse result %q: %v", stdout, err)
	}
	if len(result.Receipts) != 1 || !result.Receipts[0].Success || result.GasUsed != 21_000 {
		t.Errorf("unexpected result: %+v", result)
	}
	if len(result.Rejected) != 1 || result.Rejected[0].Index != 0 {
		t.Errorf("unexpected rejections: %+v", result.Rejected)
	}

	out := filepath.Join(dir, "dump.json")
	if _, _, err := runApp(t, "dump", "--db", db, "--out", out); err != nil {
		t.Fatalf("failed to dump database: %v", err)
	}
	post, err := state.LoadJSON(out)
	if err != nil {
		t.Fatalf("failed to load dumped state: %v", err)
	}
	if want, got := floria.NewValue(10), post.GetBalance(receiver); want != got {
		t.Errorf("unexpected receiver balance, wanted %v, got %v", want, got)
	}
	if want, got := uint64(1), post.GetNonce(from); want != got {
		t.Errorf("unexpected nonce, wanted %d, got %d", want, got)
	}
}

func TestBlock_InvalidTransactionListIsReported(t *testing.T) {
	dir := t.TempDir()
	txs := writeFile(t, dir, "txs", "not hex")
	if _, _, err := runApp(t, "block", "--txs", txs); err == nil {
		t.Errorf("expected an error")
	}
	if _, _, err := runApp(t, "block"); err == nil {
		t.Errorf("expected an error for a missing transaction list")
	}
}

func TestDump_RequiresDatabase(t *testing.T) {
	if _, _, err := runApp(t, "dump"); err == nil {
		t.Errorf("expected an error")
	}
	if _, _, err := runApp(t, "import", "--db", t.TempDir()); err == nil {
		t.Errorf("expected an error")
	}
}
