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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Fantom-foundation/Floria/go/floria"
	"github.com/Fantom-foundation/Floria/go/state"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/urfave/cli/v2"
)

// world is the world state a command operates on together with its origin.
type world struct {
	state.Memory
	store *state.Store
}

// openWorld loads the world state from the JSON file or the LevelDB given
// on the command line.
func openWorld(ctx *cli.Context) (*world, error) {
	file, db := StateFlag.Fetch(ctx), DbFlag.Fetch(ctx)
	switch {
	case file != "" && db != "":
		return nil, fmt.Errorf("only one of --%s and --%s may be given", StateFlag.Name, DbFlag.Name)
	case file != "":
		memory, err := state.LoadJSON(file)
		if err != nil {
			return nil, err
		}
		return &world{Memory: memory}, nil
	case db != "":
		store, err := state.OpenStore(db)
		if err != nil {
			return nil, err
		}
		memory, err := store.Load()
		if err != nil {
			return nil, errors.Join(err, store.Close())
		}
		return &world{Memory: memory, store: store}, nil
	default:
		return &world{Memory: state.NewMemory()}, nil
	}
}

// persist stores the world state in its database, if any, and writes it to
// the output file, if requested.
func (w *world) persist(ctx *cli.Context) error {
	if w.store != nil {
		if err := w.store.Save(w.Memory); err != nil {
			return err
		}
	}
	if out := OutFlag.Fetch(ctx); out != "" {
		return state.SaveJSON(out, w.Memory)
	}
	return nil
}

func (w *world) Close() error {
	if w.store == nil {
		return nil
	}
	return w.store.Close()
}

// jsonTransaction is the file format of unsigned transactions.
type jsonTransaction struct {
	From     floria.Address  `json:"from"`
	To       *floria.Address `json:"to,omitempty"`
	Nonce    hexutil.Uint64  `json:"nonce"`
	Input    hexutil.Bytes   `json:"input,omitempty"`
	Value    floria.Value    `json:"value"`
	Gas      hexutil.Uint64  `json:"gas"`
	GasPrice floria.Value    `json:"gasPrice"`
}

func loadTransaction(path string) (floria.Transaction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return floria.Transaction{}, err
	}
	var tx jsonTransaction
	if err := json.Unmarshal(data, &tx); err != nil {
		return floria.Transaction{}, fmt.Errorf("invalid transaction file %s: %w", path, err)
	}
	return floria.Transaction{
		Sender:    tx.From,
		Recipient: tx.To,
		Nonce:     uint64(tx.Nonce),
		Input:     floria.Data(tx.Input),
		Value:     tx.Value,
		GasLimit:  floria.Gas(tx.Gas),
		GasPrice:  tx.GasPrice,
	}, nil
}

type jsonLog struct {
	Address floria.Address `json:"address"`
	Topics  []floria.Hash  `json:"topics"`
	Data    hexutil.Bytes  `json:"data"`
}

type jsonReceipt struct {
	Success         bool            `json:"success"`
	GasUsed         hexutil.Uint64  `json:"gasUsed"`
	ContractAddress *floria.Address `json:"contractAddress,omitempty"`
	Output          hexutil.Bytes   `json:"output"`
	Logs            []jsonLog       `json:"logs"`
}

func toJSONReceipt(receipt floria.Receipt) jsonReceipt {
	logs := make([]jsonLog, 0, len(receipt.Logs))
	for _, l := range receipt.Logs {
		logs = append(logs, jsonLog{Address: l.Address, Topics: l.Topics, Data: hexutil.Bytes(l.Data)})
	}
	return jsonReceipt{
		Success:         receipt.Success,
		GasUsed:         hexutil.Uint64(receipt.GasUsed),
		ContractAddress: receipt.ContractAddress,
		Output:          hexutil.Bytes(receipt.Output),
		Logs:            logs,
	}
}

func writeJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
