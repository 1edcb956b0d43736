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
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Fantom-foundation/Floria/go/processor"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
)

var BlockCmd = cli.Command{
	Action: doBlock,
	Name:   "block",
	Usage:  "Execute a list of raw transactions as a block",
	Flags: append([]cli.Flag{
		TxsFlag,
	}, executionFlags...),
}

type jsonRejection struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

type jsonBlockResult struct {
	Receipts []jsonReceipt   `json:"receipts"`
	Rejected []jsonRejection `json:"rejected"`
	GasUsed  hexutil.Uint64  `json:"gasUsed"`
}

func doBlock(ctx *cli.Context) error {
	file := TxsFlag.Fetch(ctx)
	if file == "" {
		return fmt.Errorf("missing --%s", TxsFlag.Name)
	}
	if TraceFlag.Fetch(ctx) {
		enableTracing(ctx)
	}

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	block := cfg.block()
	interpreter, err := cfg.interpreter()
	if err != nil {
		return err
	}
	transactions, err := readRawTransactions(file)
	if err != nil {
		return err
	}

	world, err := openWorld(ctx)
	if err != nil {
		return err
	}
	defer world.Close()

	start := time.Now()
	p := processor.New(interpreter,
		processor.WithSigner(cfg.signer()),
		processor.WithLogger(log.Root()),
		processor.WithExecutiveOptions(cfg.executiveOptions(TraceFlag.Fetch(ctx))...),
	)
	result, err := p.RunRaw(block, transactions, world)
	if err != nil {
		return err
	}
	logSummary("Block executed", result.GasUsed, time.Since(start))

	out := jsonBlockResult{
		Receipts: make([]jsonReceipt, 0, len(result.Receipts)),
		Rejected: make([]jsonRejection, 0, len(result.Rejected)),
		GasUsed:  hexutil.Uint64(result.GasUsed),
	}
	for _, receipt := range result.Receipts {
		out.Receipts = append(out.Receipts, toJSONReceipt(receipt))
	}
	for _, rejection := range result.Rejected {
		out.Rejected = append(out.Rejected, jsonRejection{Index: rejection.Index, Error: rejection.Err.Error()})
	}
	if err := writeJSON(ctx.App.Writer, out); err != nil {
		return err
	}
	return world.persist(ctx)
}

// readRawTransactions reads hex encoded transactions, one per line. Empty
// lines and lines starting with # are ignored.
func readRawTransactions(path string) ([][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var transactions [][]byte
	scanner := bufio.NewScanner(f)
	scanner.Buffer(nil, 1<<24)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		raw, err := hexutil.Decode(text)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: invalid transaction: %w", path, line, err)
		}
		transactions = append(transactions, raw)
	}
	return transactions, scanner.Err()
}
