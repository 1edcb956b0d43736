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
	"fmt"
	"time"

	"github.com/Fantom-foundation/Floria/go/executive"
	"github.com/Fantom-foundation/Floria/go/floria"
	"github.com/dsnet/golib/unitconv"
	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	_ "github.com/Fantom-foundation/Floria/go/interpreter/stepvm"
)

var RunCmd = cli.Command{
	Action: doRun,
	Name:   "run",
	Usage:  "Execute a single transaction and print its receipt",
	Flags: append([]cli.Flag{
		TxFlag,
		RawFlag,
	}, executionFlags...),
}

func doRun(ctx *cli.Context) error {
	file, hasRaw := TxFlag.Fetch(ctx), ctx.IsSet(RawFlag.Name)
	if (file == "") == !hasRaw {
		return fmt.Errorf("exactly one of --%s and --%s must be given", TxFlag.Name, RawFlag.Name)
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

	world, err := openWorld(ctx)
	if err != nil {
		return err
	}
	defer world.Close()

	start := time.Now()
	exec := executive.New(world, block, 0, interpreter, cfg.executiveOptions(TraceFlag.Fetch(ctx))...)
	var finished bool
	if hasRaw {
		var raw []byte
		if raw, err = RawFlag.Fetch(ctx); err != nil {
			return err
		}
		finished, err = exec.Setup(raw)
	} else {
		var tx floria.Transaction
		if tx, err = loadTransaction(file); err != nil {
			return err
		}
		finished, err = exec.SetupTransaction(tx)
	}
	if err != nil {
		return fmt.Errorf("transaction rejected: %w", err)
	}
	for !finished {
		if finished, err = exec.Go(); err != nil {
			return err
		}
	}
	receipt, err := exec.Finalize()
	if err != nil {
		return err
	}
	logSummary("Transaction executed", receipt.GasUsed, time.Since(start))

	if err := writeJSON(ctx.App.Writer, toJSONReceipt(receipt)); err != nil {
		return err
	}
	return world.persist(ctx)
}

func logSummary(msg string, gas floria.Gas, elapsed time.Duration) {
	rate := 0.0
	if elapsed > 0 {
		rate = float64(gas) / elapsed.Seconds()
	}
	log.Info(msg,
		"gasUsed", gas,
		"elapsed", elapsed,
		"throughput", unitconv.FormatPrefix(rate, unitconv.SI, 0)+"gas/s",
	)
}
