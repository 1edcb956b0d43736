// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package processor executes the transactions of a block one after another
// using an Executive per transaction. It registers itself as the "floria"
// processor implementation.
package processor

import (
	"errors"
	"fmt"
	"time"

	"github.com/Fantom-foundation/Floria/go/executive"
	"github.com/Fantom-foundation/Floria/go/floria"
	"github.com/Fantom-foundation/Floria/go/state"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
)

func init() {
	err := floria.RegisterProcessorFactory("floria", func(interpreter floria.Interpreter) floria.Processor {
		return New(interpreter)
	})
	if err != nil {
		panic(fmt.Sprintf("failed to register processor: %v", err))
	}
}

var (
	blockCounter    = metrics.NewRegisteredCounter("floria/processor/blocks", nil)
	txCounter       = metrics.NewRegisteredCounter("floria/processor/transactions", nil)
	rejectedCounter = metrics.NewRegisteredCounter("floria/processor/rejected", nil)
	blockTimer      = metrics.NewRegisteredTimer("floria/processor/block", nil)
)

type Option func(*Processor)

// WithExecutiveOptions forwards the given options to every Executive
// created by the processor.
func WithExecutiveOptions(options ...executive.Option) Option {
	return func(p *Processor) {
		p.options = append(p.options, options...)
	}
}

func WithLogger(logger log.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

// WithSigner sets the signer used to recover the senders of raw
// transactions.
func WithSigner(signer types.Signer) Option {
	return func(p *Processor) {
		p.signer = signer
	}
}

// Processor runs blocks of transactions on a world state.
type Processor struct {
	interpreter floria.Interpreter
	options     []executive.Option
	signer      types.Signer
	logger      log.Logger
}

func New(interpreter floria.Interpreter, options ...Option) *Processor {
	p := &Processor{
		interpreter: interpreter,
		signer:      types.HomesteadSigner{},
		logger:      log.Root(),
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// entry is a transaction at its position in the block. Transactions that
// could not be decoded carry the decoding error instead.
type entry struct {
	index int
	tx    floria.Transaction
	err   error
}

// Run executes the given transactions in order. Transactions failing
// admission are skipped and reported in the result. If an internal error
// occurs, no modification is applied to the world state.
func (p *Processor) Run(
	block floria.BlockParameters,
	transactions []floria.Transaction,
	world floria.WorldState,
) (floria.BlockResult, error) {
	entries := make([]entry, len(transactions))
	for i, tx := range transactions {
		entries[i] = entry{index: i, tx: tx}
	}
	return p.run(block, entries, world)
}

// RunRaw is like Run for RLP encoded, signed transactions. Transactions
// which can not be decoded are rejected.
func (p *Processor) RunRaw(
	block floria.BlockParameters,
	transactions [][]byte,
	world floria.WorldState,
) (floria.BlockResult, error) {
	entries := make([]entry, len(transactions))
	for i, raw := range transactions {
		tx, err := executive.DecodeTransaction(raw, p.signer)
		entries[i] = entry{index: i, tx: tx, err: err}
	}
	return p.run(block, entries, world)
}

func (p *Processor) run(
	block floria.BlockParameters,
	entries []entry,
	world floria.WorldState,
) (floria.BlockResult, error) {
	start := time.Now()
	blockState := state.NewOverlay(world)
	result := floria.BlockResult{}

	options := append([]executive.Option{
		executive.WithLogger(p.logger),
		executive.WithSigner(p.signer),
	}, p.options...)

	for _, entry := range entries {
		if entry.err != nil {
			p.reject(&result, entry.index, entry.err)
			continue
		}

		txState := state.NewOverlay(blockState)
		exec := executive.New(txState, block, result.GasUsed, p.interpreter, options...)
		receipt, err := execute(exec, entry.tx)
		if errors.Is(err, executive.ErrInternal) {
			blockState.Discard()
			return floria.BlockResult{}, fmt.Errorf("failed to process transaction %d: %w", entry.index, err)
		}
		if err != nil {
			p.reject(&result, entry.index, err)
			continue
		}

		txState.Commit()
		txCounter.Inc(1)
		result.Receipts = append(result.Receipts, receipt)
		result.GasUsed += receipt.GasUsed
	}

	blockState.Commit()
	blockCounter.Inc(1)
	blockTimer.UpdateSince(start)
	p.logger.Debug("Block processed",
		"number", block.Number,
		"transactions", len(result.Receipts),
		"rejected", len(result.Rejected),
		"gasUsed", result.GasUsed,
		"elapsed", time.Since(start),
	)
	return result, nil
}

func (p *Processor) reject(result *floria.BlockResult, index int, err error) {
	p.logger.Debug("Transaction rejected", "index", index, "err", err)
	rejectedCounter.Inc(1)
	result.Rejected = append(result.Rejected, floria.Rejection{Index: index, Err: err})
}

// execute runs a single transaction to its end. Errors of the admission are
// returned as they are, all other errors are internal.
func execute(exec *executive.Executive, tx floria.Transaction) (floria.Receipt, error) {
	finished, err := exec.SetupTransaction(tx)
	if err != nil {
		return floria.Receipt{}, err
	}
	for !finished {
		if finished, err = exec.Go(); err != nil {
			return floria.Receipt{}, asInternal(err)
		}
	}
	receipt, err := exec.Finalize()
	if err != nil {
		return floria.Receipt{}, asInternal(err)
	}
	return receipt, nil
}

func asInternal(err error) error {
	if errors.Is(err, executive.ErrInternal) {
		return err
	}
	return &executive.InternalError{Err: err}
}
