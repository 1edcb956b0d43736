// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package stepvm

import (
	"fmt"
	"maps"

	"github.com/Fantom-foundation/Floria/go/floria"
	geth "github.com/ethereum/go-ethereum/core/vm"
	"github.com/holiman/uint256"
)

type status byte

const (
	statusRunning status = iota
	statusStopped
	statusReturned
	statusSelfDestructed
	statusFailed
)

const errFrameFinished = floria.ConstError("execution of frame has already finished")

// frame is the machine state of a single interpreter run. Suspended runs
// hand it out as their continuation.
type frame struct {
	params    floria.Parameters
	ctx       floria.ExecutionContext
	code      floria.Code
	jumpDests jumpDests

	pc     uint64
	gas    floria.Gas
	stack  *stack
	memory *memory
	output floria.Data
	status status
	err    error

	steps        uint64
	storageDelta map[floria.Key]floria.Word
}

func newFrame(params floria.Parameters, jumpDests jumpDests) *frame {
	return &frame{
		params:    params,
		ctx:       params.Context,
		code:      params.Code,
		jumpDests: jumpDests,
		gas:       params.Gas,
		stack:     newStack(),
		memory:    &memory{},
	}
}

// Continue resumes the execution for at most stepLimit instructions. A limit
// <= 0 runs the frame to completion.
func (f *frame) Continue(stepLimit int) (floria.Result, error) {
	if f.status != statusRunning {
		return floria.Result{}, errFrameFinished
	}
	for executed := 0; stepLimit <= 0 || executed < stepLimit; executed++ {
		if err := f.step(); err != nil {
			return floria.Result{}, err
		}
		if f.status != statusRunning {
			return f.result(), nil
		}
	}
	return floria.Result{
		Status:       floria.Suspended,
		GasLeft:      f.gas,
		Continuation: f,
	}, nil
}

func (f *frame) result() floria.Result {
	if f.status == statusFailed {
		return floria.Result{
			Status:    floria.Excepted,
			Exception: f.err,
		}
	}
	return floria.Result{
		Status:  floria.Completed,
		Output:  f.output,
		GasLeft: f.gas,
	}
}

// step executes a single instruction. Execution exceptions end the frame in
// a failed state; all other errors are returned as they indicate defects.
func (f *frame) step() error {
	if f.pc >= uint64(len(f.code)) {
		f.status = statusStopped
		return nil
	}
	op := geth.OpCode(f.code[f.pc])
	if f.params.Observer != nil {
		f.params.Observer.OnStep(f.snapshot(op))
	}
	f.steps++

	err := f.execute(op)
	if err == nil {
		return nil
	}
	if floria.IsExecutionException(err) {
		f.status = statusFailed
		f.err = err
		f.gas = 0
		return nil
	}
	return fmt.Errorf("failed to execute %v at pc %d: %w", op, f.pc, err)
}

func (f *frame) execute(op geth.OpCode) error {
	operation := jumpTable[op]
	if operation == nil || f.params.Revision < operation.minRevision {
		return floria.ErrInvalidInstruction
	}
	if f.stack.len() < operation.pops {
		return floria.ErrStackUnderflow
	}
	if f.stack.len()-operation.pops+operation.pushes > maxStackSize {
		return floria.ErrStackOverflow
	}
	if err := f.useGas(operation.constantGas); err != nil {
		return err
	}
	pc := f.pc
	if err := operation.execute(f); err != nil {
		return err
	}
	if f.status == statusRunning && f.pc == pc {
		f.pc++
	}
	return nil
}

func (f *frame) useGas(gas floria.Gas) error {
	if gas < 0 || f.gas < gas {
		return floria.ErrOutOfGas
	}
	f.gas -= gas
	return nil
}

// snapshot captures the machine state before the given instruction.
func (f *frame) snapshot(op geth.OpCode) floria.StepSnapshot {
	stack := make([]floria.Word, f.stack.len())
	for i := range f.stack.data {
		stack[i] = f.stack.data[i].Bytes32()
	}
	return floria.StepSnapshot{
		Depth:        f.params.Depth,
		Recipient:    f.params.Recipient,
		Step:         f.steps,
		PC:           f.pc,
		Op:           op.String(),
		Gas:          f.gas,
		Stack:        stack,
		Memory:       f.memory.get(0, f.memory.length()),
		StorageDelta: maps.Clone(f.storageDelta),
	}
}

// toRegion converts a memory region given by stack words. Regions of size
// zero are always valid; other regions beyond the addressable memory run out
// of gas.
func toRegion(offset, size *uint256.Int) (uint64, uint64, error) {
	if size.IsZero() {
		return 0, 0, nil
	}
	if !offset.IsUint64() || !size.IsUint64() {
		return 0, 0, floria.ErrOutOfGas
	}
	o, s := offset.Uint64(), size.Uint64()
	if o+s < o || o+s > maxMemoryExpansionSize {
		return 0, 0, floria.ErrOutOfGas
	}
	return o, s, nil
}
