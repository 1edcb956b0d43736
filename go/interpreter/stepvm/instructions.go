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
	"github.com/Fantom-foundation/Floria/go/floria"
	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"
)

func opStop(f *frame) error {
	f.status = statusStopped
	return nil
}

func opAdd(f *frame) error {
	a := f.stack.pop()
	b := f.stack.peek()
	b.Add(a, b)
	return nil
}

func opMul(f *frame) error {
	a := f.stack.pop()
	b := f.stack.peek()
	b.Mul(a, b)
	return nil
}

func opSub(f *frame) error {
	a := f.stack.pop()
	b := f.stack.peek()
	b.Sub(a, b)
	return nil
}

func opDiv(f *frame) error {
	a := f.stack.pop()
	b := f.stack.peek()
	b.Div(a, b)
	return nil
}

func opMod(f *frame) error {
	a := f.stack.pop()
	b := f.stack.peek()
	b.Mod(a, b)
	return nil
}

func setBool(trg *uint256.Int, value bool) {
	if value {
		trg.SetOne()
	} else {
		trg.Clear()
	}
}

func opLt(f *frame) error {
	a := f.stack.pop()
	b := f.stack.peek()
	setBool(b, a.Lt(b))
	return nil
}

func opGt(f *frame) error {
	a := f.stack.pop()
	b := f.stack.peek()
	setBool(b, a.Gt(b))
	return nil
}

func opEq(f *frame) error {
	a := f.stack.pop()
	b := f.stack.peek()
	setBool(b, a.Eq(b))
	return nil
}

func opIsZero(f *frame) error {
	a := f.stack.peek()
	setBool(a, a.IsZero())
	return nil
}

func opAnd(f *frame) error {
	a := f.stack.pop()
	b := f.stack.peek()
	b.And(a, b)
	return nil
}

func opOr(f *frame) error {
	a := f.stack.pop()
	b := f.stack.peek()
	b.Or(a, b)
	return nil
}

func opXor(f *frame) error {
	a := f.stack.pop()
	b := f.stack.peek()
	b.Xor(a, b)
	return nil
}

func opNot(f *frame) error {
	a := f.stack.peek()
	a.Not(a)
	return nil
}

func opSha3(f *frame) error {
	offsetArg := f.stack.pop()
	sizeArg := f.stack.peek()
	offset, size, err := toRegion(offsetArg, sizeArg)
	if err != nil {
		return err
	}
	if err := f.useGas(wordCost(gasSha3Word, size)); err != nil {
		return err
	}
	if err := f.memory.expand(offset, size, f); err != nil {
		return err
	}
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write(f.memory.store[offset : offset+size])
	sizeArg.SetBytes(hasher.Sum(nil))
	return nil
}

func pushAddress(f *frame, address floria.Address) {
	f.stack.pushUndefined().SetBytes20(address[:])
}

func opAddress(f *frame) error {
	pushAddress(f, f.params.Recipient)
	return nil
}

func opBalance(f *frame) error {
	top := f.stack.peek()
	balance := f.ctx.GetBalance(floria.Address(top.Bytes20()))
	top.SetBytes32(balance[:])
	return nil
}

func opOrigin(f *frame) error {
	pushAddress(f, f.params.Origin)
	return nil
}

func opCaller(f *frame) error {
	pushAddress(f, f.params.Sender)
	return nil
}

func opCallValue(f *frame) error {
	f.stack.pushUndefined().SetBytes32(f.params.Value[:])
	return nil
}

func opCallDataLoad(f *frame) error {
	top := f.stack.peek()
	var word [32]byte
	if top.IsUint64() && top.Uint64() < uint64(len(f.params.Input)) {
		copy(word[:], f.params.Input[top.Uint64():])
	}
	top.SetBytes32(word[:])
	return nil
}

func opCallDataSize(f *frame) error {
	f.stack.pushUndefined().SetUint64(uint64(len(f.params.Input)))
	return nil
}

func genericDataCopy(f *frame, data []byte) error {
	memOffsetArg := f.stack.pop()
	dataOffsetArg := f.stack.pop()
	sizeArg := f.stack.pop()
	memOffset, size, err := toRegion(memOffsetArg, sizeArg)
	if err != nil {
		return err
	}
	if err := f.useGas(wordCost(gasCopyWord, size)); err != nil {
		return err
	}
	if err := f.memory.expand(memOffset, size, f); err != nil {
		return err
	}
	if size == 0 {
		return nil
	}
	dataOffset := uint64(len(data))
	if dataOffsetArg.IsUint64() && dataOffsetArg.Uint64() < dataOffset {
		dataOffset = dataOffsetArg.Uint64()
	}
	f.memory.setPadded(memOffset, data, dataOffset, size)
	return nil
}

func opCallDataCopy(f *frame) error {
	return genericDataCopy(f, f.params.Input)
}

func opCodeSize(f *frame) error {
	f.stack.pushUndefined().SetUint64(uint64(len(f.code)))
	return nil
}

func opCodeCopy(f *frame) error {
	return genericDataCopy(f, f.code)
}

func opGasPrice(f *frame) error {
	f.stack.pushUndefined().SetBytes32(f.params.GasPrice[:])
	return nil
}

func opPop(f *frame) error {
	f.stack.pop()
	return nil
}

func opMload(f *frame) error {
	top := f.stack.peek()
	offset, _, err := toRegion(top, uint256.NewInt(32))
	if err != nil {
		return err
	}
	if err := f.memory.expand(offset, 32, f); err != nil {
		return err
	}
	top.SetBytes32(f.memory.store[offset : offset+32])
	return nil
}

func opMstore(f *frame) error {
	offsetArg := f.stack.pop()
	value := f.stack.pop()
	offset, _, err := toRegion(offsetArg, uint256.NewInt(32))
	if err != nil {
		return err
	}
	if err := f.memory.expand(offset, 32, f); err != nil {
		return err
	}
	word := value.Bytes32()
	f.memory.set(offset, word[:])
	return nil
}

func opMstore8(f *frame) error {
	offsetArg := f.stack.pop()
	value := f.stack.pop()
	offset, _, err := toRegion(offsetArg, uint256.NewInt(1))
	if err != nil {
		return err
	}
	if err := f.memory.expand(offset, 1, f); err != nil {
		return err
	}
	f.memory.store[offset] = byte(value.Uint64())
	return nil
}

func opSload(f *frame) error {
	top := f.stack.peek()
	value := f.ctx.GetStorage(f.params.Recipient, floria.Key(top.Bytes32()))
	top.SetBytes32(value[:])
	return nil
}

func opSstore(f *frame) error {
	key := floria.Key(f.stack.pop().Bytes32())
	value := floria.Word(f.stack.pop().Bytes32())

	current := f.ctx.GetStorage(f.params.Recipient, key)
	cost := gasSstoreReset
	if current == (floria.Word{}) && value != (floria.Word{}) {
		cost = gasSstoreSet
	}
	if err := f.useGas(cost); err != nil {
		return err
	}
	if current != (floria.Word{}) && value == (floria.Word{}) {
		f.ctx.AddRefund(refundSstore)
	}
	f.ctx.SetStorage(f.params.Recipient, key, value)
	if f.storageDelta == nil {
		f.storageDelta = map[floria.Key]floria.Word{}
	}
	f.storageDelta[key] = value
	return nil
}

func (f *frame) jumpTo(dest *uint256.Int) error {
	if !dest.IsUint64() || !f.jumpDests.isValid(dest.Uint64()) {
		return floria.ErrInvalidJump
	}
	f.pc = dest.Uint64()
	return nil
}

func opJump(f *frame) error {
	return f.jumpTo(f.stack.pop())
}

func opJumpi(f *frame) error {
	dest := f.stack.pop()
	condition := f.stack.pop()
	if condition.IsZero() {
		return nil
	}
	return f.jumpTo(dest)
}

func opPc(f *frame) error {
	f.stack.pushUndefined().SetUint64(f.pc)
	return nil
}

func opMsize(f *frame) error {
	f.stack.pushUndefined().SetUint64(f.memory.length())
	return nil
}

func opGas(f *frame) error {
	f.stack.pushUndefined().SetUint64(uint64(f.gas))
	return nil
}

func opJumpDest(f *frame) error {
	return nil
}

func makePush(size int) func(*frame) error {
	return func(f *frame) error {
		var data [32]byte
		start := f.pc + 1
		if start < uint64(len(f.code)) {
			copy(data[32-size:], f.code[start:])
		}
		// Push data cut off by the end of the code is padded with zeros on
		// the right.
		f.stack.pushUndefined().SetBytes(data[32-size:])
		f.pc += uint64(size) + 1
		return nil
	}
}

func makeDup(n int) func(*frame) error {
	return func(f *frame) error {
		f.stack.push(f.stack.peekN(n - 1))
		return nil
	}
}

func makeSwap(n int) func(*frame) error {
	return func(f *frame) error {
		f.stack.swap(n)
		return nil
	}
}

func makeLog(n int) func(*frame) error {
	return func(f *frame) error {
		offsetArg := f.stack.pop()
		sizeArg := f.stack.pop()
		offset, size, err := toRegion(offsetArg, sizeArg)
		if err != nil {
			return err
		}
		topics := make([]floria.Hash, n)
		for i := range topics {
			topics[i] = f.stack.pop().Bytes32()
		}
		if err := f.useGas(gasLogByte * floria.Gas(size)); err != nil {
			return err
		}
		if err := f.memory.expand(offset, size, f); err != nil {
			return err
		}
		f.ctx.EmitLog(floria.Log{
			Address: f.params.Recipient,
			Topics:  topics,
			Data:    f.memory.get(offset, size),
		})
		return nil
	}
}

func opCreate(f *frame) error {
	value := *f.stack.pop()
	offsetArg := f.stack.pop()
	sizeArg := f.stack.pop()
	offset, size, err := toRegion(offsetArg, sizeArg)
	if err != nil {
		return err
	}
	if err := f.memory.expand(offset, size, f); err != nil {
		return err
	}

	// All remaining gas is handed to the initialization code.
	gas := f.gas
	f.gas = 0
	result, err := f.ctx.Call(floria.Create, floria.CallParameters{
		Sender: f.params.Recipient,
		Value:  floria.Value(value.Bytes32()),
		Input:  f.memory.get(offset, size),
		Gas:    gas,
	})
	if err != nil {
		return err
	}
	f.gas += result.GasLeft

	res := f.stack.pushUndefined()
	if result.Success {
		res.SetBytes20(result.CreatedAddress[:])
	}
	return nil
}

func genericCall(f *frame, kind floria.CallKind) error {
	requestedGas := *f.stack.pop()
	target := floria.Address(f.stack.pop().Bytes20())
	var value uint256.Int
	if kind == floria.Call || kind == floria.CallCode {
		value = *f.stack.pop()
	}
	inOffsetArg, inSizeArg := *f.stack.pop(), *f.stack.pop()
	outOffsetArg, outSizeArg := *f.stack.pop(), *f.stack.pop()

	inOffset, inSize, err := toRegion(&inOffsetArg, &inSizeArg)
	if err != nil {
		return err
	}
	outOffset, outSize, err := toRegion(&outOffsetArg, &outSizeArg)
	if err != nil {
		return err
	}
	if err := f.memory.expand(inOffset, inSize, f); err != nil {
		return err
	}
	if err := f.memory.expand(outOffset, outSize, f); err != nil {
		return err
	}

	cost := gasCall
	if !value.IsZero() {
		cost += gasCallValueTransfer
	}
	if kind == floria.Call && !f.ctx.AccountExists(target) {
		cost += gasCallNewAccount
	}
	if err := f.useGas(cost); err != nil {
		return err
	}
	if !requestedGas.IsUint64() || requestedGas.Uint64() > uint64(f.gas) {
		return floria.ErrOutOfGas
	}
	gas := floria.Gas(requestedGas.Uint64())
	f.gas -= gas
	if !value.IsZero() {
		gas += callStipend
	}

	parameters := floria.CallParameters{
		Sender:      f.params.Recipient,
		Recipient:   target,
		Value:       floria.Value(value.Bytes32()),
		Input:       f.memory.get(inOffset, inSize),
		Gas:         gas,
		CodeAddress: target,
	}
	switch kind {
	case floria.CallCode:
		parameters.Recipient = f.params.Recipient
	case floria.DelegateCall:
		parameters.Sender = f.params.Sender
		parameters.Recipient = f.params.Recipient
		parameters.Value = f.params.Value
	}

	result, err := f.ctx.Call(kind, parameters)
	if err != nil {
		return err
	}
	f.gas += result.GasLeft

	if outSize > 0 {
		output := result.Output
		if uint64(len(output)) > outSize {
			output = output[:outSize]
		}
		f.memory.set(outOffset, output)
	}
	setBool(f.stack.pushUndefined(), result.Success)
	return nil
}

func opCall(f *frame) error {
	return genericCall(f, floria.Call)
}

func opCallCode(f *frame) error {
	return genericCall(f, floria.CallCode)
}

func opDelegateCall(f *frame) error {
	return genericCall(f, floria.DelegateCall)
}

func opReturn(f *frame) error {
	offsetArg := f.stack.pop()
	sizeArg := f.stack.pop()
	offset, size, err := toRegion(offsetArg, sizeArg)
	if err != nil {
		return err
	}
	if err := f.memory.expand(offset, size, f); err != nil {
		return err
	}
	f.output = f.memory.get(offset, size)
	f.status = statusReturned
	return nil
}

func opInvalid(f *frame) error {
	return floria.ErrInvalidInstruction
}

func opSelfDestruct(f *frame) error {
	beneficiary := floria.Address(f.stack.pop().Bytes20())
	if f.ctx.SelfDestruct(f.params.Recipient, beneficiary) {
		f.ctx.AddRefund(refundSelfDestruct)
	}
	f.status = statusSelfDestructed
	return nil
}
