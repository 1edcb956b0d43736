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
	geth "github.com/ethereum/go-ethereum/core/vm"
)

// operation describes the static properties of an instruction. Dynamic gas
// costs are charged by the execute function.
type operation struct {
	execute     func(*frame) error
	constantGas floria.Gas
	pops        int
	pushes      int
	minRevision floria.Revision
}

// jumpTable lists the supported instructions. Missing entries are invalid.
var jumpTable [256]*operation

func init() {
	set := func(op geth.OpCode, execute func(*frame) error, gas floria.Gas, pops, pushes int) {
		jumpTable[op] = &operation{
			execute:     execute,
			constantGas: gas,
			pops:        pops,
			pushes:      pushes,
		}
	}

	set(geth.STOP, opStop, gasZero, 0, 0)
	set(geth.ADD, opAdd, gasVeryLow, 2, 1)
	set(geth.MUL, opMul, gasLow, 2, 1)
	set(geth.SUB, opSub, gasVeryLow, 2, 1)
	set(geth.DIV, opDiv, gasLow, 2, 1)
	set(geth.MOD, opMod, gasLow, 2, 1)
	set(geth.LT, opLt, gasVeryLow, 2, 1)
	set(geth.GT, opGt, gasVeryLow, 2, 1)
	set(geth.EQ, opEq, gasVeryLow, 2, 1)
	set(geth.ISZERO, opIsZero, gasVeryLow, 1, 1)
	set(geth.AND, opAnd, gasVeryLow, 2, 1)
	set(geth.OR, opOr, gasVeryLow, 2, 1)
	set(geth.XOR, opXor, gasVeryLow, 2, 1)
	set(geth.NOT, opNot, gasVeryLow, 1, 1)
	set(geth.KECCAK256, opSha3, gasSha3, 2, 1)

	set(geth.ADDRESS, opAddress, gasBase, 0, 1)
	set(geth.BALANCE, opBalance, gasBalance, 1, 1)
	set(geth.ORIGIN, opOrigin, gasBase, 0, 1)
	set(geth.CALLER, opCaller, gasBase, 0, 1)
	set(geth.CALLVALUE, opCallValue, gasBase, 0, 1)
	set(geth.CALLDATALOAD, opCallDataLoad, gasVeryLow, 1, 1)
	set(geth.CALLDATASIZE, opCallDataSize, gasBase, 0, 1)
	set(geth.CALLDATACOPY, opCallDataCopy, gasVeryLow, 3, 0)
	set(geth.CODESIZE, opCodeSize, gasBase, 0, 1)
	set(geth.CODECOPY, opCodeCopy, gasVeryLow, 3, 0)
	set(geth.GASPRICE, opGasPrice, gasBase, 0, 1)

	set(geth.POP, opPop, gasBase, 1, 0)
	set(geth.MLOAD, opMload, gasVeryLow, 1, 1)
	set(geth.MSTORE, opMstore, gasVeryLow, 2, 0)
	set(geth.MSTORE8, opMstore8, gasVeryLow, 2, 0)
	set(geth.SLOAD, opSload, gasSload, 1, 1)
	set(geth.SSTORE, opSstore, gasZero, 2, 0)
	set(geth.JUMP, opJump, gasMid, 1, 0)
	set(geth.JUMPI, opJumpi, gasHigh, 2, 0)
	set(geth.PC, opPc, gasBase, 0, 1)
	set(geth.MSIZE, opMsize, gasBase, 0, 1)
	set(geth.GAS, opGas, gasBase, 0, 1)
	set(geth.JUMPDEST, opJumpDest, gasJumpDest, 0, 0)

	for i := 0; i < 32; i++ {
		set(geth.PUSH1+geth.OpCode(i), makePush(i+1), gasVeryLow, 0, 1)
	}
	for i := 1; i <= 16; i++ {
		set(geth.DUP1+geth.OpCode(i-1), makeDup(i), gasVeryLow, i, i+1)
		set(geth.SWAP1+geth.OpCode(i-1), makeSwap(i), gasVeryLow, i+1, i+1)
	}
	for i := 0; i <= 4; i++ {
		set(geth.LOG0+geth.OpCode(i), makeLog(i), gasLog+floria.Gas(i)*gasLogTopic, 2+i, 0)
	}

	set(geth.CREATE, opCreate, gasCreate, 3, 1)
	set(geth.CALL, opCall, gasZero, 7, 1)
	set(geth.CALLCODE, opCallCode, gasZero, 7, 1)
	set(geth.RETURN, opReturn, gasZero, 2, 0)
	set(geth.DELEGATECALL, opDelegateCall, gasZero, 6, 1)
	jumpTable[geth.DELEGATECALL].minRevision = floria.R01_Homestead
	set(geth.INVALID, opInvalid, gasZero, 0, 0)
	set(geth.SELFDESTRUCT, opSelfDestruct, gasZero, 1, 0)
}
