// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package executive

import "github.com/Fantom-foundation/Floria/go/floria"

// Schedule lists the gas costs charged by the executive itself, outside of
// any interpreter run.
type Schedule struct {
	TxGas            floria.Gas // < base costs of every transaction
	TxCreateGas      floria.Gas // < extra costs of contract creating transactions
	TxDataZeroGas    floria.Gas // < per zero byte of the transaction input
	TxDataNonZeroGas floria.Gas // < per non-zero byte of the transaction input
	CreateDataGas    floria.Gas // < per byte of deployed contract code
}

var (
	FrontierSchedule = Schedule{
		TxGas:            21000,
		TxDataZeroGas:    4,
		TxDataNonZeroGas: 68,
		CreateDataGas:    200,
	}

	// HomesteadSchedule adds the creation surcharge of EIP-2.
	HomesteadSchedule = Schedule{
		TxGas:            21000,
		TxCreateGas:      32000,
		TxDataZeroGas:    4,
		TxDataNonZeroGas: 68,
		CreateDataGas:    200,
	}

	// IstanbulSchedule reduces the costs of non-zero input bytes (EIP-2028).
	IstanbulSchedule = Schedule{
		TxGas:            21000,
		TxCreateGas:      32000,
		TxDataZeroGas:    4,
		TxDataNonZeroGas: 16,
		CreateDataGas:    200,
	}
)

// ScheduleFor returns the schedule in effect for the given revision.
func ScheduleFor(revision floria.Revision) Schedule {
	switch {
	case revision >= floria.R07_Istanbul:
		return IstanbulSchedule
	case revision >= floria.R01_Homestead:
		return HomesteadSchedule
	default:
		return FrontierSchedule
	}
}

// IntrinsicGas computes the gas a transaction has to pay before any of its
// code is run.
func (s Schedule) IntrinsicGas(input floria.Data, isCreation bool) floria.Gas {
	gas := s.TxGas
	if isCreation {
		gas += s.TxCreateGas
	}

	if len(input) > 0 {
		nonZeroBytes := floria.Gas(0)
		for _, inputByte := range input {
			if inputByte != 0 {
				nonZeroBytes++
			}
		}
		zeroBytes := floria.Gas(len(input)) - nonZeroBytes
		gas += zeroBytes * s.TxDataZeroGas
		gas += nonZeroBytes * s.TxDataNonZeroGas
	}

	// Inputs large enough to overflow this sum can not be held in memory.
	return gas
}

// DepositCosts computes the costs of storing the given code as the code of
// a newly created contract.
func (s Schedule) DepositCosts(code floria.Data) floria.Gas {
	return floria.Gas(len(code)) * s.CreateDataGas
}
