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

import "github.com/Fantom-foundation/Floria/go/floria"

// Gas prices of the frontier fee schedule.
const (
	gasZero    floria.Gas = 0
	gasBase    floria.Gas = 2
	gasVeryLow floria.Gas = 3
	gasLow     floria.Gas = 5
	gasMid     floria.Gas = 8
	gasHigh    floria.Gas = 10

	gasJumpDest floria.Gas = 1
	gasBalance  floria.Gas = 20
	gasSload    floria.Gas = 50

	gasSha3     floria.Gas = 30
	gasSha3Word floria.Gas = 6
	gasCopyWord floria.Gas = 3

	gasSstoreSet   floria.Gas = 20000
	gasSstoreReset floria.Gas = 5000
	refundSstore   floria.Gas = 15000

	gasLog      floria.Gas = 375
	gasLogTopic floria.Gas = 375
	gasLogByte  floria.Gas = 8

	gasCreate            floria.Gas = 32000
	gasCall              floria.Gas = 40
	gasCallValueTransfer floria.Gas = 9000
	gasCallNewAccount    floria.Gas = 25000
	callStipend          floria.Gas = 2300

	refundSelfDestruct floria.Gas = 24000

	memoryGas    = 3
	quadCoeffDiv = 512
)

// wordCost computes the per-word costs of processing size bytes.
func wordCost(perWord floria.Gas, size uint64) floria.Gas {
	return perWord * floria.Gas(sizeInWords(size))
}
