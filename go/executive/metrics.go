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

import "github.com/ethereum/go-ethereum/metrics"

var (
	admittedCounter = metrics.NewRegisteredCounter("floria/executive/admitted", nil)
	rejectedCounter = metrics.NewRegisteredCounter("floria/executive/rejected", nil)
	exceptedCounter = metrics.NewRegisteredCounter("floria/executive/excepted", nil)
	defectCounter   = metrics.NewRegisteredCounter("floria/executive/defects", nil)

	runTimer = metrics.NewRegisteredTimer("floria/executive/run", nil)
	gasMeter = metrics.NewRegisteredMeter("floria/executive/gas", nil)
)
