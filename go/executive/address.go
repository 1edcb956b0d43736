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

import (
	"github.com/Fantom-foundation/Floria/go/floria"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ContractAddress derives the address of a contract created by the given
// sender while its nonce was at the given value.
func ContractAddress(sender floria.Address, nonce uint64) floria.Address {
	return floria.Address(crypto.CreateAddress(common.Address(sender), nonce))
}
