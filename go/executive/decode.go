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
	"fmt"
	"math"

	"github.com/Fantom-foundation/Floria/go/floria"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
)

// DecodeTransaction decodes a transaction in its canonical binary encoding,
// i.e. RLP for legacy transactions and the typed envelope for others, and
// recovers its sender using the given signer.
func DecodeTransaction(raw []byte, signer types.Signer) (floria.Transaction, error) {
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return floria.Transaction{}, fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
	}
	return ConvertTransaction(tx, signer)
}

// ConvertTransaction converts a go-ethereum transaction, recovering its
// sender using the given signer.
func ConvertTransaction(tx *types.Transaction, signer types.Signer) (floria.Transaction, error) {
	sender, err := types.Sender(signer, tx)
	if err != nil {
		return floria.Transaction{}, fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
	}
	if tx.Gas() > math.MaxInt64 {
		return floria.Transaction{}, fmt.Errorf("%w: gas limit %d out of range", ErrInvalidTransaction, tx.Gas())
	}
	value, overflow := uint256.FromBig(tx.Value())
	if overflow {
		return floria.Transaction{}, fmt.Errorf("%w: value %v out of range", ErrInvalidTransaction, tx.Value())
	}
	gasPrice, overflow := uint256.FromBig(tx.GasPrice())
	if overflow {
		return floria.Transaction{}, fmt.Errorf("%w: gas price %v out of range", ErrInvalidTransaction, tx.GasPrice())
	}

	var recipient *floria.Address
	if to := tx.To(); to != nil {
		address := floria.Address(*to)
		recipient = &address
	}

	return floria.Transaction{
		Sender:    floria.Address(sender),
		Recipient: recipient,
		Nonce:     tx.Nonce(),
		Input:     tx.Data(),
		Value:     floria.ValueFromUint256(value),
		GasLimit:  floria.Gas(tx.Gas()),
		GasPrice:  floria.ValueFromUint256(gasPrice),
	}, nil
}
