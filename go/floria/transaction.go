// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package floria

// Transaction summarizes the parameters of a transaction to be executed on a chain.
type Transaction struct {
	Sender    Address  // the sender of the transaction, paying for its execution
	Recipient *Address // the receiver of a transaction, nil if a new contract is to be created
	Nonce     uint64   // the nonce of the sender account, used to prevent replay attacks
	Input     Data     // the input data for the transaction, init code for creations
	Value     Value    // the amount of network currency to transfer to the recipient
	GasLimit  Gas      // the maximum amount of gas that can be used by the transaction
	GasPrice  Value    // the price of a unit of gas for this transaction
}

// IsCreation reports whether the transaction creates a new contract.
func (t *Transaction) IsCreation() bool {
	return t.Recipient == nil
}

// BlockParameters contains information about the block a transaction is
// executed in.
type BlockParameters struct {
	Number    int64
	Timestamp int64
	Coinbase  Address // the recipient of transaction fees
	GasLimit  Gas     // the total amount of gas transactions of this block may use
	Revision  Revision
}

// Receipt summarizes the result of the execution of a transaction. Only
// transactions passing admission produce a receipt.
type Receipt struct {
	Success         bool     // false if the execution ended in an exception
	GasUsed         Gas      // gas charged to the sender, after refunds
	ContractAddress *Address // filled if a contract was created by this transaction
	Output          Data     // the output produced by the transaction
	Logs            []Log    // logs produced by the transaction
}
