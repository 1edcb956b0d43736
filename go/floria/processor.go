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

//go:generate mockgen -source processor.go -destination processor_mock.go -package floria

// Processor executes the transactions of a block strictly in order, taking
// care of their admission and fee payments.
type Processor interface {
	// Run executes the given transactions on the world state. An error is
	// only returned for defects, in which case the world state is left
	// unmodified.
	Run(BlockParameters, []Transaction, WorldState) (BlockResult, error)
}

// BlockResult summarizes the execution of the transactions of a block.
type BlockResult struct {
	Receipts []Receipt   // one receipt per executed transaction, in order
	Rejected []Rejection // transactions failing admission, in order
	GasUsed  Gas         // gas used by all executed transactions
}

// Rejection describes a transaction rejected at admission.
type Rejection struct {
	Index int   // position of the transaction in the block
	Err   error // the reason for the rejection
}

// ProcessorFactory creates processors using the given interpreter.
type ProcessorFactory func(Interpreter) Processor

var processors = newRegistry[ProcessorFactory]("processor")

// RegisterProcessorFactory makes a processor implementation available under
// the given, case-insensitive name.
func RegisterProcessorFactory(name string, factory ProcessorFactory) error {
	return processors.register(name, factory, factory == nil)
}

// GetProcessorFactory returns the factory registered under the given name or
// nil if there is none.
func GetProcessorFactory(name string) ProcessorFactory {
	return processors.lookup(name)
}

func GetAllRegisteredProcessors() map[string]ProcessorFactory {
	return processors.all()
}

// NewProcessor creates a processor of the implementation registered under
// the given name, running contracts on the given interpreter.
func NewProcessor(name string, interpreter Interpreter) (Processor, error) {
	factory, err := processors.get(name)
	if err != nil {
		return nil, err
	}
	return factory(interpreter), nil
}
