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

import "fmt"

//go:generate mockgen -source interpreter.go -destination interpreter_mock.go -package floria

// Interpreter is a component capable of executing EVM byte-code. It runs the
// code of a single call frame; recursive calls are delegated back to the
// ExecutionContext provided through the parameters.
type Interpreter interface {
	// Run executes the code provided by the parameters and returns its
	// outcome. Execution exceptions (out of gas, invalid instructions, ...)
	// are reported through a Result with status Excepted. The error is
	// reserved for defects of the interpreter itself; in such a case the
	// result is undefined.
	Run(Parameters) (Result, error)
}

// Continuation is the resumable remainder of a suspended interpreter run.
type Continuation interface {
	// Continue resumes the execution for at most the given number of steps,
	// where a value <= 0 lifts the limit. Steps executed before the suspension
	// are not repeated.
	Continue(stepLimit int) (Result, error)
}

// Parameters summarizes the list of input parameters required for executing code.
type Parameters struct {
	Context   ExecutionContext
	Revision  Revision
	Depth     int
	Gas       Gas
	Recipient Address // the account the code is executed for
	Sender    Address
	Origin    Address // the sender of the transaction
	Input     Data
	Value     Value
	GasPrice  Value
	CodeHash  *Hash // optional, enables caching of code analysis
	Code      Code

	// StepLimit bounds the number of instructions executed before the run
	// is suspended. Values <= 0 disable the limit.
	StepLimit int
	// Observer, if not nil, is informed before each executed instruction.
	Observer StepObserver
}

// Status enumerates the possible outcomes of an interpreter run.
type Status byte

const (
	// Completed runs ended with STOP, RETURN or SELFDESTRUCT.
	Completed Status = iota
	// Excepted runs ended with an execution exception; see Result.Exception.
	Excepted
	// Suspended runs exhausted their step limit; see Result.Continuation.
	Suspended
)

func (s Status) String() string {
	switch s {
	case Completed:
		return "completed"
	case Excepted:
		return "excepted"
	case Suspended:
		return "suspended"
	}
	return fmt.Sprintf("Status(%d)", s)
}

// Result summarizes the outcome of an interpreter run.
type Result struct {
	Status       Status
	Output       Data
	GasLeft      Gas
	Exception    error        // < only set for Excepted results
	Continuation Continuation // < only set for Suspended results
}
