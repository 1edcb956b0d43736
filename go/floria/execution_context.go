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

import (
	"fmt"
	"strings"
)

//go:generate mockgen -source execution_context.go -destination execution_context_mock.go -package floria

// ExecutionContext is the view of a running contract on the world. Writes
// are buffered per call and discarded if the call excepts.
type ExecutionContext interface {
	WorldState

	// EmitLog appends a log entry to the sub-state of the current call.
	EmitLog(Log)
	// AddRefund increases the refund counter of the current call.
	AddRefund(Gas)
	// SelfDestruct moves the balance of addr to the beneficiary and registers
	// addr for removal at the end of the transaction. It returns true if addr
	// was not registered before.
	SelfDestruct(addr Address, beneficiary Address) bool
	HasSelfDestructed(Address) bool

	// Call performs a nested call or contract creation.
	Call(kind CallKind, parameters CallParameters) (CallResult, error)
}

// CallKind distinguishes the ways a contract may invoke another one.
type CallKind int

const (
	Call CallKind = iota
	DelegateCall
	CallCode
	Create
	numCallKinds
)

var callKindNames = [numCallKinds]string{
	Call:         "call",
	DelegateCall: "delegate_call",
	CallCode:     "call_code",
	Create:       "create",
}

// CallParameters describe a nested call. For Create, Recipient is ignored
// and Input is the init code.
type CallParameters struct {
	Sender      Address
	Recipient   Address
	Value       Value
	Input       Data
	Gas         Gas
	CodeAddress Address // code source for DelegateCall and CallCode
}

// CallResult is the outcome of a nested call. A failed call leaves no
// effects except for the consumed gas.
type CallResult struct {
	Output         Data
	GasLeft        Gas
	CreatedAddress Address // Create only
	Success        bool
}

func (k CallKind) String() string {
	if k < 0 || k >= numCallKinds {
		return fmt.Sprintf("CallKind(%d)", int(k))
	}
	return callKindNames[k]
}

func (k CallKind) MarshalText() ([]byte, error) {
	if k < 0 || k >= numCallKinds {
		return nil, fmt.Errorf("invalid call kind: %d", int(k))
	}
	return []byte(callKindNames[k]), nil
}

func (k *CallKind) UnmarshalText(text []byte) error {
	name := strings.ToLower(string(text))
	for kind, cur := range callKindNames {
		if cur == name {
			*k = CallKind(kind)
			return nil
		}
	}
	return fmt.Errorf("unknown call kind: %s", text)
}
