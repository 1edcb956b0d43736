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

//go:generate mockgen -source observer.go -destination observer_mock.go -package floria

// StepObserver is informed about every instruction executed by an
// interpreter. Observers are a side channel only and must not influence
// the outcome of an execution.
type StepObserver interface {
	OnStep(StepSnapshot)
}

// StepSnapshot is an immutable copy of the observable machine state right
// before an instruction is executed.
type StepSnapshot struct {
	Depth        int
	Recipient    Address
	Step         uint64 // < number of instructions executed before in this frame
	PC           uint64
	Op           string
	Gas          Gas
	Stack        []Word // < bottom first
	Memory       Data
	StorageDelta map[Key]Word // < storage written by this frame so far
}

// ObserverFunc adapts a function to the StepObserver interface.
type ObserverFunc func(StepSnapshot)

func (f ObserverFunc) OnStep(snapshot StepSnapshot) {
	f(snapshot)
}
