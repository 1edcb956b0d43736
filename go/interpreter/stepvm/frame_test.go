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

import (
	"errors"
	"testing"

	"github.com/Fantom-foundation/Floria/go/floria"
	geth "github.com/ethereum/go-ethereum/core/vm"
	"go.uber.org/mock/gomock"
)

func TestFrame_StepLimitSuspendsAndResumes(t *testing.T) {
	// five instructions: PUSH1 PUSH1 ADD POP STOP
	c := code(geth.PUSH1, 1, geth.PUSH1, 2, geth.ADD, geth.POP, geth.STOP)
	vm, err := New(Config{})
	if err != nil {
		t.Fatalf("failed to create VM: %v", err)
	}
	ctx := floria.NewMockExecutionContext(gomock.NewController(t))

	result, err := vm.Run(floria.Parameters{Context: ctx, Code: c, Gas: 100, StepLimit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != floria.Suspended || result.Continuation == nil {
		t.Fatalf("expected suspended run, got %+v", result)
	}
	if want, got := floria.Gas(94), result.GasLeft; want != got {
		t.Errorf("unexpected gas after two steps, wanted %d, got %d", want, got)
	}

	result, err = result.Continuation.Continue(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != floria.Suspended {
		t.Fatalf("expected suspended run, got %v", result.Status)
	}
	if want, got := floria.Gas(89), result.GasLeft; want != got {
		t.Errorf("unexpected gas after four steps, wanted %d, got %d", want, got)
	}

	continuation := result.Continuation
	result, err = continuation.Continue(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != floria.Completed || result.GasLeft != 89 {
		t.Errorf("unexpected final result %+v", result)
	}

	if _, err := continuation.Continue(0); !errors.Is(err, errFrameFinished) {
		t.Errorf("resuming a finished frame should fail, got %v", err)
	}
}

func TestFrame_SuspendedRunsProduceSameResultAsUnboundedRuns(t *testing.T) {
	parts := append([]any{
		geth.PUSH1, 3, geth.PUSH1, 4, geth.MUL, geth.PUSH1, 5, geth.ADD,
	}, returnTop()...)
	c := code(parts...)

	reference := run(t, floria.Parameters{Code: c, Gas: 1000})
	for limit := 1; limit < 15; limit++ {
		result := run(t, floria.Parameters{Code: c, Gas: 1000, StepLimit: limit})
		for result.Status == floria.Suspended {
			var err error
			result, err = result.Continuation.Continue(limit)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if result.Status != reference.Status || result.GasLeft != reference.GasLeft ||
			string(result.Output) != string(reference.Output) {
			t.Errorf("limit %d: unexpected result %+v, wanted %+v", limit, result, reference)
		}
	}
}

func TestFrame_ObserverSeesStateBeforeEachInstruction(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := floria.NewMockExecutionContext(ctrl)
	ctx.EXPECT().GetStorage(gomock.Any(), gomock.Any()).Return(floria.Word{})
	ctx.EXPECT().SetStorage(gomock.Any(), gomock.Any(), gomock.Any())

	var snapshots []floria.StepSnapshot
	observer := floria.ObserverFunc(func(s floria.StepSnapshot) {
		snapshots = append(snapshots, s)
	})

	c := code(geth.PUSH1, 2, geth.PUSH1, 1, geth.SSTORE, geth.STOP)
	result := run(t, floria.Parameters{
		Context:   ctx,
		Depth:     3,
		Recipient: floria.Address{7},
		Code:      c,
		Gas:       30000,
		Observer:  observer,
	})
	if result.Status != floria.Completed {
		t.Fatalf("unexpected status %v: %v", result.Status, result.Exception)
	}

	if want, got := 4, len(snapshots); want != got {
		t.Fatalf("unexpected number of snapshots, wanted %d, got %d", want, got)
	}
	ops := []string{"PUSH1", "PUSH1", "SSTORE", "STOP"}
	pcs := []uint64{0, 2, 4, 5}
	gas := []floria.Gas{30000, 29997, 29994, 9994}
	for i, s := range snapshots {
		if s.Op != ops[i] || s.PC != pcs[i] || s.Gas != gas[i] || s.Step != uint64(i) {
			t.Errorf("unexpected snapshot %d: %+v", i, s)
		}
		if s.Depth != 3 || s.Recipient != (floria.Address{7}) {
			t.Errorf("unexpected frame identity in snapshot %d: %+v", i, s)
		}
	}
	if want, got := 2, len(snapshots[2].Stack); want != got {
		t.Fatalf("unexpected stack size, wanted %d, got %d", want, got)
	}
	if snapshots[2].Stack[0] != (floria.Word{31: 2}) || snapshots[2].Stack[1] != (floria.Word{31: 1}) {
		t.Errorf("unexpected stack %v", snapshots[2].Stack)
	}
	if len(snapshots[2].StorageDelta) != 0 {
		t.Errorf("storage delta should be empty before the store")
	}
	if want, got := (floria.Word{31: 2}), snapshots[3].StorageDelta[floria.Key{31: 1}]; want != got {
		t.Errorf("unexpected storage delta, wanted %v, got %v", want, got)
	}
}

func TestFrame_SnapshotsAreIndependentCopies(t *testing.T) {
	var snapshots []floria.StepSnapshot
	observer := floria.ObserverFunc(func(s floria.StepSnapshot) {
		snapshots = append(snapshots, s)
	})
	c := code(geth.PUSH1, 1, geth.PUSH1, 0, geth.MSTORE, geth.PUSH1, 2, geth.PUSH1, 0, geth.MSTORE, geth.STOP)
	run(t, floria.Parameters{Code: c, Gas: 1000, Observer: observer})

	// memory after the first store, observed before the second push
	if got := snapshots[3].Memory[31]; got != 1 {
		t.Errorf("snapshot memory was modified after the snapshot was taken, got %d", got)
	}
	if got := snapshots[len(snapshots)-1].Memory[31]; got != 2 {
		t.Errorf("unexpected memory in last snapshot, got %d", got)
	}
}

func TestAnalysis_JumpDestsInPushDataAreIgnored(t *testing.T) {
	c := code(geth.JUMPDEST, geth.PUSH2, geth.JUMPDEST, geth.JUMPDEST, geth.JUMPDEST)
	dests := analyze(c)
	want := []bool{true, false, false, false, true}
	for i, w := range want {
		if got := dests.isValid(uint64(i)); w != got {
			t.Errorf("position %d: wanted %t, got %t", i, w, got)
		}
	}
	if dests.isValid(5) {
		t.Errorf("positions beyond the code must be invalid")
	}
}

func TestAnalysis_ResultsAreCachedByCodeHash(t *testing.T) {
	analyzer, err := newAnalyzer(10)
	if err != nil {
		t.Fatalf("failed to create analyzer: %v", err)
	}
	c := code(geth.JUMPDEST)
	hash := floria.HashCode(c)
	analyzer.analyze(c, &hash)
	if !analyzer.cache.Contains(hash) {
		t.Fatalf("analysis not cached")
	}
	// a cached analysis is used even if the code differs
	if !analyzer.analyze(code(geth.STOP), &hash).isValid(0) {
		t.Errorf("cached analysis not used")
	}
	analyzer.analyze(c, nil)
	if want, got := 1, analyzer.cache.Len(); want != got {
		t.Errorf("unexpected cache size, wanted %d, got %d", want, got)
	}
}

func TestAnalysis_NegativeCacheSizeDisablesCache(t *testing.T) {
	analyzer, err := newAnalyzer(-1)
	if err != nil {
		t.Fatalf("failed to create analyzer: %v", err)
	}
	hash := floria.Hash{1}
	if !analyzer.analyze(code(geth.JUMPDEST), &hash).isValid(0) {
		t.Errorf("unexpected analysis")
	}
	if analyzer.cache != nil {
		t.Errorf("cache should be disabled")
	}
}

func TestMemory_ExpansionCosts(t *testing.T) {
	tests := map[uint64]floria.Gas{
		0:         0,
		1:         3,
		32:        3,
		33:        6,
		1024:      96 + 2,
		32 * 1024: 3*1024 + 1024*1024/512,
	}
	for size, want := range tests {
		if got := memoryCost(size); want != got {
			t.Errorf("memoryCost(%d): wanted %d, got %d", size, want, got)
		}
	}
}

func TestMemory_ExpansionChargesOnlyTheDifference(t *testing.T) {
	f := newFrame(floria.Parameters{Gas: 100}, nil)
	if err := f.memory.expand(0, 32, f); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.memory.expand(10, 40, f); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want, got := floria.Gas(100-6), f.gas; want != got {
		t.Errorf("unexpected gas, wanted %d, got %d", want, got)
	}
	if want, got := uint64(64), f.memory.length(); want != got {
		t.Errorf("unexpected memory size, wanted %d, got %d", want, got)
	}
}

func TestStack_PushPopPeek(t *testing.T) {
	s := newStack()
	for i := 0; i < 3; i++ {
		s.pushUndefined().SetUint64(uint64(i))
	}
	if want, got := uint64(0), s.peekN(2).Uint64(); want != got {
		t.Errorf("unexpected element, wanted %d, got %d", want, got)
	}
	s.swap(2)
	if want, got := uint64(0), s.pop().Uint64(); want != got {
		t.Errorf("unexpected element, wanted %d, got %d", want, got)
	}
	if want, got := uint64(1), s.peek().Uint64(); want != got {
		t.Errorf("unexpected element, wanted %d, got %d", want, got)
	}
	if want, got := 2, s.len(); want != got {
		t.Errorf("unexpected size, wanted %d, got %d", want, got)
	}
}
