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
	"slices"

	"github.com/Fantom-foundation/Floria/go/floria"
	"github.com/Fantom-foundation/Floria/go/state"
)

// executionContext is the view of an interpreter on the world. State
// mutations are recorded in an overlay on top of the executive's world,
// side effects in the sub-state. Both are discarded together by revert.
type executionContext struct {
	*state.Overlay
	executive *Executive

	// sub-state
	logs          []floria.Log
	refund        floria.Gas
	selfDestructs []floria.Address
}

func newExecutionContext(executive *Executive, world floria.WorldState) *executionContext {
	return &executionContext{
		Overlay:   state.NewOverlay(world),
		executive: executive,
	}
}

func (c *executionContext) EmitLog(log floria.Log) {
	c.logs = append(c.logs, log)
}

func (c *executionContext) AddRefund(gas floria.Gas) {
	c.refund += gas
}

func (c *executionContext) SelfDestruct(address floria.Address, beneficiary floria.Address) bool {
	balance := c.GetBalance(address)
	c.SetBalance(address, floria.Value{})
	floria.AddBalance(c, beneficiary, balance)
	if c.HasSelfDestructed(address) {
		return false
	}
	c.selfDestructs = append(c.selfDestructs, address)
	return true
}

// HasSelfDestructed covers registrations of this context and of the contexts
// of enclosing calls.
func (c *executionContext) HasSelfDestructed(address floria.Address) bool {
	for cur := c; cur != nil; cur = cur.executive.parent {
		if slices.Contains(cur.selfDestructs, address) {
			return true
		}
	}
	return false
}

// Call runs a nested call or creation in a child executive. The transfer of
// the value and all effects of the child are recorded in a separate layer
// which is merged into this context only if the child does not except.
func (c *executionContext) Call(kind floria.CallKind, params floria.CallParameters) (floria.CallResult, error) {
	parent := c.executive
	parent.logger.Trace("Nested call", "kind", kind, "depth", parent.depth+1, "recipient", params.Recipient, "gas", params.Gas)
	if parent.depth+1 > parent.maxDepth {
		parent.logger.Debug("Safe VM exception", "err", floria.ErrCallDepthExceeded, "depth", parent.depth+1)
		exceptedCounter.Inc(1)
		return floria.CallResult{}, nil
	}

	transfersValue := kind != floria.DelegateCall
	if transfersValue && c.GetBalance(params.Sender).Cmp(params.Value) < 0 {
		return floria.CallResult{GasLeft: params.Gas}, nil
	}

	if kind == floria.Create {
		floria.IncrementNonce(c, params.Sender)
	}

	scope := state.NewOverlay(c)
	if transfersValue {
		floria.SubBalance(scope, params.Sender, params.Value)
	}

	child := parent.child(scope, c)
	if kind == floria.Create {
		child.create(params.Sender, params.Value, parent.gasPrice, params.Gas, floria.Code(params.Input), parent.origin)
	} else {
		child.call(kind, params, parent.gasPrice, parent.origin)
	}
	for {
		done, err := child.Go()
		if err != nil {
			scope.Discard()
			return floria.CallResult{}, err
		}
		if done {
			break
		}
	}

	if child.excepted {
		scope.Discard()
		return floria.CallResult{}, nil
	}

	child.settle()
	if child.ctx != nil {
		c.accrue(child.ctx)
	}
	scope.Commit()

	result := floria.CallResult{
		Output:  child.output,
		GasLeft: child.endGas,
		Success: true,
	}
	if kind == floria.Create {
		result.CreatedAddress = child.newAddress
	}
	return result, nil
}

// child creates an executive for a call issued by the given context. The
// child runs to completion without step limit.
func (e *Executive) child(world floria.WorldState, parent *executionContext) *Executive {
	return &Executive{
		world:       world,
		block:       e.block,
		blockGas:    e.blockGas,
		interpreter: e.interpreter,
		precompiles: e.precompiles,
		schedule:    e.schedule,
		observer:    e.observer,
		maxDepth:    e.maxDepth,
		signer:      e.signer,
		logger:      e.logger,
		depth:       e.depth + 1,
		parent:      parent,
	}
}

// accrue adds the sub-state of a successfully completed nested call.
func (c *executionContext) accrue(child *executionContext) {
	c.logs = append(c.logs, child.logs...)
	c.refund += child.refund
	for _, address := range child.selfDestructs {
		if !slices.Contains(c.selfDestructs, address) {
			c.selfDestructs = append(c.selfDestructs, address)
		}
	}
}

// commit merges the recorded state mutations into the executive's world.
// The sub-state is retained for finalization.
func (c *executionContext) commit() {
	c.Overlay.Commit()
}

// revert drops all state mutations and the sub-state.
func (c *executionContext) revert() {
	c.Overlay.Discard()
	c.logs = nil
	c.refund = 0
	c.selfDestructs = nil
}
