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
	"github.com/holiman/uint256"
)

const maxStackSize = 1024

// stack is the word stack of a single call frame. It grows on demand since
// suspended frames keep their stacks alive. Bounds are checked by the
// interpreter loop before an instruction is executed.
type stack struct {
	data []uint256.Int
}

func newStack() *stack {
	return &stack{data: make([]uint256.Int, 0, 16)}
}

// push adds a copy of the given value to the top of the stack.
func (s *stack) push(v *uint256.Int) {
	s.data = append(s.data, *v)
}

// pushUndefined adds an element to the top of the stack and returns a
// pointer to it.
func (s *stack) pushUndefined() *uint256.Int {
	s.data = append(s.data, uint256.Int{})
	return &s.data[len(s.data)-1]
}

// pop removes the top element. The returned pointer is only valid until the
// next push.
func (s *stack) pop() *uint256.Int {
	res := &s.data[len(s.data)-1]
	s.data = s.data[:len(s.data)-1]
	return res
}

// peek returns a pointer to the top element.
func (s *stack) peek() *uint256.Int {
	return &s.data[len(s.data)-1]
}

// peekN returns a pointer to the n-th element from the top, where peekN(0)
// is the top element.
func (s *stack) peekN(n int) *uint256.Int {
	return &s.data[len(s.data)-n-1]
}

func (s *stack) swap(n int) {
	top := len(s.data) - 1
	s.data[top], s.data[top-n] = s.data[top-n], s.data[top]
}

func (s *stack) len() int {
	return len(s.data)
}
