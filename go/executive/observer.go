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
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/Fantom-foundation/Floria/go/floria"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// NewLoggingObserver creates an observer rendering every executed
// instruction through the given logger at trace level. Besides the
// instruction, its position and the remaining gas, the rendering lists the
// stack (top first), a dump of the memory and the storage written so far.
func NewLoggingObserver(logger log.Logger) floria.StepObserver {
	return &loggingObserver{
		logger:  logger,
		lastGas: map[int]floria.Gas{},
	}
}

type loggingObserver struct {
	logger  log.Logger
	lastGas map[int]floria.Gas // < gas seen by the previous step per depth
}

func (o *loggingObserver) OnStep(s floria.StepSnapshot) {
	if !o.logger.Enabled(context.Background(), log.LevelTrace) {
		return
	}
	var cost floria.Gas
	if last, found := o.lastGas[s.Depth]; found && s.Step > 0 {
		cost = last - s.Gas
	}
	o.lastGas[s.Depth] = s.Gas

	o.logger.Trace("Step",
		"depth", s.Depth,
		"recipient", s.Recipient,
		"step", s.Step,
		"pc", s.PC,
		"op", s.Op,
		"gas", s.Gas,
		"lastCost", cost,
		"memWords", len(s.Memory)/32,
		"stack", formatStack(s.Stack),
		"memory", formatMemory(s.Memory),
		"storage", formatStorage(s.StorageDelta),
	)
}

func formatStack(stack []floria.Word) string {
	parts := make([]string, 0, len(stack))
	for i := len(stack) - 1; i >= 0; i-- {
		parts = append(parts, new(uint256.Int).SetBytes(stack[i][:]).Hex())
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func formatMemory(memory floria.Data) string {
	var builder strings.Builder
	for i := 0; i < len(memory); i += 32 {
		end := min(i+32, len(memory))
		if i > 0 {
			builder.WriteString(" ")
		}
		fmt.Fprintf(&builder, "%04x:%x", i, memory[i:end])
	}
	return builder.String()
}

func formatStorage(storage map[floria.Key]floria.Word) string {
	keys := maps.Keys(storage)
	slices.SortFunc(keys, func(a, b floria.Key) int {
		return bytes.Compare(a[:], b[:])
	})
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		value := storage[key]
		parts = append(parts, fmt.Sprintf("%s=%s",
			new(uint256.Int).SetBytes(key[:]).Hex(),
			new(uint256.Int).SetBytes(value[:]).Hex(),
		))
	}
	return "{" + strings.Join(parts, " ") + "}"
}
