// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package stepvm provides a steppable reference interpreter for EVM
// byte-code. Runs can be bounded by a number of instructions, in which case
// they are suspended and may be resumed through their continuation.
//
// The interpreter covers the frontier instruction set, extended by
// DELEGATECALL from Homestead on, and charges frontier gas prices in all
// revisions.
package stepvm

import (
	"fmt"

	"github.com/Fantom-foundation/Floria/go/floria"
)

// defaultCacheSize is the number of jump destination analyses kept by default.
const defaultCacheSize = 1 << 12

func init() {
	err := floria.RegisterInterpreterFactory("stepvm", func(config any) (floria.Interpreter, error) {
		if config == nil {
			return New(Config{})
		}
		c, ok := config.(Config)
		if !ok {
			return nil, fmt.Errorf("invalid configuration type %T", config)
		}
		return New(c)
	})
	if err != nil {
		panic(fmt.Sprintf("failed to register stepvm: %v", err))
	}
}

type Config struct {
	// CacheSize is the number of jump destination analyses to be cached. If
	// set to 0, a default size is used. If negative, no cache is used.
	CacheSize int
}

// VM is an interpreter instance. It is safe for concurrent use.
type VM struct {
	analyzer *analyzer
}

func New(config Config) (*VM, error) {
	analyzer, err := newAnalyzer(config.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis cache: %w", err)
	}
	return &VM{analyzer: analyzer}, nil
}

func (v *VM) Run(params floria.Parameters) (floria.Result, error) {
	if params.Context == nil {
		return floria.Result{}, fmt.Errorf("missing execution context")
	}
	f := newFrame(params, v.analyzer.analyze(params.Code, params.CodeHash))
	return f.Continue(params.StepLimit)
}
