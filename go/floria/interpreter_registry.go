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

// InterpreterFactory creates an Interpreter from an implementation specific
// configuration. A nil configuration selects the defaults.
type InterpreterFactory func(config any) (Interpreter, error)

var interpreters = newRegistry[InterpreterFactory]("interpreter")

// RegisterInterpreterFactory makes an interpreter implementation available
// under the given, case-insensitive name. It fails if the name is taken or
// the factory is nil, and is meant to be called from init functions.
func RegisterInterpreterFactory(name string, factory InterpreterFactory) error {
	return interpreters.register(name, factory, factory == nil)
}

// GetInterpreterFactory returns the factory registered under the given name
// or nil if there is none.
func GetInterpreterFactory(name string) InterpreterFactory {
	return interpreters.lookup(name)
}

func GetAllRegisteredInterpreters() map[string]InterpreterFactory {
	return interpreters.all()
}

// NewInterpreter creates an interpreter of the implementation registered
// under the given name. At most one configuration may be passed.
func NewInterpreter(name string, config ...any) (Interpreter, error) {
	if len(config) > 1 {
		return nil, fmt.Errorf("invalid configuration: %d configurations given for `%s`", len(config), name)
	}
	factory, err := interpreters.get(name)
	if err != nil {
		return nil, err
	}
	var c any
	if len(config) == 1 {
		c = config[0]
	}
	return factory(c)
}
