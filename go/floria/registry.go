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
	"sync"

	"golang.org/x/exp/maps"
)

// registry binds implementation factories of one kind to case-insensitive
// names. Implementations register themselves in the init code of their
// package, so importing a package makes its implementation available.
type registry[F any] struct {
	kind      string
	mu        sync.Mutex
	factories map[string]F
}

func newRegistry[F any](kind string) *registry[F] {
	return &registry[F]{kind: kind, factories: map[string]F{}}
}

// register binds the factory to the name. Nil checks are left to the
// caller since F is only known to be a function type there.
func (r *registry[F]) register(name string, factory F, isNil bool) error {
	key := strings.ToLower(name)
	if isNil {
		return fmt.Errorf("%w: nil %s factory for `%s`", ErrInvalidRegistration, r.kind, key)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, found := r.factories[key]; found {
		return fmt.Errorf("%w: multiple %s factories for `%s`", ErrInvalidRegistration, r.kind, key)
	}
	r.factories[key] = factory
	return nil
}

// lookup returns the factory bound to the name, or the zero value.
func (r *registry[F]) lookup(name string) F {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.factories[strings.ToLower(name)]
}

// get is like lookup but reports unknown names as an error.
func (r *registry[F]) get(name string) (F, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	factory, found := r.factories[strings.ToLower(name)]
	if !found {
		return factory, fmt.Errorf("%w: %s `%s`", ErrUnknownFactory, r.kind, name)
	}
	return factory, nil
}

func (r *registry[F]) all() map[string]F {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.factories)
}
