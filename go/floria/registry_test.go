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
	"errors"
	"testing"

	"go.uber.org/mock/gomock"
)

func TestRegistry_LookupIgnoresCase(t *testing.T) {
	r := newRegistry[int]("number")
	if err := r.register("One", 1, false); err != nil {
		t.Fatalf("failed to register: %v", err)
	}
	for _, name := range []string{"one", "ONE", "One", "oNe"} {
		if want, got := 1, r.lookup(name); want != got {
			t.Errorf("unexpected lookup result for %q, wanted %d, got %d", name, want, got)
		}
	}
	if got := r.lookup("two"); got != 0 {
		t.Errorf("unknown names should produce the zero value, got %d", got)
	}
}

func TestRegistry_InvalidRegistrationsAreRejected(t *testing.T) {
	r := newRegistry[int]("number")
	if err := r.register("one", 1, false); err != nil {
		t.Fatalf("failed to register: %v", err)
	}
	tests := map[string]struct {
		name  string
		isNil bool
	}{
		"duplicate":            {name: "one"},
		"duplicate other case": {name: "ONE"},
		"nil factory":          {name: "two", isNil: true},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			err := r.register(test.name, 2, test.isNil)
			if !errors.Is(err, ErrInvalidRegistration) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
	if want, got := 1, len(r.all()); want != got {
		t.Errorf("unexpected number of entries, wanted %d, got %d", want, got)
	}
}

func TestRegistry_GetReportsUnknownNames(t *testing.T) {
	r := newRegistry[int]("number")
	if _, err := r.get("one"); !errors.Is(err, ErrUnknownFactory) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRegistry_AllReturnsACopy(t *testing.T) {
	r := newRegistry[int]("number")
	if err := r.register("one", 1, false); err != nil {
		t.Fatalf("failed to register: %v", err)
	}
	all := r.all()
	all["two"] = 2
	if got := r.lookup("two"); got != 0 {
		t.Errorf("modifying the listing should not modify the registry")
	}
}

func TestInterpreterRegistry_ConfigurationIsForwarded(t *testing.T) {
	ctrl := gomock.NewController(t)
	interpreter := NewMockInterpreter(ctrl)

	var seen []any
	err := RegisterInterpreterFactory("interpreter-test1", func(config any) (Interpreter, error) {
		seen = append(seen, config)
		return interpreter, nil
	})
	if err != nil {
		t.Fatalf("failed to register factory: %v", err)
	}
	if GetInterpreterFactory("Interpreter-Test1") == nil {
		t.Errorf("registered factory not found")
	}
	if _, found := GetAllRegisteredInterpreters()["interpreter-test1"]; !found {
		t.Errorf("registered factory not listed")
	}

	if got, err := NewInterpreter("interpreter-test1"); err != nil || got != interpreter {
		t.Errorf("unexpected result: %v, %v", got, err)
	}
	if _, err := NewInterpreter("interpreter-test1", "config"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if len(seen) != 2 || seen[0] != nil || seen[1] != "config" {
		t.Errorf("unexpected configurations passed to factory: %v", seen)
	}
}

func TestInterpreterRegistry_InvalidUsesAreReported(t *testing.T) {
	if err := RegisterInterpreterFactory("interpreter-test2", nil); !errors.Is(err, ErrInvalidRegistration) {
		t.Errorf("registering a nil factory should fail, got %v", err)
	}
	if _, err := NewInterpreter("unknown-interpreter"); !errors.Is(err, ErrUnknownFactory) {
		t.Errorf("unexpected error for unknown interpreter: %v", err)
	}

	factory := func(any) (Interpreter, error) { return nil, nil }
	if err := RegisterInterpreterFactory("interpreter-test3", factory); err != nil {
		t.Fatalf("failed to register factory: %v", err)
	}
	if _, err := NewInterpreter("interpreter-test3", 1, 2); err == nil {
		t.Errorf("passing multiple configurations should fail, got %v", err)
	}
}
