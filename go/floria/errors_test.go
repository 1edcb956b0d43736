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
	"fmt"
	"testing"
)

func TestConstError_Error(t *testing.T) {
	const myError = ConstError("this is a constant error")
	if want, got := "this is a constant error", myError.Error(); want != got {
		t.Errorf("unexpected error message, wanted %q, got %q", want, got)
	}
	if !errors.Is(myError, ConstError("this is a constant error")) {
		t.Errorf("errors.Is failed to identify equal constant errors")
	}
}

func TestIsExecutionException_IdentifiesEnumeratedExceptions(t *testing.T) {
	for _, err := range executionExceptions {
		if !IsExecutionException(err) {
			t.Errorf("%v not recognized as execution exception", err)
		}
		if !IsExecutionException(fmt.Errorf("wrapped: %w", err)) {
			t.Errorf("wrapped %v not recognized as execution exception", err)
		}
	}
}

func TestIsExecutionException_RejectsOtherErrors(t *testing.T) {
	tests := map[string]error{
		"nil":       nil,
		"plain":     errors.New("out of gas"),
		"const":     ConstError("something else"),
		"formatted": fmt.Errorf("failure: %v", ErrOutOfGas),
	}
	for name, err := range tests {
		t.Run(name, func(t *testing.T) {
			if IsExecutionException(err) {
				t.Errorf("%v should not be an execution exception", err)
			}
		})
	}
}
