// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package floria is a generated GoMock package.
package floria

import (
	reflect "reflect"

	gomock "go.uber.org/mock/gomock"
)

// MockStepObserver is a mock of StepObserver interface.
type MockStepObserver struct {
	ctrl     *gomock.Controller
	recorder *MockStepObserverMockRecorder
}

// MockStepObserverMockRecorder is the mock recorder for MockStepObserver.
type MockStepObserverMockRecorder struct {
	mock *MockStepObserver
}

// NewMockStepObserver creates a new mock instance.
func NewMockStepObserver(ctrl *gomock.Controller) *MockStepObserver {
	mock := &MockStepObserver{ctrl: ctrl}
	mock.recorder = &MockStepObserverMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockStepObserver) EXPECT() *MockStepObserverMockRecorder {
	return m.recorder
}

// OnStep mocks base method.
func (m *MockStepObserver) OnStep(arg0 StepSnapshot) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "OnStep", arg0)
}

// OnStep indicates an expected call of OnStep.
func (mr *MockStepObserverMockRecorder) OnStep(arg0 any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "OnStep", reflect.TypeOf((*MockStepObserver)(nil).OnStep), arg0)
}
