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

// MockPrecompiledContract is a mock of PrecompiledContract interface.
type MockPrecompiledContract struct {
	ctrl     *gomock.Controller
	recorder *MockPrecompiledContractMockRecorder
}

// MockPrecompiledContractMockRecorder is the mock recorder for MockPrecompiledContract.
type MockPrecompiledContractMockRecorder struct {
	mock *MockPrecompiledContract
}

// NewMockPrecompiledContract creates a new mock instance.
func NewMockPrecompiledContract(ctrl *gomock.Controller) *MockPrecompiledContract {
	mock := &MockPrecompiledContract{ctrl: ctrl}
	mock.recorder = &MockPrecompiledContractMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockPrecompiledContract) EXPECT() *MockPrecompiledContractMockRecorder {
	return m.recorder
}

// RequiredGas mocks base method.
func (m *MockPrecompiledContract) RequiredGas(arg0 Data) Gas {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "RequiredGas", arg0)
	ret0, _ := ret[0].(Gas)
	return ret0
}

// RequiredGas indicates an expected call of RequiredGas.
func (mr *MockPrecompiledContractMockRecorder) RequiredGas(arg0 any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "RequiredGas", reflect.TypeOf((*MockPrecompiledContract)(nil).RequiredGas), arg0)
}

// Run mocks base method.
func (m *MockPrecompiledContract) Run(arg0 Data) (Data, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Run", arg0)
	ret0, _ := ret[0].(Data)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Run indicates an expected call of Run.
func (mr *MockPrecompiledContractMockRecorder) Run(arg0 any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Run", reflect.TypeOf((*MockPrecompiledContract)(nil).Run), arg0)
}

// MockPrecompiles is a mock of Precompiles interface.
type MockPrecompiles struct {
	ctrl     *gomock.Controller
	recorder *MockPrecompilesMockRecorder
}

// MockPrecompilesMockRecorder is the mock recorder for MockPrecompiles.
type MockPrecompilesMockRecorder struct {
	mock *MockPrecompiles
}

// NewMockPrecompiles creates a new mock instance.
func NewMockPrecompiles(ctrl *gomock.Controller) *MockPrecompiles {
	mock := &MockPrecompiles{ctrl: ctrl}
	mock.recorder = &MockPrecompilesMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockPrecompiles) EXPECT() *MockPrecompilesMockRecorder {
	return m.recorder
}

// Get mocks base method.
func (m *MockPrecompiles) Get(arg0 Address) (PrecompiledContract, bool) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Get", arg0)
	ret0, _ := ret[0].(PrecompiledContract)
	ret1, _ := ret[1].(bool)
	return ret0, ret1
}

// Get indicates an expected call of Get.
func (mr *MockPrecompilesMockRecorder) Get(arg0 any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Get", reflect.TypeOf((*MockPrecompiles)(nil).Get), arg0)
}
