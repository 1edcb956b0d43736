// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package executive runs single transactions against a world state. An
// Executive passes through admission (Setup), dispatch (Call or Create), the
// run of the interpreter (Go) and finalization (Finalize) in this order.
// Admission failures leave the state untouched, execution exceptions are
// reverted and consume all gas, and implementation defects are reported as
// InternalError.
package executive

import (
	"fmt"
	"time"

	"github.com/Fantom-foundation/Floria/go/floria"
	"github.com/Fantom-foundation/Floria/go/precompiled"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
)

// MaxDepth is the default bound of nested calls.
const MaxDepth = 1024

type stage int

const (
	stageNew     stage = iota
	stageRunning       // < dispatched, the interpreter still needs to run
	stageDone          // < ready for finalization
	stageFinalized
	stageFailed // < rejected at admission or aborted by a defect
)

// Option customizes an Executive.
type Option func(*Executive)

// WithPrecompiles replaces the precompiled contracts of the block's revision.
func WithPrecompiles(precompiles floria.Precompiles) Option {
	return func(e *Executive) { e.precompiles = precompiles }
}

// WithSchedule replaces the gas schedule of the block's revision.
func WithSchedule(schedule Schedule) Option {
	return func(e *Executive) { e.schedule = schedule }
}

// WithObserver registers an observer informed about every executed
// instruction, including those of nested calls.
func WithObserver(observer floria.StepObserver) Option {
	return func(e *Executive) { e.observer = observer }
}

// WithStepLimit bounds the number of instructions a single call of Go may
// execute in the outermost frame. Values <= 0 disable the limit.
func WithStepLimit(limit int) Option {
	return func(e *Executive) { e.stepLimit = limit }
}

func WithMaxDepth(depth int) Option {
	return func(e *Executive) { e.maxDepth = depth }
}

// WithSigner sets the signer used to recover senders of raw transactions.
func WithSigner(signer types.Signer) Option {
	return func(e *Executive) { e.signer = signer }
}

func WithLogger(logger log.Logger) Option {
	return func(e *Executive) { e.logger = logger }
}

// Executive executes a single transaction. It is not safe for concurrent use
// and may not be reused for a second transaction.
type Executive struct {
	world       floria.WorldState
	block       floria.BlockParameters
	blockGas    floria.Gas // < gas used by earlier transactions of the block
	interpreter floria.Interpreter
	precompiles floria.Precompiles
	schedule    Schedule
	observer    floria.StepObserver
	stepLimit   int
	maxDepth    int
	signer      types.Signer
	logger      log.Logger

	depth  int
	parent *executionContext // < the context issuing this nested call, nil for transactions

	stage      stage
	admitted   bool
	sender     floria.Address
	origin     floria.Address
	gasPrice   floria.Value
	gasLimit   floria.Gas // < gas bought for this execution
	isCreation bool
	newAddress floria.Address
	started    time.Time

	params       floria.Parameters
	ctx          *executionContext
	continuation floria.Continuation
	gasLeft      floria.Gas

	endGas   floria.Gas
	output   floria.Data
	logs     []floria.Log
	excepted bool
}

// New creates an Executive for one transaction of the given block. The
// gasUsed parameter is the gas consumed by the transactions of the block
// executed before.
func New(
	world floria.WorldState,
	block floria.BlockParameters,
	gasUsed floria.Gas,
	interpreter floria.Interpreter,
	options ...Option,
) *Executive {
	e := &Executive{
		world:       world,
		block:       block,
		blockGas:    gasUsed,
		interpreter: interpreter,
		precompiles: precompiled.NewRegistry(block.Revision),
		schedule:    ScheduleFor(block.Revision),
		maxDepth:    MaxDepth,
		signer:      types.HomesteadSigner{},
		logger:      log.Root(),
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// Setup decodes the given raw transaction, recovers its sender and admits it
// as SetupTransaction does.
func (e *Executive) Setup(raw []byte) (bool, error) {
	if e.stage != stageNew {
		return false, ErrInvalidStage
	}
	tx, err := DecodeTransaction(raw, e.signer)
	if err != nil {
		e.reject(err)
		return false, err
	}
	return e.SetupTransaction(tx)
}

// SetupTransaction checks whether the transaction may be executed. If so,
// the nonce of the sender is incremented, the sender pays the value and the
// gas limit upfront and the transaction is dispatched. The result reports
// whether the execution is finished or Go needs to be called.
func (e *Executive) SetupTransaction(tx floria.Transaction) (bool, error) {
	if e.stage != stageNew {
		return false, ErrInvalidStage
	}

	nonce := e.world.GetNonce(tx.Sender)
	if nonce != tx.Nonce {
		e.logger.Debug("Invalid nonce", "required", nonce, "got", tx.Nonce)
		return false, e.reject(&InvalidNonceError{Required: nonce, Got: tx.Nonce})
	}

	intrinsicGas := e.schedule.IntrinsicGas(tx.Input, tx.IsCreation())
	if tx.GasLimit < intrinsicGas {
		e.logger.Debug("Not enough gas to pay for the transaction", "required", intrinsicGas, "got", tx.GasLimit)
		return false, e.reject(&OutOfGasError{Required: intrinsicGas, Got: tx.GasLimit})
	}

	cost, overflow := upfrontCosts(tx)
	balance := e.world.GetBalance(tx.Sender)
	if overflow || balance.Cmp(cost) < 0 {
		e.logger.Debug("Not enough cash", "required", cost, "available", balance)
		return false, e.reject(&NotEnoughCashError{Required: cost, Available: balance})
	}

	if remaining := e.block.GasLimit - e.blockGas; tx.GasLimit > remaining {
		e.logger.Debug("Too much gas used in this block", "remaining", remaining, "requested", tx.GasLimit)
		return false, e.reject(&BlockGasLimitReachedError{Remaining: remaining, Requested: tx.GasLimit})
	}

	admittedCounter.Inc(1)
	e.admitted = true
	e.gasLimit = tx.GasLimit

	floria.IncrementNonce(e.world, tx.Sender)
	e.logger.Trace("Paying for transaction", "sender", tx.Sender, "costs", cost, "value", tx.Value, "gas", tx.GasLimit, "gasPrice", tx.GasPrice)
	floria.SubBalance(e.world, tx.Sender, cost)

	gas := tx.GasLimit - intrinsicGas
	if tx.IsCreation() {
		return e.create(tx.Sender, tx.Value, tx.GasPrice, gas, floria.Code(tx.Input), tx.Sender), nil
	}
	return e.call(floria.Call, floria.CallParameters{
		Sender:      tx.Sender,
		Recipient:   *tx.Recipient,
		CodeAddress: *tx.Recipient,
		Value:       tx.Value,
		Input:       tx.Input,
		Gas:         gas,
	}, tx.GasPrice, tx.Sender), nil
}

func (e *Executive) reject(err error) error {
	e.stage = stageFailed
	rejectedCounter.Inc(1)
	return err
}

// upfrontCosts computes value + gasLimit * gasPrice. On overflow the maximum
// value is returned.
func upfrontCosts(tx floria.Transaction) (floria.Value, bool) {
	fee, overflow := tx.GasPrice.ScaleOverflow(uint64(tx.GasLimit))
	if overflow {
		return maxValue(), true
	}
	cost, overflow := floria.AddOverflow(tx.Value, fee)
	if overflow {
		return maxValue(), true
	}
	return cost, false
}

func maxValue() (res floria.Value) {
	for i := range res {
		res[i] = 0xff
	}
	return res
}

// Call dispatches a message call without admission checks, using the given
// gas as the gas limit. The value is credited to the recipient but not
// debited from the sender; callers are responsible for that.
func (e *Executive) Call(params floria.CallParameters, gasPrice floria.Value, origin floria.Address) (bool, error) {
	if e.stage != stageNew {
		return false, ErrInvalidStage
	}
	e.gasLimit = params.Gas
	return e.call(floria.Call, params, gasPrice, origin), nil
}

// Create dispatches a contract creation without admission checks, using the
// given gas as the gas limit. The nonce of the sender must already be
// incremented for this creation.
func (e *Executive) Create(
	sender floria.Address,
	endowment floria.Value,
	gasPrice floria.Value,
	gas floria.Gas,
	init floria.Code,
	origin floria.Address,
) (bool, error) {
	if e.stage != stageNew {
		return false, ErrInvalidStage
	}
	e.gasLimit = gas
	return e.create(sender, endowment, gasPrice, gas, init, origin), nil
}

func (e *Executive) call(kind floria.CallKind, params floria.CallParameters, gasPrice floria.Value, origin floria.Address) bool {
	e.dispatch(params.Sender, gasPrice, origin, params.Gas)

	if kind != floria.DelegateCall {
		floria.AddBalance(e.world, params.Recipient, params.Value)
	}

	if floria.IsReservedAddress(params.CodeAddress) && e.precompiles != nil {
		if contract, found := e.precompiles.Get(params.CodeAddress); found {
			e.runPrecompiled(contract, params)
			return e.done()
		}
	}

	if !floria.HasCode(e.world, params.CodeAddress) {
		e.endGas = params.Gas
		return e.done()
	}

	code := e.world.GetCode(params.CodeAddress)

	codeHash := e.world.GetCodeHash(params.CodeAddress)
	e.ctx = newExecutionContext(e, e.world)
	e.params = floria.Parameters{
		Context:   e.ctx,
		Revision:  e.block.Revision,
		Depth:     e.depth,
		Gas:       params.Gas,
		Recipient: params.Recipient,
		Sender:    params.Sender,
		Origin:    origin,
		Input:     params.Input,
		Value:     params.Value,
		GasPrice:  gasPrice,
		CodeHash:  &codeHash,
		Code:      code,
		StepLimit: e.stepLimit,
		Observer:  e.observer,
	}
	return false
}

func (e *Executive) create(
	sender floria.Address,
	endowment floria.Value,
	gasPrice floria.Value,
	gas floria.Gas,
	init floria.Code,
	origin floria.Address,
) bool {
	e.dispatch(sender, gasPrice, origin, gas)
	e.isCreation = true
	e.newAddress = ContractAddress(sender, e.world.GetNonce(sender)-1)

	// The address may have been funded before, the balance is retained while
	// everything else starts from scratch.
	balance := e.world.GetBalance(e.newAddress)
	e.world.DeleteAccount(e.newAddress)
	e.world.SetBalance(e.newAddress, floria.Add(balance, endowment))

	if len(init) == 0 {
		e.endGas = gas
		return e.done()
	}

	codeHash := floria.HashCode(init)
	e.ctx = newExecutionContext(e, e.world)
	e.params = floria.Parameters{
		Context:   e.ctx,
		Revision:  e.block.Revision,
		Depth:     e.depth,
		Gas:       gas,
		Recipient: e.newAddress,
		Sender:    sender,
		Origin:    origin,
		Value:     endowment,
		GasPrice:  gasPrice,
		CodeHash:  &codeHash,
		Code:      init,
		StepLimit: e.stepLimit,
		Observer:  e.observer,
	}
	return false
}

func (e *Executive) dispatch(sender floria.Address, gasPrice floria.Value, origin floria.Address, gas floria.Gas) {
	e.stage = stageRunning
	e.started = time.Now()
	e.sender = sender
	e.gasPrice = gasPrice
	e.origin = origin
	e.gasLeft = gas
}

func (e *Executive) runPrecompiled(contract floria.PrecompiledContract, params floria.CallParameters) {
	required := contract.RequiredGas(params.Input)
	if params.Gas < required {
		e.except(fmt.Errorf("%w: precompiled contract requires %d gas, got %d", floria.ErrOutOfGas, required, params.Gas))
		return
	}
	output, err := contract.Run(params.Input)
	if err != nil {
		e.except(fmt.Errorf("%w: %w", floria.ErrPrecompileFailed, err))
		return
	}
	e.endGas = params.Gas - required
	e.output = output
}

// Go runs the interpreter. It returns false while the run is suspended due to
// the step limit, in which case Go needs to be called again to resume it.
// Execution exceptions are handled: the effects of the execution are
// reverted, all gas is consumed and the result is true. Errors are only
// reported for misuse and implementation defects.
func (e *Executive) Go() (bool, error) {
	switch e.stage {
	case stageDone:
		return true, nil
	case stageRunning:
	default:
		return false, ErrInvalidStage
	}

	var result floria.Result
	var err error
	if e.continuation != nil {
		result, err = e.continuation.Continue(e.stepLimit)
	} else {
		result, err = e.interpreter.Run(e.params)
	}
	if err != nil {
		return false, e.defect(fmt.Errorf("interpreter failed: %w", err))
	}
	if result.GasLeft < 0 || result.GasLeft > e.params.Gas {
		return false, e.defect(fmt.Errorf("interpreter reported %d gas left out of %d", result.GasLeft, e.params.Gas))
	}

	switch result.Status {
	case floria.Suspended:
		if result.Continuation == nil || e.stepLimit <= 0 {
			return false, e.defect(fmt.Errorf("unexpected suspension of run"))
		}
		e.continuation = result.Continuation
		e.gasLeft = result.GasLeft
		return false, nil

	case floria.Completed:
		e.complete(result)

	case floria.Excepted:
		if !floria.IsExecutionException(result.Exception) {
			return false, e.defect(fmt.Errorf("unknown exception: %v", result.Exception))
		}
		e.except(result.Exception)

	default:
		return false, e.defect(fmt.Errorf("unknown result status: %v", result.Status))
	}
	return e.done(), nil
}

func (e *Executive) complete(result floria.Result) {
	e.continuation = nil
	e.endGas = result.GasLeft
	if e.depth == 0 {
		e.endGas += min((e.gasLimit-e.endGas)/2, e.ctx.refund)
	}
	e.logs = e.ctx.logs
	e.output = result.Output

	if e.isCreation {
		if costs := e.schedule.DepositCosts(e.output); costs <= e.endGas {
			e.endGas -= costs
		} else {
			e.output = nil
		}
	}
}

func (e *Executive) except(err error) {
	e.logger.Debug("Safe VM exception", "err", err, "depth", e.depth)
	e.continuation = nil
	e.endGas = 0
	e.output = nil
	e.logs = nil
	e.excepted = true
	if e.ctx != nil {
		e.ctx.revert()
	}
	exceptedCounter.Inc(1)
}

func (e *Executive) defect(err error) error {
	e.stage = stageFailed
	e.continuation = nil
	e.logger.Error("Execution aborted by internal error", "err", err, "depth", e.depth)
	defectCounter.Inc(1)
	return &InternalError{Err: err}
}

func (e *Executive) done() bool {
	e.stage = stageDone
	if e.depth == 0 {
		elapsed := time.Since(e.started)
		runTimer.Update(elapsed)
		gasMeter.Mark(int64(e.GasUsed()))
		e.logger.Debug("Execution done", "elapsed", elapsed, "gasUsed", e.GasUsed(), "excepted", e.excepted)
	}
	return true
}

// Finalize applies the outcome of the execution to the world state: the
// code of a created contract is deployed, unused gas is refunded to the
// sender, used gas is paid to the coinbase and self-destructed accounts are
// removed. Payments only take place for admitted transactions.
func (e *Executive) Finalize() (floria.Receipt, error) {
	if e.stage != stageDone {
		return floria.Receipt{}, ErrInvalidStage
	}
	e.stage = stageFinalized

	e.settle()

	if e.admitted {
		floria.AddBalance(e.world, e.sender, e.gasPrice.Scale(uint64(e.endGas)))
		floria.AddBalance(e.world, e.block.Coinbase, e.gasPrice.Scale(uint64(e.gasLimit-e.endGas)))
	}

	if e.ctx != nil {
		for _, address := range e.ctx.selfDestructs {
			e.world.DeleteAccount(address)
		}
	}

	receipt := floria.Receipt{
		Success: !e.excepted,
		GasUsed: e.GasUsed(),
		Output:  e.output,
		Logs:    e.logs,
	}
	if e.isCreation {
		address := e.newAddress
		receipt.ContractAddress = &address
	}
	return receipt, nil
}

// settle merges the effects of the execution into the world state of this
// executive and deploys the code of a created contract.
func (e *Executive) settle() {
	if e.ctx != nil {
		e.ctx.commit()
	}
	if e.isCreation && !e.hasSelfDestructed(e.newAddress) {
		e.world.SetCode(e.newAddress, floria.Code(e.output))
	}
}

func (e *Executive) hasSelfDestructed(address floria.Address) bool {
	return e.ctx != nil && e.ctx.HasSelfDestructed(address)
}

// GasUsed is the gas charged for the execution so far.
func (e *Executive) GasUsed() floria.Gas {
	return e.gasLimit - e.endGas
}

// EndGas is the gas left after the execution, including refunds.
func (e *Executive) EndGas() floria.Gas {
	return e.endGas
}

// Gas is the gas currently left, tracking suspended runs.
func (e *Executive) Gas() floria.Gas {
	if e.stage == stageRunning {
		return e.gasLeft
	}
	return e.endGas
}

func (e *Executive) Output() floria.Data {
	return e.output
}

func (e *Executive) Logs() []floria.Log {
	return e.logs
}

// Excepted reports whether the execution ended with an execution exception.
func (e *Executive) Excepted() bool {
	return e.excepted
}

// NewAddress is the address of the created contract, only valid for
// creations.
func (e *Executive) NewAddress() floria.Address {
	return e.newAddress
}

func (e *Executive) Sender() floria.Address {
	return e.sender
}

func (e *Executive) IsCreation() bool {
	return e.isCreation
}

func (e *Executive) Depth() int {
	return e.depth
}
