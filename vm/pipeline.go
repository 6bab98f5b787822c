package vm

import (
	"context"
	"fmt"

	"github.com/bcosnet/wasmhost/engine"
	"github.com/bcosnet/wasmhost/errors"
	"github.com/bcosnet/wasmhost/host"
	"github.com/bcosnet/wasmhost/trap"
)

// Message identifies one invocation; it is exactly host.Message, since the
// engine surface and the host adapter agree on its shape and a second,
// distinct type would just be copied field for field.
type Message = host.Message

// Result is the outcome of one Execute call.
type Result struct {
	GasLeft     int64
	ReturnValue []byte
	IsRevert    bool
	Status      trap.Status
}

// Execute reserves an instance for message.Destination, binds a fresh
// adapter, runs the Create-kind hash check if applicable, invokes the
// resolved entry point, and decodes whatever trap (or clean return)
// results.
//
// The returned error is non-nil only for pipeline-level failures that
// precede the entry point running: the gas hard-cap check, contract
// validation, instantiation, a missing entry-point export, or the
// Create-kind hash_type check (a failed hash_type call or a hash mismatch).
// Every other outcome — including gas
// exhaustion, reverts, and unreachable traps — comes back as a Result with
// the corresponding Status; callers branch on Result.Status, not on error,
// to learn how a call actually ended.
func (e *Engine) Execute(ctx context.Context, hc host.Context, code []byte, msg Message) (Result, error) {
	if e.cfg.GasLimitHardCap > 0 && msg.Gas > e.cfg.GasLimitHardCap {
		return Result{}, errors.InvalidInput(errors.PhaseExecute, "gas exceeds configured hard cap")
	}

	adapter := host.NewAdapter(hc, msg)
	if e.cfg.EnableDebugImports {
		adapter.SetLogger(engine.Logger().Sugar())
	}

	p, err := e.cache.GetOrCompile(ctx, msg.Destination, code)
	if err != nil {
		return Result{}, err
	}

	reservation, err := p.Reserve(ctx)
	if err != nil {
		return Result{}, err
	}
	defer reservation.Release()

	inst := reservation.Instance()
	inst.Slot().Bind(adapter)
	defer inst.Slot().Unbind()

	adapter.SetMemory(inst.Memory())
	adapter.SetCode(inst.Code())

	entry := "main"
	if msg.Kind == host.MessageCreate {
		entry = "deploy"
		if err := checkHashType(ctx, inst, hc); err != nil {
			return Result{}, err
		}
	}

	fn, err := inst.ExportedFunction(entry)
	if err != nil {
		return Result{}, err
	}

	_, callErr := fn.Call(ctx)
	status := trap.Decode(callErr)

	result := Result{
		GasLeft:     adapter.Result.GasLeft,
		ReturnValue: adapter.Result.ReturnValue,
		IsRevert:    status != trap.StatusSuccess,
		Status:      status,
	}

	if msg.Kind == host.MessageCreate && status == trap.StatusSuccess {
		result.ReturnValue = code
	}

	engine.Logger().Sugar().Debugw("execute",
		"address", fmt.Sprintf("%x", msg.Destination),
		"entry", entry,
		"status", status,
		"gas_left", result.GasLeft,
	)

	return result, nil
}

// checkHashType enforces that, on a Create message, the deployed module's
// hash_type() export agrees with the host's active hash algorithm before
// deploy ever runs.
func checkHashType(ctx context.Context, inst *engine.Instance, hc host.Context) error {
	fn, err := inst.ExportedFunction("hash_type")
	if err != nil {
		return err
	}
	results, err := fn.Call(ctx)
	if err != nil {
		return errors.New(errors.PhaseValidate, errors.KindContractValidation).
			Cause(err).Detail("hash_type call failed").Build()
	}
	got := host.HashAlgorithm(int32(results[0]))
	if got != hc.ActiveHashAlgorithm() {
		return errors.ContractValidation("hash type mismatch")
	}
	return nil
}
