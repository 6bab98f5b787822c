package host

import (
	"fmt"

	"go.uber.org/zap"
)

// MemoryView is the bounds-checked accessor into one instance's linear
// memory. wazero's api.Memory already has this exact method set, so an
// engine built on wazero can hand its memory straight to an Adapter with no
// wrapper type.
type MemoryView interface {
	Read(offset, length uint32) ([]byte, bool)
	Write(offset uint32, data []byte) bool
	Size() uint32
}

// Result is the outcome fields an Adapter accumulates during one
// invocation.
type Result struct {
	ReturnValue []byte
	IsRevert    bool
	GasLeft     int64
}

// Adapter is the per-invocation carrier every host-import thunk operates
// on. It is built fresh by the invocation pipeline for the duration of one
// call and never shared across concurrent invocations.
type Adapter struct {
	GasLeft int64
	Memory  MemoryView
	Result  Result
	Context Context
	Message Message
	// Code is the invoked contract's own bytecode, exposed to the guest via
	// codeCopy/getCodeSize. Set once by the pipeline alongside the memory
	// view.
	Code []byte
	// Logger backs the debug-module print* imports. Nil in non-debug builds,
	// where debugEntries is never registered anyway.
	Logger *zap.SugaredLogger
}

// Debugf logs a debug-module print* call. A no-op if no logger is attached.
func (a *Adapter) Debugf(format string, args ...any) {
	if a.Logger == nil {
		return
	}
	a.Logger.Debugf(format, args...)
}

// SetLogger attaches the logger the debug-module imports write to.
func (a *Adapter) SetLogger(l *zap.SugaredLogger) {
	a.Logger = l
}

// NewAdapter builds an Adapter for one invocation. Memory is attached later
// via SetMemory once the reserved instance's memory is known.
func NewAdapter(ctx Context, msg Message) *Adapter {
	return &Adapter{
		GasLeft: msg.Gas,
		Context: ctx,
		Message: msg,
		Result:  Result{GasLeft: msg.Gas},
	}
}

// SetMemory attaches the reserved instance's memory view.
func (a *Adapter) SetMemory(mem MemoryView) {
	a.Memory = mem
}

// SetCode attaches the invoked contract's bytecode.
func (a *Adapter) SetCode(code []byte) {
	a.Code = code
}

// UseGas deducts amount from GasLeft. A negative amount or an amount that
// would drive GasLeft below zero traps with the exact reserved messages
// the trap decoder recognizes.
func (a *Adapter) UseGas(amount int64) {
	if amount < 0 {
		panic("Negative gas supplied.")
	}
	a.GasLeft -= amount
	if a.GasLeft < 0 {
		a.GasLeft = 0
		a.Result.GasLeft = 0
		panic("Out of gas.")
	}
	a.Result.GasLeft = a.GasLeft
}

// ReadMemory returns length bytes at offset, or traps with a message
// containing "memory access" on an out-of-bounds read.
func (a *Adapter) ReadMemory(offset, length uint32) []byte {
	data, ok := a.Memory.Read(offset, length)
	if !ok {
		panic(fmt.Sprintf("memory access out of bounds: offset=%d length=%d", offset, length))
	}
	return data
}

// WriteMemory writes data at offset, or traps the same way as ReadMemory.
func (a *Adapter) WriteMemory(offset uint32, data []byte) {
	if !a.Memory.Write(offset, data) {
		panic(fmt.Sprintf("memory access out of bounds: offset=%d length=%d", offset, len(data)))
	}
}

// Finish records a clean, non-reverting termination and traps with the
// reserved "finish" message, the sole protocol by which a host function
// hands control back to the pipeline on success.
func (a *Adapter) Finish(data []byte) {
	a.Result.ReturnValue = data
	a.Result.IsRevert = false
	a.Result.GasLeft = a.GasLeft
	panic("finish")
}

// Revert records a reverting termination and traps with the reserved
// "revert" message.
func (a *Adapter) Revert(data []byte) {
	a.Result.ReturnValue = data
	a.Result.IsRevert = true
	a.Result.GasLeft = a.GasLeft
	panic("revert")
}
