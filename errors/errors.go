package errors

import (
	"fmt"
	"strings"
)

// Phase indicates which stage of the host engine raised the error.
type Phase string

const (
	PhaseValidate Phase = "validate" // export/import ABI checks
	PhaseCompile  Phase = "compile"  // wazero module compilation
	PhaseLink     Phase = "link"     // host import registry resolution
	PhaseInstance Phase = "instance" // instantiation / pool reservation
	PhaseExecute  Phase = "execute"  // invocation pipeline
	PhaseHost     Phase = "host"     // host adapter / host context callback
)

// Kind categorizes the error, mirroring the engine's trap/validation taxonomy.
type Kind string

const (
	KindContractValidation Kind = "contract_validation"
	KindOutOfGas           Kind = "out_of_gas"
	KindUnreachable        Kind = "unreachable"
	KindStackExhausted     Kind = "stack_exhausted"
	KindInvalidMemory      Kind = "invalid_memory_access"
	KindRevert             Kind = "revert"
	KindUnknown            Kind = "unknown"

	// Non-trap kinds, raised outside the trap decoder.
	KindMissingImport  Kind = "missing_import"
	KindInvalidExport  Kind = "invalid_export"
	KindNotFound       Kind = "not_found"
	KindNotInitialized Kind = "not_initialized"
	KindInvalidInput   Kind = "invalid_input"
	KindInstantiation  Kind = "instantiation"
)

// Error is the structured error type used throughout the engine.
type Error struct {
	Cause     error
	Phase     Phase
	Kind      Kind
	Detail    string
	Contract  string // hex contract address, when known
	ImportFn  string // "namespace#name" for import/host errors
	GasLeft   int64
	HasGasLeft bool
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Contract != "" {
		b.WriteString(" contract=")
		b.WriteString(e.Contract)
	}
	if e.ImportFn != "" {
		b.WriteString(" import=")
		b.WriteString(e.ImportFn)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target matches this error by phase and kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != "" && t.Kind != e.Kind {
		return false
	}
	if t.Phase != "" && t.Phase != e.Phase {
		return false
	}
	return true
}

// Builder provides structured error construction.
type Builder struct {
	err Error
}

func New(phase Phase, kind Kind) *Builder {
	return &Builder{err: Error{Phase: phase, Kind: kind}}
}

func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

func (b *Builder) Contract(addr string) *Builder {
	b.err.Contract = addr
	return b
}

func (b *Builder) ImportFn(namespace, name string) *Builder {
	b.err.ImportFn = namespace + "#" + name
	return b
}

func (b *Builder) GasLeft(gas int64) *Builder {
	b.err.GasLeft = gas
	b.err.HasGasLeft = true
	return b
}

func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for the trap taxonomy.

func OutOfGas(phase Phase, detail string) *Error {
	return &Error{Phase: phase, Kind: KindOutOfGas, Detail: detail}
}

func Unreachable(detail string) *Error {
	return &Error{Phase: PhaseExecute, Kind: KindUnreachable, Detail: detail}
}

func StackExhausted(detail string) *Error {
	return &Error{Phase: PhaseExecute, Kind: KindStackExhausted, Detail: detail}
}

func InvalidMemoryAccess(detail string) *Error {
	return &Error{Phase: PhaseExecute, Kind: KindInvalidMemory, Detail: detail}
}

func Revert(returnValue []byte) *Error {
	return &Error{Phase: PhaseExecute, Kind: KindRevert, Detail: fmt.Sprintf("reverted with %d byte(s)", len(returnValue))}
}

func UnknownTrap(cause error) *Error {
	return &Error{Phase: PhaseExecute, Kind: KindUnknown, Cause: cause}
}

// ContractValidation wraps a validator rejection with the exact message
// the validator produced, so callers can surface it verbatim.
func ContractValidation(detail string) *Error {
	return &Error{Phase: PhaseValidate, Kind: KindContractValidation, Detail: detail}
}

func MissingImport(namespace, name string) *Error {
	return &Error{
		Phase:  PhaseLink,
		Kind:   KindMissingImport,
		Detail: fmt.Sprintf("no host import registered for %s#%s", namespace, name),
	}
}

func NotFound(phase Phase, what, name string) *Error {
	return &Error{Phase: phase, Kind: KindNotFound, Detail: fmt.Sprintf("%s %q not found", what, name)}
}

func NotInitialized(phase Phase, component string) *Error {
	return &Error{Phase: phase, Kind: KindNotInitialized, Detail: fmt.Sprintf("%s not initialized", component)}
}

func InvalidInput(phase Phase, detail string) *Error {
	return &Error{Phase: phase, Kind: KindInvalidInput, Detail: detail}
}

func Instantiation(cause error) *Error {
	return &Error{Phase: PhaseInstance, Kind: KindInstantiation, Detail: "instantiate module", Cause: cause}
}
