// Package errors provides the structured error type shared by every layer of
// the host engine.
//
// Errors are categorized by Phase (where the error occurred) and Kind (the
// taxonomy entry it maps to, per the trap decoder). Use the Builder for
// structured construction:
//
//	err := errors.New(errors.PhaseExecute, errors.KindOutOfGas).
//		Contract(addrHex).
//		GasLeft(-1).
//		Detail("useGas requested more than remains").
//		Build()
//
// or the convenience constructors for the trap taxonomy:
//
//	err := errors.OutOfGas(errors.PhaseExecute, "Out of gas.")
//
// All errors implement the standard error interface and support errors.Is.
package errors
