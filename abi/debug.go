package abi

import (
	"encoding/hex"
	"fmt"

	"github.com/bcosnet/wasmhost/host"
)

// debugEntries builds the debug-only import block, admitted only when the
// runtime was built with debug imports enabled. These never touch gas
// accounting and only read Context (printStorage/printStorageHex load a
// storage value) — they exist purely to let a contract author inspect
// values while iterating, so they write to the adapter's attached logger
// rather than guest memory.
func debugEntries() map[string]Entry {
	return map[string]Entry{
		"print32": bind(i32, sigNone, func(a *host.Adapter, stack []uint64) {
			a.Debugf("print32: %d", int32(stack[0]))
		}),
		"print64": bind(i64, sigNone, func(a *host.Adapter, stack []uint64) {
			a.Debugf("print64: %d", int64(stack[0]))
		}),
		"printMem": bind(i32_2, sigNone, func(a *host.Adapter, stack []uint64) {
			data := a.ReadMemory(uint32(stack[0]), uint32(stack[1]))
			a.Debugf("printMem: %s", fmt.Sprintf("%q", data))
		}),
		"printMemHex": bind(i32_2, sigNone, func(a *host.Adapter, stack []uint64) {
			data := a.ReadMemory(uint32(stack[0]), uint32(stack[1]))
			a.Debugf("printMemHex: %s", hex.EncodeToString(data))
		}),
		"printStorage": bind(i32, sigNone, func(a *host.Adapter, stack []uint64) {
			key := readHash(a, uint32(stack[0]))
			value := a.Context.GetStorage(key)
			a.Debugf("printStorage: %s", fmt.Sprintf("%q", value[:]))
		}),
		"printStorageHex": bind(i32, sigNone, func(a *host.Adapter, stack []uint64) {
			key := readHash(a, uint32(stack[0]))
			value := a.Context.GetStorage(key)
			a.Debugf("printStorageHex: %s", hex.EncodeToString(value[:]))
		}),
	}
}
