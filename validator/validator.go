// Package validator implements the contract-admission checks: a deployed
// module must export a memory named "memory", its function exports must be
// exactly deploy, main and hash_type, and every import it declares must
// resolve against the host import registry. Exports of other kinds
// (globals, tables, further memories) are not checked. It does not import
// wazero itself and uses nothing of the abi package beyond abi.Lookup (for
// name membership) and a narrow description of a compiled module — the
// same decoupling the host package uses to stay runtime-agnostic.
package validator

import (
	"fmt"
	"sort"

	"github.com/bcosnet/wasmhost/abi"
)

// Import names one function a module declares as an import.
type Import struct {
	Module string
	Name   string
}

// ModuleInfo is the subset of a compiled module's static shape the
// validator needs. An engine.CompiledModule satisfies this without a
// wrapper type.
type ModuleInfo interface {
	ExportedFunctionNames() []string
	ExportedMemoryNames() []string
	ImportedFunctions() []Import
}

// requiredExports is the exact BCI function export surface. "memory" is
// checked separately, against ExportedMemoryNames, since it is a memory
// export rather than a function.
var requiredExports = []string{"deploy", "main", "hash_type"}

// Validate checks mod against the BCI export policy and the host import
// allow-lists, returning a descriptive error naming the mismatch on
// failure. debugEnabled controls whether imports from the debug namespace
// are admitted: a module importing from "debug" against a runtime that
// didn't register the debug host module would otherwise fail much later,
// at instantiation, with an unrelated "module not registered" error.
func Validate(mod ModuleInfo, debugEnabled bool) error {
	if err := validateExports(mod); err != nil {
		return err
	}
	return validateImports(mod, debugEnabled)
}

func validateExports(mod ModuleInfo) error {
	mems := mod.ExportedMemoryNames()
	if !contains(mems, "memory") {
		return fmt.Errorf("BCI export \"memory\" is not exported")
	}

	fns := mod.ExportedFunctionNames()
	fnSet := toSet(fns)
	for _, want := range requiredExports {
		if !fnSet[want] {
			return fmt.Errorf("BCI exports %v are not all exported: missing %q", requiredExports, want)
		}
	}

	extra := extraFunctionExports(fns)
	if len(extra) > 0 {
		sort.Strings(extra)
		return fmt.Errorf("module exports unexpected functions beyond the BCI: %v", extra)
	}
	return nil
}

// extraFunctionExports returns exported function names outside the BCI's
// required set. Optional compiler-emitted globals (__data_end, __heap_base)
// are not function exports and never reach this check.
func extraFunctionExports(fns []string) []string {
	want := toSet(requiredExports)
	var extra []string
	for _, name := range fns {
		if !want[name] {
			extra = append(extra, name)
		}
	}
	return extra
}

func validateImports(mod ModuleInfo, debugEnabled bool) error {
	for _, imp := range mod.ImportedFunctions() {
		switch imp.Module {
		case abi.ModuleEthereum, abi.ModuleBcos:
		case abi.ModuleDebug:
			if !debugEnabled {
				return fmt.Errorf("import %s.%s: debug imports are disabled for this runtime", imp.Module, imp.Name)
			}
		default:
			return fmt.Errorf("import %s.%s: unknown host module %q", imp.Module, imp.Name, imp.Module)
		}
		if _, ok := abi.Lookup(imp.Module, imp.Name); !ok {
			return fmt.Errorf("import %s.%s is not in the host import registry", imp.Module, imp.Name)
		}
	}
	return nil
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

func contains(names []string, target string) bool {
	for _, n := range names {
		if n == target {
			return true
		}
	}
	return false
}
