package wat

import (
	"context"
	"testing"

	"github.com/tetratelabs/wazero"
)

// run compiles src and loads the bytes into a bare wazero runtime with
// CompileModule, returning the runtime and compiled module for the caller
// to instantiate. It is the round-trip check for this package: rather than
// decoding the bytes back into an AST, it proves they are valid WASM by
// actually loading them.
func run(t *testing.T, src string) (context.Context, wazero.Runtime, wazero.CompiledModule) {
	t.Helper()
	code, err := Compile(src)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	t.Cleanup(func() { rt.Close(ctx) })

	compiled, err := rt.CompileModule(ctx, code)
	if err != nil {
		t.Fatalf("wazero rejected compiled output: %v", err)
	}
	t.Cleanup(func() { compiled.Close(ctx) })
	return ctx, rt, compiled
}

func TestCompile_MemoryAndExports(t *testing.T) {
	ctx, rt, compiled := run(t, `(module
		(memory (export "memory") 2)
		(func (export "hash_type") (result i32) (i32.const 7))
	)`)

	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName("m"))
	if err != nil {
		t.Fatalf("InstantiateModule: %v", err)
	}
	defer mod.Close(ctx)

	mem := mod.Memory()
	if mem == nil {
		t.Fatal("expected an exported memory")
	}
	if got, want := mem.Size(), uint32(2*65536); got != want {
		t.Fatalf("memory size = %d, want %d", got, want)
	}

	fn := mod.ExportedFunction("hash_type")
	if fn == nil {
		t.Fatal("expected hash_type to be exported")
	}
	res, err := fn.Call(ctx)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if len(res) != 1 || int32(res[0]) != 7 {
		t.Fatalf("hash_type() = %v, want [7]", res)
	}
}

func TestCompile_ImportedCallAndStore(t *testing.T) {
	ctx := context.Background()
	code, err := Compile(`(module
		(import "env" "get" (func $get (result i64)))
		(memory (export "memory") 1)
		(func (export "main")
			(i64.store (i32.const 0) (call $get)))
	)`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	_, err = rt.NewHostModuleBuilder("env").
		NewFunctionBuilder().
		WithFunc(func() int64 { return 42 }).
		Export("get").
		Instantiate(ctx)
	if err != nil {
		t.Fatalf("build env host module: %v", err)
	}

	compiled, err := rt.CompileModule(ctx, code)
	if err != nil {
		t.Fatalf("wazero rejected compiled output: %v", err)
	}
	defer compiled.Close(ctx)

	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName("m"))
	if err != nil {
		t.Fatalf("InstantiateModule: %v", err)
	}
	defer mod.Close(ctx)

	main := mod.ExportedFunction("main")
	if main == nil {
		t.Fatal("expected main to be exported")
	}
	if _, err := main.Call(ctx); err != nil {
		t.Fatalf("Call main: %v", err)
	}

	stored, ok := mod.Memory().ReadUint64Le(0)
	if !ok {
		t.Fatal("ReadUint64Le(0) out of range")
	}
	if stored != 42 {
		t.Fatalf("stored value = %d, want 42", stored)
	}
}

func TestCompile_RejectsUnsupportedForm(t *testing.T) {
	if _, err := Compile(`(module (table 1 1 funcref))`); err == nil {
		t.Fatal("expected an unsupported top-level form to error")
	}
}

func TestCompile_RejectsUnsupportedInstruction(t *testing.T) {
	if _, err := Compile(`(module (func (export "f") (drop (i32.const 1))))`); err == nil {
		t.Fatal("expected an unsupported instruction to error")
	}
}

func TestCompile_RejectsUnterminatedInput(t *testing.T) {
	if _, err := Compile(`(module (memory (export "memory") 1)`); err == nil {
		t.Fatal("expected unterminated input to error")
	}
}

func TestBuildModule_DedupesIdenticalFunctionTypes(t *testing.T) {
	root, err := parse(`(module
		(memory (export "memory") 1)
		(func (export "a") (result i32) (i32.const 1))
		(func (export "b") (result i32) (i32.const 2))
	)`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	m, err := buildModule(root.children[1:])
	if err != nil {
		t.Fatalf("buildModule: %v", err)
	}
	if len(m.types) != 1 {
		t.Fatalf("types = %d, want 1 (a and b share a signature)", len(m.types))
	}
}
