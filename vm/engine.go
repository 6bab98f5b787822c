// Package vm is the engine surface exported to the enclosing blockchain
// node: verify a contract's bytecode, execute one message against it, and
// tear everything down at process shutdown. It wires together the
// validator (via engine.Compile), the module cache and instance pool
// (package pool), and the invocation pipeline (pipeline.go) behind two
// operations.
package vm

import (
	"context"

	"github.com/bcosnet/wasmhost/engine"
	"github.com/bcosnet/wasmhost/pool"
)

// Config is the engine's own configuration surface — a plain struct
// literal, matching engine.Config's shape rather than a separate
// config-file format.
type Config struct {
	// MemoryLimitPages caps linear memory per instance, in 64KiB pages. 0
	// means the runtime's default (4GiB).
	MemoryLimitPages uint32
	// EnableDebugImports registers the debug-module print* host imports
	// and relaxes the validator to accept "debug" as an import module.
	EnableDebugImports bool
	// GasLimitHardCap, if non-zero, rejects any Message whose Gas exceeds
	// it before the pipeline spends any cycles on it.
	GasLimitHardCap int64
}

// Engine is the process-wide entry point: one per blockchain node process,
// shared across every contract address it ever executes.
type Engine struct {
	rt    *engine.Runtime
	cache *pool.Cache
	cfg   Config
}

// New builds an Engine, starting the underlying wazero runtime and
// registering the host import namespaces.
func New(ctx context.Context, cfg Config) (*Engine, error) {
	rt, err := engine.New(ctx, engine.Config{
		MemoryLimitPages: cfg.MemoryLimitPages,
		DebugImports:     cfg.EnableDebugImports,
	})
	if err != nil {
		return nil, err
	}
	return &Engine{rt: rt, cache: pool.NewCache(rt), cfg: cfg}, nil
}

// Verify runs the export/import admission check on code without installing
// it in the module cache or instance pool — a standalone compile-and-
// validate, discarded immediately afterward.
func (e *Engine) Verify(ctx context.Context, code []byte) error {
	compiled, err := e.rt.Compile(ctx, code)
	if err != nil {
		engine.Logger().Sugar().Debugw("verify failed", "error", err)
		return err
	}
	return compiled.Close(ctx)
}

// Close tears down the wazero runtime, releasing every compiled module and
// instance reachable from the module cache.
func (e *Engine) Close(ctx context.Context) error {
	return e.rt.Close(ctx)
}
