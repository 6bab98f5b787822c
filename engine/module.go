package engine

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/bcosnet/wasmhost/abi"
	"github.com/bcosnet/wasmhost/errors"
	"github.com/bcosnet/wasmhost/host"
	"github.com/bcosnet/wasmhost/validator"
)

// Config configures the shared wazero runtime. Kept deliberately small:
// this engine runs bare core WASM modules, not components, so there is no
// WASI or canon-ABI surface to configure.
type Config struct {
	// MemoryLimitPages caps linear memory per instance, in 64KiB pages.
	// 0 means wazero's default (65536 pages, 4GiB).
	MemoryLimitPages uint32
	// DebugImports registers the debug-module print* host imports
	// alongside ethereum/bcos. Disabled by default; enabling it also
	// relaxes the validator's import allow-list to accept "debug".
	DebugImports bool
}

// Runtime owns the wazero runtime and the three host modules
// (ethereum/bcos[/debug]) every compiled module links against. One Runtime
// is shared across every CompiledModule and Instance the process creates.
//
// Each host module ("ethereum", "bcos") is built exactly once and shared by
// every pooled instance in the namespace — wazero resolves imports by
// (module name, function name) process-wide, so there cannot be one
// "ethereum" host module per instance. Per-instance adapter binding is
// instead achieved by keying a slot table on the calling api.Module's name:
// every abi thunk receives its caller as an argument, so it can look up
// that instance's own slot rather than a slot fixed at registration time.
type Runtime struct {
	rt     wazero.Runtime
	config Config

	slotsMu sync.RWMutex
	slots   map[string]*host.Slot // instance name -> its adapter slot
}

// New builds a Runtime and eagerly registers the host import namespaces as
// a process-wide, build-once registry.
func New(ctx context.Context, cfg Config) (*Runtime, error) {
	rtCfg := wazero.NewRuntimeConfig()
	if cfg.MemoryLimitPages > 0 {
		rtCfg = rtCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}

	rt := wazero.NewRuntimeWithConfig(ctx, rtCfg)
	r := &Runtime{rt: rt, config: cfg, slots: map[string]*host.Slot{}}

	if err := r.registerHostModule(ctx, abi.ModuleEthereum); err != nil {
		return nil, err
	}
	if err := r.registerHostModule(ctx, abi.ModuleBcos); err != nil {
		return nil, err
	}
	if cfg.DebugImports {
		if err := r.registerHostModule(ctx, abi.ModuleDebug); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// registerHostModule builds one wazero host module from every abi.Entry in
// the named namespace, all sharing the Runtime's resolveSlot lookup.
func (r *Runtime) registerHostModule(ctx context.Context, module string) error {
	builder := r.rt.NewHostModuleBuilder(module)
	for _, name := range abi.Names(module) {
		entry, _ := abi.Lookup(module, name)
		builder.NewFunctionBuilder().
			WithGoModuleFunction(entry.Bind(r.resolveSlot), entry.Params, entry.Results).
			Export(name)
	}
	_, err := builder.Instantiate(ctx)
	return err
}

// resolveSlot is the abi.SlotResolver every host thunk calls with its
// caller. Panics if asked about an instance the pool never registered —
// that would mean a guest module instantiated outside the pool, which
// cannot happen through this package's own API.
func (r *Runtime) resolveSlot(mod api.Module) *host.Slot {
	r.slotsMu.RLock()
	defer r.slotsMu.RUnlock()
	slot, ok := r.slots[mod.Name()]
	if !ok {
		panic("wasmhost: no adapter slot registered for instance " + mod.Name())
	}
	return slot
}

func (r *Runtime) Close(ctx context.Context) error {
	return r.rt.Close(ctx)
}

// CompiledModule wraps a wazero-compiled core module together with the
// static shape the validator and pool both need, so each compilation is
// validated exactly once. The pool compiles once per contract address;
// Verify compiles separately and discards the result.
type CompiledModule struct {
	compiled wazero.CompiledModule
	code     []byte
}

// Compile parses and validates wasmBytes as a core WASM module and runs the
// BCI/EEI/BEI admission check before returning. The returned CompiledModule
// carries the original bytecode for EEI codeCopy/getCodeSize.
func (r *Runtime) Compile(ctx context.Context, wasmBytes []byte) (*CompiledModule, error) {
	compiled, err := r.rt.CompileModule(ctx, wasmBytes)
	if err != nil {
		Logger().Sugar().Debugw("compile failed", "error", err)
		return nil, errors.New(errors.PhaseCompile, errors.KindInvalidInput).Cause(err).Detail("compile module").Build()
	}
	cm := &CompiledModule{compiled: compiled, code: wasmBytes}
	if err := validator.Validate(cm, r.config.DebugImports); err != nil {
		compiled.Close(ctx)
		Logger().Sugar().Debugw("admission check failed", "error", err)
		return nil, errors.New(errors.PhaseValidate, errors.KindContractValidation).Cause(err).Build()
	}
	Logger().Sugar().Debugw("compiled module", "bytes", len(wasmBytes))
	return cm, nil
}

func (cm *CompiledModule) Close(ctx context.Context) error {
	return cm.compiled.Close(ctx)
}

// Code returns the original contract bytecode.
func (cm *CompiledModule) Code() []byte { return cm.code }

// ExportedFunctionNames implements validator.ModuleInfo.
func (cm *CompiledModule) ExportedFunctionNames() []string {
	names := make([]string, 0)
	for name := range cm.compiled.ExportedFunctions() {
		names = append(names, name)
	}
	return names
}

// ExportedMemoryNames implements validator.ModuleInfo.
func (cm *CompiledModule) ExportedMemoryNames() []string {
	names := make([]string, 0)
	for name := range cm.compiled.ExportedMemories() {
		names = append(names, name)
	}
	return names
}

// ImportedFunctions implements validator.ModuleInfo.
func (cm *CompiledModule) ImportedFunctions() []validator.Import {
	var imports []validator.Import
	for _, def := range cm.compiled.ImportedFunctions() {
		moduleName, name, isImport := def.Import()
		if isImport {
			imports = append(imports, validator.Import{Module: moduleName, Name: name})
		}
	}
	return imports
}

// Instance is one live instantiation of a CompiledModule, exposing the
// memory view and exported entry points the pipeline invokes. It owns the
// adapter slot its imports are bound to: Bind before a call, Unbind (or
// just let the next Bind overwrite it) after.
type Instance struct {
	rt   *Runtime
	mod  api.Module
	code []byte
	slot *host.Slot
}

// Instantiate creates a fresh instance of cm, named so multiple concurrent
// instances of the same compiled module can coexist. The instance's own
// adapter slot is registered under that name before instantiation, since a
// guest's start function (if any) could in principle call back into a host
// import immediately.
func (r *Runtime) Instantiate(ctx context.Context, cm *CompiledModule, name string) (*Instance, error) {
	slot := &host.Slot{}
	r.slotsMu.Lock()
	r.slots[name] = slot
	r.slotsMu.Unlock()

	cfg := wazero.NewModuleConfig().WithName(name)
	mod, err := r.rt.InstantiateModule(ctx, cm.compiled, cfg)
	if err != nil {
		r.slotsMu.Lock()
		delete(r.slots, name)
		r.slotsMu.Unlock()
		Logger().Sugar().Debugw("instantiate failed", "name", name, "error", err)
		return nil, errors.Instantiation(err)
	}

	if mem := mod.Memory(); mem == nil || mem.Size() < minMemoryBytes {
		mod.Close(ctx)
		r.slotsMu.Lock()
		delete(r.slots, name)
		r.slotsMu.Unlock()
		Logger().Sugar().Debugw("instantiate rejected", "name", name, "reason", "memory too small")
		return nil, errors.InvalidMemoryAccess("memory export must be at least one 64KiB page")
	}

	Logger().Sugar().Debugw("instantiated module", "name", name)
	return &Instance{rt: r, mod: mod, code: cm.code, slot: slot}, nil
}

// minMemoryBytes is the smallest linear memory a module may export: one
// 64KiB page.
const minMemoryBytes = 65536

// Slot returns the adapter slot this instance's host imports read from.
func (i *Instance) Slot() *host.Slot { return i.slot }

func (i *Instance) Close(ctx context.Context) error {
	i.rt.slotsMu.Lock()
	delete(i.rt.slots, i.mod.Name())
	i.rt.slotsMu.Unlock()
	return i.mod.Close(ctx)
}

// Memory returns the instance's linear memory as a host.MemoryView.
// wazero's api.Memory already satisfies that interface structurally.
func (i *Instance) Memory() host.MemoryView {
	return i.mod.Memory()
}

// Code returns the instance's contract bytecode, for Adapter.SetCode.
func (i *Instance) Code() []byte { return i.code }

// ExportedFunction looks up one BCI entry point (deploy/main/hash_type).
func (i *Instance) ExportedFunction(name string) (api.Function, error) {
	fn := i.mod.ExportedFunction(name)
	if fn == nil {
		return nil, errors.New(errors.PhaseLink, errors.KindInvalidExport).Detail("missing export %q", name).Build()
	}
	return fn, nil
}
