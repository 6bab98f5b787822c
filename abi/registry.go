// Package abi is the host import registry: a static, process-wide,
// build-once table mapping (module, name) to a fixed signature and a Go
// thunk. Every thunk closes over nothing but the SlotResolver it is bound
// to when the engine registers the host modules, and reaches the calling
// instance's *host.Slot through it on each call — never an adapter pointer
// directly.
package abi

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero/api"

	"github.com/bcosnet/wasmhost/host"
)

// Thunk is the shape every registry entry's Bind produces: a wazero
// GoModuleFunc that resolves the calling instance's slot on every call.
type Thunk = api.GoModuleFunc

// SlotResolver maps the guest module invoking a host import back to that
// instance's adapter slot. One host module (e.g. "ethereum") is shared by
// every pooled instance in a wazero namespace, so a thunk cannot close over
// a single slot at registration time — it must ask, per call, which
// instance (api.Module) is calling, via mod.Name(). The pool assigns each
// Instance a unique name and registers its slot under that name with the
// engine; the resolver is just that lookup.
type SlotResolver func(mod api.Module) *host.Slot

// BindFunc produces a Thunk that resolves its slot through resolve.
type BindFunc func(resolve SlotResolver) Thunk

// Entry is one Host Import Registry record.
type Entry struct {
	Params  []api.ValueType
	Results []api.ValueType
	Bind    BindFunc
}

// bind constructs an Entry whose thunk resolves the in-flight Adapter for
// the calling instance on every call and hands it, along with the raw
// param/result stack, to fn. fn reads stack[0:len(params)] and, if it
// returns a value, writes it to stack[0] itself.
func bind(params, results []api.ValueType, fn func(a *host.Adapter, stack []uint64)) Entry {
	return Entry{
		Params:  params,
		Results: results,
		Bind: func(resolve SlotResolver) Thunk {
			return func(_ context.Context, mod api.Module, stack []uint64) {
				fn(resolve(mod).Current(), stack)
			}
		},
	}
}

const (
	ModuleEthereum = "ethereum"
	ModuleBcos     = "bcos"
	ModuleDebug    = "debug"
)

var (
	registry     map[string]map[string]Entry
	registryOnce sync.Once
)

func build() map[string]map[string]Entry {
	reg := map[string]map[string]Entry{
		ModuleEthereum: ethereumEntries(),
		ModuleBcos:     bcosEntries(),
		ModuleDebug:    debugEntries(),
	}
	return reg
}

// Lookup returns the registry entry for (module, name).
func Lookup(module, name string) (Entry, bool) {
	registryOnce.Do(func() {
		registry = build()
	})
	ns, ok := registry[module]
	if !ok {
		return Entry{}, false
	}
	e, ok := ns[name]
	return e, ok
}

// Names returns the allow-listed function names for a module. Used by the
// engine to export every entry of a namespace into its host module.
func Names(module string) []string {
	registryOnce.Do(func() {
		registry = build()
	})
	ns, ok := registry[module]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(ns))
	for n := range ns {
		names = append(names, n)
	}
	return names
}
